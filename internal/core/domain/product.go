package domain

import "github.com/govalues/decimal"

type Product struct {
	Name        string
	Price       decimal.Decimal
	Description string
}
