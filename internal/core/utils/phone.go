package utils

import (
	"strings"

	"github.com/nkimemia/sokopay/internal/core/domain"
)

const countryCode = "254"

// NormalizePhone canonicalizes a user-supplied phone number into the
// gateway's international format: digits only, country code prefixed,
// exactly nine subscriber digits.
func NormalizePhone(phone string) (string, error) {
	var b strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()

	if strings.HasPrefix(digits, countryCode) && len(digits) == len(countryCode)+9 {
		digits = digits[len(countryCode):]
	} else if strings.HasPrefix(digits, "0") {
		digits = digits[1:]
	}

	if len(digits) != 9 {
		return "", domain.ErrInvalidPhoneNumber
	}

	return countryCode + digits, nil
}
