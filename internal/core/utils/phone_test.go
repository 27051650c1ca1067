package utils_test

import (
	"testing"

	"github.com/nkimemia/sokopay/internal/core/domain"
	"github.com/nkimemia/sokopay/internal/core/utils"
	"github.com/stretchr/testify/assert"
)

func TestNormalizePhone(t *testing.T) {
	tests := []struct {
		name      string
		phone     string
		expResult string
		expError  error
	}{
		{
			name:      "national prefix",
			phone:     "0712345678",
			expResult: "254712345678",
		},
		{
			name:      "already international",
			phone:     "254712345678",
			expResult: "254712345678",
		},
		{
			name:      "bare subscriber number",
			phone:     "712345678",
			expResult: "254712345678",
		},
		{
			name:      "formatting characters stripped",
			phone:     "+254 712-345 678",
			expResult: "254712345678",
		},
		{
			name:      "spaced national format",
			phone:     "0712 345 678",
			expResult: "254712345678",
		},
		{
			// nine digits starting with 254 are a subscriber number, not a
			// country-coded one: the prefix is only stripped from 12-digit input
			name:      "nine digits starting with country code",
			phone:     "254123456",
			expResult: "254254123456",
		},
		{
			name:     "too short",
			phone:    "123",
			expError: domain.ErrInvalidPhoneNumber,
		},
		{
			name:     "too long",
			phone:    "07123456789",
			expError: domain.ErrInvalidPhoneNumber,
		},
		{
			name:     "empty",
			phone:    "",
			expError: domain.ErrInvalidPhoneNumber,
		},
		{
			name:     "letters only",
			phone:    "not-a-phone",
			expError: domain.ErrInvalidPhoneNumber,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			result, err := utils.NormalizePhone(test.phone)

			assert.Equal(t, test.expResult, result)
			assert.Equal(t, test.expError, err)
		})
	}
}
