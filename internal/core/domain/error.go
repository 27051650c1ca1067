package domain

import (
	"errors"
	"fmt"
)

var (
	ErrInternal = errors.New("internal error")

	// * Data errors.
	ErrDataNotFound    = errors.New("data not found")
	ErrNoUpdatedData   = errors.New("no data to update")
	ErrConflictingData = errors.New("data conflicts with existing data in unique column")

	// * Communication errors.
	ErrBadRequest = errors.New("error parsing request")

	// * Validation errors.
	ErrPhoneRequired      = errors.New("phone number is required")
	ErrAmountRequired     = errors.New("amount is required")
	ErrAmountTooSmall     = errors.New("amount is below the minimum")
	ErrInvalidPhoneNumber = errors.New("invalid phone number format")

	// * Gateway errors.
	ErrAuthentication = errors.New("gateway authentication failed")
	ErrGatewayTimeout = errors.New("gateway request timed out")
)

// GatewayError carries the upstream status and body of a rejected
// initiation request.
type GatewayError struct {
	Status int
	Body   string
}

func (e *GatewayError) Error() string {
	return fmt.Sprintf("gateway rejected request: status %d: %s", e.Status, e.Body)
}
