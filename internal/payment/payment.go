package payment

import (
	"context"
	"errors"
	"math"
)

var (
	// ErrOutcomeUnknown means the provider did not answer in time. The charge
	// may or may not have been captured.
	ErrOutcomeUnknown = errors.New("charge outcome unknown")
	// ErrUnavailable means the call was not attempted because the provider
	// has been failing.
	ErrUnavailable = errors.New("payment provider unavailable")
)

// DeclinedError is a charge the provider rejected, e.g. a declined card or
// an invalid payment token.
type DeclinedError struct {
	Reason string
}

func (e *DeclinedError) Error() string {
	return "charge declined: " + e.Reason
}

type ChargeRequest struct {
	// Amount in minor currency units.
	Amount      int64
	Currency    string
	Source      string
	Description string
}

type Charge struct {
	ID string
}

type Charger interface {
	Charge(ctx context.Context, req ChargeRequest) (*Charge, error)
}

// MinorUnits converts a major-unit price to the integer amount charged.
func MinorUnits(price float64) int64 {
	return int64(math.Round(price * 100))
}
