package payment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/fjod/go_cart/storefront/pkg/circuitbreaker"
	"github.com/stripe/stripe-go/v81"
	"github.com/stripe/stripe-go/v81/client"
)

type StripeCharger struct {
	api     *client.API
	timeout time.Duration
	breaker *circuitbreaker.Breaker[*stripe.Charge]
}

// NewStripeCharger builds a charger for the given secret key. backends may be
// nil to use the default Stripe endpoints.
func NewStripeCharger(key string, timeout time.Duration, backends *stripe.Backends) *StripeCharger {
	return &StripeCharger{
		api:     client.New(key, backends),
		timeout: timeout,
		breaker: circuitbreaker.New[*stripe.Charge](circuitbreaker.Config{
			Name:         "stripe",
			IsSuccessful: isDecline,
		}),
	}
}

func (s *StripeCharger) Charge(ctx context.Context, req ChargeRequest) (*Charge, error) {
	chargeCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	params := &stripe.ChargeParams{
		Amount:   stripe.Int64(req.Amount),
		Currency: stripe.String(req.Currency),
	}
	if req.Description != "" {
		params.Description = stripe.String(req.Description)
	}
	if err := params.SetSource(req.Source); err != nil {
		return nil, &DeclinedError{Reason: err.Error()}
	}
	params.Context = chargeCtx

	ch, err := s.breaker.Execute(func() (*stripe.Charge, error) {
		return s.api.Charges.New(params)
	})
	if err != nil {
		if errors.Is(err, circuitbreaker.ErrOpen) {
			slog.WarnContext(ctx, "charge rejected without calling stripe",
				slog.String("breaker_state", s.breaker.State()))
		}
		return nil, classify(chargeCtx, err)
	}
	return &Charge{ID: ch.ID}, nil
}

func classify(ctx context.Context, err error) error {
	if errors.Is(err, circuitbreaker.ErrOpen) {
		return ErrUnavailable
	}
	if ctx.Err() != nil || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %w", ErrOutcomeUnknown, err)
	}
	var se *stripe.Error
	if errors.As(err, &se) && isDecline(se) {
		return &DeclinedError{Reason: se.Msg}
	}
	return fmt.Errorf("stripe charge failed: %w", err)
}

func isDecline(err error) bool {
	var se *stripe.Error
	if !errors.As(err, &se) {
		return false
	}
	return se.Type == stripe.ErrorTypeCard || se.Type == stripe.ErrorTypeInvalidRequest
}
