package service

import "errors"

var (
	ErrEmptyCart        = errors.New("cart is empty, nothing to checkout")
	ErrCheckoutInFlight = errors.New("a checkout is already in progress for this user")
	ErrTooManyConflicts = errors.New("user was modified concurrently, please retry")
)

const invalidCredentials = "Incorrect combination of email & password!"
