package models

import "errors"

var (
	ErrConflictData       = errors.New("data conflicts with existing data")
	ErrDataNotFound       = errors.New("data not found")
	ErrInvalidCredentials = errors.New("invalid login or password")
	ErrForbidden          = errors.New("operation is not allowed for this user")
	ErrValidation         = errors.New("invalid request data")
	ErrEmptyCart          = errors.New("cart is empty")
	ErrAlreadyConfirmed   = errors.New("order is already confirmed")
	ErrInvalidPostalCode  = errors.New("invalid postal code")
	ErrNoShippingOptions  = errors.New("no shipping options for postal code")
	ErrUpstreamFailure    = errors.New("upstream service failure")
	ErrInternalError      = errors.New("internal error")
)
