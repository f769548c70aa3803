package model

import "errors"

var (
	// User related errors
	ErrUserNotFound       = errors.New("user not found")
	ErrUserAlreadyExists  = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")

	// Token related errors. Signature, expiry and stored-digest mismatches
	// all collapse into ErrTokenInvalid.
	ErrTokenInvalid = errors.New("invalid or expired token")

	// Email delivery
	ErrDeliveryFailure = errors.New("email delivery failed")

	// Permission/Access related errors
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")

	// Content
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")

	// Image storage is not configured
	ErrStorageDisabled = errors.New("image storage disabled")

	// Generic errors
	ErrInvalidInput = errors.New("invalid input")
)
