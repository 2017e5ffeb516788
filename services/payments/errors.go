package payments

import "errors"

// Sentinel errors for the payment engine. Handlers map these onto the HTTP
// response envelope; nothing below this package returns raw transport errors.
var (
	// ErrNotFound means the course, transaction or inquiry does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrConflict means the operation contradicts existing state, e.g. the
	// user is already enrolled in the course.
	ErrConflict = errors.New("conflicting state")

	// ErrForbidden means the claim names a transaction owned by a
	// different user.
	ErrForbidden = errors.New("transaction belongs to another user")

	// ErrGatewayUnavailable means the gateway is not configured or the
	// order-creation call failed.
	ErrGatewayUnavailable = errors.New("payment gateway unavailable")

	// ErrGatewayTimeout means a gateway call exceeded its deadline.
	ErrGatewayTimeout = errors.New("payment gateway timed out")

	// ErrInvalidInput means a required claim field is missing.
	ErrInvalidInput = errors.New("invalid input")
)
