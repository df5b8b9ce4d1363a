package service

import "errors"

var (
	// ErrInvalidArgument is returned before any write when caller data is unusable
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrInsufficientStock aborts an order whose line asks for more than is on hand
	ErrInsufficientStock = errors.New("insufficient stock")

	// ErrInvalidCredentials is returned by Authenticate on any mismatch
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrDuplicateSubmission means another request holds the same idempotency key
	ErrDuplicateSubmission = errors.New("order submission already in progress")
)
