package domain

import "errors"

var (
	// ErrInvalidAction is returned for decision actions other than approve/deny.
	ErrInvalidAction = errors.New("action must be approve or deny")

	// ErrInvalidStatus is returned when parsing an unknown status name.
	ErrInvalidStatus = errors.New("status must be pending, approved or denied")

	// ErrAlreadyDecided is returned when deciding a request that is no longer pending.
	ErrAlreadyDecided = errors.New("request already processed")
)
