// Package common holds the errors and small helpers shared by every
// package of the client.
package common

import "errors"

// Input errors
var (
	// ErrValidation is returned for bad user input: a short question or a
	// denylisted topic.
	ErrValidation = errors.New("invalid input")
	// ErrInvalidArgument is returned when a caller breaks a precondition.
	ErrInvalidArgument = errors.New("invalid argument")
)

// Reading flow errors
var (
	// ErrInvalidState is returned when an operation is not valid in the
	// current reading phase.
	ErrInvalidState = errors.New("operation not allowed in current phase")
	// ErrFetchPending is returned when an interpretation request is already
	// in flight for the session.
	ErrFetchPending = errors.New("interpretation request already pending")
	// ErrInsufficientBalance is returned when both request pools are empty.
	ErrInsufficientBalance = errors.New("not enough requests, top up your balance")
)

// Transport and host errors
var (
	// ErrNetwork covers transport failures talking to the backend.
	ErrNetwork = errors.New("cannot reach the server")
	// ErrBackend is matched by errors the backend reported itself.
	ErrBackend = errors.New("server error")
	// ErrNotInHostEnvironment is returned when no Telegram launch data is present.
	ErrNotInHostEnvironment = errors.New("the app must be opened from Telegram")
)

// ErrSessionReplaced is returned when a result arrives for a reading that
// was reset while the request was in flight. The result is dropped.
var ErrSessionReplaced = errors.New("reading was reset")
