package platform

import "errors"

// Authentication failures.
var (
	// ErrInvalidCredentials indicates the supplied email/password pair was rejected.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrAuthNetwork indicates the platform could not be reached during an
	// authentication operation.
	ErrAuthNetwork = errors.New("auth network failure")

	// ErrProvider indicates the OAuth provider refused the request.
	ErrProvider = errors.New("provider error")

	// ErrSessionExpired indicates a persisted session could not be redeemed.
	ErrSessionExpired = errors.New("session expired")
)

// Data failures.
var (
	// ErrNotFound indicates the requested record does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrDataNetwork indicates the platform could not be reached during a
	// data fetch or mutation.
	ErrDataNetwork = errors.New("data network failure")

	// ErrPartialData indicates at least one sub-fetch of a dashboard load
	// failed; previously cached values for the failed kinds remain in place.
	ErrPartialData = errors.New("partial data load")
)

// Action failures.
var (
	// ErrInsufficientBalance occurs when a redemption-style mutation would
	// drive a token balance negative. Raised locally, before any network call.
	ErrInsufficientBalance = errors.New("insufficient token balance")

	// ErrActionInProgress occurs when an action of the same kind is already
	// in flight for the user.
	ErrActionInProgress = errors.New("action already in progress")

	// ErrRemoteRejected indicates the platform refused a mutation.
	ErrRemoteRejected = errors.New("mutation rejected by platform")
)
