package common

import "errors"

var (
	// ErrNotLoggedIn is returned when an operation needs a stored bearer
	// token and none is present.
	ErrNotLoggedIn = errors.New("not logged in")

	// ErrTokenExpired reports a bearer token whose exp claim is in the past.
	ErrTokenExpired = errors.New("token expired")

	// ErrBusy is reported when an operation is already in flight for the
	// same target and the new call was dropped.
	ErrBusy = errors.New("operation already in progress")
)
