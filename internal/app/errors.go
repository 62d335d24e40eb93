package app

import "errors"

// Sentinel errors for common application errors
var (
	ErrNotAuthenticated = errors.New("not logged in, run `karir login` first")
	ErrInvalidArgument  = errors.New("invalid argument")
	ErrNotVerified      = errors.New("company is not verified yet")
)
