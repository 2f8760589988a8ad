package domain

import "errors"

var (
	// ErrUnauthenticated signals a request without a platform-verified caller.
	ErrUnauthenticated = errors.New("the function must be called while authenticated")
	// ErrInvalidArgument signals a malformed request body.
	ErrInvalidArgument = errors.New("the function must be called with a message and appId")
	// ErrProfileNotFound signals a missing user profile document.
	ErrProfileNotFound = errors.New("user profile not found")
	// ErrRateLimited signals a caller exceeding the request rate.
	ErrRateLimited = errors.New("rate limited")
	// ErrInternal signals a downstream failure. Its cause is never shown to callers.
	ErrInternal = errors.New("internal error")
)
