package auth

import "errors"

var (
	// ErrDuplicateIdentifier is returned by Signup when the email is taken.
	ErrDuplicateIdentifier = errors.New("identifier already registered")

	// ErrNotFound is returned when no user matches the identifier or id.
	ErrNotFound = errors.New("user not found")

	// ErrInvalidCredential is returned when the password does not match.
	ErrInvalidCredential = errors.New("invalid credential")

	// ErrMalformedInput is returned for missing or badly formed fields.
	ErrMalformedInput = errors.New("malformed input")

	// ErrInvalidToken covers bad signatures, wrong algorithms and expired tokens.
	ErrInvalidToken = errors.New("invalid or expired token")
)
