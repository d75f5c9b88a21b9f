package auth

import "errors"

// Common authentication service errors
var (
	// ErrInvalidToken indicates the token format is invalid or signature doesn't match
	ErrInvalidToken = errors.New("invalid authentication token")

	// ErrExpiredToken indicates the token has expired
	ErrExpiredToken = errors.New("authentication token has expired")

	// ErrTokenNotYetValid indicates the token is not yet valid (nbf claim in the future)
	ErrTokenNotYetValid = errors.New("authentication token not yet valid")

	// ErrMissingToken indicates a token was expected but not provided
	ErrMissingToken = errors.New("authentication token is missing")

	// ErrRevokedToken indicates the token was revoked by logging out
	ErrRevokedToken = errors.New("authentication token has been revoked")

	// ErrInvalidCredentials is returned for both an unknown user and a wrong password
	ErrInvalidCredentials = errors.New("incorrect username or password")

	// ErrInactiveUser indicates the account has been disabled
	ErrInactiveUser = errors.New("inactive user")
)
