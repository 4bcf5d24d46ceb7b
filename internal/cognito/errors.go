package cognito

import "errors"

var (
	// ErrMalformedToken means the bearer token is not structurally a JWT.
	ErrMalformedToken = errors.New("malformed token")
	// ErrUnknownSigningKey means the token's kid is absent from the current key set.
	ErrUnknownSigningKey = errors.New("token signed with unknown key")
	// ErrInvalidToken collapses signature, expiry, issuer and audience failures.
	// The distinct sub-reason is logged, never returned.
	ErrInvalidToken = errors.New("invalid or expired token")
	// ErrUpstreamUnavailable means the JWKS endpoint could not be reached.
	ErrUpstreamUnavailable = errors.New("identity provider unavailable")
)
