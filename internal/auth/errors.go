package auth

import "errors"

var (
	ErrNotFound           = errors.New("auth: user not found")
	ErrEmailTaken         = errors.New("auth: email already exists")
	ErrInvalidCredentials = errors.New("auth: invalid credentials")
	ErrFederatedOnly      = errors.New("auth: account uses federated login")
	ErrForbidden          = errors.New("auth: forbidden")
	ErrInvalidInput       = errors.New("auth: invalid input")
	ErrUpstream           = errors.New("auth: identity provider failure")
	ErrFederationDisabled = errors.New("auth: federated login is not configured")
)

// ErrInvalidToken indicates the token failed validation. All verification
// failures collapse into this one error so callers cannot tell which check
// rejected the token.
var ErrInvalidToken = errors.New("invalid token")
