// Package auth verifies bearer tokens and resolves them to actor IDs.
package auth

import (
	"context"
	"errors"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token has expired")
	ErrRevokedToken = errors.New("token has been revoked")
)

// Authenticator verifies a bearer token and returns the ID of the actor it
// was issued to.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (string, error)
}
