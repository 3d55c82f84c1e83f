package auth

import (
	"context"

	firebaseauth "firebase.google.com/go/v4/auth"
)

// IDTokenVerifier is the subset of the Firebase auth client used to verify
// ID tokens.
type IDTokenVerifier interface {
	VerifyIDTokenAndCheckRevoked(ctx context.Context, idToken string) (*firebaseauth.Token, error)
}

// FirebaseAuthenticator verifies Firebase ID tokens, including revocation.
type FirebaseAuthenticator struct {
	client IDTokenVerifier
}

var _ Authenticator = (*FirebaseAuthenticator)(nil)

// NewFirebaseAuthenticator creates a FirebaseAuthenticator. client is
// usually the *auth.Client of a Firebase app.
func NewFirebaseAuthenticator(client IDTokenVerifier) *FirebaseAuthenticator {
	return &FirebaseAuthenticator{client: client}
}

// Authenticate verifies idToken and returns the Firebase UID.
func (a *FirebaseAuthenticator) Authenticate(ctx context.Context, idToken string) (string, error) {
	token, err := a.client.VerifyIDTokenAndCheckRevoked(ctx, idToken)
	if err != nil {
		switch {
		case firebaseauth.IsIDTokenExpired(err):
			return "", ErrExpiredToken
		case firebaseauth.IsIDTokenRevoked(err):
			return "", ErrRevokedToken
		default:
			return "", ErrInvalidToken
		}
	}
	if token.UID == "" {
		return "", ErrInvalidToken
	}
	return token.UID, nil
}
