package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	firebaseauth "firebase.google.com/go/v4/auth"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTAuthenticator_RoundTrip(t *testing.T) {
	a := NewJWTAuthenticator("secret", "haul")

	token, err := a.IssueToken("drv-1", time.Minute)
	require.NoError(t, err)

	actorID, err := a.Authenticate(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, "drv-1", actorID)
}

func TestJWTAuthenticator_Rejects(t *testing.T) {
	a := NewJWTAuthenticator("secret", "haul")

	sign := func(method jwt.SigningMethod, key interface{}, claims jwt.RegisteredClaims) string {
		s, err := jwt.NewWithClaims(method, claims).SignedString(key)
		require.NoError(t, err)
		return s
	}
	valid := jwt.RegisteredClaims{
		Subject:   "drv-1",
		Issuer:    "haul",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}

	expired := valid
	expired.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Minute))

	foreignIssuer := valid
	foreignIssuer.Issuer = "someone-else"

	noSubject := valid
	noSubject.Subject = ""

	testCases := []struct {
		name  string
		token string
		want  error
	}{
		{"garbage", "not-a-token", ErrInvalidToken},
		{"empty", "", ErrInvalidToken},
		{"expired", sign(jwt.SigningMethodHS256, []byte("secret"), expired), ErrExpiredToken},
		{"wrong secret", sign(jwt.SigningMethodHS256, []byte("other"), valid), ErrInvalidToken},
		{"wrong issuer", sign(jwt.SigningMethodHS256, []byte("secret"), foreignIssuer), ErrInvalidToken},
		{"missing subject", sign(jwt.SigningMethodHS256, []byte("secret"), noSubject), ErrInvalidToken},
		{"unsigned", sign(jwt.SigningMethodNone, jwt.UnsafeAllowNoneSignatureType, valid), ErrInvalidToken},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := a.Authenticate(context.Background(), tc.token)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

type fakeVerifier struct {
	token *firebaseauth.Token
	err   error
}

func (f fakeVerifier) VerifyIDTokenAndCheckRevoked(context.Context, string) (*firebaseauth.Token, error) {
	return f.token, f.err
}

func TestFirebaseAuthenticator(t *testing.T) {
	ctx := context.Background()

	uid, err := NewFirebaseAuthenticator(fakeVerifier{token: &firebaseauth.Token{UID: "abc"}}).Authenticate(ctx, "t")
	require.NoError(t, err)
	assert.Equal(t, "abc", uid)

	_, err = NewFirebaseAuthenticator(fakeVerifier{err: errors.New("malformed")}).Authenticate(ctx, "t")
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = NewFirebaseAuthenticator(fakeVerifier{token: &firebaseauth.Token{}}).Authenticate(ctx, "t")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
