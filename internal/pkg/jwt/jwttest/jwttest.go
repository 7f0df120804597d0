// Package jwttest signs tokens the way the account service does, for tests
// that need an authenticated caller.
package jwttest

import (
	"testing"
	"time"

	"shiftmatch/internal/pkg/jwt"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

type Token struct {
	Secret    string
	ActorID   uuid.UUID
	Role      string
	Type      string
	IssuedAt  time.Time
	ExpiresIn time.Duration
}

// Sign fills unset fields with an access token valid for a minute from now.
func Sign(t testing.TB, tok Token) string {
	t.Helper()
	if tok.Type == "" {
		tok.Type = jwt.TokenTypeAccess
	}
	if tok.IssuedAt.IsZero() {
		tok.IssuedAt = time.Now()
	}
	if tok.ExpiresIn == 0 {
		tok.ExpiresIn = time.Minute
	}

	c := jwt.Claims{
		ActorID:   tok.ActorID,
		Role:      tok.Role,
		TokenType: tok.Type,
		RegisteredClaims: jwtlib.RegisteredClaims{
			Subject:   tok.ActorID.String(),
			IssuedAt:  jwtlib.NewNumericDate(tok.IssuedAt),
			ExpiresAt: jwtlib.NewNumericDate(tok.IssuedAt.Add(tok.ExpiresIn)),
		},
	}
	s, err := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, c).SignedString([]byte(tok.Secret))
	require.NoError(t, err)
	return s
}

// Access is a one-minute access token for actorID.
func Access(t testing.TB, secret string, actorID uuid.UUID, role string) string {
	t.Helper()
	return Sign(t, Token{Secret: secret, ActorID: actorID, Role: role})
}
