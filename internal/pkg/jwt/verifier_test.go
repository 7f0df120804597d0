package jwt_test

import (
	"testing"
	"time"

	"shiftmatch/internal/pkg/jwt"
	"shiftmatch/internal/pkg/jwt/jwttest"

	"github.com/cockroachdb/errors"
	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "access-secret"

func TestVerify_AccessToken(t *testing.T) {
	id := uuid.New()
	tok := jwttest.Access(t, secret, id, "WORKER")

	c, err := jwt.NewHMACVerifier(secret).Verify(tok)
	require.NoError(t, err)
	assert.Equal(t, id, c.ActorID)
	assert.Equal(t, "WORKER", c.Role)
	assert.Equal(t, jwt.TokenTypeAccess, c.TokenType)
}

func TestVerify_RefreshTokenRejected(t *testing.T) {
	tok := jwttest.Sign(t, jwttest.Token{Secret: secret, ActorID: uuid.New(), Role: "BUSINESS", Type: jwt.TokenTypeRefresh})

	_, err := jwt.NewHMACVerifier(secret).Verify(tok)
	assert.True(t, errors.Is(err, jwt.ErrTokenInvalid))
	assert.True(t, errors.Is(err, jwt.ErrNotAccess))
}

func TestVerify_Expired(t *testing.T) {
	tok := jwttest.Sign(t, jwttest.Token{
		Secret:    secret,
		ActorID:   uuid.New(),
		Role:      "WORKER",
		IssuedAt:  time.Now().Add(-time.Hour),
		ExpiresIn: time.Minute,
	})

	_, err := jwt.NewHMACVerifier(secret).Verify(tok)
	assert.True(t, errors.Is(err, jwt.ErrTokenExpired))
}

func TestVerify_Rejects(t *testing.T) {
	v := jwt.NewHMACVerifier(secret)

	cases := map[string]string{
		"foreign secret": jwttest.Access(t, "other", uuid.New(), "WORKER"),
		"garbage":        "not.a.token",
		"no actor":       jwttest.Access(t, secret, uuid.Nil, "WORKER"),
		"no role":        jwttest.Access(t, secret, uuid.New(), ""),
	}
	for name, tok := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := v.Verify(tok)
			assert.True(t, errors.Is(err, jwt.ErrTokenInvalid))
		})
	}
}

func TestVerify_RequiresExpiry(t *testing.T) {
	c := jwt.Claims{ActorID: uuid.New(), Role: "WORKER", TokenType: jwt.TokenTypeAccess}
	tok, err := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, c).SignedString([]byte(secret))
	require.NoError(t, err)

	_, err = jwt.NewHMACVerifier(secret).Verify(tok)
	assert.True(t, errors.Is(err, jwt.ErrTokenInvalid))
}

func TestVerify_EmptySecret(t *testing.T) {
	tok := jwttest.Access(t, secret, uuid.New(), "WORKER")
	_, err := jwt.NewHMACVerifier("").Verify(tok)
	assert.True(t, errors.Is(err, jwt.ErrTokenInvalid))
}
