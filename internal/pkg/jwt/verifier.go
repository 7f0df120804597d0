package jwt

import (
	"time"

	"github.com/cockroachdb/errors"
	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

var (
	ErrTokenExpired = errors.New("token expired")
	ErrTokenInvalid = errors.New("token invalid")
	ErrNotAccess    = errors.New("not an access token")
)

// Claims identify a worker or a business account. Role is WORKER or
// BUSINESS. Tokens are minted by the account service with HS256.
type Claims struct {
	ActorID   uuid.UUID `json:"actor_id"`
	Role      string    `json:"role"`
	TokenType string    `json:"token_type"`

	jwtlib.RegisteredClaims
}

type Verifier interface {
	Verify(token string) (Claims, error)
}

type HMACVerifier struct {
	secret []byte
	now    func() time.Time
}

func NewHMACVerifier(secret string) *HMACVerifier {
	return &HMACVerifier{secret: []byte(secret), now: time.Now}
}

// Verify accepts unexpired access tokens only. An expiry claim is required.
func (v *HMACVerifier) Verify(token string) (Claims, error) {
	if len(v.secret) == 0 {
		return Claims{}, ErrTokenInvalid
	}
	p := jwtlib.NewParser(
		jwtlib.WithValidMethods([]string{jwtlib.SigningMethodHS256.Alg()}),
		jwtlib.WithExpirationRequired(),
		jwtlib.WithTimeFunc(v.now),
	)

	var c Claims
	_, err := p.ParseWithClaims(token, &c, func(*jwtlib.Token) (any, error) {
		return v.secret, nil
	})
	switch {
	case errors.Is(err, jwtlib.ErrTokenExpired):
		return Claims{}, ErrTokenExpired
	case err != nil:
		return Claims{}, errors.Mark(errors.Wrap(err, "parse"), ErrTokenInvalid)
	}

	if c.ActorID == uuid.Nil || c.Role == "" {
		return Claims{}, ErrTokenInvalid
	}
	if c.TokenType != TokenTypeAccess {
		return Claims{}, errors.Mark(ErrNotAccess, ErrTokenInvalid)
	}
	return c, nil
}
