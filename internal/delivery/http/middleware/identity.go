package middleware

import (
	"strings"

	"shiftmatch/internal/pkg/jwt"
	"shiftmatch/internal/usecase"

	"github.com/cockroachdb/errors"
	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
)

const CtxCallerKey = "caller"

// DemoIdentity stands in for unauthenticated callers when Enabled.
type DemoIdentity struct {
	Enabled    bool
	WorkerID   uuid.UUID
	BusinessID uuid.UUID
}

type IdentityMiddleware struct {
	tokens jwt.Verifier
	demo   DemoIdentity
}

func NewIdentityMiddleware(tokens jwt.Verifier, demo DemoIdentity) *IdentityMiddleware {
	return &IdentityMiddleware{tokens: tokens, demo: demo}
}

// Worker admits worker callers only.
func (m *IdentityMiddleware) Worker() fiber.Handler {
	return m.require(usecase.RoleWorker)
}

// Business admits business callers only.
func (m *IdentityMiddleware) Business() fiber.Handler {
	return m.require(usecase.RoleBusiness)
}

// Any admits either role; demo mode falls back to the demo worker.
func (m *IdentityMiddleware) Any() fiber.Handler {
	return m.require("")
}

func (m *IdentityMiddleware) require(role usecase.Role) fiber.Handler {
	return func(c fiber.Ctx) error {
		caller, err := m.Resolve(c, role)
		if err != nil {
			return err
		}
		c.Locals(CtxCallerKey, caller)
		return c.Next()
	}
}

// Resolve identifies the caller of c. A presented token always wins over the
// demo identity.
func (m *IdentityMiddleware) Resolve(c fiber.Ctx, role usecase.Role) (usecase.Caller, error) {
	token, ok := bearerTokenFromHeader(c.Get("Authorization"))
	if !ok {
		token = strings.TrimSpace(c.Query("token"))
		ok = token != ""
	}
	if !ok {
		if caller, ok := m.demoCaller(role); ok {
			return caller, nil
		}
		return usecase.Caller{}, NewAppError(fiber.StatusUnauthorized, "Unauthorized", nil, nil)
	}
	if m.tokens == nil {
		return usecase.Caller{}, NewAppError(fiber.StatusUnauthorized, "Unauthorized", nil, nil)
	}

	claims, err := m.tokens.Verify(token)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return usecase.Caller{}, NewAppError(fiber.StatusUnauthorized, "Token expired", nil, err)
		}
		return usecase.Caller{}, NewAppError(fiber.StatusUnauthorized, "Invalid token", nil, err)
	}
	caller := usecase.Caller{ID: claims.ActorID, Role: usecase.Role(claims.Role)}
	if !caller.IsWorker() && !caller.IsBusiness() {
		return usecase.Caller{}, NewAppError(fiber.StatusUnauthorized, "Invalid token", nil, nil)
	}
	if role != "" && caller.Role != role {
		return usecase.Caller{}, NewAppError(fiber.StatusForbidden, "Forbidden", nil, nil)
	}
	return caller, nil
}

func (m *IdentityMiddleware) demoCaller(role usecase.Role) (usecase.Caller, bool) {
	if !m.demo.Enabled {
		return usecase.Caller{}, false
	}
	switch role {
	case usecase.RoleBusiness:
		return usecase.Caller{ID: m.demo.BusinessID, Role: usecase.RoleBusiness}, m.demo.BusinessID != uuid.Nil
	default:
		return usecase.Caller{ID: m.demo.WorkerID, Role: usecase.RoleWorker}, m.demo.WorkerID != uuid.Nil
	}
}

// CallerFrom returns the caller stored by the identity middleware.
func CallerFrom(c fiber.Ctx) (usecase.Caller, bool) {
	caller, ok := c.Locals(CtxCallerKey).(usecase.Caller)
	return caller, ok
}

func bearerTokenFromHeader(authHeader string) (string, bool) {
	authHeader = strings.TrimSpace(authHeader)
	if authHeader == "" {
		return "", false
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 {
		return "", false
	}
	if !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}

	token := strings.TrimSpace(parts[1])
	if token == "" {
		return "", false
	}

	return token, true
}
