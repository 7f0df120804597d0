package app

import (
	"context"
	"strings"

	"shiftmatch/internal/config"
	"shiftmatch/internal/delivery/http/handler"
	"shiftmatch/internal/delivery/http/middleware"
	"shiftmatch/internal/delivery/http/routes"
	"shiftmatch/internal/usecase"
	"shiftmatch/internal/ws"

	"github.com/cockroachdb/errors"
	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type App struct {
	Fiber     *fiber.App
	Container *Container
}

// New builds the HTTP application around an already wired container.
func New(c *Container) *App {
	cfg := c.Config
	f := fiber.New(fiber.Config{AppName: cfg.App.AppName})

	registerGlobalMiddleware(f, c.Log)

	identity := middleware.NewIdentityMiddleware(c.Tokens, middleware.DemoIdentity{
		Enabled:    cfg.App.DemoMode,
		WorkerID:   cfg.App.DemoWorkerID,
		BusinessID: cfg.App.DemoBusinessID,
	})

	registry := routes.Registry{
		Health:     handler.NewHealthHandler(healthChecks(c)),
		AIMatching: handler.NewAIMatchingHandler(c.AIMatching),
		Jobs:       handler.NewJobHandler(c.JobUsecase, c.Compatibility),
		Matches:    handler.NewMatchHandler(c.MatchUsecase),
		WS:         ws.NewHandler(c.Hub, workerIdentity(identity), c.Log),
		Identity:   identity,
		RateLimit:  middleware.NewRateLimitMiddleware(cfg.Matching.RateLimitRPS, cfg.Matching.RateLimitBurst),
	}
	registry.Register(f)

	return &App{Fiber: f, Container: c}
}

// Bootstrap wires every dependency and returns the app with its cleanup.
func Bootstrap(cfg config.Config, log *zap.Logger) (*App, func() error, error) {
	c, err := NewContainer(cfg, log)
	if err != nil {
		return nil, nil, err
	}
	return New(c), c.Close, nil
}

func registerGlobalMiddleware(app *fiber.App, log *zap.Logger) {
	if app == nil {
		return
	}

	errMw := middleware.NewErrorMiddleware(log)
	app.Use(errMw.Middleware())

	accessLog := middleware.NewAccessLogMiddleware(log)
	app.Use(accessLog.Middleware())
}

func healthChecks(c *Container) map[string]handler.Pinger {
	checks := map[string]handler.Pinger{
		handler.CheckDatabase: c.DB.Ping,
		"redis":               c.Cache.Ping,
	}
	if c.Publisher != nil {
		checks["rabbitmq"] = func(context.Context) error { return c.Publisher.Ping() }
	}
	return checks
}

func workerIdentity(m *middleware.IdentityMiddleware) func(fiber.Ctx) (uuid.UUID, bool) {
	return func(c fiber.Ctx) (uuid.UUID, bool) {
		caller, err := m.Resolve(c, usecase.RoleWorker)
		if err != nil {
			return uuid.Nil, false
		}
		return caller.ID, true
	}
}

func ListenAddr(port string) (string, error) {
	p := strings.TrimSpace(port)
	if p == "" {
		return "", errors.New("empty HTTP port")
	}
	if strings.HasPrefix(p, ":") {
		return p, nil
	}
	return ":" + p, nil
}
