package routes

import (
	"shiftmatch/internal/delivery/http/handler"
	"shiftmatch/internal/delivery/http/middleware"
	"shiftmatch/internal/ws"

	"github.com/gofiber/fiber/v3"
)

type Registry struct {
	Health     *handler.HealthHandler
	AIMatching *handler.AIMatchingHandler
	Jobs       *handler.JobHandler
	Matches    *handler.MatchHandler
	WS         *ws.Handler

	Identity  *middleware.IdentityMiddleware
	RateLimit *middleware.RateLimitMiddleware
}

func (r *Registry) Register(app *fiber.App) {
	if app == nil {
		return
	}

	r.registerHealth(app)
	r.registerAPI(app)
	r.registerWS(app)
}

func (r *Registry) registerHealth(app *fiber.App) {
	if r.Health != nil {
		r.Health.RegisterRoutes(app)
	}
}

func (r *Registry) registerAPI(app *fiber.App) {
	v1 := app.Group("/api").Group("/v1")

	worker := r.Identity.Worker()
	business := r.Identity.Business()
	anyone := r.Identity.Any()

	limiter := func(c fiber.Ctx) error { return c.Next() }
	if r.RateLimit != nil {
		limiter = r.RateLimit.Middleware()
	}

	r.AIMatching.RegisterRoutes(v1, worker, limiter)
	r.Jobs.RegisterRoutes(v1, business, worker, anyone)
	r.Matches.RegisterRoutes(v1, worker, anyone)
}

func (r *Registry) registerWS(app *fiber.App) {
	if r.WS == nil {
		return
	}
	app.Get("/ws/matches", r.WS.HandleMatchesWS)
}
