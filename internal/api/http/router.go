package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/spec-kit/contacts-service/internal/api/http/handlers"
	"github.com/spec-kit/contacts-service/internal/auth"
	apperrors "github.com/spec-kit/contacts-service/pkg/util/errorutil"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Users          *handlers.UsersHandler
	Contacts       *handlers.ContactsHandler
	AuthMiddleware *auth.Middleware
	Registry       *prometheus.Registry

	// ResetLimit bounds password-reset requests per client within ResetWindow.
	ResetLimit  int
	ResetWindow time.Duration
	// LimiterStorage backs the reset limiter; nil keeps counters in process.
	LimiterStorage fiber.Storage
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/", cfg.Health.Root)
	app.Get("/api/healthchecker", cfg.Health.HealthChecker)
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	if cfg.Registry != nil {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(cfg.Registry, promhttp.HandlerOpts{})))
	}

	authGroup := app.Group("/auth")
	authGroup.Post("/signup", cfg.Auth.Signup)
	authGroup.Post("/login", cfg.Auth.Login)
	authGroup.Get("/refresh_token", cfg.Auth.RefreshToken)
	authGroup.Post("/logout", cfg.AuthMiddleware.Handle, cfg.Auth.Logout)
	authGroup.Get("/confirmed_email/:token", cfg.Auth.ConfirmedEmail)
	authGroup.Post("/request_email", cfg.Auth.RequestEmail)
	authGroup.Post("/request_reset_password", resetLimiter(cfg), cfg.Auth.RequestResetPassword)
	authGroup.Post("/reset_password/:token", cfg.Auth.ResetPassword)

	users := app.Group("/users", cfg.AuthMiddleware.Handle)
	users.Get("/me", cfg.Users.Me)
	users.Patch("/avatar", cfg.Users.UpdateAvatar)

	contacts := app.Group("/contacts", cfg.AuthMiddleware.Handle)
	contacts.Post("/", cfg.Contacts.Create)
	contacts.Get("/all", cfg.Contacts.List)
	contacts.Get("/search", cfg.Contacts.Search)
	contacts.Get("/birthdays", cfg.Contacts.Birthdays)
	contacts.Get("/:id", cfg.Contacts.Get)
	contacts.Put("/:id", cfg.Contacts.Update)
	contacts.Delete("/:id", cfg.Contacts.Delete)
}

func resetLimiter(cfg RouteConfig) fiber.Handler {
	limit := cfg.ResetLimit
	if limit <= 0 {
		limit = 1
	}
	window := cfg.ResetWindow
	if window <= 0 {
		window = time.Minute
	}
	return limiter.New(limiter.Config{
		Max:        limit,
		Expiration: window,
		Storage:    cfg.LimiterStorage,
		LimitReached: func(*fiber.Ctx) error {
			return apperrors.NewTooManyRequests("too many password reset requests")
		},
	})
}
