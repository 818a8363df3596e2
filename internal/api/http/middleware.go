package http

import (
	"context"
	"net/http"
	"regexp"
	"runtime/debug"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"go.uber.org/zap"

	"github.com/spec-kit/contacts-service/internal/config"
	"github.com/spec-kit/contacts-service/internal/observability"
	apperrors "github.com/spec-kit/contacts-service/pkg/util/errorutil"
)

// RegisterMiddlewares attaches global middlewares such as error handling and logging.
func RegisterMiddlewares(app *fiber.App, cfg config.AppConfig, logger *zap.Logger, metrics *observability.Metrics) {
	app.Use(requestid.New())
	app.Use(observability.RequestLogger(logger, metrics))
	app.Use(errorHandlingMiddleware(logger, metrics))
	if timeout := cfg.RequestTimeout(); timeout > 0 {
		app.Use(requestTimeoutMiddleware(timeout))
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins,
		AllowCredentials: cfg.CORSOrigins != "*",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
	}))
	app.Use(bannedAgentsMiddleware(cfg.BannedUserAgents))
}

func requestTimeoutMiddleware(timeout time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), timeout)
		defer cancel()
		c.SetUserContext(ctx)
		return c.Next()
	}
}

// bannedAgentsMiddleware rejects requests whose User-Agent matches any of the
// configured patterns, case-insensitively.
func bannedAgentsMiddleware(agents []string) fiber.Handler {
	var patterns []string
	for _, a := range agents {
		if a = strings.TrimSpace(a); a != "" {
			patterns = append(patterns, regexp.QuoteMeta(a))
		}
	}
	if len(patterns) == 0 {
		return func(c *fiber.Ctx) error { return c.Next() }
	}
	banned := regexp.MustCompile("(?i)" + strings.Join(patterns, "|"))

	return func(c *fiber.Ctx) error {
		if banned.MatchString(c.Get(fiber.HeaderUserAgent)) {
			return c.Status(http.StatusForbidden).JSON(fiber.Map{"detail": "You are banned"})
		}
		return c.Next()
	}
}

func errorHandlingMiddleware(logger *zap.Logger, metrics *observability.Metrics) fiber.Handler {
	return func(c *fiber.Ctx) (err error) {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("panic recovered", zap.Any("panic", r), zap.ByteString("stack", debug.Stack()))
				err = apperrors.NewInternalError(nil)
			}
			if err != nil {
				domainErr := apperrors.ToDomainError(err)
				metrics.RecordError(c.Path(), c.Method(), domainErr.Code)
				response := fiber.Map{"error": fiber.Map{
					"code":    domainErr.Code,
					"message": domainErr.Message,
				}}
				if len(domainErr.Details) > 0 {
					response["error"].(fiber.Map)["details"] = domainErr.Details
				}
				switch {
				case domainErr.HTTPStatus >= 500:
					logger.Error("request failed", zap.Error(domainErr))
				case domainErr.HTTPStatus == http.StatusUnauthorized:
					c.Set(fiber.HeaderWWWAuthenticate, "Bearer")
					logger.Debug("request unauthenticated", zap.String("path", c.Path()), zap.Error(domainErr))
				}
				c.Status(domainErr.HTTPStatus)
				_ = c.JSON(response)
				err = nil
			}
		}()
		return c.Next()
	}
}
