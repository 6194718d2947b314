package httpapi

import (
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/i474232898/weather-dashboard/internal/auth"
	"github.com/i474232898/weather-dashboard/internal/catalog"
	"github.com/i474232898/weather-dashboard/internal/logging"
	"github.com/i474232898/weather-dashboard/internal/weather"
)

const (
	msgNoCities    = "No cities"
	msgFetchFailed = "Fetch failed"
)

// ErrorHandler renders every error as {"error": "<message>"}.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	msg := "Internal Server Error"

	var e *fiber.Error
	if errors.As(err, &e) {
		code = e.Code
		msg = e.Message
	} else {
		logging.Error().Err(err).Str("path", c.Path()).Msg("unhandled error")
	}

	return c.Status(code).JSON(fiber.Map{"error": msg})
}

// RegisterRoutes wires the HTTP handlers into the Fiber app.
// Weather data and the profile endpoint sit behind the auth gate.
func RegisterRoutes(app *fiber.App, service *weather.Service, gate *auth.Gate) {
	requireAuth := gate.Middleware()
	h := weatherHandler(service)

	app.Get("/weather", requireAuth, h)
	app.Get("/api/weather", requireAuth, h)

	app.Get("/me", requireAuth, func(c *fiber.Ctx) error {
		profile, ok := auth.ProfileFrom(c)
		if !ok {
			return fiber.NewError(fiber.StatusUnauthorized, "Unauthorized")
		}
		return c.JSON(profile)
	})
}

func weatherHandler(service *weather.Service) fiber.Handler {
	return func(c *fiber.Ctx) (err error) {
		defer func() {
			if r := recover(); r != nil {
				logging.Error().Str("panic", fmt.Sprint(r)).Msg("weather handler panicked")
				err = fiber.NewError(fiber.StatusInternalServerError, msgFetchFailed)
			}
		}()

		snapshot, fromCache, err := service.Get(c.UserContext())
		if err != nil {
			if errors.Is(err, catalog.ErrNoCities) {
				return fiber.NewError(fiber.StatusBadRequest, msgNoCities)
			}
			return fiber.NewError(fiber.StatusInternalServerError, msgFetchFailed)
		}

		if fromCache {
			c.Set("X-Cache", "HIT")
		} else {
			c.Set("X-Cache", "MISS")
		}
		c.Set("X-Produced-At", snapshot.ProducedAt.UTC().Format(time.RFC3339))

		return c.JSON(snapshot.Records)
	}
}
