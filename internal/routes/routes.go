package routes

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/redis/go-redis/v9"

	"github.com/firstcare-health/member-registry/internal/artifacts"
	"github.com/firstcare-health/member-registry/internal/card"
	"github.com/firstcare-health/member-registry/internal/config"
	"github.com/firstcare-health/member-registry/internal/metrics"
	"github.com/firstcare-health/member-registry/internal/middleware"
	"github.com/firstcare-health/member-registry/internal/notification"
	"github.com/firstcare-health/member-registry/internal/regid"
	"github.com/firstcare-health/member-registry/internal/registration"
	"github.com/firstcare-health/member-registry/internal/registry"
)

// Deps aggregates shared dependencies required to wire routes.
type Deps struct {
	Cfg     config.Config
	Store   registry.Store
	Cache   *redis.Client
	Logger  *slog.Logger
	Metrics *metrics.Metrics
}

// Setup configures middlewares and all application routes.
func Setup(app *fiber.App, d Deps) error {
	if d.Store == nil {
		return fmt.Errorf("registry store is required")
	}
	if d.Metrics == nil {
		d.Metrics = metrics.New()
	}

	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     d.Cfg.CORSOrigin,
		AllowCredentials: d.Cfg.CORSOrigin != "*",
		AllowHeaders:     "Origin, Content-Type, Accept, Idempotency-Key, X-Request-ID",
	}))
	app.Use(middleware.RequestID())
	if d.Cfg.IsDev() {
		app.Use(logger.New(logger.Config{
			Format:     "[${time}] ${status} -  ${latency} ${method} ${path}\n",
			TimeFormat: "15:04:05",
			TimeZone:   "Local",
		}))
	}
	app.Use(middleware.Audit(d.Logger))
	if d.Cache != nil {
		app.Use(middleware.Idempotency(d.Cache, d.Cfg.IdempotencyTTL, d.Logger))
	}

	RegisterHealthRoutes(app, d)
	RegisterMetricsRoute(app, d.Metrics)

	svc, err := newRegistrationService(d)
	if err != nil {
		return err
	}

	api := app.Group("/api")
	api.Get("/ping", func(c *fiber.Ctx) error {
		return c.Status(http.StatusOK).JSON(fiber.Map{
			"status":     "ok",
			"request_id": middleware.GetRequestID(c),
			"timestamp":  time.Now().UTC().Format(time.RFC3339Nano),
		})
	})

	registerLimit := middleware.RateLimit("register", d.Cache, d.Cfg.RegisterPerMin, d.Logger)
	RegisterRegistrationRoutes(api, registration.NewHandler(svc), registerLimit)

	return nil
}

func newRegistrationService(d Deps) (*registration.Service, error) {
	pages, err := card.ParsePages(d.Cfg.CardPages)
	if err != nil {
		return nil, err
	}
	layout := card.DefaultLayout()
	layout.Pages = pages

	renderer, err := card.NewRenderer(layout, card.WithLogoPath(d.Cfg.CardLogoPath), card.WithLogger(d.Logger))
	if err != nil {
		return nil, fmt.Errorf("build card renderer: %w", err)
	}

	return registration.NewService(registration.Deps{
		Store:    d.Store,
		IDs:      regid.New(d.Cfg.RegPrefix),
		Renderer: renderer,
		Uploads:  artifacts.NewDir(d.Cfg.UploadDir),
		Cards:    artifacts.NewDir(d.Cfg.ArtifactDir),
		Fee:      d.Cfg.RegistrationFee,
		Notifier: notification.NewLoggerNotifier(d.Logger),
		Metrics:  d.Metrics,
		Logger:   d.Logger,
	}), nil
}
