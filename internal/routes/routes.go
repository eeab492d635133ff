package routes

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/roadsphere/roadsphere/internal/auth"
	"github.com/roadsphere/roadsphere/internal/booking"
	"github.com/roadsphere/roadsphere/internal/config"
	"github.com/roadsphere/roadsphere/internal/identity"
	"github.com/roadsphere/roadsphere/internal/metrics"
	"github.com/roadsphere/roadsphere/internal/middleware"
	"github.com/roadsphere/roadsphere/internal/notification"
	"github.com/roadsphere/roadsphere/internal/otp"
	"github.com/roadsphere/roadsphere/internal/store"
	"github.com/roadsphere/roadsphere/internal/vehicle"
)

// Deps aggregates shared dependencies required to wire routes.
type Deps struct {
	Cfg     config.Config
	DB      *pgxpool.Pool
	Cache   *redis.Client
	Logger  *slog.Logger
	Metrics *metrics.Metrics

	// Optional overrides. Nil picks the backend implied by Cfg and DB.
	Notifier notification.Notifier
	Vehicles vehicle.Repository
	Clock    func() time.Time
}

// Setup configures middlewares and all application routes.
func Setup(app *fiber.App, d Deps) error {
	// Enforce DB/Redis presence outside of dev, even though main also checks.
	if !d.Cfg.IsDev() {
		if d.DB == nil {
			return fmt.Errorf("database is required when APP_ENV=%s", d.Cfg.AppEnv)
		}
		if d.Cache == nil {
			return fmt.Errorf("redis is required when APP_ENV=%s", d.Cfg.AppEnv)
		}
	}
	if d.Metrics == nil {
		d.Metrics = metrics.New("roadsphere")
	}
	if d.Clock == nil {
		d.Clock = time.Now
	}

	// Middlewares
	app.Use(recover.New())
	app.Use(middleware.RequestID())
	app.Use(middleware.Metrics(d.Metrics))
	if d.Cfg.IsDev() {
		// Plain text access log: [HH:MM:SS] 200 -  145ms METHOD /path
		app.Use(logger.New(logger.Config{
			Format:     "[${time}] ${status} -  ${latency} ${method} ${path}\n",
			TimeFormat: "15:04:05",
			TimeZone:   "Local",
		}))
	}
	app.Use(middleware.Audit(d.Logger))

	RegisterHealthRoutes(app, d)
	app.Get("/metrics", d.Metrics.Handler())

	// Storage backends
	var (
		userRepo    identity.Repository
		otpRepo     otp.Repository
		bookingRepo booking.Repository
		tx          store.Transactor
	)
	if d.DB != nil {
		userRepo = identity.NewPostgresRepository(d.DB)
		otpRepo = otp.NewPostgresRepository(d.DB)
		bookingRepo = booking.NewPostgresRepository(d.DB)
		tx = store.NewPgxTransactor(d.DB)
		if d.Vehicles == nil {
			d.Vehicles = vehicle.NewPostgresRepository(d.DB)
		}
	} else {
		userRepo = identity.NewMemoryRepository()
		otpRepo = otp.NewMemoryRepository()
		bookingRepo = booking.NewMemoryRepository()
		tx = store.NopTransactor{}
		if d.Vehicles == nil {
			d.Vehicles = vehicle.NewMemoryRepository()
		}
	}

	notifier := d.Notifier
	if notifier == nil {
		if d.Cfg.SMTPEnabled() {
			notifier = notification.NewSMTPNotifier(notification.SMTPConfig{
				Host:     d.Cfg.SMTPHost,
				Port:     d.Cfg.SMTPPort,
				Username: d.Cfg.SMTPUsername,
				Password: d.Cfg.SMTPPassword,
				From:     d.Cfg.MailFrom,
			}, d.Logger)
		} else {
			notifier = notification.NewLoggerNotifier(d.Logger)
		}
	}

	// Services and handlers
	tokens := auth.NewTokenIssuer(d.Cfg.JWTSecret, d.Clock)
	guard := auth.NewGuard(tokens, userRepo, d.Clock, d.Logger)
	authSvc := auth.NewService(auth.Options{
		Users:      userRepo,
		OTPs:       otp.NewEngine(otpRepo, otp.WithClock(d.Clock)),
		Hasher:     auth.NewPasswordHasher(d.Cfg.BcryptCost),
		Tokens:     tokens,
		Notifier:   notifier,
		Tx:         tx,
		Logger:     d.Logger,
		Metrics:    d.Metrics,
		SessionTTL: d.Cfg.SessionTokenTTL,
		ResetTTL:   d.Cfg.ResetTokenTTL,
	})
	identityHandler := identity.NewHandler(identity.NewService(userRepo, d.Logger))
	vehicleHandler := vehicle.NewHandler(vehicle.NewService(d.Vehicles, d.Logger))
	bookingHandler := booking.NewHandler(booking.NewService(bookingRepo, d.Vehicles, tx, d.Cfg.BookingMinKYCLevel, d.Logger, d.Metrics))

	// API routes
	api := app.Group("/api")
	api.Get("/ping", func(c *fiber.Ctx) error {
		return c.Status(http.StatusOK).JSON(fiber.Map{
			"status":     "ok",
			"request_id": middleware.GetRequestID(c),
			"timestamp":  time.Now().UTC().Format(time.RFC3339Nano),
		})
	})

	// Public routes
	RegisterAuthRoutes(api, auth.NewHandler(authSvc), middleware.LoginRateLimit(d.Cache, d.Cfg.LoginRateLimit))
	RegisterVehicleRoutes(api, vehicleHandler)

	// Admin routes
	admin := api.Group("/admin", middleware.RequireRoles(guard, identity.AdminRoles...))
	RegisterAdminRoutes(admin, identityHandler)

	// Protected routes. Each group has its own prefix so unknown /api paths stay 404.
	requireAuth := middleware.RequireAuth(guard)
	RegisterProfileRoutes(api.Group("/profile", requireAuth), identityHandler)
	RegisterBookingRoutes(api.Group("/bookings", requireAuth), bookingHandler, middleware.Idempotency(d.Cache, d.Cfg.IdempotencyTTL, d.Logger))

	return nil
}
