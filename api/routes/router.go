package routes

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/agrogas/agrogas-backend/api/controllers"
	ordercontrollers "github.com/agrogas/agrogas-backend/api/controllers/orders"
	"github.com/agrogas/agrogas-backend/api/middleware"
	"github.com/agrogas/agrogas-backend/internal/auth"
	"github.com/agrogas/agrogas-backend/internal/orders"
	"github.com/agrogas/agrogas-backend/internal/pricing"
	"github.com/agrogas/agrogas-backend/internal/records"
	"github.com/agrogas/agrogas-backend/pkg/config"
	"github.com/agrogas/agrogas-backend/pkg/enums"
	"github.com/agrogas/agrogas-backend/pkg/logger"
	pkgredis "github.com/agrogas/agrogas-backend/pkg/redis"
)

// RateLimiter is the redis surface used by the login throttle.
type RateLimiter interface {
	FixedWindowAllow(ctx context.Context, scope string, limit int64, window time.Duration) (bool, int64, error)
}

// Dependencies groups everything the router wires into handlers. Redis
// backed collaborators are optional and must be left nil (not a typed nil
// pointer) when redis is not configured.
type Dependencies struct {
	DB          controllers.Pinger
	Redis       controllers.Pinger
	Idempotency pkgredis.IdempotencyStore
	RateLimiter RateLimiter
	Metrics     middleware.HTTPObserver
	Gatherer    prometheus.Gatherer

	Auth    auth.Service
	Records records.Service
	Orders  orders.Service
	Pricing pricing.Service
}

func NewRouter(cfg *config.Config, logg *logger.Logger, deps Dependencies) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.RequestID(logg),
		middleware.Logging(logg, deps.Metrics),
		middleware.Recoverer(logg),
	)
	if len(cfg.App.CORSOrigins) > 0 {
		r.Use(middleware.CORS(cfg.App.CORSOrigins))
	}

	limitLogin := middleware.AuthRateLimit(middleware.AuthRateLimitPolicy{
		Name:       "login",
		Window:     cfg.AuthRateLimit.LoginWindow,
		IPLimit:    cfg.AuthRateLimit.LoginIPLimit,
		PhoneLimit: cfg.AuthRateLimit.LoginPhoneLimit,
	}, deps.RateLimiter, logg)
	// request and confirm share counters so reset codes cannot be guessed
	limitReset := middleware.AuthRateLimit(middleware.AuthRateLimitPolicy{
		Name:       "reset",
		Window:     cfg.AuthRateLimit.ResetWindow,
		IPLimit:    cfg.AuthRateLimit.ResetIPLimit,
		PhoneLimit: cfg.AuthRateLimit.ResetPhoneLimit,
	}, deps.RateLimiter, logg)
	idempotent := middleware.Idempotency(deps.Idempotency, logg)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg.App.Env))
		r.Get("/ready", controllers.HealthReady(cfg.App.Env, logg, readinessChecks(deps)))
	})

	if deps.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/estimate", controllers.Estimate(deps.Pricing, logg))

		r.With(idempotent).Post("/records", controllers.CreateRecord(deps.Records, logg))
		r.Get("/records", controllers.ListRecords(deps.Records, logg))
		r.Get("/records/{recordId}", controllers.GetRecord(deps.Records, logg))

		r.With(idempotent).Post("/orders", ordercontrollers.Place(deps.Orders, logg))
		r.Get("/orders", ordercontrollers.List(deps.Orders, logg))

		r.Route("/auth", func(r chi.Router) {
			r.With(idempotent).Post("/register", controllers.AuthRegister(deps.Auth, logg))
			r.With(limitLogin).Post("/login", controllers.AuthLogin(deps.Auth, logg))
			r.With(limitReset).Post("/reset-request", controllers.AuthResetRequest(deps.Auth, logg))
			r.With(limitReset).Post("/reset-confirm", controllers.AuthResetConfirm(deps.Auth, logg))
			r.With(
				middleware.Auth(cfg.JWT, logg),
				middleware.RequireRole(enums.UserRoleAdmin, logg),
			).Get("/users", controllers.AuthListUsers(deps.Auth, logg))
		})

		r.Route("/admin", func(r chi.Router) {
			r.Get("/config", controllers.AdminGetConfig(deps.Pricing, logg))
			r.With(
				middleware.Auth(cfg.JWT, logg),
				middleware.RequireRole(enums.UserRoleAdmin, logg),
			).Post("/config", controllers.AdminUpdateConfig(deps.Pricing, logg))
		})
	})

	return r
}

func readinessChecks(deps Dependencies) map[string]controllers.Pinger {
	checks := map[string]controllers.Pinger{"db": deps.DB}
	// redis stays optional; report it only when configured
	if deps.Redis != nil {
		checks["redis"] = deps.Redis
	}
	return checks
}
