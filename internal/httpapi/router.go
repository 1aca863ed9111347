package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	"github.com/PabloPavan/sniply_inject/internal/telemetry"
)

const serviceName = "sniply-inject"

type App struct {
	// Prefix is where the admin API is mounted, e.g. "/_sniply".
	Prefix   string
	Health   *HealthHandler
	Snippets *SnippetsHandler
	Settings *SettingsHandler
	Auth     Authenticator
	Limiter  RateLimiter
	// Site receives every request outside Prefix.
	Site http.Handler
}

func NewRouter(app *App) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(telemetry.ChiTraceMiddleware(serviceName))
	r.Use(telemetry.ChiMetricsMiddleware)
	r.Use(telemetry.ChiLogMiddleware(serviceName))

	prefix := app.Prefix
	if prefix == "" {
		prefix = "/_sniply"
	}

	r.Route(prefix, func(r chi.Router) {
		r.Get("/health", app.Health.Get)
		r.Get("/docs/*", httpSwagger.Handler(httpSwagger.URL(prefix+"/docs/doc.json")))

		r.Route("/v1", func(r chi.Router) {
			r.Use(AuthMiddleware(app.Auth))
			r.Use(RateLimitWrites(app.Limiter))

			r.Route("/snippets", func(r chi.Router) {
				r.Post("/", app.Snippets.Create)
				r.Get("/", app.Snippets.List)
				r.Get("/{id}", app.Snippets.GetByID)
				r.Put("/{id}", app.Snippets.Update)
				r.Delete("/{id}", app.Snippets.Delete)
				r.Post("/{id}/toggle", app.Snippets.Toggle)
				r.Put("/{id}/active", app.Snippets.SetActive)
			})

			r.Get("/locations/{location}/snippets", app.Snippets.ListByLocation)

			r.Get("/settings/header-footer", app.Settings.GetHeaderFooter)
			r.Put("/settings/header-footer", app.Settings.PutHeaderFooter)
			r.Get("/safe-mode", app.Settings.GetSafeMode)
		})
	})

	if app.Site != nil {
		site := OptionalAuthMiddleware(app.Auth)(app.Site)
		r.NotFound(site.ServeHTTP)
	}

	return r
}
