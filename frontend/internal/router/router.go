package router

import (
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	frontend_mw "github.com/tbs-portal/portal/frontend/internal/middleware"
	"github.com/tbs-portal/portal/frontend/internal/setup"
	"github.com/tbs-portal/portal/frontend/static"
	mw "github.com/tbs-portal/portal/shared/middleware"
)

func SetupRouter(deps *setup.Dependencies) chi.Router {
	h := deps.Handler
	perAccount := mw.RateLimit(deps.AccountLimiter, mw.GetFieldFromForm("email"))
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(frontend_mw.RequestLogger)
	r.Use(chimw.Recoverer)
	r.Use(deps.Metrics.Middleware)
	r.Use(mw.SecurityHeadersWithCSP(deps.Public.SecureCookies, mw.CSPWithFormTargets(origins(deps.Public.APIBaseURL)...)))

	r.Get("/healthz", h.Health)
	r.Handle("/metrics", promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{}))
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(static.FS))))

	r.Group(func(r chi.Router) {
		r.Use(frontend_mw.GenerateCSRFToken(frontend_mw.CSRFConfig{SecureCookies: deps.Public.SecureCookies}))

		r.Get("/", h.IndexGetHandler)

		// Form posts: CSRF-checked and rate limited per client.
		r.Group(func(r chi.Router) {
			r.Use(frontend_mw.ValidateCSRFToken())
			r.Use(mw.RateLimitByIP(deps.FormLimiter))

			r.Post("/register", h.RegisterPostHandler)
			r.With(perAccount).Post("/login", h.LoginPostHandler)
			r.With(perAccount).Post("/forgot/initiate", h.ForgotInitiatePostHandler)
			r.Post("/forgot/complete", h.ForgotCompletePostHandler)
			r.Post("/forgot/back", h.ForgotBackPostHandler)
		})

		r.Route("/api", func(r chi.Router) {
			r.Use(cors.Handler(cors.Options{
				AllowedOrigins:   deps.Public.CORSOrigins,
				AllowedMethods:   []string{http.MethodPost, http.MethodOptions},
				AllowedHeaders:   []string{"Content-Type", frontend_mw.CSRFHeader},
				AllowCredentials: true,
				MaxAge:           300,
			}))
			r.Use(frontend_mw.ValidateCSRFToken())
			r.Post("/validate", h.ValidatePostHandler)
		})
	})

	return r
}

func origins(raw ...string) []string {
	var out []string
	for _, s := range raw {
		u, err := url.Parse(s)
		if err != nil || u.Scheme == "" || u.Host == "" {
			continue
		}
		out = append(out, u.Scheme+"://"+u.Host)
	}
	return out
}
