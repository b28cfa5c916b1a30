package handlers

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/igreja-retiro/retiro-api/internal/auth"
	"github.com/igreja-retiro/retiro-api/internal/config"
	"github.com/igreja-retiro/retiro-api/internal/metrics"
)

func adminOnly(o *huma.Operation) {
	o.Security = []map[string][]string{{"cookieAuth": {}}, {"apiKeyAuth": {}}}
	o.Tags = append(o.Tags, "admin")
}

func RegisterRoutes(
	r *chi.Mux,
	cfg *config.Config,
	m *metrics.Metrics,
	authHandler *auth.AuthHandler,
	registrationHandler *RegistrationHandler,
	churchHandler *ChurchHandler,
	registrantHandler *RegistrantHandler,
	apiKeyHandler *APIKeyHandler,
) huma.API {
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	if cfg.EnableCORS {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   []string{cfg.FrontendURL},
			AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Content-Type", "X-API-KEY"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}
	r.Use(authHandler.SessionMiddleware)

	// Initialize Huma API
	humaConfig := huma.DefaultConfig("Retiro API", "1.0.0")
	humaConfig.Components.SecuritySchemes = map[string]*huma.SecurityScheme{
		"cookieAuth": {
			Type: "apiKey",
			In:   "cookie",
			Name: auth.TokenCookieName,
		},
		"apiKeyAuth": {
			Type: "apiKey",
			In:   "header",
			Name: "X-API-KEY",
		},
	}
	api := humachi.New(r, humaConfig)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})
	if m != nil {
		r.Handle("/metrics", m.Handler())
	}

	// Public form
	huma.Get(api, "/churches", registrationHandler.HandleChurches)
	huma.Get(api, "/event", registrationHandler.HandleEvent)
	huma.Post(api, "/fees/quote", registrationHandler.HandleQuote)
	huma.Post(api, "/registrations", registrationHandler.HandleSubmit)

	// Auth routes
	huma.Get(api, "/auth/discord/login", authHandler.HandleLogin)
	huma.Get(api, "/auth/discord/callback", authHandler.HandleCallback)
	huma.Post(api, "/auth/sign-out", authHandler.HandleSignOut)
	huma.Get(api, "/me", authHandler.HandleMe, func(o *huma.Operation) {
		o.Security = []map[string][]string{{"cookieAuth": {}}, {"apiKeyAuth": {}}}
	})

	// Admin routes
	huma.Get(api, "/admin/churches", churchHandler.HandleList, adminOnly)
	huma.Post(api, "/admin/churches", churchHandler.HandleCreate, adminOnly)
	huma.Put(api, "/admin/churches/{id}", churchHandler.HandleUpdate, adminOnly)
	huma.Delete(api, "/admin/churches/{id}", churchHandler.HandleDelete, adminOnly)

	huma.Get(api, "/admin/registrants", registrantHandler.HandleList, adminOnly)
	huma.Patch(api, "/admin/registrants/{id}", registrantHandler.HandleUpdate, adminOnly)
	huma.Delete(api, "/admin/registrants/{id}", registrantHandler.HandleDelete, adminOnly)
	huma.Get(api, "/admin/registrants/{id}/history", registrantHandler.HandleHistory, adminOnly)
	huma.Get(api, "/admin/stats", registrantHandler.HandleStats, adminOnly)

	huma.Get(api, "/admin/api-keys", apiKeyHandler.HandleList, adminOnly)
	huma.Post(api, "/admin/api-keys", apiKeyHandler.HandleCreate, adminOnly)
	huma.Delete(api, "/admin/api-keys/{id}", apiKeyHandler.HandleDelete, adminOnly)

	return api
}
