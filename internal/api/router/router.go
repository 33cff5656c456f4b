package router

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/wolfman30/mindfulu-platform/internal/booking"
	"github.com/wolfman30/mindfulu-platform/internal/community"
	"github.com/wolfman30/mindfulu-platform/internal/dashboard"
	httpmiddleware "github.com/wolfman30/mindfulu-platform/internal/http/middleware"
	"github.com/wolfman30/mindfulu-platform/internal/identity"
	"github.com/wolfman30/mindfulu-platform/internal/navigation"
	"github.com/wolfman30/mindfulu-platform/internal/resources"
	"github.com/wolfman30/mindfulu-platform/internal/webchat"
	"github.com/wolfman30/mindfulu-platform/pkg/logging"
)

// Config holds router configuration. Nil handlers leave their routes unmounted.
type Config struct {
	Logger             *logging.Logger
	Issuer             *identity.Issuer
	BookingHandler     *booking.Handler
	ChatHandler        *webchat.Handler
	ResourcesHandler   *resources.Handler
	CommunityHandler   *community.Handler
	DashboardHandler   *dashboard.Handler
	MetricsHandler     http.Handler
	RequestObserver    httpmiddleware.RequestObserver
	RateLimiter        *httpmiddleware.RateLimiter
	CORSAllowedOrigins []string
	// Ready reports dependency health for /ready. Nil means always ready.
	Ready func(r *http.Request) error
}

// New creates a new Chi router with all routes configured
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}
	r.Use(httpmiddleware.RequestLogger(cfg.Logger, cfg.RequestObserver))

	issuer := cfg.Issuer
	if issuer == nil {
		issuer = identity.NewIssuer("", 0)
	}

	// Probes and scraping bypass rate limiting and identity.
	r.Get("/health", health)
	r.Get("/ready", readiness(cfg.Ready))
	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}

	r.Group(func(api chi.Router) {
		if cfg.RateLimiter != nil {
			api.Use(cfg.RateLimiter.Middleware)
		}
		api.Use(identity.Middleware(issuer, false))

		api.Route("/auth", func(r chi.Router) {
			r.Post("/login", identity.LoginHandler(issuer))
			r.Get("/me", identity.MeHandler)
		})
		api.Get("/navigation", navigation.Handler)

		if cfg.BookingHandler != nil {
			// Compress is per mount: the chat websocket upgrade cannot pass through it.
			api.With(middleware.Compress(5)).Mount("/booking", cfg.BookingHandler.Routes())
		}
		if cfg.ChatHandler != nil {
			api.Mount("/chat", cfg.ChatHandler.Routes())
		}
		if cfg.ResourcesHandler != nil {
			api.With(middleware.Compress(5)).Mount("/resources", cfg.ResourcesHandler.Routes())
		}
		if cfg.CommunityHandler != nil {
			api.Mount("/community", cfg.CommunityHandler.Routes())
		}
		if cfg.DashboardHandler != nil {
			api.Route("/admin", func(r chi.Router) {
				r.Use(identity.RequireRole(identity.RoleAdmin))
				r.Mount("/", cfg.DashboardHandler.Routes())
			})
		}
	})

	return r
}

func health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func readiness(check func(*http.Request) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if check != nil {
			if err := check(r); err != nil {
				writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable", "error": err.Error()})
				return
			}
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
