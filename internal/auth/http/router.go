package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/storemesh/storemesh/internal/auth/service"
	"github.com/storemesh/storemesh/pkg/httpx"
	"github.com/storemesh/storemesh/pkg/slogx"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	authHeader   string
	buildVersion string
	startTime    time.Time
	logger       *slog.Logger

	Verifier *service.CredentialVerifier
	Issuer   *service.TokenIssuer

	// Ready checks downstream dependencies for the readiness probe.
	Ready func() error
}

func NewRouter(authHeader, buildVersion string, logger *slog.Logger) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		authHeader:   authHeader,
		buildVersion: buildVersion,
		startTime:    time.Now(),
		logger:       logger,
	}

	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerAuth()
	r.registerSystem()
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerAuth() {
	loginHandler := &LoginHandler{
		Verifier:   r.Verifier,
		Issuer:     r.Issuer,
		AuthHeader: r.authHeader,
		Logger:     r.logger,
	}

	// POST /auth/login - strict rate limit (authentication attempts)
	r.Mux.Handle("POST /auth/login",
		httpx.Chain(http.HandlerFunc(loginHandler.HandleLogin),
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)

	// POST /auth/guest - no credential check, but still brute-force limited
	r.Mux.Handle("POST /auth/guest",
		httpx.Chain(http.HandlerFunc(loginHandler.HandleGuest),
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)
}

func (r *Router) registerSystem() {
	r.Mux.Handle("GET /livez",
		httpx.Chain(httpx.LivezHandler(r.startTime, r.buildVersion),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("GET /readyz",
		httpx.Chain(httpx.ReadyzHandler(r.startTime, r.buildVersion, r.Ready),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
}
