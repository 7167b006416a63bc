package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/storemesh/storemesh/internal/gateway/policy"
	"github.com/storemesh/storemesh/pkg/httpx"
	"github.com/storemesh/storemesh/pkg/jwtx"
	"github.com/storemesh/storemesh/pkg/slogx"
)

// Router is the gateway's request pipeline: request logging, rate limiting,
// token verification, route authorization, then the reverse proxy.
type Router struct {
	Mux *http.ServeMux

	logger    *slog.Logger
	startTime time.Time

	codec      *jwtx.Codec
	authHeader string
	authPrefix string

	Policy *policy.Policy
	Proxy  *Proxy
}

func NewRouter(codec *jwtx.Codec, authHeader, authPrefix string, logger *slog.Logger) *Router {
	return &Router{
		Mux:        http.NewServeMux(),
		logger:     logger,
		startTime:  time.Now(),
		codec:      codec,
		authHeader: authHeader,
		authPrefix: authPrefix,
	}
}

func (r *Router) ApplyRoutes() {
	version := "v0.1.0"

	r.Mux.Handle("GET /livez", httpx.LivezHandler(r.startTime, version))
	r.Mux.Handle("GET /readyz", httpx.ReadyzHandler(r.startTime, version, nil))

	// Everything else flows through the security pipeline to an upstream.
	r.Mux.Handle("/", httpx.Chain(r.Proxy,
		httpx.RateLimitByIP(httpx.LenientLimit),
		httpx.TokenAuthn(r.codec, r.authHeader, r.authPrefix),
		Authorize(r.Policy),
	))
}

// ServeHTTP implements http.Handler for Router.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, slogx.HTTPMiddleware(r.logger)).ServeHTTP(w, req)
}
