package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/storemesh/storemesh/internal/store/service"
	"github.com/storemesh/storemesh/pkg/httpx"
	"github.com/storemesh/storemesh/pkg/slogx"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	buildVersion string
	startTime    time.Time
	logger       *slog.Logger

	Stores    *service.StoreService
	Favorites *service.FavoriteService

	// Ready checks downstream dependencies for the readiness probe.
	Ready func() error
}

func NewRouter(buildVersion string, logger *slog.Logger) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
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
	r.registerStores()
	r.registerFavorites()
	r.registerSystem()
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerStores() {
	h := &StoresHandler{Stores: r.Stores, Logger: r.logger}
	limited := httpx.RateLimitByIP(httpx.LenientLimit)

	r.Mux.Handle("GET /stores", httpx.Chain(http.HandlerFunc(h.HandleList), limited))
	r.Mux.Handle("GET /stores/nearest", httpx.Chain(http.HandlerFunc(h.HandleNearest), limited))
	r.Mux.Handle("GET /stores/{id}", httpx.Chain(http.HandlerFunc(h.HandleGet), limited))
	r.Mux.Handle("POST /stores", httpx.Chain(http.HandlerFunc(h.HandleCreate), limited))
	r.Mux.Handle("PUT /stores/{id}", httpx.Chain(http.HandlerFunc(h.HandleUpdate), limited))
	r.Mux.Handle("DELETE /stores/{id}", httpx.Chain(http.HandlerFunc(h.HandleDelete), limited))
}

func (r *Router) registerFavorites() {
	h := &FavoritesHandler{Favorites: r.Favorites, Logger: r.logger}
	limited := httpx.RateLimitByIP(httpx.LenientLimit)

	r.Mux.Handle("GET /favorites", httpx.Chain(http.HandlerFunc(h.HandleList), limited))
	r.Mux.Handle("POST /favorites/{storeID}", httpx.Chain(http.HandlerFunc(h.HandleAdd), limited))
	r.Mux.Handle("DELETE /favorites/{storeID}", httpx.Chain(http.HandlerFunc(h.HandleRemove), limited))
}

func (r *Router) registerSystem() {
	r.Mux.Handle("GET /livez", httpx.LivezHandler(r.startTime, r.buildVersion))
	r.Mux.Handle("GET /readyz", httpx.ReadyzHandler(r.startTime, r.buildVersion, r.Ready))
}
