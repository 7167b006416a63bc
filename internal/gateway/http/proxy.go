package http

import (
	"log/slog"
	"net/http"
	"net/http/httputil"
	"net/url"
	"strings"

	"github.com/storemesh/storemesh/pkg/httpx"
	"github.com/storemesh/storemesh/pkg/idx"
)

// Identity propagation headers. The gateway strips any inbound values before
// setting its own, so clients can never spoof an identity past it.
const (
	HeaderSubject     = "X-Auth-Subject"
	HeaderAuthorities = "X-Auth-Authorities"

	// HeaderRequestID correlates log lines for one request across services.
	HeaderRequestID = "X-Request-ID"
)

// Route forwards requests under Prefix to Upstream. With StripPrefix set the
// prefix is removed before forwarding, so /user/users/1 becomes /users/1.
type Route struct {
	Prefix      string
	Upstream    *url.URL
	StripPrefix bool
}

// Proxy is the gateway's forwarding layer: longest-prefix route selection,
// identity header propagation, and a JSON error body when an upstream is
// down.
type Proxy struct {
	routes  []Route
	proxies map[string]*httputil.ReverseProxy
	logger  *slog.Logger
}

func NewProxy(routes []Route, logger *slog.Logger) *Proxy {
	p := &Proxy{
		routes:  routes,
		proxies: make(map[string]*httputil.ReverseProxy, len(routes)),
		logger:  logger,
	}

	for _, route := range routes {
		p.proxies[route.Prefix] = p.buildProxy(route)
	}
	return p
}

func (p *Proxy) buildProxy(route Route) *httputil.ReverseProxy {
	return &httputil.ReverseProxy{
		Rewrite: func(pr *httputil.ProxyRequest) {
			pr.SetURL(route.Upstream)
			pr.SetXForwarded()

			if route.StripPrefix {
				stripped := strings.TrimPrefix(pr.In.URL.Path, route.Prefix)
				if stripped == "" {
					stripped = "/"
				}
				pr.Out.URL.Path = stripped
				pr.Out.URL.RawPath = ""
			}

			// Carry one request id across the mesh for log correlation,
			// minting it here when the client didn't send one.
			if pr.In.Header.Get(HeaderRequestID) == "" {
				pr.Out.Header.Set(HeaderRequestID, idx.New().String())
			}

			// Inbound identity headers are untrusted.
			pr.Out.Header.Del(HeaderSubject)
			pr.Out.Header.Del(HeaderAuthorities)

			if principal, ok := httpx.PrincipalFromContext(pr.In.Context()); ok {
				pr.Out.Header.Set(HeaderSubject, principal.Subject)
				pr.Out.Header.Set(HeaderAuthorities, strings.Join(principal.Authorities, ","))
			}
		},
		ErrorHandler: func(w http.ResponseWriter, r *http.Request, err error) {
			p.logger.Error("upstream request failed",
				"prefix", route.Prefix,
				"upstream", route.Upstream.String(),
				"err", err,
			)
			httpx.WriteMessage(w, http.StatusBadGateway, "upstream unavailable")
		},
	}
}

// ServeHTTP forwards the request to the longest matching route.
func (p *Proxy) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var best *Route
	for i := range p.routes {
		route := &p.routes[i]
		if r.URL.Path != route.Prefix && !strings.HasPrefix(r.URL.Path, route.Prefix+"/") {
			continue
		}
		if best == nil || len(route.Prefix) > len(best.Prefix) {
			best = route
		}
	}

	if best == nil {
		httpx.WriteMessage(w, http.StatusNotFound, "no route")
		return
	}
	p.proxies[best.Prefix].ServeHTTP(w, r)
}
