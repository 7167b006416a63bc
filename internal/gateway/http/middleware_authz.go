package http

import (
	"net/http"

	"github.com/storemesh/storemesh/internal/gateway/policy"
	"github.com/storemesh/storemesh/pkg/httpx"
	"github.com/storemesh/storemesh/pkg/slogx"
)

// Authorize enforces the route policy against the principal installed by the
// token verification middleware. Anonymous requests hitting a protected route
// get 401; authenticated requests without the required authority get 403.
func Authorize(p *policy.Policy) httpx.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, authenticated := httpx.PrincipalFromContext(r.Context())

			switch p.Evaluate(r.Method, r.URL.Path, principal, authenticated) {
			case policy.Allow:
				next.ServeHTTP(w, r)
			case policy.DenyUnauthenticated:
				httpx.WriteMessage(w, http.StatusUnauthorized, "authentication required")
			case policy.DenyForbidden:
				slogx.FromContext(r.Context()).Warn("request forbidden",
					"subject", principal.Subject,
					"method", r.Method,
					"path", r.URL.Path,
				)
				httpx.WriteMessage(w, http.StatusForbidden, "insufficient permissions")
			}
		})
	}
}
