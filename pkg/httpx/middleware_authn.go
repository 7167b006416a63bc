package httpx

import (
	"net/http"
	"strings"

	"github.com/storemesh/storemesh/pkg/jwtx"
	"github.com/storemesh/storemesh/pkg/slogx"
)

// TokenAuthn verifies the bearer token on every inbound request and, when it
// checks out, installs the decoded principal into the request context.
//
// This middleware never rejects a request. A missing, malformed, expired or
// tampered token simply leaves the request anonymous; whether anonymous is
// acceptable for the path is the authorization policy's call, further down
// the chain. Keeping the two stages separate means token verification needs
// no knowledge of the route table.
func TokenAuthn(codec *jwtx.Codec, header, prefix string) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			log := slogx.FromContext(ctx)

			raw := r.Header.Get(header)
			if raw == "" || !strings.HasPrefix(raw, prefix) {
				next.ServeHTTP(w, r)
				return
			}

			claims, err := codec.Decode(strings.TrimSpace(strings.TrimPrefix(raw, prefix)))
			if err != nil {
				// Failed verification downgrades to anonymous, it never
				// aborts the request here.
				log.Warn("token verification failed", "err", err)
				next.ServeHTTP(w, r)
				return
			}

			principal := Principal{
				Subject:     claims.Subject,
				Authorities: claims.Authorities,
			}
			next.ServeHTTP(w, r.WithContext(WithPrincipal(ctx, principal)))
		})
	}
}
