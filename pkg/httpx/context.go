package httpx

import (
	"context"
	"slices"
)

// Principal is the authenticated identity reconstructed from a verified
// token. It lives in a single request's context and is never shared across
// requests.
type Principal struct {
	Subject     string
	Authorities []string
}

// HasAnyAuthority reports whether the principal holds at least one of the
// wanted authorities.
func (p Principal) HasAnyAuthority(wanted ...string) bool {
	for _, w := range wanted {
		if slices.Contains(p.Authorities, w) {
			return true
		}
	}
	return false
}

type ctxKey int

const ctxKeyPrincipal ctxKey = iota

// WithPrincipal attaches a principal to the request context.
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, ctxKeyPrincipal, p)
}

// PrincipalFromContext returns the request principal, if one was installed.
// ok is false for anonymous requests.
func PrincipalFromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(ctxKeyPrincipal).(Principal)
	return p, ok
}
