// Package policy implements the gateway's route authorization rules.
package policy

import (
	"net/http"
	"strings"

	"github.com/storemesh/storemesh/pkg/httpx"
)

// Decision is the outcome of evaluating a request against the policy.
type Decision int

const (
	// Allow lets the request through to the upstream service.
	Allow Decision = iota
	// DenyUnauthenticated means the rule requires an identity and the
	// request has none. Maps to 401.
	DenyUnauthenticated
	// DenyForbidden means the request is authenticated but its authorities
	// don't satisfy the rule. Maps to 403.
	DenyForbidden
)

// Access is the requirement a matched rule places on the request.
type Access struct {
	permitAll   bool
	authorities []string // empty with permitAll=false means "any authenticated"
}

// PermitAll admits every request, authenticated or not.
func PermitAll() Access { return Access{permitAll: true} }

// Authenticated admits any request with a verified identity.
func Authenticated() Access { return Access{} }

// HasAnyAuthority admits authenticated requests holding at least one of the
// given authorities.
func HasAnyAuthority(authorities ...string) Access {
	return Access{authorities: authorities}
}

func (a Access) check(principal httpx.Principal, authenticated bool) Decision {
	if a.permitAll {
		return Allow
	}
	if !authenticated {
		return DenyUnauthenticated
	}
	if len(a.authorities) == 0 || principal.HasAnyAuthority(a.authorities...) {
		return Allow
	}
	return DenyForbidden
}

// Rule binds an access requirement to a method set and a path pattern.
// An empty method set matches every method.
type Rule struct {
	Methods []string
	Pattern string
	Access  Access
}

// Policy is an ordered rule table. The first matching rule wins; requests
// matching no rule require authentication.
type Policy struct {
	rules []Rule
}

func New(rules ...Rule) *Policy {
	return &Policy{rules: rules}
}

// Evaluate returns the decision for a request. authenticated reports whether
// a verified principal is present; principal is ignored when it is false.
func (p *Policy) Evaluate(method, path string, principal httpx.Principal, authenticated bool) Decision {
	for _, rule := range p.rules {
		if !matchMethod(rule.Methods, method) {
			continue
		}
		if !MatchPath(rule.Pattern, path) {
			continue
		}
		return rule.Access.check(principal, authenticated)
	}

	return Access{}.check(principal, authenticated)
}

func matchMethod(methods []string, method string) bool {
	if len(methods) == 0 {
		return true
	}
	for _, m := range methods {
		if m == method {
			return true
		}
	}
	return false
}

// MatchPath matches a request path against an ant-style pattern. "*" matches
// exactly one path segment, a trailing "/**" matches the base path itself and
// anything below it.
func MatchPath(pattern, path string) bool {
	if base, ok := strings.CutSuffix(pattern, "/**"); ok {
		return path == base || strings.HasPrefix(path, base+"/")
	}

	patSegs := strings.Split(strings.Trim(pattern, "/"), "/")
	pathSegs := strings.Split(strings.Trim(path, "/"), "/")
	if len(patSegs) != len(pathSegs) {
		return false
	}
	for i, seg := range patSegs {
		if seg != "*" && seg != pathSegs[i] {
			return false
		}
	}
	return true
}

// Default builds the mesh's route table. openFavorites keeps the favorite
// and unfavorite operations open to guests; it is meant for development
// environments only.
func Default(openFavorites bool) *Policy {
	favorites := HasAnyAuthority("ROLE_ADMIN", "ROLE_USER")
	if openFavorites {
		favorites = PermitAll()
	}

	return New(
		// Everyone is allowed to authenticate.
		Rule{Methods: []string{http.MethodPost}, Pattern: "/auth/**", Access: PermitAll()},

		// Account reads are for known identities; account writes are admin only.
		Rule{Methods: []string{http.MethodGet}, Pattern: "/user/users/**", Access: HasAnyAuthority("ROLE_ADMIN", "ROLE_USER")},
		Rule{Methods: []string{http.MethodPost, http.MethodPut, http.MethodDelete}, Pattern: "/user/users/**", Access: HasAnyAuthority("ROLE_ADMIN")},

		// Anyone can browse stores and favorites.
		Rule{Methods: []string{http.MethodGet}, Pattern: "/store/**", Access: PermitAll()},

		Rule{Methods: []string{http.MethodPost, http.MethodDelete}, Pattern: "/store/favorites/**", Access: favorites},

		// Store catalogue writes are admin only.
		Rule{Methods: []string{http.MethodPost, http.MethodPut, http.MethodDelete}, Pattern: "/store/stores/**", Access: HasAnyAuthority("ROLE_ADMIN")},
	)
}
