// Package resolver looks up account credentials from the user service.
package resolver

import (
	"context"
	"errors"

	"github.com/storemesh/storemesh/internal/auth/domain"
)

// ErrNotFound indicates the user service answered and no account exists for
// the given email. This is a successful round trip, not a transport failure.
var ErrNotFound = errors.New("resolver: credentials not found")

// Resolver fetches the credential record for an email address.
type Resolver interface {
	Resolve(ctx context.Context, email string) (domain.Credential, error)
}
