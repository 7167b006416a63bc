package resolver

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/storemesh/storemesh/internal/auth/domain"
	"github.com/storemesh/storemesh/pkg/amqprpc"
)

// notFoundReply is the sentinel body the user service returns when no account
// matches the requested email.
const notFoundReply = "NOT_FOUND"

// credentialPayload is the wire form of a credential record. It must stay in
// sync with the user service's RPC responder.
type credentialPayload struct {
	Email        string `json:"email"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	PasswordHash string `json:"password_hash"`
	Role         string `json:"role"`
}

// AMQPResolver resolves credentials over the user service's RPC queue. The
// request body is the raw email address; the reply is either a credential
// record or the not-found sentinel.
type AMQPResolver struct {
	Client  *amqprpc.Client
	Timeout time.Duration
}

func (r *AMQPResolver) Resolve(ctx context.Context, email string) (domain.Credential, error) {
	ctx, cancel := context.WithTimeout(ctx, r.Timeout)
	defer cancel()

	reply, err := r.Client.Call(ctx, []byte(email))
	if err != nil {
		return domain.Credential{}, fmt.Errorf("credential rpc: %w", err)
	}

	if string(reply) == notFoundReply {
		return domain.Credential{}, ErrNotFound
	}

	var payload credentialPayload
	if err := json.Unmarshal(reply, &payload); err != nil {
		return domain.Credential{}, fmt.Errorf("credential rpc: decode reply: %w", err)
	}

	return domain.Credential{
		Email:        payload.Email,
		FirstName:    payload.FirstName,
		LastName:     payload.LastName,
		PasswordHash: payload.PasswordHash,
		Role:         payload.Role,
	}, nil
}
