// Package rpc answers credential lookups from the auth service.
package rpc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/storemesh/storemesh/internal/user/service"
)

// notFoundReply tells the caller the lookup succeeded but no account exists,
// so it can distinguish a missing user from a timeout.
const notFoundReply = "NOT_FOUND"

// credentialPayload is the wire form of a credential record. It must stay in
// sync with the auth service's resolver.
type credentialPayload struct {
	Email        string `json:"email"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	PasswordHash string `json:"password_hash"`
	Role         string `json:"role"`
}

// Responder turns an email lookup request into a credential reply.
type Responder struct {
	Users  *service.UserService
	Logger *slog.Logger
}

// Handle implements the amqprpc handler contract: the request body is the
// raw email address.
func (r *Responder) Handle(ctx context.Context, body []byte) ([]byte, error) {
	email := string(body)
	log := r.Logger.With("email", email)

	user, err := r.Users.FindByEmail(ctx, email)
	switch {
	case errors.Is(err, service.ErrNotFound):
		log.Info("credential lookup answered not found")
		return []byte(notFoundReply), nil
	case err != nil:
		return nil, fmt.Errorf("credential lookup: %w", err)
	}

	reply, err := json.Marshal(credentialPayload{
		Email:        user.Email,
		FirstName:    user.FirstName,
		LastName:     user.LastName,
		PasswordHash: user.PasswordHash,
		Role:         user.Role,
	})
	if err != nil {
		return nil, fmt.Errorf("credential reply marshal: %w", err)
	}

	log.Info("credential lookup answered")
	return reply, nil
}
