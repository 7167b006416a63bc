package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/storemesh/storemesh/internal/auth/domain"
	"github.com/storemesh/storemesh/internal/auth/service"
	"github.com/storemesh/storemesh/pkg/httpx"
)

// LoginHandler issues tokens for password logins and guest sessions.
type LoginHandler struct {
	Verifier   *service.CredentialVerifier
	Issuer     *service.TokenIssuer
	AuthHeader string
	Logger     *slog.Logger
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// HandleLogin verifies the submitted credentials and, on success, returns the
// account profile with the signed token in the auth response header.
func (h *LoginHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteMessage(w, http.StatusBadRequest, "malformed request body")
		return
	}
	if req.Email == "" || req.Password == "" {
		httpx.WriteMessage(w, http.StatusBadRequest, "email and password are required")
		return
	}

	cred, err := h.Verifier.Verify(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			httpx.WriteMessage(w, http.StatusUnauthorized, "invalid credentials")
			return
		}
		h.Logger.Error("credential verification failed", "err", err)
		httpx.WriteMessage(w, http.StatusInternalServerError, "internal error")
		return
	}

	h.issue(w, cred, "login")
}

// HandleGuest issues an anonymous browse token without any credential check.
func (h *LoginHandler) HandleGuest(w http.ResponseWriter, _ *http.Request) {
	h.issue(w, h.Verifier.GuestCredential(), "guest")
}

func (h *LoginHandler) issue(w http.ResponseWriter, cred domain.Credential, kind string) {
	issued, err := h.Issuer.Issue(cred)
	if err != nil {
		h.Logger.Error("token issue failed", "err", err)
		httpx.WriteMessage(w, http.StatusInternalServerError, "internal error")
		return
	}

	h.Logger.Info("token issued", "kind", kind, "subject", cred.Email, "authority", cred.Authority())

	w.Header().Set(h.AuthHeader, issued.HeaderValue)
	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, issued.Profile)
}
