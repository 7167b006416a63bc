package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/storemesh/storemesh/internal/user/service"
	"github.com/storemesh/storemesh/pkg/httpx"
)

// UsersHandler implements account CRUD. Authorization happens at the gateway;
// this service trusts the identity headers it receives from it.
type UsersHandler struct {
	Users  *service.UserService
	Logger *slog.Logger
}

type userRequest struct {
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Password  string `json:"password"`
	Role      string `json:"role"`
}

func (h *UsersHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	users, err := h.Users.FindAll(r.Context())
	if err != nil {
		h.fail(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, users)
}

func (h *UsersHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	user, err := h.Users.FindOne(r.Context(), r.PathValue("id"))
	if err != nil {
		h.fail(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, user)
}

func (h *UsersHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req userRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteMessage(w, http.StatusBadRequest, "malformed request body")
		return
	}
	if req.Email == "" || req.FirstName == "" || req.Password == "" {
		httpx.WriteMessage(w, http.StatusBadRequest, "email, first_name and password are required")
		return
	}

	user, err := h.Users.Create(r.Context(), service.CreateUserInput{
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Password:  req.Password,
		Role:      req.Role,
	})
	if err != nil {
		h.fail(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, user)
}

func (h *UsersHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	var req userRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteMessage(w, http.StatusBadRequest, "malformed request body")
		return
	}

	user, err := h.Users.Update(r.Context(), r.PathValue("id"), service.UpdateUserInput{
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Password:  req.Password,
		Role:      req.Role,
	})
	if err != nil {
		h.fail(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, user)
}

func (h *UsersHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.Users.Delete(r.Context(), r.PathValue("id")); err != nil {
		h.fail(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *UsersHandler) fail(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		httpx.WriteMessage(w, http.StatusNotFound, "user not found")
	case errors.Is(err, service.ErrEmailInUse):
		httpx.WriteMessage(w, http.StatusBadRequest, "email already in use")
	default:
		h.Logger.Error("user request failed", "err", err)
		httpx.WriteMessage(w, http.StatusInternalServerError, "internal error")
	}
}
