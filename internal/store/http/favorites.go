package http

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/storemesh/storemesh/internal/store/service"
	"github.com/storemesh/storemesh/pkg/httpx"
)

// subjectHeader carries the verified identity propagated by the gateway.
const subjectHeader = "X-Auth-Subject"

// FavoritesHandler implements per-user favorites. The acting user is the
// gateway-propagated token subject, with a user_name query parameter as a
// fallback for direct calls in development.
type FavoritesHandler struct {
	Favorites *service.FavoriteService
	Logger    *slog.Logger
}

func actingUser(r *http.Request) string {
	if subject := r.Header.Get(subjectHeader); subject != "" {
		return subject
	}
	return r.URL.Query().Get("user_name")
}

func (h *FavoritesHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	user := actingUser(r)
	if user == "" {
		httpx.WriteMessage(w, http.StatusBadRequest, "user_name is required")
		return
	}

	stores, err := h.Favorites.List(r.Context(), user)
	if err != nil {
		h.fail(w, err)
		return
	}

	// Favorites change often; never cache them.
	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, stores)
}

func (h *FavoritesHandler) HandleAdd(w http.ResponseWriter, r *http.Request) {
	user := actingUser(r)
	if user == "" {
		httpx.WriteMessage(w, http.StatusBadRequest, "user_name is required")
		return
	}

	favorite, err := h.Favorites.Add(r.Context(), user, r.PathValue("storeID"))
	if err != nil {
		h.fail(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, favorite)
}

func (h *FavoritesHandler) HandleRemove(w http.ResponseWriter, r *http.Request) {
	user := actingUser(r)
	if user == "" {
		httpx.WriteMessage(w, http.StatusBadRequest, "user_name is required")
		return
	}

	if err := h.Favorites.Remove(r.Context(), user, r.PathValue("storeID")); err != nil {
		h.fail(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *FavoritesHandler) fail(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		httpx.WriteMessage(w, http.StatusNotFound, "store not found")
	case errors.Is(err, service.ErrAlreadyFavorite):
		httpx.WriteMessage(w, http.StatusBadRequest, "store already favorited")
	default:
		h.Logger.Error("favorite request failed", "err", err)
		httpx.WriteMessage(w, http.StatusInternalServerError, "internal error")
	}
}
