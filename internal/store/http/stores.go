package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/storemesh/storemesh/internal/store/service"
	"github.com/storemesh/storemesh/pkg/httpx"
)

// StoresHandler implements catalogue queries and management. Write access is
// restricted at the gateway; this service trusts what reaches it.
type StoresHandler struct {
	Stores *service.StoreService
	Logger *slog.Logger
}

type storeRequest struct {
	City            string  `json:"city"`
	PostalCode      string  `json:"postal_code"`
	Street          string  `json:"street"`
	AddressName     string  `json:"address_name"`
	Longitude       float64 `json:"longitude"`
	Latitude        float64 `json:"latitude"`
	LocationType    string  `json:"location_type"`
	CollectionPoint bool    `json:"collection_point"`
	TodayOpen       string  `json:"today_open"`
	TodayClose      string  `json:"today_close"`
	SapStoreID      string  `json:"sap_store_id"`
}

func (in storeRequest) toInput() service.StoreInput {
	return service.StoreInput{
		City:            in.City,
		PostalCode:      in.PostalCode,
		Street:          in.Street,
		AddressName:     in.AddressName,
		Longitude:       in.Longitude,
		Latitude:        in.Latitude,
		LocationType:    in.LocationType,
		CollectionPoint: in.CollectionPoint,
		TodayOpen:       in.TodayOpen,
		TodayClose:      in.TodayClose,
		SapStoreID:      in.SapStoreID,
	}
}

// cacheListing marks catalogue listings as cacheable for an hour; the
// catalogue rarely changes.
func cacheListing(w http.ResponseWriter) {
	w.Header().Set("Cache-Control", "max-age=3600, must-revalidate, no-transform")
}

func (h *StoresHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	stores, err := h.Stores.FindAll(r.Context(), queryTypes(r), queryLimit(r))
	if err != nil {
		h.fail(w, err)
		return
	}
	cacheListing(w)
	httpx.WriteJSON(w, http.StatusOK, stores)
}

func (h *StoresHandler) HandleNearest(w http.ResponseWriter, r *http.Request) {
	lng, errLng := strconv.ParseFloat(r.URL.Query().Get("lng"), 64)
	lat, errLat := strconv.ParseFloat(r.URL.Query().Get("lat"), 64)
	if errLng != nil || errLat != nil {
		httpx.WriteMessage(w, http.StatusBadRequest, "lat and lng are required")
		return
	}

	stores, err := h.Stores.FindNearest(r.Context(), lng, lat, queryTypes(r), queryLimit(r))
	if err != nil {
		h.fail(w, err)
		return
	}
	cacheListing(w)
	httpx.WriteJSON(w, http.StatusOK, stores)
}

func (h *StoresHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	st, err := h.Stores.FindOne(r.Context(), r.PathValue("id"))
	if err != nil {
		h.fail(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, st)
}

func (h *StoresHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req storeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteMessage(w, http.StatusBadRequest, "malformed request body")
		return
	}
	if req.City == "" || req.AddressName == "" || req.LocationType == "" {
		httpx.WriteMessage(w, http.StatusBadRequest, "city, address_name and location_type are required")
		return
	}

	st, err := h.Stores.Create(r.Context(), req.toInput())
	if err != nil {
		h.fail(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, st)
}

func (h *StoresHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	var req storeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteMessage(w, http.StatusBadRequest, "malformed request body")
		return
	}

	st, err := h.Stores.Update(r.Context(), r.PathValue("id"), req.toInput())
	if err != nil {
		h.fail(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, st)
}

func (h *StoresHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.Stores.Delete(r.Context(), r.PathValue("id")); err != nil {
		h.fail(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *StoresHandler) fail(w http.ResponseWriter, err error) {
	if errors.Is(err, service.ErrNotFound) {
		httpx.WriteMessage(w, http.StatusNotFound, "store not found")
		return
	}
	h.Logger.Error("store request failed", "err", err)
	httpx.WriteMessage(w, http.StatusInternalServerError, "internal error")
}

// queryTypes reads the store type filter, accepting both repeated parameters
// and a comma separated list.
func queryTypes(r *http.Request) []string {
	var types []string
	for _, raw := range r.URL.Query()["store_types"] {
		for _, t := range strings.Split(raw, ",") {
			if t = strings.TrimSpace(t); t != "" {
				types = append(types, t)
			}
		}
	}
	return types
}

func queryLimit(r *http.Request) int {
	limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil {
		return 0
	}
	return limit
}
