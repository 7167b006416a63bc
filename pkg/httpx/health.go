package httpx

import (
	"net/http"
	"time"
)

type healthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	Uptime  string `json:"uptime"`
}

// LivezHandler reports process liveness.
func LivezHandler(startTime time.Time, version string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		WriteJSON(w, http.StatusOK, healthResponse{
			Status:  "ok",
			Version: version,
			Uptime:  time.Since(startTime).Round(time.Second).String(),
		})
	})
}

// ReadyzHandler reports readiness. ready checks downstream dependencies; a
// nil ready means always ready.
func ReadyzHandler(startTime time.Time, version string, ready func() error) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		resp := healthResponse{
			Status:  "ok",
			Version: version,
			Uptime:  time.Since(startTime).Round(time.Second).String(),
		}

		if ready != nil {
			if err := ready(); err != nil {
				resp.Status = "unavailable"
				WriteJSON(w, http.StatusServiceUnavailable, resp)
				return
			}
		}
		WriteJSON(w, http.StatusOK, resp)
	})
}
