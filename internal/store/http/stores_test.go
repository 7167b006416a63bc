package http_test

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	storehttp "github.com/storemesh/storemesh/internal/store/http"
	"github.com/storemesh/storemesh/internal/store/service"
	"github.com/storemesh/storemesh/internal/store/store/drivers/sqlite"
	"github.com/stretchr/testify/require"
)

func newServer(t *testing.T) *httptest.Server {
	t.Helper()

	dsn := "file:" + filepath.Join(t.TempDir(), "stores.db")
	st, err := sqlite.NewStore(dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.ApplyMigrations())

	router := storehttp.NewRouter("test", slog.Default())
	router.Stores = &service.StoreService{Store: st, Logger: slog.Default()}
	router.Favorites = &service.FavoriteService{Store: st, Logger: slog.Default()}
	router.ApplyRoutes()

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv
}

func createStore(t *testing.T, srv *httptest.Server, city string, lat, lng float64) string {
	t.Helper()

	payload := map[string]any{
		"city":          city,
		"address_name":  city + " Centrum",
		"latitude":      lat,
		"longitude":     lng,
		"location_type": "Supermarkt",
	}
	var buf bytes.Buffer
	require.NoError(t, json.NewEncoder(&buf).Encode(payload))

	resp, err := http.Post(srv.URL+"/stores", "application/json", &buf)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var created map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))
	return created["id"].(string)
}

func TestListStoresIsCacheable(t *testing.T) {
	srv := newServer(t)
	createStore(t, srv, "Amsterdam", 52.37, 4.89)

	resp, err := http.Get(srv.URL + "/stores")
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, resp.Header.Get("Cache-Control"), "max-age=3600")

	var stores []map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&stores))
	require.Len(t, stores, 1)
}

func TestNearestRequiresCoordinates(t *testing.T) {
	srv := newServer(t)

	resp, err := http.Get(srv.URL + "/stores/nearest")
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	createStore(t, srv, "Amsterdam", 52.37, 4.89)
	createStore(t, srv, "Utrecht", 52.09, 5.12)

	resp, err = http.Get(srv.URL + "/stores/nearest?lat=52.38&lng=4.90")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var stores []map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&stores))
	require.Len(t, stores, 2)
	require.Equal(t, "Amsterdam", stores[0]["city"])
}

func TestFavoritesUseGatewayIdentity(t *testing.T) {
	srv := newServer(t)
	id := createStore(t, srv, "Amsterdam", 52.37, 4.89)

	do := func(method, path, subject string) *http.Response {
		req, err := http.NewRequest(method, srv.URL+path, nil)
		require.NoError(t, err)
		if subject != "" {
			req.Header.Set("X-Auth-Subject", subject)
		}
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		t.Cleanup(func() { resp.Body.Close() })
		return resp
	}

	// No identity at all is a bad request.
	resp := do(http.MethodPost, "/favorites/"+id, "")
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = do(http.MethodPost, "/favorites/"+id, "alice@example.com")
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	// Duplicate favorite.
	resp = do(http.MethodPost, "/favorites/"+id, "alice@example.com")
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// Unknown store.
	resp = do(http.MethodPost, "/favorites/does-not-exist", "alice@example.com")
	require.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = do(http.MethodGet, "/favorites", "alice@example.com")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "no-store", resp.Header.Get("Cache-Control"))
	var favorites []map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&favorites))
	require.Len(t, favorites, 1)

	resp = do(http.MethodDelete, "/favorites/"+id, "alice@example.com")
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
}

func TestDeleteStore(t *testing.T) {
	srv := newServer(t)
	id := createStore(t, srv, "Amsterdam", 52.37, 4.89)

	req, err := http.NewRequest(http.MethodDelete, srv.URL+"/stores/"+id, nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	getResp, err := http.Get(srv.URL + "/stores/" + id)
	require.NoError(t, err)
	defer getResp.Body.Close()
	require.Equal(t, http.StatusNotFound, getResp.StatusCode)
}
