package endpoints

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roastkoff/controlposter/internal/db/dbtest"
	"github.com/roastkoff/controlposter/internal/model"
	"github.com/roastkoff/controlposter/internal/pairing"
)

type countingFeed struct {
	mu    sync.Mutex
	count int
}

func (f *countingFeed) Publish(ctx context.Context, tenantID int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.count++
	return nil
}

func newTestRouter(store *dbtest.Store) (*gin.Engine, *countingFeed) {
	gin.SetMode(gin.TestMode)
	feed := &countingFeed{}
	r := gin.New()
	RegisterTvRoutes(r.Group("/api/tv"), store, pairing.NewService(store, feed), feed)
	return r, feed
}

func doJSON(t *testing.T, r *gin.Engine, method, path, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	out := map[string]any{}
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	}
	return w, out
}

func TestRequestPairingCode(t *testing.T) {
	r, _ := newTestRouter(dbtest.New())

	w, body := doJSON(t, r, http.MethodPost, "/api/tv/pair/request", `{"device_id":"device-1"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, body["code"], 6)
	assert.Equal(t, "pending", body["status"])
}

func TestRequestPairingCodeRequiresDeviceID(t *testing.T) {
	r, _ := newTestRouter(dbtest.New())

	w, _ := doJSON(t, r, http.MethodPost, "/api/tv/pair/request", `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRequestPairingCodeForPairedDevice(t *testing.T) {
	store := dbtest.New()
	ctx := context.Background()

	device := "device-1"
	_, err := store.CreatePairingSession(ctx, "ABC234", &device)
	require.NoError(t, err)
	_, err = store.ClaimPairingSession(ctx, "ABC234", 1, nil, "Lobby TV", nil)
	require.NoError(t, err)

	r, _ := newTestRouter(store)
	w, _ := doJSON(t, r, http.MethodPost, "/api/tv/pair/request", `{"device_id":"device-1"}`)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestPairingStatusPoll(t *testing.T) {
	store := dbtest.New()
	ctx := context.Background()

	device := "device-1"
	_, err := store.CreatePairingSession(ctx, "ABC234", &device)
	require.NoError(t, err)

	r, _ := newTestRouter(store)

	w, body := doJSON(t, r, http.MethodGet, "/api/tv/pair/status?code=ABC234", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "pending", body["status"])
	assert.Nil(t, body["display_id"])

	displayID, err := store.ClaimPairingSession(ctx, "ABC234", 1, nil, "Lobby TV", nil)
	require.NoError(t, err)

	w, body = doJSON(t, r, http.MethodGet, "/api/tv/pair/status?code=ABC234", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "claimed", body["status"])
	assert.Equal(t, float64(displayID), body["display_id"])
}

func TestPairingStatusUnknownCode(t *testing.T) {
	r, _ := newTestRouter(dbtest.New())

	w, _ := doJSON(t, r, http.MethodGet, "/api/tv/pair/status?code=NOPE22", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestActivePlaylistForDevice(t *testing.T) {
	store := dbtest.New()
	ctx := context.Background()

	device := "device-1"
	_, err := store.CreatePairingSession(ctx, "ABC234", &device)
	require.NoError(t, err)
	displayID, err := store.ClaimPairingSession(ctx, "ABC234", 1, nil, "Lobby TV", nil)
	require.NoError(t, err)

	r, _ := newTestRouter(store)

	// nothing active yet
	w, _ := doJSON(t, r, http.MethodGet, "/api/tv/playlist?device_id=device-1", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	p, err := store.CreatePlaylist(ctx, 1, nil, &displayID, "takeover", true, false, 7000)
	require.NoError(t, err)
	_, err = store.AddItemToPlaylist(ctx, p.ID, "promo", model.ItemImage, 7000, model.FitCover, true, "/uploads/promo.png")
	require.NoError(t, err)
	require.NoError(t, store.SetActivePlaylist(ctx, 1, p.ID, nil, &displayID, true))

	w, body := doJSON(t, r, http.MethodGet, "/api/tv/playlist?device_id=device-1", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(p.ID), body["id"])
	items, ok := body["items"].([]any)
	require.True(t, ok)
	require.Len(t, items, 1)
	item := items[0].(map[string]any)
	assert.Equal(t, "promo", item["name"])
	assert.Equal(t, "/uploads/promo.png", item["src"])
}

func TestHeartbeatFlipsStatusAndSignalsDirectory(t *testing.T) {
	store := dbtest.New()
	ctx := context.Background()

	device := "device-1"
	_, err := store.CreatePairingSession(ctx, "ABC234", &device)
	require.NoError(t, err)
	displayID, err := store.ClaimPairingSession(ctx, "ABC234", 1, nil, "Lobby TV", nil)
	require.NoError(t, err)

	r, feed := newTestRouter(store)

	w, body := doJSON(t, r, http.MethodPost, "/api/tv/heartbeat", `{"device_id":"device-1"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, model.DisplayOnline, body["status"])

	display, err := store.GetDisplayByID(ctx, 1, displayID)
	require.NoError(t, err)
	assert.Equal(t, model.DisplayOnline, display.Status)

	feed.mu.Lock()
	assert.Equal(t, 1, feed.count)
	feed.mu.Unlock()

	w, _ = doJSON(t, r, http.MethodPost, "/api/tv/heartbeat", `{"device_id":"device-1","status":"offline"}`)
	require.Equal(t, http.StatusOK, w.Code)
	display, err = store.GetDisplayByID(ctx, 1, displayID)
	require.NoError(t, err)
	assert.Equal(t, model.DisplayOffline, display.Status)
}

func TestHeartbeatUnknownDevice(t *testing.T) {
	r, _ := newTestRouter(dbtest.New())

	w, _ := doJSON(t, r, http.MethodPost, "/api/tv/heartbeat", `{"device_id":"ghost"}`)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
