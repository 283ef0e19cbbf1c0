package endpoints

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roastkoff/controlposter/internal/db/dbtest"
	"github.com/roastkoff/controlposter/internal/directory"
	"github.com/roastkoff/controlposter/internal/http/api"
	"github.com/roastkoff/controlposter/internal/model"
	"github.com/roastkoff/controlposter/internal/pairing"
	"github.com/roastkoff/controlposter/internal/playback"
)

type nopFeed struct{}

func (nopFeed) Publish(ctx context.Context, tenantID int) error { return nil }

func (nopFeed) Subscribe(ctx context.Context, tenantID int) (<-chan struct{}, func(), error) {
	return make(chan struct{}), func() {}, nil
}

// asUser stands in for JWTMiddleware in tests.
func asUser(tenantID int) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("currentUser", &model.User{ID: 1, TenantID: tenantID, Email: "ops@example.com"})
		c.Next()
	}
}

func newAdminRouter(store *dbtest.Store, tenantID int) *gin.Engine {
	gin.SetMode(gin.TestMode)
	feed := nopFeed{}
	r := gin.New()
	api.MountGroup(r, api.GroupConfig{
		Prefix:     "/api/admin",
		Middleware: []gin.HandlerFunc{asUser(tenantID)},
	},
		GroupModule(store),
		DisplayModule(store, pairing.NewService(store, feed), directory.New(store, feed)),
		PlaylistModule(store, playback.NewActivator(store, feed, nil), nil),
	)
	return r
}

func do(t *testing.T, r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, out any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), out))
}

func TestClaimDisplayEndpoint(t *testing.T) {
	store := dbtest.New()
	ctx := context.Background()

	device := "device-1"
	_, err := store.CreatePairingSession(ctx, "ABC234", &device)
	require.NoError(t, err)

	r := newAdminRouter(store, 1)

	w := do(t, r, http.MethodPost, "/api/admin/displays/claim",
		`{"code":"ABC234","name":"Lobby TV","location":"front desk"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var display map[string]any
	decode(t, w, &display)
	assert.Equal(t, "Lobby TV", display["name"])
	assert.Equal(t, "offline", display["status"])
	assert.Equal(t, "device-1", display["device_id"])
	assert.Nil(t, display["active_playlist_id"])
}

func TestClaimDisplayEndpointErrorMapping(t *testing.T) {
	store := dbtest.New()
	ctx := context.Background()

	_, err := store.CreatePairingSession(ctx, "ABC234", nil)
	require.NoError(t, err)

	r := newAdminRouter(store, 1)

	// unknown code
	w := do(t, r, http.MethodPost, "/api/admin/displays/claim", `{"code":"NOPE22","name":"TV"}`)
	assert.Equal(t, http.StatusNotFound, w.Code)

	// second claim of the same code conflicts
	w = do(t, r, http.MethodPost, "/api/admin/displays/claim", `{"code":"ABC234","name":"TV"}`)
	require.Equal(t, http.StatusOK, w.Code)
	w = do(t, r, http.MethodPost, "/api/admin/displays/claim", `{"code":"ABC234","name":"TV again"}`)
	assert.Equal(t, http.StatusConflict, w.Code)

	// missing fields never reach the store
	w = do(t, r, http.MethodPost, "/api/admin/displays/claim", `{"code":"ABC234"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestListDisplaysIsTenantScoped(t *testing.T) {
	store := dbtest.New()
	ctx := context.Background()

	for i, tenant := range []int{1, 2} {
		code := fmt.Sprintf("CODE0%d", i)
		_, err := store.CreatePairingSession(ctx, code, nil)
		require.NoError(t, err)
		_, err = store.ClaimPairingSession(ctx, code, tenant, nil, fmt.Sprintf("tv-%d", tenant), nil)
		require.NoError(t, err)
	}

	r := newAdminRouter(store, 1)
	w := do(t, r, http.MethodGet, "/api/admin/displays", "")
	require.Equal(t, http.StatusOK, w.Code)

	var displays []map[string]any
	decode(t, w, &displays)
	require.Len(t, displays, 1)
	assert.Equal(t, "tv-1", displays[0]["name"])
}

func TestGroupsAndDashboard(t *testing.T) {
	store := dbtest.New()
	r := newAdminRouter(store, 1)

	w := do(t, r, http.MethodPost, "/api/admin/groups", `{"name":"lobby"}`)
	require.Equal(t, http.StatusOK, w.Code)
	var group map[string]any
	decode(t, w, &group)
	groupID := int(group["id"].(float64))

	ctx := context.Background()
	_, err := store.CreatePairingSession(ctx, "CODE01", nil)
	require.NoError(t, err)
	_, err = store.ClaimPairingSession(ctx, "CODE01", 1, &groupID, "Lobby TV", nil)
	require.NoError(t, err)

	w = do(t, r, http.MethodGet, "/api/admin/dashboard", "")
	require.Equal(t, http.StatusOK, w.Code)
	var dash map[string]any
	decode(t, w, &dash)
	assert.Equal(t, float64(1), dash["group_total"])
	groups := dash["groups"].([]any)
	require.Len(t, groups, 1)
	displays := groups[0].(map[string]any)["displays"].([]any)
	require.Len(t, displays, 1)
	assert.Equal(t, "Lobby TV", displays[0].(map[string]any)["name"])
}

func TestPlaylistActivationEndpoint(t *testing.T) {
	store := dbtest.New()
	r := newAdminRouter(store, 1)

	w := do(t, r, http.MethodPost, "/api/admin/playlists",
		`{"name":"morning","loop":true,"default_interval_ms":7000}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var first map[string]any
	decode(t, w, &first)
	firstID := int(first["id"].(float64))

	w = do(t, r, http.MethodPost, "/api/admin/playlists",
		`{"name":"evening","loop":true,"default_interval_ms":7000}`)
	require.Equal(t, http.StatusOK, w.Code)
	var second map[string]any
	decode(t, w, &second)
	secondID := int(second["id"].(float64))

	w = do(t, r, http.MethodPut, fmt.Sprintf("/api/admin/playlists/%d/active", firstID),
		`{"active":true}`)
	require.Equal(t, http.StatusOK, w.Code)

	// activating the sibling flips the scope over
	w = do(t, r, http.MethodPut, fmt.Sprintf("/api/admin/playlists/%d/active", secondID),
		`{"active":true}`)
	require.Equal(t, http.StatusOK, w.Code)

	w = do(t, r, http.MethodGet, "/api/admin/playlists", "")
	require.Equal(t, http.StatusOK, w.Code)
	var playlists []map[string]any
	decode(t, w, &playlists)
	active := map[int]bool{}
	for _, p := range playlists {
		active[int(p["id"].(float64))] = p["active"].(bool)
	}
	assert.False(t, active[firstID])
	assert.True(t, active[secondID])
}

func TestPlaylistValidation(t *testing.T) {
	r := newAdminRouter(dbtest.New(), 1)

	// sub-second default interval is rejected at the boundary
	w := do(t, r, http.MethodPost, "/api/admin/playlists",
		`{"name":"fast","default_interval_ms":500}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUpdateDisplayNotFound(t *testing.T) {
	r := newAdminRouter(dbtest.New(), 1)

	w := do(t, r, http.MethodPut, "/api/admin/displays/99", `{"name":"renamed"}`)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
