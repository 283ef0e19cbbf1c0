package endpoints

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/roastkoff/controlposter/internal/db"
	"github.com/roastkoff/controlposter/internal/directory"
	"github.com/roastkoff/controlposter/internal/errs"
	"github.com/roastkoff/controlposter/internal/http/api"
	"github.com/roastkoff/controlposter/internal/http/api/tv/packets"
	"github.com/roastkoff/controlposter/internal/model"
	"github.com/roastkoff/controlposter/internal/pairing"
)

// TvController serves the device-facing endpoints. Devices are not
// authenticated; they are identified by their device id and only ever
// see their own pairing session and active playlist.
type TvController struct {
	store db.Store
	pair  *pairing.Service
	feed  directory.Publisher
}

func NewTvController(store db.Store, pair *pairing.Service, feed directory.Publisher) *TvController {
	return &TvController{store: store, pair: pair, feed: feed}
}

func RegisterTvRoutes(r gin.IRoutes, store db.Store, pair *pairing.Service, feed directory.Publisher) {
	ctl := NewTvController(store, pair, feed)

	r.POST("/pair/request", ctl.requestPairingCode)
	r.GET("/pair/status", ctl.pairingStatus)
	r.GET("/playlist", ctl.activePlaylist)
	r.POST("/heartbeat", ctl.heartbeat)
}

func fail(c *gin.Context, err error) {
	apiErr := api.FromError(err)
	c.JSON(apiErr.Code, gin.H{"error": apiErr.Message})
}

// requestPairingCode opens a pending pairing session for an
// unprovisioned device and returns the code to show on screen.
func (t *TvController) requestPairingCode(c *gin.Context) {
	var request packets.RequestPairingCodeRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if display, err := t.store.GetDisplayByDeviceID(c.Request.Context(), request.DeviceID); err == nil {
		log.Warn().Str("device_id", request.DeviceID).Int("display_id", display.ID).
			Msg("pairing requested for an already provisioned device")
		c.JSON(http.StatusConflict, gin.H{"error": "device is already paired"})
		return
	}

	sess, err := t.pair.RequestCode(c.Request.Context(), request.DeviceID)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, packets.PairingCodeResponse{
		Code:      sess.Code,
		Status:    sess.Status,
		CreatedAt: sess.CreatedAt.Format(time.RFC3339),
	})
}

// pairingStatus lets the device poll its session until an operator
// claims the code.
func (t *TvController) pairingStatus(c *gin.Context) {
	code := c.Query("code")
	if code == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "code is required"})
		return
	}

	sess, err := t.store.GetPairingSession(c.Request.Context(), code)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, packets.PairingStatusResponse{
		Code:      sess.Code,
		Status:    sess.Status,
		DisplayID: sess.DisplayID,
	})
}

// activePlaylist returns the playlist currently assigned to the calling
// device, items included, or 404 when nothing is active.
func (t *TvController) activePlaylist(c *gin.Context) {
	deviceID := c.Query("device_id")
	if deviceID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "device_id is required"})
		return
	}

	ctx := c.Request.Context()
	display, err := t.store.GetDisplayByDeviceID(ctx, deviceID)
	if err != nil {
		fail(c, err)
		return
	}

	playlist, err := t.store.GetActivePlaylistForDisplay(ctx, display.ID)
	if err != nil {
		fail(c, err)
		return
	}
	items, err := t.store.ListPlaylistItems(ctx, playlist.ID)
	if err != nil {
		fail(c, err)
		return
	}

	out := packets.PlaylistResponse{
		ID:                playlist.ID,
		Name:              playlist.Name,
		Loop:              playlist.Loop,
		Shuffle:           playlist.Shuffle,
		DefaultIntervalMs: playlist.DefaultIntervalMs,
		UpdatedAt:         playlist.UpdatedAt.Format(time.RFC3339),
	}
	for _, it := range items {
		out.Items = append(out.Items, packets.PlaylistItemResponse{
			Position:   it.Position,
			Name:       it.Name,
			Type:       it.Type,
			DurationMs: it.DurationMs,
			Fit:        it.Fit,
			Mute:       it.Mute,
			Src:        it.Src,
		})
	}
	c.JSON(http.StatusOK, out)
}

// heartbeat flips the display's status and nudges the live directory so
// dashboards see the change.
func (t *TvController) heartbeat(c *gin.Context) {
	var request packets.HeartbeatRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	status := request.Status
	if status == "" {
		status = model.DisplayOnline
	}

	ctx := c.Request.Context()
	display, err := t.store.GetDisplayByDeviceID(ctx, request.DeviceID)
	if err != nil {
		fail(c, errs.FromContext(err))
		return
	}

	if err := t.store.SetDisplayStatus(ctx, display.ID, status); err != nil {
		fail(c, err)
		return
	}
	if t.feed != nil {
		if err := t.feed.Publish(ctx, display.TenantID); err != nil {
			log.Warn().Err(err).Int("tenant_id", display.TenantID).Msg("failed to signal display change")
		}
	}

	c.JSON(http.StatusOK, gin.H{"status": status})
}
