package endpoints

import (
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/roastkoff/controlposter/internal/db"
	"github.com/roastkoff/controlposter/internal/directory"
	"github.com/roastkoff/controlposter/internal/http/api"
	"github.com/roastkoff/controlposter/internal/http/api/admin/control/packets"
	"github.com/roastkoff/controlposter/internal/http/middleware"
	"github.com/roastkoff/controlposter/internal/model"
	"github.com/roastkoff/controlposter/internal/pairing"
)

type DisplayController struct {
	store db.Store
	pair  *pairing.Service
	dir   *directory.Directory
}

func newDisplayController(store db.Store, pair *pairing.Service, dir *directory.Directory) *DisplayController {
	return &DisplayController{store: store, pair: pair, dir: dir}
}

// DisplayModule mounts all authenticated /displays endpoints.
func DisplayModule(store db.Store, pair *pairing.Service, dir *directory.Directory) api.Module {
	ctl := newDisplayController(store, pair, dir)
	return api.ModuleFunc(func(c *api.Controller) {
		c.GET("/displays", ctl.listDisplays)
		c.POST("/displays/claim", ctl.claimDisplay)
		c.GET("/displays/:id", ctl.getDisplay)
		c.PUT("/displays/:id", ctl.updateDisplay)

		// live stream; raw handler because it never returns a single body
		c.Group.GET("/displays/watch", ctl.watchDisplays)
	})
}

func mapDisplay(d model.Display) packets.DisplayResponse {
	return packets.DisplayResponse{
		ID:               d.ID,
		GroupID:          d.GroupID,
		DeviceID:         d.DeviceID,
		Name:             d.Name,
		Location:         d.Location,
		Status:           d.Status,
		ActivePlaylistID: d.ActivePlaylistID,
		CreatedAt:        d.CreatedAt.Format(time.RFC3339),
		UpdatedAt:        d.UpdatedAt.Format(time.RFC3339),
	}
}

func groupFilter(ctx *gin.Context) *int {
	raw := ctx.Query("group_id")
	if raw == "" {
		return nil
	}
	id, err := strconv.Atoi(raw)
	if err != nil {
		return nil
	}
	return &id
}

// GET /api/admin/displays?group_id=
func (d *DisplayController) listDisplays(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	displays, err := d.store.ListDisplays(ctx.Request.Context(), user.TenantID, groupFilter(ctx))
	if err != nil {
		return nil, api.FromError(err)
	}
	out := make([]packets.DisplayResponse, 0, len(displays))
	for _, s := range displays {
		out = append(out, mapDisplay(s))
	}
	return out, nil
}

// POST /api/admin/displays/claim
func (d *DisplayController) claimDisplay(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	var req packets.ClaimDisplayRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: err.Error()}
	}

	displayID, err := d.pair.Claim(ctx.Request.Context(), user.TenantID, req.Code, req.GroupID, req.Name, req.Location)
	if err != nil {
		return nil, api.FromError(err)
	}

	created, err := d.store.GetDisplayByID(ctx.Request.Context(), user.TenantID, displayID)
	if err != nil {
		return nil, api.FromError(err)
	}
	return mapDisplay(created), nil
}

// GET /api/admin/displays/:id
//
// Returns the display together with the playlists assignable to it (the
// playlists sharing its tenant and group).
func (d *DisplayController) getDisplay(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: "invalid id"}
	}

	rctx := ctx.Request.Context()
	display, err := d.store.GetDisplayByID(rctx, user.TenantID, id)
	if err != nil {
		return nil, api.FromError(err)
	}

	var playlists []packets.PlaylistResponse
	if display.GroupID != nil {
		all, err := d.store.ListPlaylists(rctx, user.TenantID, display.GroupID)
		if err != nil {
			return nil, api.FromError(err)
		}
		for _, p := range all {
			playlists = append(playlists, mapPlaylist(p))
		}
	}

	return gin.H{"display": mapDisplay(display), "playlists": playlists}, nil
}

// PUT /api/admin/displays/:id
func (d *DisplayController) updateDisplay(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: "invalid id"}
	}
	var req packets.UpdateDisplayRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: err.Error()}
	}

	rctx := ctx.Request.Context()
	if err := d.store.UpdateDisplay(rctx, user.TenantID, id, req.Name, req.Location, req.GroupID); err != nil {
		return nil, api.FromError(err)
	}
	updated, err := d.store.GetDisplayByID(rctx, user.TenantID, id)
	if err != nil {
		return nil, api.FromError(err)
	}
	return mapDisplay(updated), nil
}

// GET /api/admin/displays/watch?group_id=
//
// Server-sent events stream of full display snapshots, re-delivered on
// every change. The subscription is torn down when the client goes away.
func (d *DisplayController) watchDisplays(ctx *gin.Context) {
	user, ok := middleware.GetCurrentUser(ctx)
	if !ok {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	sub, err := d.dir.Observe(ctx.Request.Context(), user.TenantID, groupFilter(ctx))
	if err != nil {
		apiErr := api.FromError(err)
		ctx.JSON(apiErr.Code, gin.H{"error": apiErr.Message})
		return
	}
	defer sub.Cancel()

	ctx.Stream(func(w io.Writer) bool {
		snapshot, open := <-sub.C
		if !open {
			if err := sub.Err(); err != nil {
				log.Warn().Err(err).Int("tenant_id", user.TenantID).Msg("display watch stream closed")
			}
			return false
		}
		out := make([]packets.DisplayResponse, 0, len(snapshot))
		for _, s := range snapshot {
			out = append(out, mapDisplay(s))
		}
		ctx.SSEvent("displays", out)
		return true
	})
}
