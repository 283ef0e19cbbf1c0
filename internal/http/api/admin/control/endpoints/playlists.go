package endpoints

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/roastkoff/controlposter/internal/db"
	"github.com/roastkoff/controlposter/internal/http/api"
	"github.com/roastkoff/controlposter/internal/http/api/admin/control/packets"
	"github.com/roastkoff/controlposter/internal/model"
	"github.com/roastkoff/controlposter/internal/playback"
	"github.com/roastkoff/controlposter/internal/storage"
)

type PlaylistController struct {
	store     db.Store
	activator *playback.Activator
	media     storage.Storage
}

func newPlaylistController(store db.Store, activator *playback.Activator, media storage.Storage) *PlaylistController {
	return &PlaylistController{store: store, activator: activator, media: media}
}

// PlaylistModule mounts all authenticated /playlists endpoints.
func PlaylistModule(store db.Store, activator *playback.Activator, media storage.Storage) api.Module {
	ctl := newPlaylistController(store, activator, media)
	return api.ModuleFunc(func(c *api.Controller) {
		c.GET("/playlists", ctl.listPlaylists)
		c.POST("/playlists", ctl.createPlaylist)
		c.GET("/playlists/:id", ctl.getPlaylist)
		c.DELETE("/playlists/:id", ctl.deletePlaylist)
		c.PUT("/playlists/:id/active", ctl.setActive)
		c.POST("/playlists/:id/items", ctl.addItem)
		c.DELETE("/playlists/:id/items/:itemId", ctl.removeItem)
	})
}

func mapItem(it model.PlaylistItem) packets.PlaylistItemResponse {
	return packets.PlaylistItemResponse{
		ID:         it.ID,
		Position:   it.Position,
		Name:       it.Name,
		Type:       it.Type,
		DurationMs: it.DurationMs,
		Fit:        it.Fit,
		Mute:       it.Mute,
		Src:        it.Src,
		CreatedAt:  it.CreatedAt,
	}
}

func mapPlaylist(p model.Playlist) packets.PlaylistResponse {
	items := make([]packets.PlaylistItemResponse, 0, len(p.Items))
	for _, it := range p.Items {
		items = append(items, mapItem(it))
	}
	return packets.PlaylistResponse{
		ID:                p.ID,
		GroupID:           p.GroupID,
		DisplayID:         p.DisplayID,
		Name:              p.Name,
		Loop:              p.Loop,
		Shuffle:           p.Shuffle,
		DefaultIntervalMs: p.DefaultIntervalMs,
		Active:            p.Active,
		CreatedAt:         p.CreatedAt,
		UpdatedAt:         p.UpdatedAt,
		Items:             items,
	}
}

func playlistID(ctx *gin.Context) (int, *api.APIError) {
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		return 0, &api.APIError{Code: http.StatusBadRequest, Message: "invalid id"}
	}
	return id, nil
}

// GET /api/admin/playlists?group_id=
func (p *PlaylistController) listPlaylists(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	playlists, err := p.store.ListPlaylists(ctx.Request.Context(), user.TenantID, groupFilter(ctx))
	if err != nil {
		return nil, api.FromError(err)
	}
	out := make([]packets.PlaylistResponse, 0, len(playlists))
	for _, pl := range playlists {
		out = append(out, mapPlaylist(pl))
	}
	return out, nil
}

// POST /api/admin/playlists
func (p *PlaylistController) createPlaylist(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	var req packets.CreatePlaylistRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: err.Error()}
	}

	rctx := ctx.Request.Context()
	if req.GroupID != nil {
		if _, err := p.store.GetGroupByID(rctx, user.TenantID, *req.GroupID); err != nil {
			return nil, api.FromError(err)
		}
	}
	if req.DisplayID != nil {
		if _, err := p.store.GetDisplayByID(rctx, user.TenantID, *req.DisplayID); err != nil {
			return nil, api.FromError(err)
		}
	}

	created, err := p.store.CreatePlaylist(rctx, user.TenantID, req.GroupID, req.DisplayID,
		req.Name, req.Loop, req.Shuffle, req.DefaultIntervalMs)
	if err != nil {
		return nil, api.FromError(err)
	}
	return mapPlaylist(created), nil
}

// GET /api/admin/playlists/:id
func (p *PlaylistController) getPlaylist(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	id, apiErr := playlistID(ctx)
	if apiErr != nil {
		return nil, apiErr
	}

	rctx := ctx.Request.Context()
	playlist, err := p.store.GetPlaylistByID(rctx, user.TenantID, id)
	if err != nil {
		return nil, api.FromError(err)
	}
	items, err := p.store.ListPlaylistItems(rctx, playlist.ID)
	if err != nil {
		return nil, api.FromError(err)
	}
	playlist.Items = items
	return mapPlaylist(playlist), nil
}

// DELETE /api/admin/playlists/:id
func (p *PlaylistController) deletePlaylist(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	id, apiErr := playlistID(ctx)
	if apiErr != nil {
		return nil, apiErr
	}
	if err := p.store.DeletePlaylist(ctx.Request.Context(), user.TenantID, id); err != nil {
		return nil, api.FromError(err)
	}
	return gin.H{"deleted": id}, nil
}

// PUT /api/admin/playlists/:id/active
//
// Activating clears every other active playlist in the same scope in the
// same transaction; deactivating touches only the target.
func (p *PlaylistController) setActive(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	id, apiErr := playlistID(ctx)
	if apiErr != nil {
		return nil, apiErr
	}
	var req packets.SetActivePlaylistRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: err.Error()}
	}

	rctx := ctx.Request.Context()
	if err := p.activator.SetActive(rctx, user.TenantID, id, req.GroupID, req.DisplayID, req.Active); err != nil {
		return nil, api.FromError(err)
	}
	updated, err := p.store.GetPlaylistByID(rctx, user.TenantID, id)
	if err != nil {
		return nil, api.FromError(err)
	}
	return mapPlaylist(updated), nil
}

// POST /api/admin/playlists/:id/items
//
// Multipart form: metadata fields plus the media file under "file".
func (p *PlaylistController) addItem(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	id, apiErr := playlistID(ctx)
	if apiErr != nil {
		return nil, apiErr
	}
	var req packets.AddPlaylistItemRequest
	if err := ctx.ShouldBind(&req); err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: err.Error()}
	}
	fileHeader, err := ctx.FormFile("file")
	if err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: "media file is required"}
	}

	rctx := ctx.Request.Context()
	playlist, err := p.store.GetPlaylistByID(rctx, user.TenantID, id)
	if err != nil {
		return nil, api.FromError(err)
	}

	src, err := p.media.SaveFile(fileHeader, fileHeader.Filename)
	if err != nil {
		return nil, api.FromError(err)
	}

	durationMs := req.DurationMs
	if durationMs == 0 {
		durationMs = playlist.DefaultIntervalMs
	}
	fit := req.Fit
	if fit == "" {
		fit = model.FitCover
	}
	mute := true
	if req.Mute != nil {
		mute = *req.Mute
	}

	item, err := p.store.AddItemToPlaylist(rctx, playlist.ID, req.Name, req.Type, durationMs, fit, mute, src)
	if err != nil {
		return nil, api.FromError(err)
	}
	return mapItem(item), nil
}

// DELETE /api/admin/playlists/:id/items/:itemId
func (p *PlaylistController) removeItem(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	id, apiErr := playlistID(ctx)
	if apiErr != nil {
		return nil, apiErr
	}
	itemID, err := strconv.Atoi(ctx.Param("itemId"))
	if err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: "invalid item id"}
	}

	rctx := ctx.Request.Context()
	if _, err := p.store.GetPlaylistByID(rctx, user.TenantID, id); err != nil {
		return nil, api.FromError(err)
	}
	if err := p.store.RemovePlaylistItem(rctx, id, itemID); err != nil {
		return nil, api.FromError(err)
	}
	return gin.H{"deleted": itemID}, nil
}
