package endpoints

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/roastkoff/controlposter/internal/db"
	"github.com/roastkoff/controlposter/internal/errs"
	"github.com/roastkoff/controlposter/internal/http/api"
	"github.com/roastkoff/controlposter/internal/http/api/admin/control/packets"
	"github.com/roastkoff/controlposter/internal/model"
)

type GroupController struct {
	store db.Store
}

func newGroupController(store db.Store) *GroupController { return &GroupController{store: store} }

// GroupModule mounts the authenticated /groups endpoints plus the
// dashboard overview.
func GroupModule(store db.Store) api.Module {
	ctl := newGroupController(store)
	return api.ModuleFunc(func(c *api.Controller) {
		c.GET("/groups", ctl.listGroups)
		c.POST("/groups", ctl.createGroup)
		c.GET("/dashboard", ctl.dashboard)
	})
}

func mapGroup(g model.Group) packets.GroupResponse {
	return packets.GroupResponse{
		ID:        g.ID,
		Name:      g.Name,
		CreatedAt: g.CreatedAt.Format(time.RFC3339),
	}
}

// GET /api/admin/groups
func (g *GroupController) listGroups(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	groups, err := g.store.ListGroups(ctx.Request.Context(), user.TenantID)
	if err != nil {
		return nil, api.FromError(err)
	}
	out := make([]packets.GroupResponse, 0, len(groups))
	for _, gr := range groups {
		out = append(out, mapGroup(gr))
	}
	return out, nil
}

// POST /api/admin/groups
func (g *GroupController) createGroup(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	var req packets.CreateGroupRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		return nil, api.FromError(errs.Invalid("group name is required"))
	}

	grp, err := g.store.CreateGroup(ctx.Request.Context(), user.TenantID, req.Name)
	if err != nil {
		return nil, api.FromError(err)
	}
	return mapGroup(grp), nil
}

// GET /api/admin/dashboard
func (g *GroupController) dashboard(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	rctx := ctx.Request.Context()

	groups, err := g.store.ListGroups(rctx, user.TenantID)
	if err != nil {
		return nil, api.FromError(err)
	}
	displays, err := g.store.ListDisplays(rctx, user.TenantID, nil)
	if err != nil {
		return nil, api.FromError(err)
	}

	byGroup := make(map[int][]packets.DisplayResponse)
	for _, d := range displays {
		if d.GroupID == nil {
			continue
		}
		byGroup[*d.GroupID] = append(byGroup[*d.GroupID], mapDisplay(d))
	}

	out := packets.DashboardResponse{GroupTotal: len(groups)}
	for _, gr := range groups {
		out.Groups = append(out.Groups, packets.DashboardGroup{
			GroupID:   gr.ID,
			GroupName: gr.Name,
			Displays:  byGroup[gr.ID],
		})
	}
	return out, nil
}
