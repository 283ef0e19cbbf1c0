package main

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/roastkoff/controlposter/internal/db"
	"github.com/roastkoff/controlposter/internal/directory"
	"github.com/roastkoff/controlposter/internal/http/api"
	authapi "github.com/roastkoff/controlposter/internal/http/api/admin/auth/endpoints"
	adminapi "github.com/roastkoff/controlposter/internal/http/api/admin/control/endpoints"
	tvapi "github.com/roastkoff/controlposter/internal/http/api/tv/endpoints"
	"github.com/roastkoff/controlposter/internal/pairing"
	"github.com/roastkoff/controlposter/internal/playback"
	"github.com/roastkoff/controlposter/internal/storage"
)

// RegisterRoutes sets up all application routes.
func RegisterRoutes(
	r *gin.Engine,
	env Environment,
	store db.Store,
	media storage.Storage,
	pairSvc *pairing.Service,
	activator *playback.Activator,
	dir *directory.Directory,
	feed directory.Publisher,
) {
	r.Use(cors.New(cors.Config{
		AllowOriginFunc: func(origin string) bool { return true },
		AllowMethods: []string{
			"GET",
			"POST",
			"PUT",
			"PATCH",
			"DELETE",
			"OPTIONS",
			"HEAD",
		},
		AllowHeaders: []string{
			"Origin",
			"Content-Type",
			"Authorization",
			"Accept",
		},
		ExposeHeaders: []string{
			"Content-Length",
		},
		AllowCredentials: false,
	}))

	api.MountGroup(r, api.GroupConfig{
		Prefix: "/api/admin",
		Auth:   false,
	},
		authapi.AuthPublicModule(env.SecretKey, store),
	)

	api.MountGroup(r, api.GroupConfig{
		Prefix:    "/api/admin",
		Auth:      true,
		SecretKey: env.SecretKey,
		Store:     store,
	},
		adminapi.GroupModule(store),
		adminapi.DisplayModule(store, pairSvc, dir),
		adminapi.PlaylistModule(store, activator, media),
		authapi.AuthSessionModule(env.SecretKey, store),
	)

	tv := r.Group("/api/tv")
	tvapi.RegisterTvRoutes(tv, store, pairSvc, feed)

	// locally stored media
	if !env.UseSpaces {
		r.Static("/uploads", "./uploads")
	}
}
