// Package db exposes a Store interface that the API and workflow layers
// are written against; pgStore is the PostgreSQL implementation.
package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/roastkoff/controlposter/internal/errs"
	"github.com/roastkoff/controlposter/internal/model"
)

type Store interface {
	// tenants / users
	CreateTenant(ctx context.Context, name string) (int, error)
	CreateUser(ctx context.Context, tenantID int, email, hashedPassword string, name *string) (int, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	GetUserByID(ctx context.Context, id int) (*model.User, error)

	// pairing sessions
	CreatePairingSession(ctx context.Context, code string, deviceID *string) (model.PairingSession, error)
	GetPairingSession(ctx context.Context, code string) (model.PairingSession, error)
	ClaimPairingSession(ctx context.Context, code string, tenantID int, groupID *int, name string, location *string) (int, error)

	// groups
	CreateGroup(ctx context.Context, tenantID int, name string) (model.Group, error)
	GetGroupByID(ctx context.Context, tenantID, id int) (model.Group, error)
	ListGroups(ctx context.Context, tenantID int) ([]model.Group, error)

	// displays
	GetDisplayByID(ctx context.Context, tenantID, id int) (model.Display, error)
	GetDisplayByDeviceID(ctx context.Context, deviceID string) (model.Display, error)
	ListDisplays(ctx context.Context, tenantID int, groupID *int) ([]model.Display, error)
	UpdateDisplay(ctx context.Context, tenantID, id int, name, location *string, groupID *int) error
	SetDisplayStatus(ctx context.Context, displayID int, status string) error

	// playlists
	CreatePlaylist(ctx context.Context, tenantID int, groupID, displayID *int, name string, loop, shuffle bool, defaultIntervalMs int) (model.Playlist, error)
	GetPlaylistByID(ctx context.Context, tenantID, id int) (model.Playlist, error)
	ListPlaylists(ctx context.Context, tenantID int, groupID *int) ([]model.Playlist, error)
	DeletePlaylist(ctx context.Context, tenantID, id int) error
	AddItemToPlaylist(ctx context.Context, playlistID int, name, mediaType string, durationMs int, fit string, mute bool, src string) (model.PlaylistItem, error)
	ListPlaylistItems(ctx context.Context, playlistID int) ([]model.PlaylistItem, error)
	RemovePlaylistItem(ctx context.Context, playlistID, itemID int) error
	SetActivePlaylist(ctx context.Context, tenantID, playlistID int, groupID, displayID *int, active bool) error
	GetActivePlaylistForDisplay(ctx context.Context, displayID int) (model.Playlist, error)
}

type pgStore struct {
	db *sqlx.DB
}

var _ Store = (*pgStore)(nil)

func NewStore(database *sqlx.DB) Store {
	if database == nil {
		database = DB
	}
	return &pgStore{db: database}
}

// notFound maps sql.ErrNoRows onto the shared taxonomy; everything else
// passes through errs.FromContext so a stalled call reads as a timeout.
func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return errs.ErrNotFound
	}
	return errs.FromContext(err)
}

// opFailed tags a failed write; deadline errors still surface as timeouts.
func opFailed(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return errs.FromContext(err)
	}
	return fmt.Errorf("%w: %v", errs.ErrOperationFailed, err)
}
