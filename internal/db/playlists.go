package db

import (
	"context"
	"database/sql"
	"errors"

	"github.com/rs/zerolog/log"

	"github.com/roastkoff/controlposter/internal/errs"
	"github.com/roastkoff/controlposter/internal/model"
)

const playlistColumns = `
	id, tenant_id, group_id, display_id, name, loop, shuffle,
	default_interval_ms, active, created_at, updated_at`

const itemColumns = `
	id, playlist_id, position, name, type, duration_ms, fit, mute, src, created_at`

func (s *pgStore) CreatePlaylist(ctx context.Context, tenantID int, groupID, displayID *int, name string, loop, shuffle bool, defaultIntervalMs int) (model.Playlist, error) {
	var p model.Playlist
	err := s.db.GetContext(ctx, &p, `
		INSERT INTO playlists
			(tenant_id, group_id, display_id, name, loop, shuffle, default_interval_ms, active, created_at, updated_at)
		VALUES
			($1, $2, $3, $4, $5, $6, $7, false, now(), now())
		RETURNING `+playlistColumns+`
	`, tenantID, groupID, displayID, name, loop, shuffle, defaultIntervalMs)
	if err != nil {
		log.Error().Err(err).Int("tenant_id", tenantID).Msg("failed to create playlist")
		return model.Playlist{}, opFailed(err)
	}
	return p, nil
}

func (s *pgStore) GetPlaylistByID(ctx context.Context, tenantID, id int) (model.Playlist, error) {
	var p model.Playlist
	err := s.db.GetContext(ctx, &p, `
		SELECT `+playlistColumns+`
		  FROM playlists
		 WHERE id = $1 AND tenant_id = $2
	`, id, tenantID)
	if err != nil {
		return model.Playlist{}, notFound(err)
	}

	items, err := s.ListPlaylistItems(ctx, id)
	if err != nil {
		return p, err
	}
	p.Items = items
	return p, nil
}

func (s *pgStore) ListPlaylists(ctx context.Context, tenantID int, groupID *int) ([]model.Playlist, error) {
	var out []model.Playlist
	var err error
	if groupID != nil {
		err = s.db.SelectContext(ctx, &out, `
			SELECT `+playlistColumns+`
			  FROM playlists
			 WHERE tenant_id = $1 AND group_id = $2
			 ORDER BY name ASC, id ASC
		`, tenantID, *groupID)
	} else {
		err = s.db.SelectContext(ctx, &out, `
			SELECT `+playlistColumns+`
			  FROM playlists
			 WHERE tenant_id = $1
			 ORDER BY name ASC, id ASC
		`, tenantID)
	}
	if err != nil {
		log.Error().Err(err).Int("tenant_id", tenantID).Msg("failed to list playlists")
		return nil, errs.FromContext(err)
	}
	return out, nil
}

func (s *pgStore) DeletePlaylist(ctx context.Context, tenantID, id int) error {
	res, err := s.db.ExecContext(ctx, `
		DELETE FROM playlists WHERE id = $1 AND tenant_id = $2
	`, id, tenantID)
	if err != nil {
		log.Error().Err(err).Int("playlist_id", id).Msg("failed to delete playlist")
		return opFailed(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return errs.ErrNotFound
	}
	return nil
}

// AddItemToPlaylist appends a media item at the end of the playlist.
func (s *pgStore) AddItemToPlaylist(ctx context.Context, playlistID int, name, mediaType string, durationMs int, fit string, mute bool, src string) (model.PlaylistItem, error) {
	var it model.PlaylistItem
	err := s.db.GetContext(ctx, &it, `
		INSERT INTO playlist_items
			(playlist_id, position, name, type, duration_ms, fit, mute, src, created_at)
		SELECT $1, COALESCE(MAX(position), 0) + 1, $2, $3, $4, $5, $6, $7, now()
		  FROM playlist_items
		 WHERE playlist_id = $1
		RETURNING `+itemColumns+`
	`, playlistID, name, mediaType, durationMs, fit, mute, src)
	if err != nil {
		log.Error().Err(err).Int("playlist_id", playlistID).Msg("failed to add playlist item")
		return model.PlaylistItem{}, opFailed(err)
	}

	if _, err := s.db.ExecContext(ctx, `
		UPDATE playlists SET updated_at = now() WHERE id = $1
	`, playlistID); err != nil {
		log.Warn().Err(err).Int("playlist_id", playlistID).Msg("failed to bump playlist updated_at")
	}
	return it, nil
}

func (s *pgStore) ListPlaylistItems(ctx context.Context, playlistID int) ([]model.PlaylistItem, error) {
	var list []model.PlaylistItem
	err := s.db.SelectContext(ctx, &list, `
		SELECT `+itemColumns+`
		  FROM playlist_items
		 WHERE playlist_id = $1
		 ORDER BY position ASC
	`, playlistID)
	if err != nil {
		log.Error().Err(err).Int("playlist_id", playlistID).Msg("failed to list playlist items")
		return nil, errs.FromContext(err)
	}
	return list, nil
}

func (s *pgStore) RemovePlaylistItem(ctx context.Context, playlistID, itemID int) error {
	res, err := s.db.ExecContext(ctx, `
		DELETE FROM playlist_items WHERE id = $1 AND playlist_id = $2
	`, itemID, playlistID)
	if err != nil {
		log.Error().Err(err).Int("item_id", itemID).Msg("failed to remove playlist item")
		return opFailed(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return errs.ErrNotFound
	}
	return nil
}

// SetActivePlaylist flips a playlist's active flag.
//
// Deactivation is a single write touching only the named playlist.
// Activation runs in one transaction holding an advisory lock on the
// (tenant, group, display) scope, so two concurrent activations for the
// same scope serialize: siblings are cleared and the target is set with
// no externally observable intermediate state, and failure rolls the
// whole flip back.
func (s *pgStore) SetActivePlaylist(ctx context.Context, tenantID, playlistID int, groupID, displayID *int, active bool) error {
	if !active {
		res, err := s.db.ExecContext(ctx, `
			UPDATE playlists
			   SET active = false, updated_at = now()
			 WHERE id = $1 AND tenant_id = $2
		`, playlistID, tenantID)
		if err != nil {
			log.Error().Err(err).Int("playlist_id", playlistID).Msg("failed to deactivate playlist")
			return opFailed(err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return errs.ErrNotFound
		}
		return nil
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return opFailed(err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	// Serialize activations per scope. Row locks alone miss the write-skew
	// case where two transactions each clear the other's not-yet-active row.
	if _, err = tx.ExecContext(ctx, `
		SELECT pg_advisory_xact_lock(hashtextextended($1 || ':' || COALESCE($2::text, '-') || ':' || COALESCE($3::text, '-'), 0))
	`, tenantID, groupID, displayID); err != nil {
		return opFailed(err)
	}

	if _, err = tx.ExecContext(ctx, `
		UPDATE playlists
		   SET active = false, updated_at = now()
		 WHERE tenant_id = $1
		   AND group_id IS NOT DISTINCT FROM $2
		   AND display_id IS NOT DISTINCT FROM $3
		   AND active = true
		   AND id <> $4
	`, tenantID, groupID, displayID, playlistID); err != nil {
		log.Error().Err(err).Int("playlist_id", playlistID).Msg("failed to clear active siblings")
		return opFailed(err)
	}

	res, err := tx.ExecContext(ctx, `
		UPDATE playlists
		   SET active = true, updated_at = now()
		 WHERE id = $1 AND tenant_id = $2
	`, playlistID, tenantID)
	if err != nil {
		log.Error().Err(err).Int("playlist_id", playlistID).Msg("failed to activate playlist")
		return opFailed(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return errs.ErrNotFound
	}

	if displayID != nil {
		if _, err = tx.ExecContext(ctx, `
			UPDATE displays
			   SET active_playlist_id = $2, updated_at = now()
			 WHERE id = $1 AND tenant_id = $3
		`, *displayID, playlistID, tenantID); err != nil {
			log.Error().Err(err).Int("display_id", *displayID).Msg("failed to point display at playlist")
			return opFailed(err)
		}
	}

	if err = tx.Commit(); err != nil {
		return opFailed(err)
	}
	return nil
}

// GetActivePlaylistForDisplay resolves what a device should be playing:
// the display's active playlist pointer, items included.
func (s *pgStore) GetActivePlaylistForDisplay(ctx context.Context, displayID int) (model.Playlist, error) {
	var p model.Playlist
	err := s.db.GetContext(ctx, &p, `
		SELECT p.id, p.tenant_id, p.group_id, p.display_id, p.name, p.loop, p.shuffle,
		       p.default_interval_ms, p.active, p.created_at, p.updated_at
		  FROM displays d
		  JOIN playlists p ON p.id = d.active_playlist_id
		 WHERE d.id = $1
	`, displayID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Playlist{}, errs.ErrNotFound
		}
		return model.Playlist{}, errs.FromContext(err)
	}

	items, err := s.ListPlaylistItems(ctx, p.ID)
	if err != nil {
		return p, err
	}
	p.Items = items
	return p, nil
}
