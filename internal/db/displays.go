package db

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/roastkoff/controlposter/internal/errs"
	"github.com/roastkoff/controlposter/internal/model"
)

const displayColumns = `
	id, tenant_id, group_id, device_id, name, location, status,
	active_playlist_id, created_at, updated_at`

func (s *pgStore) GetDisplayByID(ctx context.Context, tenantID, id int) (model.Display, error) {
	var d model.Display
	err := s.db.GetContext(ctx, &d, `
		SELECT `+displayColumns+`
		  FROM displays
		 WHERE id = $1 AND tenant_id = $2
	`, id, tenantID)
	if err != nil {
		return model.Display{}, notFound(err)
	}
	return d, nil
}

func (s *pgStore) GetDisplayByDeviceID(ctx context.Context, deviceID string) (model.Display, error) {
	var d model.Display
	err := s.db.GetContext(ctx, &d, `
		SELECT `+displayColumns+`
		  FROM displays
		 WHERE device_id = $1
	`, deviceID)
	if err != nil {
		return model.Display{}, notFound(err)
	}
	return d, nil
}

// ListDisplays returns the tenant's displays ordered by group then name.
// Ungrouped displays (NULL group_id) sort first.
func (s *pgStore) ListDisplays(ctx context.Context, tenantID int, groupID *int) ([]model.Display, error) {
	var displays []model.Display
	var err error
	if groupID != nil {
		err = s.db.SelectContext(ctx, &displays, `
			SELECT `+displayColumns+`
			  FROM displays
			 WHERE tenant_id = $1 AND group_id = $2
			 ORDER BY name ASC, id ASC
		`, tenantID, *groupID)
	} else {
		err = s.db.SelectContext(ctx, &displays, `
			SELECT `+displayColumns+`
			  FROM displays
			 WHERE tenant_id = $1
			 ORDER BY group_id ASC NULLS FIRST, name ASC, id ASC
		`, tenantID)
	}
	if err != nil {
		log.Error().Err(err).Int("tenant_id", tenantID).Msg("failed to list displays")
		return nil, errs.FromContext(err)
	}
	return displays, nil
}

func (s *pgStore) UpdateDisplay(ctx context.Context, tenantID, id int, name, location *string, groupID *int) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE displays
		   SET name     = COALESCE($3, name),
		       location = COALESCE($4, location),
		       group_id = COALESCE($5, group_id),
		       updated_at = now()
		 WHERE id = $1 AND tenant_id = $2
	`, id, tenantID, name, location, groupID)
	if err != nil {
		log.Error().Err(err).Int("display_id", id).Msg("failed to update display")
		return opFailed(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return errs.ErrNotFound
	}
	return nil
}

// SetDisplayStatus is the device heartbeat path; no tenant scoping because
// the device authenticates by its own identity, not a staff session.
func (s *pgStore) SetDisplayStatus(ctx context.Context, displayID int, status string) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE displays
		   SET status = $2,
		       updated_at = now()
		 WHERE id = $1
	`, displayID, status)
	if err != nil {
		log.Error().Err(err).Int("display_id", displayID).Msg("failed to set display status")
		return opFailed(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return errs.ErrNotFound
	}
	return nil
}
