package db

import (
	"context"
	"database/sql"
	"errors"

	"github.com/rs/zerolog/log"

	"github.com/roastkoff/controlposter/internal/errs"
	"github.com/roastkoff/controlposter/internal/model"
)

const pairingColumns = `
	code, status, device_id, display_id, tenant_id, group_id, created_at, updated_at`

func (s *pgStore) CreatePairingSession(ctx context.Context, code string, deviceID *string) (model.PairingSession, error) {
	var sess model.PairingSession
	err := s.db.GetContext(ctx, &sess, `
		INSERT INTO pairing_sessions (code, status, device_id, created_at, updated_at)
		VALUES ($1, 'pending', $2, now(), now())
		RETURNING `+pairingColumns+`
	`, code, deviceID)
	if err != nil {
		log.Error().Err(err).Msg("failed to create pairing session")
		return model.PairingSession{}, opFailed(err)
	}
	return sess, nil
}

func (s *pgStore) GetPairingSession(ctx context.Context, code string) (model.PairingSession, error) {
	var sess model.PairingSession
	err := s.db.GetContext(ctx, &sess, `
		SELECT `+pairingColumns+`
		  FROM pairing_sessions
		 WHERE code = $1
	`, code)
	if err != nil {
		return model.PairingSession{}, notFound(err)
	}
	return sess, nil
}

// ClaimPairingSession turns a pending code into a provisioned display,
// exactly once. The session row is locked for the duration of the
// transaction so two concurrent claims of the same code serialize: the
// second sees status = claimed and fails without writing anything.
func (s *pgStore) ClaimPairingSession(ctx context.Context, code string, tenantID int, groupID *int, name string, location *string) (int, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, opFailed(err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	var sess model.PairingSession
	err = tx.GetContext(ctx, &sess, `
		SELECT `+pairingColumns+`
		  FROM pairing_sessions
		 WHERE code = $1
		 FOR UPDATE
	`, code)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, errs.ErrNotFound
		}
		return 0, opFailed(err)
	}
	if sess.Status != model.PairingPending {
		return 0, errs.ErrAlreadyClaimed
	}

	var displayID int
	err = tx.QueryRowxContext(ctx, `
		INSERT INTO displays
			(tenant_id, group_id, device_id, name, location, status, active_playlist_id, created_at, updated_at)
		VALUES
			($1, $2, $3, $4, $5, 'offline', NULL, now(), now())
		RETURNING id
	`, tenantID, groupID, sess.DeviceID, name, location).Scan(&displayID)
	if err != nil {
		log.Error().Err(err).Str("code", code).Msg("failed to provision display")
		return 0, opFailed(err)
	}

	if _, err = tx.ExecContext(ctx, `
		UPDATE pairing_sessions
		   SET status = 'claimed',
		       display_id = $2,
		       tenant_id = $3,
		       group_id = $4,
		       updated_at = now()
		 WHERE code = $1
	`, code, displayID, tenantID, groupID); err != nil {
		log.Error().Err(err).Str("code", code).Msg("failed to mark session claimed")
		return 0, opFailed(err)
	}

	if err = tx.Commit(); err != nil {
		return 0, opFailed(err)
	}
	return displayID, nil
}
