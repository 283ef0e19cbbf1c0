package db

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/roastkoff/controlposter/internal/errs"
	"github.com/roastkoff/controlposter/internal/model"
)

func (s *pgStore) CreateGroup(ctx context.Context, tenantID int, name string) (model.Group, error) {
	var g model.Group
	err := s.db.GetContext(ctx, &g, `
		INSERT INTO groups (tenant_id, name, created_at)
		VALUES ($1, $2, now())
		RETURNING id, tenant_id, name, created_at
	`, tenantID, name)
	if err != nil {
		log.Error().Err(err).Int("tenant_id", tenantID).Msg("failed to create group")
		return model.Group{}, opFailed(err)
	}
	return g, nil
}

func (s *pgStore) GetGroupByID(ctx context.Context, tenantID, id int) (model.Group, error) {
	var g model.Group
	err := s.db.GetContext(ctx, &g, `
		SELECT id, tenant_id, name, created_at
		  FROM groups
		 WHERE id = $1 AND tenant_id = $2
	`, id, tenantID)
	if err != nil {
		return model.Group{}, notFound(err)
	}
	return g, nil
}

func (s *pgStore) ListGroups(ctx context.Context, tenantID int) ([]model.Group, error) {
	var groups []model.Group
	err := s.db.SelectContext(ctx, &groups, `
		SELECT id, tenant_id, name, created_at
		  FROM groups
		 WHERE tenant_id = $1
		 ORDER BY name ASC, id ASC
	`, tenantID)
	if err != nil {
		log.Error().Err(err).Int("tenant_id", tenantID).Msg("failed to list groups")
		return nil, errs.FromContext(err)
	}
	return groups, nil
}
