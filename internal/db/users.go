package db

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/roastkoff/controlposter/internal/model"
)

func (s *pgStore) CreateTenant(ctx context.Context, name string) (int, error) {
	var newID int
	err := s.db.QueryRowxContext(ctx, `
		INSERT INTO tenants (name, created_at)
		VALUES ($1, now())
		RETURNING id;
	`, name).Scan(&newID)
	if err != nil {
		log.Error().Err(err).Msg("failed to create tenant")
		return 0, opFailed(err)
	}
	return newID, nil
}

// CreateUser inserts a new user into the tenant and returns the new user ID.
func (s *pgStore) CreateUser(ctx context.Context, tenantID int, email, hashedPassword string, name *string) (int, error) {
	var newID int
	err := s.db.QueryRowxContext(ctx, `
		INSERT INTO users (tenant_id, email, hashed_password, name, created_at, updated_at)
		VALUES ($1, $2, $3, $4, now(), now())
		RETURNING id;
	`, tenantID, email, hashedPassword, name).Scan(&newID)
	if err != nil {
		log.Error().Err(err).Msg("failed to create user")
		return 0, opFailed(err)
	}
	return newID, nil
}

func (s *pgStore) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	var u model.User
	err := s.db.GetContext(ctx, &u, `
		SELECT id, tenant_id, email, hashed_password, name, created_at, updated_at
		FROM users
		WHERE email = $1;
	`, email)
	if err != nil {
		return nil, notFound(err)
	}
	return &u, nil
}

func (s *pgStore) GetUserByID(ctx context.Context, id int) (*model.User, error) {
	var u model.User
	err := s.db.GetContext(ctx, &u, `
		SELECT id, tenant_id, email, hashed_password, name, created_at, updated_at
		FROM users
		WHERE id = $1;
	`, id)
	if err != nil {
		return nil, notFound(err)
	}
	return &u, nil
}
