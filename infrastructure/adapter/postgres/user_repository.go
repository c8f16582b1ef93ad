package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/bluecarbon/registry-api/application/port/outbound"
	"github.com/bluecarbon/registry-api/domain/entity"
)

type UserRepositoryAdapter struct {
	db *sql.DB
}

func NewUserRepositoryAdapter(db *sql.DB) outbound.UserRepository {
	return &UserRepositoryAdapter{db: db}
}

func (r *UserRepositoryAdapter) GetByID(ctx context.Context, id string) (*entity.UserProfile, error) {
	if id == "" {
		return nil, fmt.Errorf("user ID cannot be empty")
	}

	query := `
		SELECT id, email, role, created_at, updated_at
		FROM user_profiles
		WHERE id = $1
	`

	var profile entity.UserProfile
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&profile.ID,
		&profile.Email,
		&profile.Role,
		&profile.CreatedAt,
		&profile.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, outbound.ErrProfileNotFound
		}
		return nil, fmt.Errorf("failed to find user profile: %w", err)
	}

	return &profile, nil
}
