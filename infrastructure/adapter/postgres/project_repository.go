package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/bluecarbon/registry-api/application/port/outbound"
	"github.com/bluecarbon/registry-api/domain/entity"
)

type ProjectRepositoryAdapter struct {
	db *sql.DB
}

func NewProjectRepositoryAdapter(db *sql.DB) outbound.ProjectRepository {
	return &ProjectRepositoryAdapter{db: db}
}

func (r *ProjectRepositoryAdapter) GetByID(ctx context.Context, id string) (*entity.Project, error) {
	query := `
		SELECT id, name, status, calculated_credits, credits_issued,
		       COALESCE(mint_address, ''), created_at, updated_at
		FROM projects
		WHERE id = $1
	`

	var project entity.Project
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&project.ID,
		&project.Name,
		&project.Status,
		&project.CalculatedCredits,
		&project.CreditsIssued,
		&project.MintAddress,
		&project.CreatedAt,
		&project.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, outbound.ErrProjectNotFound
		}
		return nil, fmt.Errorf("failed to find project: %w", err)
	}

	return &project, nil
}

func (r *ProjectRepositoryAdapter) MarkMinted(ctx context.Context, projectID, mintAddress string, creditsIssued uint64) error {
	query := `
		UPDATE projects
		SET mint_address = $2,
		    status = $3,
		    credits_issued = $4,
		    updated_at = NOW()
		WHERE id = $1
	`

	result, err := r.db.ExecContext(ctx, query, projectID, mintAddress, entity.ProjectStatusCreditsMinted, int64(creditsIssued))
	if err != nil {
		return fmt.Errorf("failed to mark project minted: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read update result: %w", err)
	}
	if rows == 0 {
		return outbound.ErrProjectNotFound
	}
	return nil
}
