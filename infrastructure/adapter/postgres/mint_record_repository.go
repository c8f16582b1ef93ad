package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/bluecarbon/registry-api/application/port/outbound"
	"github.com/bluecarbon/registry-api/domain/entity"
)

type MintRecordRepositoryAdapter struct {
	db *sql.DB
}

func NewMintRecordRepositoryAdapter(db *sql.DB) outbound.MintRecordRepository {
	return &MintRecordRepositoryAdapter{db: db}
}

// Insert writes the audit row for a completed mint. The conflict clause on
// the transaction signature makes retries from the reconciler idempotent.
func (r *MintRecordRepositoryAdapter) Insert(ctx context.Context, record *entity.MintRecord) error {
	query := `
		INSERT INTO mint_records (
			mint_address, project_id, recipient, amount, decimals,
			transaction_signature, minted_by, status, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW())
		ON CONFLICT (transaction_signature) DO NOTHING
	`

	_, err := r.db.ExecContext(ctx, query,
		record.MintAddress,
		record.ProjectID,
		record.Recipient,
		int64(record.Amount),
		int16(record.Decimals),
		record.Signature,
		record.MintedBy,
		record.Status,
	)
	if err != nil {
		return fmt.Errorf("failed to insert mint record: %w", err)
	}
	return nil
}
