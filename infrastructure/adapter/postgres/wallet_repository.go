package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/bluecarbon/registry-api/application/port/outbound"
	"github.com/bluecarbon/registry-api/domain/entity"
)

const uniqueViolation = "23505"

type WalletRepositoryAdapter struct {
	db *sql.DB
}

func NewWalletRepositoryAdapter(db *sql.DB) outbound.WalletRepository {
	return &WalletRepositoryAdapter{db: db}
}

func (r *WalletRepositoryAdapter) GetByUserID(ctx context.Context, userID string) (*entity.UserWallet, error) {
	query := `
		SELECT user_id, wallet_address, COALESCE(source, ''), verified, connected_at
		FROM user_wallets
		WHERE user_id = $1
	`

	var wallet entity.UserWallet
	err := r.db.QueryRowContext(ctx, query, userID).Scan(
		&wallet.UserID,
		&wallet.Address,
		&wallet.Source,
		&wallet.Verified,
		&wallet.ConnectedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, outbound.ErrWalletNotFound
		}
		return nil, fmt.Errorf("failed to find wallet: %w", err)
	}

	return &wallet, nil
}

// Save upserts the caller's wallet row. A unique index on wallet_address
// rejects addresses already claimed by a different identity.
func (r *WalletRepositoryAdapter) Save(ctx context.Context, wallet *entity.UserWallet) error {
	query := `
		INSERT INTO user_wallets (user_id, wallet_address, source, verified, connected_at)
		VALUES ($1, $2, $3, $4, NOW())
		ON CONFLICT (user_id) DO UPDATE
		SET wallet_address = EXCLUDED.wallet_address,
		    source = EXCLUDED.source,
		    connected_at = NOW()
	`

	_, err := r.db.ExecContext(ctx, query, wallet.UserID, wallet.Address, wallet.Source, wallet.Verified)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == uniqueViolation {
			return outbound.ErrWalletClaimed
		}
		return fmt.Errorf("failed to save wallet: %w", err)
	}
	return nil
}

func (r *WalletRepositoryAdapter) Delete(ctx context.Context, userID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM user_wallets WHERE user_id = $1`, userID)
	if err != nil {
		return fmt.Errorf("failed to delete wallet: %w", err)
	}
	return nil
}
