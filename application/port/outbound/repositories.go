package outbound

import (
	"context"
	"errors"

	"github.com/bluecarbon/registry-api/domain/entity"
)

var (
	ErrProfileNotFound = errors.New("user profile not found")
	ErrProjectNotFound = errors.New("project not found")
	ErrWalletNotFound  = errors.New("wallet not found")

	// ErrWalletClaimed is returned when the wallet address is already
	// saved by a different identity.
	ErrWalletClaimed = errors.New("wallet address already claimed")
)

// UserRepository reads stored user profiles. Roles are read-only from this
// service's perspective.
type UserRepository interface {
	GetByID(ctx context.Context, id string) (*entity.UserProfile, error)
}

// ProjectRepository reads projects and writes back the mint outcome.
type ProjectRepository interface {
	GetByID(ctx context.Context, id string) (*entity.Project, error)
	// MarkMinted records the mint address, flips status to credits_minted
	// and sets credits_issued. Idempotent for a given project.
	MarkMinted(ctx context.Context, projectID, mintAddress string, creditsIssued uint64) error
}

// MintRecordRepository persists the one audit row per successful mint.
// Insert must be idempotent on the transaction signature.
type MintRecordRepository interface {
	Insert(ctx context.Context, record *entity.MintRecord) error
}

// AuditLogRepository appends admin action entries. Entries are never
// updated or deleted.
type AuditLogRepository interface {
	Append(ctx context.Context, entry *entity.AdminLogEntry) error
}

// WalletRepository stores the single wallet address claimed per identity.
type WalletRepository interface {
	GetByUserID(ctx context.Context, userID string) (*entity.UserWallet, error)
	Save(ctx context.Context, wallet *entity.UserWallet) error
	Delete(ctx context.Context, userID string) error
}
