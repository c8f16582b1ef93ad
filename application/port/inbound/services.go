package inbound

import (
	"context"
	"time"

	"github.com/bluecarbon/registry-api/domain/entity"
)

// MintUseCase executes the admin minting pipeline for a validated request.
type MintUseCase interface {
	Mint(ctx context.Context, req entity.MintRequest, adminID string) (*entity.MintResult, error)
}

// WalletInfo is the response shape for wallet reads.
type WalletInfo struct {
	WalletAddress string     `json:"walletAddress,omitempty"`
	ConnectedAt   *time.Time `json:"connectedAt,omitempty"`
	Verified      bool       `json:"verified"`
	HasWallet     bool       `json:"hasWallet"`
}

// WalletUseCase manages the single wallet address saved per identity.
type WalletUseCase interface {
	Get(ctx context.Context, userID string) (*WalletInfo, error)
	Save(ctx context.Context, userID, address, source string) (*entity.UserWallet, error)
	Delete(ctx context.Context, userID string) error
}

// RateLimitService bounds request frequency per caller per tier. Allow
// reports whether the call may proceed and, when denied, how long the
// caller should wait. Counter increments are atomic per key.
type RateLimitService interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, time.Duration, error)
}
