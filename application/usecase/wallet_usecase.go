package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/bluecarbon/registry-api/application/port/inbound"
	"github.com/bluecarbon/registry-api/application/port/outbound"
	"github.com/bluecarbon/registry-api/domain/entity"
	apperror "github.com/bluecarbon/registry-api/domain/error"
	"github.com/bluecarbon/registry-api/infrastructure/service/logger"
)

// WalletUseCase manages the single wallet address saved per identity.
type WalletUseCase struct {
	wallets outbound.WalletRepository
	log     logger.Logger
}

func NewWalletUseCase(wallets outbound.WalletRepository, log logger.Logger) *WalletUseCase {
	return &WalletUseCase{wallets: wallets, log: log}
}

func (uc *WalletUseCase) Get(ctx context.Context, userID string) (*inbound.WalletInfo, error) {
	wallet, err := uc.wallets.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, outbound.ErrWalletNotFound) {
			return &inbound.WalletInfo{HasWallet: false}, nil
		}
		return nil, apperror.NewInternal("Failed to load wallet", err)
	}

	connectedAt := wallet.ConnectedAt
	return &inbound.WalletInfo{
		WalletAddress: wallet.Address,
		ConnectedAt:   &connectedAt,
		Verified:      wallet.Verified,
		HasWallet:     true,
	}, nil
}

func (uc *WalletUseCase) Save(ctx context.Context, userID, address, source string) (*entity.UserWallet, error) {
	wallet := &entity.UserWallet{
		UserID:      userID,
		Address:     address,
		Source:      source,
		Verified:    false,
		ConnectedAt: time.Now(),
	}

	if err := uc.wallets.Save(ctx, wallet); err != nil {
		if errors.Is(err, outbound.ErrWalletClaimed) {
			return nil, apperror.NewConflict("Wallet address is already claimed by another account")
		}
		return nil, apperror.NewInternal("Failed to save wallet", err)
	}

	uc.log.Info(ctx, "Wallet saved", map[string]interface{}{
		"user_id": userID,
		"source":  source,
	})
	return wallet, nil
}

func (uc *WalletUseCase) Delete(ctx context.Context, userID string) error {
	if err := uc.wallets.Delete(ctx, userID); err != nil {
		return apperror.NewInternal("Failed to delete wallet", err)
	}
	return nil
}
