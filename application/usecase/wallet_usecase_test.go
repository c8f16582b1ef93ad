package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bluecarbon/registry-api/application/port/outbound"
	"github.com/bluecarbon/registry-api/domain/entity"
	apperror "github.com/bluecarbon/registry-api/domain/error"
	"github.com/bluecarbon/registry-api/infrastructure/service/logger"
)

type fakeWallets struct {
	byUser    map[string]*entity.UserWallet
	getErr    error
	saveErr   error
	deleteErr error
	deleted   []string
}

func (f *fakeWallets) GetByUserID(_ context.Context, userID string) (*entity.UserWallet, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	w, ok := f.byUser[userID]
	if !ok {
		return nil, outbound.ErrWalletNotFound
	}
	return w, nil
}

func (f *fakeWallets) Save(_ context.Context, wallet *entity.UserWallet) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	if f.byUser == nil {
		f.byUser = make(map[string]*entity.UserWallet)
	}
	f.byUser[wallet.UserID] = wallet
	return nil
}

func (f *fakeWallets) Delete(_ context.Context, userID string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deleted = append(f.deleted, userID)
	return nil
}

func newWalletUseCase(wallets *fakeWallets) *WalletUseCase {
	return NewWalletUseCase(wallets, logger.New(logger.Config{Level: "error", ServiceName: "test"}))
}

func TestWalletGet_NoWalletIsNotAnError(t *testing.T) {
	uc := newWalletUseCase(&fakeWallets{})

	info, err := uc.Get(context.Background(), "user-1")
	require.NoError(t, err)
	assert.False(t, info.HasWallet)
	assert.Empty(t, info.WalletAddress)
	assert.Nil(t, info.ConnectedAt)
}

func TestWalletGet_ReturnsStoredWallet(t *testing.T) {
	connectedAt := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	uc := newWalletUseCase(&fakeWallets{byUser: map[string]*entity.UserWallet{
		"user-1": {UserID: "user-1", Address: testRecipient, Verified: true, ConnectedAt: connectedAt},
	}})

	info, err := uc.Get(context.Background(), "user-1")
	require.NoError(t, err)
	assert.True(t, info.HasWallet)
	assert.Equal(t, testRecipient, info.WalletAddress)
	assert.True(t, info.Verified)
	require.NotNil(t, info.ConnectedAt)
	assert.Equal(t, connectedAt, *info.ConnectedAt)
}

func TestWalletGet_StoreFailure(t *testing.T) {
	uc := newWalletUseCase(&fakeWallets{getErr: errors.New("connection reset")})

	_, err := uc.Get(context.Background(), "user-1")
	assert.Equal(t, apperror.CodeInternal, apperror.Map(err).Code)
}

func TestWalletSave_ClaimedAddressIsConflict(t *testing.T) {
	uc := newWalletUseCase(&fakeWallets{saveErr: outbound.ErrWalletClaimed})

	_, err := uc.Save(context.Background(), "user-1", testRecipient, "phantom")

	appErr := apperror.Map(err)
	assert.Equal(t, apperror.CodeConflict, appErr.Code)
	assert.Equal(t, "Wallet address is already claimed by another account", appErr.Message)
}

func TestWalletSave_NewWalletStartsUnverified(t *testing.T) {
	wallets := &fakeWallets{}
	uc := newWalletUseCase(wallets)

	wallet, err := uc.Save(context.Background(), "user-1", testRecipient, "solflare")
	require.NoError(t, err)
	assert.False(t, wallet.Verified)
	assert.Equal(t, "solflare", wallet.Source)
	assert.False(t, wallet.ConnectedAt.IsZero())
	assert.Same(t, wallet, wallets.byUser["user-1"])
}

func TestWalletDelete(t *testing.T) {
	wallets := &fakeWallets{}
	uc := newWalletUseCase(wallets)

	require.NoError(t, uc.Delete(context.Background(), "user-1"))
	assert.Equal(t, []string{"user-1"}, wallets.deleted)

	wallets.deleteErr = errors.New("connection reset")
	err := uc.Delete(context.Background(), "user-1")
	assert.Equal(t, apperror.CodeInternal, apperror.Map(err).Code)
}
