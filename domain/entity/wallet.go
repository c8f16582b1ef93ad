package entity

import (
	"time"
)

// Wallet sources accepted in save-wallet metadata.
var WalletSources = map[string]bool{
	"phantom":  true,
	"solflare": true,
	"torus":    true,
	"ledger":   true,
	"other":    true,
}

// UserWallet is a saved wallet address claimed by a single identity.
type UserWallet struct {
	UserID      string    `json:"user_id"`
	Address     string    `json:"walletAddress"`
	Source      string    `json:"source,omitempty"`
	Verified    bool      `json:"verified"`
	ConnectedAt time.Time `json:"connectedAt"`
}

// WalletMetadata is the optional metadata block on a save-wallet request.
type WalletMetadata struct {
	Source string `json:"source,omitempty"`
}
