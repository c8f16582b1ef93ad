package entity

import (
	"time"
)

// Limits enforced on mint requests before any side effect occurs.
const (
	MintAmountMin   = 1
	MintAmountMax   = 1_000_000
	MintDecimalsMax = 9
)

// MintRequest is the validated body of a mint call. It is consumed to
// build a MintRecord and never stored as-is.
type MintRequest struct {
	ProjectID       string `json:"projectId"`
	RecipientWallet string `json:"recipientWallet"`
	Amount          uint64 `json:"amount"`
	Decimals        uint8  `json:"decimals"`
}

// AmountToMint computes amount × 10^decimals in integer arithmetic.
// decimals==0 is an explicit multiplier-1 case so the base amount is
// returned untouched.
func (r *MintRequest) AmountToMint() uint64 {
	if r.Decimals == 0 {
		return r.Amount
	}
	multiplier := uint64(1)
	for i := uint8(0); i < r.Decimals; i++ {
		multiplier *= 10
	}
	return r.Amount * multiplier
}

// Mint record statuses.
const (
	MintStatusCompleted = "completed"
	MintStatusFailed    = "failed"
)

// MintRecord is the audit row written exactly once per successful mint.
// Immutable after insertion.
type MintRecord struct {
	ID          string    `json:"id"`
	MintAddress string    `json:"mint_address"`
	ProjectID   string    `json:"project_id"`
	Recipient   string    `json:"recipient"`
	Amount      uint64    `json:"amount"`
	Decimals    uint8     `json:"decimals"`
	Signature   string    `json:"transaction_signature"`
	MintedBy    string    `json:"minted_by"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
}

// MintResult is the successful outcome returned to the caller.
type MintResult struct {
	Mint           string        `json:"mint"`
	Transaction    string        `json:"transaction"`
	Amount         uint64        `json:"amount"`
	Decimals       uint8         `json:"decimals"`
	Recipient      string        `json:"recipient"`
	ExplorerURL    string        `json:"explorer_url"`
	ProcessingTime time.Duration `json:"-"`
}
