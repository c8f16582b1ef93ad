package outbound

import (
	"context"
)

// Ledger is the opaque on-chain collaborator. Implementations own the
// payer keypair; callers only see addresses and signatures as strings.
// No operation here retries or enforces a deadline beyond the context.
type Ledger interface {
	// GetBalance returns the account balance in the chain's base units
	// (lamports).
	GetBalance(ctx context.Context, account string) (uint64, error)

	// CreateMint creates a new token mint with the payer as its authority
	// and returns the mint address.
	CreateMint(ctx context.Context, decimals uint8) (string, error)

	// CreateOrGetAssociatedAccount ensures the owner's associated token
	// account for the mint exists and returns its address.
	CreateOrGetAssociatedAccount(ctx context.Context, mint, owner string) (string, error)

	// MintTo issues amount base units of the mint to the destination token
	// account and returns the transaction signature.
	MintTo(ctx context.Context, mint, destination string, amount uint64) (string, error)

	// PayerAddress is the operator account funding all transactions.
	PayerAddress() string

	// ExplorerURL builds a cluster-aware block-explorer link for a
	// transaction signature.
	ExplorerURL(signature string) string
}
