package validator

import (
	"fmt"
	"regexp"

	"github.com/google/uuid"
	"github.com/mr-tron/base58"

	"github.com/bluecarbon/registry-api/domain/entity"
)

// base58 charset, 32-44 characters: the printable form of a 32-byte key.
var walletAddressRegex = regexp.MustCompile(`^[1-9A-HJ-NP-Za-km-z]{32,44}$`)

// Well-known program and system addresses that can never be a recipient.
var reservedAddresses = map[string]string{
	"11111111111111111111111111111111":            "system program",
	"TokenkegQfeZyiNwAJbNbGKPFXCWuBvf9Ss623VQ5DA": "token program",
	"ATokenGPvbdGVxr1b2hvZbsiqW5xWH25efTNsLJA8knL": "associated token account program",
	"SysvarRent111111111111111111111111111111111": "rent sysvar",
	"1nc1nerator11111111111111111111111111111111": "incinerator",
}

// MintRequestBody is the raw decoded mint request body. Decimals is a
// pointer so an absent field can default to zero without conflating it
// with an explicit zero.
type MintRequestBody struct {
	ProjectID       string `json:"projectId"`
	RecipientWallet string `json:"recipientWallet"`
	Amount          int64  `json:"amount"`
	Decimals        *int64 `json:"decimals"`
}

// WalletRequestBody is the raw decoded save-wallet body.
type WalletRequestBody struct {
	WalletAddress string                 `json:"walletAddress"`
	Metadata      *entity.WalletMetadata `json:"metadata"`
}

// ValidateMintRequest checks the mint request syntactically and
// semantically without any side effect. On success it returns the
// normalized request; otherwise a field -> messages map.
func ValidateMintRequest(body MintRequestBody) (entity.MintRequest, map[string][]string) {
	fields := map[string][]string{}

	if body.ProjectID == "" {
		fields["projectId"] = append(fields["projectId"], "projectId is required")
	} else if _, err := uuid.Parse(body.ProjectID); err != nil {
		fields["projectId"] = append(fields["projectId"], "projectId must be a valid UUID")
	}

	if body.RecipientWallet == "" {
		fields["recipientWallet"] = append(fields["recipientWallet"], "recipientWallet is required")
	} else if !ValidWalletAddress(body.RecipientWallet) {
		fields["recipientWallet"] = append(fields["recipientWallet"], "recipientWallet must be a valid base58 public key")
	}

	if body.Amount < entity.MintAmountMin || body.Amount > entity.MintAmountMax {
		fields["amount"] = append(fields["amount"],
			fmt.Sprintf("amount must be an integer between %d and %d", entity.MintAmountMin, entity.MintAmountMax))
	}

	decimals := int64(0)
	if body.Decimals != nil {
		decimals = *body.Decimals
		if decimals < 0 || decimals > entity.MintDecimalsMax {
			fields["decimals"] = append(fields["decimals"],
				fmt.Sprintf("decimals must be an integer between 0 and %d", entity.MintDecimalsMax))
		}
	}

	if len(fields) > 0 {
		return entity.MintRequest{}, fields
	}

	return entity.MintRequest{
		ProjectID:       body.ProjectID,
		RecipientWallet: body.RecipientWallet,
		Amount:          uint64(body.Amount),
		Decimals:        uint8(decimals),
	}, nil
}

// ValidateWalletRequest checks a save-wallet request: base58 charset and
// length, 32-byte decode, reserved-address denylist and the metadata
// source allow-list.
func ValidateWalletRequest(body WalletRequestBody) map[string][]string {
	fields := map[string][]string{}

	switch {
	case body.WalletAddress == "":
		fields["walletAddress"] = append(fields["walletAddress"], "walletAddress is required")
	case !walletAddressRegex.MatchString(body.WalletAddress):
		fields["walletAddress"] = append(fields["walletAddress"], "walletAddress must be 32-44 base58 characters")
	case !decodesToPublicKey(body.WalletAddress):
		fields["walletAddress"] = append(fields["walletAddress"], "walletAddress must decode to a 32-byte public key")
	default:
		if kind, reserved := reservedAddresses[body.WalletAddress]; reserved {
			fields["walletAddress"] = append(fields["walletAddress"], "walletAddress is a reserved "+kind+" address")
		}
	}

	if body.Metadata != nil && body.Metadata.Source != "" {
		if !entity.WalletSources[body.Metadata.Source] {
			fields["metadata.source"] = append(fields["metadata.source"],
				"metadata.source must be one of phantom, solflare, torus, ledger, other")
		}
	}

	if len(fields) > 0 {
		return fields
	}
	return nil
}

// ValidWalletAddress reports whether s is a syntactically valid ledger
// public key.
func ValidWalletAddress(s string) bool {
	return walletAddressRegex.MatchString(s) && decodesToPublicKey(s)
}

func decodesToPublicKey(s string) bool {
	raw, err := base58.Decode(s)
	return err == nil && len(raw) == 32
}
