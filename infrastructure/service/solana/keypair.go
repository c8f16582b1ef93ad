package solana

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/gagliardetto/solana-go"
)

// parsePayerKey accepts the payer secret either as a base58 string or as
// the JSON byte-array format produced by solana-keygen.
func parsePayerKey(secret string) (solana.PrivateKey, error) {
	secret = strings.TrimSpace(secret)
	if secret == "" {
		return nil, fmt.Errorf("payer secret cannot be empty")
	}

	if strings.HasPrefix(secret, "[") {
		var raw []int
		if err := json.Unmarshal([]byte(secret), &raw); err != nil {
			return nil, fmt.Errorf("failed to parse payer secret as JSON array: %w", err)
		}
		key := make(solana.PrivateKey, len(raw))
		for i, b := range raw {
			if b < 0 || b > 255 {
				return nil, fmt.Errorf("payer secret byte %d out of range", i)
			}
			key[i] = byte(b)
		}
		if len(key) != 64 {
			return nil, fmt.Errorf("payer secret must be 64 bytes, got %d", len(key))
		}
		return key, nil
	}

	key, err := solana.PrivateKeyFromBase58(secret)
	if err != nil {
		return nil, fmt.Errorf("failed to parse payer secret as base58: %w", err)
	}
	return key, nil
}
