package entity

import (
	"time"
)

// Admin audit actions recorded by the mint pipeline.
const (
	AuditActionMintCompleted = "mint_tokens"
	AuditActionMintFailed    = "mint_tokens_failed"
)

// AdminLogEntry is an append-only audit row. It is the only record
// guaranteed to exist even when a ledger operation fails partway, so it
// acts as the system-of-record when ledger and store diverge.
type AdminLogEntry struct {
	ID         string         `json:"id"`
	AdminID    string         `json:"admin_id"`
	Action     string         `json:"action"`
	TargetType string         `json:"target_type"`
	TargetID   string         `json:"target_id"`
	Details    string         `json:"details"`
	Metadata   map[string]any `json:"metadata,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
}
