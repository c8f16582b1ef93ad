package entity

import (
	"time"
)

// Project statuses relevant to the mint pipeline. A project is mint-eligible
// only in the approved or credits_calculated states.
const (
	ProjectStatusPending           = "pending"
	ProjectStatusApproved          = "approved"
	ProjectStatusCreditsCalculated = "credits_calculated"
	ProjectStatusCreditsMinted     = "credits_minted"
	ProjectStatusRejected          = "rejected"
)

type Project struct {
	ID                string    `json:"id"`
	Name              string    `json:"name"`
	Status            string    `json:"status"`
	CalculatedCredits int64     `json:"calculated_credits"`
	CreditsIssued     int64     `json:"credits_issued"`
	MintAddress       string    `json:"mint_address,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// MintEligible reports whether the project is in a state that allows
// token issuance.
func (p *Project) MintEligible() bool {
	return p.Status == ProjectStatusApproved || p.Status == ProjectStatusCreditsCalculated
}
