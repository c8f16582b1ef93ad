package entity

import (
	"time"
)

// Identity is the caller resolved from a verified access token. It is
// rebuilt per request and never persisted by this service.
type Identity struct {
	ID          string     `json:"id"`
	Email       string     `json:"email"`
	BannedUntil *time.Time `json:"banned_until,omitempty"`
}

// Banned reports whether the identity carries a ban that has not expired.
func (i *Identity) Banned() bool {
	return i.BannedUntil != nil && i.BannedUntil.After(time.Now())
}

// UserProfile is the stored profile row attached 1:1 to an Identity.
// The role is mutated only by external administrative action; this
// service reads it to gate admin routes.
type UserProfile struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

func (p *UserProfile) IsAdmin() bool {
	return p.Role == RoleAdmin
}
