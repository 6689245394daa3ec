package model

import "time"

// Roles stored in users.role.
const (
	RoleGuest = "GUEST"
	RoleHost  = "HOST"
	RoleAdmin = "ADMIN"
)

// User represents an application user record as stored in the
// `users` table. Hosts own accommodations; the cleanup sweep treats
// every HOST row as a valid owner.
type User struct {
	ID           string    // users.id (uuid)
	Email        string    // users.email, lowercased
	PasswordHash string    // users.password_hash (bcrypt)
	Name         string    // users.name
	Role         string    // users.role
	IsActive     bool      // users.is_active
	CreatedAt    time.Time // users.created_at
	UpdatedAt    time.Time // users.updated_at
}

// RefreshToken models an entry in the `refresh_tokens` table. The plain
// token is not stored; only its SHA-256 hash.
type RefreshToken struct {
	ID        uint64     // refresh_tokens.id
	UserID    string     // refresh_tokens.user_id
	TokenHash string     // refresh_tokens.token_hash
	ExpiresAt time.Time  // refresh_tokens.expires_at
	RevokedAt *time.Time // refresh_tokens.revoked_at (nullable)
	CreatedAt time.Time  // refresh_tokens.created_at
}

// LoginHistory is written every time a host signs in.
type LoginHistory struct {
	ID        string    `json:"id"`
	HostID    string    `json:"hostId"`
	Timestamp time.Time `json:"timestamp"`
	IP        string    `json:"ip"`
	UserAgent string    `json:"userAgent"`
}
