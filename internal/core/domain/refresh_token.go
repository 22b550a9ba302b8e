package domain

import "time"

// RefreshToken is the persisted rotation record for one refresh-token
// issuance. TokenHash is a one-way digest of the encoded token string; the
// raw token is never stored. Once IsActive flips to false (rotation, logout
// or lazy expiry detection) it is never reset, and the row is kept for audit.
type RefreshToken struct {
	ID        int64      `json:"id"`
	JTI       string     `json:"jti"`
	UserID    int64      `json:"userID"`
	TokenHash string     `json:"-"`
	ExpiresAt time.Time  `json:"expiresAt"`
	CreatedAt time.Time  `json:"createdAt"`
	IsActive  bool       `json:"isActive"`
	RevokedAt *time.Time `json:"revokedAt,omitempty"`
}
