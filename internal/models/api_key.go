package models

import (
	"time"

	"gorm.io/gorm"
)

// APIKey lets scripts call the admin API on behalf of a user. Only the
// SHA-256 of the key is stored; Suffix is kept for display.
type APIKey struct {
	gorm.Model
	UserID     uint       `json:"user_id" gorm:"index"`
	KeyHash    string     `json:"-" gorm:"uniqueIndex"`
	Suffix     string     `json:"suffix"`
	Name       string     `json:"name"`
	ExpiresAt  *time.Time `json:"expires_at"`
	LastUsedAt *time.Time `json:"last_used_at"`
}

func (k APIKey) Expired(now time.Time) bool {
	return k.ExpiresAt != nil && now.After(*k.ExpiresAt)
}
