// Package store is the storage collaborator: typed collections for churches,
// registrants, users and API keys, with one gorm-backed implementation.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/igreja-retiro/retiro-api/internal/models"
)

var ErrNotFound = errors.New("record not found")

type ChurchPatch struct {
	Name  *string
	Spots *int
}

type Churches interface {
	ListChurches(ctx context.Context) ([]models.Church, error)
	GetChurch(ctx context.Context, id uint) (models.Church, error)
	CreateChurch(ctx context.Context, church *models.Church) error
	UpdateChurch(ctx context.Context, id uint, patch ChurchPatch) (models.Church, error)
	DeleteChurch(ctx context.Context, id uint) error
}

type RegistrantFilter struct {
	ChurchID      uint
	PaymentStatus string
}

type RegistrantPatch struct {
	FullName      *string
	Phone         *string
	ChurchID      *uint
	PaymentStatus *string
}

type ChurchCount struct {
	ChurchID      uint   `json:"church_id"`
	Name          string `json:"name"`
	Registrations int64  `json:"registrations"`
}

type Stats struct {
	Registrants int64         `json:"registrants"`
	Paid        int64         `json:"paid"`
	Pending     int64         `json:"pending"`
	Churches    int64         `json:"churches"`
	PerChurch   []ChurchCount `json:"per_church"`
}

type Registrants interface {
	// InsertRegistrants stores the whole batch or nothing.
	InsertRegistrants(ctx context.Context, rows []models.Registrant) error
	ListRegistrants(ctx context.Context, filter RegistrantFilter) ([]models.Registrant, error)
	GetRegistrant(ctx context.Context, id uint) (models.Registrant, error)
	// UpdateRegistrant applies patch and records a history snapshot.
	UpdateRegistrant(ctx context.Context, id uint, patch RegistrantPatch) (models.Registrant, error)
	DeleteRegistrant(ctx context.Context, id uint) error
	RegistrantHistory(ctx context.Context, id uint) ([]models.RegistrantHistory, error)
	Stats(ctx context.Context) (Stats, error)
}

type Users interface {
	// UpsertUser inserts or refreshes a user keyed by DiscordID. IsAdmin is
	// only ever raised, never cleared, by an upsert.
	UpsertUser(ctx context.Context, user *models.User) error
	GetUser(ctx context.Context, id uint) (models.User, error)
	SetAdmin(ctx context.Context, discordID string, admin bool) error
}

type APIKeys interface {
	CreateAPIKey(ctx context.Context, key *models.APIKey) error
	FindAPIKey(ctx context.Context, keyHash string) (models.APIKey, error)
	TouchAPIKey(ctx context.Context, id uint, at time.Time) error
	ListAPIKeys(ctx context.Context, userID uint) ([]models.APIKey, error)
	DeleteAPIKey(ctx context.Context, userID, id uint) error
}

type Store interface {
	Churches
	Registrants
	Users
	APIKeys
}
