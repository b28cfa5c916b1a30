package store

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/igreja-retiro/retiro-api/internal/models"
)

type GormStore struct {
	db *gorm.DB
}

var _ Store = (*GormStore)(nil)

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func notFound(err error, msg string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return errors.Wrap(err, msg)
}

// Churches

func (s *GormStore) ListChurches(ctx context.Context) ([]models.Church, error) {
	var churches []models.Church
	if err := s.db.WithContext(ctx).Order("name asc").Find(&churches).Error; err != nil {
		return nil, errors.Wrap(err, "list churches")
	}
	return churches, nil
}

func (s *GormStore) GetChurch(ctx context.Context, id uint) (models.Church, error) {
	var church models.Church
	if err := s.db.WithContext(ctx).First(&church, id).Error; err != nil {
		return models.Church{}, notFound(err, "get church")
	}
	return church, nil
}

func (s *GormStore) CreateChurch(ctx context.Context, church *models.Church) error {
	return errors.Wrap(s.db.WithContext(ctx).Create(church).Error, "create church")
}

func (s *GormStore) UpdateChurch(ctx context.Context, id uint, patch ChurchPatch) (models.Church, error) {
	var church models.Church
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&church, id).Error; err != nil {
			return err
		}
		if patch.Name != nil {
			church.Name = *patch.Name
		}
		if patch.Spots != nil {
			church.Spots = *patch.Spots
		}
		return tx.Save(&church).Error
	})
	if err != nil {
		return models.Church{}, notFound(err, "update church")
	}
	return church, nil
}

// DeleteChurch leaves the church's registrants in place.
func (s *GormStore) DeleteChurch(ctx context.Context, id uint) error {
	res := s.db.WithContext(ctx).Delete(&models.Church{}, id)
	if res.Error != nil {
		return errors.Wrap(res.Error, "delete church")
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Registrants

func (s *GormStore) InsertRegistrants(ctx context.Context, rows []models.Registrant) error {
	if len(rows) == 0 {
		return nil
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(&rows).Error
	})
	return errors.Wrap(err, "insert registrants")
}

func (s *GormStore) ListRegistrants(ctx context.Context, filter RegistrantFilter) ([]models.Registrant, error) {
	q := s.db.WithContext(ctx).Order("created_at asc, id asc")
	if filter.ChurchID != 0 {
		q = q.Where("church_id = ?", filter.ChurchID)
	}
	if filter.PaymentStatus != "" {
		q = q.Where("payment_status = ?", filter.PaymentStatus)
	}

	var registrants []models.Registrant
	if err := q.Find(&registrants).Error; err != nil {
		return nil, errors.Wrap(err, "list registrants")
	}
	return registrants, nil
}

func (s *GormStore) GetRegistrant(ctx context.Context, id uint) (models.Registrant, error) {
	var registrant models.Registrant
	if err := s.db.WithContext(ctx).First(&registrant, id).Error; err != nil {
		return models.Registrant{}, notFound(err, "get registrant")
	}
	return registrant, nil
}

func (s *GormStore) UpdateRegistrant(ctx context.Context, id uint, patch RegistrantPatch) (models.Registrant, error) {
	var registrant models.Registrant
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&registrant, id).Error; err != nil {
			return err
		}

		if patch.FullName != nil {
			registrant.FullName = *patch.FullName
		}
		if patch.Phone != nil {
			registrant.Phone = *patch.Phone
		}
		if patch.ChurchID != nil {
			registrant.ChurchID = *patch.ChurchID
		}
		if patch.PaymentStatus != nil {
			registrant.PaymentStatus = *patch.PaymentStatus
		}

		if err := tx.Save(&registrant).Error; err != nil {
			return err
		}

		// Save history snapshot
		history := models.RegistrantHistory{
			RegistrantID:     registrant.ID,
			RegistrantFields: registrant.RegistrantFields,
		}
		return tx.Create(&history).Error
	})
	if err != nil {
		return models.Registrant{}, notFound(err, "update registrant")
	}
	return registrant, nil
}

func (s *GormStore) DeleteRegistrant(ctx context.Context, id uint) error {
	res := s.db.WithContext(ctx).Delete(&models.Registrant{}, id)
	if res.Error != nil {
		return errors.Wrap(res.Error, "delete registrant")
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// RegistrantHistory returns snapshots newest first.
func (s *GormStore) RegistrantHistory(ctx context.Context, id uint) ([]models.RegistrantHistory, error) {
	var history []models.RegistrantHistory
	err := s.db.WithContext(ctx).
		Where("registrant_id = ?", id).
		Order("created_at desc, id desc").
		Find(&history).Error
	if err != nil {
		return nil, errors.Wrap(err, "list registrant history")
	}
	return history, nil
}

func (s *GormStore) Stats(ctx context.Context) (Stats, error) {
	var stats Stats
	db := s.db.WithContext(ctx)

	if err := db.Model(&models.Registrant{}).Count(&stats.Registrants).Error; err != nil {
		return Stats{}, errors.Wrap(err, "count registrants")
	}
	if err := db.Model(&models.Registrant{}).Where("payment_status = ?", models.PaymentStatusPaid).Count(&stats.Paid).Error; err != nil {
		return Stats{}, errors.Wrap(err, "count paid registrants")
	}
	if err := db.Model(&models.Registrant{}).Where("payment_status = ?", models.PaymentStatusPending).Count(&stats.Pending).Error; err != nil {
		return Stats{}, errors.Wrap(err, "count pending registrants")
	}
	if err := db.Model(&models.Church{}).Count(&stats.Churches).Error; err != nil {
		return Stats{}, errors.Wrap(err, "count churches")
	}

	err := db.Model(&models.Church{}).
		Select("churches.id AS church_id, churches.name AS name, COUNT(registrants.id) AS registrations").
		Joins("LEFT JOIN registrants ON registrants.church_id = churches.id AND registrants.deleted_at IS NULL").
		Group("churches.id, churches.name").
		Order("churches.name asc").
		Scan(&stats.PerChurch).Error
	if err != nil {
		return Stats{}, errors.Wrap(err, "count registrants per church")
	}

	return stats, nil
}

// Users

func (s *GormStore) UpsertUser(ctx context.Context, user *models.User) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.User
		if err := tx.FirstOrInit(&existing, models.User{DiscordID: user.DiscordID}).Error; err != nil {
			return err
		}
		existing.Username = user.Username
		existing.Email = user.Email
		existing.Avatar = user.Avatar
		existing.IsAdmin = existing.IsAdmin || user.IsAdmin

		if err := tx.Save(&existing).Error; err != nil {
			return err
		}
		*user = existing
		return nil
	})
	return errors.Wrap(err, "upsert user")
}

func (s *GormStore) GetUser(ctx context.Context, id uint) (models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return models.User{}, notFound(err, "get user")
	}
	return user, nil
}

func (s *GormStore) SetAdmin(ctx context.Context, discordID string, admin bool) error {
	res := s.db.WithContext(ctx).Model(&models.User{}).
		Where("discord_id = ?", discordID).
		Update("is_admin", admin)
	if res.Error != nil {
		return errors.Wrap(res.Error, "set admin")
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// API keys

func (s *GormStore) CreateAPIKey(ctx context.Context, key *models.APIKey) error {
	return errors.Wrap(s.db.WithContext(ctx).Create(key).Error, "create api key")
}

func (s *GormStore) FindAPIKey(ctx context.Context, keyHash string) (models.APIKey, error) {
	var key models.APIKey
	if err := s.db.WithContext(ctx).Where("key_hash = ?", keyHash).First(&key).Error; err != nil {
		return models.APIKey{}, notFound(err, "find api key")
	}
	return key, nil
}

func (s *GormStore) TouchAPIKey(ctx context.Context, id uint, at time.Time) error {
	err := s.db.WithContext(ctx).Model(&models.APIKey{}).Where("id = ?", id).Update("last_used_at", at).Error
	return errors.Wrap(err, "touch api key")
}

func (s *GormStore) ListAPIKeys(ctx context.Context, userID uint) ([]models.APIKey, error) {
	var keys []models.APIKey
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).Order("id asc").Find(&keys).Error; err != nil {
		return nil, errors.Wrap(err, "list api keys")
	}
	return keys, nil
}

func (s *GormStore) DeleteAPIKey(ctx context.Context, userID, id uint) error {
	res := s.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).Delete(&models.APIKey{})
	if res.Error != nil {
		return errors.Wrap(res.Error, "delete api key")
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
