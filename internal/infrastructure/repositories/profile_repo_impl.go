package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/volatiletech/null/v8"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"research-fi.backend/internal/domain/entities"
	domainerrors "research-fi.backend/internal/domain/errors"
	"research-fi.backend/internal/infrastructure/models"
)

// ProfileRepository implements profile data operations
type ProfileRepository struct {
	db *gorm.DB
}

// NewProfileRepository creates a new profile repository
func NewProfileRepository(db *gorm.DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

// GetByWallet gets a profile by wallet address
func (r *ProfileRepository) GetByWallet(ctx context.Context, wallet string) (*entities.Profile, error) {
	var m models.Profile
	if err := r.db.WithContext(ctx).Where("wallet_address = ?", wallet).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return &entities.Profile{
		WalletAddress: m.WalletAddress,
		DisplayName:   m.DisplayName,
		LinkedInURL:   null.StringFromPtr(m.LinkedinURL),
		UpdatedAt:     m.UpdatedAt,
	}, nil
}

// Upsert creates or replaces the profile keyed by wallet address
func (r *ProfileRepository) Upsert(ctx context.Context, profile *entities.Profile) error {
	now := time.Now()
	profile.UpdatedAt = now
	m := &models.Profile{
		WalletAddress: profile.WalletAddress,
		DisplayName:   profile.DisplayName,
		LinkedinURL:   profile.LinkedInURL.Ptr(),
		UpdatedAt:     now,
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "wallet_address"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"display_name": m.DisplayName,
			"linkedin_url": m.LinkedinURL,
			"updated_at":   now,
		}),
	}).Create(m).Error
}
