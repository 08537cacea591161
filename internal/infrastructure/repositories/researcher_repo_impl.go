package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"research-fi.backend/internal/domain/entities"
	domainerrors "research-fi.backend/internal/domain/errors"
	"research-fi.backend/internal/infrastructure/models"
)

// ResearcherRepository implements researcher data operations
type ResearcherRepository struct {
	db *gorm.DB
}

// NewResearcherRepository creates a new researcher repository
func NewResearcherRepository(db *gorm.DB) *ResearcherRepository {
	return &ResearcherRepository{db: db}
}

// Upsert creates or refreshes the researcher row keyed by wallet address.
// The ENS name is overwritten with whatever the caller resolved, including
// null when resolution came back empty.
func (r *ResearcherRepository) Upsert(ctx context.Context, wallet string, ensName null.String) (*entities.Researcher, error) {
	now := time.Now()
	m := &models.Researcher{
		ID:            uuid.New(),
		WalletAddress: wallet,
		EnsName:       ensName.Ptr(),
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "wallet_address"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"ens_name":   ensName.Ptr(),
			"updated_at": now,
		}),
	}).Create(m).Error
	if err != nil {
		return nil, err
	}

	// Re-read: on conflict the insert id is not the persisted one.
	return r.GetByWallet(ctx, wallet)
}

// GetByWallet gets a researcher by wallet address
func (r *ResearcherRepository) GetByWallet(ctx context.Context, wallet string) (*entities.Researcher, error) {
	var m models.Researcher
	if err := r.db.WithContext(ctx).Where("wallet_address = ?", wallet).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return r.toEntity(&m), nil
}

// GetByIDs gets researchers by id set (for the listing join)
func (r *ResearcherRepository) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]*entities.Researcher, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var ms []models.Researcher
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&ms).Error; err != nil {
		return nil, err
	}
	researchers := make([]*entities.Researcher, 0, len(ms))
	for i := range ms {
		researchers = append(researchers, r.toEntity(&ms[i]))
	}
	return researchers, nil
}

// Count returns the number of researchers
func (r *ResearcherRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Researcher{}).Count(&count).Error
	return count, err
}

func (r *ResearcherRepository) toEntity(m *models.Researcher) *entities.Researcher {
	return &entities.Researcher{
		ID:            m.ID,
		WalletAddress: m.WalletAddress,
		EnsName:       null.StringFromPtr(m.EnsName),
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
}
