package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"research-fi.backend/internal/domain/entities"
	domainerrors "research-fi.backend/internal/domain/errors"
	"research-fi.backend/internal/infrastructure/models"
)

// ParticipantRepository implements participant data operations
type ParticipantRepository struct {
	db *gorm.DB
}

// NewParticipantRepository creates a new participant repository
func NewParticipantRepository(db *gorm.DB) *ParticipantRepository {
	return &ParticipantRepository{db: db}
}

// Create creates a new participant
func (r *ParticipantRepository) Create(ctx context.Context, participant *entities.Participant) error {
	if participant.ID == uuid.Nil {
		participant.ID = uuid.New()
	}
	if participant.CreatedAt.IsZero() {
		participant.CreatedAt = time.Now()
	}
	m := &models.Participant{
		ID:            participant.ID,
		WalletAddress: participant.WalletAddress,
		CreatedAt:     participant.CreatedAt,
	}
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		if isUniqueViolation(err) {
			return domainerrors.ErrAlreadyExists
		}
		return err
	}
	return nil
}

// GetByWallet gets a participant by wallet address
func (r *ParticipantRepository) GetByWallet(ctx context.Context, wallet string) (*entities.Participant, error) {
	var m models.Participant
	if err := r.db.WithContext(ctx).Where("wallet_address = ?", wallet).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return &entities.Participant{ID: m.ID, WalletAddress: m.WalletAddress, CreatedAt: m.CreatedAt}, nil
}

// GetByIDs gets participants by id set (for the roster join)
func (r *ParticipantRepository) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]*entities.Participant, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var ms []models.Participant
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&ms).Error; err != nil {
		return nil, err
	}
	participants := make([]*entities.Participant, 0, len(ms))
	for _, m := range ms {
		participants = append(participants, &entities.Participant{ID: m.ID, WalletAddress: m.WalletAddress, CreatedAt: m.CreatedAt})
	}
	return participants, nil
}

// Count returns the number of participants
func (r *ParticipantRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Participant{}).Count(&count).Error
	return count, err
}
