package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/volatiletech/null/v8"
	"gorm.io/gorm"
	"research-fi.backend/internal/domain/entities"
	domainerrors "research-fi.backend/internal/domain/errors"
	domainrepos "research-fi.backend/internal/domain/repositories"
	"research-fi.backend/internal/infrastructure/models"
)

// StudyRepository implements study data operations
type StudyRepository struct {
	db *gorm.DB
}

// NewStudyRepository creates a new study repository
func NewStudyRepository(db *gorm.DB) *StudyRepository {
	return &StudyRepository{db: db}
}

// Create creates a new study
func (r *StudyRepository) Create(ctx context.Context, study *entities.Study) error {
	if study.ID == uuid.Nil {
		study.ID = uuid.New()
	}
	now := time.Now()
	if study.CreatedAt.IsZero() {
		study.CreatedAt = now
	}
	study.UpdatedAt = now

	m := &models.Study{
		ID:              study.ID,
		ResearcherID:    study.ResearcherID,
		Title:           study.Title,
		IpfsCid:         study.IpfsCID.Ptr(),
		RewardAmount:    study.RewardAmount,
		MaxParticipants: study.MaxParticipants,
		Status:          string(study.Status),
		YellowSessionID: study.YellowSessionID.Ptr(),
		CreatedAt:       study.CreatedAt,
		UpdatedAt:       study.UpdatedAt,
	}
	if study.FundedAmount.Valid {
		m.FundedAmount = &study.FundedAmount.Decimal
	}
	return r.db.WithContext(ctx).Create(m).Error
}

// GetByID gets a study by ID
func (r *StudyRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.Study, error) {
	var m models.Study
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return r.toEntity(&m), nil
}

// List returns all studies ordered newest first
func (r *StudyRepository) List(ctx context.Context) ([]*entities.Study, error) {
	var ms []models.Study
	if err := r.db.WithContext(ctx).Order("created_at DESC").Find(&ms).Error; err != nil {
		return nil, err
	}
	studies := make([]*entities.Study, 0, len(ms))
	for i := range ms {
		studies = append(studies, r.toEntity(&ms[i]))
	}
	return studies, nil
}

// ListByStatus returns studies in the given lifecycle status, newest first
func (r *StudyRepository) ListByStatus(ctx context.Context, status entities.StudyStatus) ([]*entities.Study, error) {
	var ms []models.Study
	if err := r.db.WithContext(ctx).
		Where("status = ?", string(status)).
		Order("created_at DESC").
		Find(&ms).Error; err != nil {
		return nil, err
	}
	studies := make([]*entities.Study, 0, len(ms))
	for i := range ms {
		studies = append(studies, r.toEntity(&ms[i]))
	}
	return studies, nil
}

// Update applies a partial update gated on the owning researcher id.
// A non-owner's update matches zero rows and returns ErrNotFound.
func (r *StudyRepository) Update(ctx context.Context, id, researcherID uuid.UUID, changes domainrepos.StudyUpdate) error {
	payload := map[string]interface{}{
		"updated_at": time.Now(),
	}
	if changes.Title != nil {
		payload["title"] = *changes.Title
	}
	if changes.RewardAmount != nil {
		payload["reward_amount"] = *changes.RewardAmount
	}
	if changes.MaxParticipants != nil {
		payload["max_participants"] = *changes.MaxParticipants
	}
	if changes.Status != nil {
		payload["status"] = string(*changes.Status)
	}
	if changes.IpfsCID != nil {
		payload["ipfs_cid"] = *changes.IpfsCID
	}

	result := r.db.WithContext(ctx).Model(&models.Study{}).
		Where("id = ? AND researcher_id = ?", id, researcherID).
		Updates(payload)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrNotFound
	}
	return nil
}

// UpdateStatus sets the lifecycle status without an ownership gate
func (r *StudyRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status entities.StudyStatus) error {
	result := r.db.WithContext(ctx).Model(&models.Study{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":     string(status),
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrNotFound
	}
	return nil
}

// Delete removes a study gated on the owning researcher id. Enrollments go
// with it: by FK cascade on postgres, explicitly here for drivers without it.
func (r *StudyRepository) Delete(ctx context.Context, id, researcherID uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Where("id = ? AND researcher_id = ?", id, researcherID).Delete(&models.Study{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return domainerrors.ErrNotFound
		}
		return tx.Where("study_id = ?", id).Delete(&models.Enrollment{}).Error
	})
}

// SetFunding stamps the funding session id and funded amount, gated on the
// owning researcher and on the study being unfunded. Funding is one-shot.
func (r *StudyRepository) SetFunding(ctx context.Context, id, researcherID uuid.UUID, sessionID string, amount decimal.Decimal) error {
	result := r.db.WithContext(ctx).Model(&models.Study{}).
		Where("id = ? AND researcher_id = ? AND yellow_session_id IS NULL", id, researcherID).
		Updates(map[string]interface{}{
			"yellow_session_id": sessionID,
			"funded_amount":     amount,
			"updated_at":        time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		// Tell "already funded" apart from "not yours or gone".
		var count int64
		if err := r.db.WithContext(ctx).Model(&models.Study{}).
			Where("id = ? AND researcher_id = ?", id, researcherID).
			Count(&count).Error; err == nil && count > 0 {
			return domainerrors.ErrAlreadyFunded
		}
		return domainerrors.ErrNotFound
	}
	return nil
}

// Count returns the number of studies
func (r *StudyRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Study{}).Count(&count).Error
	return count, err
}

func (r *StudyRepository) toEntity(m *models.Study) *entities.Study {
	e := &entities.Study{
		ID:              m.ID,
		ResearcherID:    m.ResearcherID,
		Title:           m.Title,
		IpfsCID:         null.StringFromPtr(m.IpfsCid),
		RewardAmount:    m.RewardAmount,
		MaxParticipants: m.MaxParticipants,
		Status:          entities.StudyStatus(m.Status),
		YellowSessionID: null.StringFromPtr(m.YellowSessionID),
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
	}
	if m.FundedAmount != nil {
		e.FundedAmount = decimal.NewNullDecimal(*m.FundedAmount)
	}
	return e
}
