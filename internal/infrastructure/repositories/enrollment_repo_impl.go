package repositories

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
	"gorm.io/gorm"
	"research-fi.backend/internal/domain/entities"
	domainerrors "research-fi.backend/internal/domain/errors"
	"research-fi.backend/internal/infrastructure/models"
)

// EnrollmentRepository implements enrollment data operations
type EnrollmentRepository struct {
	db *gorm.DB
}

// NewEnrollmentRepository creates a new enrollment repository
func NewEnrollmentRepository(db *gorm.DB) *EnrollmentRepository {
	return &EnrollmentRepository{db: db}
}

// isUniqueViolation matches unique-constraint errors across the drivers we
// run against (postgres in production, sqlite in tests).
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "duplicate key value")
}

// Create inserts a joined enrollment. A duplicate (study, participant) pair
// is reported as ErrAlreadyEnrolled, not a generic failure.
func (r *EnrollmentRepository) Create(ctx context.Context, enrollment *entities.Enrollment) error {
	if enrollment.ID == uuid.Nil {
		enrollment.ID = uuid.New()
	}
	if enrollment.JoinedAt.IsZero() {
		enrollment.JoinedAt = time.Now()
	}
	if enrollment.Status == "" {
		enrollment.Status = entities.EnrollmentStatusJoined
	}

	m := &models.Enrollment{
		ID:            enrollment.ID,
		StudyID:       enrollment.StudyID,
		ParticipantID: enrollment.ParticipantID,
		Status:        string(enrollment.Status),
		JoinedAt:      enrollment.JoinedAt,
	}
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		if isUniqueViolation(err) {
			return domainerrors.ErrAlreadyEnrolled
		}
		return err
	}
	return nil
}

// GetByID retrieves an enrollment by ID
func (r *EnrollmentRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.Enrollment, error) {
	var m models.Enrollment
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return toEnrollmentEntities([]models.Enrollment{m})[0], nil
}

// ListByParticipant returns a participant's enrollments, newest first
func (r *EnrollmentRepository) ListByParticipant(ctx context.Context, participantID uuid.UUID) ([]*entities.Enrollment, error) {
	var ms []models.Enrollment
	if err := r.db.WithContext(ctx).
		Where("participant_id = ?", participantID).
		Order("joined_at DESC").
		Find(&ms).Error; err != nil {
		return nil, err
	}
	return toEnrollmentEntities(ms), nil
}

// ListByStudy returns a study's enrollments in join order
func (r *EnrollmentRepository) ListByStudy(ctx context.Context, studyID uuid.UUID) ([]*entities.Enrollment, error) {
	var ms []models.Enrollment
	if err := r.db.WithContext(ctx).
		Where("study_id = ?", studyID).
		Order("joined_at ASC").
		Find(&ms).Error; err != nil {
		return nil, err
	}
	return toEnrollmentEntities(ms), nil
}

// CountByStudy returns the live enrollment count grouped by study id.
// Counts are always derived, never cached.
func (r *EnrollmentRepository) CountByStudy(ctx context.Context) (map[uuid.UUID]int, error) {
	type row struct {
		StudyID uuid.UUID
		Total   int
	}
	var rows []row
	if err := r.db.WithContext(ctx).Model(&models.Enrollment{}).
		Select("study_id, COUNT(*) as total").
		Group("study_id").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	counts := make(map[uuid.UUID]int, len(rows))
	for _, rw := range rows {
		counts[rw.StudyID] = rw.Total
	}
	return counts, nil
}

// MarkCompleted transitions a joined enrollment to completed, stamping
// completed_at. The status guard makes a repeat call match zero rows, which
// is reported as ErrNotFound so callers can detect the stale state.
func (r *EnrollmentRepository) MarkCompleted(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Model(&models.Enrollment{}).
		Where("id = ? AND status = ?", id, string(entities.EnrollmentStatusJoined)).
		Updates(map[string]interface{}{
			"status":       string(entities.EnrollmentStatusCompleted),
			"completed_at": time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrNotFound
	}
	return nil
}

// MarkPaidForStudy transitions every completed enrollment of the study to
// paid with the same payout tx hash. Enrollments still joined are skipped:
// payment requires explicit completion first.
func (r *EnrollmentRepository) MarkPaidForStudy(ctx context.Context, studyID uuid.UUID, txHash string) (int64, error) {
	result := r.db.WithContext(ctx).Model(&models.Enrollment{}).
		Where("study_id = ? AND status = ?", studyID, string(entities.EnrollmentStatusCompleted)).
		Updates(map[string]interface{}{
			"status":         string(entities.EnrollmentStatusPaid),
			"payout_tx_hash": txHash,
		})
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

// Count returns the number of enrollments
func (r *EnrollmentRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Enrollment{}).Count(&count).Error
	return count, err
}

func toEnrollmentEntities(ms []models.Enrollment) []*entities.Enrollment {
	enrollments := make([]*entities.Enrollment, 0, len(ms))
	for _, m := range ms {
		e := &entities.Enrollment{
			ID:            m.ID,
			StudyID:       m.StudyID,
			ParticipantID: m.ParticipantID,
			Status:        entities.EnrollmentStatus(m.Status),
			JoinedAt:      m.JoinedAt,
			PayoutTxHash:  null.StringFromPtr(m.PayoutTxHash),
		}
		if m.CompletedAt != nil {
			e.CompletedAt = null.TimeFrom(*m.CompletedAt)
		}
		enrollments = append(enrollments, e)
	}
	return enrollments
}
