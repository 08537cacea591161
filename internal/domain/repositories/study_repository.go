package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"research-fi.backend/internal/domain/entities"
)

// StudyUpdate carries the partial column set applied by an ownership-gated
// study update. Nil fields are not touched.
type StudyUpdate struct {
	Title           *string
	RewardAmount    *decimal.Decimal
	MaxParticipants *int
	Status          *entities.StudyStatus
	IpfsCID         *string
}

// StudyRepository defines study data operations. Update, Delete and
// SetFunding are gated on the owning researcher id; when the gate matches
// zero rows they return ErrNotFound so callers can tell "not yours or gone"
// from success.
type StudyRepository interface {
	Create(ctx context.Context, study *entities.Study) error
	GetByID(ctx context.Context, id uuid.UUID) (*entities.Study, error)
	// List returns all studies ordered newest first.
	List(ctx context.Context) ([]*entities.Study, error)
	ListByStatus(ctx context.Context, status entities.StudyStatus) ([]*entities.Study, error)
	Update(ctx context.Context, id, researcherID uuid.UUID, changes StudyUpdate) error
	// UpdateStatus is ungated; it backs the capacity job, not researcher edits.
	UpdateStatus(ctx context.Context, id uuid.UUID, status entities.StudyStatus) error
	Delete(ctx context.Context, id, researcherID uuid.UUID) error
	// SetFunding stamps the session id and funded amount. The update is
	// additionally guarded on yellow_session_id IS NULL: funding is one-shot
	// and a second attempt returns ErrAlreadyFunded.
	SetFunding(ctx context.Context, id, researcherID uuid.UUID, sessionID string, amount decimal.Decimal) error
	Count(ctx context.Context) (int64, error)
}

// EnrollmentRepository defines enrollment data operations. Conditional
// transitions (MarkCompleted) report zero matched rows as ErrNotFound.
type EnrollmentRepository interface {
	// Create inserts a joined enrollment; a duplicate (study, participant)
	// pair returns ErrAlreadyEnrolled.
	Create(ctx context.Context, enrollment *entities.Enrollment) error
	GetByID(ctx context.Context, id uuid.UUID) (*entities.Enrollment, error)
	ListByParticipant(ctx context.Context, participantID uuid.UUID) ([]*entities.Enrollment, error)
	ListByStudy(ctx context.Context, studyID uuid.UUID) ([]*entities.Enrollment, error)
	// CountByStudy returns the live enrollment count per study id.
	CountByStudy(ctx context.Context) (map[uuid.UUID]int, error)
	// MarkCompleted transitions joined → completed, stamping completed_at.
	MarkCompleted(ctx context.Context, id uuid.UUID) error
	// MarkPaidForStudy transitions every completed enrollment of the study to
	// paid with the given tx hash; joined rows are skipped. Returns the number
	// of rows paid.
	MarkPaidForStudy(ctx context.Context, studyID uuid.UUID, txHash string) (int64, error)
	Count(ctx context.Context) (int64, error)
}
