package entities

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/volatiletech/null/v8"
)

// EnrollmentStatus is a forward-only sequence: joined → completed → paid.
type EnrollmentStatus string

const (
	EnrollmentStatusJoined    EnrollmentStatus = "joined"
	EnrollmentStatusCompleted EnrollmentStatus = "completed"
	EnrollmentStatusPaid      EnrollmentStatus = "paid"
)

// Enrollment links one participant to one study, unique per pair.
type Enrollment struct {
	ID            uuid.UUID        `json:"id" gorm:"type:uuid;primary_key;default:uuid_generate_v4()"`
	StudyID       uuid.UUID        `json:"studyId"`
	ParticipantID uuid.UUID        `json:"participantId"`
	Status        EnrollmentStatus `json:"status"`
	JoinedAt      time.Time        `json:"joinedAt"`
	CompletedAt   null.Time        `json:"completedAt,omitempty"`
	PayoutTxHash  null.String      `json:"payoutTxHash,omitempty"`
}

// EnrollmentWithStudy is the participant-dashboard view: an enrollment joined
// against the enriched study listing.
type EnrollmentWithStudy struct {
	EnrollmentID uuid.UUID        `json:"enrollmentId"`
	StudyID      uuid.UUID        `json:"studyId"`
	Status       EnrollmentStatus `json:"status"`
	JoinedAt     time.Time        `json:"joinedAt"`
	CompletedAt  null.Time        `json:"completedAt,omitempty"`
	PayoutTxHash null.String      `json:"payoutTxHash,omitempty"`
	Study        *ResearchStudy   `json:"study"`
}

// StudyEnrollmentRow is the researcher-facing roster entry, annotated with the
// flat per-participant reward (not cumulative).
type StudyEnrollmentRow struct {
	EnrollmentID      uuid.UUID        `json:"enrollmentId"`
	ParticipantWallet string           `json:"participantWallet"`
	Amount            decimal.Decimal  `json:"amount"`
	Status            EnrollmentStatus `json:"status"`
}
