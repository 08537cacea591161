package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Study struct {
	ID              uuid.UUID       `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()"`
	ResearcherID    uuid.UUID       `gorm:"type:uuid;not null;index"`
	Title           string          `gorm:"type:varchar(255);not null"`
	IpfsCid         *string         `gorm:"column:ipfs_cid;type:varchar(255)"`
	RewardAmount    decimal.Decimal `gorm:"type:decimal(18,6);not null"`
	MaxParticipants int             `gorm:"not null"`
	Status          string          `gorm:"type:varchar(20);not null;default:'open';index"`
	YellowSessionID *string         `gorm:"column:yellow_session_id;type:varchar(255)"`
	FundedAmount    *decimal.Decimal `gorm:"type:decimal(18,6)"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

type Enrollment struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()"`
	StudyID       uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_enrollments_study_participant;constraint:OnDelete:CASCADE"`
	ParticipantID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_enrollments_study_participant"`
	Status        string    `gorm:"type:varchar(20);not null;default:'joined';index"`
	JoinedAt      time.Time
	CompletedAt   *time.Time
	PayoutTxHash  *string `gorm:"type:varchar(255)"`
}
