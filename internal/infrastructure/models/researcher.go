package models

import (
	"time"

	"github.com/google/uuid"
)

type Researcher struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()"`
	WalletAddress string    `gorm:"type:varchar(255);uniqueIndex;not null"`
	EnsName       *string   `gorm:"type:varchar(255)"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

type Participant struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()"`
	WalletAddress string    `gorm:"type:varchar(255);uniqueIndex;not null"`
	CreatedAt     time.Time
}

type Profile struct {
	WalletAddress string  `gorm:"type:varchar(255);primaryKey"`
	DisplayName   string  `gorm:"type:varchar(255);not null"`
	LinkedinURL   *string `gorm:"column:linkedin_url;type:varchar(500)"`
	UpdatedAt     time.Time
}
