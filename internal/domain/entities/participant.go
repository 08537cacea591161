package entities

import (
	"time"

	"github.com/google/uuid"
)

// Participant is the study-subject identity, keyed by wallet address.
// Created on first wallet connect in participant mode or on first study join.
type Participant struct {
	ID            uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:uuid_generate_v4()"`
	WalletAddress string    `json:"walletAddress"`
	CreatedAt     time.Time `json:"createdAt"`
}
