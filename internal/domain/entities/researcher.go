package entities

import (
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
)

// Researcher is the study-owner identity, keyed by wallet address.
// Created on first wallet connect in researcher mode (upsert by wallet).
type Researcher struct {
	ID            uuid.UUID   `json:"id" gorm:"type:uuid;primary_key;default:uuid_generate_v4()"`
	WalletAddress string      `json:"walletAddress"`
	EnsName       null.String `json:"ensName,omitempty"`
	CreatedAt     time.Time   `json:"createdAt"`
	UpdatedAt     time.Time   `json:"updatedAt"`
}

// DisplayName returns the ENS name when resolved, else a shortened wallet address.
func (r *Researcher) DisplayName() string {
	if r.EnsName.Valid && r.EnsName.String != "" {
		return r.EnsName.String
	}
	return ShortWallet(r.WalletAddress)
}

// ShortWallet shortens a wallet address for display (0x1234…abcd).
func ShortWallet(wallet string) string {
	if len(wallet) < 10 {
		return wallet
	}
	return wallet[:6] + "…" + wallet[len(wallet)-4:]
}
