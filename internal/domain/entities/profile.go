package entities

import (
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
)

// Profile is the 1:1 optional extension of a wallet address. A wallet is
// profile-complete iff a non-empty display name exists; that gates applying
// to a study and creating one.
type Profile struct {
	WalletAddress string      `json:"walletAddress" gorm:"primary_key"`
	DisplayName   string      `json:"displayName"`
	LinkedInURL   null.String `json:"linkedInUrl,omitempty"`
	UpdatedAt     time.Time   `json:"updatedAt"`
}

// Complete reports whether the profile satisfies the minimal-profile gate.
func (p *Profile) Complete() bool {
	return p != nil && p.DisplayName != ""
}

// SetProfileInput represents input for creating or updating a profile
type SetProfileInput struct {
	DisplayName string `json:"displayName" binding:"required"`
	LinkedInURL string `json:"linkedInUrl"`
}

// PendingActionType tags the action captured when the minimal-profile gate
// blocks a wallet.
type PendingActionType string

const (
	PendingActionApplyStudy  PendingActionType = "APPLY_STUDY"
	PendingActionCreateStudy PendingActionType = "CREATE_STUDY"
)

// PendingAction is the captured continuation: either the study being applied
// to, or nothing for create-study. It is consumed and cleared exactly once
// when the wallet's profile save succeeds.
type PendingAction struct {
	Type    PendingActionType `json:"type"`
	StudyID *uuid.UUID        `json:"studyId,omitempty"`
}
