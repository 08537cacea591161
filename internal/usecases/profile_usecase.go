package usecases

import (
	"context"
	"strings"
	"time"

	"github.com/volatiletech/null/v8"
	"go.uber.org/zap"

	"research-fi.backend/internal/domain/entities"
	domainerrors "research-fi.backend/internal/domain/errors"
	"research-fi.backend/internal/domain/repositories"
	"research-fi.backend/pkg/logger"
)

// ProfileUsecase handles profile and profile-gate business logic
type ProfileUsecase struct {
	profileRepo repositories.ProfileRepository
	actions     PendingActionStore
}

// NewProfileUsecase creates a new profile usecase
func NewProfileUsecase(profileRepo repositories.ProfileRepository, actions PendingActionStore) *ProfileUsecase {
	return &ProfileUsecase{
		profileRepo: profileRepo,
		actions:     actions,
	}
}

// Get returns the wallet's profile, or ErrNotFound when none exists.
func (u *ProfileUsecase) Get(ctx context.Context, wallet string) (*entities.Profile, error) {
	return u.profileRepo.GetByWallet(ctx, wallet)
}

// HasMinimalProfile reports whether the wallet passes the profile gate:
// a stored profile with a non-empty display name.
func (u *ProfileUsecase) HasMinimalProfile(ctx context.Context, wallet string) (bool, error) {
	profile, err := u.profileRepo.GetByWallet(ctx, wallet)
	if err != nil {
		if err == domainerrors.ErrNotFound {
			return false, nil
		}
		return false, err
	}
	return profile.Complete(), nil
}

// Set upserts the wallet's profile and returns the pending action captured
// when the gate last blocked this wallet, if any. The action is consumed:
// a second save returns none.
func (u *ProfileUsecase) Set(ctx context.Context, wallet string, input *entities.SetProfileInput) (*entities.Profile, *entities.PendingAction, error) {
	displayName := strings.TrimSpace(input.DisplayName)
	if displayName == "" {
		return nil, nil, domainerrors.BadRequest("displayName is required")
	}

	profile := &entities.Profile{
		WalletAddress: wallet,
		DisplayName:   displayName,
		LinkedInURL:   null.NewString(input.LinkedInURL, input.LinkedInURL != ""),
		UpdatedAt:     time.Now(),
	}
	if err := u.profileRepo.Upsert(ctx, profile); err != nil {
		return nil, nil, err
	}

	action, err := u.actions.Consume(ctx, wallet)
	if err != nil {
		// the profile save already succeeded; losing the continuation is
		// the lesser failure
		logger.Warn(ctx, "pending action lookup failed", zap.String("wallet", wallet), zap.Error(err))
		return profile, nil, nil
	}
	return profile, action, nil
}

// RecordPendingAction remembers what the wallet was trying to do when the
// profile gate blocked it.
func (u *ProfileUsecase) RecordPendingAction(ctx context.Context, wallet string, action *entities.PendingAction) error {
	if action == nil {
		return domainerrors.ErrInvalidInput
	}
	if action.Type != entities.PendingActionApplyStudy && action.Type != entities.PendingActionCreateStudy {
		return domainerrors.ErrInvalidInput
	}
	if action.Type == entities.PendingActionApplyStudy && action.StudyID == nil {
		return domainerrors.ErrInvalidInput
	}
	return u.actions.Record(ctx, wallet, action)
}
