package usecases

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"research-fi.backend/internal/domain/entities"
	domainerrors "research-fi.backend/internal/domain/errors"
	"research-fi.backend/internal/domain/repositories"
	"research-fi.backend/internal/infrastructure/payments"
	"research-fi.backend/pkg/logger"
)

// FundingUsecase composes the study repo, the payment-session ledger and the
// enrollment repo into the fund → credit → settle flow.
type FundingUsecase struct {
	studyRepo      repositories.StudyRepository
	researcherRepo repositories.ResearcherRepository
	enrollmentRepo repositories.EnrollmentRepository
	sessions       payments.SessionStore
}

// NewFundingUsecase creates a new funding usecase
func NewFundingUsecase(
	studyRepo repositories.StudyRepository,
	researcherRepo repositories.ResearcherRepository,
	enrollmentRepo repositories.EnrollmentRepository,
	sessions payments.SessionStore,
) *FundingUsecase {
	return &FundingUsecase{
		studyRepo:      studyRepo,
		researcherRepo: researcherRepo,
		enrollmentRepo: enrollmentRepo,
		sessions:       sessions,
	}
}

// FundStudy locks the study's full budget (reward × max participants) in a
// payment session and stamps the session onto the study. Funding is one-shot;
// a funded study cannot be funded again. The amount is validated server-side
// against the budget, never trusted from the client.
func (u *FundingUsecase) FundStudy(ctx context.Context, wallet string, studyID uuid.UUID, amount decimal.Decimal) (*entities.Study, error) {
	study, researcher, err := u.ownedStudy(ctx, wallet, studyID)
	if err != nil {
		return nil, err
	}
	if study.Funded() {
		return nil, domainerrors.ErrAlreadyFunded
	}
	if !amount.Equal(study.TotalBudget()) {
		return nil, domainerrors.BadRequest("amount must equal rewardAmount × maxParticipants")
	}

	sessionID, err := u.sessions.Create(ctx, studyID, wallet, amount)
	if err != nil {
		return nil, err
	}

	// Stamp after the ledger session exists; a stamp failure leaves the
	// study unfunded and the orphan session unreferenced.
	if err := u.studyRepo.SetFunding(ctx, studyID, researcher.ID, sessionID, amount); err != nil {
		logger.Warn(ctx, "funding stamp failed, session orphaned",
			zap.String("study_id", studyID.String()),
			zap.String("session_id", sessionID),
			zap.Error(err))
		return nil, err
	}
	return u.studyRepo.GetByID(ctx, studyID)
}

// CreditParticipant moves one reward from the study's locked balance to the
// participant's ledger entry. A zero amount defaults to the study's reward.
func (u *FundingUsecase) CreditParticipant(ctx context.Context, wallet string, studyID uuid.UUID, participantWallet string, amount decimal.Decimal) (*entities.PaymentSession, error) {
	study, _, err := u.ownedStudy(ctx, wallet, studyID)
	if err != nil {
		return nil, err
	}
	if !study.Funded() {
		return nil, domainerrors.ErrNotFunded
	}
	if participantWallet == "" {
		return nil, domainerrors.BadRequest("participant wallet is required")
	}
	if amount.IsZero() {
		amount = study.RewardAmount
	}

	if err := u.sessions.Credit(ctx, study.YellowSessionID.String, participantWallet, amount); err != nil {
		return nil, err
	}
	return u.sessions.Balances(ctx, study.YellowSessionID.String)
}

// SessionBalances returns the study's ledger state for its owning researcher.
func (u *FundingUsecase) SessionBalances(ctx context.Context, wallet string, studyID uuid.UUID) (*entities.PaymentSession, error) {
	study, _, err := u.ownedStudy(ctx, wallet, studyID)
	if err != nil {
		return nil, err
	}
	if !study.Funded() {
		return nil, domainerrors.ErrNotFunded
	}
	return u.sessions.Balances(ctx, study.YellowSessionID.String)
}

// Settle closes the study's payment session, pays out every completed
// enrollment with the settlement tx hash, and closes the study. A second
// settle fails with ErrSessionSettled.
func (u *FundingUsecase) Settle(ctx context.Context, wallet string, studyID uuid.UUID) (*entities.SettlementResult, error) {
	study, _, err := u.ownedStudy(ctx, wallet, studyID)
	if err != nil {
		return nil, err
	}
	if !study.Funded() {
		return nil, domainerrors.ErrNotFunded
	}

	txHash, err := u.sessions.Settle(ctx, study.YellowSessionID.String)
	if err != nil {
		return nil, err
	}

	paid, err := u.enrollmentRepo.MarkPaidForStudy(ctx, studyID, txHash)
	if err != nil {
		return nil, err
	}

	if err := u.studyRepo.UpdateStatus(ctx, studyID, entities.StudyStatusClosed); err != nil {
		// payouts already recorded; the capacity job or a manual close can
		// still flip the status
		logger.Warn(ctx, "study close after settle failed",
			zap.String("study_id", studyID.String()), zap.Error(err))
	}

	return &entities.SettlementResult{
		StudyID:          studyID,
		TxHash:           txHash,
		ParticipantsPaid: paid,
	}, nil
}

// ownedStudy loads the study and verifies the wallet's researcher identity
// owns it.
func (u *FundingUsecase) ownedStudy(ctx context.Context, wallet string, studyID uuid.UUID) (*entities.Study, *entities.Researcher, error) {
	study, err := u.studyRepo.GetByID(ctx, studyID)
	if err != nil {
		return nil, nil, err
	}
	researcher, err := u.researcherRepo.GetByWallet(ctx, wallet)
	if err != nil {
		if err == domainerrors.ErrNotFound {
			return nil, nil, domainerrors.ErrForbidden
		}
		return nil, nil, err
	}
	if study.ResearcherID != researcher.ID {
		return nil, nil, domainerrors.ErrForbidden
	}
	return study, researcher, nil
}
