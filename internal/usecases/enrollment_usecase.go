package usecases

import (
	"context"
	"time"

	"github.com/google/uuid"

	"research-fi.backend/internal/domain/entities"
	domainerrors "research-fi.backend/internal/domain/errors"
	"research-fi.backend/internal/domain/repositories"
	"research-fi.backend/pkg/utils"
)

// studyLister is the slice of StudyUsecase the enrollment flow needs.
type studyLister interface {
	List(ctx context.Context) ([]*entities.ResearchStudy, error)
}

// EnrollmentUsecase handles participant enrollment business logic
type EnrollmentUsecase struct {
	enrollmentRepo  repositories.EnrollmentRepository
	participantRepo repositories.ParticipantRepository
	studyRepo       repositories.StudyRepository
	researcherRepo  repositories.ResearcherRepository
	studies         studyLister
}

// NewEnrollmentUsecase creates a new enrollment usecase
func NewEnrollmentUsecase(
	enrollmentRepo repositories.EnrollmentRepository,
	participantRepo repositories.ParticipantRepository,
	studyRepo repositories.StudyRepository,
	researcherRepo repositories.ResearcherRepository,
	studies studyLister,
) *EnrollmentUsecase {
	return &EnrollmentUsecase{
		enrollmentRepo:  enrollmentRepo,
		participantRepo: participantRepo,
		studyRepo:       studyRepo,
		researcherRepo:  researcherRepo,
		studies:         studies,
	}
}

// EnsureParticipant returns the wallet's participant identity, creating it on
// first sight. Safe to race: a concurrent create is absorbed by re-reading.
func (u *EnrollmentUsecase) EnsureParticipant(ctx context.Context, wallet string) (*entities.Participant, error) {
	if wallet == "" {
		return nil, domainerrors.ErrInvalidInput
	}

	participant, err := u.participantRepo.GetByWallet(ctx, wallet)
	if err == nil {
		return participant, nil
	}
	if err != domainerrors.ErrNotFound {
		return nil, err
	}

	participant = &entities.Participant{
		ID:            utils.GenerateUUIDv7(),
		WalletAddress: wallet,
	}
	if err := u.participantRepo.Create(ctx, participant); err != nil {
		if err == domainerrors.ErrAlreadyExists {
			return u.participantRepo.GetByWallet(ctx, wallet)
		}
		return nil, err
	}
	return participant, nil
}

// Join enrolls the wallet into a study. The study must be open and not yet at
// capacity; a second join of the same study returns ErrAlreadyEnrolled.
func (u *EnrollmentUsecase) Join(ctx context.Context, wallet string, studyID uuid.UUID) (*entities.Enrollment, error) {
	study, err := u.studyRepo.GetByID(ctx, studyID)
	if err != nil {
		return nil, err
	}
	if study.Status != entities.StudyStatusOpen {
		return nil, domainerrors.Conflict("study is not open for enrollment", nil)
	}

	counts, err := u.enrollmentRepo.CountByStudy(ctx)
	if err != nil {
		return nil, err
	}
	if study.MaxParticipants > 0 && counts[studyID] >= study.MaxParticipants {
		return nil, domainerrors.Conflict("study is full", nil)
	}

	participant, err := u.EnsureParticipant(ctx, wallet)
	if err != nil {
		return nil, err
	}

	enrollment := &entities.Enrollment{
		ID:            utils.GenerateUUIDv7(),
		StudyID:       studyID,
		ParticipantID: participant.ID,
		Status:        entities.EnrollmentStatusJoined,
		JoinedAt:      time.Now(),
	}
	if err := u.enrollmentRepo.Create(ctx, enrollment); err != nil {
		return nil, err
	}
	return enrollment, nil
}

// ListForParticipant returns the wallet's enrollments joined against the
// enriched study listing, newest first. Enrollments whose study has since
// been deleted are dropped rather than rendered half-empty.
func (u *EnrollmentUsecase) ListForParticipant(ctx context.Context, wallet string) ([]*entities.EnrollmentWithStudy, error) {
	participant, err := u.participantRepo.GetByWallet(ctx, wallet)
	if err != nil {
		if err == domainerrors.ErrNotFound {
			return []*entities.EnrollmentWithStudy{}, nil
		}
		return nil, err
	}

	enrollments, err := u.enrollmentRepo.ListByParticipant(ctx, participant.ID)
	if err != nil {
		return nil, err
	}
	if len(enrollments) == 0 {
		return []*entities.EnrollmentWithStudy{}, nil
	}

	listings, err := u.studies.List(ctx)
	if err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]*entities.ResearchStudy, len(listings))
	for _, s := range listings {
		byID[s.ID] = s
	}

	result := make([]*entities.EnrollmentWithStudy, 0, len(enrollments))
	for _, e := range enrollments {
		study, ok := byID[e.StudyID]
		if !ok {
			continue
		}
		result = append(result, &entities.EnrollmentWithStudy{
			EnrollmentID: e.ID,
			StudyID:      e.StudyID,
			Status:       e.Status,
			JoinedAt:     e.JoinedAt,
			CompletedAt:  e.CompletedAt,
			PayoutTxHash: e.PayoutTxHash,
			Study:        study,
		})
	}
	return result, nil
}

// MarkCompleted transitions an enrollment from joined to completed. Only the
// researcher owning the enrollment's study may do it.
func (u *EnrollmentUsecase) MarkCompleted(ctx context.Context, researcherWallet string, enrollmentID uuid.UUID) (*entities.Enrollment, error) {
	enrollment, err := u.enrollmentRepo.GetByID(ctx, enrollmentID)
	if err != nil {
		return nil, err
	}
	if err := u.requireStudyOwner(ctx, researcherWallet, enrollment.StudyID); err != nil {
		return nil, err
	}

	if err := u.enrollmentRepo.MarkCompleted(ctx, enrollmentID); err != nil {
		if err == domainerrors.ErrNotFound {
			// row exists, so the guard failed on status
			return nil, domainerrors.Conflict("enrollment is not in joined status", nil)
		}
		return nil, err
	}
	return u.enrollmentRepo.GetByID(ctx, enrollmentID)
}

// Roster returns a study's enrollments for its owning researcher, each row
// annotated with the flat per-participant reward.
func (u *EnrollmentUsecase) Roster(ctx context.Context, researcherWallet string, studyID uuid.UUID) ([]*entities.StudyEnrollmentRow, error) {
	study, err := u.studyRepo.GetByID(ctx, studyID)
	if err != nil {
		return nil, err
	}
	researcher, err := u.researcherRepo.GetByWallet(ctx, researcherWallet)
	if err != nil {
		if err == domainerrors.ErrNotFound {
			return nil, domainerrors.ErrForbidden
		}
		return nil, err
	}
	if study.ResearcherID != researcher.ID {
		return nil, domainerrors.ErrForbidden
	}

	enrollments, err := u.enrollmentRepo.ListByStudy(ctx, studyID)
	if err != nil {
		return nil, err
	}
	if len(enrollments) == 0 {
		return []*entities.StudyEnrollmentRow{}, nil
	}

	ids := make([]uuid.UUID, 0, len(enrollments))
	for _, e := range enrollments {
		ids = append(ids, e.ParticipantID)
	}
	participants, err := u.participantRepo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	wallets := make(map[uuid.UUID]string, len(participants))
	for _, p := range participants {
		wallets[p.ID] = p.WalletAddress
	}

	rows := make([]*entities.StudyEnrollmentRow, 0, len(enrollments))
	for _, e := range enrollments {
		rows = append(rows, &entities.StudyEnrollmentRow{
			EnrollmentID:      e.ID,
			ParticipantWallet: wallets[e.ParticipantID],
			Amount:            study.RewardAmount,
			Status:            e.Status,
		})
	}
	return rows, nil
}

func (u *EnrollmentUsecase) requireStudyOwner(ctx context.Context, wallet string, studyID uuid.UUID) error {
	study, err := u.studyRepo.GetByID(ctx, studyID)
	if err != nil {
		return err
	}
	researcher, err := u.researcherRepo.GetByWallet(ctx, wallet)
	if err != nil {
		if err == domainerrors.ErrNotFound {
			return domainerrors.ErrForbidden
		}
		return err
	}
	if study.ResearcherID != researcher.ID {
		return domainerrors.ErrForbidden
	}
	return nil
}
