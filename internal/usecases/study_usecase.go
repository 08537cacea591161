package usecases

import (
	"context"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
	"go.uber.org/zap"

	"research-fi.backend/internal/domain/entities"
	domainerrors "research-fi.backend/internal/domain/errors"
	"research-fi.backend/internal/domain/repositories"
	"research-fi.backend/pkg/logger"
	"research-fi.backend/pkg/utils"
)

// Listing overlay defaults used when the metadata blob is missing or
// unreadable. The listing stays renderable either way.
const (
	defaultLocation = "Remote"
	defaultCategory = entities.CategorySurveys
)

// StudyUsecase handles study lifecycle business logic
type StudyUsecase struct {
	studyRepo      repositories.StudyRepository
	researcherRepo repositories.ResearcherRepository
	enrollmentRepo repositories.EnrollmentRepository
	metadata       MetadataStore
}

// NewStudyUsecase creates a new study usecase
func NewStudyUsecase(
	studyRepo repositories.StudyRepository,
	researcherRepo repositories.ResearcherRepository,
	enrollmentRepo repositories.EnrollmentRepository,
	metadata MetadataStore,
) *StudyUsecase {
	return &StudyUsecase{
		studyRepo:      studyRepo,
		researcherRepo: researcherRepo,
		enrollmentRepo: enrollmentRepo,
		metadata:       metadata,
	}
}

// GetOrCreateResearcher upserts the researcher identity for a wallet,
// refreshing the ENS name when one is provided.
func (u *StudyUsecase) GetOrCreateResearcher(ctx context.Context, wallet, ensName string) (*entities.Researcher, error) {
	if wallet == "" {
		return nil, domainerrors.ErrInvalidInput
	}
	return u.researcherRepo.Upsert(ctx, wallet, null.NewString(ensName, ensName != ""))
}

// Create inserts a new open study owned by the wallet's researcher identity.
// When metadata is provided and the store is configured, the blob is pinned
// first and the CID stored on the row; a pin failure aborts the create so no
// partial study is left behind.
func (u *StudyUsecase) Create(ctx context.Context, wallet string, input *entities.CreateStudyInput) (*entities.Study, error) {
	if input.RewardAmount.IsZero() || input.RewardAmount.IsNegative() {
		return nil, domainerrors.BadRequest("rewardAmount must be positive")
	}
	if input.MaxParticipants <= 0 {
		return nil, domainerrors.BadRequest("maxParticipants must be positive")
	}

	researcher, err := u.GetOrCreateResearcher(ctx, wallet, input.ResearcherEns)
	if err != nil {
		return nil, err
	}

	study := &entities.Study{
		ID:              utils.GenerateUUIDv7(),
		ResearcherID:    researcher.ID,
		Title:           input.Title,
		RewardAmount:    input.RewardAmount,
		MaxParticipants: input.MaxParticipants,
		Status:          entities.StudyStatusOpen,
	}

	if input.Metadata != nil {
		cid, err := u.pinMetadata(ctx, study.Title, input.Metadata)
		if err != nil {
			return nil, err
		}
		if cid != "" {
			study.IpfsCID = null.StringFrom(cid)
		}
	}

	if err := u.studyRepo.Create(ctx, study); err != nil {
		return nil, err
	}
	return study, nil
}

// pinMetadata validates and uploads a metadata blob, returning its CID.
// An unconfigured store is not an error; the study simply carries no CID.
func (u *StudyUsecase) pinMetadata(ctx context.Context, title string, metadata *entities.StudyMetadata) (string, error) {
	if metadata.Category != "" && !entities.IsValidCategory(metadata.Category) {
		return "", domainerrors.BadRequest("unknown study category")
	}
	if metadata.Title == "" {
		metadata.Title = title
	}
	if u.metadata == nil || !u.metadata.Configured() {
		logger.Warn(ctx, "metadata store not configured, study created without CID")
		return "", nil
	}
	return u.metadata.Upload(ctx, metadata)
}

// Get returns one study in its enriched listing form.
func (u *StudyUsecase) Get(ctx context.Context, id uuid.UUID) (*entities.ResearchStudy, error) {
	study, err := u.studyRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	enriched, err := u.enrichStudies(ctx, []*entities.Study{study})
	if err != nil {
		return nil, err
	}
	return enriched[0], nil
}

// List returns all studies, newest first, enriched with researcher names,
// enrollment counts and the metadata overlay.
func (u *StudyUsecase) List(ctx context.Context) ([]*entities.ResearchStudy, error) {
	studies, err := u.studyRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	return u.enrichStudies(ctx, studies)
}

// ListByResearcher returns the enriched listings owned by the wallet's
// researcher identity. A wallet with no researcher row owns nothing.
func (u *StudyUsecase) ListByResearcher(ctx context.Context, wallet string) ([]*entities.ResearchStudy, error) {
	researcher, err := u.researcherRepo.GetByWallet(ctx, wallet)
	if err != nil {
		if err == domainerrors.ErrNotFound {
			return []*entities.ResearchStudy{}, nil
		}
		return nil, err
	}

	all, err := u.List(ctx)
	if err != nil {
		return nil, err
	}
	mine := make([]*entities.ResearchStudy, 0)
	for _, s := range all {
		if s.ResearcherID == researcher.ID {
			mine = append(mine, s)
		}
	}
	return mine, nil
}

// Update applies a partial edit to a study owned by the wallet. A non-nil
// Metadata is re-pinned and the stored CID replaced; the old blob stays
// pinned (the store is content-addressed).
func (u *StudyUsecase) Update(ctx context.Context, wallet string, id uuid.UUID, input *entities.UpdateStudyInput) (*entities.Study, error) {
	researcher, err := u.researcherRepo.GetByWallet(ctx, wallet)
	if err != nil {
		return nil, err
	}

	changes := repositories.StudyUpdate{
		Title:           input.Title,
		RewardAmount:    input.RewardAmount,
		MaxParticipants: input.MaxParticipants,
	}
	if input.RewardAmount != nil && !input.RewardAmount.IsPositive() {
		return nil, domainerrors.BadRequest("rewardAmount must be positive")
	}
	if input.Status != nil {
		if !input.Status.IsValid() {
			return nil, domainerrors.BadRequest("unknown study status")
		}
		changes.Status = input.Status
	}
	if input.Metadata != nil {
		title := ""
		if input.Title != nil {
			title = *input.Title
		}
		cid, err := u.pinMetadata(ctx, title, input.Metadata)
		if err != nil {
			return nil, err
		}
		if cid != "" {
			changes.IpfsCID = &cid
		}
	}

	if err := u.studyRepo.Update(ctx, id, researcher.ID, changes); err != nil {
		return nil, err
	}
	return u.studyRepo.GetByID(ctx, id)
}

// UpdateStatus moves a study owned by the wallet through its lifecycle.
func (u *StudyUsecase) UpdateStatus(ctx context.Context, wallet string, id uuid.UUID, status entities.StudyStatus) (*entities.Study, error) {
	if !status.IsValid() {
		return nil, domainerrors.BadRequest("unknown study status")
	}
	return u.Update(ctx, wallet, id, &entities.UpdateStudyInput{Status: &status})
}

// Delete removes a study owned by the wallet, together with its enrollments.
func (u *StudyUsecase) Delete(ctx context.Context, wallet string, id uuid.UUID) error {
	researcher, err := u.researcherRepo.GetByWallet(ctx, wallet)
	if err != nil {
		return err
	}
	return u.studyRepo.Delete(ctx, id, researcher.ID)
}

// enrichStudies builds the denormalized listing view: researcher display
// names resolved in one batch, live enrollment counts, and the metadata
// overlay applied best-effort on top of the defaults.
func (u *StudyUsecase) enrichStudies(ctx context.Context, studies []*entities.Study) ([]*entities.ResearchStudy, error) {
	if len(studies) == 0 {
		return []*entities.ResearchStudy{}, nil
	}

	counts, err := u.enrollmentRepo.CountByStudy(ctx)
	if err != nil {
		return nil, err
	}

	names, err := u.researcherNames(ctx, studies)
	if err != nil {
		return nil, err
	}

	enriched := make([]*entities.ResearchStudy, 0, len(studies))
	for _, s := range studies {
		row := &entities.ResearchStudy{
			ID:               s.ID,
			Title:            s.Title,
			Category:         defaultCategory,
			Location:         defaultLocation,
			Compensation:     s.RewardAmount,
			ResearcherID:     s.ResearcherID,
			ResearcherName:   names[s.ResearcherID],
			CreatedAt:        s.CreatedAt,
			ParticipantCount: counts[s.ID],
			Status:           s.Status.Public(),
			IpfsCID:          s.IpfsCID,
			MaxParticipants:  s.MaxParticipants,
			YellowSessionID:  s.YellowSessionID,
			FundedAmount:     s.FundedAmount,
		}
		u.applyMetadataOverlay(ctx, row)
		enriched = append(enriched, row)
	}
	return enriched, nil
}

func (u *StudyUsecase) researcherNames(ctx context.Context, studies []*entities.Study) (map[uuid.UUID]string, error) {
	seen := make(map[uuid.UUID]struct{}, len(studies))
	ids := make([]uuid.UUID, 0, len(studies))
	for _, s := range studies {
		if _, ok := seen[s.ResearcherID]; ok {
			continue
		}
		seen[s.ResearcherID] = struct{}{}
		ids = append(ids, s.ResearcherID)
	}

	researchers, err := u.researcherRepo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	names := make(map[uuid.UUID]string, len(researchers))
	for _, r := range researchers {
		names[r.ID] = r.DisplayName()
	}
	return names, nil
}

// applyMetadataOverlay fetches the study's metadata blob and copies its
// descriptive fields onto the listing. Any failure leaves the defaults in
// place; a listing never fails because a gateway is down.
func (u *StudyUsecase) applyMetadataOverlay(ctx context.Context, row *entities.ResearchStudy) {
	if u.metadata == nil || !u.metadata.Configured() || !row.IpfsCID.Valid || row.IpfsCID.String == "" {
		return
	}

	blob, err := u.metadata.Get(ctx, row.IpfsCID.String)
	if err != nil {
		logger.Warn(ctx, "metadata overlay skipped",
			zap.String("study_id", row.ID.String()),
			zap.String("cid", row.IpfsCID.String),
			zap.Error(err))
		return
	}

	if blob.Description != "" {
		row.Description = blob.Description
	}
	if blob.Eligibility != "" {
		row.Eligibility = blob.Eligibility
	}
	if blob.Location != "" {
		row.Location = blob.Location
	}
	if blob.Category != "" && entities.IsValidCategory(blob.Category) {
		row.Category = entities.StudyCategory(blob.Category)
	}
}
