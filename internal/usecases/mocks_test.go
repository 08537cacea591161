package usecases

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/volatiletech/null/v8"

	"research-fi.backend/internal/domain/entities"
	domainerrors "research-fi.backend/internal/domain/errors"
	"research-fi.backend/internal/domain/repositories"
	"research-fi.backend/pkg/logger"
)

func init() {
	logger.Init("development")
}

// --- study repo stub ---

type stubStudyRepo struct {
	studies map[uuid.UUID]*entities.Study
	err     error
}

func newStubStudyRepo() *stubStudyRepo {
	return &stubStudyRepo{studies: make(map[uuid.UUID]*entities.Study)}
}

func (s *stubStudyRepo) Create(_ context.Context, study *entities.Study) error {
	if s.err != nil {
		return s.err
	}
	if study.CreatedAt.IsZero() {
		study.CreatedAt = time.Now()
	}
	cp := *study
	s.studies[study.ID] = &cp
	return nil
}

func (s *stubStudyRepo) GetByID(_ context.Context, id uuid.UUID) (*entities.Study, error) {
	if s.err != nil {
		return nil, s.err
	}
	study, ok := s.studies[id]
	if !ok {
		return nil, domainerrors.ErrNotFound
	}
	cp := *study
	return &cp, nil
}

func (s *stubStudyRepo) List(_ context.Context) ([]*entities.Study, error) {
	if s.err != nil {
		return nil, s.err
	}
	out := make([]*entities.Study, 0, len(s.studies))
	for _, study := range s.studies {
		cp := *study
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *stubStudyRepo) ListByStatus(_ context.Context, status entities.StudyStatus) ([]*entities.Study, error) {
	out := make([]*entities.Study, 0)
	for _, study := range s.studies {
		if study.Status == status {
			cp := *study
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (s *stubStudyRepo) Update(_ context.Context, id, researcherID uuid.UUID, changes repositories.StudyUpdate) error {
	study, ok := s.studies[id]
	if !ok || study.ResearcherID != researcherID {
		return domainerrors.ErrNotFound
	}
	if changes.Title != nil {
		study.Title = *changes.Title
	}
	if changes.RewardAmount != nil {
		study.RewardAmount = *changes.RewardAmount
	}
	if changes.MaxParticipants != nil {
		study.MaxParticipants = *changes.MaxParticipants
	}
	if changes.Status != nil {
		study.Status = *changes.Status
	}
	if changes.IpfsCID != nil {
		study.IpfsCID = null.StringFrom(*changes.IpfsCID)
	}
	return nil
}

func (s *stubStudyRepo) UpdateStatus(_ context.Context, id uuid.UUID, status entities.StudyStatus) error {
	study, ok := s.studies[id]
	if !ok {
		return domainerrors.ErrNotFound
	}
	study.Status = status
	return nil
}

func (s *stubStudyRepo) Delete(_ context.Context, id, researcherID uuid.UUID) error {
	study, ok := s.studies[id]
	if !ok || study.ResearcherID != researcherID {
		return domainerrors.ErrNotFound
	}
	delete(s.studies, id)
	return nil
}

func (s *stubStudyRepo) SetFunding(_ context.Context, id, researcherID uuid.UUID, sessionID string, amount decimal.Decimal) error {
	study, ok := s.studies[id]
	if !ok || study.ResearcherID != researcherID {
		return domainerrors.ErrNotFound
	}
	if study.YellowSessionID.Valid {
		return domainerrors.ErrAlreadyFunded
	}
	study.YellowSessionID = null.StringFrom(sessionID)
	study.FundedAmount = decimal.NewNullDecimal(amount)
	return nil
}

func (s *stubStudyRepo) Count(_ context.Context) (int64, error) {
	return int64(len(s.studies)), nil
}

// --- researcher repo stub ---

type stubResearcherRepo struct {
	byWallet map[string]*entities.Researcher
	err      error
}

func newStubResearcherRepo() *stubResearcherRepo {
	return &stubResearcherRepo{byWallet: make(map[string]*entities.Researcher)}
}

func (s *stubResearcherRepo) Upsert(_ context.Context, wallet string, ensName null.String) (*entities.Researcher, error) {
	if s.err != nil {
		return nil, s.err
	}
	if r, ok := s.byWallet[wallet]; ok {
		if ensName.Valid {
			r.EnsName = ensName
		}
		cp := *r
		return &cp, nil
	}
	r := &entities.Researcher{ID: uuid.New(), WalletAddress: wallet, EnsName: ensName, CreatedAt: time.Now()}
	s.byWallet[wallet] = r
	cp := *r
	return &cp, nil
}

func (s *stubResearcherRepo) GetByWallet(_ context.Context, wallet string) (*entities.Researcher, error) {
	if s.err != nil {
		return nil, s.err
	}
	r, ok := s.byWallet[wallet]
	if !ok {
		return nil, domainerrors.ErrNotFound
	}
	cp := *r
	return &cp, nil
}

func (s *stubResearcherRepo) GetByIDs(_ context.Context, ids []uuid.UUID) ([]*entities.Researcher, error) {
	out := make([]*entities.Researcher, 0)
	for _, id := range ids {
		for _, r := range s.byWallet {
			if r.ID == id {
				cp := *r
				out = append(out, &cp)
			}
		}
	}
	return out, nil
}

func (s *stubResearcherRepo) Count(_ context.Context) (int64, error) {
	return int64(len(s.byWallet)), nil
}

// --- participant repo stub ---

type stubParticipantRepo struct {
	byWallet map[string]*entities.Participant
	err      error
}

func newStubParticipantRepo() *stubParticipantRepo {
	return &stubParticipantRepo{byWallet: make(map[string]*entities.Participant)}
}

func (s *stubParticipantRepo) Create(_ context.Context, p *entities.Participant) error {
	if s.err != nil {
		return s.err
	}
	if _, ok := s.byWallet[p.WalletAddress]; ok {
		return domainerrors.ErrAlreadyExists
	}
	cp := *p
	s.byWallet[p.WalletAddress] = &cp
	return nil
}

func (s *stubParticipantRepo) GetByWallet(_ context.Context, wallet string) (*entities.Participant, error) {
	if s.err != nil {
		return nil, s.err
	}
	p, ok := s.byWallet[wallet]
	if !ok {
		return nil, domainerrors.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (s *stubParticipantRepo) GetByIDs(_ context.Context, ids []uuid.UUID) ([]*entities.Participant, error) {
	out := make([]*entities.Participant, 0)
	for _, id := range ids {
		for _, p := range s.byWallet {
			if p.ID == id {
				cp := *p
				out = append(out, &cp)
			}
		}
	}
	return out, nil
}

func (s *stubParticipantRepo) Count(_ context.Context) (int64, error) {
	return int64(len(s.byWallet)), nil
}

// --- profile repo stub ---

type stubProfileRepo struct {
	byWallet map[string]*entities.Profile
	err      error
}

func newStubProfileRepo() *stubProfileRepo {
	return &stubProfileRepo{byWallet: make(map[string]*entities.Profile)}
}

func (s *stubProfileRepo) GetByWallet(_ context.Context, wallet string) (*entities.Profile, error) {
	if s.err != nil {
		return nil, s.err
	}
	p, ok := s.byWallet[wallet]
	if !ok {
		return nil, domainerrors.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (s *stubProfileRepo) Upsert(_ context.Context, profile *entities.Profile) error {
	if s.err != nil {
		return s.err
	}
	cp := *profile
	s.byWallet[profile.WalletAddress] = &cp
	return nil
}

// --- enrollment repo stub ---

type stubEnrollmentRepo struct {
	enrollments map[uuid.UUID]*entities.Enrollment
	err         error
}

func newStubEnrollmentRepo() *stubEnrollmentRepo {
	return &stubEnrollmentRepo{enrollments: make(map[uuid.UUID]*entities.Enrollment)}
}

func (s *stubEnrollmentRepo) Create(_ context.Context, e *entities.Enrollment) error {
	if s.err != nil {
		return s.err
	}
	for _, existing := range s.enrollments {
		if existing.StudyID == e.StudyID && existing.ParticipantID == e.ParticipantID {
			return domainerrors.ErrAlreadyEnrolled
		}
	}
	cp := *e
	s.enrollments[e.ID] = &cp
	return nil
}

func (s *stubEnrollmentRepo) GetByID(_ context.Context, id uuid.UUID) (*entities.Enrollment, error) {
	e, ok := s.enrollments[id]
	if !ok {
		return nil, domainerrors.ErrNotFound
	}
	cp := *e
	return &cp, nil
}

func (s *stubEnrollmentRepo) ListByParticipant(_ context.Context, participantID uuid.UUID) ([]*entities.Enrollment, error) {
	out := make([]*entities.Enrollment, 0)
	for _, e := range s.enrollments {
		if e.ParticipantID == participantID {
			cp := *e
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].JoinedAt.After(out[j].JoinedAt) })
	return out, nil
}

func (s *stubEnrollmentRepo) ListByStudy(_ context.Context, studyID uuid.UUID) ([]*entities.Enrollment, error) {
	out := make([]*entities.Enrollment, 0)
	for _, e := range s.enrollments {
		if e.StudyID == studyID {
			cp := *e
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].JoinedAt.Before(out[j].JoinedAt) })
	return out, nil
}

func (s *stubEnrollmentRepo) CountByStudy(_ context.Context) (map[uuid.UUID]int, error) {
	if s.err != nil {
		return nil, s.err
	}
	counts := make(map[uuid.UUID]int)
	for _, e := range s.enrollments {
		counts[e.StudyID]++
	}
	return counts, nil
}

func (s *stubEnrollmentRepo) MarkCompleted(_ context.Context, id uuid.UUID) error {
	e, ok := s.enrollments[id]
	if !ok || e.Status != entities.EnrollmentStatusJoined {
		return domainerrors.ErrNotFound
	}
	e.Status = entities.EnrollmentStatusCompleted
	e.CompletedAt = null.TimeFrom(time.Now())
	return nil
}

func (s *stubEnrollmentRepo) MarkPaidForStudy(_ context.Context, studyID uuid.UUID, txHash string) (int64, error) {
	var paid int64
	for _, e := range s.enrollments {
		if e.StudyID == studyID && e.Status == entities.EnrollmentStatusCompleted {
			e.Status = entities.EnrollmentStatusPaid
			e.PayoutTxHash = null.StringFrom(txHash)
			paid++
		}
	}
	return paid, nil
}

func (s *stubEnrollmentRepo) Count(_ context.Context) (int64, error) {
	return int64(len(s.enrollments)), nil
}

// --- metadata store stub ---

type stubMetadataStore struct {
	configured bool
	blobs      map[string]*entities.StudyMetadata
	uploadErr  error
	getErr     error
	uploads    int
}

func newStubMetadataStore() *stubMetadataStore {
	return &stubMetadataStore{configured: true, blobs: make(map[string]*entities.StudyMetadata)}
}

func (s *stubMetadataStore) Configured() bool { return s.configured }

func (s *stubMetadataStore) Upload(_ context.Context, metadata *entities.StudyMetadata) (string, error) {
	if s.uploadErr != nil {
		return "", s.uploadErr
	}
	s.uploads++
	cid := "Qm" + uuid.NewString()[:8]
	cp := *metadata
	s.blobs[cid] = &cp
	return cid, nil
}

func (s *stubMetadataStore) Get(_ context.Context, cid string) (*entities.StudyMetadata, error) {
	if s.getErr != nil {
		return nil, s.getErr
	}
	blob, ok := s.blobs[cid]
	if !ok {
		return nil, domainerrors.ErrNotFound
	}
	cp := *blob
	return &cp, nil
}

// --- pending action store stub ---

type stubActionStore struct {
	actions    map[string]*entities.PendingAction
	recordErr  error
	consumeErr error
}

func newStubActionStore() *stubActionStore {
	return &stubActionStore{actions: make(map[string]*entities.PendingAction)}
}

func (s *stubActionStore) Record(_ context.Context, wallet string, action *entities.PendingAction) error {
	if s.recordErr != nil {
		return s.recordErr
	}
	s.actions[wallet] = action
	return nil
}

func (s *stubActionStore) Consume(_ context.Context, wallet string) (*entities.PendingAction, error) {
	if s.consumeErr != nil {
		return nil, s.consumeErr
	}
	action, ok := s.actions[wallet]
	if !ok {
		return nil, nil
	}
	delete(s.actions, wallet)
	return action, nil
}

// --- content generator stub ---

type stubGenerator struct {
	configured bool
	content    *entities.StudyContent
	err        error
	lastTopic  string
}

func (s *stubGenerator) Configured() bool { return s.configured }

func (s *stubGenerator) GenerateStudyContent(_ context.Context, topic string) (*entities.StudyContent, error) {
	s.lastTopic = topic
	if s.err != nil {
		return nil, s.err
	}
	return s.content, nil
}
