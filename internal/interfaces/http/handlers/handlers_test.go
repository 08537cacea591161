package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"research-fi.backend/internal/domain/entities"
	"research-fi.backend/internal/infrastructure/payments"
	"research-fi.backend/internal/infrastructure/repositories"
	"research-fi.backend/internal/interfaces/http/middleware"
	"research-fi.backend/internal/usecases"
	"research-fi.backend/pkg/logger"
)

func init() {
	gin.SetMode(gin.TestMode)
	logger.Init("development")
}

const (
	testResearcher  = "0x1111111111111111111111111111111111111111"
	testParticipant = "0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"
)

var testDBCounter atomic.Int64

// memActionStore is an in-process stand-in for the Redis pending-action store.
type memActionStore struct {
	actions map[string]*entities.PendingAction
}

func (s *memActionStore) Record(_ context.Context, wallet string, action *entities.PendingAction) error {
	s.actions[wallet] = action
	return nil
}

func (s *memActionStore) Consume(_ context.Context, wallet string) (*entities.PendingAction, error) {
	action, ok := s.actions[wallet]
	if !ok {
		return nil, nil
	}
	delete(s.actions, wallet)
	return action, nil
}

type memMetadataStore struct {
	blobs map[string]*entities.StudyMetadata
	next  int
}

func (s *memMetadataStore) Configured() bool { return true }

func (s *memMetadataStore) Upload(_ context.Context, metadata *entities.StudyMetadata) (string, error) {
	s.next++
	cid := fmt.Sprintf("QmTest%04d", s.next)
	cp := *metadata
	s.blobs[cid] = &cp
	return cid, nil
}

func (s *memMetadataStore) Get(_ context.Context, cid string) (*entities.StudyMetadata, error) {
	blob, ok := s.blobs[cid]
	if !ok {
		return nil, fmt.Errorf("cid %s not pinned", cid)
	}
	cp := *blob
	return &cp, nil
}

type memGenerator struct{}

func (memGenerator) Configured() bool { return true }

func (memGenerator) GenerateStudyContent(_ context.Context, topic string) (*entities.StudyContent, error) {
	return &entities.StudyContent{
		Title:       "Study of " + topic,
		Description: "Generated description",
		Eligibility: "Adults 18+",
	}, nil
}

// newTestServer wires the full handler stack over an in-memory sqlite DB,
// mirroring the production route table.
func newTestServer(t *testing.T) *gin.Engine {
	t.Helper()

	dsn := fmt.Sprintf("file:handlers_%d?mode=memory&cache=shared", testDBCounter.Add(1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	for _, ddl := range []string{
		`CREATE TABLE researchers (
			id TEXT PRIMARY KEY,
			wallet_address TEXT NOT NULL UNIQUE,
			ens_name TEXT,
			created_at DATETIME,
			updated_at DATETIME
		);`,
		`CREATE TABLE participants (
			id TEXT PRIMARY KEY,
			wallet_address TEXT NOT NULL UNIQUE,
			created_at DATETIME
		);`,
		`CREATE TABLE profiles (
			wallet_address TEXT PRIMARY KEY,
			display_name TEXT NOT NULL,
			linkedin_url TEXT,
			updated_at DATETIME
		);`,
		`CREATE TABLE studies (
			id TEXT PRIMARY KEY,
			researcher_id TEXT NOT NULL,
			title TEXT NOT NULL,
			ipfs_cid TEXT,
			reward_amount TEXT NOT NULL,
			max_participants INTEGER NOT NULL,
			status TEXT NOT NULL DEFAULT 'open',
			yellow_session_id TEXT,
			funded_amount TEXT,
			created_at DATETIME,
			updated_at DATETIME
		);`,
		`CREATE TABLE enrollments (
			id TEXT PRIMARY KEY,
			study_id TEXT NOT NULL,
			participant_id TEXT NOT NULL,
			status TEXT NOT NULL DEFAULT 'joined',
			joined_at DATETIME,
			completed_at DATETIME,
			payout_tx_hash TEXT,
			UNIQUE(study_id, participant_id)
		);`,
	} {
		require.NoError(t, db.Exec(ddl).Error)
	}

	studyRepo := repositories.NewStudyRepository(db)
	researcherRepo := repositories.NewResearcherRepository(db)
	participantRepo := repositories.NewParticipantRepository(db)
	profileRepo := repositories.NewProfileRepository(db)
	enrollmentRepo := repositories.NewEnrollmentRepository(db)

	metadata := &memMetadataStore{blobs: make(map[string]*entities.StudyMetadata)}
	actions := &memActionStore{actions: make(map[string]*entities.PendingAction)}
	sessions := payments.NewMemoryStore()

	studyUC := usecases.NewStudyUsecase(studyRepo, researcherRepo, enrollmentRepo, metadata)
	enrollmentUC := usecases.NewEnrollmentUsecase(enrollmentRepo, participantRepo, studyRepo, researcherRepo, studyUC)
	profileUC := usecases.NewProfileUsecase(profileRepo, actions)
	fundingUC := usecases.NewFundingUsecase(studyRepo, researcherRepo, enrollmentRepo, sessions)
	contentUC := usecases.NewContentUsecase(memGenerator{})
	statsUC := usecases.NewStatsUsecase(studyRepo, researcherRepo, participantRepo, enrollmentRepo)

	studyHandler := NewStudyHandler(studyUC, profileUC)
	enrollmentHandler := NewEnrollmentHandler(enrollmentUC, profileUC)
	profileHandler := NewProfileHandler(profileUC)
	fundingHandler := NewFundingHandler(fundingUC)
	contentHandler := NewContentHandler(contentUC)
	statsHandler := NewStatsHandler(statsUC)

	r := gin.New()
	api := r.Group("/api/v1")

	api.GET("/studies", studyHandler.List)
	api.GET("/stats", statsHandler.Get)

	auth := api.Group("")
	auth.Use(middleware.WalletAuthMiddleware())
	auth.GET("/studies/mine", studyHandler.Mine)
	auth.POST("/studies", studyHandler.Create)
	auth.PUT("/studies/:id", studyHandler.Update)
	auth.PATCH("/studies/:id/status", studyHandler.UpdateStatus)
	auth.DELETE("/studies/:id", studyHandler.Delete)
	auth.POST("/studies/:id/join", enrollmentHandler.Join)
	auth.GET("/studies/:id/roster", enrollmentHandler.Roster)
	auth.POST("/studies/:id/fund", fundingHandler.Fund)
	auth.POST("/studies/:id/credit", fundingHandler.Credit)
	auth.GET("/studies/:id/session", fundingHandler.Session)
	auth.POST("/studies/:id/settle", fundingHandler.Settle)
	auth.GET("/enrollments/mine", enrollmentHandler.Mine)
	auth.POST("/enrollments/:id/complete", enrollmentHandler.Complete)
	auth.GET("/profiles/me", profileHandler.GetMe)
	auth.PUT("/profiles/me", profileHandler.SetMe)
	auth.POST("/content/generate", contentHandler.Generate)
	api.GET("/studies/:id", studyHandler.Get)

	return r
}

func do(t *testing.T, r *gin.Engine, method, path, wallet string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if wallet != "" {
		req.Header.Set(middleware.WalletHeader, wallet)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func setProfile(t *testing.T, r *gin.Engine, wallet, name string) map[string]json.RawMessage {
	t.Helper()
	w := do(t, r, http.MethodPut, "/api/v1/profiles/me", wallet, gin.H{"displayName": name})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var out map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func createStudy(t *testing.T, r *gin.Engine, wallet string, reward, max int) entities.Study {
	t.Helper()
	w := do(t, r, http.MethodPost, "/api/v1/studies", wallet, gin.H{
		"title":           "Handler Study",
		"rewardAmount":    reward,
		"maxParticipants": max,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var study entities.Study
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &study))
	return study
}

func TestCreateStudy_RequiresWallet(t *testing.T) {
	r := newTestServer(t)

	w := do(t, r, http.MethodPost, "/api/v1/studies", "", gin.H{"title": "X"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestProfileGate_CreateStudyFlow(t *testing.T) {
	r := newTestServer(t)

	// no profile yet: blocked, intent parked
	w := do(t, r, http.MethodPost, "/api/v1/studies", testResearcher, gin.H{
		"title": "Gated", "rewardAmount": 10, "maxParticipants": 2,
	})
	require.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "PROFILE_REQUIRED")

	// saving a profile returns the parked action exactly once
	out := setProfile(t, r, testResearcher, "Dr. Example")
	var action entities.PendingAction
	require.NoError(t, json.Unmarshal(out["pendingAction"], &action))
	assert.Equal(t, entities.PendingActionCreateStudy, action.Type)

	out = setProfile(t, r, testResearcher, "Dr. Example")
	assert.Equal(t, "null", string(out["pendingAction"]))

	// retry succeeds
	createStudy(t, r, testResearcher, 10, 2)
}

func TestProfileGate_JoinParksStudyID(t *testing.T) {
	r := newTestServer(t)
	setProfile(t, r, testResearcher, "Dr. Example")
	study := createStudy(t, r, testResearcher, 10, 2)

	w := do(t, r, http.MethodPost, "/api/v1/studies/"+study.ID.String()+"/join", testParticipant, nil)
	require.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "PROFILE_REQUIRED")

	out := setProfile(t, r, testParticipant, "Participant P")
	var action entities.PendingAction
	require.NoError(t, json.Unmarshal(out["pendingAction"], &action))
	assert.Equal(t, entities.PendingActionApplyStudy, action.Type)
	require.NotNil(t, action.StudyID)
	assert.Equal(t, study.ID, *action.StudyID)
}

func TestJoin_DuplicateConflicts(t *testing.T) {
	r := newTestServer(t)
	setProfile(t, r, testResearcher, "Dr. Example")
	setProfile(t, r, testParticipant, "Participant P")
	study := createStudy(t, r, testResearcher, 10, 5)

	w := do(t, r, http.MethodPost, "/api/v1/studies/"+study.ID.String()+"/join", testParticipant, nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = do(t, r, http.MethodPost, "/api/v1/studies/"+study.ID.String()+"/join", testParticipant, nil)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestStudyList_PublicAndEnriched(t *testing.T) {
	r := newTestServer(t)
	setProfile(t, r, testResearcher, "Dr. Example")
	createStudy(t, r, testResearcher, 10, 5)

	w := do(t, r, http.MethodGet, "/api/v1/studies", "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var out struct {
		Studies []entities.ResearchStudy `json:"studies"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	require.Len(t, out.Studies, 1)
	assert.Equal(t, "OPEN", out.Studies[0].Status)
	assert.Equal(t, "Remote", out.Studies[0].Location)
}

func TestStudyList_Pagination(t *testing.T) {
	r := newTestServer(t)
	setProfile(t, r, testResearcher, "Dr. Example")
	for i := 0; i < 3; i++ {
		createStudy(t, r, testResearcher, 10, 5)
	}

	w := do(t, r, http.MethodGet, "/api/v1/studies?page=2&limit=2", "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var out struct {
		Studies    []entities.ResearchStudy `json:"studies"`
		Pagination struct {
			TotalCount int64 `json:"totalCount"`
			TotalPages int   `json:"totalPages"`
		} `json:"pagination"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	assert.Len(t, out.Studies, 1)
	assert.Equal(t, int64(3), out.Pagination.TotalCount)
	assert.Equal(t, 2, out.Pagination.TotalPages)
}

func TestFundCreditSettle_FullFlow(t *testing.T) {
	r := newTestServer(t)
	setProfile(t, r, testResearcher, "Dr. Example")
	setProfile(t, r, testParticipant, "Participant P")
	study := createStudy(t, r, testResearcher, 50, 10)
	base := "/api/v1/studies/" + study.ID.String()

	w := do(t, r, http.MethodPost, base+"/join", testParticipant, nil)
	require.Equal(t, http.StatusCreated, w.Code)
	var enrollment entities.Enrollment
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &enrollment))

	// wrong amount rejected
	w = do(t, r, http.MethodPost, base+"/fund", testResearcher, gin.H{"amount": 400})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, r, http.MethodPost, base+"/fund", testResearcher, gin.H{"amount": 500})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	// funding twice conflicts
	w = do(t, r, http.MethodPost, base+"/fund", testResearcher, gin.H{"amount": 500})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = do(t, r, http.MethodPost, base+"/credit", testResearcher, gin.H{"participantWallet": testParticipant})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var session entities.PaymentSession
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &session))
	assert.Equal(t, "450", session.Balance.String())

	w = do(t, r, http.MethodPost, "/api/v1/enrollments/"+enrollment.ID.String()+"/complete", testResearcher, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = do(t, r, http.MethodPost, base+"/settle", testResearcher, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var result entities.SettlementResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.Equal(t, int64(1), result.ParticipantsPaid)
	assert.Regexp(t, "^0x[0-9a-f]{64}$", result.TxHash)

	// second settle conflicts
	w = do(t, r, http.MethodPost, base+"/settle", testResearcher, nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	// participant sees the payout on their enrollment
	w = do(t, r, http.MethodGet, "/api/v1/enrollments/mine", testParticipant, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var mine struct {
		Enrollments []entities.EnrollmentWithStudy `json:"enrollments"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &mine))
	require.Len(t, mine.Enrollments, 1)
	assert.Equal(t, entities.EnrollmentStatusPaid, mine.Enrollments[0].Status)
	assert.Equal(t, result.TxHash, mine.Enrollments[0].PayoutTxHash.String)
}

func TestRoster_OwnerOnly(t *testing.T) {
	r := newTestServer(t)
	setProfile(t, r, testResearcher, "Dr. Example")
	setProfile(t, r, testParticipant, "Participant P")
	study := createStudy(t, r, testResearcher, 10, 5)

	w := do(t, r, http.MethodPost, "/api/v1/studies/"+study.ID.String()+"/join", testParticipant, nil)
	require.Equal(t, http.StatusCreated, w.Code)

	w = do(t, r, http.MethodGet, "/api/v1/studies/"+study.ID.String()+"/roster", testResearcher, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var out struct {
		Enrollments []entities.StudyEnrollmentRow `json:"enrollments"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	require.Len(t, out.Enrollments, 1)
	assert.Equal(t, testParticipant, out.Enrollments[0].ParticipantWallet)

	w = do(t, r, http.MethodGet, "/api/v1/studies/"+study.ID.String()+"/roster", testParticipant, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestStudyGet_InvalidAndMissingID(t *testing.T) {
	r := newTestServer(t)

	w := do(t, r, http.MethodGet, "/api/v1/studies/not-a-uuid", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, r, http.MethodGet, "/api/v1/studies/00000000-0000-0000-0000-000000000001", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestContentGenerate(t *testing.T) {
	r := newTestServer(t)

	w := do(t, r, http.MethodPost, "/api/v1/content/generate", testResearcher, gin.H{"topic": "sleep"})
	require.Equal(t, http.StatusOK, w.Code)
	var content entities.StudyContent
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &content))
	assert.Equal(t, "Study of sleep", content.Title)

	w = do(t, r, http.MethodPost, "/api/v1/content/generate", testResearcher, gin.H{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestStats(t *testing.T) {
	r := newTestServer(t)
	setProfile(t, r, testResearcher, "Dr. Example")
	createStudy(t, r, testResearcher, 10, 5)

	w := do(t, r, http.MethodGet, "/api/v1/stats", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var stats entities.PlatformStats
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stats))
	assert.Equal(t, int64(1), stats.Studies)
	assert.Equal(t, int64(1), stats.Researchers)
}

func TestProfileGetMe(t *testing.T) {
	r := newTestServer(t)

	w := do(t, r, http.MethodGet, "/api/v1/profiles/me", testParticipant, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	setProfile(t, r, testParticipant, "Participant P")

	w = do(t, r, http.MethodGet, "/api/v1/profiles/me", testParticipant, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var profile entities.Profile
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &profile))
	assert.Equal(t, "Participant P", profile.DisplayName)
}

func TestStudyDelete_RemovesFromListing(t *testing.T) {
	r := newTestServer(t)
	setProfile(t, r, testResearcher, "Dr. Example")
	study := createStudy(t, r, testResearcher, 10, 5)

	w := do(t, r, http.MethodDelete, "/api/v1/studies/"+study.ID.String(), testResearcher, nil)
	require.Equal(t, http.StatusNoContent, w.Code)

	w = do(t, r, http.MethodGet, "/api/v1/studies/"+study.ID.String(), "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
