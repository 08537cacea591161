package entities

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/volatiletech/null/v8"
)

// StudyStatus is the internal study lifecycle status
type StudyStatus string

const (
	StudyStatusDraft  StudyStatus = "draft"
	StudyStatusOpen   StudyStatus = "open"
	StudyStatusClosed StudyStatus = "closed"
)

// IsValid reports whether s is one of the known lifecycle statuses.
func (s StudyStatus) IsValid() bool {
	return s == StudyStatusDraft || s == StudyStatusOpen || s == StudyStatusClosed
}

// Public maps the internal status to the exposed OPEN/CLOSED value.
// Draft studies are not publicly open.
func (s StudyStatus) Public() string {
	if s == StudyStatusOpen {
		return "OPEN"
	}
	return "CLOSED"
}

// StudyCategory is a closed set; values coming back from the metadata
// store are validated against it and discarded when unknown.
type StudyCategory string

const (
	CategoryProductTesting    StudyCategory = "Product Testing"
	CategorySurveys           StudyCategory = "Surveys"
	CategoryPsychology        StudyCategory = "Psychology"
	CategoryMedical           StudyCategory = "Medical"
	CategoryTechnology        StudyCategory = "Technology"
	CategoryNutrition         StudyCategory = "Nutrition"
	CategoryEconomics         StudyCategory = "Economics"
	CategoryBehavioralScience StudyCategory = "Behavioral Science"
	CategoryNeuroscience      StudyCategory = "Neuroscience"
)

var validCategories = map[StudyCategory]struct{}{
	CategoryProductTesting:    {},
	CategorySurveys:           {},
	CategoryPsychology:        {},
	CategoryMedical:           {},
	CategoryTechnology:        {},
	CategoryNutrition:         {},
	CategoryEconomics:         {},
	CategoryBehavioralScience: {},
	CategoryNeuroscience:      {},
}

// IsValidCategory reports whether c belongs to the closed category set.
func IsValidCategory(c string) bool {
	_, ok := validCategories[StudyCategory(c)]
	return ok
}

// Study is the study row as persisted. Free-text fields (description,
// eligibility, location, category) live in the metadata store, referenced
// by IpfsCID.
type Study struct {
	ID              uuid.UUID           `json:"id" gorm:"type:uuid;primary_key;default:uuid_generate_v4()"`
	ResearcherID    uuid.UUID           `json:"researcherId"`
	Title           string              `json:"title"`
	IpfsCID         null.String         `json:"ipfsCid,omitempty"`
	RewardAmount    decimal.Decimal     `json:"rewardAmount"`
	MaxParticipants int                 `json:"maxParticipants"`
	Status          StudyStatus         `json:"status"`
	YellowSessionID null.String         `json:"yellowSessionId,omitempty"`
	FundedAmount    decimal.NullDecimal `json:"fundedAmount,omitempty"`
	CreatedAt       time.Time           `json:"createdAt"`
	UpdatedAt       time.Time           `json:"updatedAt"`
}

// Funded reports whether a funding session has been attached to the study.
// Funding is a one-shot transition; a funded study cannot be funded again.
func (s *Study) Funded() bool {
	return s.YellowSessionID.Valid && s.YellowSessionID.String != ""
}

// TotalBudget is the amount required to fund the study in full
// (reward per participant × max participants). Partial funding is not allowed.
func (s *Study) TotalBudget() decimal.Decimal {
	return s.RewardAmount.Mul(decimal.NewFromInt(int64(s.MaxParticipants)))
}

// ResearchStudy is the denormalized listing view: study row joined with the
// researcher display name, a live enrollment count, and the metadata-store
// overlay fields. Overlay is best-effort; the defaults below survive a
// failed metadata fetch.
type ResearchStudy struct {
	ID               uuid.UUID           `json:"id"`
	Title            string              `json:"title"`
	Description      string              `json:"description"`
	Category         StudyCategory       `json:"category"`
	Eligibility      string              `json:"eligibility"`
	Location         string              `json:"location"`
	Compensation     decimal.Decimal     `json:"compensation"`
	ResearcherID     uuid.UUID           `json:"researcherId"`
	ResearcherName   string              `json:"researcherName"`
	CreatedAt        time.Time           `json:"createdAt"`
	ParticipantCount int                 `json:"participantCount"`
	Status           string              `json:"status"` // OPEN | CLOSED
	IpfsCID          null.String         `json:"ipfsCid,omitempty"`
	MaxParticipants  int                 `json:"maxParticipants"`
	YellowSessionID  null.String         `json:"yellowSessionId,omitempty"`
	FundedAmount     decimal.NullDecimal `json:"fundedAmount,omitempty"`
}

// StudyMetadata is the JSON blob pinned to the metadata store.
// No PII goes in here.
type StudyMetadata struct {
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	Background  string   `json:"background,omitempty"`
	Consent     string   `json:"consent,omitempty"`
	Questions   []string `json:"questions,omitempty"`
	Eligibility string   `json:"eligibility,omitempty"`
	Location    string   `json:"location,omitempty"`
	Category    string   `json:"category,omitempty"`
}

// CreateStudyInput represents input for creating a study
type CreateStudyInput struct {
	Title           string          `json:"title" binding:"required,min=3,max=255"`
	RewardAmount    decimal.Decimal `json:"rewardAmount" binding:"required"`
	MaxParticipants int             `json:"maxParticipants" binding:"required,gt=0"`
	ResearcherEns   string          `json:"researcherEns"`
	Metadata        *StudyMetadata  `json:"metadata,omitempty"`
}

// UpdateStudyInput represents a partial study update. Nil fields are left
// untouched. A non-nil Metadata triggers a re-upload to the metadata store
// and overwrites the stored CID (the old blob stays pinned; the store is
// content-addressed).
type UpdateStudyInput struct {
	Title           *string          `json:"title,omitempty"`
	RewardAmount    *decimal.Decimal `json:"rewardAmount,omitempty"`
	MaxParticipants *int             `json:"maxParticipants,omitempty" binding:"omitempty,gt=0"`
	Status          *StudyStatus     `json:"status,omitempty"`
	Metadata        *StudyMetadata   `json:"metadata,omitempty"`
}

// StudyContent is the generated draft returned by the content-generation helper.
type StudyContent struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Eligibility string `json:"eligibility"`
}
