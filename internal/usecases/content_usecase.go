package usecases

import (
	"context"
	"strings"

	"research-fi.backend/internal/domain/entities"
	domainerrors "research-fi.backend/internal/domain/errors"
)

// ContentUsecase wraps the content generator with input validation.
type ContentUsecase struct {
	generator ContentGenerator
}

// NewContentUsecase creates a new content usecase
func NewContentUsecase(generator ContentGenerator) *ContentUsecase {
	return &ContentUsecase{generator: generator}
}

// Generate drafts a study listing (title, description, eligibility) for the
// given topic. Generation is a hard dependency here: no key, no draft.
func (u *ContentUsecase) Generate(ctx context.Context, topic string) (*entities.StudyContent, error) {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return nil, domainerrors.BadRequest("topic is required")
	}
	if u.generator == nil || !u.generator.Configured() {
		return nil, domainerrors.ErrNotConfigured
	}
	return u.generator.GenerateStudyContent(ctx, topic)
}
