package usecases

import (
	"context"

	"research-fi.backend/internal/domain/entities"
)

// MetadataStore pins study metadata blobs and fetches them back by CID.
// An unconfigured store returns ErrNotConfigured; callers degrade gracefully.
type MetadataStore interface {
	Configured() bool
	Upload(ctx context.Context, metadata *entities.StudyMetadata) (string, error)
	Get(ctx context.Context, cid string) (*entities.StudyMetadata, error)
}

// ContentGenerator drafts study listing content from a topic.
type ContentGenerator interface {
	Configured() bool
	GenerateStudyContent(ctx context.Context, topic string) (*entities.StudyContent, error)
}

// PendingActionStore remembers the action a wallet was blocked from by the
// profile gate. Consume returns nil when nothing is pending; a returned
// action is cleared and will not be returned again.
type PendingActionStore interface {
	Record(ctx context.Context, wallet string, action *entities.PendingAction) error
	Consume(ctx context.Context, wallet string) (*entities.PendingAction, error)
}
