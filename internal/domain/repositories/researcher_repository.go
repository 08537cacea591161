package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
	"research-fi.backend/internal/domain/entities"
)

// ResearcherRepository defines researcher data operations
type ResearcherRepository interface {
	// Upsert creates the researcher on first sight of the wallet and refreshes
	// the ENS name on subsequent calls.
	Upsert(ctx context.Context, wallet string, ensName null.String) (*entities.Researcher, error)
	GetByWallet(ctx context.Context, wallet string) (*entities.Researcher, error)
	GetByIDs(ctx context.Context, ids []uuid.UUID) ([]*entities.Researcher, error)
	Count(ctx context.Context) (int64, error)
}

// ParticipantRepository defines participant data operations
type ParticipantRepository interface {
	Create(ctx context.Context, participant *entities.Participant) error
	GetByWallet(ctx context.Context, wallet string) (*entities.Participant, error)
	GetByIDs(ctx context.Context, ids []uuid.UUID) ([]*entities.Participant, error)
	Count(ctx context.Context) (int64, error)
}

// ProfileRepository defines profile data operations
type ProfileRepository interface {
	GetByWallet(ctx context.Context, wallet string) (*entities.Profile, error)
	Upsert(ctx context.Context, profile *entities.Profile) error
}
