package payments

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"research-fi.backend/internal/domain/entities"
)

// SessionStore is the payment-session ledger. Create locks the budget,
// Credit moves part of it to a participant, Settle closes the session once
// and returns the payout tx hash.
type SessionStore interface {
	Create(ctx context.Context, studyID uuid.UUID, researcherAddress string, amount decimal.Decimal) (string, error)
	Credit(ctx context.Context, sessionID, participantAddress string, amount decimal.Decimal) error
	Balances(ctx context.Context, sessionID string) (*entities.PaymentSession, error)
	Settle(ctx context.Context, sessionID string) (string, error)
}

var (
	_ SessionStore = (*MemoryStore)(nil)
	_ SessionStore = (*RedisStore)(nil)
)
