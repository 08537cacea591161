package payments

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"research-fi.backend/internal/domain/entities"
	domainerrors "research-fi.backend/internal/domain/errors"
)

// MemoryStore is the demo session ledger: process-local, non-durable.
// Balance mutations are read-modify-write, so every operation holds the
// store lock.
type MemoryStore struct {
	mu       sync.Mutex
	sessions map[string]*entities.PaymentSession
}

// NewMemoryStore creates a new in-memory session ledger
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string]*entities.PaymentSession)}
}

func newSessionID(studyID uuid.UUID) string {
	return fmt.Sprintf("yellow-demo-%s-%s",
		studyID.String()[:8],
		strconv.FormatInt(time.Now().UnixNano(), 36),
	)
}

func newTxHash() string {
	return fmt.Sprintf("0x%064x", time.Now().UnixNano())
}

// Create locks the budget in a fresh session and returns its id.
func (s *MemoryStore) Create(ctx context.Context, studyID uuid.UUID, researcherAddress string, amount decimal.Decimal) (string, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return "", domainerrors.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	session := &entities.PaymentSession{
		ID:                newSessionID(studyID),
		StudyID:           studyID,
		ResearcherAddress: researcherAddress,
		Balance:           amount,
		Credits:           make(map[string]decimal.Decimal),
		CreatedAt:         time.Now(),
	}
	s.sessions[session.ID] = session
	return session.ID, nil
}

// Credit moves amount from the researcher balance to the participant ledger
// entry. Credits are additive and can never exceed the locked balance.
func (s *MemoryStore) Credit(ctx context.Context, sessionID, participantAddress string, amount decimal.Decimal) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[sessionID]
	if !ok {
		return domainerrors.ErrNotFound
	}
	if session.Settled {
		return domainerrors.ErrSessionSettled
	}
	if session.Balance.LessThan(amount) {
		return domainerrors.ErrInsufficientFunds
	}

	session.Balance = session.Balance.Sub(amount)
	session.Credits[participantAddress] = session.Credits[participantAddress].Add(amount)
	return nil
}

// Balances returns a copy of the session state for display.
func (s *MemoryStore) Balances(ctx context.Context, sessionID string) (*entities.PaymentSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[sessionID]
	if !ok {
		return nil, domainerrors.ErrNotFound
	}
	return session.Clone(), nil
}

// Settle produces the payout transaction hash and closes the session.
// Settlement is irreversible and one-shot; a second call fails.
func (s *MemoryStore) Settle(ctx context.Context, sessionID string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[sessionID]
	if !ok {
		return "", domainerrors.ErrNotFound
	}
	if session.Settled {
		return "", domainerrors.ErrSessionSettled
	}

	session.Settled = true
	session.TxHash = newTxHash()
	return session.TxHash, nil
}
