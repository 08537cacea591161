package payments

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"research-fi.backend/internal/domain/entities"
	domainerrors "research-fi.backend/internal/domain/errors"
	"research-fi.backend/pkg/redis"
)

const sessionKeyPrefix = "funding-session:"

// RedisStore keeps session state in Redis so the ledger survives a process
// restart. Read-modify-write cycles are serialized with a process-local
// mutex; this instance must be the only writer for its keys.
type RedisStore struct {
	mu  sync.Mutex
	ttl time.Duration
}

// NewRedisStore creates a Redis-backed session ledger. A zero ttl keeps
// sessions until explicitly deleted.
func NewRedisStore(ttl time.Duration) *RedisStore {
	return &RedisStore{ttl: ttl}
}

func (s *RedisStore) load(ctx context.Context, sessionID string) (*entities.PaymentSession, error) {
	raw, err := redis.Get(ctx, sessionKeyPrefix+sessionID)
	if err != nil {
		return nil, domainerrors.ErrNotFound
	}
	var session entities.PaymentSession
	if err := json.Unmarshal([]byte(raw), &session); err != nil {
		return nil, err
	}
	if session.Credits == nil {
		session.Credits = make(map[string]decimal.Decimal)
	}
	return &session, nil
}

func (s *RedisStore) save(ctx context.Context, session *entities.PaymentSession) error {
	raw, err := json.Marshal(session)
	if err != nil {
		return err
	}
	return redis.Set(ctx, sessionKeyPrefix+session.ID, raw, s.ttl)
}

// Create locks the budget in a fresh session and returns its id.
func (s *RedisStore) Create(ctx context.Context, studyID uuid.UUID, researcherAddress string, amount decimal.Decimal) (string, error) {
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
	if err := s.save(ctx, session); err != nil {
		return "", err
	}
	return session.ID, nil
}

// Credit moves amount from the researcher balance to the participant ledger entry.
func (s *RedisStore) Credit(ctx context.Context, sessionID, participantAddress string, amount decimal.Decimal) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, err := s.load(ctx, sessionID)
	if err != nil {
		return err
	}
	if session.Settled {
		return domainerrors.ErrSessionSettled
	}
	if session.Balance.LessThan(amount) {
		return domainerrors.ErrInsufficientFunds
	}

	session.Balance = session.Balance.Sub(amount)
	session.Credits[participantAddress] = session.Credits[participantAddress].Add(amount)
	return s.save(ctx, session)
}

// Balances returns the session state for display.
func (s *RedisStore) Balances(ctx context.Context, sessionID string) (*entities.PaymentSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(ctx, sessionID)
}

// Settle produces the payout transaction hash and closes the session.
func (s *RedisStore) Settle(ctx context.Context, sessionID string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, err := s.load(ctx, sessionID)
	if err != nil {
		return "", err
	}
	if session.Settled {
		return "", domainerrors.ErrSessionSettled
	}

	session.Settled = true
	session.TxHash = newTxHash()
	if err := s.save(ctx, session); err != nil {
		return "", err
	}
	return session.TxHash, nil
}
