package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"research-fi.backend/internal/domain/entities"
)

// ActionStore keeps the pending action a wallet was blocked from by the
// profile gate. One action per wallet; recording overwrites, consuming
// deletes. Entries expire so abandoned flows don't linger.
type ActionStore struct {
	ttl time.Duration
}

var (
	setActionValue = Set
	getActionValue = Get
	delActionValue = Del
)

// NewActionStore creates a new pending-action store.
func NewActionStore(ttl time.Duration) *ActionStore {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &ActionStore{ttl: ttl}
}

func actionKey(wallet string) string {
	return "pending-action:" + wallet
}

// Record stores the wallet's pending action, replacing any previous one.
func (s *ActionStore) Record(ctx context.Context, wallet string, action *entities.PendingAction) error {
	data, err := json.Marshal(action)
	if err != nil {
		return err
	}
	return setActionValue(ctx, actionKey(wallet), data, s.ttl)
}

// Consume returns the wallet's pending action and clears it. Nil when
// nothing is pending.
func (s *ActionStore) Consume(ctx context.Context, wallet string) (*entities.PendingAction, error) {
	raw, err := getActionValue(ctx, actionKey(wallet))
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	var action entities.PendingAction
	if err := json.Unmarshal([]byte(raw), &action); err != nil {
		return nil, err
	}

	if err := delActionValue(ctx, actionKey(wallet)); err != nil {
		return nil, err
	}
	return &action, nil
}
