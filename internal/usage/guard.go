package usage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/priceworks/discount-engine/pkg/redis"
)

const guardScope = "order:applied"

// Guard tracks which (order, rule) pairs already had their usage recorded,
// using Redis SETNX with a TTL. A repeated order-completion signal for the
// same pair is detected and skipped.
type Guard struct {
	store redis.IdempotencyStore
	ttl   time.Duration
}

// NewGuard builds the idempotency guard for usage recording.
func NewGuard(store redis.IdempotencyStore, ttl time.Duration) (*Guard, error) {
	if store == nil {
		return nil, errors.New("idempotency store is required")
	}
	if ttl < 0 {
		return nil, errors.New("ttl must be non-negative")
	}
	return &Guard{
		store: store,
		ttl:   ttl,
	}, nil
}

// CheckAndMark returns true when the pair was already recorded and otherwise
// marks it with the configured TTL.
func (g *Guard) CheckAndMark(ctx context.Context, orderID, ruleID uuid.UUID) (bool, error) {
	key, err := g.pairKey(orderID, ruleID)
	if err != nil {
		return false, err
	}
	set, err := g.store.SetNX(ctx, key, "1", g.ttl)
	if err != nil {
		return false, err
	}
	return !set, nil
}

// Release removes the mark so a later signal can record the pair again,
// used when the increment itself failed after marking.
func (g *Guard) Release(ctx context.Context, orderID, ruleID uuid.UUID) error {
	key, err := g.pairKey(orderID, ruleID)
	if err != nil {
		return err
	}
	return g.store.Del(ctx, key)
}

func (g *Guard) pairKey(orderID, ruleID uuid.UUID) (string, error) {
	if orderID == uuid.Nil {
		return "", errors.New("order id is required")
	}
	if ruleID == uuid.Nil {
		return "", errors.New("rule id is required")
	}
	return g.store.IdempotencyKey(guardScope, fmt.Sprintf("%s:%s", orderID, ruleID)), nil
}
