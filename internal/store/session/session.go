// Package session keeps the short-lived pending-order marker written at
// checkout submission and consumed once by the payment-result flow.
package session

import (
	"context"
	"encoding/json"
	"time"

	"github.com/pkg/errors"

	"github.com/Hani19000/ECOM-WATCH-Frontend-sub000/internal/cache"
	"github.com/Hani19000/ECOM-WATCH-Frontend-sub000/internal/models"
)

const pendingKey = "session:pending_order"

const DefaultTTL = 30 * time.Minute

type Store struct {
	cache cache.BytesCache
	ttl   time.Duration
}

func New(c cache.BytesCache, ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Store{cache: c, ttl: ttl}
}

func (s *Store) PutPending(ctx context.Context, p models.PendingOrder) error {
	b, err := json.Marshal(p)
	if err != nil {
		return errors.Wrap(err, "marshal pending order")
	}
	return s.cache.Set(ctx, pendingKey, b, s.ttl)
}

// PeekPending читает метку, не снимая её.
func (s *Store) PeekPending(ctx context.Context) (*models.PendingOrder, error) {
	b, ok, err := s.cache.Get(ctx, pendingKey)
	if err != nil || !ok {
		return nil, err
	}
	var p models.PendingOrder
	if err := json.Unmarshal(b, &p); err != nil {
		return nil, errors.Wrap(err, "unmarshal pending order")
	}
	return &p, nil
}

// TakePending reads and clears the marker in one step: the payment-result
// flow must consume it exactly once.
func (s *Store) TakePending(ctx context.Context) (*models.PendingOrder, error) {
	p, err := s.PeekPending(ctx)
	if err != nil || p == nil {
		return nil, err
	}
	if err := s.cache.Del(ctx, pendingKey); err != nil {
		return nil, err
	}
	return p, nil
}
