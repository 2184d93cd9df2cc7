// Package guestorders keeps the local list of orders placed without an
// account. The list is a cached snapshot, not a source of truth: tracking
// updates it, claim-sync and the user remove from it.
package guestorders

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"

	"github.com/Hani19000/ECOM-WATCH-Frontend-sub000/internal/models"
)

const (
	ordersKey     = "guest_orders"
	changeChannel = "guest_orders:changed"
)

// Store — один изменяемый разделяемый ресурс подсистемы. Все мутации —
// last-writer-wins перезапись всего списка; подписчики перечитывают,
// а не патчат.
type Store struct {
	c *redis.Client

	// instanceID отличает свои publish'и от чужих: локальные подписчики
	// зовутся напрямую, канал нужен для других процессов.
	instanceID string

	subMu sync.Mutex
	subs  []func()
}

func New(addr string) *Store {
	return NewWithClient(redis.NewClient(&redis.Options{Addr: addr}))
}

func NewWithClient(c *redis.Client) *Store {
	return &Store{c: c, instanceID: uuid.NewString()}
}

func (s *Store) List(ctx context.Context) ([]models.GuestOrderRecord, error) {
	b, err := s.c.Get(ctx, ordersKey).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "redis get guest orders")
	}
	var out []models.GuestOrderRecord
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, errors.Wrap(err, "unmarshal guest orders")
	}
	return out, nil
}

// Add вставляет запись в начало списка; повторный номер заказа
// перезаписывает существующую запись.
func (s *Store) Add(ctx context.Context, rec models.GuestOrderRecord) error {
	rec.OrderNumber = strings.ToUpper(strings.TrimSpace(rec.OrderNumber))
	rec.Email = strings.ToLower(strings.TrimSpace(rec.Email))
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}

	list, err := s.List(ctx)
	if err != nil {
		return err
	}
	next := make([]models.GuestOrderRecord, 0, len(list)+1)
	next = append(next, rec)
	for _, r := range list {
		if r.OrderNumber == rec.OrderNumber {
			continue
		}
		next = append(next, r)
	}
	return s.write(ctx, next)
}

func (s *Store) FindByNumber(ctx context.Context, orderNumber string) (*models.GuestOrderRecord, error) {
	orderNumber = strings.ToUpper(strings.TrimSpace(orderNumber))
	list, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range list {
		if list[i].OrderNumber == orderNumber || list[i].ID == orderNumber {
			return &list[i], nil
		}
	}
	return nil, nil
}

// UpdateStatus фиксирует новый статус, замеченный трекингом. Запись без
// изменений не перезаписывается и событий не порождает.
func (s *Store) UpdateStatus(ctx context.Context, orderNumber, status string) error {
	orderNumber = strings.ToUpper(strings.TrimSpace(orderNumber))
	list, err := s.List(ctx)
	if err != nil {
		return err
	}
	changed := false
	for i := range list {
		if list[i].OrderNumber == orderNumber && list[i].Status != status {
			list[i].Status = status
			changed = true
		}
	}
	if !changed {
		return nil
	}
	return s.write(ctx, list)
}

func (s *Store) Remove(ctx context.Context, orderNumber string) error {
	return s.RemoveMany(ctx, []string{orderNumber})
}

func (s *Store) RemoveMany(ctx context.Context, orderNumbers []string) error {
	drop := make(map[string]struct{}, len(orderNumbers))
	for _, n := range orderNumbers {
		drop[strings.ToUpper(strings.TrimSpace(n))] = struct{}{}
	}

	list, err := s.List(ctx)
	if err != nil {
		return err
	}
	next := list[:0]
	removed := false
	for _, r := range list {
		if _, ok := drop[r.OrderNumber]; ok {
			removed = true
			continue
		}
		next = append(next, r)
	}
	if !removed {
		return nil
	}
	return s.write(ctx, next)
}

func (s *Store) Clear(ctx context.Context) error {
	if err := s.c.Del(ctx, ordersKey).Err(); err != nil {
		return errors.Wrap(err, "redis del guest orders")
	}
	s.notify(ctx)
	return nil
}

func (s *Store) write(ctx context.Context, list []models.GuestOrderRecord) error {
	b, err := json.Marshal(list)
	if err != nil {
		return errors.Wrap(err, "marshal guest orders")
	}
	// Без TTL: список живёт, пока его не заберёт claim-sync или пользователь.
	if err := s.c.Set(ctx, ordersKey, b, 0).Err(); err != nil {
		return errors.Wrap(err, "redis set guest orders")
	}
	s.notify(ctx)
	return nil
}

// Subscribe registers a callback fired after every store change, local or
// from another process. Callbacks must re-read the list, never merge.
func (s *Store) Subscribe(fn func()) {
	s.subMu.Lock()
	s.subs = append(s.subs, fn)
	s.subMu.Unlock()
}

func (s *Store) notify(ctx context.Context) {
	s.fanout()
	msg, _ := json.Marshal(changeMessage{Sender: s.instanceID})
	if err := s.c.Publish(ctx, changeChannel, msg).Err(); err != nil {
		slog.Warn("publish guest orders change", "error", err.Error())
	}
}

func (s *Store) fanout() {
	s.subMu.Lock()
	subs := append([]func(){}, s.subs...)
	s.subMu.Unlock()
	for _, fn := range subs {
		fn()
	}
}

type changeMessage struct {
	Sender string `json:"sender"`
}

// Listen consumes cross-process change notifications until ctx is cancelled.
// Own publishes are skipped: local subscribers were already called directly.
func (s *Store) Listen(ctx context.Context) error {
	sub := s.c.Subscribe(ctx, changeChannel)
	defer sub.Close()

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case m, ok := <-ch:
			if !ok {
				return nil
			}
			var cm changeMessage
			if err := json.Unmarshal([]byte(m.Payload), &cm); err == nil && cm.Sender == s.instanceID {
				continue
			}
			s.fanout()
		}
	}
}
