// Package claimsync reconciles the local guest order list with what the
// backend claimed for the account at login/registration time.
package claimsync

import (
	"context"
	"log/slog"

	"github.com/Hani19000/ECOM-WATCH-Frontend-sub000/internal/models"
)

type GuestStore interface {
	List(ctx context.Context) ([]models.GuestOrderRecord, error)
	RemoveMany(ctx context.Context, orderNumbers []string) error
	Clear(ctx context.Context) error
}

// ClaimReport — что сервер сообщил после логина: либо конкретные номера,
// либо только количество привязанных заказов.
type ClaimReport struct {
	OrderNumbers []string
	Count        int
}

type Syncer struct {
	store GuestStore
}

func New(store GuestStore) *Syncer {
	return &Syncer{store: store}
}

// Sync вызывается один раз на успешный логин/регистрацию. Номера известны —
// убираем ровно их; известен только счётчик — чистим весь список: протухшая
// гостевая запись хуже, чем пустой список, который наполнится заново.
func (s *Syncer) Sync(ctx context.Context, rep ClaimReport) error {
	if len(rep.OrderNumbers) > 0 {
		slog.Info("claim sync: removing claimed guest orders", "count", len(rep.OrderNumbers))
		return s.store.RemoveMany(ctx, rep.OrderNumbers)
	}
	if rep.Count > 0 {
		slog.Info("claim sync: count-only report, clearing guest store", "claimed", rep.Count)
		return s.store.Clear(ctx)
	}
	return nil
}
