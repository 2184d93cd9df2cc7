package guestorders

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/require"

	"github.com/Hani19000/ECOM-WATCH-Frontend-sub000/internal/models"
)

func rec(num string) models.GuestOrderRecord {
	return models.GuestOrderRecord{
		ID:          "id-" + num,
		OrderNumber: num,
		Email:       "client@example.fr",
		Status:      models.OrderStatusPending,
		TotalAmount: 60.4,
	}
}

func TestStore_AddListRemove(t *testing.T) {
	mr := miniredis.RunT(t)
	s := New(mr.Addr())
	ctx := context.Background()

	require.NoError(t, s.Add(ctx, rec("ORD-2024-000001")))
	require.NoError(t, s.Add(ctx, rec("ORD-2024-000002")))

	list, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	// Новые записи сверху.
	require.Equal(t, "ORD-2024-000002", list[0].OrderNumber)

	require.NoError(t, s.Remove(ctx, "ORD-2024-000002"))
	list, err = s.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Equal(t, "ORD-2024-000001", list[0].OrderNumber)
}

func TestStore_AddNormalizesAndDedupes(t *testing.T) {
	mr := miniredis.RunT(t)
	s := New(mr.Addr())
	ctx := context.Background()

	r := rec("ord-2024-000001")
	r.Email = " Client@Example.FR "
	require.NoError(t, s.Add(ctx, r))
	require.NoError(t, s.Add(ctx, rec("ORD-2024-000001")))

	list, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Equal(t, "ORD-2024-000001", list[0].OrderNumber)

	found, err := s.FindByNumber(ctx, "ord-2024-000001")
	require.NoError(t, err)
	require.NotNil(t, found)
	require.Equal(t, "client@example.fr", found.Email)
}

func TestStore_FindByLocalID(t *testing.T) {
	mr := miniredis.RunT(t)
	s := New(mr.Addr())
	ctx := context.Background()

	require.NoError(t, s.Add(ctx, rec("ORD-2024-000001")))

	found, err := s.FindByNumber(ctx, "id-ORD-2024-000001")
	require.NoError(t, err)
	require.NotNil(t, found)

	missing, err := s.FindByNumber(ctx, "ORD-2024-999999")
	require.NoError(t, err)
	require.Nil(t, missing)
}

func TestStore_UpdateStatus(t *testing.T) {
	mr := miniredis.RunT(t)
	s := New(mr.Addr())
	ctx := context.Background()

	require.NoError(t, s.Add(ctx, rec("ORD-2024-000001")))

	var calls atomic.Int32
	s.Subscribe(func() { calls.Add(1) })

	require.NoError(t, s.UpdateStatus(ctx, "ORD-2024-000001", models.OrderStatusShipped))
	found, err := s.FindByNumber(ctx, "ORD-2024-000001")
	require.NoError(t, err)
	require.Equal(t, models.OrderStatusShipped, found.Status)
	require.Equal(t, int32(1), calls.Load())

	// Тот же статус — без записи и без события.
	require.NoError(t, s.UpdateStatus(ctx, "ORD-2024-000001", models.OrderStatusShipped))
	require.Equal(t, int32(1), calls.Load())
}

func TestStore_CrossProcessNotification(t *testing.T) {
	mr := miniredis.RunT(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	writer := New(mr.Addr())
	reader := New(mr.Addr())

	notified := make(chan struct{}, 1)
	reader.Subscribe(func() {
		select {
		case notified <- struct{}{}:
		default:
		}
	})
	go func() { _ = reader.Listen(ctx) }()

	// Подписка поднимается асинхронно.
	time.Sleep(50 * time.Millisecond)

	require.NoError(t, writer.Add(ctx, rec("ORD-2024-000001")))

	select {
	case <-notified:
	case <-time.After(2 * time.Second):
		t.Fatal("no cross-process change notification")
	}

	list, err := reader.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
}

func TestStore_ClearEmptiesList(t *testing.T) {
	mr := miniredis.RunT(t)
	s := New(mr.Addr())
	ctx := context.Background()

	require.NoError(t, s.Add(ctx, rec("ORD-2024-000001")))
	require.NoError(t, s.Clear(ctx))

	list, err := s.List(ctx)
	require.NoError(t, err)
	require.Empty(t, list)
}
