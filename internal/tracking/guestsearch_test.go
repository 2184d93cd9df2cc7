package tracking

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Hani19000/ECOM-WATCH-Frontend-sub000/internal/integrations/shopapi"
	"github.com/Hani19000/ECOM-WATCH-Frontend-sub000/internal/models"
)

type recordingAPI struct {
	fakeAPI
	mu2        sync.Mutex
	lastNumber string
	lastEmail  string
}

func (r *recordingAPI) TrackGuestOrder(ctx context.Context, orderNumber, email string) (*models.Order, error) {
	r.mu2.Lock()
	r.lastNumber, r.lastEmail = orderNumber, email
	r.mu2.Unlock()
	return r.fakeAPI.TrackGuestOrder(ctx, orderNumber, email)
}

func TestGuestSearch_NormalizesLowercaseOrderNumber(t *testing.T) {
	api := &recordingAPI{fakeAPI: fakeAPI{statuses: []string{models.OrderStatusPaid}}}
	g := NewGuestSearcher(api, nil, 0)

	o, err := g.Search(context.Background(), " ord-2024-123456 ", " Guest@Example.FR ")
	require.NoError(t, err)
	require.NotNil(t, o)
	require.Equal(t, "ORD-2024-123456", api.lastNumber)
	require.Equal(t, "guest@example.fr", api.lastEmail)
}

func TestGuestSearch_RejectsBadFormatsBeforeNetwork(t *testing.T) {
	api := &recordingAPI{fakeAPI: fakeAPI{statuses: []string{models.OrderStatusPaid}}}
	g := NewGuestSearcher(api, nil, 0)

	_, err := g.Search(context.Background(), "ORDER-42", "a@b.fr")
	require.Error(t, err)
	require.Equal(t, shopapi.KindValidation, shopapi.KindOf(err))

	_, err = g.Search(context.Background(), "ORD-2024-123456", "white space@b.fr")
	require.Error(t, err)
	require.Equal(t, shopapi.KindValidation, shopapi.KindOf(err))

	_, guestCalls := api.calls()
	require.Zero(t, guestCalls)
}

type recRL struct {
	mu   sync.Mutex
	keys []string
}

func (r *recRL) Allow(ctx context.Context, key string, limit int64, window time.Duration) (bool, int64, error) {
	r.mu.Lock()
	r.keys = append(r.keys, key)
	r.mu.Unlock()
	return true, 1, nil
}

func TestGuestSearch_RateLimitKeyedPerCaller(t *testing.T) {
	api := &recordingAPI{fakeAPI: fakeAPI{statuses: []string{models.OrderStatusPaid}}}
	rl := &recRL{}
	g := NewGuestSearcher(api, rl, 5)

	_, err := g.Search(context.Background(), "ORD-2024-123456", " Alice@Example.FR ")
	require.NoError(t, err)
	_, err = g.Search(context.Background(), "ORD-2024-123456", "bob@example.fr")
	require.NoError(t, err)

	rl.mu.Lock()
	defer rl.mu.Unlock()
	require.Equal(t, []string{
		"rl:guest_lookup:alice@example.fr",
		"rl:guest_lookup:bob@example.fr",
	}, rl.keys)
}

type denyRL struct{}

func (denyRL) Allow(ctx context.Context, key string, limit int64, window time.Duration) (bool, int64, error) {
	return false, limit + 1, nil
}

func TestGuestSearch_LocalRateLimit(t *testing.T) {
	api := &recordingAPI{fakeAPI: fakeAPI{statuses: []string{models.OrderStatusPaid}}}
	g := NewGuestSearcher(api, denyRL{}, 5)

	_, err := g.Search(context.Background(), "ORD-2024-123456", "a@b.fr")
	require.Error(t, err)
	require.True(t, shopapi.IsRateLimited(err))

	_, guestCalls := api.calls()
	require.Zero(t, guestCalls)
}

func TestGuestSearch_Server429IsRateLimited(t *testing.T) {
	api := &fakeAPI{err: shopapi.StatusError("POST /orders/track-guest", 429)}
	g := NewGuestSearcher(api, nil, 0)

	_, err := g.Search(context.Background(), "ORD-2024-123456", "a@b.fr")
	require.Error(t, err)
	require.True(t, shopapi.IsRateLimited(err))
}

func TestGuestSearch_NotFoundDistinctFromRateLimit(t *testing.T) {
	api := &fakeAPI{err: shopapi.StatusError("POST /orders/track-guest", 404)}
	g := NewGuestSearcher(api, nil, 0)

	_, err := g.Search(context.Background(), "ORD-2024-123456", "a@b.fr")
	require.Error(t, err)
	require.True(t, shopapi.IsNotFound(err))
	require.False(t, shopapi.IsRateLimited(err))
}
