package tracking

import (
	"context"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/Hani19000/ECOM-WATCH-Frontend-sub000/internal/integrations/shopapi"
	"github.com/Hani19000/ECOM-WATCH-Frontend-sub000/internal/models"
)

type RateLimiter interface {
	Allow(ctx context.Context, key string, limit int64, window time.Duration) (bool, int64, error)
}

// GuestSearcher — ручной поиск заказа по номеру и email. Форматные проверки
// дублируют серверные и существуют только ради раннего отказа; сервер
// валидирует всё ещё раз.
type GuestSearcher struct {
	api Fetcher
	// rl опционален: локальный счётчик, чтобы упереться в лимит раньше,
	// чем сервер ответит 429.
	rl             RateLimiter
	limitPerMinute int64
}

func NewGuestSearcher(api Fetcher, rl RateLimiter, limitPerMinute int64) *GuestSearcher {
	if limitPerMinute <= 0 {
		limitPerMinute = 10
	}
	return &GuestSearcher{api: api, rl: rl, limitPerMinute: limitPerMinute}
}

// Search normalizes the inputs (order numbers are stored uppercase, emails
// lowercase), validates both formats and calls the guest lookup endpoint.
// A 429 comes back as KindRateLimited — "try again later", not "check your
// input".
func (g *GuestSearcher) Search(ctx context.Context, orderNumber, email string) (*models.Order, error) {
	orderNumber = strings.ToUpper(strings.TrimSpace(orderNumber))
	email = strings.ToLower(strings.TrimSpace(email))

	if !models.OrderNumberRe.MatchString(orderNumber) {
		return nil, shopapi.NewError(shopapi.KindValidation, "guest search",
			errors.Errorf("order number %q does not match ORD-YYYY-NNNNNN", orderNumber))
	}
	if !models.EmailRe.MatchString(email) {
		return nil, shopapi.NewError(shopapi.KindValidation, "guest search",
			errors.New("invalid email"))
	}

	if g.rl != nil {
		// Окно на каждого вызывающего (по нормализованному email), чтобы
		// один перебор номеров не выедал лимит остальным.
		allowed, _, err := g.rl.Allow(ctx, lookupKey(email), g.limitPerMinute, time.Minute)
		if err == nil && !allowed {
			return nil, shopapi.NewError(shopapi.KindRateLimited, "guest search",
				errors.New("too many lookups, try again later"))
		}
		// Ошибка самого счётчика запрос не блокирует.
	}

	return g.api.TrackGuestOrder(ctx, orderNumber, email)
}

func lookupKey(email string) string {
	return "rl:guest_lookup:" + email
}
