package fake

import (
	"context"
	"fmt"
	"hash/fnv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Hani19000/ECOM-WATCH-Frontend-sub000/internal/integrations/shopapi"
	"github.com/Hani19000/ECOM-WATCH-Frontend-sub000/internal/models"
	"github.com/Hani19000/ECOM-WATCH-Frontend-sub000/internal/pricing"
)

// FakeClient — локальная заглушка витрины для разработки без backend'а.
// Статусы детерминированы по идентификатору заказа, деньги считает
// тем же локальным движком.
type FakeClient struct {
	mu     sync.Mutex
	orders map[string]*models.Order // by id
	byNum  map[string]*models.Order
	seq    int
}

func New() *FakeClient {
	return &FakeClient{
		orders: make(map[string]*models.Order),
		byNum:  make(map[string]*models.Order),
	}
}

func (f *FakeClient) CalculateShipping(ctx context.Context, req shopapi.ShippingCalcRequest) ([]shopapi.ShippingOption, error) {
	zone := pricing.ZoneFor(req.Country)
	var out []shopapi.ShippingOption
	for _, r := range pricing.RulesFor(zone) {
		cost := r.Base.Add(r.PerKg.Mul(decimalFromFloat(req.TotalWeight))).Round(2)
		free := r.FreeAbove != nil && decimalFromFloat(req.CartSubtotal).GreaterThanOrEqual(*r.FreeAbove)
		opt := shopapi.ShippingOption{
			Method:        string(r.Method),
			Label:         r.Label,
			Cost:          cost.InexactFloat64(),
			EstimatedDays: r.EstimatedDays,
		}
		if free {
			opt.Cost = 0
			opt.IsFree = true
		}
		out = append(out, opt)
	}
	return out, nil
}

func (f *FakeClient) TaxRate(ctx context.Context, country string) (float64, error) {
	return pricing.DefaultTaxRate(country), nil
}

func (f *FakeClient) CheckoutOrder(ctx context.Context, req shopapi.CheckoutRequest) (*models.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.seq++
	now := time.Now().UTC()
	o := &models.Order{
		ID:              uuid.NewString(),
		OrderNumber:     fmt.Sprintf("ORD-%d-%06d", now.Year(), f.seq),
		Status:          models.OrderStatusPending,
		Currency:        pricing.DefaultCurrency,
		ShippingAddress: &req.ShippingAddress,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	var items []models.CartItem
	for _, it := range req.Items {
		o.Items = append(o.Items, models.OrderItem{
			ProductID: it.ProductID,
			UnitPrice: it.UnitPrice,
			Quantity:  it.Quantity,
		})
		items = append(items, models.CartItem{ProductID: it.ProductID, UnitPrice: it.UnitPrice, Quantity: it.Quantity})
	}
	q := pricing.Compute(items, req.ShippingCountry, pricing.Method(req.ShippingMethod), pricing.DefaultTaxRate(req.ShippingCountry))
	o.TotalAmount = q.Total

	f.orders[o.ID] = o
	f.byNum[o.OrderNumber] = o
	return cloneOrder(o), nil
}

func (f *FakeClient) CreatePaymentSession(ctx context.Context, orderID, provider string) (string, error) {
	return fmt.Sprintf("https://pay.example.test/session/%s?provider=%s", orderID, provider), nil
}

func (f *FakeClient) PaymentStatus(ctx context.Context, orderID, email string) (string, error) {
	f.mu.Lock()
	o, ok := f.orders[orderID]
	f.mu.Unlock()
	if !ok {
		return "", shopapi.StatusError("GET /payments/status", 404)
	}
	if o.Status == models.OrderStatusPending {
		return "PENDING", nil
	}
	return "PAID", nil
}

func (f *FakeClient) GetOrder(ctx context.Context, orderID string) (*models.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	o, ok := f.orders[orderID]
	if !ok {
		return nil, shopapi.StatusError("GET /orders/:id", 404)
	}
	f.advance(o)
	return cloneOrder(o), nil
}

func (f *FakeClient) TrackGuestOrder(ctx context.Context, orderNumber, email string) (*models.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	o, ok := f.byNum[strings.ToUpper(orderNumber)]
	if !ok {
		return nil, shopapi.StatusError("POST /orders/track-guest", 404)
	}
	f.advance(o)
	return cloneOrder(o), nil
}

// advance двигает заказ по жизненному циклу на каждый опрос; часть заказов
// (по хэшу id) "застревает" в PROCESSING, чтобы потестить длинный поллинг.
func (f *FakeClient) advance(o *models.Order) {
	h := fnv.New32a()
	_, _ = h.Write([]byte(o.ID))
	sticky := h.Sum32()%5 == 0

	switch o.Status {
	case models.OrderStatusPending:
		o.Status = models.OrderStatusPaid
	case models.OrderStatusPaid:
		o.Status = models.OrderStatusProcessing
	case models.OrderStatusProcessing:
		if !sticky {
			o.Status = models.OrderStatusShipped
		}
	case models.OrderStatusShipped:
		o.Status = models.OrderStatusDelivered
	}
	o.UpdatedAt = time.Now().UTC()
}

func decimalFromFloat(v float64) decimal.Decimal { return decimal.NewFromFloat(v) }

func cloneOrder(o *models.Order) *models.Order {
	cp := *o
	cp.Items = append([]models.OrderItem(nil), o.Items...)
	if o.ShippingAddress != nil {
		addr := *o.ShippingAddress
		cp.ShippingAddress = &addr
	}
	return &cp
}
