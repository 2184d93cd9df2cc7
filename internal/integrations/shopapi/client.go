package shopapi

import (
	"context"

	"github.com/Hani19000/ECOM-WATCH-Frontend-sub000/internal/models"
)

type ShippingOption struct {
	Method        string  `json:"method"`
	Label         string  `json:"label"`
	Cost          float64 `json:"cost"`
	IsFree        bool    `json:"isFree"`
	EstimatedDays string  `json:"estimatedDays"`
}

type ShippingCalcRequest struct {
	Country      string  `json:"country"`
	TotalWeight  float64 `json:"totalWeight"`
	CartSubtotal float64 `json:"cartSubtotal"`
}

type CheckoutItem struct {
	ProductID string  `json:"productId"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unitPrice"`
}

type CheckoutRequest struct {
	Items           []CheckoutItem  `json:"items"`
	ShippingAddress models.Address  `json:"shippingAddress"`
	ShippingMethod  string          `json:"shippingMethod"`
	ShippingCountry string          `json:"shippingCountry"`
	TaxCategory     string          `json:"taxCategory"`
	Email           string          `json:"email"`
}

// Client — витрина backend'а. Владелец эндпоинтов — сервер,
// здесь только контракт потребителя.
type Client interface {
	// CalculateShipping is auth-optional: a 401 only means "live options not
	// available for this caller" and comes back as KindAuthRequired.
	CalculateShipping(ctx context.Context, req ShippingCalcRequest) ([]ShippingOption, error)
	TaxRate(ctx context.Context, country string) (float64, error)

	CheckoutOrder(ctx context.Context, req CheckoutRequest) (*models.Order, error)
	CreatePaymentSession(ctx context.Context, orderID, provider string) (string, error)
	PaymentStatus(ctx context.Context, orderID, email string) (string, error)

	// GetOrder and TrackGuestOrder are mutually exclusive identity paths:
	// GetOrder wants a Bearer token, TrackGuestOrder must be called without one.
	GetOrder(ctx context.Context, orderID string) (*models.Order, error)
	TrackGuestOrder(ctx context.Context, orderNumber, email string) (*models.Order, error)
}
