package models

import (
	"regexp"
	"time"
)

// Статусы заказа — зеркало серверного enum, клиент их только читает.
const (
	OrderStatusPending    = "PENDING"
	OrderStatusPaid       = "PAID"
	OrderStatusProcessing = "PROCESSING"
	OrderStatusShipped    = "SHIPPED"
	OrderStatusDelivered  = "DELIVERED"
	OrderStatusCancelled  = "CANCELLED"
	OrderStatusRefunded   = "REFUNDED"
)

var orderStatuses = map[string]struct{}{
	OrderStatusPending:    {},
	OrderStatusPaid:       {},
	OrderStatusProcessing: {},
	OrderStatusShipped:    {},
	OrderStatusDelivered:  {},
	OrderStatusCancelled:  {},
	OrderStatusRefunded:   {},
}

func ValidOrderStatus(s string) bool {
	_, ok := orderStatuses[s]
	return ok
}

// ActiveStatus — пока заказ в одном из этих статусов, трекинг продолжает опрос.
func ActiveStatus(s string) bool {
	switch s {
	case OrderStatusPending, OrderStatusPaid, OrderStatusProcessing, OrderStatusShipped:
		return true
	}
	return false
}

// TerminalStatus — дальше состояние меняться не будет, опрос останавливаем.
func TerminalStatus(s string) bool {
	switch s {
	case OrderStatusDelivered, OrderStatusCancelled, OrderStatusRefunded:
		return true
	}
	return false
}

// OrderNumberRe — формат ORD-YYYY-NNNNNN (тот же паттерн проверяет сервер).
var OrderNumberRe = regexp.MustCompile(`^ORD-\d{4}-\d{6}$`)

// EmailRe намеренно простой: наличие @ и точки в домене, без пробелов.
var EmailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

type Order struct {
	ID            string
	OrderNumber   string
	Status        string
	TotalAmount   float64
	Currency      string
	Items         []OrderItem
	ShippingAddress *Address
	// OwnerID == nil means a guest order.
	OwnerID   *string
	CreatedAt time.Time
	UpdatedAt time.Time
}

type OrderItem struct {
	ProductID string
	Name      string
	UnitPrice float64
	Quantity  int
	// Weight is per unit, in kilograms. Nil when the catalogue does not declare one.
	Weight *float64
}

type Address struct {
	FirstName  string
	LastName   string
	Line1      string
	Line2      string
	City       string
	PostalCode string
	Country    string
}

type CartItem struct {
	ProductID string
	Name      string
	UnitPrice float64
	Quantity  int
	Weight    *float64
}

// GuestOrderRecord — локальный снимок заказа, оформленного без аккаунта.
// Не источник истины: обновляется трекингом, удаляется claim-sync'ом.
type GuestOrderRecord struct {
	ID          string    `json:"id"`
	OrderNumber string    `json:"orderNumber"`
	Email       string    `json:"email"`
	Status      string    `json:"status"`
	TotalAmount float64   `json:"totalAmount"`
	CreatedAt   time.Time `json:"createdAt"`
}

// PendingOrder — короткоживущая сессионная метка, ставится при submit'е
// и потребляется payment-result флоу ровно один раз.
type PendingOrder struct {
	OrderID string `json:"orderId"`
	Email   string `json:"email"`
}
