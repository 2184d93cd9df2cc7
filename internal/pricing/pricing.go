// Package pricing is the local fallback for the server-side pricing engine.
// It must stay deterministic and numerically consistent with the server:
// full precision inside, rounding to 2 decimals only on the way out.
package pricing

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/Hani19000/ECOM-WATCH-Frontend-sub000/internal/models"
)

// DefaultUnitWeightKg подставляется товарам без веса в каталоге,
// чтобы расчёт не зависел от полноты данных.
const DefaultUnitWeightKg = 0.5

const DefaultCurrency = "EUR"

type ShippingQuote struct {
	Cost          float64 `json:"cost"`
	IsFree        bool    `json:"isFree"`
	Method        Method  `json:"method"`
	Label         string  `json:"label"`
	EstimatedDays string  `json:"estimatedDays"`
}

type TaxQuote struct {
	Amount float64 `json:"amount"`
	Rate   float64 `json:"rate"`
}

// Quote — результат расчёта корзины. total == subtotal + shipping + tax,
// все суммы уже округлены до 2 знаков.
type Quote struct {
	Subtotal float64       `json:"subtotal"`
	Shipping ShippingQuote `json:"shipping"`
	Tax      TaxQuote      `json:"tax"`
	Total    float64       `json:"total"`
	Currency string        `json:"currency"`
}

// Compute prices a cart for a destination country and shipping method.
// Pure function of its inputs: no clock, no randomness, no hidden state.
func Compute(items []models.CartItem, country string, method Method, taxRatePercent float64) Quote {
	subtotal := decimal.Zero
	weight := decimal.Zero
	defWeight := decimal.NewFromFloat(DefaultUnitWeightKg)

	for _, it := range items {
		qty := decimal.NewFromInt(int64(it.Quantity))
		subtotal = subtotal.Add(decimal.NewFromFloat(it.UnitPrice).Mul(qty))

		w := defWeight
		if it.Weight != nil {
			w = decimal.NewFromFloat(*it.Weight)
		}
		weight = weight.Add(w.Mul(qty))
	}

	rule := RuleFor(ZoneFor(country), method)

	cost := rule.Base.Add(rule.PerKg.Mul(weight))
	free := false
	if rule.FreeAbove != nil && subtotal.GreaterThanOrEqual(*rule.FreeAbove) {
		cost = decimal.Zero
		free = true
	}

	// Налог считается только с товаров, не с доставки.
	rate := decimal.NewFromFloat(taxRatePercent)
	tax := subtotal.Mul(rate).Div(decimal.NewFromInt(100))

	roundedSubtotal := subtotal.Round(2)
	roundedCost := cost.Round(2)
	roundedTax := tax.Round(2)
	total := roundedSubtotal.Add(roundedCost).Add(roundedTax)

	return Quote{
		Subtotal: roundedSubtotal.InexactFloat64(),
		Shipping: ShippingQuote{
			Cost:          roundedCost.InexactFloat64(),
			IsFree:        free,
			Method:        rule.Method,
			Label:         rule.Label,
			EstimatedDays: rule.EstimatedDays,
		},
		Tax: TaxQuote{
			Amount: roundedTax.InexactFloat64(),
			Rate:   taxRatePercent,
		},
		Total:    total.InexactFloat64(),
		Currency: DefaultCurrency,
	}
}

// TotalWeightKg mirrors the weight aggregation Compute does, for callers that
// need the weight alone (the shipping/calculate request wants it).
func TotalWeightKg(items []models.CartItem) float64 {
	weight := decimal.Zero
	defWeight := decimal.NewFromFloat(DefaultUnitWeightKg)
	for _, it := range items {
		w := defWeight
		if it.Weight != nil {
			w = decimal.NewFromFloat(*it.Weight)
		}
		weight = weight.Add(w.Mul(decimal.NewFromInt(int64(it.Quantity))))
	}
	return weight.InexactFloat64()
}

func normalizeCountry(country string) string {
	return strings.ToUpper(strings.TrimSpace(country))
}
