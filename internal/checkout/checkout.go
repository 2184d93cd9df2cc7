// Package checkout composes cart contents, the address form, the remote
// pricing endpoints and the local fallback engine into one live quote, and
// drives order submission into a payment redirect.
package checkout

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"github.com/pkg/errors"

	"github.com/Hani19000/ECOM-WATCH-Frontend-sub000/internal/auth"
	"github.com/Hani19000/ECOM-WATCH-Frontend-sub000/internal/integrations/shopapi"
	"github.com/Hani19000/ECOM-WATCH-Frontend-sub000/internal/models"
	"github.com/Hani19000/ECOM-WATCH-Frontend-sub000/internal/pricing"
	"github.com/Hani19000/ECOM-WATCH-Frontend-sub000/internal/store/session"
)

type GuestRecorder interface {
	Add(ctx context.Context, rec models.GuestOrderRecord) error
}

type Input struct {
	Items   []models.CartItem
	Country string
	Method  pricing.Method
}

type Orchestrator struct {
	api      shopapi.Client
	tokens   auth.TokenSource
	sessions *session.Store
	guests   GuestRecorder

	provider string

	mu sync.Mutex
	// seq нумерует Reprice-вызовы: фоновый refresh более старого вызова
	// не имеет права перетереть более новый (страховка от гонки при
	// быстрой смене страны).
	seq         uint64
	quote       pricing.Quote
	liveOptions []shopapi.ShippingOption
	// taxRates — последние известные ставки по странам; до первого
	// успешного ответа работает статическая таблица.
	taxRates map[string]float64
}

func New(api shopapi.Client, tokens auth.TokenSource, sessions *session.Store, guests GuestRecorder) *Orchestrator {
	return &Orchestrator{
		api:      api,
		tokens:   tokens,
		sessions: sessions,
		guests:   guests,
		provider: "stripe",
		taxRates: make(map[string]float64),
	}
}

func (o *Orchestrator) WithPaymentProvider(p string) *Orchestrator {
	if p != "" {
		o.provider = p
	}
	return o
}

// Reprice recomputes the quote for the new cart/country/method input. The
// returned quote is immediate (known or fallback tax rate, local shipping
// engine); a background refresh then tries the live endpoints and, when it
// wins the race against newer inputs, upgrades the stored quote.
func (o *Orchestrator) Reprice(ctx context.Context, in Input) pricing.Quote {
	o.mu.Lock()
	o.seq++
	seq := o.seq
	rate, ok := o.taxRates[countryKey(in.Country)]
	if !ok {
		rate = pricing.DefaultTaxRate(in.Country)
	}
	q := pricing.Compute(in.Items, in.Country, in.Method, rate)
	o.quote = q
	o.liveOptions = nil
	o.mu.Unlock()

	// Фоновое уточнение переживает запрос вызывающего: отмена HTTP-хендлера
	// не должна ронять refresh, иначе живые тарифы не применятся никогда.
	go o.refresh(context.WithoutCancel(ctx), seq, in)
	return q
}

// Quote returns the current quote snapshot. Never empty once Reprice ran:
// the fallback engine guarantees a consistent view even fully offline.
func (o *Orchestrator) Quote() pricing.Quote {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.quote
}

// ShippingOptions lists the live options when the last refresh got any,
// otherwise the local rate table for the destination zone.
func (o *Orchestrator) ShippingOptions(country string, subtotal, weight float64) []shopapi.ShippingOption {
	o.mu.Lock()
	live := append([]shopapi.ShippingOption(nil), o.liveOptions...)
	o.mu.Unlock()
	if len(live) > 0 {
		return live
	}
	return localOptions(country, subtotal, weight)
}

func (o *Orchestrator) refresh(ctx context.Context, seq uint64, in Input) {
	rate := o.refreshTaxRate(ctx, in.Country)

	var live []shopapi.ShippingOption
	opts, err := o.api.CalculateShipping(ctx, shopapi.ShippingCalcRequest{
		Country:      in.Country,
		TotalWeight:  pricing.TotalWeightKg(in.Items),
		CartSubtotal: subtotalOf(in.Items),
	})
	switch {
	case err == nil && len(opts) > 0:
		live = opts
	case err != nil && shopapi.IsAuthRequired(err):
		// Гость: живых опций не положено, молча считаем локально.
	case err != nil:
		slog.Warn("checkout: shipping calculate failed, using local rates", "error", err.Error())
	}

	q := pricing.Compute(in.Items, in.Country, in.Method, rate)
	if len(live) > 0 {
		if opt := pickOption(live, in.Method); opt != nil {
			q = mergeShipping(q, *opt)
		}
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	if seq != o.seq {
		// Пока ходили по сети, вход поменялся — это уже не наш квоут.
		return
	}
	o.quote = q
	o.liveOptions = live
}

// refreshTaxRate fetches the authoritative rate, falling back to the static
// table. The fetched value is cached per country for later Reprice calls.
func (o *Orchestrator) refreshTaxRate(ctx context.Context, country string) float64 {
	rate, err := o.api.TaxRate(ctx, country)
	if err != nil || rate <= 0 {
		if err != nil {
			slog.Debug("checkout: tax rate fetch failed, using default", "country", country, "error", err.Error())
		}
		return pricing.DefaultTaxRate(country)
	}
	o.mu.Lock()
	o.taxRates[countryKey(country)] = rate
	o.mu.Unlock()
	return rate
}

type SubmitResult struct {
	Order       *models.Order
	RedirectURL string
}

// Submit validates the form and the cart, creates the order, stores the
// pending-order session marker and opens a payment session. Any failure
// surfaces as a single error; nothing is retried behind the caller's back.
func (o *Orchestrator) Submit(ctx context.Context, form Form, in Input) (*SubmitResult, error) {
	if err := form.Validate(); err != nil {
		return nil, err
	}
	if len(in.Items) == 0 {
		return nil, shopapi.NewError(shopapi.KindValidation, "checkout",
			errors.New("votre panier est vide"))
	}

	email := form.NormalizedEmail()
	req := shopapi.CheckoutRequest{
		ShippingAddress: form.Address(),
		ShippingMethod:  string(in.Method),
		ShippingCountry: in.Country,
		TaxCategory:     "standard",
		Email:           email,
	}
	for _, it := range in.Items {
		req.Items = append(req.Items, shopapi.CheckoutItem{
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice,
		})
	}

	order, err := o.api.CheckoutOrder(ctx, req)
	if err != nil {
		return nil, errors.Wrap(err, "submit order")
	}

	if err := o.sessions.PutPending(ctx, models.PendingOrder{OrderID: order.ID, Email: email}); err != nil {
		// Заказ уже создан; без метки payment-result не сможет его найти.
		return nil, errors.Wrap(err, "persist pending order")
	}

	if o.guests != nil && !o.tokens.Authenticated() {
		rec := models.GuestOrderRecord{
			ID:          order.ID,
			OrderNumber: order.OrderNumber,
			Email:       email,
			Status:      order.Status,
			TotalAmount: order.TotalAmount,
			CreatedAt:   order.CreatedAt,
		}
		if err := o.guests.Add(ctx, rec); err != nil {
			slog.Warn("checkout: guest order record not saved", "order", order.OrderNumber, "error", err.Error())
		}
	}

	url, err := o.api.CreatePaymentSession(ctx, order.ID, o.provider)
	if err != nil {
		return nil, errors.Wrap(err, "create payment session")
	}

	return &SubmitResult{Order: order, RedirectURL: url}, nil
}

type PaymentOutcome struct {
	OrderID       string
	Email         string
	PaymentStatus string
}

// PaymentResult consumes the pending-order marker (exactly once) and asks
// the backend for the payment status.
func (o *Orchestrator) PaymentResult(ctx context.Context) (*PaymentOutcome, error) {
	p, err := o.sessions.TakePending(ctx)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, shopapi.NewError(shopapi.KindNotFound, "payment result",
			errors.New("no pending order in session"))
	}
	status, err := o.api.PaymentStatus(ctx, p.OrderID, p.Email)
	if err != nil {
		return nil, errors.Wrap(err, "payment status")
	}
	return &PaymentOutcome{OrderID: p.OrderID, Email: p.Email, PaymentStatus: status}, nil
}

func subtotalOf(items []models.CartItem) float64 {
	q := pricing.Compute(items, "", pricing.MethodStandard, 0)
	return q.Subtotal
}

func localOptions(country string, subtotal, weight float64) []shopapi.ShippingOption {
	var out []shopapi.ShippingOption
	for _, m := range []pricing.Method{pricing.MethodStandard, pricing.MethodExpress} {
		q := pricing.Compute([]models.CartItem{{UnitPrice: subtotal, Quantity: 1, Weight: &weight}}, country, m, 0)
		out = append(out, shopapi.ShippingOption{
			Method:        string(m),
			Label:         q.Shipping.Label,
			Cost:          q.Shipping.Cost,
			IsFree:        q.Shipping.IsFree,
			EstimatedDays: q.Shipping.EstimatedDays,
		})
	}
	return out
}

func pickOption(opts []shopapi.ShippingOption, method pricing.Method) *shopapi.ShippingOption {
	for i := range opts {
		if strings.EqualFold(opts[i].Method, string(method)) {
			return &opts[i]
		}
	}
	return nil
}

func mergeShipping(q pricing.Quote, opt shopapi.ShippingOption) pricing.Quote {
	q.Total = round2(q.Total - q.Shipping.Cost + opt.Cost)
	q.Shipping.Cost = opt.Cost
	q.Shipping.IsFree = opt.IsFree
	q.Shipping.Label = opt.Label
	q.Shipping.EstimatedDays = opt.EstimatedDays
	return q
}

func countryKey(c string) string { return strings.ToUpper(strings.TrimSpace(c)) }
