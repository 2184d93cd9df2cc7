// Package tracking drives the order tracking session: resolve the identity
// path once, fetch the order, poll on a fixed interval while the status is
// active, give up after a bounded run of errors.
package tracking

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Hani19000/ECOM-WATCH-Frontend-sub000/internal/integrations/shopapi"
	"github.com/Hani19000/ECOM-WATCH-Frontend-sub000/internal/models"
)

type State int

const (
	StateIdle State = iota
	StateResolving
	StateAuthenticatedPolling
	StateGuestPolling
	StateTerminated
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "IDLE"
	case StateResolving:
		return "RESOLVING"
	case StateAuthenticatedPolling:
		return "AUTHENTICATED_POLLING"
	case StateGuestPolling:
		return "GUEST_POLLING"
	case StateTerminated:
		return "TERMINATED"
	}
	return "UNKNOWN"
}

type TerminalReason int

const (
	ReasonNone TerminalReason = iota
	// ReasonCompleted — заказ дошёл до терминального статуса.
	ReasonCompleted
	// ReasonGaveUp — порог ошибок подряд; заказ не «сломан», просто
	// перестаём опрашивать, последнее известное состояние остаётся.
	ReasonGaveUp
	// ReasonError — fatal (403/404) или ошибка разрешения идентичности.
	ReasonError
)

func (r TerminalReason) String() string {
	switch r {
	case ReasonCompleted:
		return "COMPLETED"
	case ReasonGaveUp:
		return "GAVE_UP"
	case ReasonError:
		return "ERROR"
	}
	return "NONE"
}

type Fetcher interface {
	GetOrder(ctx context.Context, orderID string) (*models.Order, error)
	TrackGuestOrder(ctx context.Context, orderNumber, email string) (*models.Order, error)
}

type AuthState interface {
	Authenticated() bool
}

type StatusSink interface {
	UpdateStatus(ctx context.Context, orderNumber, status string) error
}

const (
	DefaultPollInterval   = 30 * time.Second
	DefaultErrorThreshold = 3
)

type Tracker struct {
	api    Fetcher
	auth   AuthState
	guests GuestResolver
	// sink опционален: гостевой стор обновляется замеченными статусами.
	sink StatusSink

	interval  time.Duration
	threshold int

	mu      sync.Mutex
	state   State
	reason  TerminalReason
	ident   Identity
	order   *models.Order
	errRun  int
	lastErr error
	cancel  context.CancelFunc
	// gen растёт на каждый Start: ответы и тикеры прошлых сессий
	// к текущей не применяются.
	gen uint64
	// appliedSeq — номер последнего применённого ответа; более старые
	// прилёты отбрасываются, в каком бы порядке они ни вернулись.
	appliedSeq uint64
	nextSeq    uint64

	totalPolls       atomic.Int64
	discardedStale   atomic.Int64
	totalTransitions atomic.Int64
}

func New(api Fetcher, auth AuthState, guests GuestResolver, sink StatusSink) *Tracker {
	return &Tracker{
		api:       api,
		auth:      auth,
		guests:    guests,
		sink:      sink,
		interval:  DefaultPollInterval,
		threshold: DefaultErrorThreshold,
		state:     StateIdle,
	}
}

func (t *Tracker) WithSettings(interval time.Duration, errorThreshold int) *Tracker {
	if interval > 0 {
		t.interval = interval
	}
	if errorThreshold > 0 {
		t.threshold = errorThreshold
	}
	return t
}

// Start resolves the identifier and begins polling. A second Start with a new
// identifier restarts the machine from RESOLVING; the previous session's
// timer is cancelled and its late responses are discarded.
func (t *Tracker) Start(ctx context.Context, input string) error {
	t.Stop()

	t.mu.Lock()
	t.gen++
	gen := t.gen
	t.state = StateResolving
	t.reason = ReasonNone
	t.order = nil
	t.errRun = 0
	t.lastErr = nil
	t.appliedSeq = 0
	t.nextSeq = 0
	t.mu.Unlock()

	ident, err := resolveIdentity(ctx, input, t.auth.Authenticated(), t.guests)
	if err != nil {
		t.mu.Lock()
		if t.gen == gen {
			t.state = StateTerminated
			t.reason = ReasonError
			t.lastErr = err
		}
		t.mu.Unlock()
		return err
	}

	t.mu.Lock()
	if t.gen != gen {
		t.mu.Unlock()
		return nil
	}
	t.ident = ident
	if ident.Mode == IdentityAuthenticated {
		t.state = StateAuthenticatedPolling
	} else {
		t.state = StateGuestPolling
	}
	pctx, cancel := context.WithCancel(ctx)
	t.cancel = cancel
	t.mu.Unlock()

	// Первый fetch сразу, не дожидаясь тика.
	t.pollOnce(pctx, gen)

	t.mu.Lock()
	stillPolling := t.gen == gen && t.state != StateTerminated
	t.mu.Unlock()
	if !stillPolling {
		cancel()
		return nil
	}

	go t.run(pctx, gen)
	return nil
}

// Stop cancels the active timer. Safe to call any number of times and from
// any goroutine.
func (t *Tracker) Stop() {
	t.mu.Lock()
	cancel := t.cancel
	t.cancel = nil
	t.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

func (t *Tracker) run(ctx context.Context, gen uint64) {
	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			// Fire-and-forget, как в браузере: тик не отменяет предыдущий
			// запрос, поздние ответы отсекаются по номеру.
			go t.pollOnce(ctx, gen)
		}
	}
}

func (t *Tracker) pollOnce(ctx context.Context, gen uint64) {
	t.mu.Lock()
	if t.gen != gen || t.state == StateTerminated {
		t.mu.Unlock()
		return
	}
	t.nextSeq++
	seq := t.nextSeq
	ident := t.ident
	t.mu.Unlock()

	t.totalPolls.Add(1)

	var (
		order *models.Order
		err   error
	)
	switch ident.Mode {
	case IdentityAuthenticated:
		order, err = t.api.GetOrder(ctx, ident.OrderID.String())
	case IdentityGuest:
		order, err = t.api.TrackGuestOrder(ctx, ident.OrderNumber, ident.Email)
	default:
		return
	}

	t.apply(ctx, gen, seq, order, err)
}

func (t *Tracker) apply(ctx context.Context, gen, seq uint64, order *models.Order, err error) {
	t.mu.Lock()

	if t.gen != gen || t.state == StateTerminated {
		t.mu.Unlock()
		return
	}
	if seq <= t.appliedSeq {
		// Обогнал более свежий ответ — этот уже история.
		t.discardedStale.Add(1)
		t.mu.Unlock()
		return
	}
	t.appliedSeq = seq

	if err != nil {
		t.lastErr = err
		if shopapi.IsPollFatal(err) {
			t.terminateLocked(ReasonError)
			t.mu.Unlock()
			slog.Error("tracking: fatal poll error", "kind", shopapi.KindOf(err).String(), "error", err.Error())
			return
		}
		t.errRun++
		gaveUp := t.errRun >= t.threshold
		if gaveUp {
			t.terminateLocked(ReasonGaveUp)
		}
		run := t.errRun
		t.mu.Unlock()
		slog.Warn("tracking: poll error", "consecutive", run, "error", err.Error())
		if gaveUp {
			slog.Warn("tracking: error threshold reached, polling stopped", "threshold", t.threshold)
		}
		return
	}

	t.errRun = 0
	if prev := t.order; prev == nil || prev.Status != order.Status {
		t.totalTransitions.Add(1)
	}
	t.order = order

	terminal := models.TerminalStatus(order.Status)
	if terminal {
		t.terminateLocked(ReasonCompleted)
	}
	ident := t.ident
	t.mu.Unlock()

	if t.sink != nil && ident.Mode == IdentityGuest {
		if serr := t.sink.UpdateStatus(ctx, order.OrderNumber, order.Status); serr != nil {
			slog.Warn("tracking: guest store update", "error", serr.Error())
		}
	}
	if terminal {
		slog.Info("tracking: terminal status reached", "order", order.OrderNumber, "status", order.Status)
	}
}

// terminateLocked: caller holds t.mu.
func (t *Tracker) terminateLocked(reason TerminalReason) {
	t.state = StateTerminated
	t.reason = reason
	if t.cancel != nil {
		t.cancel()
		t.cancel = nil
	}
}

type Snapshot struct {
	State          string         `json:"state"`
	Reason         string         `json:"reason,omitempty"`
	IdentityMode   string         `json:"identityMode,omitempty"`
	Order          *models.Order  `json:"order,omitempty"`
	ConsecutiveErr int            `json:"consecutiveErrors"`
	LastError      string         `json:"lastError,omitempty"`
	TotalPolls     int64          `json:"totalPolls"`
	DiscardedStale int64          `json:"discardedStale"`
	Transitions    int64          `json:"transitions"`
}

func (t *Tracker) Snapshot() Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()

	s := Snapshot{
		State:          t.state.String(),
		ConsecutiveErr: t.errRun,
		Order:          t.order,
		TotalPolls:     t.totalPolls.Load(),
		DiscardedStale: t.discardedStale.Load(),
		Transitions:    t.totalTransitions.Load(),
	}
	if t.reason != ReasonNone {
		s.Reason = t.reason.String()
	}
	if t.ident.Mode != 0 {
		s.IdentityMode = t.ident.Mode.String()
	}
	if t.lastErr != nil {
		s.LastError = t.lastErr.Error()
	}
	return s
}
