package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/Hani19000/ECOM-WATCH-Frontend-sub000/config"
	"github.com/Hani19000/ECOM-WATCH-Frontend-sub000/internal/auth"
	"github.com/Hani19000/ECOM-WATCH-Frontend-sub000/internal/cache/rediscache"
	"github.com/Hani19000/ECOM-WATCH-Frontend-sub000/internal/checkout"
	"github.com/Hani19000/ECOM-WATCH-Frontend-sub000/internal/claimsync"
	"github.com/Hani19000/ECOM-WATCH-Frontend-sub000/internal/integrations/shopapi"
	"github.com/Hani19000/ECOM-WATCH-Frontend-sub000/internal/integrations/shopapi/fake"
	"github.com/Hani19000/ECOM-WATCH-Frontend-sub000/internal/integrations/shopapi/httpclient"
	"github.com/Hani19000/ECOM-WATCH-Frontend-sub000/internal/models"
	"github.com/Hani19000/ECOM-WATCH-Frontend-sub000/internal/store/guestorders"
	"github.com/Hani19000/ECOM-WATCH-Frontend-sub000/internal/store/session"
	"github.com/Hani19000/ECOM-WATCH-Frontend-sub000/internal/tracking"
)

type appFactories struct {
	newShopClient   func(cfg *config.Config, tokens auth.TokenSource) shopapi.Client
	newGuestStore   func(cfg *config.Config) *guestorders.Store
	newSessionStore func(cfg *config.Config) *session.Store
	newRateLimiter  func(cfg *config.Config) tracking.RateLimiter
}

func defaultAppFactories() appFactories {
	return appFactories{
		newShopClient: func(cfg *config.Config, tokens auth.TokenSource) shopapi.Client {
			// Для локальной разработки без backend'а — fake-витрина.
			if cfg.Shop.APIMode == "fake" {
				return fake.New()
			}
			return httpclient.New(cfg.Shop.APIBaseURL, tokens)
		},
		newGuestStore: func(cfg *config.Config) *guestorders.Store {
			return guestorders.New(redisAddr(cfg))
		},
		newSessionStore: func(cfg *config.Config) *session.Store {
			ttl := time.Duration(cfg.Tracker.PendingOrderTTLSeconds) * time.Second
			return session.New(rediscache.New(redisAddr(cfg)), ttl)
		},
		newRateLimiter: func(cfg *config.Config) tracking.RateLimiter {
			return rediscache.NewRateLimiter(redisAddr(cfg))
		},
	}
}

func redisAddr(cfg *config.Config) string {
	return fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port)
}

type app struct {
	tokens   *auth.TokenStore
	api      shopapi.Client
	guests   *guestorders.Store
	sessions *session.Store
	tracker  *tracking.Tracker
	searcher *tracking.GuestSearcher
	orch     *checkout.Orchestrator
	syncer   *claimsync.Syncer
}

func buildApp(cfg *config.Config, f appFactories) *app {
	pollInterval := time.Duration(cfg.Tracker.PollIntervalSeconds) * time.Second
	if pollInterval <= 0 {
		pollInterval = tracking.DefaultPollInterval
	}
	threshold := cfg.Tracker.ErrorThreshold
	if threshold <= 0 {
		threshold = tracking.DefaultErrorThreshold
	}
	lookupsPerMinute := int64(cfg.Tracker.GuestLookupsPerMinute)
	if lookupsPerMinute <= 0 {
		lookupsPerMinute = 10
	}

	tokens := auth.NewTokenStore()
	api := f.newShopClient(cfg, tokens)
	guests := f.newGuestStore(cfg)
	sessions := f.newSessionStore(cfg)

	tracker := tracking.New(api, tokens, guestFinder{guests}, guests).
		WithSettings(pollInterval, threshold)
	searcher := tracking.NewGuestSearcher(api, f.newRateLimiter(cfg), lookupsPerMinute)
	orch := checkout.New(api, tokens, sessions, guests).
		WithPaymentProvider(cfg.Shop.PaymentProvider)

	return &app{
		tokens:   tokens,
		api:      api,
		guests:   guests,
		sessions: sessions,
		tracker:  tracker,
		searcher: searcher,
		orch:     orch,
		syncer:   claimsync.New(guests),
	}
}

// guestFinder сужает стор до интерфейса резолвера идентичности.
type guestFinder struct {
	s *guestorders.Store
}

func (g guestFinder) FindByNumber(ctx context.Context, orderNumber string) (*models.GuestOrderRecord, error) {
	return g.s.FindByNumber(ctx, orderNumber)
}

func RunOrderTracker(ctx context.Context, cfg *config.Config, f appFactories) error {
	a := buildApp(cfg, f)
	defer a.tracker.Stop()

	httpAddr := cfg.Tracker.HTTPAddr
	if httpAddr == "" {
		httpAddr = ":8082"
	}

	// Кросс-процессные изменения гостевого стора.
	go func() { _ = a.guests.Listen(ctx) }()

	return runHTTPServer(ctx, httpServerOpts{
		httpAddr:    httpAddr,
		swaggerPath: os.Getenv("swaggerPath"),
		app:         a,
		cfg:         cfg,
	})
}
