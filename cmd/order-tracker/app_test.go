package main

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/require"

	"github.com/Hani19000/ECOM-WATCH-Frontend-sub000/config"
	"github.com/Hani19000/ECOM-WATCH-Frontend-sub000/internal/auth"
	"github.com/Hani19000/ECOM-WATCH-Frontend-sub000/internal/cache/rediscache"
	"github.com/Hani19000/ECOM-WATCH-Frontend-sub000/internal/integrations/shopapi"
	"github.com/Hani19000/ECOM-WATCH-Frontend-sub000/internal/integrations/shopapi/fake"
	"github.com/Hani19000/ECOM-WATCH-Frontend-sub000/internal/integrations/shopapi/httpclient"
	"github.com/Hani19000/ECOM-WATCH-Frontend-sub000/internal/store/guestorders"
	"github.com/Hani19000/ECOM-WATCH-Frontend-sub000/internal/store/session"
	"github.com/Hani19000/ECOM-WATCH-Frontend-sub000/internal/tracking"
)

func TestDefaultAppFactories_SelectShopClient(t *testing.T) {
	f := defaultAppFactories()
	tokens := auth.NewTokenStore()

	cfgFake := &config.Config{Shop: config.ShopConfig{APIMode: "fake"}}
	c1 := f.newShopClient(cfgFake, tokens)
	_, ok := c1.(*fake.FakeClient)
	require.True(t, ok)

	cfgHTTP := &config.Config{Shop: config.ShopConfig{
		APIMode:    "http",
		APIBaseURL: "http://localhost:9000",
	}}
	c2 := f.newShopClient(cfgHTTP, tokens)
	_, ok = c2.(*httpclient.Client)
	require.True(t, ok)
}

func TestDefaultAppFactories_StoresNonNil(t *testing.T) {
	f := defaultAppFactories()
	cfg := &config.Config{Redis: config.RedisConfig{Host: "localhost", Port: 6379}}
	require.NotNil(t, f.newGuestStore(cfg))
	require.NotNil(t, f.newSessionStore(cfg))
	require.NotNil(t, f.newRateLimiter(cfg))
}

func TestBuildApp_DefaultsApplied(t *testing.T) {
	mr := miniredis.RunT(t)

	cfg := &config.Config{} // всё по нулям, берём дефолты
	a := buildApp(cfg, testFactories(mr.Addr()))

	require.NotNil(t, a.tracker)
	require.NotNil(t, a.searcher)
	require.NotNil(t, a.orch)
	require.NotNil(t, a.syncer)

	snap := a.tracker.Snapshot()
	require.Equal(t, tracking.StateIdle.String(), snap.State)
}

func TestRunOrderTracker_ContextCanceled(t *testing.T) {
	mr := miniredis.RunT(t)

	cfg := &config.Config{
		Tracker: config.TrackerConfig{HTTPAddr: "127.0.0.1:0"},
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := RunOrderTracker(ctx, cfg, testFactories(mr.Addr()))
	require.ErrorIs(t, err, context.Canceled)
}

func testFactories(redisAddr string) appFactories {
	return appFactories{
		newShopClient: func(cfg *config.Config, tokens auth.TokenSource) shopapi.Client {
			return fake.New()
		},
		newGuestStore: func(cfg *config.Config) *guestorders.Store {
			return guestorders.New(redisAddr)
		},
		newSessionStore: func(cfg *config.Config) *session.Store {
			return session.New(rediscache.New(redisAddr), time.Minute)
		},
		newRateLimiter: func(cfg *config.Config) tracking.RateLimiter {
			return rediscache.NewRateLimiter(redisAddr)
		},
	}
}
