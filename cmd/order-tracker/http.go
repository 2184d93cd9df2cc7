package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/Hani19000/ECOM-WATCH-Frontend-sub000/config"
	"github.com/Hani19000/ECOM-WATCH-Frontend-sub000/internal/checkout"
	"github.com/Hani19000/ECOM-WATCH-Frontend-sub000/internal/claimsync"
	"github.com/Hani19000/ECOM-WATCH-Frontend-sub000/internal/integrations/shopapi"
	"github.com/Hani19000/ECOM-WATCH-Frontend-sub000/internal/models"
	"github.com/Hani19000/ECOM-WATCH-Frontend-sub000/internal/pricing"
)

type httpServerOpts struct {
	httpAddr    string
	swaggerPath string
	onListen    func(httpAddr string)

	app *app
	cfg *config.Config
}

func runHTTPServer(ctx context.Context, opts httpServerOpts) error {
	if opts.httpAddr == "" {
		opts.httpAddr = ":8082"
	}

	lis, err := net.Listen("tcp", opts.httpAddr)
	if err != nil {
		return err
	}
	if opts.onListen != nil {
		opts.onListen(lis.Addr().String())
	}

	r := chi.NewRouter()
	a := opts.app

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ready"}`))
	})

	r.Get("/stats", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, a.tracker.Snapshot())
	})

	r.Get("/config", func(w http.ResponseWriter, r *http.Request) {
		if opts.cfg == nil {
			writeJSON(w, http.StatusOK, map[string]string{"error": "config not wired"})
			return
		}
		// Без секретов: только операционные настройки трекера.
		writeJSON(w, http.StatusOK, map[string]any{
			"apiMode":                opts.cfg.Shop.APIMode,
			"defaultCountry":         defaultCountry(opts.cfg),
			"pollIntervalSeconds":    opts.cfg.Tracker.PollIntervalSeconds,
			"errorThreshold":         opts.cfg.Tracker.ErrorThreshold,
			"pendingOrderTTLSeconds": opts.cfg.Tracker.PendingOrderTTLSeconds,
			"guestLookupsPerMinute":  opts.cfg.Tracker.GuestLookupsPerMinute,
		})
	})

	// Запуск/остановка сессии трекинга.
	r.Post("/track", func(w http.ResponseWriter, r *http.Request) {
		var in struct {
			OrderID string `json:"orderId"`
		}
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			writeError(w, badRequest("invalid json body"))
			return
		}
		// Сессия трекинга живёт дольше запроса: привязываем к контексту
		// процесса, а не запроса.
		if err := a.tracker.Start(ctx, in.OrderID); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, a.tracker.Snapshot())
	})
	r.Post("/track/stop", func(w http.ResponseWriter, r *http.Request) {
		a.tracker.Stop()
		writeJSON(w, http.StatusOK, a.tracker.Snapshot())
	})

	// Ручной гостевой поиск.
	r.Post("/track/guest", func(w http.ResponseWriter, r *http.Request) {
		var in struct {
			OrderNumber string `json:"orderNumber"`
			Email       string `json:"email"`
		}
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			writeError(w, badRequest("invalid json body"))
			return
		}
		order, err := a.searcher.Search(r.Context(), in.OrderNumber, in.Email)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, order)
	})

	r.Get("/guest-orders", func(w http.ResponseWriter, r *http.Request) {
		list, err := a.guests.List(r.Context())
		if err != nil {
			writeError(w, err)
			return
		}
		if list == nil {
			list = []models.GuestOrderRecord{}
		}
		writeJSON(w, http.StatusOK, list)
	})
	r.Delete("/guest-orders/{orderNumber}", func(w http.ResponseWriter, r *http.Request) {
		if err := a.guests.Remove(r.Context(), chi.URLParam(r, "orderNumber")); err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	})

	// Логин/логаут фронта: держим токен и запускаем claim-sync.
	r.Post("/auth/login", func(w http.ResponseWriter, r *http.Request) {
		var in struct {
			AccessToken         string   `json:"accessToken"`
			ClaimedOrderNumbers []string `json:"claimedOrderNumbers"`
			ClaimedCount        int      `json:"claimedCount"`
		}
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			writeError(w, badRequest("invalid json body"))
			return
		}
		if in.AccessToken == "" {
			writeError(w, badRequest("accessToken is required"))
			return
		}
		a.tokens.Set(in.AccessToken)
		if err := a.syncer.Sync(r.Context(), claimsync.ClaimReport{
			OrderNumbers: in.ClaimedOrderNumbers,
			Count:        in.ClaimedCount,
		}); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]bool{"authenticated": true})
	})
	r.Post("/auth/logout", func(w http.ResponseWriter, r *http.Request) {
		a.tokens.Clear()
		writeJSON(w, http.StatusOK, map[string]bool{"authenticated": false})
	})

	r.Post("/checkout/quote", func(w http.ResponseWriter, r *http.Request) {
		in, err := decodeCheckoutInput(r, defaultCountry(opts.cfg))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, a.orch.Reprice(r.Context(), in))
	})
	r.Post("/checkout/submit", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Form checkout.Form `json:"form"`
			checkoutInput
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeError(w, badRequest("invalid json body"))
			return
		}
		res, err := a.orch.Submit(r.Context(), body.Form, body.toInput(defaultCountry(opts.cfg)))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, res)
	})
	r.Get("/payment/result", func(w http.ResponseWriter, r *http.Request) {
		out, err := a.orch.PaymentResult(r.Context())
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, out)
	})

	// Swagger — как в остальных наших сервисах: no-cache + cachebuster.
	if opts.swaggerPath != "" {
		r.Get("/swagger.json", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Cache-Control", "no-store")
			http.ServeFile(w, r, opts.swaggerPath)
		})
		swaggerURL := "/swagger.json"
		if fi, err := os.Stat(opts.swaggerPath); err == nil {
			swaggerURL = fmt.Sprintf("/swagger.json?v=%d", fi.ModTime().Unix())
		}
		r.Get("/docs/*", httpSwagger.Handler(httpSwagger.URL(swaggerURL)))
	}

	srv := &http.Server{Handler: r}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		_ = lis.Close()
	}()

	if err := srv.Serve(lis); err != nil && err != http.ErrServerClosed {
		return err
	}
	return ctx.Err()
}

type checkoutInput struct {
	Items   []models.CartItem `json:"items"`
	Country string            `json:"country"`
	Method  string            `json:"method"`
}

func (c checkoutInput) toInput(defaultCountry string) checkout.Input {
	country := c.Country
	if country == "" {
		country = defaultCountry
	}
	method := pricing.Method(c.Method)
	if method == "" {
		method = pricing.MethodStandard
	}
	return checkout.Input{Items: c.Items, Country: country, Method: method}
}

func defaultCountry(cfg *config.Config) string {
	if cfg != nil && cfg.Shop.DefaultCountry != "" {
		return cfg.Shop.DefaultCountry
	}
	return "FRANCE"
}

func decodeCheckoutInput(r *http.Request, defaultCountry string) (checkout.Input, error) {
	var in checkoutInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		return checkout.Input{}, badRequest("invalid json body")
	}
	return in.toInput(defaultCountry), nil
}

func badRequest(msg string) error {
	return shopapi.NewError(shopapi.KindValidation, "http", fmt.Errorf("%s", msg))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusBadGateway
	switch shopapi.KindOf(err) {
	case shopapi.KindValidation:
		status = http.StatusBadRequest
	case shopapi.KindAuthRequired:
		status = http.StatusUnauthorized
	case shopapi.KindNotFound:
		status = http.StatusNotFound
	case shopapi.KindRateLimited:
		status = http.StatusTooManyRequests
	case shopapi.KindFatal:
		status = http.StatusForbidden
	}
	writeJSON(w, status, map[string]string{
		"error": err.Error(),
		"kind":  shopapi.KindOf(err).String(),
	})
}
