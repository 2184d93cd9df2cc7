package httpclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Hani19000/ECOM-WATCH-Frontend-sub000/internal/auth"
	"github.com/Hani19000/ECOM-WATCH-Frontend-sub000/internal/integrations/shopapi"
)

func TestClient_GetOrder_SendsBearer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/orders/11111111-2222-3333-4444-555555555555", r.URL.Path)
		require.Equal(t, "Bearer tok-123", r.Header.Get("Authorization"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
  "id": "11111111-2222-3333-4444-555555555555",
  "orderNumber": "ORD-2025-000007",
  "status": "SHIPPED",
  "totalAmount": 60.4,
  "currency": "EUR",
  "items": [{"productId":"p1","name":"Montre","unitPrice":45,"quantity":1,"weight":1}],
  "createdAt": "2025-01-01T00:00:00Z",
  "updatedAt": "2025-01-02T00:00:00Z"
}`))
	}))
	defer srv.Close()

	tokens := auth.NewTokenStore()
	tokens.Set("tok-123")
	c := New(srv.URL, tokens)

	o, err := c.GetOrder(context.Background(), "11111111-2222-3333-4444-555555555555")
	require.NoError(t, err)
	require.Equal(t, "ORD-2025-000007", o.OrderNumber)
	require.Equal(t, "SHIPPED", o.Status)
	require.Len(t, o.Items, 1)
	require.NotNil(t, o.Items[0].Weight)
}

func TestClient_TrackGuestOrder_NeverSendsBearer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/orders/track-guest", r.URL.Path)
		// Гостевой путь обязан идти без токена, даже когда он есть.
		require.Empty(t, r.Header.Get("Authorization"))

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Equal(t, "ORD-2025-000001", body["orderNumber"])
		require.Equal(t, "a@b.fr", body["email"])

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"x","orderNumber":"ORD-2025-000001","status":"PAID","totalAmount":10,"currency":"EUR","createdAt":"2025-01-01T00:00:00Z","updatedAt":"2025-01-01T00:00:00Z"}`))
	}))
	defer srv.Close()

	tokens := auth.NewTokenStore()
	tokens.Set("tok-123")
	c := New(srv.URL, tokens)

	o, err := c.TrackGuestOrder(context.Background(), "ORD-2025-000001", "a@b.fr")
	require.NoError(t, err)
	require.Equal(t, "PAID", o.Status)
}

func TestClient_CalculateShipping_Unauthorized(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := New(srv.URL, auth.NewTokenStore())
	_, err := c.CalculateShipping(context.Background(), shopapi.ShippingCalcRequest{Country: "FRANCE"})
	require.Error(t, err)
	require.True(t, shopapi.IsAuthRequired(err))
}

func TestClient_ErrorClassification(t *testing.T) {
	cases := []struct {
		status int
		kind   shopapi.Kind
	}{
		{http.StatusBadRequest, shopapi.KindValidation},
		{http.StatusUnauthorized, shopapi.KindAuthRequired},
		{http.StatusForbidden, shopapi.KindFatal},
		{http.StatusNotFound, shopapi.KindNotFound},
		{http.StatusTooManyRequests, shopapi.KindRateLimited},
		{http.StatusInternalServerError, shopapi.KindTransient},
		{http.StatusBadGateway, shopapi.KindTransient},
	}
	for _, tc := range cases {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(tc.status)
		}))
		c := New(srv.URL, nil)
		_, err := c.TaxRate(context.Background(), "FRANCE")
		require.Error(t, err)
		require.Equal(t, tc.kind, shopapi.KindOf(err), "status %d", tc.status)
		srv.Close()
	}
}

func TestClient_TaxRate_ParsesStandardRate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/taxes/rates/FRANCE", r.URL.Path)
		_, _ = w.Write([]byte(`{"rates":{"standard":20}}`))
	}))
	defer srv.Close()

	c := New(srv.URL, nil)
	rate, err := c.TaxRate(context.Background(), "france")
	require.NoError(t, err)
	require.Equal(t, 20.0, rate)
}

func TestClient_NetworkErrorIsTransient(t *testing.T) {
	c := New("http://127.0.0.1:1", nil)
	_, err := c.TaxRate(context.Background(), "FRANCE")
	require.Error(t, err)
	require.True(t, shopapi.IsTransient(err))
}
