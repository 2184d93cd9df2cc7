package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/Hani19000/ECOM-WATCH-Frontend-sub000/internal/auth"
	"github.com/Hani19000/ECOM-WATCH-Frontend-sub000/internal/integrations/shopapi"
	"github.com/Hani19000/ECOM-WATCH-Frontend-sub000/internal/models"
)

type Client struct {
	baseURL string
	tokens  auth.TokenSource
	httpc   *http.Client
}

func New(baseURL string, tokens auth.TokenSource) *Client {
	if baseURL == "" {
		baseURL = "http://localhost:3000/api"
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		tokens:  tokens,
		httpc: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

type orderDTO struct {
	ID          string `json:"id"`
	OrderNumber string `json:"orderNumber"`
	Status      string `json:"status"`
	TotalAmount float64 `json:"totalAmount"`
	Currency    string `json:"currency"`
	Items       []struct {
		ProductID string   `json:"productId"`
		Name      string   `json:"name"`
		UnitPrice float64  `json:"unitPrice"`
		Quantity  int      `json:"quantity"`
		Weight    *float64 `json:"weight,omitempty"`
	} `json:"items"`
	ShippingAddress *models.Address `json:"shippingAddress,omitempty"`
	UserID          *string         `json:"userId,omitempty"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}

func (d *orderDTO) toModel() *models.Order {
	o := &models.Order{
		ID:              d.ID,
		OrderNumber:     d.OrderNumber,
		Status:          d.Status,
		TotalAmount:     d.TotalAmount,
		Currency:        d.Currency,
		ShippingAddress: d.ShippingAddress,
		OwnerID:         d.UserID,
		CreatedAt:       d.CreatedAt,
		UpdatedAt:       d.UpdatedAt,
	}
	for _, it := range d.Items {
		o.Items = append(o.Items, models.OrderItem{
			ProductID: it.ProductID,
			Name:      it.Name,
			UnitPrice: it.UnitPrice,
			Quantity:  it.Quantity,
			Weight:    it.Weight,
		})
	}
	return o
}

func (c *Client) CalculateShipping(ctx context.Context, req shopapi.ShippingCalcRequest) ([]shopapi.ShippingOption, error) {
	var out struct {
		Options []shopapi.ShippingOption `json:"options"`
	}
	// Авторизация опциональна: токен шлём, если он есть.
	if err := c.do(ctx, http.MethodPost, "/shipping/calculate", req, &out, c.tokens != nil && c.tokens.Authenticated()); err != nil {
		return nil, err
	}
	return out.Options, nil
}

func (c *Client) TaxRate(ctx context.Context, country string) (float64, error) {
	var out struct {
		Rates struct {
			Standard float64 `json:"standard"`
		} `json:"rates"`
	}
	p := "/taxes/rates/" + url.PathEscape(strings.ToUpper(country))
	if err := c.do(ctx, http.MethodGet, p, nil, &out, false); err != nil {
		return 0, err
	}
	return out.Rates.Standard, nil
}

func (c *Client) CheckoutOrder(ctx context.Context, req shopapi.CheckoutRequest) (*models.Order, error) {
	var out struct {
		Order orderDTO `json:"order"`
	}
	if err := c.do(ctx, http.MethodPost, "/orders/checkout", req, &out, c.tokens != nil && c.tokens.Authenticated()); err != nil {
		return nil, err
	}
	return out.Order.toModel(), nil
}

func (c *Client) CreatePaymentSession(ctx context.Context, orderID, provider string) (string, error) {
	var out struct {
		CheckoutURL string `json:"checkoutUrl"`
	}
	body := map[string]string{"provider": provider}
	p := "/payments/create-session/" + url.PathEscape(orderID)
	if err := c.do(ctx, http.MethodPost, p, body, &out, c.tokens != nil && c.tokens.Authenticated()); err != nil {
		return "", err
	}
	return out.CheckoutURL, nil
}

func (c *Client) PaymentStatus(ctx context.Context, orderID, email string) (string, error) {
	var out struct {
		PaymentStatus string `json:"paymentStatus"`
	}
	p := "/payments/status/" + url.PathEscape(orderID)
	if email != "" {
		p += "?email=" + url.QueryEscape(email)
	}
	if err := c.do(ctx, http.MethodGet, p, nil, &out, c.tokens != nil && c.tokens.Authenticated()); err != nil {
		return "", err
	}
	return out.PaymentStatus, nil
}

func (c *Client) GetOrder(ctx context.Context, orderID string) (*models.Order, error) {
	var out orderDTO
	p := "/orders/" + url.PathEscape(orderID)
	if err := c.do(ctx, http.MethodGet, p, nil, &out, true); err != nil {
		return nil, err
	}
	return out.toModel(), nil
}

func (c *Client) TrackGuestOrder(ctx context.Context, orderNumber, email string) (*models.Order, error) {
	var out orderDTO
	body := map[string]string{"orderNumber": orderNumber, "email": email}
	// Гостевой путь всегда без Bearer, даже если токен в процессе есть.
	if err := c.do(ctx, http.MethodPost, "/orders/track-guest", body, &out, false); err != nil {
		return nil, err
	}
	return out.toModel(), nil
}

func (c *Client) do(ctx context.Context, method, path string, in, out any, withAuth bool) error {
	op := method + " " + path

	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return shopapi.NewError(shopapi.KindValidation, op, errors.Wrap(err, "marshal body"))
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return shopapi.NewError(shopapi.KindValidation, op, errors.Wrap(err, "new request"))
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if withAuth && c.tokens != nil {
		if tok := c.tokens.AccessToken(); tok != "" {
			req.Header.Set("Authorization", "Bearer "+tok)
		}
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return shopapi.NewError(shopapi.KindTransient, op, errors.Wrap(err, "do request"))
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		// Тело ошибки дочитываем, чтобы соединение вернулось в пул.
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return shopapi.StatusError(op, resp.StatusCode)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return shopapi.NewError(shopapi.KindTransient, op, errors.Wrap(err, "decode response"))
	}
	return nil
}
