package fake

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Hani19000/ECOM-WATCH-Frontend-sub000/internal/integrations/shopapi"
	"github.com/Hani19000/ECOM-WATCH-Frontend-sub000/internal/models"
)

func TestFakeClient_CheckoutAndPoll(t *testing.T) {
	c := New()
	ctx := context.Background()

	o, err := c.CheckoutOrder(ctx, shopapi.CheckoutRequest{
		Items:           []shopapi.CheckoutItem{{ProductID: "p1", UnitPrice: 20, Quantity: 2}},
		Email:           "guest@example.fr",
		ShippingCountry: "FRANCE",
		ShippingMethod:  "STANDARD",
	})
	require.NoError(t, err)
	require.Regexp(t, models.OrderNumberRe, o.OrderNumber)
	require.Equal(t, models.OrderStatusPending, o.Status)
	require.Greater(t, o.TotalAmount, 40.0)

	// Каждый опрос двигает жизненный цикл.
	next, err := c.GetOrder(ctx, o.ID)
	require.NoError(t, err)
	require.Equal(t, models.OrderStatusPaid, next.Status)

	byNum, err := c.TrackGuestOrder(ctx, o.OrderNumber, "guest@example.fr")
	require.NoError(t, err)
	require.Equal(t, o.ID, byNum.ID)
}

func TestFakeClient_GetOrder_NotFound(t *testing.T) {
	c := New()
	_, err := c.GetOrder(context.Background(), "does-not-exist")
	require.True(t, shopapi.IsNotFound(err))
}

func TestFakeClient_CalculateShipping_FreeAboveThreshold(t *testing.T) {
	c := New()
	opts, err := c.CalculateShipping(context.Background(), shopapi.ShippingCalcRequest{
		Country:      "FRANCE",
		TotalWeight:  1.0,
		CartSubtotal: 60,
	})
	require.NoError(t, err)
	require.NotEmpty(t, opts)

	var std *shopapi.ShippingOption
	for i := range opts {
		if opts[i].Method == "STANDARD" {
			std = &opts[i]
		}
	}
	require.NotNil(t, std)
	require.True(t, std.IsFree)
	require.Zero(t, std.Cost)
}
