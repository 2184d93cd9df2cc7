package main

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Hani19000/ECOM-WATCH-Frontend-sub000/config"
	"github.com/Hani19000/ECOM-WATCH-Frontend-sub000/internal/pricing"
)

func TestCheckoutInput_DefaultsFromConfig(t *testing.T) {
	// Пустые поля запроса берут дефолты, заданные поля — остаются.
	in := checkoutInput{}.toInput("GERMANY")
	require.Equal(t, "GERMANY", in.Country)
	require.Equal(t, pricing.MethodStandard, in.Method)

	in = checkoutInput{Country: "SPAIN", Method: "EXPRESS"}.toInput("GERMANY")
	require.Equal(t, "SPAIN", in.Country)
	require.Equal(t, pricing.MethodExpress, in.Method)
}

func TestDefaultCountry(t *testing.T) {
	require.Equal(t, "FRANCE", defaultCountry(nil))
	require.Equal(t, "FRANCE", defaultCountry(&config.Config{}))

	cfg := &config.Config{Shop: config.ShopConfig{DefaultCountry: "BELGIUM"}}
	require.Equal(t, "BELGIUM", defaultCountry(cfg))
}
