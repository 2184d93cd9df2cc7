package pricing

import "github.com/shopspring/decimal"

type Zone string

const (
	ZoneDomestic Zone = "DOMESTIC"
	ZoneEurope   Zone = "EUROPE"
	ZoneWorld    Zone = "WORLD"
)

type Method string

const (
	MethodStandard Method = "STANDARD"
	MethodExpress  Method = "EXPRESS"
)

// Rule — статическая ставка доставки для пары зона×метод.
// Компилируется в бинарь, пользователем не редактируется.
type Rule struct {
	Zone          Zone
	Method        Method
	Label         string
	Base          decimal.Decimal
	PerKg         decimal.Decimal
	// FreeAbove == nil: бесплатной доставки в этой зоне/методе нет.
	FreeAbove     *decimal.Decimal
	EstimatedDays string
}

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func dp(s string) *decimal.Decimal {
	v := d(s)
	return &v
}

var rules = map[Zone]map[Method]Rule{
	ZoneDomestic: {
		MethodStandard: {Zone: ZoneDomestic, Method: MethodStandard, Label: "Livraison standard", Base: d("5.90"), PerKg: d("0.50"), FreeAbove: dp("50"), EstimatedDays: "2-4"},
		MethodExpress:  {Zone: ZoneDomestic, Method: MethodExpress, Label: "Livraison express", Base: d("12.90"), PerKg: d("0.90"), EstimatedDays: "1-2"},
	},
	ZoneEurope: {
		MethodStandard: {Zone: ZoneEurope, Method: MethodStandard, Label: "Standard Europe", Base: d("9.90"), PerKg: d("1.20"), FreeAbove: dp("100"), EstimatedDays: "4-7"},
		MethodExpress:  {Zone: ZoneEurope, Method: MethodExpress, Label: "Express Europe", Base: d("19.90"), PerKg: d("2.00"), EstimatedDays: "2-3"},
	},
	ZoneWorld: {
		MethodStandard: {Zone: ZoneWorld, Method: MethodStandard, Label: "Standard international", Base: d("19.90"), PerKg: d("3.50"), EstimatedDays: "7-14"},
		MethodExpress:  {Zone: ZoneWorld, Method: MethodExpress, Label: "Express international", Base: d("34.90"), PerKg: d("5.00"), EstimatedDays: "3-5"},
	},
}

var zoneByCountry = map[string]Zone{
	"FRANCE": ZoneDomestic,

	"GERMANY":     ZoneEurope,
	"BELGIUM":     ZoneEurope,
	"NETHERLANDS": ZoneEurope,
	"LUXEMBOURG":  ZoneEurope,
	"SPAIN":       ZoneEurope,
	"ITALY":       ZoneEurope,
	"PORTUGAL":    ZoneEurope,
	"AUSTRIA":     ZoneEurope,
	"IRELAND":     ZoneEurope,
	"DENMARK":     ZoneEurope,
	"SWEDEN":      ZoneEurope,
	"FINLAND":     ZoneEurope,
	"POLAND":      ZoneEurope,
	"CZECHIA":     ZoneEurope,
	"GREECE":      ZoneEurope,
}

// ZoneFor resolves a destination country to a shipping zone. Unknown countries
// fall back to the most expensive zone so a quote is never understated.
func ZoneFor(country string) Zone {
	if z, ok := zoneByCountry[normalizeCountry(country)]; ok {
		return z
	}
	return ZoneWorld
}

// RuleFor returns the rate rule for the zone and method. An unknown method
// falls back to STANDARD of the same zone.
func RuleFor(zone Zone, method Method) Rule {
	zr, ok := rules[zone]
	if !ok {
		zr = rules[ZoneWorld]
	}
	if r, ok := zr[method]; ok {
		return r
	}
	return zr[MethodStandard]
}

// RulesFor lists every method available in the zone, STANDARD first.
func RulesFor(zone Zone) []Rule {
	zr, ok := rules[zone]
	if !ok {
		zr = rules[ZoneWorld]
	}
	return []Rule{zr[MethodStandard], zr[MethodExpress]}
}

// Дефолтные ставки НДС на случай, когда /taxes/rates недоступен.
var defaultTaxRates = map[string]float64{
	"FRANCE":      20,
	"GERMANY":     19,
	"BELGIUM":     21,
	"NETHERLANDS": 21,
	"LUXEMBOURG":  17,
	"SPAIN":       21,
	"ITALY":       22,
	"PORTUGAL":    23,
	"AUSTRIA":     20,
	"IRELAND":     23,
	"DENMARK":     25,
	"SWEDEN":      25,
	"FINLAND":     25.5,
	"POLAND":      23,
	"CZECHIA":     21,
	"GREECE":      24,
}

const GlobalDefaultTaxRate = 20

// DefaultTaxRate returns the static fallback VAT rate for a country, or the
// global default when the country is unknown.
func DefaultTaxRate(country string) float64 {
	if r, ok := defaultTaxRates[normalizeCountry(country)]; ok {
		return r
	}
	return GlobalDefaultTaxRate
}
