package pricing

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Combined sales-tax rates keyed by (country, region). Quebec's GST+QST pair
// is stored as the single combined figure checkout charges.
var regionalRates = map[string]map[string]decimal.Decimal{
	"CA": {
		"AB": decimal.NewFromFloat(0.05),
		"BC": decimal.NewFromFloat(0.12),
		"MB": decimal.NewFromFloat(0.12),
		"NB": decimal.NewFromFloat(0.15),
		"NL": decimal.NewFromFloat(0.15),
		"NS": decimal.NewFromFloat(0.15),
		"NT": decimal.NewFromFloat(0.05),
		"NU": decimal.NewFromFloat(0.05),
		"ON": decimal.NewFromFloat(0.13),
		"PE": decimal.NewFromFloat(0.15),
		"QC": decimal.NewFromFloat(0.15),
		"SK": decimal.NewFromFloat(0.11),
		"YT": decimal.NewFromFloat(0.05),
	},
}

var countryDefaultRates = map[string]decimal.Decimal{
	"CA": decimal.NewFromFloat(0.05),
	"US": decimal.Zero,
}

// taxRate resolves (country, region) → regional rate → country default →
// global zero. The bool reports whether any table entry matched, so callers
// configured to reject unknown regions can tell fallback from a real zero.
func taxRate(country, region string) (rate decimal.Decimal, label string, known bool) {
	country = strings.ToUpper(strings.TrimSpace(country))
	region = strings.ToUpper(strings.TrimSpace(region))

	if regions, ok := regionalRates[country]; ok {
		if r, ok := regions[region]; ok {
			return r, country + "-" + region, true
		}
	}
	if r, ok := countryDefaultRates[country]; ok {
		return r, country, true
	}
	return decimal.Zero, country, false
}
