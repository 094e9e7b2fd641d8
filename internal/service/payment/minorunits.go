package payment

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Currencies whose minor unit equals the major unit. Amounts in these are
// never multiplied by 100.
var zeroDecimalCurrencies = map[string]bool{
	"BIF": true, "CLP": true, "DJF": true, "GNF": true, "JPY": true,
	"KMF": true, "KRW": true, "MGA": true, "PYG": true, "RWF": true,
	"UGX": true, "VND": true, "VUV": true, "XAF": true, "XOF": true,
	"XPF": true,
}

// MinorUnits converts a decimal amount to the processor's minor-unit integer
// representation for the given currency.
func MinorUnits(amount decimal.Decimal, currency string) int64 {
	if zeroDecimalCurrencies[strings.ToUpper(strings.TrimSpace(currency))] {
		return amount.Round(0).IntPart()
	}
	return amount.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}
