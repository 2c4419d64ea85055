package format

import (
	"strings"

	"github.com/iwvelando/hotel-forecast/pkg/constants"
	"github.com/shopspring/decimal"
)

// Currency renders an amount in euros with thousands separators
// (e.g., "-€1,234.56").
func Currency(amount float64) string {
	digits := Amount(amount)
	if strings.HasPrefix(digits, "-") {
		return "-" + constants.CurrencySymbol + digits[1:]
	}
	return constants.CurrencySymbol + digits
}

// Amount renders an amount without a symbol (e.g., "-1,234.56"). Rounding is
// half away from zero on the decimal value.
func Amount(amount float64) string {
	fixed := decimal.NewFromFloat(amount).StringFixed(constants.CurrencyPlaces)
	sign := ""
	if strings.HasPrefix(fixed, "-") {
		sign, fixed = "-", fixed[1:]
	}
	intPart, decPart, _ := strings.Cut(fixed, ".")
	if intPart == "0" && strings.Trim(decPart, "0") == "" {
		sign = ""
	}
	return sign + group(intPart) + "." + decPart
}

func group(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	var b strings.Builder
	for i, d := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(d)
	}
	return b.String()
}
