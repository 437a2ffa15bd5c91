package domain

import (
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"
)

// numericNoise is stripped from metric strings before parsing.
var numericNoise = strings.NewReplacer("$", "", ",", "", "%", "", " ", "", "\u00a0", "")

// ParseMetricValue normalizes an extracted metric value.
// Numbers and numeric-looking strings such as "$1,234.50%" become valid decimals;
// nil, "", "Null" and anything unparseable become the missing sentinel (Valid == false), never zero.
// Accounting negatives written as "(1,234)" are read as -1234.
func ParseMetricValue(v any) decimal.NullDecimal {
	switch t := v.(type) {
	case nil:
		return decimal.NullDecimal{}
	case json.Number:
		return parseNumericString(t.String())
	case float64:
		return decimal.NewNullDecimal(decimal.NewFromFloat(t))
	case float32:
		return decimal.NewNullDecimal(decimal.NewFromFloat32(t))
	case int:
		return decimal.NewNullDecimal(decimal.NewFromInt(int64(t)))
	case int64:
		return decimal.NewNullDecimal(decimal.NewFromInt(t))
	case decimal.Decimal:
		return decimal.NewNullDecimal(t)
	case string:
		return parseNumericString(t)
	default:
		return decimal.NullDecimal{}
	}
}

func parseNumericString(s string) decimal.NullDecimal {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "null") || strings.EqualFold(s, "n/a") || s == "-" {
		return decimal.NullDecimal{}
	}

	negative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		negative = true
		s = s[1 : len(s)-1]
	}

	d, err := decimal.NewFromString(numericNoise.Replace(s))
	if err != nil {
		return decimal.NullDecimal{}
	}
	if negative {
		d = d.Neg()
	}
	return decimal.NewNullDecimal(d)
}
