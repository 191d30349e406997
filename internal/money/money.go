package money

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/shopspring/decimal"
)

// currencyReplacer strips the symbols and separators LLM extraction tends to
// leave inside numeric fields ("$1,234.56", "€ 45,00" style thousands commas).
var currencyReplacer = strings.NewReplacer("$", "", "€", "", "£", "", ",", "")

// ToDecimal converts an arbitrary JSON scalar to a decimal, returning def on
// any value it cannot make sense of. It never panics and never returns an
// error: upstream values come from a language model and malformed scalars are
// an expected, recoverable condition.
func ToDecimal(value any, def decimal.Decimal) decimal.Decimal {
	switch v := value.(type) {
	case nil:
		return def
	case decimal.Decimal:
		return v
	case float64:
		return decimal.NewFromFloat(v)
	case int:
		return decimal.NewFromInt(int64(v))
	case int64:
		return decimal.NewFromInt(v)
	case json.Number:
		d, err := decimal.NewFromString(v.String())
		if err != nil {
			return def
		}

		return d
	case string:
		clean := strings.TrimSpace(currencyReplacer.Replace(v))
		if clean == "" {
			return def
		}

		d, err := decimal.NewFromString(clean)
		if err != nil {
			return def
		}

		return d
	default:
		return def
	}
}

// ClampRate forces a tax rate into [0, 1]. The second return reports whether
// clamping happened so callers can log the out-of-range value.
func ClampRate(rate decimal.Decimal) (decimal.Decimal, bool) {
	if rate.IsNegative() {
		return decimal.Zero, true
	}

	if rate.GreaterThan(decimal.NewFromInt(1)) {
		return decimal.NewFromInt(1), true
	}

	return rate, false
}

// ValidRate clamps rate and logs when the input was out of range.
func ValidRate(rate decimal.Decimal, context string) decimal.Decimal {
	clamped, adjusted := ClampRate(rate)
	if adjusted {
		slog.Warn("tax rate out of range, clamped",
			"context", context,
			"raw", rate.String(),
			"clamped", clamped.String(),
		)
	}

	return clamped
}

// FormatPercent renders a decimal rate as a percentage with 4 decimal places
// (0.0825 -> "8.2500%"). Verification prompts state the applied rate this way
// so the knowledge base never mistakes a zero tax amount for a zero rate.
func FormatPercent(rate decimal.Decimal) string {
	return fmt.Sprintf("%s%%", rate.Mul(decimal.NewFromInt(100)).StringFixed(4))
}
