package pricing

import (
	"github.com/shopspring/decimal"
)

// costPrecision is the rounding applied to computed costs. Sub-cent precision
// matters once costs are aggregated across thousands of line items.
const costPrecision = 8

var perThousand = decimal.NewFromInt(1000)

// TokenUsage is the token accounting for a single model call.
type TokenUsage struct {
	InputTokens  int64
	OutputTokens int64
	TotalTokens  int64
}

// ModelPricing holds per-1K-token costs for a model.
type ModelPricing struct {
	InputPer1K  decimal.Decimal
	OutputPer1K decimal.Decimal
}

// Cost is the currency cost of a single model call.
type Cost struct {
	Input  decimal.Decimal
	Output decimal.Decimal
	Total  decimal.Decimal
}

// Table maps model identifiers to their pricing, with a fallback pair for
// models that are not configured. It is immutable after construction and
// passed explicitly into the services that need it, so tests can inject
// known prices.
type Table struct {
	models   map[string]ModelPricing
	fallback ModelPricing
}

func NewTable(models map[string]ModelPricing, fallback ModelPricing) *Table {
	copied := make(map[string]ModelPricing, len(models))
	for id, p := range models {
		copied[id] = p
	}

	return &Table{models: copied, fallback: fallback}
}

// Lookup returns the pricing for the given model, or the fallback pair when
// the model is unknown.
func (t *Table) Lookup(modelID string) ModelPricing {
	if p, ok := t.models[modelID]; ok {
		return p
	}

	return t.fallback
}

// Compute converts token usage to cost: (tokens / 1000) * pricePerThousand,
// per direction, rounded to 8 decimal places.
func Compute(usage TokenUsage, p ModelPricing) Cost {
	input := decimal.NewFromInt(usage.InputTokens).Div(perThousand).Mul(p.InputPer1K).Round(costPrecision)
	output := decimal.NewFromInt(usage.OutputTokens).Div(perThousand).Mul(p.OutputPer1K).Round(costPrecision)

	return Cost{
		Input:  input,
		Output: output,
		Total:  input.Add(output).Round(costPrecision),
	}
}

// InvoiceTotal recomputes an invoice's total model spend from its
// constituents. Recomputing rather than incrementing avoids drift when a
// constituent cost is replaced on re-verification.
func InvoiceTotal(ocrCost decimal.Decimal, lineItemCosts []decimal.Decimal) decimal.Decimal {
	total := ocrCost
	for _, c := range lineItemCosts {
		total = total.Add(c)
	}

	return total.Round(costPrecision)
}
