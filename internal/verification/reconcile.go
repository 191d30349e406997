package verification

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/taxright/taxright/internal/invoice"
)

// Engine enforces consistency between expected and applied rates and
// produces invoice-level determinations. Configuration is injected so tests
// run against known values.
type Engine struct {
	logger *slog.Logger
}

func NewEngine(logger *slog.Logger) *Engine {
	return &Engine{logger: logger}
}

// exemptionKeywords are the phrases that mark a zero expected rate as a
// genuine exemption claim rather than a parsing artifact.
var exemptionKeywords = []string{
	"exempt",
	"non-taxable",
	"tax-free",
	"no tax",
	"not subject to tax",
}

// contradictionKeywords are the phrases that signal the reasoning narrative
// disputes the applied rate.
var contradictionKeywords = []string{
	"should be",
	"differs",
	"does not match",
}

func containsAny(text string, keywords []string) bool {
	lower := strings.ToLower(text)
	for _, kw := range keywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}

	return false
}

// ReconcileItem applies the consistency rules to one verification in place:
// the zero-expected-rate override, the hard consistency rule, and
// contradiction detection. After this call, IsCorrect is true iff the
// expected and applied rates match within tolerance.
func (e *Engine) ReconcileItem(v *Verification, taxStatus invoice.TaxStatus, mentions []decimal.Decimal) {
	e.overrideZeroExpected(v, taxStatus, mentions)

	kbClaim := v.IsCorrect

	if RatesMatch(v.AppliedTaxRate, v.ExpectedTaxRate) {
		v.IsCorrect = true

		if !kbClaim {
			v.Reasoning += fmt.Sprintf(
				" [Auto-corrected: applied rate %s matches expected rate %s within tolerance.]",
				v.AppliedTaxRate.String(), v.ExpectedTaxRate.String())
		}
	} else {
		v.IsCorrect = false

		if kbClaim {
			v.Reasoning += fmt.Sprintf(
				" [Auto-corrected: applied rate %s does not match expected rate %s.]",
				v.AppliedTaxRate.String(), v.ExpectedTaxRate.String())
		}
	}

	e.detectContradiction(v, mentions)
}

// overrideZeroExpected treats a zero expected rate against a nonzero applied
// rate as a parsing artifact when the reasoning mentions a nonzero rate and
// does not claim an exemption. Applies only to items marked taxable.
func (e *Engine) overrideZeroExpected(v *Verification, taxStatus invoice.TaxStatus, mentions []decimal.Decimal) {
	if !v.ExpectedTaxRate.IsZero() || !v.AppliedTaxRate.IsPositive() {
		return
	}

	if taxStatus != invoice.TaxStatusTaxable || containsAny(v.Reasoning, exemptionKeywords) {
		return
	}

	for _, mention := range mentions {
		if !mention.IsPositive() {
			continue
		}

		e.logger.Info("adopting mentioned rate over zero expected rate",
			slog.String("line_item_id", v.LineItemID.String()),
			slog.String("mentioned", mention.String()),
			slog.String("applied", v.AppliedTaxRate.String()),
		)

		v.ExpectedTaxRate = mention
		v.Reasoning += fmt.Sprintf(
			" [Expected rate adopted from reasoning text: %s.]", mention.String())

		return
	}
}

// detectContradiction handles reasoning that argues with its own verdict. A
// mentioned rate that disagrees with the applied rate but agrees with the
// expected rate is a genuine dispute; mentions that reconcile with either
// rate are precision noise and only annotated.
func (e *Engine) detectContradiction(v *Verification, mentions []decimal.Decimal) {
	if len(mentions) == 0 || !containsAny(v.Reasoning, contradictionKeywords) {
		return
	}

	disputed := false
	reconciled := true

	for _, mention := range mentions {
		matchesApplied := RatesMatch(mention, v.AppliedTaxRate)
		matchesExpected := RatesMatch(mention, v.ExpectedTaxRate)

		if !matchesApplied && matchesExpected {
			disputed = true
		}

		if !matchesApplied && !matchesExpected {
			reconciled = false
		}
	}

	if disputed {
		if v.IsCorrect {
			v.IsCorrect = false
			v.Reasoning += " [Contradiction: reasoning disputes the applied rate.]"
		}

		return
	}

	if reconciled {
		v.Reasoning += " [Clarified: rate mentions reconcile with the applied or expected rate.]"
	}
}
