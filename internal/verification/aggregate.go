package verification

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/taxright/taxright/internal/invoice"
	"github.com/taxright/taxright/internal/money"
)

// centTolerance is the slack allowed when matching line item sums against
// invoice totals.
var centTolerance = decimal.NewFromFloat(0.01)

// ReconcileInvoice aggregates per-item verifications into the invoice
// determination. Verifications whose expected rate could not be used for the
// money figures are corrected in place and returned so the stored records
// stay consistent with the determination; the caller must re-persist them.
//
// A panic during aggregation yields a zeroed error determination rather than
// no determination at all.
func (e *Engine) ReconcileInvoice(inv *invoice.Invoice, items []*invoice.LineItem, verifications map[uuid.UUID]*Verification) (det *Determination, corrected []*Verification, err error) {
	if inv.StateCode == invoice.UnknownState || len(items) == 0 {
		return nil, nil, ErrNotApplicable
	}

	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("tax aggregation panicked, persisting zeroed determination",
				slog.String("invoice_id", inv.ID.String()),
				slog.Any("panic", r),
			)

			det = &Determination{
				InvoiceID:   inv.ID,
				Status:      StatusError,
				ExpectedTax: decimal.Zero,
				ActualTax:   inv.TotalTaxAmount.Round(2),
				VerifiedAt:  time.Now().UTC(),
			}
			det.DiscrepancyAmount = det.ActualTax
			corrected = nil
			err = nil
		}
	}()

	// Clamp every expected rate before use; out-of-range values are logged
	// by the validator.
	for id, v := range verifications {
		v.ExpectedTaxRate = money.ValidRate(v.ExpectedTaxRate, fmt.Sprintf("line item %s", id))
	}

	included := includedItems(items, verifications)

	taxableSubtotal := decimal.Zero
	for _, item := range included {
		taxableSubtotal = taxableSubtotal.Add(item.LineTotal)
	}

	discountAbsorbed := e.discountAbsorbed(inv, items)

	totalExpected := decimal.Zero

	for _, item := range included {
		base := item.LineTotal

		if !discountAbsorbed && inv.DiscountAmount.IsPositive() && taxableSubtotal.IsPositive() {
			share := item.LineTotal.Div(taxableSubtotal)
			base = base.Sub(inv.DiscountAmount.Mul(share))
		}

		rate, fixup := e.effectiveRate(item, verifications)
		if fixup != nil {
			corrected = append(corrected, fixup)
		}

		totalExpected = totalExpected.Add(rate.Mul(base))
	}

	totalActual := actualTax(inv, items)

	det = &Determination{
		InvoiceID:   inv.ID,
		ExpectedTax: totalExpected.Round(2),
		ActualTax:   totalActual.Round(2),
		VerifiedAt:  time.Now().UTC(),
	}
	det.DiscrepancyAmount = det.ActualTax.Sub(det.ExpectedTax)

	det.Status = StatusVerified
	confidenceSum := 0.0

	for _, item := range items {
		v, ok := verifications[item.ID]
		if !ok {
			det.Status = StatusDiscrepancy
			continue
		}

		det.TotalItems++
		confidenceSum += v.ConfidenceScore

		if v.IsCorrect {
			det.CorrectItems++
		} else {
			det.Status = StatusDiscrepancy
		}
	}

	if det.TotalItems > 0 {
		det.AverageConfidence = confidenceSum / float64(det.TotalItems)
	}

	return det, corrected, nil
}

// includedItems applies the taxable-for-calculation rule: an item is
// excluded only when its tax_status is not taxable AND it carries no nonzero
// expected or applied rate.
func includedItems(items []*invoice.LineItem, verifications map[uuid.UUID]*Verification) []*invoice.LineItem {
	var included []*invoice.LineItem

	for _, item := range items {
		if item.TaxStatus == invoice.TaxStatusTaxable {
			included = append(included, item)
			continue
		}

		if item.TaxRate.IsPositive() {
			included = append(included, item)
			continue
		}

		if v, ok := verifications[item.ID]; ok && v.ExpectedTaxRate.IsPositive() {
			included = append(included, item)
		}
	}

	return included
}

// discountAbsorbed reports whether the invoice-level discount is already
// baked into the line totals. Line totals matching total_amount means
// post-discount; matching total_amount + discount means the discount still
// has to be allocated.
func (e *Engine) discountAbsorbed(inv *invoice.Invoice, items []*invoice.LineItem) bool {
	if !inv.DiscountAmount.IsPositive() {
		return true
	}

	sum := decimal.Zero
	for _, item := range items {
		sum = sum.Add(item.LineTotal)
	}

	if sum.Sub(inv.TotalAmount).Abs().LessThanOrEqual(centTolerance) {
		return true
	}

	if sum.Sub(inv.TotalAmount.Add(inv.DiscountAmount)).Abs().LessThanOrEqual(centTolerance) {
		return false
	}

	e.logger.Warn("line totals match neither pre- nor post-discount total, allocating discount",
		slog.String("invoice_id", inv.ID.String()),
		slog.String("line_sum", sum.String()),
		slog.String("total_amount", inv.TotalAmount.String()),
		slog.String("discount", inv.DiscountAmount.String()),
	)

	return false
}

// effectiveRate picks the rate used in the expected-tax sum. Items without a
// verification, or whose expected rate collapsed to zero against a nonzero
// applied rate, fall back to the applied rate; their verification record is
// corrected to match so the stored state agrees with the money figures.
func (e *Engine) effectiveRate(item *invoice.LineItem, verifications map[uuid.UUID]*Verification) (decimal.Decimal, *Verification) {
	v, ok := verifications[item.ID]
	if !ok {
		return item.TaxRate, nil
	}

	// Error verifications keep is_correct=false: the applied rate is still
	// the best available figure for the money sum, but the record must not
	// claim the rate was verified.
	if v.Details.ErrorCode != "" {
		if item.TaxRate.IsPositive() {
			return item.TaxRate, nil
		}

		return v.ExpectedTaxRate, nil
	}

	if v.ExpectedTaxRate.IsZero() && item.TaxRate.IsPositive() {
		e.logger.Info("expected rate collapsed to zero, using applied rate",
			slog.String("line_item_id", item.ID.String()),
			slog.String("applied", item.TaxRate.String()),
		)

		v.ExpectedTaxRate = item.TaxRate
		v.IsCorrect = true
		v.Reasoning += " [Corrected: applied rate used for the financial determination.]"

		return item.TaxRate, v
	}

	return v.ExpectedTaxRate, nil
}

// actualTax picks lump-sum or per-line mode, never both.
func actualTax(inv *invoice.Invoice, items []*invoice.LineItem) decimal.Decimal {
	if inv.TotalTaxAmount.IsPositive() {
		return inv.TotalTaxAmount
	}

	sum := decimal.Zero
	for _, item := range items {
		sum = sum.Add(item.TaxAmount)
	}

	return sum
}
