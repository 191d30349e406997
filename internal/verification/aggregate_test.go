package verification_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taxright/taxright/internal/invoice"
	"github.com/taxright/taxright/internal/verification"
)

func verified(itemID uuid.UUID, expected, applied string) *verification.Verification {
	return &verification.Verification{
		LineItemID:      itemID,
		IsCorrect:       dec(expected).Sub(dec(applied)).Abs().LessThanOrEqual(dec("0.0001")),
		ExpectedTaxRate: dec(expected),
		AppliedTaxRate:  dec(applied),
		ConfidenceScore: 0.9,
	}
}

func TestReconcileInvoice_NotApplicable(t *testing.T) {
	engine := newEngine()

	t.Run("UnknownState", func(t *testing.T) {
		inv := &invoice.Invoice{ID: uuid.New(), StateCode: invoice.UnknownState}
		items := []*invoice.LineItem{{ID: uuid.New()}}

		_, _, err := engine.ReconcileInvoice(inv, items, nil)
		assert.ErrorIs(t, err, verification.ErrNotApplicable)
	})

	t.Run("NoLineItems", func(t *testing.T) {
		inv := &invoice.Invoice{ID: uuid.New(), StateCode: "CA"}

		_, _, err := engine.ReconcileInvoice(inv, nil, nil)
		assert.ErrorIs(t, err, verification.ErrNotApplicable)
	})
}

// Scenario: lump-sum invoice. The determination uses total_tax_amount, not
// the (all zero) per-line tax amounts.
func TestReconcileInvoice_LumpSumMode(t *testing.T) {
	itemID := uuid.New()
	inv := &invoice.Invoice{
		ID:             uuid.New(),
		StateCode:      "CA",
		TotalAmount:    dec("500.00"),
		TotalTaxAmount: dec("41.25"),
	}
	items := []*invoice.LineItem{
		{
			ID: itemID, LineTotal: dec("500.00"), TaxAmount: dec("0.00"),
			TaxRate: dec("0.0825"), TaxStatus: invoice.TaxStatusTaxable,
		},
	}
	verifications := map[uuid.UUID]*verification.Verification{
		itemID: verified(itemID, "0.0825", "0.0825"),
	}

	det, corrected, err := newEngine().ReconcileInvoice(inv, items, verifications)
	require.NoError(t, err)
	assert.Empty(t, corrected)

	assert.True(t, dec("41.25").Equal(det.ActualTax), "got %s", det.ActualTax)
	assert.True(t, dec("41.25").Equal(det.ExpectedTax), "got %s", det.ExpectedTax)
	assert.True(t, det.DiscrepancyAmount.IsZero())
	assert.Equal(t, verification.StatusVerified, det.Status)
	assert.Equal(t, 1, det.TotalItems)
	assert.Equal(t, 1, det.CorrectItems)
	assert.InDelta(t, 0.9, det.AverageConfidence, 1e-9)
}

func TestReconcileInvoice_PerLineMode(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	inv := &invoice.Invoice{
		ID:          uuid.New(),
		StateCode:   "TX",
		TotalAmount: dec("216.50"),
	}
	items := []*invoice.LineItem{
		{ID: a, LineTotal: dec("100.00"), TaxAmount: dec("8.25"), TaxRate: dec("0.0825"), TaxStatus: invoice.TaxStatusTaxable},
		{ID: b, LineTotal: dec("100.00"), TaxAmount: dec("8.25"), TaxRate: dec("0.0825"), TaxStatus: invoice.TaxStatusTaxable},
	}
	verifications := map[uuid.UUID]*verification.Verification{
		a: verified(a, "0.0825", "0.0825"),
		b: verified(b, "0.0825", "0.0825"),
	}

	det, _, err := newEngine().ReconcileInvoice(inv, items, verifications)
	require.NoError(t, err)

	assert.True(t, dec("16.50").Equal(det.ActualTax), "got %s", det.ActualTax)
	assert.True(t, dec("16.50").Equal(det.ExpectedTax), "got %s", det.ExpectedTax)
	assert.Equal(t, verification.StatusVerified, det.Status)
}

// The invoice-level discount has not been absorbed into line totals (they
// sum to total + discount), so it is allocated proportionally before the
// expected tax is computed.
func TestReconcileInvoice_DiscountAllocated(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	inv := &invoice.Invoice{
		ID:             uuid.New(),
		StateCode:      "CA",
		TotalAmount:    dec("90.00"),
		DiscountAmount: dec("10.00"),
		TotalTaxAmount: dec("7.43"),
	}
	items := []*invoice.LineItem{
		{ID: a, LineTotal: dec("60.00"), TaxRate: dec("0.0825"), TaxStatus: invoice.TaxStatusTaxable},
		{ID: b, LineTotal: dec("40.00"), TaxRate: dec("0.0825"), TaxStatus: invoice.TaxStatusTaxable},
	}
	verifications := map[uuid.UUID]*verification.Verification{
		a: verified(a, "0.0825", "0.0825"),
		b: verified(b, "0.0825", "0.0825"),
	}

	det, _, err := newEngine().ReconcileInvoice(inv, items, verifications)
	require.NoError(t, err)

	// (100 - 10) * 0.0825 = 7.425 -> 7.43 at currency precision.
	assert.True(t, dec("7.43").Equal(det.ExpectedTax), "got %s", det.ExpectedTax)
	assert.True(t, det.DiscrepancyAmount.IsZero())
}

// Line totals already sum to total_amount, so the discount is absorbed and
// must not be subtracted again.
func TestReconcileInvoice_DiscountAbsorbed(t *testing.T) {
	a := uuid.New()
	inv := &invoice.Invoice{
		ID:             uuid.New(),
		StateCode:      "CA",
		TotalAmount:    dec("90.00"),
		DiscountAmount: dec("10.00"),
		TotalTaxAmount: dec("7.43"),
	}
	items := []*invoice.LineItem{
		{ID: a, LineTotal: dec("90.00"), TaxRate: dec("0.0825"), TaxStatus: invoice.TaxStatusTaxable},
	}
	verifications := map[uuid.UUID]*verification.Verification{
		a: verified(a, "0.0825", "0.0825"),
	}

	det, _, err := newEngine().ReconcileInvoice(inv, items, verifications)
	require.NoError(t, err)

	// 90 * 0.0825 = 7.425 -> 7.43; no second subtraction of the discount.
	assert.True(t, dec("7.43").Equal(det.ExpectedTax), "got %s", det.ExpectedTax)
}

// Exempt items with no expected rate stay out of the taxable subtotal;
// unknown items carrying a rate stay in.
func TestReconcileInvoice_InclusionRule(t *testing.T) {
	taxable, exempt, unknown := uuid.New(), uuid.New(), uuid.New()
	inv := &invoice.Invoice{
		ID:          uuid.New(),
		StateCode:   "CA",
		TotalAmount: dec("300.00"),
	}
	items := []*invoice.LineItem{
		{ID: taxable, LineTotal: dec("100.00"), TaxAmount: dec("8.25"), TaxRate: dec("0.0825"), TaxStatus: invoice.TaxStatusTaxable},
		{ID: exempt, LineTotal: dec("100.00"), TaxStatus: invoice.TaxStatusExempt},
		{ID: unknown, LineTotal: dec("100.00"), TaxAmount: dec("8.25"), TaxRate: dec("0.0825"), TaxStatus: invoice.TaxStatusUnknown},
	}
	verifications := map[uuid.UUID]*verification.Verification{
		taxable: verified(taxable, "0.0825", "0.0825"),
		exempt:  verified(exempt, "0", "0"),
		unknown: verified(unknown, "0.0825", "0.0825"),
	}

	det, _, err := newEngine().ReconcileInvoice(inv, items, verifications)
	require.NoError(t, err)

	// Only the taxable and unknown-with-rate items contribute: 200 * 0.0825.
	assert.True(t, dec("16.50").Equal(det.ExpectedTax), "got %s", det.ExpectedTax)
	assert.True(t, dec("16.50").Equal(det.ActualTax))
	assert.Equal(t, verification.StatusVerified, det.Status)
}

// An item whose expected rate collapsed to zero against a nonzero applied
// rate falls back to the applied rate, and its verification record is
// corrected to match the figures used.
func TestReconcileInvoice_AppliedRateFallbackCorrectsVerification(t *testing.T) {
	a := uuid.New()
	inv := &invoice.Invoice{
		ID:             uuid.New(),
		StateCode:      "CA",
		TotalAmount:    dec("100.00"),
		TotalTaxAmount: dec("8.25"),
	}
	items := []*invoice.LineItem{
		{ID: a, LineTotal: dec("100.00"), TaxRate: dec("0.0825"), TaxStatus: invoice.TaxStatusTaxable},
	}

	v := verified(a, "0", "0.0825")
	v.IsCorrect = false
	verifications := map[uuid.UUID]*verification.Verification{a: v}

	det, corrected, err := newEngine().ReconcileInvoice(inv, items, verifications)
	require.NoError(t, err)

	require.Len(t, corrected, 1)
	assert.Equal(t, a, corrected[0].LineItemID)
	assert.True(t, dec("0.0825").Equal(corrected[0].ExpectedTaxRate))
	assert.True(t, corrected[0].IsCorrect)

	assert.True(t, dec("8.25").Equal(det.ExpectedTax), "got %s", det.ExpectedTax)
	assert.Equal(t, verification.StatusVerified, det.Status)
}

func TestReconcileInvoice_DiscrepancyStatus(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	inv := &invoice.Invoice{
		ID:          uuid.New(),
		StateCode:   "CA",
		TotalAmount: dec("200.00"),
	}
	items := []*invoice.LineItem{
		{ID: a, LineTotal: dec("100.00"), TaxAmount: dec("8.25"), TaxRate: dec("0.0825"), TaxStatus: invoice.TaxStatusTaxable},
		{ID: b, LineTotal: dec("100.00"), TaxAmount: dec("5.00"), TaxRate: dec("0.05"), TaxStatus: invoice.TaxStatusTaxable},
	}
	verifications := map[uuid.UUID]*verification.Verification{
		a: verified(a, "0.0825", "0.0825"),
		b: verified(b, "0.0825", "0.05"),
	}

	det, _, err := newEngine().ReconcileInvoice(inv, items, verifications)
	require.NoError(t, err)

	assert.Equal(t, verification.StatusDiscrepancy, det.Status)
	assert.Equal(t, 2, det.TotalItems)
	assert.Equal(t, 1, det.CorrectItems)

	// actual 13.25 vs expected 16.50.
	assert.True(t, dec("13.25").Equal(det.ActualTax), "got %s", det.ActualTax)
	assert.True(t, dec("16.50").Equal(det.ExpectedTax), "got %s", det.ExpectedTax)
	assert.True(t, dec("-3.25").Equal(det.DiscrepancyAmount), "got %s", det.DiscrepancyAmount)
}

// A panic during aggregation still yields an error determination with zeroed
// money figures, never a missing one.
func TestReconcileInvoice_PanicYieldsErrorDetermination(t *testing.T) {
	a := uuid.New()
	inv := &invoice.Invoice{
		ID:             uuid.New(),
		StateCode:      "CA",
		TotalAmount:    dec("100.00"),
		TotalTaxAmount: dec("8.25"),
	}
	items := []*invoice.LineItem{
		{ID: a, LineTotal: dec("100.00"), TaxRate: dec("0.0825"), TaxStatus: invoice.TaxStatusTaxable},
	}

	// A nil verification blows up the rate clamp pass.
	verifications := map[uuid.UUID]*verification.Verification{a: nil}

	det, corrected, err := newEngine().ReconcileInvoice(inv, items, verifications)
	require.NoError(t, err)
	require.NotNil(t, det)
	assert.Empty(t, corrected)

	assert.Equal(t, verification.StatusError, det.Status)
	assert.Equal(t, inv.ID, det.InvoiceID)
	assert.True(t, det.ExpectedTax.IsZero())
	assert.True(t, dec("8.25").Equal(det.ActualTax), "got %s", det.ActualTax)
	assert.True(t, dec("8.25").Equal(det.DiscrepancyAmount), "got %s", det.DiscrepancyAmount)
	assert.Equal(t, 0, det.TotalItems)
	assert.False(t, det.VerifiedAt.IsZero())
}

func TestReconcileInvoice_OutOfRangeRateClamped(t *testing.T) {
	a := uuid.New()
	inv := &invoice.Invoice{
		ID:             uuid.New(),
		StateCode:      "CA",
		TotalAmount:    dec("100.00"),
		TotalTaxAmount: dec("8.25"),
	}
	items := []*invoice.LineItem{
		{ID: a, LineTotal: dec("100.00"), TaxRate: dec("0.0825"), TaxStatus: invoice.TaxStatusTaxable},
	}

	v := verified(a, "0.0825", "0.0825")
	v.ExpectedTaxRate = dec("8.25") // percentage leaked in as a rate
	verifications := map[uuid.UUID]*verification.Verification{a: v}

	det, _, err := newEngine().ReconcileInvoice(inv, items, verifications)
	require.NoError(t, err)

	// Clamped to 1.0: expected = 100 * 1.0.
	assert.True(t, dec("100.00").Equal(det.ExpectedTax), "got %s", det.ExpectedTax)
}
