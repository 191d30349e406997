package verification_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taxright/taxright/internal/invoice"
	"github.com/taxright/taxright/internal/verification"
)

func caInvoice() *invoice.Invoice {
	return &invoice.Invoice{
		StateCode:    "CA",
		Jurisdiction: "Los Angeles County",
	}
}

func TestBuildPrompt_PerLineMode(t *testing.T) {
	item := &invoice.LineItem{
		Description: "Office chairs",
		LineTotal:   dec("100.00"),
		TaxAmount:   dec("8.25"),
		TaxRate:     dec("0.0825"),
	}

	prompt := verification.BuildPrompt(item, caInvoice())

	assert.Contains(t, prompt, "CA (Los Angeles County)")
	assert.Contains(t, prompt, "Office chairs")
	assert.Contains(t, prompt, "Applied tax rate: 8.2500%")
	assert.Contains(t, prompt, "Tax charged on this line: $8.25")
	assert.Contains(t, prompt, `"is_correct"`)
	assert.Contains(t, prompt, "6.75% and 6.7500% are the same rate")
}

// Scenario: tax shown as a lump sum, so the per-line amount is zero even
// though the rate is nonzero. The prompt must tell the KB to verify the rate.
func TestBuildPrompt_TotalMode(t *testing.T) {
	inv := caInvoice()
	inv.TotalTaxAmount = dec("41.25")

	item := &invoice.LineItem{
		Description: "Consulting",
		LineTotal:   dec("500.00"),
		TaxAmount:   dec("0.00"),
		TaxRate:     dec("0.0825"),
	}

	prompt := verification.BuildPrompt(item, inv)

	assert.Contains(t, prompt, "single total of $41.25")
	assert.Contains(t, prompt, "Verify the applied tax RATE")
	assert.Contains(t, prompt, "Applied tax rate: 8.2500%")
	assert.NotContains(t, prompt, "Tax charged on this line")
}

func TestBuildPrompt_ExemptCandidateMode(t *testing.T) {
	item := &invoice.LineItem{
		Description: "Groceries",
		LineTotal:   dec("42.00"),
		TaxAmount:   dec("0"),
		TaxRate:     dec("0"),
	}

	prompt := verification.BuildPrompt(item, caInvoice())

	assert.Contains(t, prompt, "No tax was charged on this line")
	assert.Contains(t, prompt, "exemption")
	assert.Contains(t, prompt, "Applied tax rate: 0.0000%")
}

// Round-trip: a synthetic well-formed answer to a built prompt parses back
// to the exact values it encodes.
func TestPromptResponseRoundTrip(t *testing.T) {
	item := &invoice.LineItem{
		Description: "Hardware",
		LineTotal:   dec("250.00"),
		TaxAmount:   dec("16.88"),
		TaxRate:     dec("0.0675"),
	}

	prompt := verification.BuildPrompt(item, caInvoice())
	require.NotEmpty(t, prompt)

	answer := fmt.Sprintf(
		`{"is_correct": %t, "expected_tax_rate": %s, "confidence_score": %g, "reasoning": "The combined rate is 6.7500%%."}`,
		true, "0.0675", 0.92)

	resp, ok := verification.ParseResponse(answer)
	require.True(t, ok)

	assert.True(t, resp.IsCorrect)
	assert.True(t, dec("0.0675").Equal(resp.ExpectedRate))
	assert.InDelta(t, 0.92, resp.Confidence, 1e-9)
}
