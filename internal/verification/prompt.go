package verification

import (
	"fmt"
	"strings"

	"github.com/taxright/taxright/internal/invoice"
	"github.com/taxright/taxright/internal/money"
)

// displayMode classifies how the invoice reports tax for a line item. The
// knowledge base has to be told, because a $0.00 per-line tax amount under a
// lump-sum invoice does not mean the item is untaxed.
type displayMode int

const (
	modePerLine displayMode = iota
	modeTotal
	modeExemptCandidate
)

func classifyDisplayMode(item *invoice.LineItem, inv *invoice.Invoice) displayMode {
	if item.TaxAmount.IsPositive() {
		return modePerLine
	}

	if item.TaxRate.IsPositive() && inv.TotalTaxAmount.IsPositive() {
		return modeTotal
	}

	if item.TaxRate.IsZero() {
		return modeExemptCandidate
	}

	return modePerLine
}

// BuildPrompt renders the deterministic knowledge base question for one line
// item. The applied rate is always stated as a 4-decimal percentage so the
// knowledge base never reads a zero tax amount as a zero rate.
func BuildPrompt(item *invoice.LineItem, inv *invoice.Invoice) string {
	var b strings.Builder

	location := inv.StateCode
	if inv.Jurisdiction != "" {
		location = fmt.Sprintf("%s (%s)", inv.StateCode, inv.Jurisdiction)
	}

	fmt.Fprintf(&b, "You are verifying sales tax on an invoice from the US state %s.\n\n", location)
	fmt.Fprintf(&b, "Item: %s\n", item.Description)
	fmt.Fprintf(&b, "Line total: $%s\n", item.LineTotal.StringFixed(2))
	fmt.Fprintf(&b, "Applied tax rate: %s\n", money.FormatPercent(item.TaxRate))

	switch classifyDisplayMode(item, inv) {
	case modeTotal:
		fmt.Fprintf(&b,
			"Tax on this invoice is shown as a single total of $%s rather than per line, so this item's tax amount reads as $0.00.\n"+
				"Verify the applied tax RATE for this item, not the per-line tax amount.\n",
			inv.TotalTaxAmount.StringFixed(2))
	case modePerLine:
		fmt.Fprintf(&b, "Tax charged on this line: $%s\n", item.TaxAmount.StringFixed(2))
		b.WriteString("Verify whether the applied tax rate is correct for this item.\n")
	case modeExemptCandidate:
		b.WriteString("No tax was charged on this line (tax amount $0.00, rate 0.0000%).\n")
		b.WriteString("Confirm whether this item is eligible for tax exemption in this jurisdiction.\n")
	}

	b.WriteString("\nTreat tax rates that differ only in precision as equal: 6.75% and 6.7500% are the same rate.\n")
	b.WriteString("\nRespond with ONLY a JSON object in this exact format:\n")
	b.WriteString(`{"is_correct": true or false, "expected_tax_rate": the correct rate as a decimal (e.g. 0.0825 for 8.25%), "confidence_score": a number between 0 and 1, "reasoning": "a short explanation"}`)

	return b.String()
}
