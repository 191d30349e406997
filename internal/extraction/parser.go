package extraction

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	enc "github.com/taxright/taxright/internal/encoding"
	"github.com/taxright/taxright/internal/money"
)

// Discount inference thresholds. These are empirically tuned, not derived
// from a model; they are constants so they can be adjusted without touching
// the inference logic, but historical determinations depend on these exact
// values.
var (
	// centTolerance is the arithmetic slack allowed before a totals mismatch
	// is considered real.
	centTolerance = decimal.RequireFromString("0.01")

	// maxZeroLineTotalRatio: when at least half the line items carry a zero
	// line_total the extraction itself is suspect, and a totals mismatch is
	// presumed to be OCR failure rather than a header-level discount.
	maxZeroLineTotalRatio = decimal.RequireFromString("0.5")

	// maxMismatchRatio: a mismatch of 50% or more of the invoice total is a
	// data-quality problem, not a discount.
	maxMismatchRatio = decimal.RequireFromString("0.5")
)

// dateFormats are tried in order; first match wins.
var dateFormats = []string{
	"2006-01-02", // YYYY-MM-DD
	"01/02/2006", // MM/DD/YYYY
	"02/01/2006", // DD/MM/YYYY
	"2006/01/02", // YYYY/MM/DD
	"01-02-2006", // MM-DD-YYYY
	"02-01-2006", // DD-MM-YYYY
}

var validTaxStatuses = map[string]struct{}{
	"taxable": {},
	"exempt":  {},
	"unknown": {},
}

// Invoice is the normalized record built from OCR JSON, before persistence.
type Invoice struct {
	InvoiceNumber    string
	Date             time.Time
	HasDate          bool
	VendorName       string
	TotalAmount      decimal.Decimal
	TotalTaxAmount   decimal.Decimal
	DiscountAmount   decimal.Decimal
	DiscountInferred bool
	StateCode        string
	Jurisdiction     string
	LineItems        []LineItem
	Warnings         []string
}

// LineItem is a single normalized invoice line.
type LineItem struct {
	Description      string
	Quantity         decimal.Decimal
	UnitPrice        decimal.Decimal
	LineTotal        decimal.Decimal
	DiscountAmount   decimal.Decimal
	DiscountInferred bool
	TaxAmount        decimal.Decimal
	TaxRate          decimal.Decimal
	TaxStatus        string
}

// Parser builds normalized invoice records from raw OCR model output.
// Malformed scalar fields degrade to defaults with a recorded warning; only a
// payload with no recoverable JSON object at all is an error.
type Parser struct{}

func NewParser() *Parser {
	return &Parser{}
}

func (p *Parser) Parse(raw []byte) (*Invoice, error) {
	text, err := enc.DecodeString(raw)
	if err != nil {
		return nil, fmt.Errorf("decode payload: %w", err)
	}

	jsonStr, ok := ExtractJSON(text)
	if !ok {
		return nil, fmt.Errorf("no JSON object found in OCR output")
	}

	var fields map[string]any
	if err := json.Unmarshal([]byte(jsonStr), &fields); err != nil {
		return nil, fmt.Errorf("unmarshal OCR JSON: %w", err)
	}

	inv := &Invoice{
		InvoiceNumber:  getString(fields, "invoice_number", "UNKNOWN"),
		VendorName:     getString(fields, "vendor_name", "Unknown Vendor"),
		TotalAmount:    money.ToDecimal(fields["total_amount"], decimal.Zero),
		TotalTaxAmount: money.ToDecimal(fields["total_tax_amount"], decimal.Zero),
		DiscountAmount: money.ToDecimal(fields["invoice_discount_amount"], decimal.Zero),
		StateCode:      parseStateCode(fields["state_code"]),
		Jurisdiction:   getString(fields, "jurisdiction", ""),
	}

	inv.Date, inv.HasDate = parseDate(fields["date"])
	if !inv.HasDate {
		inv.warn("could not parse invoice date")
	}

	inv.LineItems = p.parseLineItems(fields["line_items"], inv)

	p.inferInvoiceDiscount(inv)

	return inv, nil
}

func (inv *Invoice) warn(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	inv.Warnings = append(inv.Warnings, msg)
	slog.Warn("invoice extraction degraded", "invoice_number", inv.InvoiceNumber, "detail", msg)
}

func (p *Parser) parseLineItems(value any, inv *Invoice) []LineItem {
	rawItems, ok := value.([]any)
	if !ok {
		if value != nil {
			inv.warn("line_items is not an array, ignoring")
		}

		return nil
	}

	items := make([]LineItem, 0, len(rawItems))

	for idx, rawItem := range rawItems {
		fields, ok := rawItem.(map[string]any)
		if !ok {
			inv.warn("line item %d is not an object, skipping", idx)
			continue
		}

		item := LineItem{
			Description: getString(fields, "description", fmt.Sprintf("Item %d", idx+1)),
			Quantity:    money.ToDecimal(fields["quantity"], decimal.NewFromInt(1)),
			UnitPrice:   money.ToDecimal(fields["unit_price"], decimal.Zero),
			LineTotal:   money.ToDecimal(fields["line_total"], decimal.Zero),
			TaxAmount:   money.ToDecimal(fields["tax_amount"], decimal.Zero),
			TaxRate:     money.ToDecimal(fields["tax_rate"], decimal.Zero),
			TaxStatus:   parseTaxStatus(fields["tax_status"]),
			DiscountAmount: money.ToDecimal(fields["discount_amount"], decimal.Zero),
		}

		if item.Quantity.IsNegative() || item.UnitPrice.IsNegative() || item.LineTotal.IsNegative() {
			inv.warn("line item %d has negative amounts, skipping", idx)
			continue
		}

		product := item.Quantity.Mul(item.UnitPrice)

		// Missing line_total defaults to quantity * unit_price.
		if item.LineTotal.IsZero() && !product.IsZero() {
			item.LineTotal = product
		}

		// A line total below quantity * unit_price with no extracted discount
		// means the discount was applied inline.
		if item.DiscountAmount.IsZero() && item.LineTotal.LessThan(product) {
			item.DiscountAmount = product.Sub(item.LineTotal)
			item.DiscountInferred = true
		}

		// Soft arithmetic check, logged not enforced.
		if item.LineTotal.Sub(product.Sub(item.DiscountAmount)).Abs().GreaterThan(centTolerance) {
			inv.warn("line item %d total %s does not match qty*price-discount", idx, item.LineTotal)
		}

		items = append(items, item)
	}

	return items
}

// inferInvoiceDiscount cross-checks the line item sum against the invoice
// total and, under conservative conditions, attributes the gap to a missing
// header-level discount. Getting this wrong corrupts the downstream tax
// expectation, so an unexplained mismatch is preferred over a wrong inference.
func (p *Parser) inferInvoiceDiscount(inv *Invoice) {
	if len(inv.LineItems) == 0 {
		return
	}

	lineItemsTotal := decimal.Zero
	zeroCount := 0

	for _, item := range inv.LineItems {
		lineItemsTotal = lineItemsTotal.Add(item.LineTotal)
		if item.LineTotal.IsZero() {
			zeroCount++
		}
	}

	gap := lineItemsTotal.Sub(inv.DiscountAmount).Sub(inv.TotalAmount)
	if gap.Abs().LessThanOrEqual(centTolerance) {
		return
	}

	mismatch := lineItemsTotal.Sub(inv.TotalAmount)
	zeroRatio := decimal.NewFromInt(int64(zeroCount)).Div(decimal.NewFromInt(int64(len(inv.LineItems))))

	switch {
	case !inv.DiscountAmount.IsZero():
		inv.warn("line items total %s does not reconcile with total %s and discount %s", lineItemsTotal, inv.TotalAmount, inv.DiscountAmount)
	case !lineItemsTotal.GreaterThan(inv.TotalAmount):
		inv.warn("line items total %s is below invoice total %s", lineItemsTotal, inv.TotalAmount)
	case zeroRatio.GreaterThanOrEqual(maxZeroLineTotalRatio):
		inv.warn("totals mismatch of %s left uncorrected: %d of %d line totals are zero", mismatch, zeroCount, len(inv.LineItems))
	case inv.TotalAmount.IsZero() || mismatch.GreaterThanOrEqual(inv.TotalAmount.Mul(maxMismatchRatio)):
		inv.warn("totals mismatch of %s left uncorrected: too large relative to total %s", mismatch, inv.TotalAmount)
	default:
		inv.DiscountAmount = mismatch
		inv.DiscountInferred = true
		inv.warn("inferred invoice-level discount of %s from totals mismatch", mismatch)
	}
}

func getString(fields map[string]any, key, def string) string {
	value, ok := fields[key]
	if !ok || value == nil {
		return def
	}

	s := strings.TrimSpace(fmt.Sprintf("%v", value))
	if s == "" {
		return def
	}

	return s
}

func parseDate(value any) (time.Time, bool) {
	s, ok := value.(string)
	if !ok {
		return time.Time{}, false
	}

	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}

	for _, format := range dateFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t, true
		}
	}

	return time.Time{}, false
}

func parseStateCode(value any) string {
	s, ok := value.(string)
	if !ok {
		return "XX"
	}

	s = strings.ToUpper(strings.TrimSpace(s))
	if len(s) < 2 {
		return "XX"
	}

	return s[:2]
}

func parseTaxStatus(value any) string {
	s := strings.ToLower(strings.TrimSpace(fmt.Sprintf("%v", value)))
	if _, ok := validTaxStatuses[s]; ok {
		return s
	}

	return "unknown"
}
