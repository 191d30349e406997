package invoice

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Status represents the lifecycle state of an invoice. Error is reserved for
// OCR failures; tax verification problems are recorded on the verification
// and determination records and never move the invoice out of completed.
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusError      Status = "error"
)

// TaxStatus classifies a line item for tax purposes.
type TaxStatus string

const (
	TaxStatusTaxable TaxStatus = "taxable"
	TaxStatusExempt  TaxStatus = "exempt"
	TaxStatusUnknown TaxStatus = "unknown"
)

// UnknownState is the sentinel state code for invoices whose jurisdiction
// could not be extracted. State codes are always exactly two characters or
// this sentinel.
const UnknownState = "XX"

// Invoice is a processed invoice document with its extracted header fields.
// RawOCRData keeps the model output verbatim for auditability.
type Invoice struct {
	ID             uuid.UUID
	InvoiceNumber  string
	Date           time.Time
	VendorName     string
	TotalAmount    decimal.Decimal
	TotalTaxAmount decimal.Decimal // zero when tax is reported per line
	DiscountAmount decimal.Decimal
	StateCode      string
	Jurisdiction   string
	Status         Status
	RawOCRData     string
	OCRError       string

	OCRInputTokens  int64
	OCROutputTokens int64
	OCRTotalCost    decimal.Decimal
	TotalModelCost  decimal.Decimal // OCR cost plus all line item verification costs

	UploadedAt  time.Time
	ProcessedAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   *time.Time
}

// LineItem is a single line of an invoice. Line items are owned by their
// invoice and replaced wholesale on every OCR run.
type LineItem struct {
	ID             uuid.UUID
	InvoiceID      uuid.UUID
	Description    string
	Quantity       decimal.Decimal
	UnitPrice      decimal.Decimal
	LineTotal      decimal.Decimal
	DiscountAmount decimal.Decimal
	TaxAmount      decimal.Decimal
	TaxRate        decimal.Decimal // decimal rate in [0,1], not a percentage
	TaxStatus      TaxStatus

	KBInputTokens  int64
	KBOutputTokens int64
	KBTotalCost    decimal.Decimal

	CreatedAt time.Time
}
