package verification

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var ErrNotFound = errors.New("verification not found")

// ErrNotApplicable is returned when an invoice cannot be verified: no valid
// state code or no line items. No determination is fabricated for these.
var ErrNotApplicable = errors.New("invoice not eligible for tax verification")

// rateTolerance is the maximum difference between two rates that still
// counts as equal. Precision noise from model output sits well below this.
var rateTolerance = decimal.NewFromFloat(0.0001)

// RatesMatch reports whether two rates are equal within tolerance.
func RatesMatch(a, b decimal.Decimal) bool {
	return a.Sub(b).Abs().LessThanOrEqual(rateTolerance)
}

// Error codes recorded in verification details when a line item could not be
// genuinely verified.
const (
	ErrCodeNotMapped = "kb_not_mapped"
	ErrCodeKBFailure = "kb_unavailable"
	ErrCodeMalformed = "malformed_response"
)

// Details is the auditable context stored alongside a verification.
type Details struct {
	Citations       []string `json:"citations,omitempty"`
	KnowledgeBaseID string   `json:"knowledge_base_id,omitempty"`
	ErrorCode       string   `json:"error_code,omitempty"`
}

// Verification is the current verification snapshot for one line item.
// Re-verification replaces it in place; no history is kept.
type Verification struct {
	ID              uuid.UUID
	LineItemID      uuid.UUID
	IsCorrect       bool
	ConfidenceScore float64
	ExpectedTaxRate decimal.Decimal
	AppliedTaxRate  decimal.Decimal
	Reasoning       string
	Details         Details
	VerifiedAt      time.Time
}

type DeterminationStatus string

const (
	StatusVerified    DeterminationStatus = "verified"
	StatusDiscrepancy DeterminationStatus = "discrepancy"
	StatusError       DeterminationStatus = "error"
)

// Determination is the invoice-level verdict. One per invoice, written only
// by the reconciliation engine.
type Determination struct {
	ID                uuid.UUID
	InvoiceID         uuid.UUID
	Status            DeterminationStatus
	ExpectedTax       decimal.Decimal
	ActualTax         decimal.Decimal
	DiscrepancyAmount decimal.Decimal
	TotalItems        int
	CorrectItems      int
	AverageConfidence float64
	VerifiedAt        time.Time
}

// Result is what a verification run returns to the API layer.
type Result struct {
	Verifications []*Verification
	Determination *Determination
}
