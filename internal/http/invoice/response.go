package invoice

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/taxright/taxright/internal/invoice"
	"github.com/taxright/taxright/internal/verification"
)

type invoiceResponse struct {
	ID              uuid.UUID       `json:"id"`
	InvoiceNumber   string          `json:"invoice_number"`
	Date            time.Time       `json:"date"`
	VendorName      string          `json:"vendor_name"`
	TotalAmount     decimal.Decimal `json:"total_amount"`
	TotalTaxAmount  decimal.Decimal `json:"total_tax_amount"`
	DiscountAmount  decimal.Decimal `json:"discount_amount"`
	StateCode       string          `json:"state_code"`
	Jurisdiction    string          `json:"jurisdiction,omitempty"`
	Status          invoice.Status  `json:"status"`
	OCRError        string          `json:"ocr_error,omitempty"`
	OCRInputTokens  int64           `json:"ocr_input_tokens"`
	OCROutputTokens int64           `json:"ocr_output_tokens"`
	OCRTotalCost    decimal.Decimal `json:"ocr_total_cost"`
	TotalModelCost  decimal.Decimal `json:"total_model_cost"`
	UploadedAt      time.Time       `json:"uploaded_at"`
	ProcessedAt     *time.Time      `json:"processed_at,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       *time.Time      `json:"updated_at,omitempty"`
}

type lineItemResponse struct {
	ID             uuid.UUID         `json:"id"`
	InvoiceID      uuid.UUID         `json:"invoice_id"`
	Description    string            `json:"description"`
	Quantity       decimal.Decimal   `json:"quantity"`
	UnitPrice      decimal.Decimal   `json:"unit_price"`
	LineTotal      decimal.Decimal   `json:"line_total"`
	DiscountAmount decimal.Decimal   `json:"discount_amount"`
	TaxAmount      decimal.Decimal   `json:"tax_amount"`
	TaxRate        decimal.Decimal   `json:"tax_rate"`
	TaxStatus      invoice.TaxStatus `json:"tax_status"`
	KBInputTokens  int64             `json:"kb_input_tokens"`
	KBOutputTokens int64             `json:"kb_output_tokens"`
	KBTotalCost    decimal.Decimal   `json:"kb_total_cost"`
	CreatedAt      time.Time         `json:"created_at"`
}

type verificationResponse struct {
	ID              uuid.UUID            `json:"id"`
	LineItemID      uuid.UUID            `json:"line_item_id"`
	IsCorrect       bool                 `json:"is_correct"`
	ConfidenceScore float64              `json:"confidence_score"`
	ExpectedTaxRate decimal.Decimal      `json:"expected_tax_rate"`
	AppliedTaxRate  decimal.Decimal      `json:"applied_tax_rate"`
	Reasoning       string               `json:"reasoning"`
	Details         verification.Details `json:"details"`
	VerifiedAt      time.Time            `json:"verified_at"`
}

type determinationResponse struct {
	ID                uuid.UUID                        `json:"id"`
	InvoiceID         uuid.UUID                        `json:"invoice_id"`
	Status            verification.DeterminationStatus `json:"status"`
	ExpectedTax       decimal.Decimal                  `json:"expected_tax"`
	ActualTax         decimal.Decimal                  `json:"actual_tax"`
	DiscrepancyAmount decimal.Decimal                  `json:"discrepancy_amount"`
	TotalItems        int                              `json:"total_items"`
	CorrectItems      int                              `json:"correct_items"`
	AverageConfidence float64                          `json:"average_confidence"`
	VerifiedAt        time.Time                        `json:"verified_at"`
}

type verificationResultResponse struct {
	Determination determinationResponse  `json:"determination"`
	Verifications []verificationResponse `json:"verifications"`
}

type ocrStageResponse struct {
	Status          invoice.Status  `json:"status"`
	RawOCRData      string          `json:"raw_ocr_data,omitempty"`
	OCRError        string          `json:"ocr_error,omitempty"`
	OCRInputTokens  int64           `json:"ocr_input_tokens"`
	OCROutputTokens int64           `json:"ocr_output_tokens"`
	OCRTotalCost    decimal.Decimal `json:"ocr_total_cost"`
}

func toInvoiceResponse(inv *invoice.Invoice) invoiceResponse {
	return invoiceResponse{
		ID:              inv.ID,
		InvoiceNumber:   inv.InvoiceNumber,
		Date:            inv.Date,
		VendorName:      inv.VendorName,
		TotalAmount:     inv.TotalAmount,
		TotalTaxAmount:  inv.TotalTaxAmount,
		DiscountAmount:  inv.DiscountAmount,
		StateCode:       inv.StateCode,
		Jurisdiction:    inv.Jurisdiction,
		Status:          inv.Status,
		OCRError:        inv.OCRError,
		OCRInputTokens:  inv.OCRInputTokens,
		OCROutputTokens: inv.OCROutputTokens,
		OCRTotalCost:    inv.OCRTotalCost,
		TotalModelCost:  inv.TotalModelCost,
		UploadedAt:      inv.UploadedAt,
		ProcessedAt:     inv.ProcessedAt,
		CreatedAt:       inv.CreatedAt,
		UpdatedAt:       inv.UpdatedAt,
	}
}

func toInvoiceResponseList(invoices []*invoice.Invoice) []invoiceResponse {
	resp := make([]invoiceResponse, len(invoices))
	for i, inv := range invoices {
		resp[i] = toInvoiceResponse(inv)
	}

	return resp
}

func toLineItemResponse(item *invoice.LineItem) lineItemResponse {
	return lineItemResponse{
		ID:             item.ID,
		InvoiceID:      item.InvoiceID,
		Description:    item.Description,
		Quantity:       item.Quantity,
		UnitPrice:      item.UnitPrice,
		LineTotal:      item.LineTotal,
		DiscountAmount: item.DiscountAmount,
		TaxAmount:      item.TaxAmount,
		TaxRate:        item.TaxRate,
		TaxStatus:      item.TaxStatus,
		KBInputTokens:  item.KBInputTokens,
		KBOutputTokens: item.KBOutputTokens,
		KBTotalCost:    item.KBTotalCost,
		CreatedAt:      item.CreatedAt,
	}
}

func toLineItemResponseList(items []*invoice.LineItem) []lineItemResponse {
	resp := make([]lineItemResponse, len(items))
	for i, item := range items {
		resp[i] = toLineItemResponse(item)
	}

	return resp
}

func toVerificationResponse(v *verification.Verification) verificationResponse {
	return verificationResponse{
		ID:              v.ID,
		LineItemID:      v.LineItemID,
		IsCorrect:       v.IsCorrect,
		ConfidenceScore: v.ConfidenceScore,
		ExpectedTaxRate: v.ExpectedTaxRate,
		AppliedTaxRate:  v.AppliedTaxRate,
		Reasoning:       v.Reasoning,
		Details:         v.Details,
		VerifiedAt:      v.VerifiedAt,
	}
}

func toVerificationResponseList(verifications []*verification.Verification) []verificationResponse {
	resp := make([]verificationResponse, len(verifications))
	for i, v := range verifications {
		resp[i] = toVerificationResponse(v)
	}

	return resp
}

func toDeterminationResponse(det *verification.Determination) determinationResponse {
	return determinationResponse{
		ID:                det.ID,
		InvoiceID:         det.InvoiceID,
		Status:            det.Status,
		ExpectedTax:       det.ExpectedTax,
		ActualTax:         det.ActualTax,
		DiscrepancyAmount: det.DiscrepancyAmount,
		TotalItems:        det.TotalItems,
		CorrectItems:      det.CorrectItems,
		AverageConfidence: det.AverageConfidence,
		VerifiedAt:        det.VerifiedAt,
	}
}

func toVerificationResultResponse(result *verification.Result) verificationResultResponse {
	return verificationResultResponse{
		Determination: toDeterminationResponse(result.Determination),
		Verifications: toVerificationResponseList(result.Verifications),
	}
}

func toOCRStageResponse(inv *invoice.Invoice) ocrStageResponse {
	return ocrStageResponse{
		Status:          inv.Status,
		RawOCRData:      inv.RawOCRData,
		OCRError:        inv.OCRError,
		OCRInputTokens:  inv.OCRInputTokens,
		OCROutputTokens: inv.OCROutputTokens,
		OCRTotalCost:    inv.OCRTotalCost,
	}
}
