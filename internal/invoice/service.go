package invoice

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/taxright/taxright/internal/extraction"
	"github.com/taxright/taxright/internal/ocr"
	"github.com/taxright/taxright/internal/pricing"
)

var ErrNotFound = errors.New("invoice not found")

// ErrNoOCRData is returned when a reparse is requested for an invoice that
// has no stored model output.
var ErrNoOCRData = errors.New("invoice has no OCR data")

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=invoice
type Repository interface {
	CreateInvoice(ctx context.Context, inv *Invoice) error
	GetInvoice(ctx context.Context, id uuid.UUID) (*Invoice, error)
	ListInvoices(ctx context.Context, filter ListFilter) ([]*Invoice, error)
	UpdateInvoice(ctx context.Context, inv *Invoice) error
	DeleteInvoice(ctx context.Context, id uuid.UUID) error

	ReplaceLineItems(ctx context.Context, invoiceID uuid.UUID, items []*LineItem) error
	ListLineItems(ctx context.Context, invoiceID uuid.UUID) ([]*LineItem, error)
	UpdateLineItemUsage(ctx context.Context, id uuid.UUID, usage pricing.TokenUsage, cost decimal.Decimal) error
	SetTotalModelCost(ctx context.Context, id uuid.UUID, total decimal.Decimal) error
}

type ListFilter struct {
	Status    *Status
	StateCode *string
	Vendor    *string
}

type Service struct {
	repo      Repository
	extractor ocr.TextExtractor
	parser    *extraction.Parser
	prices    *pricing.Table
	logger    *slog.Logger
}

func NewService(repo Repository, extractor ocr.TextExtractor, prices *pricing.Table, logger *slog.Logger) *Service {
	return &Service{
		repo:      repo,
		extractor: extractor,
		parser:    extraction.NewParser(),
		prices:    prices,
		logger:    logger,
	}
}

// ProcessPDF runs the full extraction pipeline for an uploaded document: a
// placeholder invoice is created first so a failed extraction still leaves
// an auditable record in error status. The returned invoice is always
// persisted, even when the error is non-nil.
func (s *Service) ProcessPDF(ctx context.Context, filename string, pdf []byte) (*Invoice, error) {
	if err := ocr.ValidatePDF(pdf); err != nil {
		return nil, fmt.Errorf("validating pdf: %w", err)
	}

	now := time.Now().UTC()
	inv := &Invoice{
		InvoiceNumber: "TEMP",
		Date:          now,
		VendorName:    "Processing...",
		StateCode:     UnknownState,
		Status:        StatusProcessing,
		UploadedAt:    now,
	}

	if err := s.repo.CreateInvoice(ctx, inv); err != nil {
		return nil, fmt.Errorf("creating invoice: %w", err)
	}

	res, err := s.extractor.ExtractInvoice(ctx, filename, pdf)
	if err != nil {
		return inv, s.markError(ctx, inv, fmt.Errorf("extracting invoice: %w", err))
	}

	if err := s.ApplyOCR(ctx, inv, res); err != nil {
		return inv, s.markError(ctx, inv, err)
	}

	return inv, nil
}

// ApplyOCR parses the raw model output and replaces the invoice's extracted
// fields and line items. Applying the same output twice yields the same
// invoice, so a reprocess never duplicates line items.
func (s *Service) ApplyOCR(ctx context.Context, inv *Invoice, res *ocr.Result) error {
	parsed, err := s.parser.Parse([]byte(res.RawText))
	if err != nil {
		return fmt.Errorf("parsing model output: %w", err)
	}

	cost := pricing.Compute(res.Usage, s.prices.Lookup(res.ModelID))

	inv.RawOCRData = res.RawText
	inv.OCRInputTokens = res.Usage.InputTokens
	inv.OCROutputTokens = res.Usage.OutputTokens
	inv.OCRTotalCost = cost.Total
	inv.TotalModelCost = cost.Total

	if err := s.applyParsed(ctx, inv, parsed); err != nil {
		return err
	}

	s.logger.Info("invoice processed",
		slog.String("invoice_id", inv.ID.String()),
		slog.String("invoice_number", inv.InvoiceNumber),
		slog.String("state_code", inv.StateCode),
		slog.Int("line_items", len(parsed.LineItems)),
	)

	return nil
}

// Reparse re-applies the stored OCR output to the invoice without another
// model call. Token counts and costs are left untouched.
func (s *Service) Reparse(ctx context.Context, id uuid.UUID) (*Invoice, error) {
	inv, err := s.repo.GetInvoice(ctx, id)
	if err != nil {
		return nil, err
	}

	if inv.RawOCRData == "" {
		return nil, ErrNoOCRData
	}

	parsed, err := s.parser.Parse([]byte(inv.RawOCRData))
	if err != nil {
		return nil, fmt.Errorf("parsing stored OCR data: %w", err)
	}

	if err := s.applyParsed(ctx, inv, parsed); err != nil {
		return nil, err
	}

	return inv, nil
}

func (s *Service) applyParsed(ctx context.Context, inv *Invoice, parsed *extraction.Invoice) error {
	inv.InvoiceNumber = parsed.InvoiceNumber
	inv.VendorName = parsed.VendorName
	inv.TotalAmount = parsed.TotalAmount
	inv.TotalTaxAmount = parsed.TotalTaxAmount
	inv.DiscountAmount = parsed.DiscountAmount
	inv.StateCode = parsed.StateCode
	inv.Jurisdiction = parsed.Jurisdiction
	inv.Status = StatusCompleted
	inv.OCRError = ""

	processedAt := time.Now().UTC()
	inv.ProcessedAt = &processedAt

	if parsed.HasDate {
		inv.Date = parsed.Date
	}

	if err := s.repo.UpdateInvoice(ctx, inv); err != nil {
		return fmt.Errorf("updating invoice: %w", err)
	}

	items := make([]*LineItem, len(parsed.LineItems))
	for i, li := range parsed.LineItems {
		items[i] = &LineItem{
			InvoiceID:      inv.ID,
			Description:    li.Description,
			Quantity:       li.Quantity,
			UnitPrice:      li.UnitPrice,
			LineTotal:      li.LineTotal,
			DiscountAmount: li.DiscountAmount,
			TaxAmount:      li.TaxAmount,
			TaxRate:        li.TaxRate,
			TaxStatus:      TaxStatus(li.TaxStatus),
		}
	}

	if err := s.repo.ReplaceLineItems(ctx, inv.ID, items); err != nil {
		return fmt.Errorf("replacing line items: %w", err)
	}

	return nil
}

func (s *Service) markError(ctx context.Context, inv *Invoice, cause error) error {
	inv.Status = StatusError
	inv.OCRError = cause.Error()

	if err := s.repo.UpdateInvoice(ctx, inv); err != nil {
		s.logger.Error("marking invoice as failed",
			slog.String("invoice_id", inv.ID.String()),
			slog.String("error", err.Error()),
		)
	}

	return cause
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Invoice, error) {
	return s.repo.GetInvoice(ctx, id)
}

func (s *Service) List(ctx context.Context, filter ListFilter) ([]*Invoice, error) {
	return s.repo.ListInvoices(ctx, filter)
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.DeleteInvoice(ctx, id)
}

func (s *Service) LineItems(ctx context.Context, invoiceID uuid.UUID) ([]*LineItem, error) {
	return s.repo.ListLineItems(ctx, invoiceID)
}

// RecordLineItemUsage stores the verification token spend for one line item.
func (s *Service) RecordLineItemUsage(ctx context.Context, lineItemID uuid.UUID, usage pricing.TokenUsage, cost decimal.Decimal) error {
	return s.repo.UpdateLineItemUsage(ctx, lineItemID, usage, cost)
}

// RecomputeModelCost refreshes the invoice's total model spend from its OCR
// cost and line item verification costs. The total is recomputed from parts
// rather than incremented so re-verification replaces stale spend.
func (s *Service) RecomputeModelCost(ctx context.Context, invoiceID uuid.UUID) (decimal.Decimal, error) {
	inv, err := s.repo.GetInvoice(ctx, invoiceID)
	if err != nil {
		return decimal.Zero, err
	}

	items, err := s.repo.ListLineItems(ctx, invoiceID)
	if err != nil {
		return decimal.Zero, fmt.Errorf("listing line items: %w", err)
	}

	costs := make([]decimal.Decimal, len(items))
	for i, item := range items {
		costs[i] = item.KBTotalCost
	}

	total := pricing.InvoiceTotal(inv.OCRTotalCost, costs)
	if err := s.repo.SetTotalModelCost(ctx, invoiceID, total); err != nil {
		return decimal.Zero, fmt.Errorf("storing total cost: %w", err)
	}

	return total, nil
}
