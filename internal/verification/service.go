package verification

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/taxright/taxright/internal/invoice"
	"github.com/taxright/taxright/internal/knowledge"
	"github.com/taxright/taxright/internal/money"
	"github.com/taxright/taxright/internal/pricing"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=verification
type Repository interface {
	BeginVerification(ctx context.Context, invoiceID uuid.UUID) (VerificationTx, error)
	GetDetermination(ctx context.Context, invoiceID uuid.UUID) (*Determination, error)
	ListVerifications(ctx context.Context, invoiceID uuid.UUID) ([]*Verification, error)
}

// VerificationTx writes one verification pass atomically. It holds a
// per-invoice advisory lock, so concurrent verify triggers for the same
// invoice serialize instead of interleaving their upserts.
type VerificationTx interface {
	UpsertVerification(ctx context.Context, v *Verification) error
	UpsertDetermination(ctx context.Context, d *Determination) error
	Commit() error
	Rollback() error
}

// InvoiceService is the slice of the invoice service the verifier needs.
type InvoiceService interface {
	Get(ctx context.Context, id uuid.UUID) (*invoice.Invoice, error)
	LineItems(ctx context.Context, invoiceID uuid.UUID) ([]*invoice.LineItem, error)
	RecordLineItemUsage(ctx context.Context, lineItemID uuid.UUID, usage pricing.TokenUsage, cost decimal.Decimal) error
	RecomputeModelCost(ctx context.Context, invoiceID uuid.UUID) (decimal.Decimal, error)
}

type Service struct {
	repo      Repository
	invoices  InvoiceService
	kb        knowledge.Client
	states    knowledge.StateLookup
	engine    *Engine
	prices    *pricing.Table
	kbModelID string
	logger    *slog.Logger
}

func NewService(
	repo Repository,
	invoices InvoiceService,
	kb knowledge.Client,
	states knowledge.StateLookup,
	prices *pricing.Table,
	kbModelID string,
	logger *slog.Logger,
) *Service {
	return &Service{
		repo:      repo,
		invoices:  invoices,
		kb:        kb,
		states:    states,
		engine:    NewEngine(logger),
		prices:    prices,
		kbModelID: kbModelID,
		logger:    logger,
	}
}

// VerifyInvoice runs the full verification pass: one knowledge base query
// per line item, per-item reconciliation, invoice aggregation, and an atomic
// upsert of every verification plus the determination. A failed query
// degrades that line item to an error verification; it never aborts the
// invoice.
func (s *Service) VerifyInvoice(ctx context.Context, invoiceID uuid.UUID) (*Result, error) {
	inv, err := s.invoices.Get(ctx, invoiceID)
	if err != nil {
		return nil, err
	}

	items, err := s.invoices.LineItems(ctx, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("listing line items: %w", err)
	}

	if inv.StateCode == invoice.UnknownState || len(items) == 0 {
		return nil, ErrNotApplicable
	}

	kbID, err := s.states.KnowledgeBaseID(ctx, inv.StateCode)
	if err != nil && !errors.Is(err, knowledge.ErrNotMapped) {
		return nil, fmt.Errorf("resolving knowledge base: %w", err)
	}

	verifications := make(map[uuid.UUID]*Verification, len(items))
	ordered := make([]*Verification, 0, len(items))

	for _, item := range items {
		v := s.verifyItem(ctx, inv, item, kbID)
		verifications[item.ID] = v
		ordered = append(ordered, v)
	}

	det, corrected, err := s.engine.ReconcileInvoice(inv, items, verifications)
	if err != nil {
		return nil, err
	}

	if len(corrected) > 0 {
		s.logger.Info("verifications corrected to match determination",
			slog.String("invoice_id", invoiceID.String()),
			slog.Int("count", len(corrected)),
		)
	}

	tx, err := s.repo.BeginVerification(ctx, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("beginning verification tx: %w", err)
	}
	defer tx.Rollback()

	for _, v := range ordered {
		if err := tx.UpsertVerification(ctx, v); err != nil {
			return nil, fmt.Errorf("storing verification: %w", err)
		}
	}

	if err := tx.UpsertDetermination(ctx, det); err != nil {
		return nil, fmt.Errorf("storing determination: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing verification: %w", err)
	}

	if _, err := s.invoices.RecomputeModelCost(ctx, invoiceID); err != nil {
		s.logger.Warn("recomputing invoice model cost failed",
			slog.String("invoice_id", invoiceID.String()),
			slog.String("error", err.Error()),
		)
	}

	return &Result{Verifications: ordered, Determination: det}, nil
}

func (s *Service) verifyItem(ctx context.Context, inv *invoice.Invoice, item *invoice.LineItem, kbID string) *Verification {
	v := &Verification{
		LineItemID:      item.ID,
		AppliedTaxRate:  item.TaxRate,
		ExpectedTaxRate: decimal.Zero,
		Details:         Details{KnowledgeBaseID: kbID},
		VerifiedAt:      time.Now().UTC(),
	}

	if kbID == "" {
		v.Details.ErrorCode = ErrCodeNotMapped
		v.Reasoning = fmt.Sprintf("No knowledge base is mapped for state %s; the applied rate could not be verified.", inv.StateCode)

		return v
	}

	prompt := BuildPrompt(item, inv)

	answer, err := s.kb.Query(ctx, kbID, prompt)
	if err != nil {
		s.logger.Warn("knowledge base query failed",
			slog.String("line_item_id", item.ID.String()),
			slog.String("kb_id", kbID),
			slog.String("error", err.Error()),
		)

		v.Details.ErrorCode = ErrCodeKBFailure
		v.Reasoning = fmt.Sprintf("Knowledge base query failed: %v", err)

		return v
	}

	cost := pricing.Compute(answer.Usage, s.prices.Lookup(s.kbModelID))
	if err := s.invoices.RecordLineItemUsage(ctx, item.ID, answer.Usage, cost.Total); err != nil {
		s.logger.Warn("recording line item usage failed",
			slog.String("line_item_id", item.ID.String()),
			slog.String("error", err.Error()),
		)
	}

	v.Details.Citations = answer.Citations

	parsed, ok := ParseResponse(answer.Text)
	if !ok {
		v.Details.ErrorCode = ErrCodeMalformed
		v.Reasoning = fmt.Sprintf("Knowledge base response could not be parsed: %s", preview(answer.Text))

		return v
	}

	v.IsCorrect = parsed.IsCorrect
	v.ExpectedTaxRate = money.ValidRate(parsed.ExpectedRate, fmt.Sprintf("line item %s", item.ID))
	v.ConfidenceScore = parsed.Confidence
	v.Reasoning = parsed.Reasoning

	s.engine.ReconcileItem(v, item.TaxStatus, parsed.RateMentions)

	return v
}

// Determination returns the stored determination for an invoice.
func (s *Service) Determination(ctx context.Context, invoiceID uuid.UUID) (*Determination, error) {
	return s.repo.GetDetermination(ctx, invoiceID)
}

// Verifications returns the stored verifications for an invoice's line items.
func (s *Service) Verifications(ctx context.Context, invoiceID uuid.UUID) ([]*Verification, error) {
	return s.repo.ListVerifications(ctx, invoiceID)
}

func preview(text string) string {
	const max = 200

	if len(text) <= max {
		return text
	}

	return text[:max] + "..."
}
