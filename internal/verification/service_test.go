package verification_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/taxright/taxright/internal/invoice"
	"github.com/taxright/taxright/internal/knowledge"
	"github.com/taxright/taxright/internal/pricing"
	"github.com/taxright/taxright/internal/verification"
)

func testPricing() *pricing.Table {
	return pricing.NewTable(map[string]pricing.ModelPricing{
		"kb-model": {InputPer1K: dec("0.003"), OutputPer1K: dec("0.015")},
	}, pricing.ModelPricing{InputPer1K: dec("0.001"), OutputPer1K: dec("0.002")})
}

type serviceMocks struct {
	repo     *verification.MockRepository
	tx       *verification.MockVerificationTx
	invoices *verification.MockInvoiceService
	kb       *knowledge.MockClient
	states   *knowledge.MockStateLookup
}

func newServiceWithMocks(ctrl *gomock.Controller) (*verification.Service, serviceMocks) {
	m := serviceMocks{
		repo:     verification.NewMockRepository(ctrl),
		tx:       verification.NewMockVerificationTx(ctrl),
		invoices: verification.NewMockInvoiceService(ctrl),
		kb:       knowledge.NewMockClient(ctrl),
		states:   knowledge.NewMockStateLookup(ctrl),
	}

	svc := verification.NewService(
		m.repo, m.invoices, m.kb, m.states,
		testPricing(), "kb-model", slog.New(slog.NewTextHandler(io.Discard, nil)),
	)

	return svc, m
}

func TestService_VerifyInvoice(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, m := newServiceWithMocks(ctrl)

	invoiceID := uuid.New()
	itemID := uuid.New()

	inv := &invoice.Invoice{
		ID:             invoiceID,
		StateCode:      "CA",
		TotalAmount:    dec("108.25"),
		TotalTaxAmount: dec("8.25"),
	}
	items := []*invoice.LineItem{
		{
			ID: itemID, InvoiceID: invoiceID, Description: "Widget",
			LineTotal: dec("100.00"), TaxAmount: dec("8.25"),
			TaxRate: dec("0.0825"), TaxStatus: invoice.TaxStatusTaxable,
		},
	}

	m.invoices.EXPECT().Get(gomock.Any(), invoiceID).Return(inv, nil)
	m.invoices.EXPECT().LineItems(gomock.Any(), invoiceID).Return(items, nil)
	m.states.EXPECT().KnowledgeBaseID(gomock.Any(), "CA").Return("KB123", nil)

	m.kb.EXPECT().
		Query(gomock.Any(), "KB123", gomock.Any()).
		Return(&knowledge.Answer{
			Text:      `{"is_correct": true, "expected_tax_rate": 0.0825, "confidence_score": 0.95, "reasoning": "CA combined rate is 8.25%."}`,
			Citations: []string{"s3://tax-docs/ca/rates.pdf"},
			Usage:     pricing.TokenUsage{InputTokens: 400, OutputTokens: 100, TotalTokens: 500},
		}, nil)

	m.invoices.EXPECT().
		RecordLineItemUsage(gomock.Any(), itemID, gomock.Any(), gomock.Any()).
		Return(nil)

	m.repo.EXPECT().BeginVerification(gomock.Any(), invoiceID).Return(m.tx, nil)
	m.tx.EXPECT().
		UpsertVerification(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, v *verification.Verification) error {
			assert.Equal(t, itemID, v.LineItemID)
			assert.True(t, v.IsCorrect)
			assert.True(t, dec("0.0825").Equal(v.ExpectedTaxRate))
			assert.Equal(t, "KB123", v.Details.KnowledgeBaseID)
			assert.Equal(t, []string{"s3://tax-docs/ca/rates.pdf"}, v.Details.Citations)
			return nil
		})
	m.tx.EXPECT().
		UpsertDetermination(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, d *verification.Determination) error {
			assert.Equal(t, verification.StatusVerified, d.Status)
			assert.True(t, dec("8.25").Equal(d.ExpectedTax))
			assert.True(t, dec("8.25").Equal(d.ActualTax))
			return nil
		})
	m.tx.EXPECT().Commit().Return(nil)
	m.tx.EXPECT().Rollback().Return(nil)

	m.invoices.EXPECT().RecomputeModelCost(gomock.Any(), invoiceID).Return(dec("0.01"), nil)

	result, err := svc.VerifyInvoice(context.Background(), invoiceID)
	require.NoError(t, err)

	require.Len(t, result.Verifications, 1)
	assert.Equal(t, verification.StatusVerified, result.Determination.Status)
}

func TestService_VerifyInvoice_NotApplicable(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, m := newServiceWithMocks(ctrl)

	invoiceID := uuid.New()
	m.invoices.EXPECT().Get(gomock.Any(), invoiceID).Return(&invoice.Invoice{
		ID:        invoiceID,
		StateCode: invoice.UnknownState,
	}, nil)
	m.invoices.EXPECT().LineItems(gomock.Any(), invoiceID).Return([]*invoice.LineItem{{ID: uuid.New()}}, nil)

	_, err := svc.VerifyInvoice(context.Background(), invoiceID)
	assert.ErrorIs(t, err, verification.ErrNotApplicable)
}

// A knowledge base failure degrades that line item to an error verification;
// the invoice still gets a determination.
func TestService_VerifyInvoice_KBFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, m := newServiceWithMocks(ctrl)

	invoiceID := uuid.New()
	itemID := uuid.New()

	inv := &invoice.Invoice{
		ID:             invoiceID,
		StateCode:      "NY",
		TotalAmount:    dec("100.00"),
		TotalTaxAmount: dec("8.00"),
	}
	items := []*invoice.LineItem{
		{ID: itemID, LineTotal: dec("100.00"), TaxRate: dec("0.08"), TaxStatus: invoice.TaxStatusTaxable},
	}

	m.invoices.EXPECT().Get(gomock.Any(), invoiceID).Return(inv, nil)
	m.invoices.EXPECT().LineItems(gomock.Any(), invoiceID).Return(items, nil)
	m.states.EXPECT().KnowledgeBaseID(gomock.Any(), "NY").Return("KB456", nil)
	m.kb.EXPECT().Query(gomock.Any(), "KB456", gomock.Any()).Return(nil, errors.New("throttled"))

	m.repo.EXPECT().BeginVerification(gomock.Any(), invoiceID).Return(m.tx, nil)
	m.tx.EXPECT().
		UpsertVerification(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, v *verification.Verification) error {
			assert.Equal(t, verification.ErrCodeKBFailure, v.Details.ErrorCode)
			assert.Equal(t, 0.0, v.ConfidenceScore)
			assert.Contains(t, v.Reasoning, "throttled")
			return nil
		})
	m.tx.EXPECT().
		UpsertDetermination(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, d *verification.Determination) error {
			// Expected tax falls back to the applied rate; the verdict
			// still reflects the failed verification.
			assert.True(t, dec("8.00").Equal(d.ExpectedTax), "got %s", d.ExpectedTax)
			assert.Equal(t, verification.StatusDiscrepancy, d.Status)
			return nil
		})
	m.tx.EXPECT().Commit().Return(nil)
	m.tx.EXPECT().Rollback().Return(nil)

	m.invoices.EXPECT().RecomputeModelCost(gomock.Any(), invoiceID).Return(dec("0"), nil)

	result, err := svc.VerifyInvoice(context.Background(), invoiceID)
	require.NoError(t, err)
	require.Len(t, result.Verifications, 1)
}

// No knowledge base mapped for the state: every item gets a not-mapped error
// verification instead of aborting.
func TestService_VerifyInvoice_StateNotMapped(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, m := newServiceWithMocks(ctrl)

	invoiceID := uuid.New()
	itemID := uuid.New()

	inv := &invoice.Invoice{
		ID:             invoiceID,
		StateCode:      "MT",
		TotalAmount:    dec("50.00"),
		TotalTaxAmount: dec("0"),
	}
	items := []*invoice.LineItem{
		{ID: itemID, LineTotal: dec("50.00"), TaxStatus: invoice.TaxStatusTaxable},
	}

	m.invoices.EXPECT().Get(gomock.Any(), invoiceID).Return(inv, nil)
	m.invoices.EXPECT().LineItems(gomock.Any(), invoiceID).Return(items, nil)
	m.states.EXPECT().KnowledgeBaseID(gomock.Any(), "MT").Return("", knowledge.ErrNotMapped)

	m.repo.EXPECT().BeginVerification(gomock.Any(), invoiceID).Return(m.tx, nil)
	m.tx.EXPECT().
		UpsertVerification(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, v *verification.Verification) error {
			assert.Equal(t, verification.ErrCodeNotMapped, v.Details.ErrorCode)
			assert.False(t, v.IsCorrect)
			return nil
		})
	m.tx.EXPECT().UpsertDetermination(gomock.Any(), gomock.Any()).Return(nil)
	m.tx.EXPECT().Commit().Return(nil)
	m.tx.EXPECT().Rollback().Return(nil)

	m.invoices.EXPECT().RecomputeModelCost(gomock.Any(), invoiceID).Return(dec("0"), nil)

	_, err := svc.VerifyInvoice(context.Background(), invoiceID)
	require.NoError(t, err)
}
