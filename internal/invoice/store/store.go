package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/taxright/taxright/internal/invoice"
	"github.com/taxright/taxright/internal/pricing"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

const selectInvoiceColumns = `
	id, invoice_number, date, vendor_name, total_amount, total_tax_amount, discount_amount,
	state_code, jurisdiction, status, raw_ocr_data, ocr_error,
	ocr_input_tokens, ocr_output_tokens, ocr_total_cost, total_model_cost,
	uploaded_at, processed_at, created_at, updated_at
`

func scanInvoice(s scanner) (*invoice.Invoice, error) {
	var inv invoice.Invoice

	var statusStr string

	var rawOCR, ocrError, jurisdiction sql.NullString

	if err := s.Scan(
		&inv.ID, &inv.InvoiceNumber, &inv.Date, &inv.VendorName,
		&inv.TotalAmount, &inv.TotalTaxAmount, &inv.DiscountAmount,
		&inv.StateCode, &jurisdiction, &statusStr, &rawOCR, &ocrError,
		&inv.OCRInputTokens, &inv.OCROutputTokens, &inv.OCRTotalCost, &inv.TotalModelCost,
		&inv.UploadedAt, &inv.ProcessedAt, &inv.CreatedAt, &inv.UpdatedAt,
	); err != nil {
		return nil, err
	}

	inv.Status = invoice.Status(statusStr)
	inv.RawOCRData = rawOCR.String
	inv.OCRError = ocrError.String
	inv.Jurisdiction = jurisdiction.String

	return &inv, nil
}

func (s *Store) CreateInvoice(ctx context.Context, inv *invoice.Invoice) error {
	query := `
		INSERT INTO invoices (
			invoice_number, date, vendor_name, total_amount, total_tax_amount, discount_amount,
			state_code, jurisdiction, status, raw_ocr_data, ocr_error,
			ocr_input_tokens, ocr_output_tokens, ocr_total_cost, total_model_cost,
			uploaded_at, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, NOW())
		RETURNING id, created_at
	`

	err := s.db.QueryRowContext(ctx, query,
		inv.InvoiceNumber,
		inv.Date,
		inv.VendorName,
		inv.TotalAmount,
		inv.TotalTaxAmount,
		inv.DiscountAmount,
		inv.StateCode,
		inv.Jurisdiction,
		inv.Status,
		inv.RawOCRData,
		inv.OCRError,
		inv.OCRInputTokens,
		inv.OCROutputTokens,
		inv.OCRTotalCost,
		inv.TotalModelCost,
		inv.UploadedAt,
	).Scan(&inv.ID, &inv.CreatedAt)
	if err != nil {
		return fmt.Errorf("creating invoice: %w", err)
	}

	return nil
}

func (s *Store) GetInvoice(ctx context.Context, id uuid.UUID) (*invoice.Invoice, error) {
	query := `SELECT ` + selectInvoiceColumns + ` FROM invoices WHERE id = $1`

	inv, err := scanInvoice(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, invoice.ErrNotFound
		}

		return nil, fmt.Errorf("getting invoice: %w", err)
	}

	return inv, nil
}

func (s *Store) ListInvoices(ctx context.Context, filter invoice.ListFilter) ([]*invoice.Invoice, error) {
	query := `SELECT ` + selectInvoiceColumns + ` FROM invoices WHERE 1=1`

	var args []any

	argIdx := 1

	if filter.Status != nil {
		query += fmt.Sprintf(" AND status = $%d", argIdx)
		args = append(args, *filter.Status)
		argIdx++
	}

	if filter.StateCode != nil {
		query += fmt.Sprintf(" AND state_code = $%d", argIdx)
		args = append(args, *filter.StateCode)
		argIdx++
	}

	if filter.Vendor != nil {
		query += fmt.Sprintf(" AND vendor_name ILIKE $%d", argIdx)
		args = append(args, "%"+*filter.Vendor+"%")
		argIdx++
	}

	query += " ORDER BY created_at DESC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing invoices: %w", err)
	}
	defer rows.Close()

	var invoices []*invoice.Invoice

	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning invoice: %w", err)
		}

		invoices = append(invoices, inv)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating invoices: %w", err)
	}

	return invoices, nil
}

func (s *Store) UpdateInvoice(ctx context.Context, inv *invoice.Invoice) error {
	query := `
		UPDATE invoices
		SET invoice_number = $2, date = $3, vendor_name = $4, total_amount = $5,
			total_tax_amount = $6, discount_amount = $7, state_code = $8, jurisdiction = $9,
			status = $10, raw_ocr_data = $11, ocr_error = $12,
			ocr_input_tokens = $13, ocr_output_tokens = $14, ocr_total_cost = $15,
			total_model_cost = $16, processed_at = $17, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`

	err := s.db.QueryRowContext(ctx, query,
		inv.ID,
		inv.InvoiceNumber,
		inv.Date,
		inv.VendorName,
		inv.TotalAmount,
		inv.TotalTaxAmount,
		inv.DiscountAmount,
		inv.StateCode,
		inv.Jurisdiction,
		inv.Status,
		inv.RawOCRData,
		inv.OCRError,
		inv.OCRInputTokens,
		inv.OCROutputTokens,
		inv.OCRTotalCost,
		inv.TotalModelCost,
		inv.ProcessedAt,
	).Scan(&inv.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return invoice.ErrNotFound
		}

		return fmt.Errorf("updating invoice: %w", err)
	}

	return nil
}

func (s *Store) DeleteInvoice(ctx context.Context, id uuid.UUID) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM invoices WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting invoice: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting invoice: %w", err)
	}

	if affected == 0 {
		return invoice.ErrNotFound
	}

	return nil
}

// ReplaceLineItems swaps the invoice's line items atomically. Verifications
// attached to the old items are removed by the cascade, which is the point:
// a reprocessed invoice must be re-verified.
func (s *Store) ReplaceLineItems(ctx context.Context, invoiceID uuid.UUID, items []*invoice.LineItem) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM line_items WHERE invoice_id = $1`, invoiceID); err != nil {
		return fmt.Errorf("deleting line items: %w", err)
	}

	query := `
		INSERT INTO line_items (
			invoice_id, description, quantity, unit_price, line_total, discount_amount,
			tax_amount, tax_rate, tax_status, kb_input_tokens, kb_output_tokens, kb_total_cost,
			created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, NOW())
		RETURNING id, created_at
	`

	for _, item := range items {
		err := tx.QueryRowContext(ctx, query,
			invoiceID,
			item.Description,
			item.Quantity,
			item.UnitPrice,
			item.LineTotal,
			item.DiscountAmount,
			item.TaxAmount,
			item.TaxRate,
			item.TaxStatus,
			item.KBInputTokens,
			item.KBOutputTokens,
			item.KBTotalCost,
		).Scan(&item.ID, &item.CreatedAt)
		if err != nil {
			return fmt.Errorf("creating line item: %w", err)
		}

		item.InvoiceID = invoiceID
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing line items: %w", err)
	}

	return nil
}

func (s *Store) ListLineItems(ctx context.Context, invoiceID uuid.UUID) ([]*invoice.LineItem, error) {
	query := `
		SELECT id, invoice_id, description, quantity, unit_price, line_total, discount_amount,
			tax_amount, tax_rate, tax_status, kb_input_tokens, kb_output_tokens, kb_total_cost,
			created_at
		FROM line_items
		WHERE invoice_id = $1
		ORDER BY created_at, id
	`

	rows, err := s.db.QueryContext(ctx, query, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("listing line items: %w", err)
	}
	defer rows.Close()

	var items []*invoice.LineItem

	for rows.Next() {
		var item invoice.LineItem

		var statusStr string

		if err := rows.Scan(
			&item.ID, &item.InvoiceID, &item.Description, &item.Quantity, &item.UnitPrice,
			&item.LineTotal, &item.DiscountAmount, &item.TaxAmount, &item.TaxRate, &statusStr,
			&item.KBInputTokens, &item.KBOutputTokens, &item.KBTotalCost, &item.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scanning line item: %w", err)
		}

		item.TaxStatus = invoice.TaxStatus(statusStr)
		items = append(items, &item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating line items: %w", err)
	}

	return items, nil
}

func (s *Store) UpdateLineItemUsage(ctx context.Context, id uuid.UUID, usage pricing.TokenUsage, cost decimal.Decimal) error {
	query := `
		UPDATE line_items
		SET kb_input_tokens = $2, kb_output_tokens = $3, kb_total_cost = $4
		WHERE id = $1
	`

	result, err := s.db.ExecContext(ctx, query, id, usage.InputTokens, usage.OutputTokens, cost)
	if err != nil {
		return fmt.Errorf("updating line item usage: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("updating line item usage: %w", err)
	}

	if affected == 0 {
		return invoice.ErrNotFound
	}

	return nil
}

func (s *Store) SetTotalModelCost(ctx context.Context, id uuid.UUID, total decimal.Decimal) error {
	query := `UPDATE invoices SET total_model_cost = $2, updated_at = NOW() WHERE id = $1`

	result, err := s.db.ExecContext(ctx, query, id, total)
	if err != nil {
		return fmt.Errorf("setting total model cost: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("setting total model cost: %w", err)
	}

	if affected == 0 {
		return invoice.ErrNotFound
	}

	return nil
}
