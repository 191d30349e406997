package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"hash/fnv"

	"github.com/google/uuid"

	"github.com/taxright/taxright/internal/verification"
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

func scanVerification(s scanner) (*verification.Verification, error) {
	var v verification.Verification

	var details []byte

	if err := s.Scan(
		&v.ID, &v.LineItemID, &v.IsCorrect, &v.ConfidenceScore,
		&v.ExpectedTaxRate, &v.AppliedTaxRate, &v.Reasoning, &details, &v.VerifiedAt,
	); err != nil {
		return nil, err
	}

	if len(details) > 0 {
		if err := json.Unmarshal(details, &v.Details); err != nil {
			return nil, fmt.Errorf("decoding verification details: %w", err)
		}
	}

	return &v, nil
}

const selectVerificationColumns = `
	id, line_item_id, is_correct, confidence_score,
	expected_tax_rate, applied_tax_rate, reasoning, details, verified_at
`

func (s *Store) ListVerifications(ctx context.Context, invoiceID uuid.UUID) ([]*verification.Verification, error) {
	query := `SELECT ` + selectVerificationColumns + `
		FROM line_item_tax_verifications
		WHERE line_item_id IN (SELECT id FROM line_items WHERE invoice_id = $1)
		ORDER BY verified_at, id`

	rows, err := s.db.QueryContext(ctx, query, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("listing verifications: %w", err)
	}
	defer rows.Close()

	var verifications []*verification.Verification

	for rows.Next() {
		v, err := scanVerification(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning verification: %w", err)
		}

		verifications = append(verifications, v)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating verifications: %w", err)
	}

	return verifications, nil
}

func (s *Store) GetDetermination(ctx context.Context, invoiceID uuid.UUID) (*verification.Determination, error) {
	query := `
		SELECT id, invoice_id, status, expected_tax, actual_tax, discrepancy_amount,
			total_items, correct_items, average_confidence, verified_at
		FROM tax_determinations
		WHERE invoice_id = $1
	`

	var d verification.Determination

	var statusStr string

	err := s.db.QueryRowContext(ctx, query, invoiceID).Scan(
		&d.ID, &d.InvoiceID, &statusStr, &d.ExpectedTax, &d.ActualTax, &d.DiscrepancyAmount,
		&d.TotalItems, &d.CorrectItems, &d.AverageConfidence, &d.VerifiedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, verification.ErrNotFound
		}

		return nil, fmt.Errorf("getting determination: %w", err)
	}

	d.Status = verification.DeterminationStatus(statusStr)

	return &d, nil
}

// verificationLockKey derives the advisory lock key for one invoice so
// concurrent verify triggers for the same invoice serialize.
func verificationLockKey(invoiceID uuid.UUID) int64 {
	h := fnv.New64a()
	h.Write([]byte("verify:"))
	h.Write(invoiceID[:])

	return int64(h.Sum64())
}

type verificationTx struct {
	tx *sql.Tx
}

func (s *Store) BeginVerification(ctx context.Context, invoiceID uuid.UUID) (verification.VerificationTx, error) {
	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning verification tx: %w", err)
	}

	lockKey := verificationLockKey(invoiceID)
	if _, err := dbTx.ExecContext(ctx, "SELECT pg_advisory_xact_lock($1)", lockKey); err != nil {
		dbTx.Rollback()
		return nil, fmt.Errorf("acquiring verification lock: %w", err)
	}

	return &verificationTx{tx: dbTx}, nil
}

func (vtx *verificationTx) Commit() error   { return vtx.tx.Commit() }
func (vtx *verificationTx) Rollback() error { return vtx.tx.Rollback() }

func (vtx *verificationTx) UpsertVerification(ctx context.Context, v *verification.Verification) error {
	details, err := json.Marshal(v.Details)
	if err != nil {
		return fmt.Errorf("encoding verification details: %w", err)
	}

	query := `
		INSERT INTO line_item_tax_verifications (
			line_item_id, is_correct, confidence_score, expected_tax_rate, applied_tax_rate,
			reasoning, details, verified_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (line_item_id) DO UPDATE SET
			is_correct = EXCLUDED.is_correct,
			confidence_score = EXCLUDED.confidence_score,
			expected_tax_rate = EXCLUDED.expected_tax_rate,
			applied_tax_rate = EXCLUDED.applied_tax_rate,
			reasoning = EXCLUDED.reasoning,
			details = EXCLUDED.details,
			verified_at = EXCLUDED.verified_at
		RETURNING id
	`

	err = vtx.tx.QueryRowContext(ctx, query,
		v.LineItemID,
		v.IsCorrect,
		v.ConfidenceScore,
		v.ExpectedTaxRate,
		v.AppliedTaxRate,
		v.Reasoning,
		details,
		v.VerifiedAt,
	).Scan(&v.ID)
	if err != nil {
		return fmt.Errorf("upserting verification: %w", err)
	}

	return nil
}

func (vtx *verificationTx) UpsertDetermination(ctx context.Context, d *verification.Determination) error {
	query := `
		INSERT INTO tax_determinations (
			invoice_id, status, expected_tax, actual_tax, discrepancy_amount,
			total_items, correct_items, average_confidence, verified_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (invoice_id) DO UPDATE SET
			status = EXCLUDED.status,
			expected_tax = EXCLUDED.expected_tax,
			actual_tax = EXCLUDED.actual_tax,
			discrepancy_amount = EXCLUDED.discrepancy_amount,
			total_items = EXCLUDED.total_items,
			correct_items = EXCLUDED.correct_items,
			average_confidence = EXCLUDED.average_confidence,
			verified_at = EXCLUDED.verified_at
		RETURNING id
	`

	err := vtx.tx.QueryRowContext(ctx, query,
		d.InvoiceID,
		d.Status,
		d.ExpectedTax,
		d.ActualTax,
		d.DiscrepancyAmount,
		d.TotalItems,
		d.CorrectItems,
		d.AverageConfidence,
		d.VerifiedAt,
	).Scan(&d.ID)
	if err != nil {
		return fmt.Errorf("upserting determination: %w", err)
	}

	return nil
}
