package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/taxright/taxright/internal/pricing"
)

// Store reads the per-model pricing table. Pricing is loaded once at startup;
// verification runs never see a price change mid-flight.
type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) LoadAll(ctx context.Context) (map[string]pricing.ModelPricing, error) {
	query := `
		SELECT model_id, input_cost_per_1k, output_cost_per_1k
		FROM model_pricing
		WHERE is_active
	`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying model pricing: %w", err)
	}
	defer rows.Close()

	models := make(map[string]pricing.ModelPricing)

	for rows.Next() {
		var (
			modelID string
			p       pricing.ModelPricing
		)

		if err := rows.Scan(&modelID, &p.InputPer1K, &p.OutputPer1K); err != nil {
			return nil, fmt.Errorf("scanning model pricing row: %w", err)
		}

		models[modelID] = p
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating model pricing rows: %w", err)
	}

	return models, nil
}
