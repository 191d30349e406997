package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/taxright/taxright/internal/knowledge"
)

// Store reads the state to knowledge base mapping table.
type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) KnowledgeBaseID(ctx context.Context, stateCode string) (string, error) {
	query := `
		SELECT knowledge_base_id
		FROM state_knowledge_bases
		WHERE state_code = $1 AND is_active
	`

	var kbID string

	err := s.db.QueryRowContext(ctx, query, stateCode).Scan(&kbID)
	if err != nil {
		if err == sql.ErrNoRows {
			return "", knowledge.ErrNotMapped
		}

		return "", fmt.Errorf("looking up knowledge base for %s: %w", stateCode, err)
	}

	return kbID, nil
}
