package knowledge

import (
	"context"
	"errors"

	"github.com/taxright/taxright/internal/pricing"
)

// ErrNotMapped is returned when a state has no knowledge base configured.
var ErrNotMapped = errors.New("no knowledge base mapped for state")

// Answer is one knowledge base response. Token usage is estimated from text
// length because the retrieval API does not report exact counts.
type Answer struct {
	Text      string
	Citations []string
	Usage     pricing.TokenUsage
}

//go:generate mockgen -source=knowledge.go -destination=knowledge_mock.go -package=knowledge

// Client answers a natural-language question against one knowledge base.
type Client interface {
	Query(ctx context.Context, kbID, prompt string) (*Answer, error)
}

// StateLookup resolves a two-letter state code to its knowledge base id.
type StateLookup interface {
	KnowledgeBaseID(ctx context.Context, stateCode string) (string, error)
}

// EstimateTokens approximates a token count from text length, at roughly
// four characters per token.
func EstimateTokens(text string) int64 {
	return int64(len(text)) / 4
}

// EstimateUsage builds the token accounting for one query from the prompt
// and answer text lengths.
func EstimateUsage(prompt, answer string) pricing.TokenUsage {
	in := EstimateTokens(prompt)
	out := EstimateTokens(answer)

	return pricing.TokenUsage{
		InputTokens:  in,
		OutputTokens: out,
		TotalTokens:  in + out,
	}
}
