package verification

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/taxright/taxright/internal/extraction"
	"github.com/taxright/taxright/internal/money"
)

// ParsedResponse is a knowledge base answer after best-effort recovery.
type ParsedResponse struct {
	IsCorrect    bool
	ExpectedRate decimal.Decimal
	Confidence   float64
	Reasoning    string

	// RateMentions are the percentage figures found in the reasoning text,
	// normalized to decimal rates, used by the reconciliation step.
	RateMentions []decimal.Decimal
}

var (
	isCorrectPattern  = regexp.MustCompile(`"is_correct"\s*:\s*(true|false)`)
	expectedPattern   = regexp.MustCompile(`"expected_tax_rate"\s*:\s*"?(-?\d+\.?\d*)`)
	confidencePattern = regexp.MustCompile(`"confidence_score"\s*:\s*"?(-?\d+\.?\d*)`)
	reasoningPattern  = regexp.MustCompile(`"reasoning"\s*:\s*"((?:[^"\\]|\\.)*)`)
	percentPattern    = regexp.MustCompile(`(\d+\.?\d*)\s*%`)
)

// ParseResponse recovers the verification fields from free-form answer text.
// Attempts, in order: fenced or bare JSON object, then per-field regex
// extraction so one broken field does not discard the others. Returns false
// when nothing at all could be recovered.
func ParseResponse(text string) (*ParsedResponse, bool) {
	if raw, ok := extraction.ExtractJSON(text); ok {
		var fields struct {
			IsCorrect       bool   `json:"is_correct"`
			ExpectedTaxRate any    `json:"expected_tax_rate"`
			ConfidenceScore any    `json:"confidence_score"`
			Reasoning       string `json:"reasoning"`
		}

		if err := json.Unmarshal([]byte(raw), &fields); err == nil {
			resp := &ParsedResponse{
				IsCorrect:    fields.IsCorrect,
				ExpectedRate: money.ToDecimal(fields.ExpectedTaxRate, decimal.Zero),
				Confidence:   clampConfidence(money.ToDecimal(fields.ConfidenceScore, decimal.Zero)),
				Reasoning:    strings.TrimSpace(fields.Reasoning),
			}
			resp.RateMentions = ExtractRateMentions(resp.Reasoning)

			return resp, true
		}
	}

	return parseFields(text)
}

// parseFields extracts each field independently. A truncated reasoning
// string, the most common breakage, does not cost us a valid is_correct or
// expected_tax_rate.
func parseFields(text string) (*ParsedResponse, bool) {
	resp := &ParsedResponse{}
	recovered := false

	if m := isCorrectPattern.FindStringSubmatch(text); m != nil {
		resp.IsCorrect = m[1] == "true"
		recovered = true
	}

	if m := expectedPattern.FindStringSubmatch(text); m != nil {
		resp.ExpectedRate = money.ToDecimal(m[1], decimal.Zero)
		recovered = true
	}

	if m := confidencePattern.FindStringSubmatch(text); m != nil {
		resp.Confidence = clampConfidence(money.ToDecimal(m[1], decimal.Zero))
		recovered = true
	}

	if m := reasoningPattern.FindStringSubmatch(text); m != nil {
		resp.Reasoning = strings.TrimSpace(unescapeReasoning(m[1]))
		recovered = true
	}

	if !recovered {
		return nil, false
	}

	resp.RateMentions = ExtractRateMentions(resp.Reasoning)

	return resp, true
}

// unescapeReasoning resolves JSON escape sequences in a regex-captured
// reasoning fragment so fallback recovery yields the same text a full JSON
// decode would. The capture group only admits complete escape pairs, so the
// re-quoted fragment is valid JSON; anything else is kept as captured.
func unescapeReasoning(s string) string {
	var out string
	if err := json.Unmarshal([]byte(`"`+s+`"`), &out); err != nil {
		return s
	}

	return out
}

// ExtractRateMentions finds percentage figures in free text and normalizes
// them to decimal rates. Percentages are rounded to 4 decimal places first so
// "6.75%" and "6.7500%" produce the same rate.
func ExtractRateMentions(text string) []decimal.Decimal {
	matches := percentPattern.FindAllStringSubmatch(text, -1)
	if matches == nil {
		return nil
	}

	rates := make([]decimal.Decimal, 0, len(matches))

	for _, m := range matches {
		pct := money.ToDecimal(m[1], decimal.Zero)
		rates = append(rates, pct.Round(4).Div(decimal.NewFromInt(100)))
	}

	return rates
}

func clampConfidence(d decimal.Decimal) float64 {
	f, _ := d.Float64()

	switch {
	case f < 0:
		return 0
	case f > 1:
		return 1
	default:
		return f
	}
}
