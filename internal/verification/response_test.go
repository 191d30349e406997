package verification_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taxright/taxright/internal/verification"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestParseResponse_WellFormed(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{
			name: "Bare",
			text: `{"is_correct": true, "expected_tax_rate": 0.0825, "confidence_score": 0.95, "reasoning": "The CA rate of 8.25% applies."}`,
		},
		{
			name: "Fenced",
			text: "Based on the tax documents:\n```json\n" +
				`{"is_correct": true, "expected_tax_rate": 0.0825, "confidence_score": 0.95, "reasoning": "The CA rate of 8.25% applies."}` +
				"\n```",
		},
		{
			name: "ProseWrapped",
			text: `Here is my assessment: {"is_correct": true, "expected_tax_rate": 0.0825, "confidence_score": 0.95, "reasoning": "The CA rate of 8.25% applies."} Let me know.`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, ok := verification.ParseResponse(tt.text)
			require.True(t, ok)

			assert.True(t, resp.IsCorrect)
			assert.True(t, dec("0.0825").Equal(resp.ExpectedRate))
			assert.InDelta(t, 0.95, resp.Confidence, 1e-9)
			assert.Equal(t, "The CA rate of 8.25% applies.", resp.Reasoning)

			require.Len(t, resp.RateMentions, 1)
			assert.True(t, dec("0.0825").Equal(resp.RateMentions[0]))
		})
	}
}

// A truncated reasoning string must not discard the fields that did survive.
func TestParseResponse_TruncatedFallsBackToFields(t *testing.T) {
	text := `{"is_correct": false, "expected_tax_rate": 0.07, "confidence_score": 0.8, "reasoning": "The rate should be 7% because the sta`

	resp, ok := verification.ParseResponse(text)
	require.True(t, ok)

	assert.False(t, resp.IsCorrect)
	assert.True(t, dec("0.07").Equal(resp.ExpectedRate))
	assert.InDelta(t, 0.8, resp.Confidence, 1e-9)
	assert.Contains(t, resp.Reasoning, "should be 7%")
}

// Escape sequences in a regex-recovered reasoning fragment decode the same
// way a full JSON parse would decode them.
func TestParseResponse_FallbackReasoningUnescaped(t *testing.T) {
	text := `{"is_correct": false, "expected_tax_rate": 0.07, "confidence_score": 0.8, "reasoning": "Applied rate \"differs\" from the state rate.\nSee the 7% figure in the publi`

	resp, ok := verification.ParseResponse(text)
	require.True(t, ok)

	assert.Contains(t, resp.Reasoning, `Applied rate "differs" from the state rate.`)
	assert.Contains(t, resp.Reasoning, "\nSee the 7% figure")
	assert.NotContains(t, resp.Reasoning, `\"`)
}

func TestParseResponse_Unparseable(t *testing.T) {
	_, ok := verification.ParseResponse("I cannot answer questions about tax rates.")
	assert.False(t, ok)
}

func TestParseResponse_ConfidenceClamped(t *testing.T) {
	resp, ok := verification.ParseResponse(`{"is_correct": true, "expected_tax_rate": 0.05, "confidence_score": 1.7, "reasoning": "x"}`)
	require.True(t, ok)
	assert.Equal(t, 1.0, resp.Confidence)

	resp, ok = verification.ParseResponse(`{"is_correct": true, "expected_tax_rate": 0.05, "confidence_score": -0.3, "reasoning": "x"}`)
	require.True(t, ok)
	assert.Equal(t, 0.0, resp.Confidence)
}

// Precision-only differences normalize to the same rate.
func TestExtractRateMentions_PrecisionNormalized(t *testing.T) {
	a := verification.ExtractRateMentions("the rate is 6.75%")
	b := verification.ExtractRateMentions("the rate is 6.7500%")

	require.Len(t, a, 1)
	require.Len(t, b, 1)
	assert.True(t, a[0].Equal(b[0]), "%s vs %s", a[0], b[0])
	assert.True(t, dec("0.0675").Equal(a[0]))
}

func TestExtractRateMentions_Multiple(t *testing.T) {
	mentions := verification.ExtractRateMentions("applied 8.25% but the state rate is 7.25 % for this county")

	require.Len(t, mentions, 2)
	assert.True(t, dec("0.0825").Equal(mentions[0]))
	assert.True(t, dec("0.0725").Equal(mentions[1]))
}
