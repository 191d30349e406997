package ocr

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"

	"github.com/taxright/taxright/internal/pricing"
)

// extractionPrompt instructs the model to return the invoice as a strict
// JSON object. Amounts are requested as strings so the model does not round
// them itself.
const extractionPrompt = `You are an expert at extracting information from invoices.
Analyze the following invoice PDF and extract all relevant information in a structured JSON format.

Extract the following information and return it as valid JSON only (no markdown, no code blocks, just the JSON object):

{
  "invoice_number": "string (invoice number or ID)",
  "date": "YYYY-MM-DD (invoice date)",
  "vendor_name": "string (vendor or supplier name)",
  "total_amount": "decimal number (total invoice amount)",
  "total_tax_amount": "decimal number (total tax when reported as a single amount, 0 if tax is per line)",
  "invoice_discount_amount": "decimal number (invoice-level discount, 0 if none)",
  "state_code": "string (2-letter US state code, e.g., CA, NY)",
  "jurisdiction": "string (county, city, or special district if applicable, empty string if not)",
  "line_items": [
    {
      "description": "string (item description)",
      "quantity": "decimal number",
      "unit_price": "decimal number",
      "line_total": "decimal number (quantity * unit_price)",
      "discount_amount": "decimal number (line-level discount, 0 if none)",
      "tax_amount": "decimal number (tax for this line item)",
      "tax_rate": "decimal number (tax rate as decimal, e.g., 0.0825 for 8.25%)",
      "tax_status": "string (one of: 'taxable', 'exempt', 'unknown')"
    }
  ]
}

Important:
- Return ONLY valid JSON, no additional text or explanation
- If a field cannot be determined, use empty string for strings, 0 for numbers, or empty array for line_items
- Dates must be in YYYY-MM-DD format
- All amounts should be decimal numbers (strings in JSON)
- State code should be 2-letter uppercase US state code
- If jurisdiction is not found, use empty string`

// converseClient is the slice of the Bedrock runtime client the extractor
// uses.
type converseClient interface {
	Converse(ctx context.Context, params *bedrockruntime.ConverseInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.ConverseOutput, error)
}

// BedrockExtractor sends invoice PDFs to a multimodal Bedrock model through
// the Converse API and returns the raw model response.
type BedrockExtractor struct {
	client  converseClient
	modelID string
	logger  *slog.Logger
}

func NewBedrockExtractor(client converseClient, modelID string, logger *slog.Logger) *BedrockExtractor {
	return &BedrockExtractor{
		client:  client,
		modelID: modelID,
		logger:  logger,
	}
}

func (e *BedrockExtractor) ExtractInvoice(ctx context.Context, filename string, pdf []byte) (*Result, error) {
	if err := ValidatePDF(pdf); err != nil {
		return nil, fmt.Errorf("validating pdf: %w", err)
	}

	// Document block first, text instruction second. The Converse API
	// requires the sanitized name; the format is declared on the block.
	input := &bedrockruntime.ConverseInput{
		ModelId: aws.String(e.modelID),
		Messages: []types.Message{
			{
				Role: types.ConversationRoleUser,
				Content: []types.ContentBlock{
					&types.ContentBlockMemberDocument{
						Value: types.DocumentBlock{
							Format: types.DocumentFormatPdf,
							Name:   aws.String(SanitizeFilename(filename)),
							Source: &types.DocumentSourceMemberBytes{Value: pdf},
						},
					},
					&types.ContentBlockMemberText{Value: extractionPrompt},
				},
			},
		},
		InferenceConfig: &types.InferenceConfiguration{
			MaxTokens:   aws.Int32(4096),
			Temperature: aws.Float32(0.7),
			TopP:        aws.Float32(0.9),
		},
	}

	out, err := e.client.Converse(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("invoking model %s: %w", e.modelID, err)
	}

	msg, ok := out.Output.(*types.ConverseOutputMemberMessage)
	if !ok {
		return nil, fmt.Errorf("unexpected converse output type %T", out.Output)
	}

	var parts []string
	for _, block := range msg.Value.Content {
		if text, ok := block.(*types.ContentBlockMemberText); ok {
			parts = append(parts, text.Value)
		}
	}

	if len(parts) == 0 {
		return nil, fmt.Errorf("model %s returned no text content", e.modelID)
	}

	result := &Result{
		RawText: strings.Join(parts, "\n"),
		ModelID: e.modelID,
	}

	if out.Usage != nil {
		result.Usage = pricing.TokenUsage{
			InputTokens:  int64(aws.ToInt32(out.Usage.InputTokens)),
			OutputTokens: int64(aws.ToInt32(out.Usage.OutputTokens)),
			TotalTokens:  int64(aws.ToInt32(out.Usage.TotalTokens)),
		}
	}

	e.logger.Info("invoice extracted",
		slog.String("model_id", e.modelID),
		slog.Int64("input_tokens", result.Usage.InputTokens),
		slog.Int64("output_tokens", result.Usage.OutputTokens),
	)

	return result, nil
}
