package knowledge

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockagentruntime"
	"github.com/aws/aws-sdk-go-v2/service/bedrockagentruntime/types"
)

// ragClient is the slice of the Bedrock agent runtime client the knowledge
// client uses.
type ragClient interface {
	RetrieveAndGenerate(ctx context.Context, params *bedrockagentruntime.RetrieveAndGenerateInput, optFns ...func(*bedrockagentruntime.Options)) (*bedrockagentruntime.RetrieveAndGenerateOutput, error)
}

// BedrockClient queries Bedrock knowledge bases through the
// RetrieveAndGenerate API.
type BedrockClient struct {
	client   ragClient
	modelARN string
	logger   *slog.Logger
}

func NewBedrockClient(client ragClient, modelARN string, logger *slog.Logger) *BedrockClient {
	return &BedrockClient{
		client:   client,
		modelARN: modelARN,
		logger:   logger,
	}
}

func (c *BedrockClient) Query(ctx context.Context, kbID, prompt string) (*Answer, error) {
	input := &bedrockagentruntime.RetrieveAndGenerateInput{
		Input: &types.RetrieveAndGenerateInput{Text: aws.String(prompt)},
		RetrieveAndGenerateConfiguration: &types.RetrieveAndGenerateConfiguration{
			Type: types.RetrieveAndGenerateTypeKnowledgeBase,
			KnowledgeBaseConfiguration: &types.KnowledgeBaseRetrieveAndGenerateConfiguration{
				KnowledgeBaseId: aws.String(kbID),
				ModelArn:        aws.String(c.modelARN),
			},
		},
	}

	out, err := c.client.RetrieveAndGenerate(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("querying knowledge base %s: %w", kbID, err)
	}

	if out.Output == nil || out.Output.Text == nil {
		return nil, fmt.Errorf("knowledge base %s returned no text", kbID)
	}

	text := *out.Output.Text

	var citations []string

	for _, citation := range out.Citations {
		for _, ref := range citation.RetrievedReferences {
			if ref.Location == nil || ref.Location.S3Location == nil || ref.Location.S3Location.Uri == nil {
				continue
			}

			citations = append(citations, *ref.Location.S3Location.Uri)
		}
	}

	c.logger.Debug("knowledge base answered",
		slog.String("kb_id", kbID),
		slog.Int("citations", len(citations)),
		slog.Int("answer_chars", len(text)),
	)

	return &Answer{
		Text:      text,
		Citations: citations,
		Usage:     EstimateUsage(prompt, text),
	}, nil
}
