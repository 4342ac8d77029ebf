package content

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
)

const (
	DefaultBedrockModel     = "anthropic.claude-3-sonnet-20240229-v1:0"
	bedrockAnthropicVersion = "bedrock-2023-05-31"
)

// InvokeModelAPI is the part of the Bedrock runtime client in use.
type InvokeModelAPI interface {
	InvokeModel(ctx context.Context, params *bedrockruntime.InvokeModelInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.InvokeModelOutput, error)
}

// BedrockCompleter sends Anthropic messages requests through Bedrock.
type BedrockCompleter struct {
	Client  InvokeModelAPI
	ModelID string
}

// NewBedrockCompleter uses the default AWS credential chain.
func NewBedrockCompleter(ctx context.Context, region, modelID string) (*BedrockCompleter, error) {
	if region == "" {
		region = "us-east-1"
	}
	if modelID == "" {
		modelID = DefaultBedrockModel
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("loading AWS config: %w", err)
	}
	return &BedrockCompleter{
		Client:  bedrockruntime.NewFromConfig(cfg),
		ModelID: modelID,
	}, nil
}

type bedrockContentBlock struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

type bedrockMessage struct {
	Role    string                `json:"role"`
	Content []bedrockContentBlock `json:"content"`
}

type bedrockRequest struct {
	AnthropicVersion string           `json:"anthropic_version"`
	MaxTokens        int              `json:"max_tokens"`
	System           string           `json:"system,omitempty"`
	Messages         []bedrockMessage `json:"messages"`
	Temperature      float64          `json:"temperature,omitempty"`
}

type bedrockResponse struct {
	Content []bedrockContentBlock `json:"content"`
}

func (b *BedrockCompleter) Complete(ctx context.Context, c Completion) (string, error) {
	maxTokens := c.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 2048
	}
	payload, err := json.Marshal(bedrockRequest{
		AnthropicVersion: bedrockAnthropicVersion,
		MaxTokens:        maxTokens,
		System:           c.System,
		Messages: []bedrockMessage{{
			Role:    "user",
			Content: []bedrockContentBlock{{Type: "text", Text: c.Prompt}},
		}},
		Temperature: c.Temperature,
	})
	if err != nil {
		return "", fmt.Errorf("encoding bedrock request: %w", err)
	}

	out, err := b.Client.InvokeModel(ctx, &bedrockruntime.InvokeModelInput{
		ModelId:     aws.String(b.ModelID),
		ContentType: aws.String("application/json"),
		Accept:      aws.String("application/json"),
		Body:        payload,
	})
	if err != nil {
		return "", fmt.Errorf("bedrock invoke: %w", err)
	}

	var resp bedrockResponse
	if err := json.Unmarshal(out.Body, &resp); err != nil {
		return "", fmt.Errorf("decoding bedrock response: %w", err)
	}
	var text string
	for _, block := range resp.Content {
		if block.Type == "text" {
			text += block.Text
		}
	}
	return text, nil
}

var _ Completer = (*BedrockCompleter)(nil)
