package summarizer

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

const (
	defaultAnthropicModel     = "claude-3-5-haiku-latest"
	defaultAnthropicMaxTokens = 200
)

type Anthropic struct {
	client    anthropic.Client
	model     anthropic.Model
	maxTokens int64
}

func NewAnthropic(apiKey string, model string, maxTokens int, opts ...option.RequestOption) (*Anthropic, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("anthropic api key is required")
	}

	resolved := anthropic.Model(defaultAnthropicModel)
	if strings.TrimSpace(model) != "" {
		resolved = anthropic.Model(model)
	}
	// The messages API rejects a zero max_tokens.
	tokens := int64(maxTokens)
	if tokens <= 0 {
		tokens = defaultAnthropicMaxTokens
	}

	options := append([]option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
	}, opts...)

	return &Anthropic{
		client:    anthropic.NewClient(options...),
		model:     resolved,
		maxTokens: tokens,
	}, nil
}

func (s *Anthropic) Summarize(ctx context.Context, prompt string) (string, error) {
	message, err := s.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     s.model,
		MaxTokens: s.maxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("anthropic request failed: %w", err)
	}

	for _, content := range message.Content {
		if content.Type == "text" && content.Text != "" {
			return strings.TrimSpace(content.Text), nil
		}
	}
	return "", fmt.Errorf("no text content returned")
}
