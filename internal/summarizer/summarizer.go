package summarizer

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/kursadbilgin/tcxc-automation/internal/config"
)

const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderNone      = "none"
)

// ErrDisabled is returned by the no-op summarizer.
var ErrDisabled = errors.New("summarizer disabled")

// Summarizer turns a prompt into free text. Output is not interpreted.
type Summarizer interface {
	Summarize(ctx context.Context, prompt string) (string, error)
}

// New picks an implementation by cfg.Provider.
func New(cfg config.SummarizerConfig) (Summarizer, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
	case "", ProviderOpenAI:
		return NewOpenAI(cfg.OpenAIAPIKey, cfg.OpenAIModel, cfg.MaxTokens)
	case ProviderAnthropic:
		return NewAnthropic(cfg.AnthropicAPIKey, cfg.AnthropicModel, cfg.MaxTokens)
	case ProviderNone:
		return Disabled{}, nil
	default:
		return nil, fmt.Errorf("unsupported summarizer provider %q", cfg.Provider)
	}
}

type Disabled struct{}

func (Disabled) Summarize(context.Context, string) (string, error) {
	return "", ErrDisabled
}
