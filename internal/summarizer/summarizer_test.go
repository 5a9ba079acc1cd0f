package summarizer

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	anthropicoption "github.com/anthropics/anthropic-sdk-go/option"
	openaioption "github.com/openai/openai-go/v2/option"

	"github.com/kursadbilgin/tcxc-automation/internal/config"
)

func TestNewSelectsProvider(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name    string
		cfg     config.SummarizerConfig
		want    string
		wantErr bool
	}{
		{name: "openai default", cfg: config.SummarizerConfig{OpenAIAPIKey: "k", OpenAIModel: "gpt-4o-mini"}, want: "*summarizer.OpenAI"},
		{name: "anthropic", cfg: config.SummarizerConfig{Provider: "Anthropic", AnthropicAPIKey: "k"}, want: "*summarizer.Anthropic"},
		{name: "none", cfg: config.SummarizerConfig{Provider: "none"}, want: "summarizer.Disabled"},
		{name: "openai without key", cfg: config.SummarizerConfig{Provider: "openai", OpenAIModel: "m"}, wantErr: true},
		{name: "anthropic without key", cfg: config.SummarizerConfig{Provider: "anthropic"}, wantErr: true},
		{name: "unknown", cfg: config.SummarizerConfig{Provider: "davinci"}, wantErr: true},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got, err := New(tc.cfg)
			if tc.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("New() error = %v", err)
			}
			if typeName(got) != tc.want {
				t.Fatalf("New() type = %s, want %s", typeName(got), tc.want)
			}
		})
	}
}

func typeName(s Summarizer) string {
	switch s.(type) {
	case *OpenAI:
		return "*summarizer.OpenAI"
	case *Anthropic:
		return "*summarizer.Anthropic"
	case Disabled:
		return "summarizer.Disabled"
	}
	return "unknown"
}

func TestDisabledSummarizer(t *testing.T) {
	t.Parallel()

	if _, err := (Disabled{}).Summarize(context.Background(), "x"); !errors.Is(err, ErrDisabled) {
		t.Fatalf("Summarize() error = %v, want ErrDisabled", err)
	}
}

func TestOpenAISummarize(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/chat/completions") {
			t.Errorf("path = %s, want chat completions", r.URL.Path)
		}
		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if body["model"] != "gpt-4o-mini" {
			t.Errorf("model = %v", body["model"])
		}
		if body["max_tokens"] != float64(200) {
			t.Errorf("max_tokens = %v, want 200", body["max_tokens"])
		}

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"chatcmpl-1","object":"chat.completion","created":1,"model":"gpt-4o-mini",
			"choices":[{"index":0,"finish_reason":"stop","message":{"role":"assistant","content":"  Prefer vendor A.  "}}],
			"usage":{"prompt_tokens":10,"completion_tokens":4,"total_tokens":14}}`))
	}))
	defer server.Close()

	s, err := NewOpenAI("test-key", "gpt-4o-mini", 200, openaioption.WithBaseURL(server.URL+"/"))
	if err != nil {
		t.Fatalf("NewOpenAI() error = %v", err)
	}

	got, err := s.Summarize(context.Background(), "rates")
	if err != nil {
		t.Fatalf("Summarize() error = %v", err)
	}
	if got != "Prefer vendor A." {
		t.Fatalf("Summarize() = %q", got)
	}
}

func TestOpenAISummarizeNoRetryOnServerError(t *testing.T) {
	t.Parallel()

	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	s, err := NewOpenAI("test-key", "gpt-4o-mini", 0, openaioption.WithBaseURL(server.URL+"/"))
	if err != nil {
		t.Fatalf("NewOpenAI() error = %v", err)
	}

	if _, err := s.Summarize(context.Background(), "rates"); err == nil {
		t.Fatal("expected error")
	}
	if calls != 1 {
		t.Fatalf("calls = %d, want 1", calls)
	}
}

func TestAnthropicSummarize(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/v1/messages") {
			t.Errorf("path = %s, want messages", r.URL.Path)
		}
		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if body["max_tokens"] != float64(defaultAnthropicMaxTokens) {
			t.Errorf("max_tokens = %v", body["max_tokens"])
		}

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"msg_1","type":"message","role":"assistant","model":"claude-3-5-haiku-latest",
			"content":[{"type":"text","text":"Payouts are steady."}],
			"stop_reason":"end_turn","usage":{"input_tokens":10,"output_tokens":4}}`))
	}))
	defer server.Close()

	s, err := NewAnthropic("test-key", "", 0, anthropicoption.WithBaseURL(server.URL))
	if err != nil {
		t.Fatalf("NewAnthropic() error = %v", err)
	}

	got, err := s.Summarize(context.Background(), "payouts")
	if err != nil {
		t.Fatalf("Summarize() error = %v", err)
	}
	if got != "Payouts are steady." {
		t.Fatalf("Summarize() = %q", got)
	}
}
