package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/kursadbilgin/tcxc-automation/internal/domain"
	"github.com/kursadbilgin/tcxc-automation/internal/marketplace"
	"github.com/kursadbilgin/tcxc-automation/internal/observability"
	"github.com/kursadbilgin/tcxc-automation/internal/summarizer"
)

const defaultPayoutSample = 5

type PayoutOptions struct {
	Query  marketplace.PayHistoryQuery
	Sample int
}

type PayoutResult struct {
	Count   int
	Total   float64
	Summary string
}

// PayoutService totals seller payouts and asks the summarizer to describe them.
type PayoutService struct {
	api        marketplace.API
	summarizer summarizer.Summarizer
	opts       PayoutOptions
	recorder   ActionRecorder
	logger     *zap.Logger
}

func NewPayoutService(api marketplace.API, s summarizer.Summarizer, opts PayoutOptions, recorder ActionRecorder, logger *zap.Logger) (*PayoutService, error) {
	if api == nil {
		return nil, fmt.Errorf("marketplace api is required")
	}
	if s == nil {
		s = summarizer.Disabled{}
	}
	if opts.Sample <= 0 {
		opts.Sample = defaultPayoutSample
	}

	return &PayoutService{
		api:        api,
		summarizer: s,
		opts:       opts,
		recorder:   recorderOrNop(recorder),
		logger:     loggerOrNop(logger),
	}, nil
}

func (s *PayoutService) Run(ctx context.Context) (*PayoutResult, error) {
	logger := observability.WithContextLogger(s.logger, ctx)

	txs, err := s.api.PayHistory(ctx, s.opts.Query)
	if err != nil {
		logger.Error("pay history request failed", callFields(err)...)
		return nil, fmt.Errorf("pay history: %w", err)
	}

	result := &PayoutResult{Count: len(txs), Total: TotalAmount(txs)}
	logger.Info("payout totals", zap.Int("transactions", result.Count), zap.Float64("total", result.Total))

	summary, err := s.summarizer.Summarize(ctx, PayoutPrompt(txs, result.Total, s.opts.Sample))
	switch {
	case errors.Is(err, summarizer.ErrDisabled):
		return result, nil
	case err != nil:
		s.recorder.IncAction(FlowPayoutSummary, "summarize", observability.ResultFailure)
		logger.Error("payout summary failed", zap.Error(err))
		return result, nil
	}

	s.recorder.IncAction(FlowPayoutSummary, "summarize", observability.ResultSuccess)
	result.Summary = summary
	logger.Info("generated payout summary", zap.String("summary", summary))
	return result, nil
}

func TotalAmount(txs []domain.Transaction) float64 {
	var total float64
	for _, tx := range txs {
		total += tx.Amount.Float64()
	}
	return total
}

// PayoutPrompt includes the first sample transactions verbatim.
func PayoutPrompt(txs []domain.Transaction, total float64, sample int) string {
	if sample > len(txs) {
		sample = len(txs)
	}

	raw := make([]string, 0, sample)
	for _, tx := range txs[:sample] {
		raw = append(raw, string(tx.Raw))
	}

	return fmt.Sprintf(
		"There are %d payout transactions totalling %.2f USD. The first transactions are: [%s]. "+
			"Summarize this data, point out any noticeable patterns or trends, and state the total payout.",
		len(txs), total, strings.Join(raw, ", "),
	)
}
