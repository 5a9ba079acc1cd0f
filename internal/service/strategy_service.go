package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/kursadbilgin/tcxc-automation/internal/domain"
	"github.com/kursadbilgin/tcxc-automation/internal/marketplace"
	"github.com/kursadbilgin/tcxc-automation/internal/observability"
	"github.com/kursadbilgin/tcxc-automation/internal/summarizer"
)

type StrategyResult struct {
	Ranked     []domain.Rate
	Suggestion string
}

// StrategyService ranks market view routes by price and asks the summarizer
// for a routing strategy.
type StrategyService struct {
	api        marketplace.API
	summarizer summarizer.Summarizer
	search     marketplace.Payload
	recorder   ActionRecorder
	logger     *zap.Logger
}

func NewStrategyService(api marketplace.API, s summarizer.Summarizer, search marketplace.Payload, recorder ActionRecorder, logger *zap.Logger) (*StrategyService, error) {
	if api == nil {
		return nil, fmt.Errorf("marketplace api is required")
	}
	if s == nil {
		s = summarizer.Disabled{}
	}

	return &StrategyService{
		api:        api,
		summarizer: s,
		search:     search,
		recorder:   recorderOrNop(recorder),
		logger:     loggerOrNop(logger),
	}, nil
}

func (s *StrategyService) Run(ctx context.Context) (*StrategyResult, error) {
	logger := observability.WithContextLogger(s.logger, ctx)

	rates, err := s.api.SearchMarketView(ctx, s.search)
	if err != nil {
		logger.Error("market view search failed", callFields(err)...)
		return nil, fmt.Errorf("search market view: %w", err)
	}

	result := &StrategyResult{Ranked: RankByPrice(rates)}
	if len(result.Ranked) == 0 {
		logger.Info("no rates available")
		return result, nil
	}

	for i, rate := range result.Ranked {
		logger.Info("least cost route",
			zap.Int("rank", i+1),
			zap.String("vendor", rate.VendorName),
			zap.String("connection", rate.ConnectionName),
			zap.Float64("price", rate.Price.Float64()),
		)
	}

	suggestion, err := s.summarizer.Summarize(ctx, StrategyPrompt(result.Ranked))
	switch {
	case errors.Is(err, summarizer.ErrDisabled):
		return result, nil
	case err != nil:
		s.recorder.IncAction(FlowRoutingStrategy, "summarize", observability.ResultFailure)
		logger.Error("routing strategy suggestion failed", zap.Error(err))
		return result, nil
	}

	s.recorder.IncAction(FlowRoutingStrategy, "summarize", observability.ResultSuccess)
	result.Suggestion = suggestion
	logger.Info("routing strategy suggestion", zap.String("suggestion", suggestion))
	return result, nil
}

// RankByPrice returns a copy of rates ordered by price_1 ascending. Equal
// prices keep server order.
func RankByPrice(rates []domain.Rate) []domain.Rate {
	ranked := make([]domain.Rate, len(rates))
	copy(ranked, rates)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Price < ranked[j].Price
	})
	return ranked
}

func StrategyPrompt(ranked []domain.Rate) string {
	var b strings.Builder
	b.WriteString("Based on the current marketplace rates, suggest an optimal routing strategy:\n\n")
	for i, rate := range ranked {
		fmt.Fprintf(&b, "Route %d: Vendor = %s, Connection = %s, Price = %s\n",
			i+1, rate.VendorName, rate.ConnectionName, rate.Price.String())
	}
	return b.String()
}
