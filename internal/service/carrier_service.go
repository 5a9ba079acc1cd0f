package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/kursadbilgin/tcxc-automation/internal/domain"
	"github.com/kursadbilgin/tcxc-automation/internal/marketplace"
	"github.com/kursadbilgin/tcxc-automation/internal/observability"
)

type CarrierOptions struct {
	Search    marketplace.Payload
	Threshold domain.FeeThreshold
	IAccount  string
}

type CarrierResult struct {
	Interconnected []domain.Rate
	Skipped        int
	Failed         int
}

// CarrierService accepts every market view offer priced under the threshold.
type CarrierService struct {
	api      marketplace.API
	opts     CarrierOptions
	recorder ActionRecorder
	logger   *zap.Logger
}

func NewCarrierService(api marketplace.API, opts CarrierOptions, recorder ActionRecorder, logger *zap.Logger) (*CarrierService, error) {
	if api == nil {
		return nil, fmt.Errorf("marketplace api is required")
	}
	if strings.TrimSpace(opts.IAccount) == "" {
		return nil, fmt.Errorf("%w: i_account is required", domain.ErrValidation)
	}

	return &CarrierService{
		api:      api,
		opts:     opts,
		recorder: recorderOrNop(recorder),
		logger:   loggerOrNop(logger),
	}, nil
}

func (s *CarrierService) Run(ctx context.Context) (*CarrierResult, error) {
	logger := observability.WithContextLogger(s.logger, ctx)

	rates, err := s.api.SearchMarketView(ctx, s.opts.Search)
	if err != nil {
		logger.Error("market view search failed", callFields(err)...)
		return nil, fmt.Errorf("search market view: %w", err)
	}
	logger.Info("market view search returned routes", zap.Int("routes", len(rates)))

	result := &CarrierResult{}
	for _, rate := range rates {
		fields := []zap.Field{
			zap.String("iConnection", rate.IConnection.String()),
			zap.String("vendor", rate.VendorName),
			zap.Float64("price", rate.Price.Float64()),
		}

		if !s.opts.Threshold.Accepts(rate) {
			result.Skipped++
			s.recorder.IncAction(FlowCarrier, "interconnect", observability.ResultSkipped)
			logger.Info("price too high, skipping interconnect", fields...)
			continue
		}

		resp, err := s.api.Interconnect(ctx, marketplace.Interconnection{
			IAccount:    s.opts.IAccount,
			IConnection: rate.IConnection.String(),
		})
		if err != nil {
			result.Failed++
			s.recorder.IncAction(FlowCarrier, "interconnect", observability.ResultFailure)
			logger.Error("interconnect failed", append(fields, callFields(err)...)...)
			continue
		}

		result.Interconnected = append(result.Interconnected, rate)
		s.recorder.IncAction(FlowCarrier, "interconnect", observability.ResultSuccess)
		logger.Info("interconnected", append(fields, zap.Any("details", resp.Body))...)
	}

	return result, nil
}
