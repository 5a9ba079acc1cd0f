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

const (
	defaultSellerPager = 300
)

type RouteTestOptions struct {
	SellerPager  int
	SellerOffset int
}

// RouteTestService lists routes and test numbers and starts two-leg test
// calls through a chosen seller connection.
type RouteTestService struct {
	api      marketplace.API
	opts     RouteTestOptions
	recorder ActionRecorder
	logger   *zap.Logger
}

func NewRouteTestService(api marketplace.API, opts RouteTestOptions, recorder ActionRecorder, logger *zap.Logger) (*RouteTestService, error) {
	if api == nil {
		return nil, fmt.Errorf("marketplace api is required")
	}
	if opts.SellerPager <= 0 {
		opts.SellerPager = defaultSellerPager
	}
	if opts.SellerOffset < 0 {
		opts.SellerOffset = 0
	}

	return &RouteTestService{
		api:      api,
		opts:     opts,
		recorder: recorderOrNop(recorder),
		logger:   loggerOrNop(logger),
	}, nil
}

func (s *RouteTestService) Sellers(ctx context.Context) ([]domain.Seller, error) {
	sellers, err := s.api.ListSellers(ctx, s.opts.SellerPager, s.opts.SellerOffset)
	if err != nil {
		observability.WithContextLogger(s.logger, ctx).Error("failed to list sellers", callFields(err)...)
		return nil, fmt.Errorf("list sellers: %w", err)
	}
	return sellers, nil
}

func (s *RouteTestService) TestNumbers(ctx context.Context, country string, description string) ([]domain.TestNumber, error) {
	numbers, err := s.api.GetTestNumbers(ctx, strings.TrimSpace(country), strings.TrimSpace(description))
	if err != nil {
		observability.WithContextLogger(s.logger, ctx).Error("failed to fetch test numbers",
			append([]zap.Field{zap.String("country", country), zap.String("description", description)}, callFields(err)...)...,
		)
		return nil, fmt.Errorf("get test numbers: %w", err)
	}
	return numbers, nil
}

// Start validates test and initiates the call. Invalid input never reaches
// the marketplace.
func (s *RouteTestService) Start(ctx context.Context, test domain.RouteTest) (string, error) {
	logger := observability.WithContextLogger(s.logger, ctx)

	if err := test.Validate(); err != nil {
		s.recorder.IncAction(FlowRouteTest, "test_call", observability.ResultSkipped)
		logger.Warn("invalid route test input", zap.Error(err))
		return "", err
	}

	fields := []zap.Field{
		zap.String("iConnection", test.IConnection),
		zap.String("cld1", test.CLD1),
		zap.String("cld2", test.CLD2),
	}

	statusText, err := s.api.RouteTest(ctx, test)
	if err != nil {
		s.recorder.IncAction(FlowRouteTest, "test_call", observability.ResultFailure)
		logger.Error("route test failed", append(fields, callFields(err)...)...)
		return "", fmt.Errorf("route test: %w", err)
	}

	s.recorder.IncAction(FlowRouteTest, "test_call", observability.ResultSuccess)
	logger.Info("route test initiated", append(fields, zap.String("statusText", statusText))...)
	return statusText, nil
}
