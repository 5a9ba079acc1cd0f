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
)

// ErrNoPurchase means the buyer run ended without buying a number.
var ErrNoPurchase = errors.New("no number purchased")

type BuyerOptions struct {
	Search         marketplace.Payload
	Threshold      domain.FeeThreshold
	BillingAccount string
	// SIPHost and SMPPHost are host:port targets the purchased number routes to.
	SIPHost  string
	SMPPHost string
}

type BuyerResult struct {
	Purchased  *domain.DID
	Candidates int
	Skipped    int
	Failed     int
}

// BuyerService buys at most one listed number per run: the first, in server
// order, that passes the fee threshold and whose purchase succeeds.
type BuyerService struct {
	api      marketplace.API
	opts     BuyerOptions
	recorder ActionRecorder
	logger   *zap.Logger
}

func NewBuyerService(api marketplace.API, opts BuyerOptions, recorder ActionRecorder, logger *zap.Logger) (*BuyerService, error) {
	if api == nil {
		return nil, fmt.Errorf("marketplace api is required")
	}
	if strings.TrimSpace(opts.BillingAccount) == "" {
		return nil, fmt.Errorf("%w: billing account is required", domain.ErrValidation)
	}

	return &BuyerService{
		api:      api,
		opts:     opts,
		recorder: recorderOrNop(recorder),
		logger:   loggerOrNop(logger),
	}, nil
}

func (s *BuyerService) Run(ctx context.Context) (*BuyerResult, error) {
	logger := observability.WithContextLogger(s.logger, ctx)

	dids, err := s.api.SearchNumbers(ctx, s.opts.Search)
	if err != nil {
		logger.Error("number market search failed", callFields(err)...)
		return nil, fmt.Errorf("search numbers: %w", err)
	}

	result := &BuyerResult{Candidates: len(dids)}
	for i := range dids {
		did := dids[i]

		if !s.opts.Threshold.Accepts(did) {
			result.Skipped++
			s.recorder.IncAction(FlowBuyer, "purchase", observability.ResultSkipped)
			logger.Info("skipped number due to high cost",
				zap.String("number", did.Number),
				zap.Float64("monthlyFee", did.MonthlyFee.Float64()),
				zap.Float64("setupFee", did.SetupFee.Float64()),
			)
			continue
		}

		_, err := s.api.PurchaseNumber(ctx, s.purchaseFor(did))
		if err != nil {
			result.Failed++
			s.recorder.IncAction(FlowBuyer, "purchase", observability.ResultFailure)
			logger.Warn("failed to purchase number, trying the next one",
				append([]zap.Field{zap.String("number", did.Number)}, callFields(err)...)...,
			)
			continue
		}

		s.recorder.IncAction(FlowBuyer, "purchase", observability.ResultSuccess)
		logger.Info("purchased number", zap.String("number", did.Number), zap.String("iDid", did.IDID.String()))
		result.Purchased = &did
		return result, nil
	}

	logger.Error("failed to purchase any number",
		zap.Int("candidates", result.Candidates),
		zap.Int("skipped", result.Skipped),
		zap.Int("failed", result.Failed),
	)
	return result, ErrNoPurchase
}

func (s *BuyerService) purchaseFor(did domain.DID) marketplace.Purchase {
	return marketplace.Purchase{
		IDID:           did.IDID.String(),
		BillingAccount: s.opts.BillingAccount,
		Contact:        fmt.Sprintf("sip:%s@%s", did.Number, s.opts.SIPHost),
		SMPPContact:    fmt.Sprintf("smpp:did:did:%s@%s", did.Number, s.opts.SMPPHost),
	}
}
