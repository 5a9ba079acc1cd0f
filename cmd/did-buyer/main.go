package main

import (
	"context"
	"errors"
	"log"
	"os"

	"go.uber.org/zap"

	"github.com/kursadbilgin/tcxc-automation/internal/app/bootstrap"
	"github.com/kursadbilgin/tcxc-automation/internal/config"
	"github.com/kursadbilgin/tcxc-automation/internal/observability"
	"github.com/kursadbilgin/tcxc-automation/internal/service"
)

func main() {
	os.Exit(run())
}

func run() int {
	ctx, rt, err := bootstrap.NewRuntime(service.FlowBuyer)
	if err != nil {
		log.Printf("startup failed: %v", err)
		return 1
	}
	defer rt.Close()

	return rt.Finish(ctx, buy(ctx, rt))
}

func buy(ctx context.Context, rt *bootstrap.Runtime) error {
	cfg, err := config.LoadInto[config.BuyerConfig]()
	if err != nil {
		return err
	}

	buyer, err := service.NewBuyerService(rt.Marketplace, service.BuyerOptions{
		Search:         cfg.SearchPayload(),
		Threshold:      cfg.Threshold(),
		BillingAccount: cfg.BillingAccount,
		SIPHost:        cfg.SIPHost,
		SMPPHost:       cfg.SMPPHost,
	}, rt.Metrics, rt.Logger)
	if err != nil {
		return err
	}

	result, err := buyer.Run(ctx)
	if errors.Is(err, service.ErrNoPurchase) {
		observability.WithContextLogger(rt.Logger, ctx).Warn("no number purchased",
			zap.Int("candidates", result.Candidates),
			zap.Int("skipped", result.Skipped),
			zap.Int("failed", result.Failed),
		)
		return err
	}
	if err != nil {
		return err
	}

	observability.WithContextLogger(rt.Logger, ctx).Info("number purchased",
		zap.String("number", result.Purchased.Number),
		zap.String("iDid", result.Purchased.IDID.String()),
	)
	return nil
}
