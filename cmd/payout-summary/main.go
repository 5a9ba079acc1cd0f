package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/kursadbilgin/tcxc-automation/internal/app/bootstrap"
	"github.com/kursadbilgin/tcxc-automation/internal/config"
	"github.com/kursadbilgin/tcxc-automation/internal/marketplace"
	"github.com/kursadbilgin/tcxc-automation/internal/observability"
	"github.com/kursadbilgin/tcxc-automation/internal/service"
	"github.com/kursadbilgin/tcxc-automation/internal/summarizer"
)

func main() {
	os.Exit(run())
}

func run() int {
	ctx, rt, err := bootstrap.NewRuntime(service.FlowPayoutSummary)
	if err != nil {
		log.Printf("startup failed: %v", err)
		return 1
	}
	defer rt.Close()

	return rt.Finish(ctx, summarize(ctx, rt))
}

func summarize(ctx context.Context, rt *bootstrap.Runtime) error {
	cfg, err := config.LoadInto[config.PayoutConfig]()
	if err != nil {
		return err
	}
	summarizerCfg, err := config.LoadInto[config.SummarizerConfig]()
	if err != nil {
		return err
	}
	s, err := summarizer.New(*summarizerCfg)
	if err != nil {
		return err
	}

	dateTo := cfg.DateTo
	if dateTo == "" {
		dateTo = time.Now().UTC().Format(marketplace.TimeLayout)
	}

	payouts, err := service.NewPayoutService(rt.Marketplace, s, service.PayoutOptions{
		Query: marketplace.PayHistoryQuery{
			From:  cfg.DateFrom,
			To:    dateTo,
			Pager: cfg.Pager,
		},
		Sample: cfg.Sample,
	}, rt.Metrics, rt.Logger)
	if err != nil {
		return err
	}

	result, err := payouts.Run(ctx)
	if err != nil {
		return err
	}

	observability.WithContextLogger(rt.Logger, ctx).Info("payout summary complete",
		zap.Int("transactions", result.Count),
		zap.Float64("total", result.Total),
	)
	fmt.Printf("%d payouts, total %.2f USD\n", result.Count, result.Total)
	if result.Summary != "" {
		fmt.Println(result.Summary)
	}
	return nil
}
