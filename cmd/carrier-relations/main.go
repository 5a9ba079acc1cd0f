package main

import (
	"context"
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
	ctx, rt, err := bootstrap.NewRuntime(service.FlowCarrier)
	if err != nil {
		log.Printf("startup failed: %v", err)
		return 1
	}
	defer rt.Close()

	return rt.Finish(ctx, interconnect(ctx, rt))
}

func interconnect(ctx context.Context, rt *bootstrap.Runtime) error {
	search, err := config.LoadInto[config.SearchConfig]()
	if err != nil {
		return err
	}
	cfg, err := config.LoadInto[config.CarrierConfig]()
	if err != nil {
		return err
	}

	carrier, err := service.NewCarrierService(rt.Marketplace, service.CarrierOptions{
		Search:    search.Payload(),
		Threshold: cfg.Threshold(),
		IAccount:  cfg.IAccount,
	}, rt.Metrics, rt.Logger)
	if err != nil {
		return err
	}

	result, err := carrier.Run(ctx)
	if err != nil {
		return err
	}

	observability.WithContextLogger(rt.Logger, ctx).Info("carrier run complete",
		zap.Int("interconnected", len(result.Interconnected)),
		zap.Int("skipped", result.Skipped),
		zap.Int("failed", result.Failed),
	)
	return nil
}
