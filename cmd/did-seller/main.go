package main

import (
	"context"
	"fmt"
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
	ctx, rt, err := bootstrap.NewRuntime(service.FlowSeller)
	if err != nil {
		log.Printf("startup failed: %v", err)
		return 1
	}
	defer rt.Close()

	return rt.Finish(ctx, sell(ctx, rt))
}

func sell(ctx context.Context, rt *bootstrap.Runtime) error {
	cfg, err := config.LoadInto[config.SellerConfig]()
	if err != nil {
		return err
	}

	seller, err := service.NewSellerService(rt.Marketplace, service.SellerOptions{
		Listings: cfg.Listings(),
		Subject:  cfg.Subject,
	}, rt.Metrics, rt.Logger)
	if err != nil {
		return err
	}

	result, err := seller.Run(ctx)
	if err != nil {
		return err
	}

	observability.WithContextLogger(rt.Logger, ctx).Info("seller run complete",
		zap.Int("listed", len(result.Listed)),
		zap.Int("listFailures", result.ListFailures),
		zap.Int("announced", result.Announced),
		zap.Int("messageErrors", result.MessageErrors),
	)
	if len(result.Listed) == 0 && result.ListFailures > 0 {
		return fmt.Errorf("no numbers listed: %d failures", result.ListFailures)
	}
	return nil
}
