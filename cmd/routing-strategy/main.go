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
	"github.com/kursadbilgin/tcxc-automation/internal/summarizer"
)

func main() {
	os.Exit(run())
}

func run() int {
	ctx, rt, err := bootstrap.NewRuntime(service.FlowRoutingStrategy)
	if err != nil {
		log.Printf("startup failed: %v", err)
		return 1
	}
	defer rt.Close()

	return rt.Finish(ctx, suggest(ctx, rt))
}

func suggest(ctx context.Context, rt *bootstrap.Runtime) error {
	search, err := config.LoadInto[config.SearchConfig]()
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

	strategy, err := service.NewStrategyService(rt.Marketplace, s, search.Payload(), rt.Metrics, rt.Logger)
	if err != nil {
		return err
	}

	result, err := strategy.Run(ctx)
	if err != nil {
		return err
	}

	observability.WithContextLogger(rt.Logger, ctx).Info("routing strategy complete",
		zap.Int("routes", len(result.Ranked)),
		zap.Bool("suggested", result.Suggestion != ""),
	)
	for i, rate := range result.Ranked {
		fmt.Printf("%d. %s (i_connection %s) %.4f\n", i+1, rate.VendorName, rate.IConnection, rate.Price.Float64())
	}
	if result.Suggestion != "" {
		fmt.Println()
		fmt.Println(result.Suggestion)
	}
	return nil
}
