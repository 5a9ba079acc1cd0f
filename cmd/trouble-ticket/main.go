package main

import (
	"context"
	"log"
	"os"

	"go.uber.org/zap"

	"github.com/kursadbilgin/tcxc-automation/internal/app/bootstrap"
	"github.com/kursadbilgin/tcxc-automation/internal/observability"
	"github.com/kursadbilgin/tcxc-automation/internal/service"
)

func main() {
	os.Exit(run())
}

func run() int {
	ctx, rt, err := bootstrap.NewRuntime(service.FlowTicket)
	if err != nil {
		log.Printf("startup failed: %v", err)
		return 1
	}
	defer rt.Close()

	return rt.Finish(ctx, scan(ctx, rt))
}

func scan(ctx context.Context, rt *bootstrap.Runtime) error {
	tickets, _, err := rt.NewTicketService(ctx)
	if err != nil {
		return err
	}

	result, err := tickets.Run(ctx)
	if err != nil {
		return err
	}

	observability.WithContextLogger(rt.Logger, ctx).Info("ticket scan complete",
		zap.Int("scanned", result.Scanned),
		zap.Int("sent", result.Sent),
		zap.Int("failed", result.Failed),
		zap.Int("filtered", result.Filtered),
		zap.Int("deduplicated", result.Dedupe),
	)
	return nil
}
