package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kursadbilgin/tcxc-automation/internal/app/bootstrap"
	"github.com/kursadbilgin/tcxc-automation/internal/config"
	"github.com/kursadbilgin/tcxc-automation/internal/handler"
	"github.com/kursadbilgin/tcxc-automation/internal/observability"
	"github.com/kursadbilgin/tcxc-automation/internal/service"
	"github.com/kursadbilgin/tcxc-automation/internal/transport"
)

const freshnessIntervals = 3

func main() {
	os.Exit(run())
}

func run() int {
	ctx, rt, err := bootstrap.NewRuntime("ticketd")
	if err != nil {
		log.Printf("startup failed: %v", err)
		return 1
	}
	defer rt.Close()

	return rt.Finish(ctx, serve(ctx, rt))
}

func serve(ctx context.Context, rt *bootstrap.Runtime) error {
	cfg, err := config.LoadInto[config.DaemonConfig]()
	if err != nil {
		return err
	}

	tickets, checks, err := rt.NewTicketService(ctx)
	if err != nil {
		return err
	}

	scanner, err := service.NewTicketScanner(tickets, cfg.ScanInterval, rt.Metrics, rt.Logger)
	if err != nil {
		return err
	}
	checks["ticket_scan"] = handler.ScanFreshnessCheck(scanner.LastSuccess, freshnessIntervals*cfg.ScanInterval, time.Now(), nil)

	app := newApp(rt.Logger, rt.Metrics, checks)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return scanner.Start(gctx)
	})
	g.Go(func() error {
		addr := fmt.Sprintf(":%d", cfg.APIPort)
		rt.Logger.Info("ticketd listening", zap.String("addr", addr), zap.Duration("scanInterval", cfg.ScanInterval))
		return app.Listen(addr)
	})
	g.Go(func() error {
		<-gctx.Done()
		rt.Logger.Info("shutting down", zap.Duration("drainTimeout", cfg.DrainTimeout))
		return app.ShutdownWithTimeout(cfg.DrainTimeout)
	})

	if err := g.Wait(); err != nil {
		return err
	}
	observability.WithContextLogger(rt.Logger, ctx).Info("ticketd stopped")
	return nil
}

func newApp(logger *zap.Logger, metrics *observability.Metrics, checks map[string]handler.ReadinessCheck) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "ticketd",
		DisableStartupMessage: true,
		ErrorHandler:          transport.ErrorHandler(logger),
	})
	app.Use(metrics.HTTPMiddleware())
	app.Get("/metrics", adaptor.HTTPHandler(metrics.Handler()))
	handler.RegisterHealthRoutes(app, checks)
	return app
}
