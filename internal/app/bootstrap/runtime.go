package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/kursadbilgin/tcxc-automation/internal/config"
	infraredis "github.com/kursadbilgin/tcxc-automation/internal/infra/redis"
	"github.com/kursadbilgin/tcxc-automation/internal/marketplace"
	"github.com/kursadbilgin/tcxc-automation/internal/observability"
)

const (
	pushTimeout = 5 * time.Second
	pacerPrefix = "tcxc:pace"
)

// Runtime holds what every tool needs: config, logger, metrics and a
// marketplace client wired to them.
type Runtime struct {
	Tool        string
	Config      *config.Config
	Logger      *zap.Logger
	Metrics     *observability.Metrics
	Marketplace *marketplace.Client

	stop    context.CancelFunc
	closers []func()
}

// NewRuntime loads .env and the shared config, then builds the logger and the
// marketplace client. The returned context is cancelled on SIGINT/SIGTERM and
// carries a fresh run id.
func NewRuntime(tool string) (context.Context, *Runtime, error) {
	if err := config.LoadDotEnv(os.Getenv("ENV_FILE"), nil); err != nil {
		return nil, nil, err
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}

	logger, err := observability.NewLogger(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	logger = logger.With(zap.String("tool", tool))

	metrics := observability.NewMetrics()

	client, err := marketplace.NewClient(cfg.BaseURL, cfg.Credentials(), cfg.HTTPTimeout)
	if err != nil {
		_ = logger.Sync()
		return nil, nil, fmt.Errorf("failed to initialize marketplace client: %w", err)
	}
	client.SetObserver(metrics)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	ctx, runID := observability.NewRun(ctx)

	rt := &Runtime{
		Tool:        tool,
		Config:      cfg,
		Logger:      logger,
		Metrics:     metrics,
		Marketplace: client,
		stop:        stop,
	}
	if err := rt.enablePacing(ctx); err != nil {
		rt.Close()
		return nil, nil, err
	}

	observability.WithContextLogger(logger, ctx).Info("tool started", zap.String("runId", runID))
	return ctx, rt, nil
}

func (r *Runtime) enablePacing(ctx context.Context) error {
	if r.Config.RateLimit <= 0 {
		return nil
	}
	if r.Config.RedisURL == "" {
		r.Logger.Warn("MARKETPLACE_RATE_LIMIT set without REDIS_URL, calls are not paced")
		return nil
	}

	rdb, err := infraredis.NewRedis(ctx, r.Config.RedisURL)
	if err != nil {
		return fmt.Errorf("redis initialization failed: %w", err)
	}
	r.OnClose(func() { _ = rdb.Close() })

	pacer, err := infraredis.NewCallPacer(rdb, r.Config.RateLimit, pacerPrefix)
	if err != nil {
		return err
	}
	r.Marketplace.SetPacer(pacer)
	r.Logger.Info("marketplace calls paced", zap.Int("perSecond", r.Config.RateLimit))
	return nil
}

// OnClose registers fn to run on Close, in reverse order.
func (r *Runtime) OnClose(fn func()) {
	r.closers = append(r.closers, fn)
}

func (r *Runtime) Close() {
	for i := len(r.closers) - 1; i >= 0; i-- {
		r.closers[i]()
	}
	if r.stop != nil {
		r.stop()
	}
	_ = r.Logger.Sync()
}

// Finish logs the run outcome, pushes metrics when a Pushgateway is
// configured, and returns the process exit code.
func (r *Runtime) Finish(ctx context.Context, runErr error) int {
	logger := observability.WithContextLogger(r.Logger, ctx)

	pushCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), pushTimeout)
	defer cancel()
	if err := r.Metrics.Push(pushCtx, r.Config.PushgatewayURL, r.Tool); err != nil {
		logger.Warn("metrics push failed", zap.Error(err))
	}

	switch {
	case runErr == nil:
		logger.Info("tool finished")
		return 0
	case errors.Is(runErr, context.Canceled):
		logger.Warn("tool interrupted")
		return 130
	default:
		logger.Error("tool failed", zap.Error(runErr))
		return 1
	}
}
