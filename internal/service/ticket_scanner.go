package service

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/kursadbilgin/tcxc-automation/internal/observability"
)

const defaultTicketScanInterval = 5 * time.Minute

// TicketRunner is one trouble-ticket pass. *TicketService satisfies it.
type TicketRunner interface {
	Run(ctx context.Context) (*TicketResult, error)
}

// ScanObserver is told when scans start and finish.
type ScanObserver interface {
	ScanStarted()
	ScanFinished(at time.Time)
}

// TicketScanner periodically runs trouble-ticket scans. Scans never overlap.
type TicketScanner struct {
	tickets  TicketRunner
	observer ScanObserver
	logger   *zap.Logger
	interval time.Duration
	now      func() time.Time

	lastSuccess atomic.Int64
}

func NewTicketScanner(
	tickets TicketRunner,
	interval time.Duration,
	observer ScanObserver,
	logger *zap.Logger,
) (*TicketScanner, error) {
	if tickets == nil {
		return nil, fmt.Errorf("ticket runner is required")
	}
	if interval <= 0 {
		interval = defaultTicketScanInterval
	}

	return &TicketScanner{
		tickets:  tickets,
		observer: observer,
		logger:   loggerOrNop(logger),
		interval: interval,
		now:      time.Now,
	}, nil
}

func (s *TicketScanner) Start(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	if err := s.scan(ctx); err != nil && ctx.Err() == nil {
		s.logger.Error("initial ticket scan failed", zap.Error(err))
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := s.scan(ctx); err != nil {
				if ctx.Err() != nil {
					return nil
				}
				s.logger.Error("ticket scan failed", zap.Error(err))
			}
		}
	}
}

// LastSuccess is the completion time of the last scan that returned no
// error, or the zero time.
func (s *TicketScanner) LastSuccess() time.Time {
	nanos := s.lastSuccess.Load()
	if nanos == 0 {
		return time.Time{}
	}
	return time.Unix(0, nanos)
}

func (s *TicketScanner) scan(ctx context.Context) error {
	runCtx, runID := observability.NewRun(ctx)
	logger := s.logger.With(zap.String("runId", runID))

	if s.observer != nil {
		s.observer.ScanStarted()
	}
	result, err := s.tickets.Run(runCtx)
	finished := s.now()
	if s.observer != nil {
		s.observer.ScanFinished(finished)
	}
	if err != nil {
		return fmt.Errorf("run %s: %w", runID, err)
	}

	s.lastSuccess.Store(finished.UnixNano())
	logger.Info("ticket scan finished",
		zap.Int("scanned", result.Scanned),
		zap.Int("sent", result.Sent),
		zap.Int("failed", result.Failed),
		zap.Int("deduplicated", result.Dedupe),
	)
	return nil
}
