package service

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kursadbilgin/tcxc-automation/internal/dedup"
	"github.com/kursadbilgin/tcxc-automation/internal/domain"
	"github.com/kursadbilgin/tcxc-automation/internal/marketplace"
	"github.com/kursadbilgin/tcxc-automation/internal/observability"
)

const (
	defaultTicketLookback = 30 * time.Minute
	ticketIDLength        = 10
	ticketIDAlphabet      = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

type TicketOptions struct {
	Lookback time.Duration
	Show     string
	Reasons  domain.ReasonSet
}

type TicketResult struct {
	Scanned  int
	Sent     int
	Failed   int
	Filtered int
	Dedupe   int
}

// TicketService raises a trouble ticket with the vendor of every failed call
// whose disconnect reason is in the configured set. With a dedup store each
// call is ticketed at most once across runs.
type TicketService struct {
	api      marketplace.API
	store    dedup.Store
	opts     TicketOptions
	recorder ActionRecorder
	logger   *zap.Logger
	now      func() time.Time
	randIntn func(n int) int
}

// NewTicketService builds the service. A nil store disables deduplication.
func NewTicketService(api marketplace.API, store dedup.Store, opts TicketOptions, recorder ActionRecorder, logger *zap.Logger) (*TicketService, error) {
	if api == nil {
		return nil, fmt.Errorf("marketplace api is required")
	}
	if opts.Lookback <= 0 {
		opts.Lookback = defaultTicketLookback
	}
	if len(opts.Reasons) == 0 {
		opts.Reasons = domain.NewReasonSet(domain.DefaultDisconnectReasons...)
	}

	return &TicketService{
		api:      api,
		store:    store,
		opts:     opts,
		recorder: recorderOrNop(recorder),
		logger:   loggerOrNop(logger),
		now:      time.Now,
		randIntn: rand.IntN,
	}, nil
}

// ShouldTicket reports whether cdr warrants a ticket: its reason is in the set
// and, when deduplicating, its key has not been recorded.
func (s *TicketService) ShouldTicket(ctx context.Context, cdr domain.CDR) (bool, error) {
	if !s.opts.Reasons.Contains(cdr.DisconnectReason) {
		return false, nil
	}
	if s.store == nil {
		return true, nil
	}

	seen, err := s.store.Seen(ctx, cdr.NotificationKey())
	if err != nil {
		return false, fmt.Errorf("check sent log: %w", err)
	}
	return !seen, nil
}

func (s *TicketService) Run(ctx context.Context) (*TicketResult, error) {
	logger := observability.WithContextLogger(s.logger, ctx)

	to := s.now().UTC()
	from := to.Add(-s.opts.Lookback)
	cdrs, err := s.api.CallHistory(ctx, marketplace.CallHistoryQuery{Show: s.opts.Show, From: from, To: to})
	if err != nil {
		logger.Error("call history request failed", callFields(err)...)
		return nil, fmt.Errorf("call history: %w", err)
	}

	result := &TicketResult{Scanned: len(cdrs)}
	for _, cdr := range cdrs {
		key := cdr.NotificationKey()
		fields := []zap.Field{
			zap.String("key", key.String()),
			zap.String("vendor", cdr.IVendor.String()),
			zap.String("destination", cdr.CLD),
			zap.String("disconnectReason", cdr.DisconnectReason),
		}

		should, err := s.ShouldTicket(ctx, cdr)
		if err != nil {
			return result, err
		}
		if !should {
			if s.opts.Reasons.Contains(cdr.DisconnectReason) {
				result.Dedupe++
				logger.Debug("ticket already sent", fields...)
			} else {
				result.Filtered++
			}
			continue
		}

		claimed, err := s.claim(ctx, key)
		if err != nil {
			return result, err
		}
		if !claimed {
			result.Dedupe++
			logger.Debug("ticket claimed by another run", fields...)
			continue
		}

		ticketID := s.ticketID()
		_, sendErr := s.api.SendMessage(ctx, marketplace.SideBuyer, marketplace.Message{
			RecipientID: cdr.IVendor.String(),
			Subject:     fmt.Sprintf("Trouble Ticket #%s: Call Failure to Destination: %s", ticketID, cdr.CLD),
			Body:        ComposeTicket(cdr),
		})

		if err := s.record(ctx, key); err != nil {
			return result, err
		}

		fields = append(fields, zap.String("ticket", ticketID))
		if sendErr != nil {
			result.Failed++
			s.recorder.IncAction(FlowTicket, "ticket", observability.ResultFailure)
			logger.Error("failed to send trouble ticket", append(fields, callFields(sendErr)...)...)
			continue
		}

		result.Sent++
		s.recorder.IncAction(FlowTicket, "ticket", observability.ResultSuccess)
		logger.Info("trouble ticket sent", fields...)
	}

	return result, nil
}

// claim reserves key before sending when the store can do so atomically.
// Stores without check-and-set always grant the claim.
func (s *TicketService) claim(ctx context.Context, key domain.NotificationKey) (bool, error) {
	claimer, ok := s.store.(dedup.Claimer)
	if !ok {
		return true, nil
	}
	claimed, err := claimer.Claim(ctx, key)
	if err != nil {
		return false, fmt.Errorf("claim sent log key: %w", err)
	}
	return claimed, nil
}

// record writes key after a send attempt, whatever its outcome. Claimer stores
// already hold the key.
func (s *TicketService) record(ctx context.Context, key domain.NotificationKey) error {
	if s.store == nil {
		return nil
	}
	if _, ok := s.store.(dedup.Claimer); ok {
		return nil
	}
	if err := s.store.Record(ctx, key); err != nil {
		return fmt.Errorf("record sent log key: %w", err)
	}
	return nil
}

func (s *TicketService) ticketID() string {
	var b strings.Builder
	b.Grow(ticketIDLength)
	for i := 0; i < ticketIDLength; i++ {
		b.WriteByte(ticketIDAlphabet[s.randIntn(len(ticketIDAlphabet))])
	}
	return b.String()
}

// ComposeTicket renders the vendor-facing ticket body for a failed call.
func ComposeTicket(cdr domain.CDR) string {
	var b strings.Builder
	b.WriteString("Dear Vendor,\n\n")
	fmt.Fprintf(&b, "A quality of service issue was detected on your route %s. ", cdr.ConnectionName)
	fmt.Fprintf(&b, "The call to destination number %s has failed.\n\n", cdr.CLD)
	b.WriteString("Error Details:\n")
	fmt.Fprintf(&b, "- Disconnect Reason: %s\n", cdr.DisconnectReason)
	fmt.Fprintf(&b, "- Timestamp of Occurrence: %s UTC\n\n", cdr.ConnectTime)
	b.WriteString("Please investigate and resolve this issue as it affects our service delivery.\n\n")
	b.WriteString("Thank you for your cooperation.")
	return b.String()
}
