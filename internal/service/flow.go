package service

import (
	"errors"

	"go.uber.org/zap"

	"github.com/kursadbilgin/tcxc-automation/internal/marketplace"
)

// Flow names label logs and metrics.
const (
	FlowBuyer           = "did-buyer"
	FlowSeller          = "did-seller"
	FlowCarrier         = "carrier-relations"
	FlowTicket          = "trouble-ticket"
	FlowRouteTest       = "route-test"
	FlowRoutingStrategy = "routing-strategy"
	FlowPayoutSummary   = "payout-summary"
)

// ActionRecorder counts per-candidate outcomes. *observability.Metrics
// satisfies it.
type ActionRecorder interface {
	IncAction(flow string, action string, result string)
}

type nopRecorder struct{}

func (nopRecorder) IncAction(string, string, string) {}

func recorderOrNop(recorder ActionRecorder) ActionRecorder {
	if recorder == nil {
		return nopRecorder{}
	}
	return recorder
}

func loggerOrNop(logger *zap.Logger) *zap.Logger {
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}

// callFields describes a failed marketplace call for a log line.
func callFields(err error) []zap.Field {
	var mErr *marketplace.Error
	if !errors.As(err, &mErr) {
		return []zap.Field{zap.Error(err)}
	}

	fields := []zap.Field{
		zap.String("endpoint", mErr.Endpoint),
		zap.String("kind", string(mErr.Kind)),
		zap.String("reason", mErr.Reason),
	}
	if mErr.StatusCode != 0 {
		fields = append(fields, zap.Int("statusCode", mErr.StatusCode))
	}
	if mErr.Cause != nil {
		fields = append(fields, zap.NamedError("cause", mErr.Cause))
	}
	return fields
}
