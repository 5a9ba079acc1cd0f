package bootstrap

import (
	"context"

	"go.uber.org/zap"

	"github.com/kursadbilgin/tcxc-automation/internal/config"
	"github.com/kursadbilgin/tcxc-automation/internal/dedup"
	"github.com/kursadbilgin/tcxc-automation/internal/handler"
	"github.com/kursadbilgin/tcxc-automation/internal/service"
)

// NewTicketService wires the trouble-ticket flow shared by trouble-ticket and
// ticketd. With TICKET_DEDUP off no store is opened.
func (r *Runtime) NewTicketService(ctx context.Context) (*service.TicketService, map[string]handler.ReadinessCheck, error) {
	ticketCfg, err := config.LoadInto[config.TicketConfig]()
	if err != nil {
		return nil, nil, err
	}

	var store dedup.Store
	checks := map[string]handler.ReadinessCheck{}
	if ticketCfg.Dedup {
		dedupCfg, err := config.LoadInto[config.DedupConfig]()
		if err != nil {
			return nil, nil, err
		}
		store, checks, err = r.OpenDedupStore(ctx, dedupCfg)
		if err != nil {
			return nil, nil, err
		}
		r.Logger.Info("dedup store ready", zap.String("backend", dedupCfg.Backend))
	} else {
		r.Logger.Warn("ticket dedup disabled, every matching call is ticketed")
	}

	tickets, err := service.NewTicketService(r.Marketplace, store, service.TicketOptions{
		Lookback: ticketCfg.Lookback,
		Show:     ticketCfg.Show,
		Reasons:  ticketCfg.ReasonSet(),
	}, r.Metrics, r.Logger)
	if err != nil {
		return nil, nil, err
	}
	return tickets, checks, nil
}
