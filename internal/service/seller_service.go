package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/kursadbilgin/tcxc-automation/internal/domain"
	"github.com/kursadbilgin/tcxc-automation/internal/marketplace"
	"github.com/kursadbilgin/tcxc-automation/internal/observability"
)

const defaultAnnouncementSubject = "New DID Numbers Listed for sale"

type SellerOptions struct {
	Listings []domain.NumberListing
	Subject  string
}

type SellerResult struct {
	Listed        []domain.NumberListing
	ListFailures  int
	Announced     int
	MessageErrors int
}

// SellerService lists numbers for sale and tells every buyer about the
// listings that are not blocked.
type SellerService struct {
	api      marketplace.API
	opts     SellerOptions
	recorder ActionRecorder
	logger   *zap.Logger
}

func NewSellerService(api marketplace.API, opts SellerOptions, recorder ActionRecorder, logger *zap.Logger) (*SellerService, error) {
	if api == nil {
		return nil, fmt.Errorf("marketplace api is required")
	}
	if len(opts.Listings) == 0 {
		return nil, fmt.Errorf("%w: at least one number to list is required", domain.ErrValidation)
	}
	if strings.TrimSpace(opts.Subject) == "" {
		opts.Subject = defaultAnnouncementSubject
	}

	return &SellerService{
		api:      api,
		opts:     opts,
		recorder: recorderOrNop(recorder),
		logger:   loggerOrNop(logger),
	}, nil
}

func (s *SellerService) Run(ctx context.Context) (*SellerResult, error) {
	logger := observability.WithContextLogger(s.logger, ctx)
	result := &SellerResult{}

	var announce []domain.NumberListing
	for _, listing := range s.opts.Listings {
		if _, err := s.api.AddNumber(ctx, listing); err != nil {
			result.ListFailures++
			s.recorder.IncAction(FlowSeller, "list", observability.ResultFailure)
			logger.Error("failed to list number for sale",
				append([]zap.Field{zap.String("number", listing.Number)}, callFields(err)...)...,
			)
			continue
		}

		result.Listed = append(result.Listed, listing)
		s.recorder.IncAction(FlowSeller, "list", observability.ResultSuccess)
		logger.Info("listed number for sale", zap.String("number", listing.Number))

		if listing.Announce() {
			announce = append(announce, listing)
		}
	}

	if len(announce) == 0 {
		logger.Info("no listings to announce")
		return result, nil
	}

	buyers, err := s.api.ListBuyers(ctx)
	if err != nil {
		logger.Error("failed to list buyers", callFields(err)...)
		return result, fmt.Errorf("list buyers: %w", err)
	}

	for _, buyer := range buyers {
		messageID, err := s.api.SendMessage(ctx, marketplace.SideSeller, marketplace.Message{
			RecipientID: buyer.ICustomer.String(),
			Subject:     s.opts.Subject,
			Body:        ComposeAnnouncement(buyer.Login, announce),
		})
		if err != nil {
			result.MessageErrors++
			s.recorder.IncAction(FlowSeller, "announce", observability.ResultFailure)
			logger.Error("failed to send announcement",
				append([]zap.Field{zap.String("buyer", buyer.Login)}, callFields(err)...)...,
			)
			continue
		}

		result.Announced++
		s.recorder.IncAction(FlowSeller, "announce", observability.ResultSuccess)
		logger.Info("sent announcement", zap.String("buyer", buyer.Login), zap.String("messageId", messageID))
	}

	return result, nil
}

// ComposeAnnouncement renders the buyer message for a set of new listings.
func ComposeAnnouncement(login string, listings []domain.NumberListing) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Dear %s,\n\nNew DID numbers are now listed on the marketplace:\n\n", login)
	for _, l := range listings {
		fmt.Fprintf(&b, "Number: %s\nPrice: %s\nInterval: %s\nMonthly Fee: %s\nSetup Fee: %s\nDID Type: %s\n",
			l.Number, l.Price, l.Interval, l.MonthlyFee, l.SetupFee, l.DIDType)
		fmt.Fprintf(&b, "Voice: %s\nSMS: %s\nSMPP Price: %s\nCapacity: %s\nStatus: %s\n\n",
			l.Voice, l.SMS, l.SMPPPrice, l.Capacity, l.Status)
	}
	b.WriteString("Best Regards,\n")
	return b.String()
}
