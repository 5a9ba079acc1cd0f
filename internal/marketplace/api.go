package marketplace

import (
	"context"

	"github.com/kursadbilgin/tcxc-automation/internal/domain"
)

// API is the marketplace surface used by the automation flows.
type API interface {
	SearchNumbers(ctx context.Context, filter Payload) ([]domain.DID, error)
	PurchaseNumber(ctx context.Context, p Purchase) (*Response, error)
	AddNumber(ctx context.Context, listing domain.NumberListing) (*Response, error)
	ListBuyers(ctx context.Context) ([]domain.Buyer, error)
	SendMessage(ctx context.Context, side Side, msg Message) (string, error)
	SearchMarketView(ctx context.Context, filter Payload) ([]domain.Rate, error)
	Interconnect(ctx context.Context, ic Interconnection) (*Response, error)
	CallHistory(ctx context.Context, q CallHistoryQuery) ([]domain.CDR, error)
	PayHistory(ctx context.Context, q PayHistoryQuery) ([]domain.Transaction, error)
	ListSellers(ctx context.Context, pager int, offset int) ([]domain.Seller, error)
	GetTestNumbers(ctx context.Context, country string, description string) ([]domain.TestNumber, error)
	RouteTest(ctx context.Context, test domain.RouteTest) (string, error)
}

var _ API = (*Client)(nil)
