package marketplace

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/kursadbilgin/tcxc-automation/internal/domain"
)

const (
	EndpointNumberMarket      = "/number/market"
	EndpointNumberPurchase    = "/number/purchase"
	EndpointSellerDIDAdd      = "/sellers/did/add"
	EndpointSellerBuyersList  = "/sellers/buyers/list"
	EndpointSellerMessageSend = "/sellers/message/send"
	EndpointBuyerMessageSend  = "/buyers/message/send"
	EndpointMarketViewSearch  = "/marketview/search"
	EndpointInterconnect      = "/buyers/interconnect"
	EndpointCallHistory       = "/buyers/callhistory/"
	EndpointPayHistory        = "/sellers/payhistory"
	EndpointSellersList       = "/sellers/list"
	EndpointTestNumbers       = "/buyers/tools/getnumbers"
	EndpointRouteTest         = "/buyers/routetest"
)

// TimeLayout is the marketplace's date_from/date_to format (UTC).
const TimeLayout = "2006-01-02 15:04:05"

// Side selects which account type a message is sent from.
type Side string

const (
	SideBuyer  Side = "buyer"
	SideSeller Side = "seller"
)

func (s Side) messageEndpoint() string {
	if s == SideSeller {
		return EndpointSellerMessageSend
	}
	return EndpointBuyerMessageSend
}

// Purchase buys one listed number and points it at the given routes.
type Purchase struct {
	IDID           string
	BillingAccount string
	Contact        string
	SMPPContact    string
}

// Message is a free-text message to a buyer, vendor or seller id.
type Message struct {
	RecipientID string
	Subject     string
	Body        string
}

// Interconnection accepts a market view offer on behalf of an account.
type Interconnection struct {
	IAccount    string
	IConnection string
}

// CallHistoryQuery filters call detail records by time range and quality flag.
type CallHistoryQuery struct {
	Show string
	From time.Time
	To   time.Time
}

// PayHistoryQuery filters payout transactions by date range.
type PayHistoryQuery struct {
	From  string
	To    string
	Pager int
}

func (c *Client) SearchNumbers(ctx context.Context, filter Payload) ([]domain.DID, error) {
	resp, err := c.Call(ctx, Request{Endpoint: EndpointNumberMarket, Payload: filter})
	if err != nil {
		return nil, err
	}

	var body struct {
		DIDs []domain.DID `json:"dids"`
	}
	if err := resp.Decode(&body); err != nil {
		return nil, asMalformed(EndpointNumberMarket, err)
	}
	return body.DIDs, nil
}

func (c *Client) PurchaseNumber(ctx context.Context, p Purchase) (*Response, error) {
	if strings.TrimSpace(p.IDID) == "" {
		return nil, fmt.Errorf("%w: i_did is required", domain.ErrValidation)
	}
	return c.Call(ctx, Request{
		Endpoint: EndpointNumberPurchase,
		Payload: Payload{
			"i_did":             p.IDID,
			"billing_i_account": p.BillingAccount,
			"contact":           p.Contact,
			"smpp_contact":      p.SMPPContact,
		},
	})
}

func (c *Client) AddNumber(ctx context.Context, listing domain.NumberListing) (*Response, error) {
	if err := listing.Validate(); err != nil {
		return nil, err
	}
	return c.Call(ctx, Request{
		Endpoint: EndpointSellerDIDAdd,
		Payload: Payload{
			"number":      listing.Number,
			"price_1":     listing.Price,
			"interval_1":  listing.Interval,
			"monthly_fee": listing.MonthlyFee,
			"setup_fee":   listing.SetupFee,
			"did_type":    listing.DIDType,
			"voice":       listing.Voice,
			"sms":         listing.SMS,
			"smpp_price":  listing.SMPPPrice,
			"capacity":    listing.Capacity,
			"status":      listing.Status,
			"parent":      listing.Parent,
		},
	})
}

func (c *Client) ListBuyers(ctx context.Context) ([]domain.Buyer, error) {
	resp, err := c.Call(ctx, Request{Endpoint: EndpointSellerBuyersList})
	if err != nil {
		return nil, err
	}

	var body struct {
		Buyers []domain.Buyer `json:"buyers"`
	}
	if err := resp.Decode(&body); err != nil {
		return nil, asMalformed(EndpointSellerBuyersList, err)
	}
	return body.Buyers, nil
}

// SendMessage returns the marketplace message id (i_message) when provided.
func (c *Client) SendMessage(ctx context.Context, side Side, msg Message) (string, error) {
	if strings.TrimSpace(msg.RecipientID) == "" {
		return "", fmt.Errorf("%w: message recipient id is required", domain.ErrValidation)
	}
	resp, err := c.Call(ctx, Request{
		Endpoint: side.messageEndpoint(),
		Payload: Payload{
			"id":      msg.RecipientID,
			"subject": msg.Subject,
			"message": msg.Body,
		},
	})
	if err != nil {
		return "", err
	}
	return resp.String("i_message"), nil
}

func (c *Client) SearchMarketView(ctx context.Context, filter Payload) ([]domain.Rate, error) {
	resp, err := c.Call(ctx, Request{Endpoint: EndpointMarketViewSearch, Payload: filter})
	if err != nil {
		return nil, err
	}

	var body struct {
		Rates []domain.Rate `json:"rates"`
	}
	if err := resp.Decode(&body); err != nil {
		return nil, asMalformed(EndpointMarketViewSearch, err)
	}
	return body.Rates, nil
}

func (c *Client) Interconnect(ctx context.Context, ic Interconnection) (*Response, error) {
	if strings.TrimSpace(ic.IConnection) == "" {
		return nil, fmt.Errorf("%w: i_connection is required", domain.ErrValidation)
	}
	return c.Call(ctx, Request{
		Endpoint: EndpointInterconnect,
		Payload: Payload{
			"add":       "1",
			"i_account": ic.IAccount,
			"agree":     "yes",
			"id":        ic.IConnection,
		},
	})
}

func (c *Client) CallHistory(ctx context.Context, q CallHistoryQuery) ([]domain.CDR, error) {
	show := q.Show
	if show == "" {
		show = "bad"
	}
	resp, err := c.Call(ctx, Request{
		Endpoint: EndpointCallHistory,
		Payload: Payload{
			"show":      show,
			"date_from": q.From.UTC().Format(TimeLayout),
			"date_to":   q.To.UTC().Format(TimeLayout),
		},
	})
	if err != nil {
		return nil, err
	}

	var body struct {
		CDRs []domain.CDR `json:"cdrs"`
	}
	if err := resp.Decode(&body); err != nil {
		return nil, asMalformed(EndpointCallHistory, err)
	}
	return body.CDRs, nil
}

func (c *Client) PayHistory(ctx context.Context, q PayHistoryQuery) ([]domain.Transaction, error) {
	payload := Payload{
		"date_from": q.From,
		"date_to":   q.To,
	}
	if q.Pager > 0 {
		payload["pager"] = q.Pager
	}

	resp, err := c.Call(ctx, Request{Endpoint: EndpointPayHistory, Payload: payload})
	if err != nil {
		return nil, err
	}

	var body struct {
		Transactions []domain.Transaction `json:"transactions"`
	}
	if err := resp.Decode(&body); err != nil {
		return nil, asMalformed(EndpointPayHistory, err)
	}
	return body.Transactions, nil
}

func (c *Client) ListSellers(ctx context.Context, pager int, offset int) ([]domain.Seller, error) {
	resp, err := c.Call(ctx, Request{
		Endpoint: EndpointSellersList,
		Payload:  Payload{"pager": pager, "off": offset},
	})
	if err != nil {
		return nil, err
	}

	var body struct {
		Routes []domain.Seller `json:"routes"`
	}
	if err := resp.Decode(&body); err != nil {
		return nil, asMalformed(EndpointSellersList, err)
	}
	return body.Routes, nil
}

func (c *Client) GetTestNumbers(ctx context.Context, country string, description string) ([]domain.TestNumber, error) {
	resp, err := c.Call(ctx, Request{
		Endpoint: EndpointTestNumbers,
		Method:   http.MethodGet,
		Payload:  Payload{"country": country, "description": description},
	})
	if err != nil {
		return nil, err
	}

	var body struct {
		Numbers []domain.TestNumber `json:"cdrs"`
	}
	if err := resp.Decode(&body); err != nil {
		return nil, asMalformed(EndpointTestNumbers, err)
	}
	return body.Numbers, nil
}

// RouteTest starts a two-leg test call and returns the platform's status text.
func (c *Client) RouteTest(ctx context.Context, test domain.RouteTest) (string, error) {
	if err := test.Validate(); err != nil {
		return "", err
	}
	resp, err := c.Call(ctx, Request{
		Endpoint: EndpointRouteTest,
		Payload: Payload{
			"i_account":     test.IAccount,
			"cld1":          test.CLD1,
			"cli1":          test.CLI1,
			"i_connection1": test.IConnection,
			"cld2":          test.CLD2,
			"cli2":          test.CLI2,
			"i_connection2": test.IConnection,
		},
	})
	if err != nil {
		return "", err
	}
	return resp.String("status_text"), nil
}
