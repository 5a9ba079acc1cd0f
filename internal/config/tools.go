package config

import (
	"time"

	"github.com/kursadbilgin/tcxc-automation/internal/domain"
)

type BuyerConfig struct {
	Prefix         string  `env:"BUYER_PREFIX,default=1954240"`
	Country        string  `env:"BUYER_COUNTRY"`
	Description    string  `env:"BUYER_DESCRIPTION"`
	Seller         string  `env:"BUYER_SELLER"`
	Voice          string  `env:"BUYER_VOICE,default=1"`
	SMS            string  `env:"BUYER_SMS,default=1"`
	Fax            string  `env:"BUYER_FAX,default=0"`
	Video          string  `env:"BUYER_VIDEO,default=0"`
	DIDType        string  `env:"BUYER_DID_TYPE,default=any"`
	Pager          int     `env:"BUYER_PAGER,default=10"`
	Offset         int     `env:"BUYER_OFFSET,default=1"`
	MaxMonthlyFee  float64 `env:"BUYER_MAX_MONTHLY_FEE,default=2.00"`
	MaxSetupFee    float64 `env:"BUYER_MAX_SETUP_FEE,default=2.00"`
	BillingAccount string  `env:"BUYER_BILLING_ACCOUNT,required=true"`
	SIPHost        string  `env:"BUYER_SIP_HOST,default=sip01.telecomsxchange.com:5060"`
	SMPPHost       string  `env:"BUYER_SMPP_HOST,default=smpp01.telecomsxchange.com:2776"`
}

func (c *BuyerConfig) Threshold() domain.FeeThreshold {
	return domain.FeeThreshold{
		{Field: "monthly_fee", Max: c.MaxMonthlyFee},
		{Field: "setup_fee", Max: c.MaxSetupFee},
	}
}

// SearchPayload is the /number/market filter.
func (c *BuyerConfig) SearchPayload() map[string]any {
	return map[string]any{
		"prefix":      c.Prefix,
		"country":     c.Country,
		"description": c.Description,
		"seller":      c.Seller,
		"voice":       c.Voice,
		"sms":         c.SMS,
		"fax":         c.Fax,
		"video":       c.Video,
		"did_type":    c.DIDType,
		"pager":       c.Pager,
		"off":         c.Offset,
	}
}

type SellerConfig struct {
	Numbers    string `env:"SELLER_NUMBERS,required=true"`
	Price      string `env:"SELLER_PRICE,default=0.02"`
	Interval   string `env:"SELLER_INTERVAL,default=60"`
	MonthlyFee string `env:"SELLER_MONTHLY_FEE,default=10"`
	SetupFee   string `env:"SELLER_SETUP_FEE,default=10.00"`
	DIDType    string `env:"SELLER_DID_TYPE,default=mobile"`
	Voice      string `env:"SELLER_VOICE,default=1"`
	SMS        string `env:"SELLER_SMS,default=1"`
	SMPPPrice  string `env:"SELLER_SMPP_PRICE,default=0.01"`
	Capacity   string `env:"SELLER_CAPACITY,default=5"`
	Status     string `env:"SELLER_STATUS,default=idle"`
	Parent     string `env:"SELLER_PARENT,default=international"`
	Subject    string `env:"SELLER_MESSAGE_SUBJECT,default=New DID Numbers Listed for sale"`
}

// Listings expands the configured numbers into one listing each, all sharing
// the configured terms.
func (c *SellerConfig) Listings() []domain.NumberListing {
	numbers := SplitList(c.Numbers)
	listings := make([]domain.NumberListing, 0, len(numbers))
	for _, number := range numbers {
		listings = append(listings, domain.NumberListing{
			Number:     number,
			Price:      c.Price,
			Interval:   c.Interval,
			MonthlyFee: c.MonthlyFee,
			SetupFee:   c.SetupFee,
			DIDType:    c.DIDType,
			Voice:      c.Voice,
			SMS:        c.SMS,
			SMPPPrice:  c.SMPPPrice,
			Capacity:   c.Capacity,
			Status:     c.Status,
			Parent:     c.Parent,
		})
	}
	return listings
}

// SearchConfig is the market view filter shared by carrier-relations and
// routing-strategy.
type SearchConfig struct {
	Prefix    string `env:"SEARCH_PREFIX,default=22797"`
	Seller    string `env:"SEARCH_SELLER"`
	TrunkType string `env:"SEARCH_TYPE,default=ANY"`
	Pager     int    `env:"SEARCH_PAGER,default=100"`
	Offset    int    `env:"SEARCH_OFFSET,default=0"`
}

// Payload is the /marketview/search filter.
func (c *SearchConfig) Payload() map[string]any {
	return map[string]any{
		"prefix":     c.Prefix,
		"searchform": "1",
		"seller":     c.Seller,
		"type":       c.TrunkType,
		"pager":      c.Pager,
		"off":        c.Offset,
	}
}

type CarrierConfig struct {
	IAccount string  `env:"CARRIER_I_ACCOUNT,required=true"`
	MaxPrice float64 `env:"CARRIER_MAX_PRICE,default=0.22"`
}

func (c *CarrierConfig) Threshold() domain.FeeThreshold {
	return domain.FeeThreshold{{Field: "price_1", Max: c.MaxPrice}}
}

type TicketConfig struct {
	Lookback time.Duration `env:"TICKET_LOOKBACK,default=30m"`
	// Reasons is '|' separated; empty selects the default reason list.
	Reasons string `env:"TICKET_REASONS"`
	Show    string `env:"TICKET_SHOW,default=bad"`
	Dedup   bool   `env:"TICKET_DEDUP,default=true"`
}

func (c *TicketConfig) ReasonSet() domain.ReasonSet {
	return domain.ParseReasonSet(c.Reasons)
}

type DedupConfig struct {
	Backend   string `env:"DEDUP_BACKEND,default=file"`
	FilePath  string `env:"DEDUP_FILE,default=sent_messages.txt"`
	RedisURL  string `env:"REDIS_URL"`
	DSN       string `env:"DATABASE_DSN"`
	KeyPrefix string `env:"DEDUP_KEY_PREFIX,default=tcxc:sent"`
}

type RouteTestConfig struct {
	SellerPager  int    `env:"ROUTE_TEST_SELLER_PAGER,default=300"`
	SellerOffset int    `env:"ROUTE_TEST_SELLER_OFFSET,default=0"`
	IAccount     string `env:"ROUTE_TEST_I_ACCOUNT"`
}

type PayoutConfig struct {
	DateFrom string `env:"PAYOUT_DATE_FROM,default=2019-01-01 00:00:00"`
	DateTo   string `env:"PAYOUT_DATE_TO"`
	Pager    int    `env:"PAYOUT_PAGER,default=1000"`
	Sample   int    `env:"PAYOUT_SAMPLE,default=5"`
}

type SummarizerConfig struct {
	Provider        string `env:"SUMMARIZER_PROVIDER,default=openai"`
	OpenAIAPIKey    string `env:"OPENAI_API_KEY"`
	OpenAIModel     string `env:"OPENAI_MODEL,default=gpt-4o-mini"`
	AnthropicAPIKey string `env:"ANTHROPIC_API_KEY"`
	AnthropicModel  string `env:"ANTHROPIC_MODEL,default=claude-3-5-haiku-latest"`
	MaxTokens       int    `env:"SUMMARY_MAX_TOKENS,default=200"`
}

type DaemonConfig struct {
	APIPort      int           `env:"API_PORT,default=8080"`
	ScanInterval time.Duration `env:"TICKET_SCAN_INTERVAL,default=5m"`
	// DrainTimeout bounds fiber shutdown.
	DrainTimeout time.Duration `env:"DRAIN_TIMEOUT,default=10s"`
}
