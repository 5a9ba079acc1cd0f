package domain

import (
	"encoding/json"
	"fmt"
)

// DID is a number offered on the marketplace.
type DID struct {
	IDID        ID     `json:"i_did"`
	Number      string `json:"number"`
	Country     string `json:"country"`
	Description string `json:"description"`
	MonthlyFee  Amount `json:"monthly_fee"`
	SetupFee    Amount `json:"setup_fee"`
	Price       Amount `json:"price_1"`
}

func (d DID) Fee(field string) float64 {
	switch field {
	case "monthly_fee":
		return d.MonthlyFee.Float64()
	case "setup_fee":
		return d.SetupFee.Float64()
	case "price_1":
		return d.Price.Float64()
	}
	return 0
}

// Buyer is a customer subscribed to a seller's listings.
type Buyer struct {
	ICustomer ID     `json:"i_customer"`
	Login     string `json:"login"`
}

// Rate is an interconnection offer returned by the market view.
type Rate struct {
	IConnection    ID     `json:"i_connection"`
	VendorName     string `json:"vendor_name"`
	ConnectionName string `json:"connection_name"`
	Price          Amount `json:"price_1"`
}

func (r Rate) Fee(field string) float64 {
	if field == "price_1" {
		return r.Price.Float64()
	}
	return 0
}

// CDR is one call detail record from the call history.
type CDR struct {
	CallID           ID     `json:"call_id"`
	CLD              string `json:"CLD"`
	IVendor          ID     `json:"i_vendor"`
	ConnectionName   string `json:"connection_name"`
	ConnectTime      string `json:"connect_time"`
	DisconnectReason string `json:"disconnect_reason"`
}

// NotificationKey is the dedup token for a ticket raised against this call.
func (c CDR) NotificationKey() NotificationKey {
	return NewNotificationKey(c.CallID.String(), c.CLD, c.IVendor.String())
}

// Transaction is a seller payout entry. Raw keeps the record as the API sent it.
type Transaction struct {
	Amount Amount
	Raw    json.RawMessage
}

func (t *Transaction) UnmarshalJSON(data []byte) error {
	var fields struct {
		Amount Amount `json:"amount"`
	}
	if err := json.Unmarshal(data, &fields); err != nil {
		return fmt.Errorf("invalid transaction: %w", err)
	}
	t.Amount = fields.Amount
	t.Raw = append(json.RawMessage(nil), data...)
	return nil
}

func (t Transaction) MarshalJSON() ([]byte, error) {
	if len(t.Raw) == 0 {
		return json.Marshal(map[string]Amount{"amount": t.Amount})
	}
	return t.Raw, nil
}

// Seller is a route available for testing.
type Seller struct {
	SellerName  string `json:"seller_name"`
	IConnection ID     `json:"i_connection"`
	RouteName   string `json:"route_name"`
}

// TestNumber is a destination that can be dialled by a route test.
type TestNumber struct {
	CLD         string `json:"CLD"`
	Description string `json:"description"`
	CountryName string `json:"country_name"`
}
