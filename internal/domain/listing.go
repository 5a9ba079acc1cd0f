package domain

import (
	"fmt"
	"strings"
)

// ListingStatusBlocked listings are put up for sale but never announced to buyers.
const ListingStatusBlocked = "blocked"

// NumberListing describes a number a seller puts up for sale.
type NumberListing struct {
	Number     string
	Price      string
	Interval   string
	MonthlyFee string
	SetupFee   string
	DIDType    string
	Voice      string
	SMS        string
	SMPPPrice  string
	Capacity   string
	Status     string
	Parent     string
}

func (l NumberListing) Validate() error {
	if strings.TrimSpace(l.Number) == "" {
		return fmt.Errorf("%w: number is required", ErrValidation)
	}
	if !IsNumeric(l.Number) {
		return fmt.Errorf("%w: number %q must be numeric", ErrValidation, l.Number)
	}
	return nil
}

// Announce reports whether buyers should be told about this listing.
func (l NumberListing) Announce() bool {
	return !strings.EqualFold(strings.TrimSpace(l.Status), ListingStatusBlocked)
}

// IsNumeric reports whether s is a non-empty run of ASCII digits.
func IsNumeric(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
