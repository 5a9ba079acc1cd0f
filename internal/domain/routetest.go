package domain

import (
	"fmt"
	"strings"
)

// RouteTest is a two-leg test call placed through a single seller route.
type RouteTest struct {
	IAccount    string
	IConnection string
	CLD1        string
	CLI1        string
	CLD2        string
	CLI2        string
}

func (r *RouteTest) Validate() error {
	r.IAccount = strings.TrimSpace(r.IAccount)
	r.IConnection = strings.TrimSpace(r.IConnection)
	r.CLD1 = strings.TrimSpace(r.CLD1)
	r.CLD2 = strings.TrimSpace(r.CLD2)
	r.CLI1 = strings.TrimSpace(r.CLI1)
	r.CLI2 = strings.TrimSpace(r.CLI2)

	if !IsNumeric(r.IConnection) {
		return fmt.Errorf("%w: i_connection %q must be numeric", ErrValidation, r.IConnection)
	}
	if !IsNumeric(r.IAccount) {
		return fmt.Errorf("%w: i_account %q must be numeric", ErrValidation, r.IAccount)
	}
	if !IsNumeric(r.CLI1) || !IsNumeric(r.CLI2) {
		return fmt.Errorf("%w: caller ids must be numeric (cli1=%q cli2=%q)", ErrValidation, r.CLI1, r.CLI2)
	}
	if r.CLD1 == "" || r.CLD2 == "" {
		return fmt.Errorf("%w: both test numbers are required", ErrValidation)
	}
	return nil
}
