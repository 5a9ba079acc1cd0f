package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cast"
)

// Amount is a marketplace price or fee. The API sends these either as JSON
// numbers or as numeric strings; null, empty and absent values decode to 0.
type Amount float64

func (a Amount) Float64() float64 { return float64(a) }

func (a Amount) String() string {
	return cast.ToString(float64(a))
}

func (a *Amount) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*a = 0
		return nil
	}

	raw := string(trimmed)
	if trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return err
		}
		raw = strings.TrimSpace(s)
		if raw == "" {
			*a = 0
			return nil
		}
	}

	value, err := cast.ToFloat64E(raw)
	if err != nil {
		return fmt.Errorf("%w: invalid amount %q", ErrValidation, raw)
	}
	*a = Amount(value)
	return nil
}

// ID is an opaque marketplace identifier (i_did, i_vendor, call_id...). The API
// is inconsistent about quoting them, so both numbers and strings are accepted.
type ID string

func (id ID) String() string { return string(id) }

func (id *ID) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*id = ""
		return nil
	}

	if trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(trimmed, &n); err != nil {
		return fmt.Errorf("%w: invalid id %s", ErrValidation, string(trimmed))
	}
	*id = ID(n.String())
	return nil
}
