package domain

import (
	"fmt"
	"strings"
)

// Credentials authenticate every marketplace call (API login + API key).
type Credentials struct {
	Username string
	Password string
}

func (c Credentials) Validate() error {
	if strings.TrimSpace(c.Username) == "" {
		return fmt.Errorf("%w: api username is required", ErrValidation)
	}
	if strings.TrimSpace(c.Password) == "" {
		return fmt.Errorf("%w: api key is required", ErrValidation)
	}
	return nil
}
