package domain

import (
	"fmt"
	"strings"
)

// NotificationKey identifies an already-raised ticket: {callId}-{destination}-{vendorId}.
type NotificationKey string

func NewNotificationKey(callID, destination, vendorID string) NotificationKey {
	return NotificationKey(fmt.Sprintf("%s-%s-%s", callID, destination, vendorID))
}

func (k NotificationKey) String() string { return string(k) }

// DefaultDisconnectReasons are the release causes that warrant a trouble ticket.
var DefaultDisconnectReasons = []string{
	"Service or option not available",
	"unspecified",
	"timeout",
	"Internetworking, unspecified",
	"Bearer capability not authorized",
}

// ReasonSet is a fixed set of disconnect reasons matched by exact string.
type ReasonSet map[string]struct{}

func NewReasonSet(reasons ...string) ReasonSet {
	set := make(ReasonSet, len(reasons))
	for _, reason := range reasons {
		set[reason] = struct{}{}
	}
	return set
}

// ParseReasonSet splits a '|' separated list. Reasons themselves contain
// commas, so commas are not separators.
func ParseReasonSet(raw string) ReasonSet {
	if strings.TrimSpace(raw) == "" {
		return NewReasonSet(DefaultDisconnectReasons...)
	}

	parts := strings.Split(raw, "|")
	reasons := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			reasons = append(reasons, trimmed)
		}
	}
	return NewReasonSet(reasons...)
}

func (s ReasonSet) Contains(reason string) bool {
	_, ok := s[reason]
	return ok
}
