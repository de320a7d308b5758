package appointments

import (
	"fmt"
	"strings"
	"time"
)

// Status is the state of an appointment. StatusAny means no status filter.
type Status int

const (
	StatusAny Status = iota
	StatusToday
	StatusPending
	StatusVisited
	StatusCancelled
)

// String returns the wire representation of the status
func (s Status) String() string {
	switch s {
	case StatusToday:
		return "today"
	case StatusPending:
		return "pending"
	case StatusVisited:
		return "visited"
	case StatusCancelled:
		return "cancelled"
	default:
		return ""
	}
}

// ParseStatus parses a string into a Status. The empty string is StatusAny.
func ParseStatus(s string) (Status, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return StatusAny, nil
	case "today":
		return StatusToday, nil
	case "pending":
		return StatusPending, nil
	case "visited":
		return StatusVisited, nil
	case "cancelled", "canceled":
		return StatusCancelled, nil
	default:
		return StatusAny, fmt.Errorf("invalid status: %s (valid: today, pending, visited, cancelled)", s)
	}
}

// Type is the kind of visit. TypeAny means no type filter.
type Type int

const (
	TypeAny Type = iota
	TypeFirstTime
	TypeCheckUp
)

// String returns the wire representation of the type
func (t Type) String() string {
	switch t {
	case TypeFirstTime:
		return "first time"
	case TypeCheckUp:
		return "check up"
	default:
		return ""
	}
}

// ParseType parses a string into a Type. Dashes and underscores are accepted in place of
// the space, so "check-up" works on a command line.
func ParseType(s string) (Type, error) {
	norm := strings.NewReplacer("-", " ", "_", " ").Replace(strings.ToLower(strings.TrimSpace(s)))
	switch norm {
	case "":
		return TypeAny, nil
	case "first time":
		return TypeFirstTime, nil
	case "check up":
		return TypeCheckUp, nil
	default:
		return TypeAny, fmt.Errorf("invalid type: %s (valid: first time, check up)", s)
	}
}

// Filter selects appointments of the calendar.
type Filter struct {
	Status Status
	Type   Type
}

// MonthYear formats t as the MM-YYYY key of the calendar endpoints.
func MonthYear(t time.Time) string {
	return t.Format("01-2006")
}

// Day formats t as the YYYY-MM-DD date of the status endpoints.
func Day(t time.Time) string {
	return t.Format("2006-01-02")
}
