package models

import (
	"time"

	"github.com/google/uuid"
)

// DateLayout is the calendar-date format used by every date column.
// Zero-padded ISO dates compare correctly as strings.
const DateLayout = "2006-01-02"

// ParseDate validates an ISO calendar date.
func ParseDate(s string) (time.Time, error) {
	return time.Parse(DateLayout, s)
}

// Today returns the local calendar date as an ISO string.
func Today() string {
	return time.Now().Format(DateLayout)
}

func newID(id *string) {
	if *id == "" {
		*id = uuid.NewString()
	}
}
