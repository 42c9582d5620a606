package domain

import (
	"fmt"
	"time"
)

// DateLayout is the wire format for all calendar days.
const DateLayout = "2006-01-02"

// BlockSource says who created a blocked date. It is set at write time and
// never inferred from other data.
type BlockSource string

const (
	SourceManual BlockSource = "manual"
	SourceICal   BlockSource = "ical"
)

// DayType is the winning tag for one calendar day. The empty string means
// "no block", which can still carry a special price.
type DayType string

const (
	DayBooking DayType = "booking"
	DayManual  DayType = "manual"
	DayICal    DayType = "ical"
)

// BlockedDate is one unavailable day of a property. Unique per
// (PropertyID, Date).
type BlockedDate struct {
	PropertyID int64
	Date       time.Time // UTC midnight, date-only
	Source     BlockSource
}

// Booking is a reservation owned by the booking workflow; the calendar
// engine only reads it. StartDate..EndDate is inclusive on both ends:
// the checkout day counts as occupied too.
type Booking struct {
	ID         int64
	PropertyID int64
	StartDate  time.Time
	EndDate    time.Time
	Status     string
}

const BookingApproved = "approved"

// SpecialPrice overrides the nightly price for a single day. Last write wins.
type SpecialPrice struct {
	PropertyID int64
	Date       time.Time
	Price      float64
}

// CalendarDay is the derived per-day annotation. Type is empty when no
// booking or block covers the day; SpecialPrice is attached independently.
type CalendarDay struct {
	Type         DayType  `json:"type,omitempty"`
	SpecialPrice *float64 `json:"specialPrice,omitempty"`
}

// Calendar maps ISO date strings (YYYY-MM-DD) to day annotations. A date
// absent from the map is available with no special price.
type Calendar map[string]CalendarDay

// ParseDate parses a YYYY-MM-DD string into a UTC midnight time.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return t.UTC(), nil
}

// FormatDate renders a day as its ISO date string.
func FormatDate(t time.Time) string {
	return t.UTC().Format(DateLayout)
}

// Midnight truncates t to a date-only UTC value. All persisted dates go
// through this so that map keys and DB rows agree.
func Midnight(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
