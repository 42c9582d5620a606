package ical

import (
	"time"

	"github.com/rs/zerolog/log"
	"github.com/teambition/rrule-go"

	"holydeo/internal/domain"
)

// Safety cap so a broken RRULE cannot expand without bound.
const maxOccurrencesPerEvent = 5000

// BlockedDays expands one event into the individual days it blocks, using
// the exclusive-end convention: [start, end) walks one day per iteration
// and the end date itself stays free. A zero-length event (DTEND equal to
// DTSTART) blocks the start day only. This is deliberately different from
// the inclusive expansion used for bookings; the two conventions are kept
// apart on purpose.
//
// Recurring events are expanded within [windowStart, windowEnd] with
// EXDATE honored; non-recurring events are taken as-is.
func BlockedDays(ev Event, windowStart, windowEnd time.Time) []time.Time {
	if ev.RRule == "" {
		return spanDays(ev.Start, ev.End)
	}

	r, err := rrule.StrToRRule(ev.RRule)
	if err != nil {
		log.Warn().Str("uid", ev.UID).Str("rrule", ev.RRule).Err(err).
			Msg("skipping unparseable RRULE")
		return spanDays(ev.Start, ev.End)
	}
	r.DTStart(ev.Start)

	var set rrule.Set
	set.RRule(r)
	for _, ex := range ev.ExDates {
		set.ExDate(ex)
	}

	occs := set.Between(windowStart, windowEnd, true)
	if len(occs) > maxOccurrencesPerEvent {
		log.Warn().Str("uid", ev.UID).Int("cap", maxOccurrencesPerEvent).
			Msg("recurrence expansion truncated")
		occs = occs[:maxOccurrencesPerEvent]
	}

	span := nightCount(ev.Start, ev.End)
	var days []time.Time
	for _, occ := range occs {
		start := domain.Midnight(occ)
		for i := 0; i < span; i++ {
			days = append(days, start.AddDate(0, 0, i))
		}
	}
	return days
}

// spanDays returns each day of [start, end) at date granularity.
func spanDays(start, end time.Time) []time.Time {
	start = domain.Midnight(start)
	n := nightCount(start, end)
	days := make([]time.Time, 0, n)
	for i := 0; i < n; i++ {
		days = append(days, start.AddDate(0, 0, i))
	}
	return days
}

// nightCount is the number of blocked days for an exclusive-end span,
// with a floor of one so zero-length events still block their start day.
func nightCount(start, end time.Time) int {
	n := int(domain.Midnight(end).Sub(domain.Midnight(start)).Hours() / 24)
	if n < 1 {
		return 1
	}
	return n
}
