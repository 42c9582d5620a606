package ical

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"
)

// ErrParse marks a feed body that is not valid iCalendar syntax.
var ErrParse = errors.New("ical: parse failed")

// Event is a normalized VEVENT. Start and End are UTC; for all-day events
// they sit at midnight. End follows the feed convention: exclusive, the
// checkout day is not blocked.
type Event struct {
	UID     string
	Summary string
	Start   time.Time
	End     time.Time
	RRule   string
	ExDates []time.Time
}

// ParseFeed decodes an iCalendar payload into events. Only VEVENT
// components are considered. Events without a usable DTSTART or DTEND are
// skipped and counted, never fatal; one malformed event must not abort the
// whole import.
func ParseFeed(body []byte) (events []Event, skipped int, err error) {
	if len(body) == 0 {
		return nil, 0, fmt.Errorf("%w: empty body", ErrParse)
	}
	cal, err := ics.ParseCalendar(bytes.NewReader(body))
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrParse, err)
	}

	for _, ve := range cal.Events() {
		ev, ok := parseEvent(ve)
		if !ok {
			skipped++
			continue
		}
		events = append(events, ev)
	}
	return events, skipped, nil
}

func parseEvent(ve *ics.VEvent) (Event, bool) {
	var out Event

	if p := ve.GetProperty(ics.ComponentPropertyUniqueId); p != nil {
		out.UID = p.Value
	}
	if p := ve.GetProperty(ics.ComponentPropertySummary); p != nil {
		out.Summary = p.Value
	}

	start, ok := propTime(ve, ics.ComponentPropertyDtStart)
	if !ok {
		return out, false
	}
	end, ok := propTime(ve, ics.ComponentPropertyDtEnd)
	if !ok {
		return out, false
	}
	out.Start = start
	out.End = end

	if p := ve.GetProperty(ics.ComponentPropertyRrule); p != nil {
		out.RRule = p.Value
	}
	for _, p := range ve.GetProperties(ics.ComponentPropertyExdate) {
		for _, part := range strings.Split(p.Value, ",") {
			if t, err := parseICSTime(strings.TrimSpace(part)); err == nil {
				out.ExDates = append(out.ExDates, t)
			}
		}
	}
	return out, true
}

func propTime(ve *ics.VEvent, name ics.ComponentProperty) (time.Time, bool) {
	p := ve.GetProperty(name)
	if p == nil || p.Value == "" {
		return time.Time{}, false
	}
	t, err := parseICSTime(p.Value)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// parseICSTime handles the three common DTSTART/DTEND shapes: UTC
// date-times, floating date-times, and all-day DATE values. Floating times
// are read as UTC; a vacation-calendar day is date-granular anyway.
func parseICSTime(v string) (time.Time, error) {
	if v == "" {
		return time.Time{}, errors.New("empty time value")
	}
	if strings.HasSuffix(v, "Z") {
		return time.Parse("20060102T150405Z", v)
	}
	if strings.Contains(v, "T") {
		return time.ParseInLocation("20060102T150405", v, time.UTC)
	}
	return time.ParseInLocation("20060102", v, time.UTC)
}
