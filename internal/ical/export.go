package ical

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"sort"
	"time"

	ics "github.com/arran4/golang-ical"

	"holydeo/internal/domain"
)

// Summaries for exported block events. Manual blocks and imported blocks
// are distinguishable in the consumer's calendar.
const (
	SummaryUnavailable = "Unavailable"
	SummaryBlocked     = "Blocked"
)

// Export serializes a property's blocked dates and special prices into an
// iCalendar document. Each blocked date becomes a one-day all-day event
// spanning [date, date+1d); each special price becomes a descriptive event
// that the import path does not interpret.
//
// Event UIDs are derived from the property and the date, so re-exporting
// an unchanged calendar yields the same identifiers and feed consumers
// treat it as a no-op.
func Export(propertyID int64, blocks []domain.BlockedDate, prices []domain.SpecialPrice) string {
	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//holydeo//availability calendar//EN")

	sorted := append([]domain.BlockedDate(nil), blocks...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Date.Before(sorted[j].Date) })

	for _, b := range sorted {
		day := domain.Midnight(b.Date)
		ev := cal.AddEvent(eventUID("block", propertyID, day))
		ev.SetAllDayStartAt(day)
		ev.SetAllDayEndAt(day.AddDate(0, 0, 1))
		if b.Source == domain.SourceManual {
			ev.SetSummary(SummaryUnavailable)
		} else {
			ev.SetSummary(SummaryBlocked)
		}
		ev.SetDtStampTime(day)
	}

	sortedPrices := append([]domain.SpecialPrice(nil), prices...)
	sort.Slice(sortedPrices, func(i, j int) bool { return sortedPrices[i].Date.Before(sortedPrices[j].Date) })

	for _, p := range sortedPrices {
		day := domain.Midnight(p.Date)
		ev := cal.AddEvent(eventUID("price", propertyID, day))
		ev.SetAllDayStartAt(day)
		ev.SetAllDayEndAt(day.AddDate(0, 0, 1))
		ev.SetSummary(fmt.Sprintf("Special price: %.2f", p.Price))
		ev.SetDescription(fmt.Sprintf("Nightly price override of %.2f for %s", p.Price, domain.FormatDate(day)))
		ev.SetDtStampTime(day)
	}

	return cal.Serialize()
}

func eventUID(kind string, propertyID int64, day time.Time) string {
	sum := sha1.Sum([]byte(fmt.Sprintf("%s:%d:%s", kind, propertyID, domain.FormatDate(day))))
	return hex.EncodeToString(sum[:]) + "@holydeo"
}
