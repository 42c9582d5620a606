package app

import (
	"fmt"

	"holydeo/internal/domain"
)

// BuildCalendar merges bookings, blocked dates and special prices into one
// per-day annotation map. It is the single classifier every calendar
// surface renders from; the merge priority is booking > manual > ical and
// a special price attaches independently of the winning tag.
//
// Booking ranges expand inclusively: both the start and the end day count
// as occupied. Feed-imported blocks arrive here already expanded to single
// days with the exclusive-end convention applied at import time; the two
// conventions must not be unified.
func BuildCalendar(bookings []domain.Booking, blocks []domain.BlockedDate, prices []domain.SpecialPrice) (domain.Calendar, error) {
	out := make(domain.Calendar)

	for _, b := range bookings {
		if b.Status != domain.BookingApproved {
			continue
		}
		if b.StartDate.IsZero() || b.EndDate.IsZero() {
			return nil, fmt.Errorf("%w: booking %d has a zero date", domain.ErrInvalidDate, b.ID)
		}
		start := domain.Midnight(b.StartDate)
		end := domain.Midnight(b.EndDate)
		if end.Before(start) {
			return nil, fmt.Errorf("%w: booking %d ends %s before start %s",
				domain.ErrInvalidRange, b.ID, domain.FormatDate(end), domain.FormatDate(start))
		}
		for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
			key := domain.FormatDate(d)
			day := out[key]
			day.Type = domain.DayBooking
			out[key] = day
		}
	}

	for _, bl := range blocks {
		if bl.Date.IsZero() {
			return nil, fmt.Errorf("%w: blocked date for property %d", domain.ErrInvalidDate, bl.PropertyID)
		}
		key := domain.FormatDate(bl.Date)
		day := out[key]
		switch day.Type {
		case domain.DayBooking:
			// a booked day stays booked regardless of blocks
		case domain.DayManual:
			// a manual block is never downgraded by an ical block
		default:
			if bl.Source == domain.SourceManual {
				day.Type = domain.DayManual
			} else {
				day.Type = domain.DayICal
			}
			out[key] = day
		}
	}

	for _, p := range prices {
		if p.Date.IsZero() {
			return nil, fmt.Errorf("%w: special price for property %d", domain.ErrInvalidDate, p.PropertyID)
		}
		key := domain.FormatDate(p.Date)
		day := out[key]
		price := p.Price
		day.SpecialPrice = &price
		out[key] = day
	}

	return out, nil
}
