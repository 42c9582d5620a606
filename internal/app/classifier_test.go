package app_test

import (
	"errors"
	"testing"
	"time"

	"holydeo/internal/app"
	"holydeo/internal/domain"
)

func day(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := domain.ParseDate(s)
	if err != nil {
		t.Fatalf("ParseDate(%q): %v", s, err)
	}
	return d
}

func TestBuildCalendar_BookingExpandsInclusive(t *testing.T) {
	cal, err := app.BuildCalendar([]domain.Booking{
		{ID: 1, PropertyID: 7, StartDate: day(t, "2024-06-10"), EndDate: day(t, "2024-06-12"), Status: domain.BookingApproved},
	}, nil, nil)
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	// both endpoints occupied
	for _, d := range []string{"2024-06-10", "2024-06-11", "2024-06-12"} {
		if cal[d].Type != domain.DayBooking {
			t.Fatalf("%s: expected booking, got %q", d, cal[d].Type)
		}
	}
	if _, ok := cal["2024-06-13"]; ok {
		t.Fatalf("day after checkout must not appear")
	}
	if _, ok := cal["2024-06-09"]; ok {
		t.Fatalf("day before checkin must not appear")
	}
}

func TestBuildCalendar_SingleDayBooking(t *testing.T) {
	cal, err := app.BuildCalendar([]domain.Booking{
		{ID: 1, PropertyID: 7, StartDate: day(t, "2024-06-10"), EndDate: day(t, "2024-06-10"), Status: domain.BookingApproved},
	}, nil, nil)
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if len(cal) != 1 || cal["2024-06-10"].Type != domain.DayBooking {
		t.Fatalf("unexpected calendar: %+v", cal)
	}
}

func TestBuildCalendar_NonApprovedBookingIgnored(t *testing.T) {
	cal, err := app.BuildCalendar([]domain.Booking{
		{ID: 1, PropertyID: 7, StartDate: day(t, "2024-06-10"), EndDate: day(t, "2024-06-12"), Status: "pending"},
	}, nil, nil)
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if len(cal) != 0 {
		t.Fatalf("pending booking must not occupy days: %+v", cal)
	}
}

func TestBuildCalendar_ManualBeatsICal(t *testing.T) {
	blocks := []domain.BlockedDate{
		{PropertyID: 7, Date: day(t, "2024-06-15"), Source: domain.SourceManual},
		{PropertyID: 7, Date: day(t, "2024-06-15"), Source: domain.SourceICal},
	}
	cal, err := app.BuildCalendar(nil, blocks, nil)
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if cal["2024-06-15"].Type != domain.DayManual {
		t.Fatalf("expected manual to win, got %q", cal["2024-06-15"].Type)
	}

	// order must not matter: ical seen first, manual later
	cal, err = app.BuildCalendar(nil, []domain.BlockedDate{blocks[1], blocks[0]}, nil)
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if cal["2024-06-15"].Type != domain.DayManual {
		t.Fatalf("manual must win regardless of input order, got %q", cal["2024-06-15"].Type)
	}
}

func TestBuildCalendar_BookingBeatsBlocks(t *testing.T) {
	cal, err := app.BuildCalendar(
		[]domain.Booking{{ID: 1, PropertyID: 7, StartDate: day(t, "2024-06-15"), EndDate: day(t, "2024-06-15"), Status: domain.BookingApproved}},
		[]domain.BlockedDate{
			{PropertyID: 7, Date: day(t, "2024-06-15"), Source: domain.SourceManual},
			{PropertyID: 7, Date: day(t, "2024-06-15"), Source: domain.SourceICal},
		},
		nil,
	)
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if cal["2024-06-15"].Type != domain.DayBooking {
		t.Fatalf("booking always wins, got %q", cal["2024-06-15"].Type)
	}
}

func TestBuildCalendar_SpecialPriceIndependentOfType(t *testing.T) {
	cal, err := app.BuildCalendar(nil, nil, []domain.SpecialPrice{
		{PropertyID: 7, Date: day(t, "2024-07-01"), Price: 150},
	})
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	got := cal["2024-07-01"]
	if got.Type != "" {
		t.Fatalf("expected null type, got %q", got.Type)
	}
	if got.SpecialPrice == nil || *got.SpecialPrice != 150 {
		t.Fatalf("expected specialPrice 150, got %+v", got)
	}
}

func TestBuildCalendar_SpecialPriceOnBlockedDay(t *testing.T) {
	cal, err := app.BuildCalendar(nil,
		[]domain.BlockedDate{{PropertyID: 7, Date: day(t, "2024-07-01"), Source: domain.SourceICal}},
		[]domain.SpecialPrice{{PropertyID: 7, Date: day(t, "2024-07-01"), Price: 99.5}},
	)
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	got := cal["2024-07-01"]
	if got.Type != domain.DayICal || got.SpecialPrice == nil || *got.SpecialPrice != 99.5 {
		t.Fatalf("price must attach without disturbing the tag: %+v", got)
	}
}

func TestBuildCalendar_InvalidRange(t *testing.T) {
	_, err := app.BuildCalendar([]domain.Booking{
		{ID: 1, PropertyID: 7, StartDate: day(t, "2024-06-12"), EndDate: day(t, "2024-06-10"), Status: domain.BookingApproved},
	}, nil, nil)
	if !errors.Is(err, domain.ErrInvalidRange) {
		t.Fatalf("expected ErrInvalidRange, got %v", err)
	}
}

func TestBuildCalendar_ZeroDateRejected(t *testing.T) {
	_, err := app.BuildCalendar(nil, []domain.BlockedDate{{PropertyID: 7}}, nil)
	if !errors.Is(err, domain.ErrInvalidDate) {
		t.Fatalf("expected ErrInvalidDate, got %v", err)
	}
}

// The worked example: booking 06-10..06-12, manual block 06-15, a later
// ical block on the same 06-15, special price 200 on 06-20.
func TestBuildCalendar_FullScenario(t *testing.T) {
	cal, err := app.BuildCalendar(
		[]domain.Booking{{ID: 9, PropertyID: 7, StartDate: day(t, "2024-06-10"), EndDate: day(t, "2024-06-12"), Status: domain.BookingApproved}},
		[]domain.BlockedDate{
			{PropertyID: 7, Date: day(t, "2024-06-15"), Source: domain.SourceManual},
			{PropertyID: 7, Date: day(t, "2024-06-15"), Source: domain.SourceICal},
		},
		[]domain.SpecialPrice{{PropertyID: 7, Date: day(t, "2024-06-20"), Price: 200}},
	)
	if err != nil {
		t.Fatalf("err: %v", err)
	}

	for _, d := range []string{"2024-06-10", "2024-06-11", "2024-06-12"} {
		if cal[d].Type != domain.DayBooking {
			t.Fatalf("%s: expected booking, got %q", d, cal[d].Type)
		}
	}
	if cal["2024-06-15"].Type != domain.DayManual {
		t.Fatalf("06-15: expected manual, got %q", cal["2024-06-15"].Type)
	}
	p := cal["2024-06-20"]
	if p.Type != "" || p.SpecialPrice == nil || *p.SpecialPrice != 200 {
		t.Fatalf("06-20: expected {null, 200}, got %+v", p)
	}
	if len(cal) != 5 {
		t.Fatalf("expected exactly 5 annotated days, got %d", len(cal))
	}
}
