package app_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"holydeo/internal/app"
	"holydeo/internal/domain"
)

// countingRepo wraps fakeRepo to observe whether a read hit storage.
type countingRepo struct {
	*fakeRepo
	listCalls int
}

func (c *countingRepo) ListBlockedDates(ctx context.Context, propertyID int64, from, to time.Time) ([]domain.BlockedDate, error) {
	c.listCalls++
	return c.fakeRepo.ListBlockedDates(ctx, propertyID, from, to)
}

func TestGetCalendar_CacheMissThenHit(t *testing.T) {
	repo := &countingRepo{fakeRepo: newFakeRepo()}
	repo.addProperty(7, "")
	repo.bookings = append(repo.bookings, domain.Booking{
		PropertyID: 7,
		StartDate:  mustDay(t, "2024-06-10"),
		EndDate:    mustDay(t, "2024-06-12"),
		Status:     domain.BookingApproved,
	})
	cache := &fakeCache{}
	q := app.NewQueryService(repo, cache, time.Minute)

	first, err := q.GetCalendar(context.Background(), 7, "2024-06-01", "2024-06-30")
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if first["2024-06-11"].Type != domain.DayBooking {
		t.Fatalf("expected booking day, got %+v", first["2024-06-11"])
	}
	if repo.listCalls != 1 {
		t.Fatalf("cold read must hit storage once, got %d", repo.listCalls)
	}

	second, err := q.GetCalendar(context.Background(), 7, "2024-06-01", "2024-06-30")
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if repo.listCalls != 1 {
		t.Fatalf("warm read must be served from cache, storage hit %d times", repo.listCalls)
	}
	if second["2024-06-10"].Type != domain.DayBooking {
		t.Fatalf("cached calendar lost a day: %+v", second)
	}
}

func TestGetCalendar_InvalidWindow(t *testing.T) {
	q := app.NewQueryService(newFakeRepo(), &fakeCache{}, time.Minute)

	if _, err := q.GetCalendar(context.Background(), 7, "2024-06-30", "2024-06-01"); !errors.Is(err, domain.ErrInvalidRange) {
		t.Fatalf("reversed window: expected ErrInvalidRange, got %v", err)
	}
	if _, err := q.GetCalendar(context.Background(), 7, "not-a-date", ""); !errors.Is(err, domain.ErrInvalidDate) {
		t.Fatalf("garbage date: expected ErrInvalidDate, got %v", err)
	}
}

func TestGetCalendar_DefaultWindow(t *testing.T) {
	repo := newFakeRepo()
	repo.addProperty(7, "")
	today := domain.Midnight(time.Now())
	if err := repo.UpsertBlockedDate(context.Background(), domain.BlockedDate{
		PropertyID: 7, Date: today.AddDate(0, 0, 3), Source: domain.SourceManual,
	}); err != nil {
		t.Fatalf("seed: %v", err)
	}
	q := app.NewQueryService(repo, &fakeCache{}, time.Minute)

	cal, err := q.GetCalendar(context.Background(), 7, "", "")
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if cal[domain.FormatDate(today.AddDate(0, 0, 3))].Type != domain.DayManual {
		t.Fatalf("default window must include the near future: %+v", cal)
	}
}

func TestExportFeed_UnknownProperty(t *testing.T) {
	q := app.NewQueryService(newFakeRepo(), &fakeCache{}, time.Minute)
	if _, err := q.ExportFeed(context.Background(), 404); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestExportFeed_IncludesBlocks(t *testing.T) {
	repo := newFakeRepo()
	repo.addProperty(7, "")
	today := domain.Midnight(time.Now())
	if err := repo.UpsertBlockedDate(context.Background(), domain.BlockedDate{
		PropertyID: 7, Date: today.AddDate(0, 0, 10), Source: domain.SourceManual,
	}); err != nil {
		t.Fatalf("seed: %v", err)
	}
	q := app.NewQueryService(repo, &fakeCache{}, time.Minute)

	feed, err := q.ExportFeed(context.Background(), 7)
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if !strings.Contains(feed, "BEGIN:VEVENT") || !strings.Contains(feed, "SUMMARY:Unavailable") {
		t.Fatalf("export missing the manual block:\n%s", feed)
	}
}
