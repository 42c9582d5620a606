package domain

import (
	"context"
	"time"
)

type CalendarRepository interface {
	// Write paths. UpsertBlockedDate must keep an existing manual row's
	// source untouched when the incoming record is ical.
	UpsertBlockedDate(ctx context.Context, b BlockedDate) error
	DeleteBlockedDate(ctx context.Context, propertyID int64, date time.Time) error
	UpsertSpecialPrice(ctx context.Context, p SpecialPrice) error
	DeleteSpecialPrice(ctx context.Context, propertyID int64, date time.Time) error
	SetFeedURL(ctx context.Context, propertyID int64, url *string) error

	// Read paths. List* windows are inclusive on both ends; bookings are
	// returned when their range overlaps the window at all.
	ListBlockedDates(ctx context.Context, propertyID int64, from, to time.Time) ([]BlockedDate, error)
	ListApprovedBookings(ctx context.Context, propertyID int64, from, to time.Time) ([]Booking, error)
	ListSpecialPrices(ctx context.Context, propertyID int64, from, to time.Time) ([]SpecialPrice, error)
	GetProperty(ctx context.Context, id int64) (Property, error)
	ListSyncableProperties(ctx context.Context) ([]Property, error)
}

type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttl time.Duration) error
	Del(ctx context.Context, key string) error
}

// FeedFetcher retrieves a raw iCalendar payload. Implementations report
// non-2xx and transport failures as errors and never retry on their own;
// the fixed-interval resync is the only retry mechanism.
type FeedFetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}
