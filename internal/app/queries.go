package app

import (
	"context"
	"fmt"
	"time"

	"holydeo/internal/domain"
	"holydeo/internal/ical"
)

// DefaultWindowDays is how far ahead a calendar read looks when the caller
// gives no explicit window.
const DefaultWindowDays = 365

type QueryService struct {
	repo     domain.CalendarRepository
	cache    domain.Cache
	cacheTTL time.Duration
}

func NewQueryService(r domain.CalendarRepository, c domain.Cache, ttl time.Duration) *QueryService {
	return &QueryService{repo: r, cache: c, cacheTTL: ttl}
}

// GetCalendar returns the classified calendar of one property for the
// [from, to] window (ISO date strings; empty means today .. today+365d).
func (s *QueryService) GetCalendar(ctx context.Context, propertyID int64, fromStr, toStr string) (domain.Calendar, error) {
	from, to, err := resolveWindow(fromStr, toStr)
	if err != nil {
		return nil, err
	}

	key := calendarKey(propertyID, from, to)
	var cached domain.Calendar
	if ok, _ := s.cache.Get(ctx, key, &cached); ok {
		return cached, nil
	}

	cal, err := s.buildCalendar(ctx, propertyID, from, to)
	if err != nil {
		return nil, err
	}
	_ = s.cache.Set(ctx, key, cal, s.cacheTTL)
	return cal, nil
}

func (s *QueryService) buildCalendar(ctx context.Context, propertyID int64, from, to time.Time) (domain.Calendar, error) {
	bookings, err := s.repo.ListApprovedBookings(ctx, propertyID, from, to)
	if err != nil {
		return nil, err
	}
	blocks, err := s.repo.ListBlockedDates(ctx, propertyID, from, to)
	if err != nil {
		return nil, err
	}
	prices, err := s.repo.ListSpecialPrices(ctx, propertyID, from, to)
	if err != nil {
		return nil, err
	}
	return BuildCalendar(bookings, blocks, prices)
}

// ExportFeed renders the property's full blocked-date and special-price
// set as an iCalendar document for external subscribers. Export reads a
// wide fixed window rather than the caller's view window so a subscribed
// calendar sees everything.
func (s *QueryService) ExportFeed(ctx context.Context, propertyID int64) (string, error) {
	if _, err := s.repo.GetProperty(ctx, propertyID); err != nil {
		return "", err
	}
	from := domain.Midnight(time.Now()).AddDate(-1, 0, 0)
	to := from.AddDate(3, 0, 0)
	blocks, err := s.repo.ListBlockedDates(ctx, propertyID, from, to)
	if err != nil {
		return "", err
	}
	prices, err := s.repo.ListSpecialPrices(ctx, propertyID, from, to)
	if err != nil {
		return "", err
	}
	return ical.Export(propertyID, blocks, prices), nil
}

func (s *QueryService) GetProperty(ctx context.Context, id int64) (domain.Property, error) {
	return s.repo.GetProperty(ctx, id)
}

func resolveWindow(fromStr, toStr string) (time.Time, time.Time, error) {
	today := domain.Midnight(time.Now())
	from, to := today, today.AddDate(0, 0, DefaultWindowDays)
	var err error
	if fromStr != "" {
		if from, err = domain.ParseDate(fromStr); err != nil {
			return time.Time{}, time.Time{}, err
		}
	}
	if toStr != "" {
		if to, err = domain.ParseDate(toStr); err != nil {
			return time.Time{}, time.Time{}, err
		}
	}
	if to.Before(from) {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: %s..%s", domain.ErrInvalidRange, domain.FormatDate(from), domain.FormatDate(to))
	}
	return from, to, nil
}

func calendarKey(propertyID int64, from, to time.Time) string {
	return fmt.Sprintf("calendar:%d:%s:%s", propertyID, domain.FormatDate(from), domain.FormatDate(to))
}
