package app

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"holydeo/internal/domain"
)

// Resync is what the command service asks of the background scheduler when
// a feed URL is configured or cleared. The scheduler may live in another
// process; a nil Resync just skips the in-process hook.
type Resync interface {
	Schedule(propertyID int64)
	Unschedule(propertyID int64)
}

type CommandService struct {
	repo  domain.CalendarRepository
	cache domain.Cache
	sched Resync
}

func NewCommandService(r domain.CalendarRepository, c domain.Cache, sched Resync) *CommandService {
	return &CommandService{repo: r, cache: c, sched: sched}
}

// BlockDate records a manual block for one day. Blocking a day that is
// already ical-blocked promotes it to manual, so a later import can no
// longer release it.
func (s *CommandService) BlockDate(ctx context.Context, propertyID int64, dateStr string) error {
	date, err := domain.ParseDate(dateStr)
	if err != nil {
		return err
	}
	if err := s.repo.UpsertBlockedDate(ctx, domain.BlockedDate{
		PropertyID: propertyID,
		Date:       date,
		Source:     domain.SourceManual,
	}); err != nil {
		return err
	}
	s.invalidateCalendar(ctx, propertyID)
	return nil
}

func (s *CommandService) UnblockDate(ctx context.Context, propertyID int64, dateStr string) error {
	date, err := domain.ParseDate(dateStr)
	if err != nil {
		return err
	}
	if err := s.repo.DeleteBlockedDate(ctx, propertyID, date); err != nil {
		return err
	}
	s.invalidateCalendar(ctx, propertyID)
	return nil
}

// SetSpecialPrice upserts a per-day price override. Last write wins; no
// history is kept.
func (s *CommandService) SetSpecialPrice(ctx context.Context, propertyID int64, dateStr string, price float64) error {
	date, err := domain.ParseDate(dateStr)
	if err != nil {
		return err
	}
	if price <= 0 {
		return fmt.Errorf("%w: %v", domain.ErrInvalidPrice, price)
	}
	if err := s.repo.UpsertSpecialPrice(ctx, domain.SpecialPrice{
		PropertyID: propertyID,
		Date:       date,
		Price:      price,
	}); err != nil {
		return err
	}
	s.invalidateCalendar(ctx, propertyID)
	return nil
}

func (s *CommandService) RemoveSpecialPrice(ctx context.Context, propertyID int64, dateStr string) error {
	date, err := domain.ParseDate(dateStr)
	if err != nil {
		return err
	}
	if err := s.repo.DeleteSpecialPrice(ctx, propertyID, date); err != nil {
		return err
	}
	s.invalidateCalendar(ctx, propertyID)
	return nil
}

// SetFeedURL configures the external iCal feed for a property and arms the
// recurring resync for it.
func (s *CommandService) SetFeedURL(ctx context.Context, propertyID int64, feedURL string) error {
	u, err := url.Parse(feedURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: must be absolute http(s), got %q", domain.ErrInvalidFeedURL, feedURL)
	}
	if err := s.repo.SetFeedURL(ctx, propertyID, &feedURL); err != nil {
		return err
	}
	if s.sched != nil {
		s.sched.Schedule(propertyID)
	}
	return nil
}

// ClearFeedURL removes the feed configuration and tears the resync down.
// Already-imported blocked dates stay until unblocked explicitly.
func (s *CommandService) ClearFeedURL(ctx context.Context, propertyID int64) error {
	if err := s.repo.SetFeedURL(ctx, propertyID, nil); err != nil {
		return err
	}
	if s.sched != nil {
		s.sched.Unschedule(propertyID)
	}
	return nil
}

// invalidateCalendar drops the cached default-window read, the variant
// every dashboard hits. Explicit windows age out via TTL.
func (s *CommandService) invalidateCalendar(ctx context.Context, propertyID int64) {
	if s.cache == nil {
		return
	}
	today := domain.Midnight(time.Now())
	_ = s.cache.Del(ctx, calendarKey(propertyID, today, today.AddDate(0, 0, DefaultWindowDays)))
}
