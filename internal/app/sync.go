package app

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"holydeo/internal/adapters/observability"
	"holydeo/internal/domain"
	"holydeo/internal/ical"
)

// SyncReport summarizes one import run for a property.
type SyncReport struct {
	PropertyID int64 `json:"propertyId"`
	Imported   int   `json:"imported"` // blocked dates upserted
	Skipped    int   `json:"skipped"`  // events missing DTSTART/DTEND
	Failed     int   `json:"failed"`   // per-date write failures
}

// SyncService runs the feed import pipeline: fetch, parse, expand, upsert.
type SyncService struct {
	fetcher domain.FeedFetcher
	repo    domain.CalendarRepository
	cache   domain.Cache
	horizon time.Duration // how far ahead recurring events are expanded
}

func NewSyncService(f domain.FeedFetcher, r domain.CalendarRepository, cache domain.Cache, horizon time.Duration) *SyncService {
	if horizon <= 0 {
		horizon = 2 * 365 * 24 * time.Hour
	}
	return &SyncService{fetcher: f, repo: r, cache: cache, horizon: horizon}
}

// SyncProperty imports the property's configured feed once. Fetch and
// parse failures abort the run with no writes; a single event or a single
// date never aborts the rest of the batch. Import only adds blocked dates,
// it does not remove entries that vanished upstream, and it never converts
// an existing manual block to ical (enforced by the repository upsert).
func (s *SyncService) SyncProperty(ctx context.Context, propertyID int64) (SyncReport, error) {
	report := SyncReport{PropertyID: propertyID}

	p, err := s.repo.GetProperty(ctx, propertyID)
	if err != nil {
		return report, err
	}
	if p.FeedURL == nil || *p.FeedURL == "" {
		return report, domain.ErrNoFeedURL
	}

	body, err := s.fetcher.Fetch(ctx, *p.FeedURL)
	if err != nil {
		observability.ObserveSync("fetch_error", 0)
		return report, err
	}

	events, skipped, err := ical.ParseFeed(body)
	if err != nil {
		observability.ObserveSync("parse_error", 0)
		return report, err
	}
	report.Skipped = skipped

	windowStart := domain.Midnight(time.Now())
	windowEnd := windowStart.Add(s.horizon)

	// Union of all events' days; several events may cover the same date
	// and one upsert per date is enough.
	days := make(map[time.Time]struct{})
	for _, ev := range events {
		for _, d := range ical.BlockedDays(ev, windowStart, windowEnd) {
			days[d] = struct{}{}
		}
	}

	for d := range days {
		err := s.repo.UpsertBlockedDate(ctx, domain.BlockedDate{
			PropertyID: propertyID,
			Date:       d,
			Source:     domain.SourceICal,
		})
		if err != nil {
			// Each date is its own atomic unit; keep going.
			report.Failed++
			log.Warn().Int64("property", propertyID).
				Str("date", domain.FormatDate(d)).Err(err).
				Msg("blocked date upsert failed")
			continue
		}
		report.Imported++
	}

	s.invalidateCalendar(ctx, propertyID)

	if report.Failed > 0 {
		observability.ObserveSync("partial", report.Imported)
	} else {
		observability.ObserveSync("ok", report.Imported)
	}
	log.Info().Int64("property", propertyID).
		Int("imported", report.Imported).
		Int("skipped", report.Skipped).
		Int("failed", report.Failed).
		Msg("feed sync completed")
	return report, nil
}

// SyncAll imports every property that has a feed configured. Per-property
// failures are logged and counted, not fatal to the sweep.
func (s *SyncService) SyncAll(ctx context.Context) error {
	props, err := s.repo.ListSyncableProperties(ctx)
	if err != nil {
		return err
	}
	var failures int
	for _, p := range props {
		if _, err := s.SyncProperty(ctx, p.ID); err != nil {
			failures++
			log.Warn().Int64("property", p.ID).Err(err).Msg("sync failed")
		}
	}
	if failures > 0 {
		return fmt.Errorf("sync failed for %d of %d properties", failures, len(props))
	}
	return nil
}

func (s *SyncService) invalidateCalendar(ctx context.Context, propertyID int64) {
	if s.cache == nil {
		return
	}
	today := domain.Midnight(time.Now())
	_ = s.cache.Del(ctx, calendarKey(propertyID, today, today.AddDate(0, 0, DefaultWindowDays)))
}
