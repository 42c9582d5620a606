package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

// Scheduler owns the recurring feed resync: one cancellable cron entry per
// property, created when a feed URL is set and removed when it is cleared.
// There is never a bare ambient timer; Stop tears everything down.
type Scheduler struct {
	sync     *SyncService
	interval time.Duration
	timeout  time.Duration
	cron     *cron.Cron

	mu      sync.Mutex
	entries map[int64]cron.EntryID
	running map[int64]bool
}

func NewScheduler(s *SyncService, interval time.Duration) *Scheduler {
	if interval <= 0 {
		interval = 20 * time.Minute
	}
	return &Scheduler{
		sync:     s,
		interval: interval,
		timeout:  5 * time.Minute,
		cron:     cron.New(),
		entries:  make(map[int64]cron.EntryID),
		running:  make(map[int64]bool),
	}
}

func (sc *Scheduler) Start() { sc.cron.Start() }

// Stop halts the cron loop and waits for in-flight runs to finish.
func (sc *Scheduler) Stop() { <-sc.cron.Stop().Done() }

// Schedule arms the recurring import for one property. Scheduling an
// already-scheduled property replaces its entry instead of stacking a
// second interval.
func (sc *Scheduler) Schedule(propertyID int64) {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	if old, ok := sc.entries[propertyID]; ok {
		sc.cron.Remove(old)
	}
	id, err := sc.cron.AddFunc(fmt.Sprintf("@every %s", sc.interval), func() {
		sc.runProperty(propertyID)
	})
	if err != nil {
		log.Error().Int64("property", propertyID).Err(err).Msg("schedule resync failed")
		return
	}
	sc.entries[propertyID] = id
	log.Info().Int64("property", propertyID).Dur("every", sc.interval).Msg("resync scheduled")
}

func (sc *Scheduler) Unschedule(propertyID int64) {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	if id, ok := sc.entries[propertyID]; ok {
		sc.cron.Remove(id)
		delete(sc.entries, propertyID)
		log.Info().Int64("property", propertyID).Msg("resync unscheduled")
	}
}

func (sc *Scheduler) Scheduled(propertyID int64) bool {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	_, ok := sc.entries[propertyID]
	return ok
}

// Reconcile aligns the entry set with the properties table: schedules
// properties that gained a feed URL and unschedules ones that lost it.
// Run periodically so a feed configured through another process (the API)
// is picked up within one interval.
func (sc *Scheduler) Reconcile(ctx context.Context) error {
	props, err := sc.sync.repo.ListSyncableProperties(ctx)
	if err != nil {
		return err
	}

	want := make(map[int64]bool, len(props))
	for _, p := range props {
		want[p.ID] = true
		if !sc.Scheduled(p.ID) {
			sc.Schedule(p.ID)
		}
	}

	sc.mu.Lock()
	var stale []int64
	for id := range sc.entries {
		if !want[id] {
			stale = append(stale, id)
		}
	}
	sc.mu.Unlock()
	for _, id := range stale {
		sc.Unschedule(id)
	}
	return nil
}

// runProperty guards against overlapping fires: if the previous run for
// the same property is still in flight, this one is skipped rather than
// stacked. A concurrent manual refresh through the API can still race a
// timer fire; both paths are idempotent upserts so that race is benign.
func (sc *Scheduler) runProperty(propertyID int64) {
	sc.mu.Lock()
	if sc.running[propertyID] {
		sc.mu.Unlock()
		log.Warn().Int64("property", propertyID).Msg("resync still in flight; skipping this fire")
		return
	}
	sc.running[propertyID] = true
	sc.mu.Unlock()

	defer func() {
		sc.mu.Lock()
		delete(sc.running, propertyID)
		sc.mu.Unlock()
	}()

	ctx, cancel := context.WithTimeout(context.Background(), sc.timeout)
	defer cancel()

	if _, err := sc.sync.SyncProperty(ctx, propertyID); err != nil {
		log.Warn().Int64("property", propertyID).Err(err).Msg("scheduled resync failed")
	}
}
