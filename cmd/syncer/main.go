package main

import (
	"context"
	"database/sql"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"

	feedclient "holydeo/internal/adapters/feed"
	"holydeo/internal/adapters/observability"
	redisad "holydeo/internal/adapters/redis"
	"holydeo/internal/app"
	"holydeo/internal/shared"
	mysqlrepo "holydeo/internal/storage/mysql"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg := shared.Load()

	// initialize global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv)

	log.Info().
		Dur("interval", cfg.SyncInterval).
		Int("workers", cfg.Workers).
		Msg("syncer starting")

	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("sql.Open failed")
	}
	if err := db.Ping(); err != nil {
		log.Fatal().Err(err).Msg("db.Ping failed")
	}
	log.Info().Msg("db ping ok")

	repo := mysqlrepo.New(db)
	cache := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	fetcher := feedclient.New(cfg.FeedRPS)
	syncSvc := app.NewSyncService(fetcher, repo, cache, cfg.SyncHorizon)

	// Startup sweep: import every configured feed once, a few properties
	// at a time, before the recurring schedule takes over.
	props, err := repo.ListSyncableProperties(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("listing syncable properties failed")
	}

	sem := semaphore.NewWeighted(int64(cfg.Workers))
	var wg sync.WaitGroup

	for _, p := range props {
		p := p

		// acquire before launching the goroutine; release inside it
		if err := sem.Acquire(ctx, int64(1)); err != nil {
			log.Fatal().Err(err).Msg("semaphore acquire failed")
		}

		wg.Add(1)
		go func(propertyID int64) {
			defer wg.Done()
			defer sem.Release(int64(1))

			report, err := syncSvc.SyncProperty(ctx, propertyID)
			if err != nil {
				log.Warn().Int64("property", propertyID).Err(err).Msg("startup sync failed")
				return
			}
			log.Info().Int64("property", propertyID).Int("imported", report.Imported).Msg("startup sync ok")
		}(p.ID)
	}
	wg.Wait()
	log.Info().Int("properties", len(props)).Msg("startup sweep completed")

	// Recurring resync: one cron entry per property, reconciled against
	// the properties table so feed URLs set or cleared through the API
	// are picked up.
	sched := app.NewScheduler(syncSvc, cfg.SyncInterval)
	if err := sched.Reconcile(ctx); err != nil {
		log.Fatal().Err(err).Msg("initial schedule reconcile failed")
	}
	sched.Start()

	reconcile := time.NewTicker(cfg.SyncInterval)
	defer reconcile.Stop()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	for {
		select {
		case <-reconcile.C:
			if err := sched.Reconcile(ctx); err != nil {
				log.Warn().Err(err).Msg("schedule reconcile failed")
			}
		case sig := <-sigCh:
			log.Info().Str("signal", sig.String()).Msg("shutting down")
			cancel()
			sched.Stop()
			return
		}
	}
}
