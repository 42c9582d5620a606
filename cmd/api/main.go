package main

import (
	"database/sql"
	"net/http"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"

	feedclient "holydeo/internal/adapters/feed"
	server "holydeo/internal/adapters/http_server"
	"holydeo/internal/adapters/observability"
	redisad "holydeo/internal/adapters/redis"
	"holydeo/internal/app"
	"holydeo/internal/shared"
	mysqlrepo "holydeo/internal/storage/mysql"
)

func main() {
	cfg := shared.Load()

	// set global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv)

	observability.Serve()

	// db
	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("sql.Open failed")
	}
	if err := db.Ping(); err != nil {
		log.Fatal().Err(err).Msg("db.Ping failed")
	}
	log.Info().Msg("database connection ok")

	// deps
	repo := mysqlrepo.New(db)
	cache := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	fetcher := feedclient.New(cfg.FeedRPS)

	q := app.NewQueryService(repo, cache, cfg.CacheTTL)
	sync := app.NewSyncService(fetcher, repo, cache, cfg.SyncHorizon)
	// The recurring resync lives in cmd/syncer; the API only persists feed
	// URLs, which the syncer's reconcile pass picks up within one interval.
	cmds := app.NewCommandService(repo, cache, nil)

	// http
	srv := server.New()
	reg := observability.InitRegistry()
	srv.Mount("/metrics", observability.MetricsHandler(reg))
	srv.MountHandlers(&server.Handlers{Q: q, C: cmds, S: sync})

	log.Info().Str("addr", cfg.HTTPAddr).Msg("API listening")
	httpSrv := &http.Server{Addr: cfg.HTTPAddr, Handler: srv.Mux()}

	if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal().Err(err).Msg("http server failed")
	}
}
