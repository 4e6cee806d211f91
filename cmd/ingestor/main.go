package main

import (
	"context"
	"database/sql"
	"flag"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/go-sql-driver/mysql"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"tango/internal/adapters/backend"
	"tango/internal/adapters/observability"
	redisad "tango/internal/adapters/redis"
	"tango/internal/app"
	"tango/internal/shared"
	mysqlrepo "tango/internal/storage/mysql"
)

func main() {
	_ = godotenv.Load()
	cfg := shared.Load()
	workers := flag.Int("workers", cfg.Workers, "concurrent upserts")
	flag.Parse()

	// 1) initialize global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv)
	reg := observability.InitRegistry()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Info().
		Str("base", cfg.BackendBase).
		Int("workers", *workers).
		Msg("ingestor starting")

	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("sql.Open failed")
	}
	defer db.Close()
	if err := db.PingContext(ctx); err != nil {
		log.Fatal().Err(err).Msg("db.Ping failed")
	}
	log.Info().Msg("db ping ok")

	client, err := backend.New(cfg.BackendBase, cfg.BackendKey, cfg.BackendRPS)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize backend client")
	}
	cache := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	defer cache.Close()

	ing := app.NewIngestionService(client, mysqlrepo.New(db), cache)
	rep, err := ing.SyncCatalog(ctx, *workers)

	// the process exits right after the run, so metrics are pushed instead of scraped
	if perr := observability.Push(context.Background(), cfg.PushGateway, "tango_ingestor", reg); perr != nil {
		log.Warn().Err(perr).Msg("metrics push failed")
	}
	if err != nil {
		log.Error().Err(err).Str("run", rep.RunID).Int("failed", rep.Failed).Msg("ingestion finished with errors")
		stop()
		os.Exit(1)
	}
	log.Info().Str("run", rep.RunID).Int("upserted", rep.Upserted).Int64("pruned", rep.Pruned).Msg("ingestion completed")
}
