package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	_ "github.com/go-sql-driver/mysql"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"tango/internal/adapters/backend"
	server "tango/internal/adapters/http_server"
	"tango/internal/adapters/observability"
	redisad "tango/internal/adapters/redis"
	"tango/internal/app"
	"tango/internal/availability"
	"tango/internal/domain"
	"tango/internal/prompt"
	"tango/internal/ranking"
	"tango/internal/shared"
	mysqlrepo "tango/internal/storage/mysql"
)

func main() {
	_ = godotenv.Load()
	cfg := shared.Load()

	// set global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	reg := observability.InitRegistry()
	if _, err := observability.Serve(cfg.MetricsAddr, reg); err != nil {
		log.Fatal().Err(err).Msg("metrics server failed")
	}

	// collaborators
	client, err := backend.New(cfg.BackendBase, cfg.BackendKey, cfg.BackendRPS)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize backend client")
	}
	var source domain.CatalogSource = client
	if cfg.Source == shared.SourceMySQL {
		db, err := sql.Open("mysql", cfg.MySQLDSN)
		if err != nil {
			log.Fatal().Err(err).Msg("sql.Open failed")
		}
		defer db.Close()
		if err := db.PingContext(ctx); err != nil {
			log.Fatal().Err(err).Msg("db.Ping failed")
		}
		log.Info().Msg("database connection ok")
		source = mysqlrepo.New(db)
	}

	cache := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	defer cache.Close()
	if err := cache.Ping(ctx); err != nil {
		log.Warn().Err(err).Str("addr", cfg.RedisAddr).Msg("redis unreachable, serving without cache hits")
	}

	// engine
	loc := cfg.Location()
	ev := availability.NewEvaluator(cfg.Synonyms...)
	catalog := app.NewCatalogService(source, cache, cfg.CacheTTL, ev, ranking.NewRanker(ev, nil), loc)
	assistant := app.NewAssistantService(catalog, client, cache, cfg.CacheTTL, prompt.NewAssembler(ev), time.Now, loc)

	// http
	srv := server.New(cfg.CORSOrigins)
	srv.Mount("/metrics", observability.MetricsHandler(reg))
	srv.MountHandlers(&server.Handlers{Catalog: catalog, Assistant: assistant})

	log.Info().
		Str("addr", cfg.HTTPAddr).
		Str("source", cfg.Source).
		Str("tz", loc.String()).
		Strs("synonyms", ev.Synonyms()).
		Msg("API listening")
	httpSrv := &http.Server{Addr: cfg.HTTPAddr, Handler: srv.Mux(), ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		shutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = httpSrv.Shutdown(shutdown)
	}()

	if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Msg("http server failed")
	}
	log.Info().Msg("API stopped")
}
