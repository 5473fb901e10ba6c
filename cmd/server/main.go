package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"paybook/internal/audit"
	"paybook/internal/ledger"
	"paybook/internal/platform/config"
	"paybook/internal/platform/httpserver"
	"paybook/internal/platform/logger"
	"paybook/internal/platform/metrics"
	"paybook/internal/platform/postgres"
	"paybook/internal/platform/redis"
)

// main wires storage, the audit pipeline and the domain services, then runs
// the HTTP server until a signal arrives. Business logic lives in the
// internal packages.
func main() {
	ingestFile := flag.String("ingest", "", "ingest a bank report file and exit")
	ingestPeriod := flag.String("period", "", "settlement period for -ingest, YYYYMM (default: current)")
	operator := flag.String("operator", "importer", "operator recorded on -ingest postings")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := config.FromEnv()
	log := logger.New()

	var db *sql.DB
	if cfg.DatabaseURL != "" {
		var err error
		db, err = postgres.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Error("open postgres", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		if err := postgres.Migrate(ctx, db); err != nil {
			log.Error("migrate schema", "error", err)
			os.Exit(1)
		}
	} else {
		log.Warn("no DATABASE_URL configured, using in-memory stores")
	}

	var st *stores
	if db != nil {
		st = postgresStores(db)
	} else {
		st = memoryStores()
	}

	// Audit pipeline: services hand events to the worker over a channel;
	// Kafka mirrors them when brokers are configured. One-shot ingest runs
	// without the worker, so it appends synchronously.
	inbox := make(chan audit.Event, 256)
	var publisher audit.Emitter = audit.NewChannelPublisher(inbox)
	if *ingestFile != "" {
		publisher = audit.NewPublisher(st.audit)
	}
	worker := audit.NewWorker(st.audit, inbox, log)
	if len(cfg.KafkaBrokers) > 0 {
		sink, err := audit.NewKafkaSink(cfg.KafkaBrokers, cfg.AuditTopic)
		if err != nil {
			log.Error("connect kafka audit sink", "error", err)
			os.Exit(1)
		}
		defer sink.Close()
		publisher = &audit.Tee{Primary: publisher, Secondary: sink}
	}

	var cache *ledger.PeriodCache
	if cfg.RedisURL != "" {
		client, err := redis.New(ctx, cfg.RedisURL)
		if err != nil {
			log.Error("connect redis", "error", err)
			os.Exit(1)
		}
		defer client.Close()
		cache = ledger.NewPeriodCache(client, config.PeriodTotalCacheTTL)
	}

	svcs, err := buildServices(ctx, st, publisher, cache, metrics.New(), log)
	if err != nil {
		log.Error("build services", "error", err)
		os.Exit(1)
	}
	log.Info("registry ready",
		"postgres", db != nil,
		"redis", cache != nil,
		"kafka", len(cfg.KafkaBrokers) > 0,
	)

	// One-shot mode: ingest a report file instead of serving.
	if *ingestFile != "" {
		failed, err := runIngest(ctx, svcs.reports, log, *ingestFile, *ingestPeriod, *operator)
		if err != nil {
			log.Error("ingest report", "error", err)
			os.Exit(1)
		}
		if failed > 0 {
			os.Exit(2)
		}
		return
	}

	srv := httpserver.New(cfg.Addr, httpserver.NewRouter(db))

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return worker.Run(ctx)
	})
	g.Go(func() error {
		log.Info("server listening", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		log.Error("server exited", "error", err)
		os.Exit(1)
	}
	log.Info("server stopped")
}
