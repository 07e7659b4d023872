package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"stikpet/adapters/excel"
	"stikpet/adapters/postgres"
	"stikpet/adapters/stats/catalogue"
	"stikpet/app"
	"stikpet/internal"
	"stikpet/internal/api"
	"stikpet/internal/config"
	"stikpet/internal/errors"
	"stikpet/internal/migration"
	"stikpet/internal/testkit"
	"stikpet/ports"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// initDatabase connects to PostgreSQL and brings the schema up to date
func initDatabase(ctx context.Context, cfg *config.Config, logger *internal.Logger) (*sqlx.DB, error) {
	db, err := sqlx.Connect("postgres", cfg.Database.URL)
	if err != nil {
		return nil, errors.DatabaseError(err, "failed to connect to database")
	}
	if cfg.Database.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, errors.DatabaseError(err, "failed to ping database")
	}

	migrator := migration.NewRunner()
	if cfg.Database.ResetOnBoot {
		logger.Warn("resetting database schema (DB_RESET_ON_BOOT)")
		if err := migrator.Reset(ctx, db); err != nil {
			db.Close()
			return nil, errors.Wrap(err, "database reset failed")
		}
	}
	if err := migrator.Run(ctx, db); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "database migration failed")
	}
	logger.Info("database schema at version %s", migrator.Version())
	return db, nil
}

// opsRouter serves health, metrics and profiling on a separate port
func opsRouter(db *sqlx.DB) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, req *http.Request) {
		if db != nil {
			if err := db.PingContext(req.Context()); err != nil {
				http.Error(w, "database unreachable", http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())
	r.Mount("/debug", middleware.Profiler())
	return r
}

func main() {
	if err := godotenv.Load(); err != nil {
		internal.DefaultLogger.Info("no .env file found, using system environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		internal.DefaultLogger.Error("failed to load configuration: %v", err)
		os.Exit(1)
	}
	logger := internal.NewLogger(internal.ParseLogLevel(cfg.LogLevel)).Named("main")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var (
		repo ports.AnalysisRepository
		db   *sqlx.DB
	)
	if cfg.Database.URL != "" {
		db, err = initDatabase(ctx, cfg, logger)
		if err != nil {
			logger.Error("failed to initialize database: %v", err)
			os.Exit(1)
		}
		defer db.Close()
		repo = postgres.NewAnalysisRepository(db)
	} else {
		logger.Warn("DATABASE_URL not set, analyses are kept in memory")
		repo = testkit.NewInMemoryAnalysisRepository()
	}

	cat := catalogue.New(catalogue.Options{
		KendallExactLimit: cfg.Stats.KendallExactLimit,
		MaxConcurrency:    cfg.Stats.MaxConcurrency,
	})
	service := app.NewAnalysisService(cat, repo, logger, app.AnalysisOptions{
		Alpha:       cfg.Stats.Alpha,
		ReuseCached: db != nil,
	})

	handler := api.NewAnalysisHandler(service, logger, cfg.Stats.Alpha)
	if cfg.Data.File != "" {
		table, err := excel.NewDataReader(cfg.Data.File).Load()
		if err != nil {
			logger.Error("failed to load data file %s: %v", cfg.Data.File, err)
			os.Exit(1)
		}
		logger.Info("loaded %s: %d rows, %d columns", cfg.Data.File, table.Rows(), len(table.Headers()))
		handler.WithReader(table)
	}

	apiServer := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           api.NewRouter(handler, cfg.Server.GinMode),
		ReadHeaderTimeout: 10 * time.Second,
	}
	opsServer := &http.Server{
		Addr:              ":" + cfg.Server.OpsPort,
		Handler:           opsRouter(db),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("ops endpoints on :%s", cfg.Server.OpsPort)
		if err := opsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("ops server failed: %v", err)
		}
	}()
	go func() {
		logger.Info("serving %d procedures on :%s", len(cat.List("")), cfg.Server.Port)
		if err := apiServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("api server failed: %v", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	apiServer.Shutdown(shutdownCtx)
	opsServer.Shutdown(shutdownCtx)
}
