package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/Simplici0/logicalc/internal/config"
	"github.com/Simplici0/logicalc/internal/db"
	"github.com/Simplici0/logicalc/internal/history"
	"github.com/Simplici0/logicalc/internal/logger"
	"github.com/Simplici0/logicalc/internal/metrics"
	"github.com/Simplici0/logicalc/internal/migrations"
	"github.com/Simplici0/logicalc/internal/seed"
	"github.com/Simplici0/logicalc/internal/simulation"
	"github.com/Simplici0/logicalc/internal/store/redisstore"
	"github.com/Simplici0/logicalc/internal/store/sqlstore"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "logicalc: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log, err := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	defer log.Sync()

	for _, w := range cfg.Warnings() {
		log.Warn(w, nil)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	database, dialect, err := db.Open(cfg.Database.Driver, cfg.Database.Source(), db.Options{
		MaxOpenConns:    cfg.Database.MaxConnections,
		ConnMaxIdleTime: cfg.Database.ConnMaxIdle,
	})
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer database.Close()

	if err := migrations.Up(database, dialect.GooseDialect()); err != nil {
		return fmt.Errorf("run database migrations: %w", err)
	}
	version, err := migrations.Version(database, dialect.GooseDialect())
	if err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	log.Info("database migrated", map[string]interface{}{"dialect": string(dialect), "version": version})

	stats, err := seed.Run(ctx, database, dialect, seed.Config{
		AdminUsername: cfg.Auth.AdminUsername,
		AdminPassword: cfg.Auth.AdminPassword,
		AdminFullName: cfg.Auth.AdminFullName,
	})
	if err != nil {
		return fmt.Errorf("seed database: %w", err)
	}
	log.Info("startup seed complete", map[string]interface{}{"inserts": stats.Inserts})

	repo := sqlstore.New(database, dialect)
	var hist history.Store = repo
	if cfg.History.Backend == config.HistoryBackendRedis {
		client, err := redisstore.NewClient(ctx, redisstore.Options{
			Address:  cfg.Redis.Address,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			return fmt.Errorf("connect redis: %w", err)
		}
		defer client.Close()
		hist = redisstore.NewHistoryStore(client, cfg.History.Key)
	}

	m := metrics.New(prometheus.DefaultRegisterer)
	sim := simulation.New(repo, hist, log, m, simulation.Config{
		Location:    cfg.Report.Location(),
		RecentLimit: cfg.Report.RecentLimit,
	})

	srv := &server{
		repo:     repo,
		sim:      sim,
		auth:     newAuthService(repo, cfg.Auth.SessionSecret),
		log:      log,
		metrics:  m,
		gatherer: prometheus.DefaultGatherer,
		health:   pingDB(database),
	}

	httpServer := &http.Server{
		Addr:              ":" + cfg.App.Port,
		Handler:           srv.routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("listening", map[string]interface{}{
			"addr":            httpServer.Addr,
			"db_driver":       cfg.Database.Driver,
			"history_backend": cfg.History.Backend,
		})
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server stopped: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	log.Info("shutting down", nil)
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func pingDB(database *sql.DB) func(context.Context) error {
	return func(ctx context.Context) error {
		return database.PingContext(ctx)
	}
}
