package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	glog "github.com/goliatone/go-logger/glog"
	persistence "github.com/goliatone/go-persistence-bun"
	repositorycache "github.com/goliatone/go-repository-cache/cache"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/uptrace/bun/schema"

	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"

	"github.com/goliatone/fleet-alerts/alerts"
	"github.com/goliatone/fleet-alerts/alerts/telegram"
	"github.com/goliatone/fleet-alerts/command"
	"github.com/goliatone/fleet-alerts/core"
	"github.com/goliatone/fleet-alerts/ingest"
	"github.com/goliatone/fleet-alerts/migrations"
	"github.com/goliatone/fleet-alerts/query"
	sqlstore "github.com/goliatone/fleet-alerts/store/sql"
	"github.com/goliatone/fleet-alerts/transport"
	"github.com/goliatone/fleet-alerts/units"
	"github.com/goliatone/fleet-alerts/webhooks"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "fleet-alerts:", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	provider, logger := glog.Resolve("fleet-alerts", nil, nil)

	cfg, err := core.NewCfgxConfigProvider(envConfigLoader{}).Load(ctx, core.DefaultConfig())
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	client, err := openPersistence(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	store, err := sqlstore.NewEventStoreFromPersistence(client)
	if err != nil {
		return fmt.Errorf("event store: %w", err)
	}

	cacheService, err := repositorycache.NewCacheService(repositorycache.DefaultConfig())
	if err != nil {
		return fmt.Errorf("cache service: %w", err)
	}

	resolver, err := buildResolver(cfg, cacheService, provider, logger)
	if err != nil {
		return err
	}

	notifier, err := buildNotifier(cfg, logger)
	if err != nil {
		return err
	}

	dispatcher := alerts.NewDispatcher(resolver, provider.GetLogger("fleet-alerts.alerts"))
	scheduler := alerts.NewScheduler(notifier, provider.GetLogger("fleet-alerts.alerts"),
		alerts.WithSendTimeout(cfg.Telegram.SendTimeout),
	)

	pipeline, err := ingest.New(
		webhooks.NewMotiveWebhookTemplate(cfg.Webhook.Secret),
		store,
		resolver,
		dispatcher,
		scheduler,
		provider.GetLogger("fleet-alerts.ingest"),
	)
	if err != nil {
		scheduler.Close()
		return fmt.Errorf("ingestion pipeline: %w", err)
	}

	router, err := transport.NewRouter(
		cfg.ServiceName,
		command.NewProcessDeliveryCommand(pipeline),
		query.NewListRecentEventsQuery(store),
		cfg.Dashboard,
		provider.GetLogger("fleet-alerts.http"),
	)
	if err != nil {
		scheduler.Close()
		return fmt.Errorf("http router: %w", err)
	}

	server := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      router.Handler(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- server.ListenAndServe()
	}()
	logger.Info("server listening", "addr", cfg.Server.Addr, "driver", cfg.Storage.Driver)

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-serverErr:
		scheduler.Close()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("http shutdown failed", "error", err.Error())
	}
	// Drain queued alerts after the HTTP surface stops producing new ones.
	scheduler.Close()
	logger.Info("shutdown complete")
	return nil
}

type persistenceConfig struct {
	cfg core.Config
}

func (p persistenceConfig) GetDebug() bool { return false }

func (p persistenceConfig) GetDriver() string { return p.cfg.Storage.Driver }

func (p persistenceConfig) GetServer() string { return p.cfg.Storage.DSN }

func (p persistenceConfig) GetPingTimeout() time.Duration { return 5 * time.Second }

func (p persistenceConfig) GetOtelIdentifier() string { return p.cfg.ServiceName }

func openPersistence(ctx context.Context, cfg core.Config) (*persistence.Client, error) {
	var dialect schema.Dialect
	var migrationDialect string
	switch cfg.Storage.Driver {
	case "sqlite3":
		dialect = sqlitedialect.New()
		migrationDialect = migrations.DialectSQLite
	case "postgres":
		dialect = pgdialect.New()
		migrationDialect = migrations.DialectPostgres
	default:
		return nil, fmt.Errorf("unsupported storage driver %q", cfg.Storage.Driver)
	}

	sqlDB, err := sql.Open(cfg.Storage.Driver, cfg.Storage.DSN)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if cfg.Storage.Driver == "sqlite3" {
		sqlDB.SetMaxOpenConns(1)
	}

	client, err := persistence.New(persistenceConfig{cfg: cfg}, sqlDB, dialect)
	if err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("persistence client: %w", err)
	}

	err = migrations.Register(ctx, migrationDialect, func(_ context.Context, _ string, _ string, fsys fs.FS) error {
		client.RegisterSQLMigrations(fsys)
		return nil
	})
	if err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("register migrations: %w", err)
	}
	if err := client.Migrate(ctx); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("apply migrations: %w", err)
	}
	return client, nil
}

func buildResolver(cfg core.Config, cacheService repositorycache.CacheService, provider glog.LoggerProvider, logger glog.Logger) (core.UnitResolver, error) {
	var directory units.Directory
	if cfg.Directory.BaseURL != "" {
		fleetDirectory, err := units.NewFleetDirectory(units.DirectoryConfig{
			BaseURL:        cfg.Directory.BaseURL,
			APIKey:         cfg.Directory.APIKey,
			RequestTimeout: cfg.Directory.RequestTimeout,
		})
		if err != nil {
			return nil, fmt.Errorf("fleet directory: %w", err)
		}
		directory = fleetDirectory
	} else {
		logger.Warn("directory base url not configured, unit labels will be unresolved")
	}
	resolver, err := units.NewResolver(directory, cacheService, provider.GetLogger("fleet-alerts.units"))
	if err != nil {
		return nil, fmt.Errorf("unit resolver: %w", err)
	}
	return resolver, nil
}

func buildNotifier(cfg core.Config, logger glog.Logger) (core.Notifier, error) {
	if cfg.Telegram.BotToken == "" {
		logger.Warn("telegram bot token not configured, alert delivery disabled")
		return nil, nil
	}
	notifier, err := telegram.New(cfg.Telegram)
	if err != nil {
		return nil, fmt.Errorf("telegram notifier: %w", err)
	}
	return notifier, nil
}
