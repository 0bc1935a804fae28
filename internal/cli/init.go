// Package cli holds the start-up steps shared by the command-line tools:
// logging, environment and configuration loading, and wiring the store,
// query engine and services together.
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"expensetracker/internal/backend"
	"expensetracker/internal/cache"
	"expensetracker/internal/config"
	"expensetracker/internal/core"
	"expensetracker/internal/log"
	"expensetracker/internal/query"
	"expensetracker/internal/services"
	"expensetracker/internal/taxonomy"
)

// SetupLogger builds the application logger at the given level and installs
// it as the slog default. Unknown levels fall back to info.
func SetupLogger(level string) *log.Logger {
	cfg := log.DefaultConfig()
	if lvl, err := log.ParseLevel(level); err == nil {
		cfg.Level = lvl
	}
	logger := log.New(cfg)
	log.SetDefault(logger)
	return logger
}

// LoadEnvFile loads the .env file for local development.
// Errors are ignored silently as this is optional.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// LoadAndValidateConfig reads the configuration from the environment.
func LoadAndValidateConfig(logger *log.Logger) (*config.Config, error) {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed",
			log.NewFields().WithOperation(log.OpValidate).WithError(err).WithErrorType(log.ErrorTypeConfiguration).ToSlice()...)
		return nil, err
	}
	return cfg, nil
}

// App is the fully wired application.
type App struct {
	Config   *config.Config
	Logger   *log.Logger
	Currency core.Currency
	Taxonomy *taxonomy.Taxonomy
	Engine   *query.Engine
	Expenses *services.ExpenseService
	Reports  *services.ReportService
	Janitor  *cache.Janitor

	cleanup backend.CleanupFunc
}

// Bootstrap opens the configured store and builds the services on top of it.
func Bootstrap(ctx context.Context, cfg *config.Config, logger *log.Logger) (*App, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, fmt.Errorf("load timezone: %w", err)
	}
	weekStart, err := config.ParseWeekday(cfg.WeekStart)
	if err != nil {
		return nil, err
	}

	tx := taxonomy.Default()
	if cfg.TaxonomyDir != "" {
		tx = taxonomy.NewFromFiles(cfg.TaxonomyDir)
		logger.WithComponent(log.ComponentTaxonomy).Debug("Loaded taxonomy",
			log.FieldPath, cfg.TaxonomyDir, "categories", len(tx.Categories()), "modes", len(tx.Modes()))
	}

	engine := query.New(
		query.WithWeekStart(weekStart),
		query.WithLocation(loc),
		query.WithClassifier(tx),
	)

	bcfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return nil, err
	}
	res, err := backend.NewFactory(logger).CreateBackend(ctx, bcfg)
	if err != nil {
		return nil, err
	}

	reportCache := cache.NewLRUCache[core.ReportSummary](cfg.ReportCacheSize, cfg.ReportCacheTTL)
	reports := services.NewReportService(res.Store, engine,
		services.WithReportCache(reportCache),
		services.WithReportLogger(logger),
	)
	expenses := services.NewExpenseService(res.Store, engine,
		services.WithInvalidator(reports),
		services.WithLogger(logger),
	)

	janitor := cache.NewJanitor(logger.Logger.With(log.FieldComponent, log.ComponentCache))
	janitor.Register(reports)

	logger.DebugContext(ctx, "Application wired",
		log.FieldOperation, log.OpStartup, log.FieldBackend, string(bcfg.Type))

	return &App{
		Config:   cfg,
		Logger:   logger,
		Currency: cfg.CurrencyInfo(),
		Taxonomy: tx,
		Engine:   engine,
		Expenses: expenses,
		Reports:  reports,
		Janitor:  janitor,
		cleanup:  res.Cleanup,
	}, nil
}

// Start runs background housekeeping until ctx is done.
func (a *App) Start(ctx context.Context) {
	if a.Config.ReportCacheTTL > 0 {
		go a.Janitor.Run(ctx, a.Config.ReportCacheTTL)
	}
}

func (a *App) Close() error {
	if a.cleanup == nil {
		return nil
	}
	if err := a.cleanup(); err != nil {
		return fmt.Errorf("close store: %w", err)
	}
	return nil
}

// GracefulShutdown returns a context cancelled on SIGINT or SIGTERM.
func GracefulShutdown(logger *log.Logger) (context.Context, context.CancelFunc) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	context.AfterFunc(ctx, func() {
		logger.Debug("Shutting down", log.FieldOperation, log.OpShutdown)
	})
	return ctx, stop
}
