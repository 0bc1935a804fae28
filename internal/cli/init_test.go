package cli

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"expensetracker/internal/config"
	"expensetracker/internal/core"
	"expensetracker/internal/log"
	"expensetracker/internal/services"
)

func testConfig() *config.Config {
	return &config.Config{
		DataBackend:       "memory",
		WeekStart:         "sunday",
		Timezone:          "UTC",
		Currency:          "eur",
		CurrencyPrecision: 2,
		ReportCacheSize:   4,
		ReportCacheTTL:    time.Minute,
		LogLevel:          "info",
	}
}

func TestBootstrapWiresServices(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig()
	cfg.DataBackend = "sqlite"
	cfg.SQLiteDBPath = filepath.Join(t.TempDir(), "expenses.db")

	app, err := Bootstrap(ctx, cfg, log.New(log.Config{Output: io.Discard}))
	require.NoError(t, err)
	defer app.Close()

	assert.Equal(t, time.Sunday, app.Engine.WeekStart())
	assert.Equal(t, "UTC", app.Engine.Location().String())
	assert.Equal(t, "EUR", app.Currency.Code)

	date := time.Date(2024, time.May, 3, 10, 0, 0, 0, time.UTC)
	_, err = app.Expenses.Create(ctx, services.Draft{Amount: core.Money{Minor: 900}, Date: date, Category: "Food"})
	require.NoError(t, err)

	sum, err := app.Reports.Summary(ctx, core.NewMonthID(2024, time.May))
	require.NoError(t, err)
	assert.Equal(t, int64(900), sum.Total.Minor)
	assert.Equal(t, int64(900), sum.ByNecessity["Need"].Minor)

	runCtx, cancel := context.WithCancel(ctx)
	app.Start(runCtx)
	cancel()
}

func TestJanitorLogsUnderCacheComponent(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig()
	cfg.ReportCacheTTL = time.Millisecond

	var buf bytes.Buffer
	app, err := Bootstrap(ctx, cfg, log.New(log.Config{Level: slog.LevelDebug, Output: &buf, JSON: true}))
	require.NoError(t, err)
	defer app.Close()

	_, err = app.Reports.Summary(ctx, core.NewMonthID(2024, time.May))
	require.NoError(t, err)
	time.Sleep(5 * time.Millisecond)

	buf.Reset()
	assert.Equal(t, 1, app.Janitor.Sweep())
	assert.Contains(t, buf.String(), `"msg":"Expired cache entries removed"`)
	assert.Contains(t, buf.String(), `"component":"cache"`)
}

func TestBootstrapRejectsBadConfig(t *testing.T) {
	cfg := testConfig()
	cfg.Timezone = "Nowhere/Special"
	_, err := Bootstrap(context.Background(), cfg, log.New(log.Config{Output: io.Discard}))
	assert.Error(t, err)

	cfg = testConfig()
	cfg.DataBackend = "sheets"
	_, err = Bootstrap(context.Background(), cfg, log.New(log.Config{Output: io.Discard}))
	assert.Error(t, err)
}

func TestLoadAndValidateConfig(t *testing.T) {
	t.Setenv("DATA_BACKEND", "bogus")
	_, err := LoadAndValidateConfig(log.New(log.Config{Output: io.Discard}))
	assert.Error(t, err)

	t.Setenv("DATA_BACKEND", "memory")
	t.Setenv("TIMEZONE", "UTC")
	for _, key := range []string{"TAXONOMY_DIR", "SEED_FILE", "WEEK_START", "CURRENCY", "CURRENCY_PRECISION", "REPORT_CACHE_SIZE", "REPORT_CACHE_TTL"} {
		t.Setenv(key, "")
	}
	t.Setenv("LOG_LEVEL", "debug")
	cfg, err := LoadAndValidateConfig(log.New(log.Config{Output: io.Discard}))
	require.NoError(t, err)
	assert.Equal(t, "memory", cfg.DataBackend)
}
