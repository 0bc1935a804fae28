package main

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"expensetracker/internal/cli"
	"expensetracker/internal/config"
	"expensetracker/internal/core"
	"expensetracker/internal/log"
	"expensetracker/internal/services"
	"expensetracker/internal/taxonomy"
)

func newTestApp(t *testing.T) *cli.App {
	t.Helper()
	cfg := &config.Config{
		DataBackend:       "memory",
		WeekStart:         "monday",
		Timezone:          "UTC",
		Currency:          "EUR",
		CurrencyPrecision: 2,
		ReportCacheSize:   4,
		ReportCacheTTL:    time.Minute,
		LogLevel:          "error",
	}
	app, err := cli.Bootstrap(context.Background(), cfg, log.New(log.Config{Output: io.Discard}))
	require.NoError(t, err)
	t.Cleanup(func() { app.Close() })
	return app
}

func run(t *testing.T, app *cli.App, name string, args ...string) (string, error) {
	t.Helper()
	var buf bytes.Buffer
	err := commands[name].run(context.Background(), app, args, &buf)
	return buf.String(), err
}

func TestAddListAndSearch(t *testing.T) {
	app := newTestApp(t)

	out, err := run(t, app, "add", "-amount", "12,50", "-category", "Food", "-payee", "Corner Café")
	require.NoError(t, err)
	assert.Contains(t, out, "EUR 12.50")

	_, err = run(t, app, "add", "-amount", "40", "-category", "Travel", "-payee", "Railways")
	require.NoError(t, err)

	out, err = run(t, app, "list", "-filter", "day")
	require.NoError(t, err)
	assert.Contains(t, out, "Corner Café")
	assert.Contains(t, out, "Railways")
	assert.Contains(t, out, "total EUR 52.50")

	out, err = run(t, app, "list", "-search", "CAFÉ")
	require.NoError(t, err)
	assert.Contains(t, out, "Corner Café")
	assert.NotContains(t, out, "Railways")

	// Filter and search persist between invocations.
	out, err = run(t, app, "list")
	require.NoError(t, err)
	assert.Contains(t, out, "this day")
	assert.NotContains(t, out, "Railways")

	_, err = run(t, app, "list", "-filter", "fortnight")
	assert.ErrorIs(t, err, core.ErrInvalidFilter)
}

func TestAddRejectsInvalidInput(t *testing.T) {
	app := newTestApp(t)

	_, err := run(t, app, "add", "-amount", "0")
	assert.ErrorIs(t, err, core.ErrInvalidAmount)

	_, err = run(t, app, "add", "-amount", "-3")
	assert.ErrorIs(t, err, core.ErrInvalidAmount)

	_, err = run(t, app, "add", "-amount", "3", "-date", "yesterday")
	assert.ErrorIs(t, err, core.ErrInvalidDate)

	_, err = run(t, app, "add", "-amount", "3", "-source", "fax")
	assert.ErrorIs(t, err, core.ErrInvalidSource)
}

func TestUpdateAndReport(t *testing.T) {
	app := newTestApp(t)
	ctx := context.Background()

	_, err := run(t, app, "add", "-amount", "100", "-date", "2024-02-10", "-category", "Rent", "-mode", "Net Banking", "-payee", "Landlord")
	require.NoError(t, err)
	_, err = run(t, app, "add", "-amount", "20.25", "-date", "2024-02-11 09:30", "-category", "Food", "-mode", "UPI")
	require.NoError(t, err)

	out, err := run(t, app, "report", "-month", "2024-02")
	require.NoError(t, err)
	assert.Contains(t, out, "February 2024")
	assert.Contains(t, out, "EUR 120.25")
	assert.Contains(t, out, "Landlord")
	assert.Contains(t, out, "Need")

	v, err := app.Expenses.ViewState(ctx)
	require.NoError(t, err)
	assert.Equal(t, core.NewMonthID(2024, time.February), v.ReportMonth)

	feb, err := app.Reports.Summary(ctx, core.NewMonthID(2024, time.February))
	require.NoError(t, err)
	require.NotNil(t, feb.Largest)
	id := feb.Largest.ID

	_, err = run(t, app, "update", "-id", id, "-amount", "150", "-date", "2024-03-01")
	require.NoError(t, err)

	out, err = run(t, app, "report", "-month", "2024-02,2024-03")
	require.NoError(t, err)
	assert.Contains(t, out, "EUR 20.25")
	assert.Contains(t, out, "March 2024")
	assert.Contains(t, out, "EUR 150.00")

	updated, err := app.Expenses.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Landlord", updated.Payee)

	_, err = run(t, app, "update", "-amount", "1")
	assert.Error(t, err)

	_, err = run(t, app, "report", "-month", "2024-13")
	assert.ErrorIs(t, err, core.ErrInvalidMonth)
}

func TestAmountInput(t *testing.T) {
	app := newTestApp(t)

	out, err := run(t, app, "amount-input", "0012.345<")
	require.NoError(t, err)
	assert.Contains(t, out, "amount: EUR 12.30")

	out, err = run(t, app, "amount-input", "-precision", "0", "7.")
	require.NoError(t, err)
	assert.Contains(t, out, "amount: EUR 7")
}

func TestOptions(t *testing.T) {
	app := newTestApp(t)
	out, err := run(t, app, "options")
	require.NoError(t, err)
	for _, want := range []string{"Groceries", "Net Banking", "Want"} {
		assert.True(t, strings.Contains(out, want), "missing %q in options output", want)
	}
}

func TestOptionsAddsAndPersists(t *testing.T) {
	app := newTestApp(t)
	dir := t.TempDir()
	app.Config.TaxonomyDir = dir

	out, err := run(t, app, "options", "-add-category", "Pets|paw=Need", "-add-mode", "Cheque|checkbook")
	require.NoError(t, err)
	assert.Contains(t, out, "Pets")
	assert.Contains(t, out, "Cheque")

	sum, err := app.Expenses.Create(context.Background(), services.Draft{
		Amount: core.Money{Minor: 300}, Date: time.Now(), Category: "pets",
	})
	require.NoError(t, err)
	report, err := app.Reports.Summary(context.Background(), core.MonthOf(sum.Date.In(app.Engine.Location())))
	require.NoError(t, err)
	assert.Equal(t, int64(300), report.ByNecessity["Need"].Minor)

	reloaded := taxonomy.NewFromFiles(dir)
	tag, ok := reloaded.Necessity("Pets")
	assert.True(t, ok)
	assert.Equal(t, "Need", tag)
}

func TestOptionsRejectsNamelessCategory(t *testing.T) {
	app := newTestApp(t)
	_, err := run(t, app, "options", "-add-category", "|paw")
	assert.ErrorContains(t, err, taxonomy.ErrInvalidOption.Error())

	out, err := run(t, app, "options", "-add-mode", "Cheque")
	require.NoError(t, err)
	assert.Contains(t, out, "TAXONOMY_DIR is not set")
}

func TestParseDate(t *testing.T) {
	loc := time.UTC
	got, err := parseDate("2024-02-03", loc)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 2, 3, 0, 0, 0, 0, loc), got)

	got, err = parseDate("2024-02-03 18:05", loc)
	require.NoError(t, err)
	assert.Equal(t, 18, got.Hour())

	got, err = parseDate("2024-02-03T10:00:00+01:00", loc)
	require.NoError(t, err)
	assert.Equal(t, 9, got.UTC().Hour())

	_, err = parseDate("03/02/2024", loc)
	assert.ErrorIs(t, err, core.ErrInvalidDate)
}
