// Command expenses records expenses and answers list and report queries from
// the terminal.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"expensetracker/internal/cli"
	"expensetracker/internal/core"
	"expensetracker/internal/log"
	"expensetracker/internal/moneyinput"
	"expensetracker/internal/services"
	"expensetracker/internal/taxonomy"
)

type command struct {
	usage string
	run   func(ctx context.Context, app *cli.App, args []string, w io.Writer) error
}

var commands = map[string]command{
	"add":          {"add -amount 12.50 [-date 2024-02-03] [-category Food] ...", runAdd},
	"update":       {"update -id ID [-amount ...] [-date ...] ...", runUpdate},
	"list":         {"list [-filter day|week|month] [-search TERM]", runList},
	"report":       {"report [-month 2024-02[,2024-03...]]", runReport},
	"amount-input": {"amount-input [-precision N] KEYS   ('<' is backspace)", runAmountInput},
	"options":      {"options [-add-category 'Name|icon[=Tag]'] [-add-mode 'Name|icon']", runOptions},
}

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL"))

	if len(os.Args) < 2 {
		printUsage(os.Stderr)
		os.Exit(2)
	}
	cmd, ok := commands[os.Args[1]]
	if !ok {
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n", os.Args[1])
		printUsage(os.Stderr)
		os.Exit(2)
	}

	cfg, err := cli.LoadAndValidateConfig(logger)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	ctx, stop := cli.GracefulShutdown(logger)
	app, err := cli.Bootstrap(ctx, cfg, logger)
	if err != nil {
		logger.WithComponent(log.ComponentCLI).Error("Failed to start",
			log.NewFields().WithOperation(log.OpStartup).WithError(err).WithErrorType(log.ErrorTypeInternal).ToSlice()...)
		stop()
		os.Exit(1)
	}
	app.Start(ctx)

	code := 0
	if err := cmd.run(ctx, app, os.Args[2:], os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		code = 1
		if errors.Is(err, flag.ErrHelp) {
			code = 2
		}
	}
	if err := app.Close(); err != nil {
		logger.WithComponent(log.ComponentCLI).Error("Failed to close store",
			log.NewFields().WithOperation(log.OpShutdown).WithError(err).WithErrorType(log.ErrorTypeDatabase).ToSlice()...)
	}
	stop()
	os.Exit(code)
}

func printUsage(w io.Writer) {
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)
	fmt.Fprintln(w, "usage: expenses <command> [flags]")
	fmt.Fprintln(w)
	for _, name := range names {
		fmt.Fprintf(w, "  %s\n", commands[name].usage)
	}
}

// expenseFlags are the editable fields shared by add and update.
type expenseFlags struct {
	amount, date, category, mode, payee, spender, location, notes, source string
}

func (f *expenseFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&f.amount, "amount", "", "amount, e.g. 12.50 or 12,50")
	fs.StringVar(&f.date, "date", "", "date as YYYY-MM-DD, 'YYYY-MM-DD HH:MM' or RFC 3339 (default now)")
	fs.StringVar(&f.category, "category", "", "category")
	fs.StringVar(&f.mode, "mode", "", "payment mode")
	fs.StringVar(&f.payee, "payee", "", "payee")
	fs.StringVar(&f.spender, "spender", "", "who spent it")
	fs.StringVar(&f.location, "location", "", "where")
	fs.StringVar(&f.notes, "notes", "", "free-text notes")
	fs.StringVar(&f.source, "source", "", "Self, OCR or SMS (default Self)")
}

// apply overwrites the fields of d named by set.
func (f *expenseFlags) apply(d services.Draft, set map[string]bool, app *cli.App) (services.Draft, error) {
	if set["amount"] {
		m, err := core.ParseAmount(f.amount, app.Currency.Precision)
		if err != nil {
			return d, fmt.Errorf("amount %q: %w", f.amount, err)
		}
		d.Amount = m
	}
	if set["date"] {
		t, err := parseDate(f.date, app.Engine.Location())
		if err != nil {
			return d, err
		}
		d.Date = t
	}
	if set["source"] {
		src, err := core.ParseSource(f.source)
		if err != nil {
			return d, fmt.Errorf("source %q: %w", f.source, err)
		}
		d.Source = src
	}
	for name, field := range map[string]struct{ src, dst *string }{
		"category": {&f.category, &d.Category},
		"mode":     {&f.mode, &d.Mode},
		"payee":    {&f.payee, &d.Payee},
		"spender":  {&f.spender, &d.Spender},
		"location": {&f.location, &d.Location},
		"notes":    {&f.notes, &d.Notes},
	} {
		if set[name] {
			*field.dst = strings.TrimSpace(*field.src)
		}
	}
	return d, nil
}

func setFlags(fs *flag.FlagSet) map[string]bool {
	set := map[string]bool{}
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })
	return set
}

func parseDate(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range []string{"2006-01-02", "2006-01-02 15:04", "2006-01-02T15:04"} {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("date %q: %w", s, core.ErrInvalidDate)
}

func runAdd(ctx context.Context, app *cli.App, args []string, w io.Writer) error {
	fs := flag.NewFlagSet("add", flag.ContinueOnError)
	fs.SetOutput(w)
	var f expenseFlags
	f.register(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	d := services.Draft{Date: time.Now().In(app.Engine.Location())}
	d, err := f.apply(d, setFlags(fs), app)
	if err != nil {
		return err
	}
	e, err := app.Expenses.Create(ctx, d)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "added %s  %s  %s\n", e.ID, app.Currency.Format(e.Amount), e.Date.In(app.Engine.Location()).Format("2006-01-02 15:04"))
	return nil
}

func runUpdate(ctx context.Context, app *cli.App, args []string, w io.Writer) error {
	fs := flag.NewFlagSet("update", flag.ContinueOnError)
	fs.SetOutput(w)
	id := fs.String("id", "", "expense id")
	var f expenseFlags
	f.register(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *id == "" {
		return errors.New("update: -id is required")
	}

	cur, err := app.Expenses.Get(ctx, *id)
	if err != nil {
		return err
	}
	d := services.Draft{
		Amount:   cur.Amount,
		Date:     cur.Date,
		Category: cur.Category,
		Mode:     cur.Mode,
		Payee:    cur.Payee,
		Spender:  cur.Spender,
		Location: cur.Location,
		Notes:    cur.Notes,
		Source:   cur.Source,
	}
	d, err = f.apply(d, setFlags(fs), app)
	if err != nil {
		return err
	}
	e, err := app.Expenses.Update(ctx, *id, d)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "updated %s  %s\n", e.ID, app.Currency.Format(e.Amount))
	return nil
}

func runList(ctx context.Context, app *cli.App, args []string, w io.Writer) error {
	fs := flag.NewFlagSet("list", flag.ContinueOnError)
	fs.SetOutput(w)
	filter := fs.String("filter", "", "day, week or month (default: last used)")
	search := fs.String("search", "", "case-insensitive search term (default: last used)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	set := setFlags(fs)

	if set["filter"] || set["search"] {
		var parsed core.DurationFilter
		if set["filter"] {
			f, err := core.ParseDurationFilter(*filter)
			if err != nil {
				return err
			}
			parsed = f
		}
		_, err := app.Expenses.UpdateViewState(ctx, func(v core.ViewState) core.ViewState {
			if set["filter"] {
				v = v.WithFilter(parsed)
			}
			if set["search"] {
				v = v.WithSearch(*search)
			}
			return v
		})
		if err != nil {
			return err
		}
	}

	list, view, err := app.Expenses.VisibleFromViewState(ctx)
	if err != nil {
		return err
	}
	since := app.Engine.WindowStart(view.Filter, time.Now())
	renderExpenses(w, list, view, since, app)
	return nil
}

func runReport(ctx context.Context, app *cli.App, args []string, w io.Writer) error {
	fs := flag.NewFlagSet("report", flag.ContinueOnError)
	fs.SetOutput(w)
	monthsFlag := fs.String("month", "", "YYYY-MM, comma separated for several (default: last used)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	var months []core.MonthID
	if strings.TrimSpace(*monthsFlag) == "" {
		v, err := app.Expenses.ViewState(ctx)
		if err != nil {
			return err
		}
		m := v.ReportMonth
		if m.IsZero() {
			m = core.MonthOf(time.Now().In(app.Engine.Location()))
		}
		months = append(months, m)
	} else {
		for _, part := range strings.Split(*monthsFlag, ",") {
			m, err := core.ParseMonthID(part)
			if err != nil {
				return err
			}
			months = append(months, m)
		}
		if len(months) == 1 {
			if _, err := app.Expenses.UpdateViewState(ctx, func(v core.ViewState) core.ViewState {
				return v.WithReportMonth(months[0])
			}); err != nil {
				return err
			}
		}
	}

	sums, err := app.Reports.Summaries(ctx, months)
	if err != nil {
		return err
	}
	for i, sum := range sums {
		if i > 0 {
			fmt.Fprintln(w)
		}
		renderReport(w, sum, app)
	}
	return nil
}

func runAmountInput(_ context.Context, app *cli.App, args []string, w io.Writer) error {
	fs := flag.NewFlagSet("amount-input", flag.ContinueOnError)
	fs.SetOutput(w)
	precision := fs.Int("precision", int(app.Currency.Precision), "fractional digits")
	if err := fs.Parse(args); err != nil {
		return err
	}

	field := moneyinput.NewField(*precision)
	var steps [][2]string
	for _, r := range strings.Join(fs.Args(), "") {
		key := moneyinput.Key(r)
		label := string(r)
		if r == '<' {
			key, label = moneyinput.Backspace, "⌫"
		}
		field.Press(key)
		steps = append(steps, [2]string{label, field.Text()})
	}
	field.Blur()
	steps = append(steps, [2]string{"blur", field.Text()})

	renderKeySteps(w, steps)
	if amount, err := field.Amount(); err == nil {
		fmt.Fprintf(w, "amount: %s\n", core.Currency{Code: app.Currency.Code, Precision: int32(*precision)}.Format(amount))
	} else {
		fmt.Fprintf(w, "amount: invalid (%v)\n", err)
	}
	return nil
}

func runOptions(ctx context.Context, app *cli.App, args []string, w io.Writer) error {
	fs := flag.NewFlagSet("options", flag.ContinueOnError)
	fs.SetOutput(w)
	added := 0
	fs.Func("add-category", "add a category as Name|icon[=Tag] (repeatable)", func(s string) error {
		o, tag, err := taxonomy.ParseCategory(s)
		if err != nil {
			return err
		}
		app.Taxonomy.AddCategory(o, tag)
		added++
		return nil
	})
	fs.Func("add-mode", "add a payment mode as Name|icon (repeatable)", func(s string) error {
		o, err := taxonomy.ParseMode(s)
		if err != nil {
			return err
		}
		app.Taxonomy.AddMode(o)
		added++
		return nil
	})
	if err := fs.Parse(args); err != nil {
		return err
	}

	if added > 0 {
		dir := app.Config.TaxonomyDir
		if dir == "" {
			fmt.Fprintln(w, "TAXONOMY_DIR is not set; new options last for this run only")
		} else {
			if err := app.Taxonomy.SaveFiles(dir); err != nil {
				return err
			}
			app.Logger.WithComponent(log.ComponentTaxonomy).InfoContext(ctx, "Taxonomy saved",
				log.FieldPath, dir, log.FieldCount, added)
		}
	}
	renderOptions(w, app.Taxonomy)
	return nil
}
