package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/shopspring/decimal"

	"expensetracker/internal/cli"
	"expensetracker/internal/core"
	"expensetracker/internal/taxonomy"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	warnStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	amountStyle = cellStyle.Align(lipgloss.Right)
)

// newTable returns a bordered table whose columns listed in rightAligned are
// right aligned.
func newTable(headers []string, rows [][]string, rightAligned ...int) *table.Table {
	right := map[int]bool{}
	for _, c := range rightAligned {
		right[c] = true
	}
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(mutedStyle).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			if right[col] {
				return amountStyle
			}
			return cellStyle
		})
}

func renderExpenses(w io.Writer, list []core.Expense, view core.ViewState, since time.Time, app *cli.App) {
	loc := app.Engine.Location()
	title := fmt.Sprintf("Expenses this %s (since %s)", view.Filter, since.In(loc).Format("Mon 2 Jan 2006"))
	if strings.TrimSpace(view.SearchTerm) != "" {
		title += fmt.Sprintf(" matching %q", view.SearchTerm)
	}
	fmt.Fprintln(w, titleStyle.Render(title))

	if len(list) == 0 {
		fmt.Fprintln(w, mutedStyle.Render("No expenses."))
		return
	}

	var total core.Money
	rows := make([][]string, 0, len(list))
	for _, e := range list {
		total = total.Add(e.Amount)
		rows = append(rows, []string{
			e.Date.In(loc).Format("2006-01-02 15:04"),
			e.Amount.Format(app.Currency.Precision),
			e.Category,
			e.Mode,
			e.Payee,
			e.Notes,
			e.ID,
		})
	}
	headers := []string{"Date", "Amount (" + app.Currency.Code + ")", "Category", "Mode", "Payee", "Notes", "ID"}
	fmt.Fprintln(w, newTable(headers, rows, 1).String())
	fmt.Fprintf(w, "%d expenses, total %s\n", len(list), app.Currency.Format(total))
}

func renderReport(w io.Writer, sum core.ReportSummary, app *cli.App) {
	cur := app.Currency
	start := sum.Month.Start(time.UTC)
	fmt.Fprintln(w, titleStyle.Render("Report for "+start.Format("January 2006")))
	fmt.Fprintf(w, "Total %s across %d expenses\n", cur.Format(sum.Total), sum.Count)
	if sum.Largest != nil {
		l := sum.Largest
		fmt.Fprintf(w, "Largest %s on %s (%s)\n", cur.Format(l.Amount),
			l.Date.In(app.Engine.Location()).Format("2 Jan"), nonEmpty(l.Payee, l.Category))
	}

	for _, g := range []struct {
		name   string
		groups map[string]core.Money
	}{
		{"Category", sum.ByCategory},
		{"Payment mode", sum.ByPaymentMode},
		{"Payee", sum.ByPayee},
		{"Necessity", sum.ByNecessity},
	} {
		if len(g.groups) == 0 {
			continue
		}
		rows := [][]string{}
		for _, ga := range core.Ranked(g.groups) {
			rows = append(rows, []string{ga.Name, ga.Amount.Format(cur.Precision), share(ga.Amount, sum.Total)})
		}
		fmt.Fprintln(w, newTable([]string{g.name, "Amount", "Share"}, rows, 1, 2).String())
	}

	if len(sum.ByDate) > 0 {
		rows := [][]string{}
		for i, m := range sum.DailySeries() {
			if m.IsZero() {
				continue
			}
			rows = append(rows, []string{fmt.Sprintf("%d", i+1), m.Format(cur.Precision)})
		}
		fmt.Fprintln(w, newTable([]string{"Day", "Amount"}, rows, 0, 1).String())
	}

	for _, sk := range sum.Skipped {
		fmt.Fprintln(w, warnStyle.Render(fmt.Sprintf("skipped %s: %v", sk.ID, sk.Err)))
	}
}

func renderKeySteps(w io.Writer, steps [][2]string) {
	rows := make([][]string, 0, len(steps))
	for _, s := range steps {
		text := s[1]
		if text == "" {
			text = mutedStyle.Render("(empty)")
		}
		rows = append(rows, []string{s[0], text})
	}
	fmt.Fprintln(w, newTable([]string{"Key", "Field"}, rows, 1).String())
}

func renderOptions(w io.Writer, tx *taxonomy.Taxonomy) {
	rows := [][]string{}
	for _, o := range tx.Categories() {
		tag, _ := tx.Necessity(o.Name)
		rows = append(rows, []string{o.Name, o.Icon, tag})
	}
	fmt.Fprintln(w, newTable([]string{"Category", "Icon", "Necessity"}, rows).String())

	rows = [][]string{}
	for _, o := range tx.Modes() {
		rows = append(rows, []string{o.Name, o.Icon})
	}
	fmt.Fprintln(w, newTable([]string{"Payment mode", "Icon"}, rows).String())
}

// share formats part as a percentage of total with one decimal.
func share(part, total core.Money) string {
	if total.IsZero() {
		return "-"
	}
	pct := decimal.NewFromInt(part.Minor).Div(decimal.NewFromInt(total.Minor)).Shift(2)
	return pct.StringFixed(1) + "%"
}

func nonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return "-"
}
