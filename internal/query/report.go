package query

import (
	"expensetracker/internal/core"
)

// Summarize aggregates the expenses dated inside month.
//
// Records that cannot be aggregated (zero date, negative amount) are left out
// and listed in Skipped; the pass itself never fails. Zero amounts count as
// zero contributions. Within each grouping, expenses with an empty key are
// left out of that grouping only, so Total can exceed a grouping's sum.
func (e *Engine) Summarize(all []core.Expense, month core.MonthID) core.ReportSummary {
	r := core.NewReportSummary(month)
	start, end := month.Start(e.loc), month.End(e.loc)

	for i := range all {
		exp := all[i]
		// Undated records belong to no month and are reported everywhere.
		if !exp.Date.IsZero() && (exp.Date.Before(start) || !exp.Date.Before(end)) {
			continue
		}
		if err := exp.ValidateForReport(); err != nil {
			r.Skipped = append(r.Skipped, core.SkippedExpense{ID: exp.ID, Err: err})
			continue
		}

		r.Count++
		r.Total = r.Total.Add(exp.Amount)
		if r.Largest == nil || exp.Amount.Minor > r.Largest.Amount.Minor {
			largest := exp
			r.Largest = &largest
		}

		addTo(r.ByCategory, exp.Category, exp.Amount)
		addTo(r.ByPaymentMode, exp.Mode, exp.Amount)
		addTo(r.ByPayee, exp.Payee, exp.Amount)
		if e.classifier != nil && exp.Category != "" {
			if tag, ok := e.classifier.Necessity(exp.Category); ok {
				addTo(r.ByNecessity, tag, exp.Amount)
			}
		}
		day := exp.Date.In(e.loc).Day()
		r.ByDate[day] = r.ByDate[day].Add(exp.Amount)
	}
	return r
}

func addTo(groups map[string]core.Money, key string, amount core.Money) {
	if key == "" {
		return
	}
	groups[key] = groups[key].Add(amount)
}
