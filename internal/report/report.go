// Package report aggregates the simulation history by calendar month.
package report

import (
	"sort"
	"time"

	"github.com/Simplici0/logicalc/internal/history"
)

// PeriodAll selects every entry regardless of month.
const PeriodAll = "all"

// DefaultRecentLimit is how many filtered entries the dashboard lists.
const DefaultRecentLimit = 15

// Summary holds the aggregate values of a set of history entries.
type Summary struct {
	Simulations         int     `json:"simulations"`
	TotalInvoiceValue   float64 `json:"totalInvoiceValue"`
	TotalFreightValue   float64 `json:"totalFreightValue"`
	AverageFreightRatio float64 `json:"averageFreightRatio"`
}

// PeriodKey returns the YYYY-MM key of t in loc. A nil loc means UTC.
func PeriodKey(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	return t.In(loc).Format("2006-01")
}

// Filter returns the entries whose period key equals period.
// PeriodAll and the empty string return log unchanged.
func Filter(log []history.Entry, period string, loc *time.Location) []history.Entry {
	if period == "" || period == PeriodAll {
		return log
	}
	out := make([]history.Entry, 0, len(log))
	for _, e := range log {
		if PeriodKey(e.Date, loc) == period {
			out = append(out, e)
		}
	}
	return out
}

// Summarize totals entries. The average ratio is zero when there is no invoice value.
func Summarize(entries []history.Entry) Summary {
	s := Summary{Simulations: len(entries)}
	for _, e := range entries {
		s.TotalInvoiceValue += e.InvoiceValue
		s.TotalFreightValue += e.BestFreightValue
	}
	if s.TotalInvoiceValue > 0 {
		s.AverageFreightRatio = s.TotalFreightValue / s.TotalInvoiceValue * 100.0
	}
	return s
}

// Periods returns the distinct period keys in log, most recent first.
func Periods(log []history.Entry, loc *time.Location) []string {
	seen := make(map[string]struct{}, len(log))
	keys := make([]string, 0)
	for _, e := range log {
		k := PeriodKey(e.Date, loc)
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		keys = append(keys, k)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(keys)))
	return keys
}

// Recent returns at most limit entries from the front of entries.
func Recent(entries []history.Entry, limit int) []history.Entry {
	if limit < 0 || len(entries) <= limit {
		return entries
	}
	return entries[:limit]
}
