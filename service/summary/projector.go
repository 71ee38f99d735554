package summary

import (
	"time"

	"github.com/EnnubaBPMN2/marten-bank-sample/event"
	"github.com/EnnubaBPMN2/marten-bank-sample/model"
)

// KeyOf computes the grouping key an event feeds: the calendar month of its
// business time. Every ledger event type maps to a month.
func KeyOf(e event.Event) string {
	return event.MonthKey(e.OccurredAt())
}

// NewSummaryFor returns the empty document for a month not seen before.
func NewSummaryFor(monthKey string, t time.Time) model.MonthlySummary {
	return model.MonthlySummary{
		MonthKey: monthKey,
		Year:     t.Year(),
		Month:    int(t.Month()),
	}
}

// ApplyTo applies one event's incremental update to the summary document.
// Pure aside from the updated timestamp taken from now.
func ApplyTo(summary *model.MonthlySummary, e event.Event, now time.Time) {
	switch ev := e.(type) {
	case event.AccountCreated:
		summary.AccountsCreated++

	case event.AccountCredited:
		summary.TotalTransactions++
		summary.TotalCredited = summary.TotalCredited.Add(ev.Amount)

	case event.AccountDebited:
		summary.TotalTransactions++
		summary.TotalDebited = summary.TotalDebited.Add(ev.Amount)

	case event.AccountClosed:
		summary.AccountsClosed++

	case event.InvalidOperationAttempted:
		summary.InvalidAttempts++
	}
	summary.LastUpdated = now
}
