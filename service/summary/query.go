package summary

import (
	"context"

	"github.com/EnnubaBPMN2/marten-bank-sample/model"
	"github.com/EnnubaBPMN2/marten-bank-sample/repository"
)

// Query is the read path over the monthly summaries.
type Query struct {
	provider    repository.Provider
	summaryRepo repository.Summary
}

// NewQuery ...
func NewQuery(provider repository.Provider) *Query {
	return &Query{
		provider:    provider,
		summaryRepo: repository.NewSummary(),
	}
}

// Summary returns the document for one month key, absent when no event has
// mapped to that month yet.
func (q *Query) Summary(ctx context.Context, monthKey string) (model.NullMonthlySummary, error) {
	ctx = q.provider.Readonly(ctx)
	return q.summaryRepo.GetSummary(ctx, monthKey)
}
