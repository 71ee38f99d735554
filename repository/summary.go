package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/EnnubaBPMN2/marten-bank-sample/model"
)

// Summary stores the monthly cross-stream read model. Owned exclusively by
// the async projector; nothing else writes these rows.
type Summary interface {
	GetSummary(ctx context.Context, monthKey string) (model.NullMonthlySummary, error)
	UpsertSummary(ctx context.Context, summary model.MonthlySummary) error

	// DeleteAllSummaries clears the read model before a rebuild.
	DeleteAllSummaries(ctx context.Context) error
}

// Checkpoint stores projector positions in the global journal.
type Checkpoint interface {
	GetCheckpoint(ctx context.Context, name string) (model.ProjectorCheckpoint, error)
	SaveCheckpoint(ctx context.Context, checkpoint model.ProjectorCheckpoint) error
}

type summaryImpl struct {
}

// NewSummary ...
func NewSummary() Summary {
	return &summaryImpl{}
}

// GetSummary ...
func (s *summaryImpl) GetSummary(
	ctx context.Context, monthKey string,
) (model.NullMonthlySummary, error) {
	query := `
SELECT month_key, year, month,
	accounts_created, accounts_closed, total_transactions,
	total_debited, total_credited, invalid_attempts,
	last_updated
FROM monthly_summary
WHERE month_key = ?
`
	var result model.MonthlySummary
	err := getQueryer(ctx).GetContext(ctx, &result, query, monthKey)
	if errors.Is(err, sql.ErrNoRows) {
		return model.NullMonthlySummary{}, nil
	}
	if err != nil {
		return model.NullMonthlySummary{}, err
	}
	return model.NullMonthlySummary{Valid: true, Summary: result}, nil
}

// UpsertSummary ...
func (s *summaryImpl) UpsertSummary(ctx context.Context, summary model.MonthlySummary) error {
	query := `
INSERT INTO monthly_summary (
	month_key, year, month,
	accounts_created, accounts_closed, total_transactions,
	total_debited, total_credited, invalid_attempts,
	last_updated
) VALUES (
	:month_key, :year, :month,
	:accounts_created, :accounts_closed, :total_transactions,
	:total_debited, :total_credited, :invalid_attempts,
	:last_updated
) AS NEW
ON DUPLICATE KEY UPDATE
	year = NEW.year,
	month = NEW.month,

	accounts_created = NEW.accounts_created,
	accounts_closed = NEW.accounts_closed,
	total_transactions = NEW.total_transactions,

	total_debited = NEW.total_debited,
	total_credited = NEW.total_credited,
	invalid_attempts = NEW.invalid_attempts,

	last_updated = NEW.last_updated
`
	_, err := GetTx(ctx).NamedExecContext(ctx, query, summary)
	return err
}

// DeleteAllSummaries ...
func (s *summaryImpl) DeleteAllSummaries(ctx context.Context) error {
	query := `DELETE FROM monthly_summary`
	_, err := GetTx(ctx).ExecContext(ctx, query)
	return err
}

type checkpointImpl struct {
}

// NewCheckpoint ...
func NewCheckpoint() Checkpoint {
	return &checkpointImpl{}
}

// GetCheckpoint ...
func (c *checkpointImpl) GetCheckpoint(
	ctx context.Context, name string,
) (model.ProjectorCheckpoint, error) {
	query := `SELECT name, last_event_id, updated_at FROM projector_checkpoint WHERE name = ?`
	var result model.ProjectorCheckpoint
	err := getQueryer(ctx).GetContext(ctx, &result, query, name)
	if errors.Is(err, sql.ErrNoRows) {
		return model.ProjectorCheckpoint{Name: name}, nil
	}
	return result, err
}

// SaveCheckpoint ...
func (c *checkpointImpl) SaveCheckpoint(
	ctx context.Context, checkpoint model.ProjectorCheckpoint,
) error {
	query := `
INSERT INTO projector_checkpoint (name, last_event_id, updated_at)
VALUES (:name, :last_event_id, :updated_at) AS NEW
ON DUPLICATE KEY UPDATE
	last_event_id = NEW.last_event_id,
	updated_at = NEW.updated_at
`
	_, err := GetTx(ctx).NamedExecContext(ctx, query, checkpoint)
	return err
}
