package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"github.com/EnnubaBPMN2/marten-bank-sample/model"
)

// Account stores the per-stream snapshot documents. Upserts only ever happen
// inside the same transaction as the append that triggered them.
type Account interface {
	UpsertAccount(ctx context.Context, account model.Account) error
	GetAccount(ctx context.Context, id string) (model.NullAccount, error)
	GetAccounts(ctx context.Context, ids []string) ([]model.Account, error)
}

type accountImpl struct {
}

// NewAccount ...
func NewAccount() Account {
	return &accountImpl{}
}

// UpsertAccount ...
func (a *accountImpl) UpsertAccount(ctx context.Context, account model.Account) error {
	query := `
INSERT INTO account (
	id, owner, balance,
	created_at, updated_at,
	closed, closed_at, close_reason
) VALUES (
	:id, :owner, :balance,
	:created_at, :updated_at,
	:closed, :closed_at, :close_reason
) AS NEW
ON DUPLICATE KEY UPDATE
	owner = NEW.owner,
	balance = NEW.balance,

	created_at = NEW.created_at,
	updated_at = NEW.updated_at,

	closed = NEW.closed,
	closed_at = NEW.closed_at,
	close_reason = NEW.close_reason
`
	_, err := GetTx(ctx).NamedExecContext(ctx, query, account)
	return err
}

// GetAccount ...
func (a *accountImpl) GetAccount(ctx context.Context, id string) (model.NullAccount, error) {
	query := `
SELECT id, owner, balance, created_at, updated_at, closed, closed_at, close_reason
FROM account
WHERE id = ?
`
	var result model.Account
	err := getQueryer(ctx).GetContext(ctx, &result, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return model.NullAccount{}, nil
	}
	if err != nil {
		return model.NullAccount{}, err
	}
	return model.NullAccount{Valid: true, Account: result}, nil
}

// GetAccounts ...
func (a *accountImpl) GetAccounts(ctx context.Context, ids []string) ([]model.Account, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	query, args, err := sqlx.In(`
SELECT id, owner, balance, created_at, updated_at, closed, closed_at, close_reason
FROM account
WHERE id IN (?)
ORDER BY created_at
`, ids)
	if err != nil {
		return nil, err
	}

	var result []model.Account
	err = getQueryer(ctx).SelectContext(ctx, &result, query, args...)
	return result, err
}
