package repository

import (
	"context"
	"database/sql"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/EnnubaBPMN2/marten-bank-sample/model"
)

func newNullTime(s string) sql.NullTime {
	return sql.NullTime{
		Valid: true,
		Time:  newTime(s),
	}
}

func newDecimal(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestAccount(t *testing.T) {
	tc := newRepoTest("account")

	repo := NewAccount()

	const accountID = "44444444-4444-4444-4444-444444444444"

	//---------------------------------------
	// Get Absent Account
	//---------------------------------------
	readCtx := tc.provider.Readonly(newContext())
	nullAccount, err := repo.GetAccount(readCtx, accountID)
	assert.Equal(t, nil, err)
	assert.Equal(t, model.NullAccount{}, nullAccount)

	//---------------------------------------
	// Insert
	//---------------------------------------
	err = tc.provider.Transact(newContext(), func(ctx context.Context) error {
		return repo.UpsertAccount(ctx, model.Account{
			ID:        accountID,
			Owner:     "Khalid Abuhakmeh",
			Balance:   newDecimal("1000"),
			CreatedAt: newTime("2022-05-07T10:00:00Z"),
			UpdatedAt: newTime("2022-05-07T10:00:00Z"),
		})
	})
	assert.Equal(t, nil, err)

	nullAccount, err = repo.GetAccount(readCtx, accountID)
	assert.Equal(t, nil, err)
	assert.Equal(t, true, nullAccount.Valid)
	assert.Equal(t, "Khalid Abuhakmeh", nullAccount.Account.Owner)
	assert.Equal(t, "1000", nullAccount.Account.Balance.String())
	assert.Equal(t, false, nullAccount.Account.Closed)

	//---------------------------------------
	// Update in Place
	//---------------------------------------
	err = tc.provider.Transact(newContext(), func(ctx context.Context) error {
		return repo.UpsertAccount(ctx, model.Account{
			ID:        accountID,
			Owner:     "Khalid Abuhakmeh",
			Balance:   newDecimal("900"),
			CreatedAt: newTime("2022-05-07T10:00:00Z"),
			UpdatedAt: newTime("2022-05-07T11:00:00Z"),
			Closed:    true,
			ClosedAt:  newNullTime("2022-05-07T11:00:00Z"),
			CloseReason: sql.NullString{
				Valid:  true,
				String: "Customer requested closure - zero balance",
			},
		})
	})
	assert.Equal(t, nil, err)

	nullAccount, err = repo.GetAccount(readCtx, accountID)
	assert.Equal(t, nil, err)
	assert.Equal(t, "900", nullAccount.Account.Balance.String())
	assert.Equal(t, newTime("2022-05-07T11:00:00Z"), nullAccount.Account.UpdatedAt)
	assert.Equal(t, true, nullAccount.Account.Closed)
	assert.Equal(t, newNullTime("2022-05-07T11:00:00Z"), nullAccount.Account.ClosedAt)
	assert.Equal(t, "Customer requested closure - zero balance", nullAccount.Account.CloseReason.String)
}

func TestAccount_Get_Multi(t *testing.T) {
	tc := newRepoTest("account")

	repo := NewAccount()

	err := tc.provider.Transact(newContext(), func(ctx context.Context) error {
		err := repo.UpsertAccount(ctx, model.Account{
			ID:        "55555555-5555-5555-5555-555555555555",
			Owner:     "Bill Boga",
			Balance:   newDecimal("0"),
			CreatedAt: newTime("2022-05-07T11:00:00Z"),
			UpdatedAt: newTime("2022-05-07T11:00:00Z"),
		})
		if err != nil {
			return err
		}
		return repo.UpsertAccount(ctx, model.Account{
			ID:        "66666666-6666-6666-6666-666666666666",
			Owner:     "Khalid Abuhakmeh",
			Balance:   newDecimal("1000"),
			CreatedAt: newTime("2022-05-07T10:00:00Z"),
			UpdatedAt: newTime("2022-05-07T10:00:00Z"),
		})
	})
	assert.Equal(t, nil, err)

	readCtx := tc.provider.Readonly(newContext())

	accounts, err := repo.GetAccounts(readCtx, []string{
		"55555555-5555-5555-5555-555555555555",
		"66666666-6666-6666-6666-666666666666",
		"77777777-7777-7777-7777-777777777777",
	})
	assert.Equal(t, nil, err)

	// ordered by creation time, absent ids skipped
	assert.Equal(t, 2, len(accounts))
	assert.Equal(t, "Khalid Abuhakmeh", accounts[0].Owner)
	assert.Equal(t, "Bill Boga", accounts[1].Owner)

	accounts, err = repo.GetAccounts(readCtx, nil)
	assert.Equal(t, nil, err)
	assert.Equal(t, 0, len(accounts))
}
