package summary

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/EnnubaBPMN2/marten-bank-sample/event"
	"github.com/EnnubaBPMN2/marten-bank-sample/model"
)

func newTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return t.UTC()
}

func newDecimal(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestKeyOf(t *testing.T) {
	accountID := uuid.New()

	assert.Equal(t, "2022-05", KeyOf(event.AccountCreated{
		AccountID: accountID,
		CreatedAt: newTime("2022-05-07T10:00:00Z"),
	}))
	assert.Equal(t, "2022-06", KeyOf(event.AccountCredited{
		To:   accountID,
		Time: newTime("2022-06-01T00:00:00Z"),
	}))
	assert.Equal(t, "2022-12", KeyOf(event.AccountClosed{
		AccountID: accountID,
		ClosedAt:  newTime("2022-12-31T23:59:59Z"),
	}))
}

func TestNewSummaryFor(t *testing.T) {
	s := NewSummaryFor("2022-05", newTime("2022-05-07T10:00:00Z"))

	assert.Equal(t, "2022-05", s.MonthKey)
	assert.Equal(t, 2022, s.Year)
	assert.Equal(t, 5, s.Month)
	assert.Equal(t, int64(0), s.TotalTransactions)
	assert.Equal(t, "0", s.TotalDebited.String())
	assert.Equal(t, "0", s.TotalCredited.String())
}

func TestApplyTo(t *testing.T) {
	accountID := uuid.New()
	otherID := uuid.New()
	now := newTime("2022-05-31T12:00:00Z")

	s := NewSummaryFor("2022-05", newTime("2022-05-07T10:00:00Z"))

	ApplyTo(&s, event.AccountCreated{
		AccountID:       accountID,
		Owner:           "Khalid Abuhakmeh",
		StartingBalance: newDecimal("1000"),
		CreatedAt:       newTime("2022-05-07T10:00:00Z"),
	}, now)
	ApplyTo(&s, event.AccountDebited{
		From:   accountID,
		To:     otherID,
		Amount: newDecimal("100"),
		Time:   newTime("2022-05-07T11:00:00Z"),
	}, now)
	ApplyTo(&s, event.AccountCredited{
		From:   otherID,
		To:     accountID,
		Amount: newDecimal("50"),
		Time:   newTime("2022-05-07T12:00:00Z"),
	}, now)
	ApplyTo(&s, event.InvalidOperationAttempted{
		AccountID: accountID,
		Time:      newTime("2022-05-07T13:00:00Z"),
	}, now)
	ApplyTo(&s, event.AccountClosed{
		AccountID: accountID,
		ClosedAt:  newTime("2022-05-07T14:00:00Z"),
	}, now)

	assert.Equal(t, model.MonthlySummary{
		MonthKey: "2022-05",
		Year:     2022,
		Month:    5,

		AccountsCreated:   1,
		AccountsClosed:    1,
		TotalTransactions: 2,
		TotalDebited:      newDecimal("100"),
		TotalCredited:     newDecimal("50"),
		InvalidAttempts:   1,

		LastUpdated: now,
	}, s)
}

// a creation is not a transaction, an invalid attempt moves no money
func TestApplyToCountersAreIndependent(t *testing.T) {
	accountID := uuid.New()
	now := newTime("2022-05-31T12:00:00Z")

	s := NewSummaryFor("2022-05", newTime("2022-05-07T10:00:00Z"))

	ApplyTo(&s, event.AccountCreated{
		AccountID:       accountID,
		StartingBalance: newDecimal("1000"),
		CreatedAt:       newTime("2022-05-07T10:00:00Z"),
	}, now)
	ApplyTo(&s, event.InvalidOperationAttempted{
		AccountID: accountID,
		Time:      newTime("2022-05-07T11:00:00Z"),
	}, now)

	assert.Equal(t, int64(0), s.TotalTransactions)
	assert.Equal(t, "0", s.TotalDebited.String())
	assert.Equal(t, "0", s.TotalCredited.String())
}
