package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	_ "github.com/go-sql-driver/mysql"

	"github.com/EnnubaBPMN2/marten-bank-sample/config"
	"github.com/EnnubaBPMN2/marten-bank-sample/event"
	"github.com/EnnubaBPMN2/marten-bank-sample/repository"
	"github.com/EnnubaBPMN2/marten-bank-sample/service/ledger"
	"github.com/EnnubaBPMN2/marten-bank-sample/service/summary"
)

func main() {
	rootCmd := cobra.Command{
		Use: "demo",
	}
	rootCmd.AddCommand(
		&cobra.Command{
			Use:   "run",
			Short: "run the bank ledger walkthrough",
			Run: func(cmd *cobra.Command, args []string) {
				runDemo()
			},
		},
	)

	err := rootCmd.Execute()
	if err != nil {
		fmt.Println(err)
	}
}

type demo struct {
	svc    *ledger.Service
	daemon *summary.Daemon
	query  *summary.Query
}

func runDemo() {
	conf := config.Load()
	logger := config.NewLogger(conf.Log)

	db := conf.MySQL.MustConnect()
	provider := repository.NewProvider(db)

	d := &demo{
		svc:    ledger.NewService(provider, logger),
		daemon: summary.NewDaemon(provider, logger),
		query:  summary.NewQuery(provider),
	}
	ctx := context.Background()

	khalidID := uuid.New()
	billID := uuid.New()

	//--------------------------------
	// Create accounts
	//--------------------------------
	mustAppend(d.svc.Append(ctx, khalidID, ledger.AnyVersion, event.AccountCreated{
		AccountID:       khalidID,
		Owner:           "Khalid Abuhakmeh",
		StartingBalance: decimal.NewFromInt(1000),
		CreatedAt:       time.Now().UTC(),
	}))
	mustAppend(d.svc.Append(ctx, billID, ledger.AnyVersion, event.AccountCreated{
		AccountID: billID,
		Owner:     "Bill Boga",
		CreatedAt: time.Now().UTC(),
	}))

	//--------------------------------
	// Transfers
	//--------------------------------
	d.transfer(ctx, khalidID, billID, decimal.NewFromInt(100), "Bill helped me out with some code.")
	d.transfer(ctx, billID, khalidID, decimal.NewFromInt(1000), "Trying to buy that Ferrari")

	fmt.Println()
	fmt.Println("----- Final Balance ------")
	d.printAccounts(ctx, khalidID, billID)

	//--------------------------------
	// Bill withdraws everything, then closes the account
	//--------------------------------
	bill, err := d.svc.Account(ctx, billID)
	if err != nil {
		panic(err)
	}
	if bill.Valid && bill.Account.Balance.IsPositive() {
		fmt.Println()
		fmt.Printf("Bill withdraws his whole balance of %s before closing...\n", bill.Account.Balance)
		d.transfer(ctx, billID, uuid.New(), bill.Account.Balance, "Withdrawal before account closure")
	}

	bill, err = d.svc.Account(ctx, billID)
	if err != nil {
		panic(err)
	}
	if bill.Valid && bill.Account.Balance.IsZero() {
		mustAppend(d.svc.Append(ctx, billID, ledger.AnyVersion, event.AccountClosed{
			AccountID:    billID,
			Reason:       "Customer requested closure - zero balance",
			FinalBalance: bill.Account.Balance,
			ClosedAt:     time.Now().UTC(),
		}))
	}

	fmt.Println()
	fmt.Println("----- Final Balance (Updated) ------")
	d.printAccounts(ctx, khalidID, billID)

	//--------------------------------
	// Ledgers
	//--------------------------------
	d.printLedger(ctx, "Khalid Abuhakmeh", khalidID)
	d.printLedger(ctx, "Bill Boga", billID)

	//--------------------------------
	// Async projection rebuild + monthly report
	//--------------------------------
	fmt.Println()
	fmt.Println("----- Rebuilding Monthly Summary Projection ------")
	err = d.daemon.Rebuild(ctx)
	if err != nil {
		panic(err)
	}

	d.printMonthlySummary(ctx, event.MonthKey(time.Now().UTC()))

	d.demonstrateConcurrency(ctx, khalidID)
	d.demonstrateTimeTravel(ctx, khalidID)
}

func mustAppend(version uint64, err error) uint64 {
	if err != nil {
		panic(err)
	}
	return version
}

// transfer debits from and credits to when funds are sufficient, otherwise
// records the attempt as an invalid operation. The funds check runs against
// the snapshot read here; the append pins that read with its version so a
// concurrent write surfaces as a conflict instead of an overdraft.
func (d *demo) transfer(
	ctx context.Context, from uuid.UUID, to uuid.UUID, amount decimal.Decimal, description string,
) {
	account, err := d.svc.Account(ctx, from)
	if err != nil {
		panic(err)
	}
	version, err := d.svc.CurrentVersion(ctx, from)
	if err != nil {
		panic(err)
	}

	debit := event.AccountDebited{
		From:        from,
		To:          to,
		Amount:      amount,
		Description: description,
		Time:        time.Now().UTC(),
	}

	if account.Valid && account.Account.Balance.GreaterThanOrEqual(amount) {
		mustAppend(d.svc.Append(ctx, from, ledger.Expect(version), debit))

		// only mirror the credit onto accounts this bank knows; a withdrawal
		// to an external destination records just the debit
		destination, err := d.svc.Account(ctx, to)
		if err != nil {
			panic(err)
		}
		if destination.Valid {
			mustAppend(d.svc.Append(ctx, to, ledger.AnyVersion, debit.ToCredit()))
		}
		return
	}

	if account.Valid {
		fmt.Printf("%s has insufficient funds for debit\n", account.Account.Owner)
	} else {
		fmt.Println("debit attempted on an unknown account")
	}
	mustAppend(d.svc.Append(ctx, from, ledger.Expect(version), event.InvalidOperationAttempted{
		AccountID:   from,
		Description: "Overdraft",
		Time:        time.Now().UTC(),
	}))
}

func (d *demo) printAccounts(ctx context.Context, ids ...uuid.UUID) {
	accounts, err := d.svc.Accounts(ctx, ids...)
	if err != nil {
		panic(err)
	}
	for _, account := range accounts {
		status := ""
		if account.Closed {
			status = " [CLOSED]"
		}
		fmt.Printf("%s (%s) : %s%s\n", account.Owner, account.ID, account.Balance, status)
	}
}

func (d *demo) printLedger(ctx context.Context, owner string, streamID uuid.UUID) {
	fmt.Println()
	fmt.Println("Transaction ledger for", owner)

	rows, err := d.svc.FetchStream(ctx, streamID)
	if err != nil {
		panic(err)
	}
	for _, row := range rows {
		e, err := event.Decode(row)
		if err != nil {
			panic(err)
		}
		fmt.Printf("  v%d %s %+v\n", row.Seq, row.CreatedAt.Format(time.RFC3339), e)
	}
}

func (d *demo) printMonthlySummary(ctx context.Context, monthKey string) {
	nullSummary, err := d.query.Summary(ctx, monthKey)
	if err != nil {
		panic(err)
	}

	fmt.Println()
	fmt.Println("----- Monthly Transaction Summary (Async Projection) ------")
	if !nullSummary.Valid {
		fmt.Println("No summary found.")
		return
	}

	s := nullSummary.Summary
	fmt.Printf("Month: %s\n", s.MonthKey)
	fmt.Printf("Accounts Created: %d\n", s.AccountsCreated)
	fmt.Printf("Accounts Closed: %d\n", s.AccountsClosed)
	fmt.Printf("Total Transactions: %d\n", s.TotalTransactions)
	fmt.Printf("Total Debited: %s\n", s.TotalDebited)
	fmt.Printf("Total Credited: %s\n", s.TotalCredited)
	fmt.Printf("Overdraft Attempts: %d\n", s.InvalidAttempts)
	fmt.Printf("Last Updated: %s\n", s.LastUpdated.Format(time.RFC3339))
}

// demonstrateConcurrency walks through two writers racing on the same
// stream: the loser gets a conflict, re-reads, re-validates and retries.
func (d *demo) demonstrateConcurrency(ctx context.Context, accountID uuid.UUID) {
	fmt.Println()
	fmt.Println("===== CONCURRENCY DEMO =====")

	// both users read the same version
	version1, err := d.svc.CurrentVersion(ctx, accountID)
	if err != nil {
		panic(err)
	}
	version2 := version1
	fmt.Printf("User 1 and User 2 both read version %d\n", version1)

	// user 1 deposits against that version and wins
	credit := event.AccountCredited{
		From:        accountID,
		To:          accountID,
		Amount:      decimal.NewFromInt(50),
		Description: "User 1 deposit",
		Time:        time.Now().UTC(),
	}
	mustAppend(d.svc.Append(ctx, accountID, ledger.Expect(version1), credit))
	fmt.Println("User 1: transaction succeeded")

	// user 2 withdraws against the now-stale version and loses
	debit := event.AccountDebited{
		From:        accountID,
		To:          uuid.New(),
		Amount:      decimal.NewFromInt(25),
		Description: "User 2 withdrawal",
		Time:        time.Now().UTC(),
	}
	_, err = d.svc.Append(ctx, accountID, ledger.Expect(version2), debit)

	var conflict *ledger.ConflictError
	if !errors.As(err, &conflict) {
		panic(err)
	}
	fmt.Printf("User 2: CONCURRENCY CONFLICT! expected %d, actual %d\n",
		conflict.Expected, conflict.Actual)

	// retry: re-read the stream, re-validate the funds, append again
	fmt.Println("User 2: retrying with fresh state...")
	fresh, err := d.svc.Account(ctx, accountID)
	if err != nil {
		panic(err)
	}
	freshVersion, err := d.svc.CurrentVersion(ctx, accountID)
	if err != nil {
		panic(err)
	}
	fmt.Printf("New version: %d, new balance: %s\n", freshVersion, fresh.Account.Balance)

	if fresh.Valid && fresh.Account.Balance.GreaterThanOrEqual(debit.Amount) {
		mustAppend(d.svc.Append(ctx, accountID, ledger.Expect(freshVersion), debit))
		fmt.Println("User 2: retry succeeded")
	}

	fmt.Println("===== END CONCURRENCY DEMO =====")
}

func (d *demo) demonstrateTimeTravel(ctx context.Context, accountID uuid.UUID) {
	fmt.Println()
	fmt.Println("===== TIME TRAVEL DEMO =====")

	rows, err := d.svc.FetchStream(ctx, accountID)
	if err != nil {
		panic(err)
	}
	fmt.Printf("Total events in the stream: %d\n", len(rows))

	fmt.Println()
	fmt.Println("--- State by Version ---")
	for _, row := range rows {
		state, err := d.svc.StateAtVersion(ctx, accountID, row.Seq)
		if err != nil {
			panic(err)
		}
		if !state.Valid {
			continue
		}
		fmt.Printf("v%d @ %s balance=%s closed=%v\n",
			row.Seq, row.CreatedAt.Format(time.RFC3339),
			state.Account.Balance, state.Account.Closed)
	}

	if len(rows) >= 3 {
		target := rows[2].CreatedAt
		fmt.Println()
		fmt.Printf("--- State at %s ---\n", target.Format(time.RFC3339))

		state, err := d.svc.StateAtTime(ctx, accountID, target)
		if err != nil {
			panic(err)
		}
		if state.Valid {
			fmt.Printf("Owner: %s, balance at that time: %s\n",
				state.Account.Owner, state.Account.Balance)
		}
	}

	fmt.Println()
	fmt.Println("--- Historical Maximum Balance ---")
	point, ok, err := d.svc.MaxBalance(ctx, accountID)
	if err != nil {
		panic(err)
	}
	if ok {
		fmt.Printf("Max balance: %s, first reached at version %d (%s)\n",
			point.Balance, point.Version, point.At.Format(time.RFC3339))
	}

	fmt.Println("===== END TIME TRAVEL DEMO =====")
}
