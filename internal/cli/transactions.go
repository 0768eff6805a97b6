package cli

import (
	"context"
	"flag"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/google/subcommands"
	"github.com/shopspring/decimal"

	"github.com/mmynk/debtfree/internal/calculator"
	"github.com/mmynk/debtfree/internal/models"
)

// recordTxCmd is shared by lend and borrowed, which differ only in the
// direction they record.
type recordTxCmd struct {
	direction models.Direction
	person    string
	amount    string
	note      string
}

func (c *recordTxCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.person, "person", "", "Person id or name (required)")
	f.StringVar(&c.amount, "amount", "", "Amount, e.g. 120.50 (required)")
	f.StringVar(&c.note, "note", "", "What the money was for")
}

func (c *recordTxCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.person == "" || c.amount == "" {
		return usageError("-person and -amount are required")
	}
	amount, err := decimal.NewFromString(c.amount)
	if err != nil {
		return usageError(fmt.Sprintf("bad amount %q: %v", c.amount, err))
	}

	l, closeStore, err := openLedger(ctx)
	if err != nil {
		return fail(err)
	}
	defer closeStore()

	personID, err := findPerson(l, c.person)
	if err != nil {
		return fail(err)
	}
	tx, err := l.AddTransaction(ctx, personID, amount, c.direction, c.note)
	if err != nil {
		return fail(err)
	}
	fmt.Printf("Recorded %s %s (%s)\n", c.direction, tx.Amount.StringFixed(2), tx.ID)
	return subcommands.ExitSuccess
}

type lendCmd struct{ recordTxCmd }

func (*lendCmd) Name() string     { return "lend" }
func (*lendCmd) Synopsis() string { return "record money you lent to someone" }
func (*lendCmd) Usage() string {
	return "lend -person <person> -amount <amount> [-note <note>]\n\n  Records money you lent.\n"
}

func (c *lendCmd) Execute(ctx context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	c.direction = models.YouLent
	return c.recordTxCmd.Execute(ctx, f, args...)
}

type borrowedCmd struct{ recordTxCmd }

func (*borrowedCmd) Name() string     { return "borrowed" }
func (*borrowedCmd) Synopsis() string { return "record money you borrowed from someone" }
func (*borrowedCmd) Usage() string {
	return "borrowed -person <person> -amount <amount> [-note <note>]\n\n  Records money you borrowed.\n"
}

func (c *borrowedCmd) Execute(ctx context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	c.direction = models.YouBorrowed
	return c.recordTxCmd.Execute(ctx, f, args...)
}

type editTxCmd struct {
	id        string
	amount    string
	direction string
	note      string
}

func (*editTxCmd) Name() string     { return "edit-tx" }
func (*editTxCmd) Synopsis() string { return "edit a transaction, archiving the previous values" }
func (*editTxCmd) Usage() string {
	return `edit-tx -id <transaction> -amount <amount> -direction <YOU_LENT|YOU_BORROWED> [-note <note>]

  Replaces a transaction's amount, direction and note. The previous
  values are archived and stay visible through the history command.
`
}

func (c *editTxCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.id, "id", "", "Transaction id (required)")
	f.StringVar(&c.amount, "amount", "", "New amount (required)")
	f.StringVar(&c.direction, "direction", "", "New direction: YOU_LENT or YOU_BORROWED (required)")
	f.StringVar(&c.note, "note", "", "New note")
}

func (c *editTxCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.id == "" || c.amount == "" || c.direction == "" {
		return usageError("-id, -amount and -direction are required")
	}
	amount, err := decimal.NewFromString(c.amount)
	if err != nil {
		return usageError(fmt.Sprintf("bad amount %q: %v", c.amount, err))
	}

	l, closeStore, err := openLedger(ctx)
	if err != nil {
		return fail(err)
	}
	defer closeStore()

	tx, err := l.UpdateTransaction(ctx, c.id, amount, models.Direction(c.direction), c.note)
	if err != nil {
		return fail(err)
	}
	fmt.Printf("Updated %s: %s %s\n", tx.ID, tx.Direction, tx.Amount.StringFixed(2))
	return subcommands.ExitSuccess
}

type rmTxCmd struct {
	id string
}

func (*rmTxCmd) Name() string     { return "rm-tx" }
func (*rmTxCmd) Synopsis() string { return "remove a transaction and its edit history" }
func (*rmTxCmd) Usage() string {
	return "rm-tx -id <transaction>\n\n  Removes a transaction. Its edit history goes with it.\n"
}

func (c *rmTxCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.id, "id", "", "Transaction id (required)")
}

func (c *rmTxCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.id == "" {
		return usageError("-id is required")
	}
	l, closeStore, err := openLedger(ctx)
	if err != nil {
		return fail(err)
	}
	defer closeStore()

	if err := l.RemoveTransaction(ctx, c.id); err != nil {
		return fail(err)
	}
	fmt.Println("Removed", c.id)
	return subcommands.ExitSuccess
}

type historyCmd struct {
	person string
	tx     string
}

func (*historyCmd) Name() string     { return "history" }
func (*historyCmd) Synopsis() string { return "show transactions for a person, or edits of one transaction" }
func (*historyCmd) Usage() string {
	return `history -person <person> | -tx <transaction>

  With -person, lists the person's transactions, newest first.
  With -tx, lists the archived previous values of one transaction.
`
}

func (c *historyCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.person, "person", "", "Person id or name")
	f.StringVar(&c.tx, "tx", "", "Transaction id")
}

func (c *historyCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if (c.person == "") == (c.tx == "") {
		return usageError("exactly one of -person or -tx is required")
	}
	l, closeStore, err := openLedger(ctx)
	if err != nil {
		return fail(err)
	}
	defer closeStore()

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	defer w.Flush()

	if c.tx != "" {
		entries, err := l.TransactionHistory(ctx, c.tx)
		if err != nil {
			return fail(err)
		}
		if len(entries) == 0 {
			fmt.Println("No edits recorded.")
			return subcommands.ExitSuccess
		}
		fmt.Fprintln(w, "CHANGED\tWAS AMOUNT\tWAS DIRECTION\tWAS NOTE")
		for _, h := range entries {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
				formatMillis(h.ChangedAt), h.PreviousAmount.StringFixed(2), h.PreviousDirection, h.PreviousNote)
		}
		return subcommands.ExitSuccess
	}

	personID, err := findPerson(l, c.person)
	if err != nil {
		return fail(err)
	}
	txs := l.PersonTransactions(personID)
	if len(txs) == 0 {
		fmt.Println("No transactions yet.")
		return subcommands.ExitSuccess
	}
	fmt.Fprintln(w, "ID\tDATE\tDIRECTION\tAMOUNT\tNOTE")
	for _, tx := range txs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			tx.ID, formatMillis(tx.Date), tx.Direction, tx.Amount.StringFixed(2), tx.Note)
	}
	return subcommands.ExitSuccess
}

type balanceCmd struct {
	person string
}

func (*balanceCmd) Name() string     { return "balance" }
func (*balanceCmd) Synopsis() string { return "show overall totals, or one person's balance" }
func (*balanceCmd) Usage() string {
	return `balance [-person <person>]

  Without flags, shows the global position: total lent, total borrowed
  and the net. With -person, shows the balance against that person.
`
}

func (c *balanceCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.person, "person", "", "Person id or name")
}

func (c *balanceCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	l, closeStore, err := openLedger(ctx)
	if err != nil {
		return fail(err)
	}
	defer closeStore()

	if c.person != "" {
		personID, err := findPerson(l, c.person)
		if err != nil {
			return fail(err)
		}
		p, err := l.Person(personID)
		if err != nil {
			return fail(err)
		}
		balance := l.PersonBalance(personID)
		fmt.Printf("%s: %s %s\n", p.Name, calculator.BalanceStatus(balance), balance.Abs().StringFixed(2))
		return subcommands.ExitSuccess
	}

	totals := l.Totals()
	fmt.Printf("Lent:     %s\n", totals.Lent.StringFixed(2))
	fmt.Printf("Borrowed: %s\n", totals.Borrowed.StringFixed(2))
	fmt.Printf("Net:      %s %s\n", calculator.BalanceStatus(totals.Global), totals.Global.Abs().StringFixed(2))
	return subcommands.ExitSuccess
}

func formatMillis(ms int64) string {
	return time.UnixMilli(ms).Format("2006-01-02 15:04")
}
