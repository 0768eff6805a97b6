package cli

import (
	"context"
	"flag"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/google/subcommands"

	"github.com/mmynk/debtfree/internal/calculator"
)

type addPersonCmd struct {
	name  string
	phone string
	notes string
}

func (*addPersonCmd) Name() string     { return "add-person" }
func (*addPersonCmd) Synopsis() string { return "add a person to track debts with" }
func (*addPersonCmd) Usage() string {
	return `add-person -name <name> [-phone <phone>] [-notes <notes>]

  Adds a person. Transactions are always recorded against a person.
`
}

func (c *addPersonCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.name, "name", "", "Person's name (required)")
	f.StringVar(&c.phone, "phone", "", "Phone number")
	f.StringVar(&c.notes, "notes", "", "Free-form notes")
}

func (c *addPersonCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.name == "" {
		return usageError("-name is required")
	}
	l, closeStore, err := openLedger(ctx)
	if err != nil {
		return fail(err)
	}
	defer closeStore()

	p, err := l.AddPerson(ctx, c.name, c.phone, c.notes)
	if err != nil {
		return fail(err)
	}
	fmt.Printf("Added %s (%s)\n", p.Name, p.ID)
	return subcommands.ExitSuccess
}

type peopleCmd struct{}

func (*peopleCmd) Name() string     { return "people" }
func (*peopleCmd) Synopsis() string { return "list people with their balances" }
func (*peopleCmd) Usage() string {
	return "people\n\n  Lists every person with the net balance against them.\n"
}
func (*peopleCmd) SetFlags(_ *flag.FlagSet) {}

func (c *peopleCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	l, closeStore, err := openLedger(ctx)
	if err != nil {
		return fail(err)
	}
	defer closeStore()

	people := l.People()
	if len(people) == 0 {
		fmt.Println("No people yet. Add one with add-person.")
		return subcommands.ExitSuccess
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tBALANCE\tSTATUS")
	for _, p := range people {
		balance := l.PersonBalance(p.ID)
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
			p.ID, p.Name, balance.Abs().StringFixed(2), calculator.BalanceStatus(balance))
	}
	w.Flush()
	return subcommands.ExitSuccess
}

type rmPersonCmd struct {
	id string
}

func (*rmPersonCmd) Name() string     { return "rm-person" }
func (*rmPersonCmd) Synopsis() string { return "remove a person and all their transactions" }
func (*rmPersonCmd) Usage() string {
	return `rm-person -id <person>

  Removes a person. Their transactions and edit history go with them.
`
}

func (c *rmPersonCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.id, "id", "", "Person id or name (required)")
}

func (c *rmPersonCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.id == "" {
		return usageError("-id is required")
	}
	l, closeStore, err := openLedger(ctx)
	if err != nil {
		return fail(err)
	}
	defer closeStore()

	id, err := findPerson(l, c.id)
	if err != nil {
		return fail(err)
	}
	if err := l.RemovePerson(ctx, id); err != nil {
		return fail(err)
	}
	fmt.Println("Removed", id)
	return subcommands.ExitSuccess
}
