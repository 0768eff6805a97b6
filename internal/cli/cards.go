package cli

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/google/subcommands"

	"github.com/mmynk/debtfree/internal/models"
)

// maskCardNumber hides the middle digits: "4111111111111111" becomes
// "4111 **** **** 1111". Short or oddly formatted numbers come back as-is.
func maskCardNumber(number string) string {
	digits := strings.ReplaceAll(number, " ", "")
	if len(digits) < 8 {
		return number
	}
	return digits[:4] + " **** **** " + digits[len(digits)-4:]
}

type addCardCmd struct {
	name     string
	number   string
	cardType string
	holder   string
	expiry   string
	cvv      string
	color    string
}

func (*addCardCmd) Name() string     { return "add-card" }
func (*addCardCmd) Synopsis() string { return "save a credit card to the wallet" }
func (*addCardCmd) Usage() string {
	return `add-card -name <label> -number <number> -type <VISA|MASTERCARD|RUPAY> [-holder <name>] [-expiry <MM/YY>] [-cvv <cvv>] [-color <hex>]

  Saves a card. Numbers are shown masked by the cards command unless
  -full is passed.
`
}

func (c *addCardCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.name, "name", "", "Card label, e.g. Everyday (required)")
	f.StringVar(&c.number, "number", "", "Card number (required)")
	f.StringVar(&c.cardType, "type", "", "Card network: VISA, MASTERCARD or RUPAY (required)")
	f.StringVar(&c.holder, "holder", "", "Name on the card")
	f.StringVar(&c.expiry, "expiry", "", "Expiry, MM/YY")
	f.StringVar(&c.cvv, "cvv", "", "CVV")
	f.StringVar(&c.color, "color", "", "Display color, hex (default: picked from the palette)")
}

func (c *addCardCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.name == "" || c.number == "" || c.cardType == "" {
		return usageError("-name, -number and -type are required")
	}
	l, closeStore, err := openLedger(ctx)
	if err != nil {
		return fail(err)
	}
	defer closeStore()

	card, err := l.AddCard(ctx, models.CreditCard{
		CardName:   c.name,
		CardNumber: c.number,
		CardType:   models.CardType(strings.ToUpper(c.cardType)),
		NameOnCard: c.holder,
		Expiry:     c.expiry,
		CVV:        c.cvv,
		Color:      c.color,
	})
	if err != nil {
		return fail(err)
	}
	fmt.Printf("Added %s %s (%s)\n", card.CardName, maskCardNumber(card.CardNumber), card.ID)
	return subcommands.ExitSuccess
}

type cardsCmd struct {
	full bool
}

func (*cardsCmd) Name() string     { return "cards" }
func (*cardsCmd) Synopsis() string { return "list saved cards" }
func (*cardsCmd) Usage() string {
	return `cards [-full]

  Lists saved cards with masked numbers. -full reveals full numbers
  and CVVs.
`
}

func (c *cardsCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.full, "full", false, "Show full card numbers and CVVs")
}

func (c *cardsCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	l, closeStore, err := openLedger(ctx)
	if err != nil {
		return fail(err)
	}
	defer closeStore()

	cards := l.Cards()
	if len(cards) == 0 {
		fmt.Println("No cards yet. Add one with add-card.")
		return subcommands.ExitSuccess
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tNUMBER\tTYPE\tEXPIRY")
	for _, card := range cards {
		number := maskCardNumber(card.CardNumber)
		if c.full {
			number = card.CardNumber
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", card.ID, card.CardName, number, card.CardType, card.Expiry)
		if c.full && card.CVV != "" {
			fmt.Fprintf(w, "\t\tCVV %s\t\t\n", card.CVV)
		}
	}
	w.Flush()
	return subcommands.ExitSuccess
}

type rmCardCmd struct {
	id string
}

func (*rmCardCmd) Name() string     { return "rm-card" }
func (*rmCardCmd) Synopsis() string { return "remove a saved card" }
func (*rmCardCmd) Usage() string {
	return "rm-card -id <card>\n\n  Removes a card from the wallet.\n"
}

func (c *rmCardCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.id, "id", "", "Card id (required)")
}

func (c *rmCardCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.id == "" {
		return usageError("-id is required")
	}
	l, closeStore, err := openLedger(ctx)
	if err != nil {
		return fail(err)
	}
	defer closeStore()

	if err := l.RemoveCard(ctx, c.id); err != nil {
		return fail(err)
	}
	fmt.Println("Removed", c.id)
	return subcommands.ExitSuccess
}
