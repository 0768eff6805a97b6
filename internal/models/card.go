package models

// CardType identifies the card network.
type CardType string

const (
	CardVisa       CardType = "VISA"
	CardMastercard CardType = "MASTERCARD"
	CardRupay      CardType = "RUPAY"
)

// Valid reports whether t is a known card network.
func (t CardType) Valid() bool {
	switch t {
	case CardVisa, CardMastercard, CardRupay:
		return true
	}
	return false
}

// CardColors are the display colors a card may be tagged with.
var CardColors = []string{
	"#0D0D0D", // black
	"#1A237E", // midnight blue
	"#4A148C", // purple
	"#1B5E20", // green
	"#E65100", // orange
	"#B71C1C", // dark red
}

// CreditCard holds card metadata in the user's wallet. Cards are independent
// of people and transactions.
//
// The number and CVV are stored as entered; display code is expected to mask
// the number by default.
type CreditCard struct {
	// ID is the unique identifier for the card (UUID format).
	ID string `json:"id"`

	// CardName is the user's label for the card (e.g., "HDFC Salary").
	CardName string `json:"cardName"`

	// CardNumber is the full card number without separators.
	CardNumber string `json:"cardNumber"`

	// CardType is the network: VISA, MASTERCARD or RUPAY.
	CardType CardType `json:"cardType"`

	// NameOnCard is the embossed holder name.
	NameOnCard string `json:"nameOnCard"`

	// Expiry is the expiry in MM/YY form.
	Expiry string `json:"expiry"`

	// CVV is the card verification value.
	CVV string `json:"cvv"`

	// Color is the display color, one of CardColors.
	Color string `json:"color"`

	// CreatedAt is the Unix millisecond timestamp when the card was added.
	CreatedAt int64 `json:"createdAt"`
}
