package models

// Person represents someone the user owes money to or is owed money by.
type Person struct {
	// ID is the unique identifier for the person (UUID format).
	ID string `json:"id"`

	// Name is the display name of the person.
	Name string `json:"name"`

	// Phone is an optional phone number.
	Phone string `json:"phone"`

	// Notes is free-form text about the person.
	Notes string `json:"notes"`

	// CreatedAt is the Unix millisecond timestamp when the person was added.
	CreatedAt int64 `json:"createdAt"`
}
