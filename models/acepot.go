package models

import "time"

// AcePotEntry is one signed movement in the ace-pot ledger: buy-ins are
// positive, payouts negative. The running balance is the prefix sum in
// chronological order.
type AcePotEntry struct {
	ID           int       `json:"ace_pot_id" db:"ace_pot_id"`
	TournamentID *int      `json:"tournament_id,omitempty" db:"tournament_id"`
	Date         time.Time `json:"date" db:"date"`
	Description  string    `json:"description" db:"description"`
	Amount       int       `json:"amount" db:"amount"`

	// Balance after this entry, derived when listing the ledger.
	Balance int `json:"balance" db:"-"`
}
