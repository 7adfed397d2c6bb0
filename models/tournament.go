package models

import "time"

// TournamentStatus values match the ENUM in the DB.
type TournamentStatus string

const (
	TournamentScheduled  TournamentStatus = "Scheduled"
	TournamentInProgress TournamentStatus = "In_Progress"
	TournamentCompleted  TournamentStatus = "Completed"
	TournamentCancelled  TournamentStatus = "Cancelled"
)

// Tournament owns its teams and matches for its lifetime; deleting a
// tournament deletes both. AcePotPayout is the rolled-up amount paid out of
// the ace pot when the tournament completed (zero when none was paid).
type Tournament struct {
	ID           int              `json:"tournament_id" db:"tournament_id"`
	Date         time.Time        `json:"tournament_date" db:"tournament_date"`
	Status       TournamentStatus `json:"status" db:"status"`
	TotalTeams   int              `json:"total_teams" db:"total_teams"`
	AcePotPayout int              `json:"ace_pot_payout" db:"ace_pot_payout"`
}
