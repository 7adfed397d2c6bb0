package models

import "fmt"

// Team pairs two players for one tournament. A ghost team has a single player
// and balances an odd registration count. FinalPlace is the only field
// mutated after creation (standings calculator or admin override).
type Team struct {
	ID           int  `json:"team_id" db:"team_id"`
	TournamentID int  `json:"tournament_id" db:"tournament_id"`
	Player1ID    int  `json:"player1_id" db:"player1_id"`
	Player2ID    *int `json:"player2_id,omitempty" db:"player2_id"`
	IsGhostTeam  bool `json:"is_ghost_team" db:"is_ghost_team"`
	SeedNumber   int  `json:"seed_number" db:"seed_number"`
	FinalPlace   *int `json:"final_place,omitempty" db:"final_place"`
	PointsEarned int  `json:"points_earned" db:"points_earned"`

	Player1 *Player `json:"player1,omitempty" db:"-"`
	Player2 *Player `json:"player2,omitempty" db:"-"`
}

// DisplayName renders "A & B" for a pair and the lone player's name for a
// ghost team. Falls back to ids when player rows were not loaded.
func (t *Team) DisplayName() string {
	p1 := t.Player1.DisplayName()
	if p1 == "" {
		p1 = fmt.Sprintf("Player %d", t.Player1ID)
	}
	if t.Player2ID == nil {
		return p1
	}
	p2 := t.Player2.DisplayName()
	if p2 == "" {
		p2 = fmt.Sprintf("Player %d", *t.Player2ID)
	}
	return p1 + " & " + p2
}
