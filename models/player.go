package models

// Division groups players for seasonal standings, matching the ENUM in the DB.
type Division string

const (
	DivisionPro    Division = "Pro"
	DivisionAm     Division = "Am"
	DivisionJunior Division = "Junior"
)

func (d Division) Valid() bool {
	switch d {
	case DivisionPro, DivisionAm, DivisionJunior:
		return true
	}
	return false
}

// Player identity is immutable; the seasonal totals are updated only by the
// standings calculator after a tournament completes.
type Player struct {
	ID             int      `json:"player_id" db:"player_id"`
	Name           string   `json:"player_name" db:"player_name"`
	Nickname       *string  `json:"nickname,omitempty" db:"nickname"`
	Division       Division `json:"division" db:"division"`
	SeasonalPoints int      `json:"seasonal_points" db:"seasonal_points"`
	SeasonalCash   int      `json:"seasonal_cash" db:"seasonal_cash"`
}

// DisplayName prefers the nickname when one is set.
func (p *Player) DisplayName() string {
	if p == nil {
		return ""
	}
	if p.Nickname != nil && *p.Nickname != "" {
		return *p.Nickname
	}
	return p.Name
}

// Registration ties a player to a tournament along with their ace-pot buy-in.
type Registration struct {
	TournamentID int  `json:"tournament_id" db:"tournament_id"`
	PlayerID     int  `json:"player_id" db:"player_id"`
	BoughtAcePot bool `json:"bought_ace_pot" db:"bought_ace_pot"`

	Player *Player `json:"player,omitempty" db:"-"`
}
