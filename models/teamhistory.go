package models

// TeamHistory tracks how often two players have been paired and how they
// placed together. Stored symmetrically, one row per direction.
type TeamHistory struct {
	PlayerID     int     `json:"player_id" db:"player_id"`
	TeammateID   int     `json:"teammate_id" db:"teammate_id"`
	TimesPaired  int     `json:"times_paired" db:"times_paired"`
	AveragePlace float64 `json:"average_place" db:"average_place"`
}
