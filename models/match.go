package models

// MatchStatus values match the ENUM in the DB. Status moves forward only,
// except for the administrative correction path which re-scores a Completed
// match.
type MatchStatus string

const (
	MatchPending    MatchStatus = "Pending"
	MatchScheduled  MatchStatus = "Scheduled"
	MatchInProgress MatchStatus = "In_Progress"
	MatchCompleted  MatchStatus = "Completed"
)

// StageType partitions large fields into two preliminary groups feeding a
// combined finals stage. Small fields play entirely in StageFinals.
type StageType string

const (
	StageGroupA StageType = "Group_A"
	StageGroupB StageType = "Group_B"
	StageFinals StageType = "Finals"
)

// BracketSide is the Winners/Losers/Championship partition of the match DAG.
type BracketSide string

const (
	SideWinners      BracketSide = "Winners"
	SideLosers       BracketSide = "Losers"
	SideChampionship BracketSide = "Championship"
)

// Match is a node in the tournament's match DAG. Match ids are scoped to the
// tournament (composite key in the DB) and assigned at generation time, so
// advancement edges can be written in the same pass that creates the rows.
// WinnerTo/LoserTo are id references, never pointers; nil WinnerTo marks a
// terminal match and nil LoserTo means the loser is eliminated.
type Match struct {
	ID           int         `json:"match_id" db:"match_id"`
	TournamentID int         `json:"tournament_id" db:"tournament_id"`
	Stage        StageType   `json:"stage_type" db:"stage_type"`
	Side         BracketSide `json:"bracket_side" db:"bracket_side"`
	Round        int         `json:"round_number" db:"round_number"`
	Position     int         `json:"position_in_round" db:"position_in_round"`
	Order        int         `json:"match_order" db:"match_order"`
	Team1ID      *int        `json:"team1_id,omitempty" db:"team1_id"`
	Team2ID      *int        `json:"team2_id,omitempty" db:"team2_id"`
	Team1Score   *int        `json:"team1_score,omitempty" db:"team1_score"`
	Team2Score   *int        `json:"team2_score,omitempty" db:"team2_score"`
	Status       MatchStatus `json:"match_status" db:"match_status"`
	StationID    *int        `json:"station_id,omitempty" db:"station_id"`
	WinnerTo     *int        `json:"winner_advances_to_match_id,omitempty" db:"winner_advances_to_match_id"`
	LoserTo      *int        `json:"loser_advances_to_match_id,omitempty" db:"loser_advances_to_match_id"`

	// Derived display names for unresolved slots, filled by the engine for
	// bracket snapshots. Never persisted.
	Team1Label string `json:"team1_label,omitempty" db:"-"`
	Team2Label string `json:"team2_label,omitempty" db:"-"`
}

func (m *Match) Scored() bool {
	return m.Team1Score != nil && m.Team2Score != nil
}

// WinnerTeamID derives the winner from the recorded scores. Nil until the
// match is scored; a bye stores 1-0 for its lone team.
func (m *Match) WinnerTeamID() *int {
	if !m.Scored() {
		return nil
	}
	if *m.Team1Score > *m.Team2Score {
		return m.Team1ID
	}
	return m.Team2ID
}

func (m *Match) LoserTeamID() *int {
	if !m.Scored() {
		return nil
	}
	if *m.Team1Score > *m.Team2Score {
		return m.Team2ID
	}
	return m.Team1ID
}

// HasTeam reports whether teamID occupies either slot.
func (m *Match) HasTeam(teamID int) bool {
	return (m.Team1ID != nil && *m.Team1ID == teamID) ||
		(m.Team2ID != nil && *m.Team2ID == teamID)
}
