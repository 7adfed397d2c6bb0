package brackets

import (
	"sort"

	"github.com/pdralston/puttingLeague/models"
)

// Placement is one team's final finishing position.
type Placement struct {
	TeamID int
	Place  int
}

// Payout is the split of a tournament's cash pot between the top two teams.
// Amounts are whole dollars.
type Payout struct {
	Pot    int
	First  int
	Second int
}

const (
	buyInPerPlayer  = 5
	firstPlaceFloor = 20
)

// ComputePayout splits the pot built from each player's buy-in. Second place
// is capped so first never drops below the floor, and capped again at first's
// share for big fields so the split converges on even money.
func ComputePayout(teamCount int) Payout {
	pot := buyInPerPlayer * teamCount * 2
	var second int
	if pot < 3*firstPlaceFloor {
		second = min(10, pot-firstPlaceFloor)
	} else {
		second = min(40, pot-2*firstPlaceFloor)
	}
	if second < 0 {
		second = 0
	}
	return Payout{Pot: pot, First: pot - second, Second: second}
}

// SeasonalPoints returns the league points awarded for a finishing place.
// Everyone below fourth gets participation points.
func SeasonalPoints(place int) int {
	switch place {
	case 1:
		return 10
	case 2:
		return 8
	case 3:
		return 6
	case 4:
		return 4
	default:
		return 2
	}
}

// FinalPlacements derives every team's finishing position from a fully played
// bracket. First and second come from the deciding championship match; the
// rest are ordered by how late their eliminating match sits in match_order.
func FinalPlacements(b *Bracket) ([]Placement, error) {
	if !b.Exhausted() {
		return nil, ErrBracketIncomplete
	}
	champ := b.championship()
	if len(champ) == 0 {
		return nil, ErrBracketIncomplete
	}
	deciding := champ[len(champ)-1]
	winner := deciding.WinnerTeamID()
	loser := deciding.LoserTeamID()
	if winner == nil || loser == nil {
		return nil, ErrBracketIncomplete
	}

	placements := []Placement{
		{TeamID: *winner, Place: 1},
		{TeamID: *loser, Place: 2},
	}
	top := map[int]bool{*winner: true, *loser: true}

	// Every other team went out in exactly one match: a completed loss with
	// no losers-bracket destination. Later match_order means a deeper run.
	type exit struct {
		teamID int
		order  int
	}
	var exits []exit
	for _, m := range b.ordered {
		if m.Side == models.SideChampionship || m.Status != models.MatchCompleted {
			continue
		}
		if m.LoserTo != nil {
			continue
		}
		l := m.LoserTeamID()
		if l == nil || top[*l] {
			continue
		}
		exits = append(exits, exit{teamID: *l, order: m.Order})
	}
	sort.Slice(exits, func(i, j int) bool { return exits[i].order > exits[j].order })
	for i, e := range exits {
		placements = append(placements, Placement{TeamID: e.teamID, Place: i + 3})
	}
	return placements, nil
}

// Undefeated reports whether a team never lost a contested match. Bye wins
// do not count either way; only matches with a real opponent do.
func Undefeated(b *Bracket, teamID int) bool {
	played := false
	for _, m := range b.ordered {
		if m.Status != models.MatchCompleted || !m.HasTeam(teamID) {
			continue
		}
		if m.Team1ID == nil || m.Team2ID == nil {
			continue
		}
		played = true
		if l := m.LoserTeamID(); l != nil && *l == teamID {
			return false
		}
	}
	return played
}
