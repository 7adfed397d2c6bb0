package brackets

import (
	"github.com/pdralston/puttingLeague/models"
)

// Fields of this size or larger are split into two preliminary groups whose
// survivors meet in a combined finals stage.
const multiStageThreshold = 12

// GenerateParams carries the seeded teams for one tournament, ordered by seed.
type GenerateParams struct {
	TournamentID int
	Teams        []*models.Team
}

// Generate builds the full double-elimination match DAG: winners bracket with
// standard seeding (byes to top seeds), losers bracket in the conventional
// alternating cross pattern, and for large fields two group brackets
// cross-wired into a four-slot finals stage. The championship stage is not
// generated here; it is created lazily once both bracket survivors are known.
//
// Match ids and the global match_order are assigned sequentially so that
// every match orders after all of its feeders.
func Generate(params GenerateParams) ([]*models.Match, error) {
	n := len(params.Teams)
	if n < 2 {
		return nil, ErrInvalidTeamCount
	}

	g := &builder{tournamentID: params.TournamentID, nextID: 1, nextOrder: 1}

	if n < multiStageThreshold {
		g.buildStage(models.StageFinals, params.Teams)
	} else {
		mid := n / 2
		aOut := g.buildStage(models.StageGroupA, params.Teams[:mid])
		bOut := g.buildStage(models.StageGroupB, params.Teams[mid:])
		g.buildFinals(aOut, bOut)
	}

	if err := detectCycle(g.matches); err != nil {
		return nil, err
	}
	return g.matches, nil
}

type builder struct {
	tournamentID int
	nextID       int
	nextOrder    int
	matches      []*models.Match
}

// stageOutlets are the terminal matches of a generated stage. losersFinal is
// nil for a two-team stage, which has no losers bracket.
type stageOutlets struct {
	winnersFinal *models.Match
	losersFinal  *models.Match
}

func (g *builder) newMatch(stage models.StageType, side models.BracketSide, round, position int) *models.Match {
	m := &models.Match{
		ID:           g.nextID,
		TournamentID: g.tournamentID,
		Stage:        stage,
		Side:         side,
		Round:        round,
		Position:     position,
		Order:        g.nextOrder,
		Status:       models.MatchPending,
	}
	g.nextID++
	g.nextOrder++
	g.matches = append(g.matches, m)
	return m
}

// buildStage generates a complete double-elimination bracket (winners +
// losers, no championship) for the given seeded teams.
func (g *builder) buildStage(stage models.StageType, teams []*models.Team) stageOutlets {
	n := len(teams)
	size := 1
	rounds := 0
	for size < n {
		size <<= 1
		rounds++
	}
	winners := make([][]*models.Match, rounds)
	for r := 1; r <= rounds; r++ {
		count := size >> r
		winners[r-1] = make([]*models.Match, count)
		for i := 0; i < count; i++ {
			winners[r-1][i] = g.newMatch(stage, models.SideWinners, r, i+1)
		}
	}

	// Seed round one. The folded slot order pairs 1 vs size, so byes land on
	// the top seeds and slot one always holds a real team.
	slots := seedSlots(size)
	for i, m := range winners[0] {
		if s := slots[2*i]; s <= n {
			id := teams[s-1].ID
			m.Team1ID = &id
		}
		if s := slots[2*i+1]; s <= n {
			id := teams[s-1].ID
			m.Team2ID = &id
		}
		m.Status = models.MatchScheduled
	}

	for r := 0; r < rounds-1; r++ {
		for i, m := range winners[r] {
			m.WinnerTo = ref(winners[r+1][i/2].ID)
		}
	}

	if rounds < 2 {
		return stageOutlets{winnersFinal: winners[rounds-1][0]}
	}

	// Losers bracket: pairs of rounds per winners round. The odd (minor)
	// round pairs up survivors of the losers bracket; the even (major) round
	// drops in the next winners round's losers, reversing the order every
	// other time to push rematches as late as possible.
	losers := make([][]*models.Match, 2*(rounds-1))
	for j := 1; j <= rounds-1; j++ {
		count := size >> (j + 1)
		for _, round := range []int{2*j - 1, 2 * j} {
			losers[round-1] = make([]*models.Match, count)
			for i := 0; i < count; i++ {
				losers[round-1][i] = g.newMatch(stage, models.SideLosers, round, i+1)
			}
		}
	}

	for j := 1; j <= rounds-1; j++ {
		minor := losers[2*j-2]
		major := losers[2*j-1]

		if j == 1 {
			for i, m := range minor {
				winners[0][2*i].LoserTo = ref(m.ID)
				winners[0][2*i+1].LoserTo = ref(m.ID)
			}
		} else {
			prev := losers[2*j-3]
			for i, m := range minor {
				prev[2*i].WinnerTo = ref(m.ID)
				prev[2*i+1].WinnerTo = ref(m.ID)
			}
		}

		for i, m := range major {
			minor[i].WinnerTo = ref(m.ID)
			drop := winners[j][i]
			if j%2 == 1 {
				drop = winners[j][len(major)-1-i]
			}
			drop.LoserTo = ref(m.ID)
		}
	}

	return stageOutlets{
		winnersFinal: winners[rounds-1][0],
		losersFinal:  losers[2*(rounds-1)-1][0],
	}
}

// buildFinals creates the four-slot finals stage for a multi-stage field and
// cross-wires the group survivors into it: each group's winners champion
// faces the other group's losers champion.
func (g *builder) buildFinals(a, b stageOutlets) stageOutlets {
	w1 := g.newMatch(models.StageFinals, models.SideWinners, 1, 1)
	w2 := g.newMatch(models.StageFinals, models.SideWinners, 1, 2)
	wf := g.newMatch(models.StageFinals, models.SideWinners, 2, 1)
	l1 := g.newMatch(models.StageFinals, models.SideLosers, 1, 1)
	lf := g.newMatch(models.StageFinals, models.SideLosers, 2, 1)

	w1.WinnerTo, w1.LoserTo = ref(wf.ID), ref(l1.ID)
	w2.WinnerTo, w2.LoserTo = ref(wf.ID), ref(l1.ID)
	wf.LoserTo = ref(lf.ID)
	l1.WinnerTo = ref(lf.ID)

	a.winnersFinal.WinnerTo = ref(w1.ID)
	b.losersFinal.WinnerTo = ref(w1.ID)
	b.winnersFinal.WinnerTo = ref(w2.ID)
	a.losersFinal.WinnerTo = ref(w2.ID)

	return stageOutlets{winnersFinal: wf, losersFinal: lf}
}

// Championship creates the first championship match once every other match is
// Completed. The winners-bracket champion takes slot one, the losers-bracket
// champion slot two; the winner advances nowhere.
func Championship(b *Bracket, tournamentID int) (*models.Match, error) {
	if len(b.championship()) > 0 {
		return nil, ErrChampionshipExists
	}
	for _, m := range b.Matches() {
		if m.Status != models.MatchCompleted {
			return nil, ErrChampionshipNotReady
		}
	}
	wb, lb, err := b.Survivors()
	if err != nil {
		return nil, err
	}
	m := &models.Match{
		ID:           b.nextID(),
		TournamentID: tournamentID,
		Stage:        models.StageFinals,
		Side:         models.SideChampionship,
		Round:        1,
		Position:     1,
		Order:        b.nextOrder(),
		Team1ID:      ref(wb),
		Team2ID:      ref(lb),
		Status:       models.MatchScheduled,
	}
	b.add(m)
	return m, nil
}

// championshipReset creates the second championship match after the
// losers-bracket entrant takes the first: the winners-bracket entrant must
// lose twice to be eliminated.
func championshipReset(b *Bracket, first *models.Match) *models.Match {
	m := &models.Match{
		ID:           b.nextID(),
		TournamentID: first.TournamentID,
		Stage:        models.StageFinals,
		Side:         models.SideChampionship,
		Round:        2,
		Position:     1,
		Order:        b.nextOrder(),
		Team1ID:      cloneRef(first.Team1ID),
		Team2ID:      cloneRef(first.Team2ID),
		Status:       models.MatchScheduled,
	}
	b.add(m)
	return m
}

// seedSlots returns the folded seed placement for a full bracket of the given
// power-of-two size: 1 vs size in the first pair, and so on, so that round
// winners meet in seed order.
func seedSlots(size int) []int {
	s := []int{1}
	for len(s) < size {
		next := make([]int, len(s)*2)
		for i, v := range s {
			next[2*i] = v
			next[2*i+1] = len(s)*2 + 1 - v
		}
		s = next
	}
	return s
}

// detectCycle rejects a generated graph whose advancement edges are not a
// DAG. This cannot happen with the builders above; it guards the invariant
// before anything is persisted.
func detectCycle(matches []*models.Match) error {
	const (
		white = iota
		grey
		black
	)
	byID := make(map[int]*models.Match, len(matches))
	color := make(map[int]int, len(matches))
	for _, m := range matches {
		byID[m.ID] = m
	}
	var visit func(id int) bool
	visit = func(id int) bool {
		m := byID[id]
		if m == nil {
			return true
		}
		switch color[id] {
		case grey:
			return false
		case black:
			return true
		}
		color[id] = grey
		for _, next := range []*int{m.WinnerTo, m.LoserTo} {
			if next != nil && !visit(*next) {
				return false
			}
		}
		color[id] = black
		return true
	}
	for _, m := range matches {
		if !visit(m.ID) {
			return ErrCycleDetected
		}
	}
	return nil
}

func ref(v int) *int { return &v }

func cloneRef(v *int) *int {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}
