package brackets

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdralston/puttingLeague/models"
)

func TestComputePayout(t *testing.T) {
	cases := []struct {
		teams         int
		pot           int
		first, second int
	}{
		{teams: 8, pot: 80, first: 40, second: 40},
		{teams: 4, pot: 40, first: 30, second: 10},
		{teams: 2, pot: 20, first: 20, second: 0},
		{teams: 3, pot: 30, first: 20, second: 10},
		{teams: 6, pot: 60, first: 40, second: 20},
		{teams: 12, pot: 120, first: 80, second: 40},
	}
	for _, c := range cases {
		got := ComputePayout(c.teams)
		assert.Equal(t, c.pot, got.Pot, "%d teams", c.teams)
		assert.Equal(t, c.first, got.First, "%d teams", c.teams)
		assert.Equal(t, c.second, got.Second, "%d teams", c.teams)
		assert.Equal(t, got.Pot, got.First+got.Second, "payouts consume the whole pot")
	}
}

func TestSeasonalPoints(t *testing.T) {
	assert.Equal(t, 10, SeasonalPoints(1))
	assert.Equal(t, 8, SeasonalPoints(2))
	assert.Equal(t, 6, SeasonalPoints(3))
	assert.Equal(t, 4, SeasonalPoints(4))
	assert.Equal(t, 2, SeasonalPoints(5))
	assert.Equal(t, 2, SeasonalPoints(9))
}

func TestFinalPlacementsRequireFinishedBracket(t *testing.T) {
	e, pool := newEngine(t, 4)
	score(t, e, pool, 1, 5, 3)

	_, err := FinalPlacements(e.Bracket())
	assert.ErrorIs(t, err, ErrBracketIncomplete)
}

// playOut finishes a bracket with the lower team id always winning, then runs
// the championship.
func playOut(t *testing.T, e *Engine, pool *StationPool) {
	t.Helper()
	b := e.Bracket()
	for {
		progressed := false
		for _, m := range b.Matches() {
			if m.Status != models.MatchScheduled {
				continue
			}
			if b.IsBye(m) {
				_, err := e.AdvanceBye(m.ID)
				require.NoError(t, err)
				progressed = true
				continue
			}
			s1, s2 := 10, 5
			if *m.Team2ID < *m.Team1ID {
				s1, s2 = 5, 10
			}
			score(t, e, pool, m.ID, s1, s2)
			progressed = true
		}
		if !progressed {
			break
		}
	}
	if len(b.championship()) == 0 {
		_, err := e.CreateChampionship(1)
		require.NoError(t, err)
		playOut(t, e, pool)
	}
}

func TestFinalPlacementsEightTeams(t *testing.T) {
	e, pool := newEngine(t, 8)
	playOut(t, e, pool)

	placements, err := FinalPlacements(e.Bracket())
	require.NoError(t, err)
	require.Len(t, placements, 8)

	assert.Equal(t, 1, placements[0].TeamID)
	assert.Equal(t, 1, placements[0].Place)
	assert.Equal(t, 2, placements[1].TeamID)
	assert.Equal(t, 2, placements[1].Place)

	// Each team appears exactly once and places run 1..8.
	seen := map[int]bool{}
	for i, p := range placements {
		assert.Equal(t, i+1, p.Place)
		assert.False(t, seen[p.TeamID], "team %d placed twice", p.TeamID)
		seen[p.TeamID] = true
	}
}

func TestUndefeated(t *testing.T) {
	e, pool := newEngine(t, 4)
	score(t, e, pool, 1, 5, 3)
	score(t, e, pool, 2, 6, 2)
	score(t, e, pool, 3, 7, 5)
	score(t, e, pool, 4, 3, 1)
	score(t, e, pool, 5, 2, 9)
	champ, err := e.CreateChampionship(1)
	require.NoError(t, err)
	score(t, e, pool, champ.ID, 8, 3)

	b := e.Bracket()
	assert.True(t, Undefeated(b, 1), "team 1 never lost")
	assert.False(t, Undefeated(b, 4), "team 4 lost in round one")
	assert.False(t, Undefeated(b, 2))
}

func TestUndefeatedIgnoresByeWins(t *testing.T) {
	e, _ := newEngine(t, 3)
	_, err := e.AdvanceBye(1)
	require.NoError(t, err)

	// One bye win and nothing else contested: not undefeated yet.
	assert.False(t, Undefeated(e.Bracket(), 1))
}
