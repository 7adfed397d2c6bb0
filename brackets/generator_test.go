package brackets

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdralston/puttingLeague/models"
)

// makeTeams builds n teams whose id equals their seed, which keeps the wiring
// assertions readable.
func makeTeams(n int) []*models.Team {
	teams := make([]*models.Team, n)
	for i := 0; i < n; i++ {
		seed := i + 1
		teams[i] = &models.Team{ID: seed, TournamentID: 1, SeedNumber: seed}
	}
	return teams
}

func generate(t *testing.T, n int) []*models.Match {
	t.Helper()
	matches, err := Generate(GenerateParams{TournamentID: 1, Teams: makeTeams(n)})
	require.NoError(t, err)
	return matches
}

func TestGenerateRejectsTooFewTeams(t *testing.T) {
	for _, n := range []int{0, 1} {
		_, err := Generate(GenerateParams{TournamentID: 1, Teams: makeTeams(n)})
		assert.ErrorIs(t, err, ErrInvalidTeamCount)
	}
}

func TestGenerateTwoTeams(t *testing.T) {
	matches := generate(t, 2)
	require.Len(t, matches, 1)

	m := matches[0]
	assert.Equal(t, models.StageFinals, m.Stage)
	assert.Equal(t, models.SideWinners, m.Side)
	assert.Equal(t, models.MatchScheduled, m.Status)
	require.NotNil(t, m.Team1ID)
	require.NotNil(t, m.Team2ID)
	assert.Equal(t, 1, *m.Team1ID)
	assert.Equal(t, 2, *m.Team2ID)
	assert.Nil(t, m.WinnerTo)
	assert.Nil(t, m.LoserTo)
}

func TestGenerateEightTeamShape(t *testing.T) {
	matches := generate(t, 8)

	var winners, losers []*models.Match
	for _, m := range matches {
		switch m.Side {
		case models.SideWinners:
			winners = append(winners, m)
		case models.SideLosers:
			losers = append(losers, m)
		}
	}
	assert.Len(t, winners, 7)
	assert.Len(t, losers, 6)
	assert.Len(t, matches, 13)

	// Round one follows the folded seed order: 1v8, 4v5, 2v7, 3v6.
	pairs := [][2]int{{1, 8}, {4, 5}, {2, 7}, {3, 6}}
	for i, want := range pairs {
		m := winners[i]
		require.Equal(t, 1, m.Round)
		require.NotNil(t, m.Team1ID)
		require.NotNil(t, m.Team2ID)
		assert.Equal(t, want[0], *m.Team1ID, "match %d slot 1", i+1)
		assert.Equal(t, want[1], *m.Team2ID, "match %d slot 2", i+1)
		assert.Equal(t, models.MatchScheduled, m.Status)
	}

	// Exactly one terminal per side.
	terminals := map[models.BracketSide]int{}
	for _, m := range matches {
		if m.WinnerTo == nil {
			terminals[m.Side]++
		}
	}
	assert.Equal(t, 1, terminals[models.SideWinners])
	assert.Equal(t, 1, terminals[models.SideLosers])

	// Every winners-round loser except the final's has a losers destination.
	for _, m := range winners {
		if m.WinnerTo != nil || m.Round < 3 {
			assert.NotNil(t, m.LoserTo, "winners round %d position %d", m.Round, m.Position)
		}
	}
}

func TestGenerateByesLandOnTopSeeds(t *testing.T) {
	matches := generate(t, 5)

	byes := 0
	for _, m := range matches {
		if m.Side != models.SideWinners || m.Round != 1 {
			continue
		}
		require.NotNil(t, m.Team1ID, "slot one always holds a real team")
		if m.Team2ID == nil {
			byes++
			// Byes pair against the strongest remaining seeds.
			assert.LessOrEqual(t, *m.Team1ID, 3)
			assert.Equal(t, models.MatchScheduled, m.Status)
		}
	}
	assert.Equal(t, 3, byes)
}

func TestGenerateEdgesAreForwardOnly(t *testing.T) {
	for n := 2; n <= 16; n++ {
		t.Run(fmt.Sprintf("%d_teams", n), func(t *testing.T) {
			matches := generate(t, n)
			byID := make(map[int]*models.Match, len(matches))
			for _, m := range matches {
				byID[m.ID] = m
			}
			for _, m := range matches {
				for _, next := range []*int{m.WinnerTo, m.LoserTo} {
					if next == nil {
						continue
					}
					target := byID[*next]
					require.NotNil(t, target, "match %d points at missing match %d", m.ID, *next)
					assert.Greater(t, target.Order, m.Order,
						"match %d must order before its target %d", m.ID, target.ID)
				}
			}
		})
	}
}

func TestGenerateMultiStageGroups(t *testing.T) {
	matches := generate(t, 12)

	byStage := map[models.StageType][]*models.Match{}
	for _, m := range matches {
		byStage[m.Stage] = append(byStage[m.Stage], m)
	}
	require.NotEmpty(t, byStage[models.StageGroupA])
	require.NotEmpty(t, byStage[models.StageGroupB])
	require.Len(t, byStage[models.StageFinals], 5)

	// Group seeds split down the middle.
	for _, m := range byStage[models.StageGroupA] {
		for _, id := range []*int{m.Team1ID, m.Team2ID} {
			if id != nil {
				assert.LessOrEqual(t, *id, 6)
			}
		}
	}
	for _, m := range byStage[models.StageGroupB] {
		for _, id := range []*int{m.Team1ID, m.Team2ID} {
			if id != nil {
				assert.Greater(t, *id, 6)
			}
		}
	}

	// Each group's winners champion crosses over against the other group's
	// losers champion.
	terminal := func(stage models.StageType, side models.BracketSide) *models.Match {
		for _, m := range byStage[stage] {
			if m.Side == side && m.WinnerTo == nil {
				return m
			}
		}
		return nil
	}
	b := New(matches, makeTeams(12))
	aWin := b.Match(*lastWinnerTo(byStage[models.StageGroupA], models.SideWinners))
	bLose := b.Match(*lastWinnerTo(byStage[models.StageGroupB], models.SideLosers))
	require.NotNil(t, aWin)
	assert.Same(t, aWin, bLose, "group A winners champ meets group B losers champ")

	// The finals stage has its own terminals; group brackets feed it fully.
	assert.Nil(t, terminal(models.StageGroupA, models.SideWinners))
	assert.Nil(t, terminal(models.StageGroupB, models.SideWinners))
	assert.NotNil(t, terminal(models.StageFinals, models.SideWinners))
	assert.NotNil(t, terminal(models.StageFinals, models.SideLosers))
}

// lastWinnerTo finds the stage-side final (highest round on that side) and
// returns where its winner goes.
func lastWinnerTo(matches []*models.Match, side models.BracketSide) *int {
	var final *models.Match
	for _, m := range matches {
		if m.Side != side {
			continue
		}
		if final == nil || m.Round > final.Round {
			final = m
		}
	}
	if final == nil {
		return nil
	}
	return final.WinnerTo
}

func TestSeedSlotsFolding(t *testing.T) {
	assert.Equal(t, []int{1, 2}, seedSlots(2))
	assert.Equal(t, []int{1, 4, 2, 3}, seedSlots(4))
	assert.Equal(t, []int{1, 8, 4, 5, 2, 7, 3, 6}, seedSlots(8))
}
