package brackets

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdralston/puttingLeague/models"
)

// newEngine builds a fresh n-team bracket. With id-equals-seed teams the
// four-team layout is: #1 seed1v4, #2 seed2v3, #3 winners final, #4 losers
// round one, #5 losers final.
func newEngine(t *testing.T, n int) (*Engine, *StationPool) {
	t.Helper()
	teams := makeTeams(n)
	matches, err := Generate(GenerateParams{TournamentID: 1, Teams: teams})
	require.NoError(t, err)
	return NewEngine(New(matches, teams)), NewStationPool(6)
}

func score(t *testing.T, e *Engine, pool *StationPool, matchID, s1, s2 int) *ScoreResult {
	t.Helper()
	_, err := e.Start(matchID, pool)
	require.NoError(t, err)
	res, err := e.Score(matchID, s1, s2, pool)
	require.NoError(t, err)
	return res
}

func TestFourTeamPlaythroughWithBracketReset(t *testing.T) {
	e, pool := newEngine(t, 4)
	b := e.Bracket()

	score(t, e, pool, 1, 5, 3) // 1 beats 4
	score(t, e, pool, 2, 2, 6) // 3 beats 2

	wbf := b.Match(3)
	require.NotNil(t, wbf.Team1ID)
	require.NotNil(t, wbf.Team2ID)
	assert.Equal(t, 1, *wbf.Team1ID)
	assert.Equal(t, 3, *wbf.Team2ID)
	assert.Equal(t, models.MatchScheduled, wbf.Status)

	lr1 := b.Match(4)
	assert.Equal(t, models.MatchScheduled, lr1.Status)
	assert.True(t, lr1.HasTeam(4))
	assert.True(t, lr1.HasTeam(2))

	score(t, e, pool, 3, 7, 5) // 1 beats 3, 3 drops to losers final
	score(t, e, pool, 4, 3, 1) // 4 beats 2
	res := score(t, e, pool, 5, 2, 9)
	assert.Equal(t, 4, res.WinnerTeamID)
	assert.False(t, res.Final, "championship still outstanding")

	// Championship cannot exist twice and requires a finished bracket.
	champ, err := e.CreateChampionship(1)
	require.NoError(t, err)
	assert.Equal(t, 1, *champ.Team1ID, "winners champ takes slot one")
	assert.Equal(t, 4, *champ.Team2ID)
	_, err = e.CreateChampionship(1)
	assert.ErrorIs(t, err, ErrChampionshipExists)

	// Losers entrant wins game one: the bracket resets.
	res = score(t, e, pool, champ.ID, 3, 8)
	require.NotNil(t, res.Reset)
	assert.Equal(t, 2, res.Reset.Round)
	assert.Equal(t, 1, *res.Reset.Team1ID)
	assert.Equal(t, 4, *res.Reset.Team2ID)
	assert.False(t, res.Final)

	res = score(t, e, pool, res.Reset.ID, 10, 2)
	assert.Nil(t, res.Reset, "game two never resets again")
	assert.True(t, res.Final)

	placements, err := FinalPlacements(b)
	require.NoError(t, err)
	require.Len(t, placements, 4)
	assert.Equal(t, Placement{TeamID: 1, Place: 1}, placements[0])
	assert.Equal(t, Placement{TeamID: 4, Place: 2}, placements[1])
	assert.Equal(t, Placement{TeamID: 3, Place: 3}, placements[2])
	assert.Equal(t, Placement{TeamID: 2, Place: 4}, placements[3])
}

func TestScoringLosersFinalLeavesTournamentUnfinished(t *testing.T) {
	e, pool := newEngine(t, 4)
	score(t, e, pool, 1, 5, 3)
	score(t, e, pool, 2, 2, 6)
	score(t, e, pool, 3, 7, 5)
	score(t, e, pool, 4, 3, 1)
	res := score(t, e, pool, 5, 2, 9)

	assert.False(t, res.Final, "losers final is not the deciding match")
	assert.False(t, e.Bracket().Exhausted(), "championship has not been played")
}

func TestSlotAssignmentIndependentOfCompletionOrder(t *testing.T) {
	e, pool := newEngine(t, 4)
	b := e.Bracket()

	// Round one finishes out of order: match two first.
	score(t, e, pool, 2, 2, 6) // 3 beats 2
	score(t, e, pool, 1, 5, 3) // 1 beats 4

	wbf := b.Match(3)
	require.NotNil(t, wbf.Team1ID)
	require.NotNil(t, wbf.Team2ID)
	assert.Equal(t, 1, *wbf.Team1ID, "lower-order feeder owns slot one")
	assert.Equal(t, 3, *wbf.Team2ID)
	lr1 := b.Match(4)
	assert.Equal(t, 4, *lr1.Team1ID)
	assert.Equal(t, 2, *lr1.Team2ID)

	// The recorded score stays attached to the same teams through a replay.
	score(t, e, pool, 3, 5, 7) // 3 beats 1
	e.Recalculate()
	assert.Equal(t, 1, *wbf.Team1ID)
	assert.Equal(t, 3, *wbf.Team2ID)
	require.NotNil(t, wbf.WinnerTeamID())
	assert.Equal(t, 3, *wbf.WinnerTeamID(), "replay must not flip a settled result")
}

func TestChampionshipRequiresFinishedBracket(t *testing.T) {
	e, pool := newEngine(t, 4)
	score(t, e, pool, 1, 5, 3)
	_, err := e.CreateChampionship(1)
	assert.ErrorIs(t, err, ErrChampionshipNotReady)
}

func TestStartRequiresBothSlots(t *testing.T) {
	e, pool := newEngine(t, 4)
	_, err := e.Start(3, pool)
	assert.ErrorIs(t, err, ErrMatchNotReady)

	_, err = e.Start(99, pool)
	assert.ErrorIs(t, err, ErrMatchNotFound)
}

func TestTiedScoreRejectedWithoutStateChange(t *testing.T) {
	e, pool := newEngine(t, 4)
	_, err := e.Start(1, pool)
	require.NoError(t, err)

	m := e.Bracket().Match(1)
	_, err = e.Score(1, 10, 10, pool)
	assert.ErrorIs(t, err, ErrInvalidScore)
	assert.Equal(t, models.MatchInProgress, m.Status)
	assert.Nil(t, m.Team1Score)
	require.NotNil(t, m.StationID, "station stays held after a rejected score")

	_, err = e.Score(1, -1, 3, pool)
	assert.ErrorIs(t, err, ErrInvalidScore)

	_, err = e.Score(2, 4, 2, pool)
	assert.ErrorIs(t, err, ErrMatchNotStarted)
}

func TestScoreReleasesStation(t *testing.T) {
	e, pool := newEngine(t, 4)
	m, err := e.Start(1, pool)
	require.NoError(t, err)
	require.NotNil(t, m.StationID)
	station := *m.StationID

	_, err = e.Score(1, 4, 1, pool)
	require.NoError(t, err)
	assert.Nil(t, m.StationID)

	// The freed station is the lowest available again.
	got, err := pool.Acquire()
	require.NoError(t, err)
	assert.Equal(t, station, got)
}

func TestRescoreFlipRollsBackMutableTargets(t *testing.T) {
	e, pool := newEngine(t, 4)
	score(t, e, pool, 1, 5, 3)
	score(t, e, pool, 2, 2, 6)

	res, err := e.Score(1, 2, 8, pool) // correction: 4 beat 1 after all
	require.NoError(t, err)
	assert.True(t, res.Rescore)
	assert.Empty(t, res.Stale, "neither target had started")

	b := e.Bracket()
	wbf := b.Match(3)
	assert.True(t, wbf.HasTeam(4))
	assert.False(t, wbf.HasTeam(1))
	lr1 := b.Match(4)
	assert.True(t, lr1.HasTeam(1))
	assert.False(t, lr1.HasTeam(4))
}

func TestRescoreFlipReportsStaleStartedTargets(t *testing.T) {
	e, pool := newEngine(t, 4)
	score(t, e, pool, 1, 5, 3)
	score(t, e, pool, 2, 2, 6)
	_, err := e.Start(3, pool)
	require.NoError(t, err)

	res, err := e.Score(1, 2, 8, pool)
	require.NoError(t, err)
	require.NotEmpty(t, res.Stale)
	staleIDs := map[int]bool{}
	for _, m := range res.Stale {
		staleIDs[m.ID] = true
	}
	assert.True(t, staleIDs[3], "started winners final must be flagged stale")

	// The started match keeps its teams until a recalculation repairs it.
	wbf := e.Bracket().Match(3)
	assert.True(t, wbf.HasTeam(1))
	assert.Equal(t, models.MatchInProgress, wbf.Status)
}

func TestRecalculateRepairsDownstreamAndIsIdempotent(t *testing.T) {
	e, pool := newEngine(t, 4)
	score(t, e, pool, 1, 5, 3)
	score(t, e, pool, 2, 2, 6)
	score(t, e, pool, 3, 7, 5)
	score(t, e, pool, 4, 3, 1)
	score(t, e, pool, 5, 2, 9)

	// Correction flips match one after everything downstream completed.
	res, err := e.Score(1, 2, 8, pool)
	require.NoError(t, err)
	require.NotEmpty(t, res.Stale)

	e.Recalculate()
	b := e.Bracket()

	wbf := b.Match(3)
	assert.True(t, wbf.HasTeam(4))
	assert.True(t, wbf.HasTeam(3))
	lr1 := b.Match(4)
	assert.True(t, lr1.HasTeam(1))
	assert.True(t, lr1.HasTeam(2))

	snapshot := func() [][4]interface{} {
		var s [][4]interface{}
		for _, m := range b.Matches() {
			s = append(s, [4]interface{}{cloneRef(m.Team1ID), cloneRef(m.Team2ID), m.Status, cloneRef(m.StationID)})
		}
		return s
	}
	first := snapshot()
	e.Recalculate()
	assert.Equal(t, first, snapshot())
}

func TestAdvanceByeSynthesizesScoreWithoutStation(t *testing.T) {
	e, _ := newEngine(t, 3)
	b := e.Bracket()

	m1 := b.Match(1)
	require.True(t, b.IsBye(m1))
	res, err := e.AdvanceBye(1)
	require.NoError(t, err)
	assert.Equal(t, 1, res.WinnerTeamID)
	assert.Nil(t, m1.StationID)
	require.NotNil(t, m1.Team1Score)
	assert.Equal(t, 1, *m1.Team1Score)
	assert.Equal(t, 0, *m1.Team2Score)

	// A contested match is not a bye.
	_, err = e.AdvanceBye(2)
	assert.ErrorIs(t, err, ErrMatchNotReady)
}

func TestByeLossPropagationCreatesDownstreamBye(t *testing.T) {
	e, pool := newEngine(t, 3)
	b := e.Bracket()

	_, err := e.AdvanceBye(1)
	require.NoError(t, err)
	score(t, e, pool, 2, 4, 6) // 3 beats 2, 2 drops to losers

	// The losers match now has one team and no feeder left: a derived bye.
	lr1 := b.Match(4)
	assert.True(t, b.IsBye(lr1))
	assert.True(t, lr1.HasTeam(2))
}

func TestTwelveTeamMultiStagePlaythrough(t *testing.T) {
	e, pool := newEngine(t, 12)
	b := e.Bracket()
	playOut(t, e, pool)

	require.True(t, b.Exhausted())

	// Group survivors crossed into the finals stage: each group's winners
	// champion met the other group's losers champion, lower-order feeder in
	// slot one. Group A owns ids 1-13, group B 14-26, the finals 27-31.
	w1 := b.Match(27)
	assert.Equal(t, 1, *w1.Team1ID, "group A winners champion")
	assert.Equal(t, 8, *w1.Team2ID, "group B losers champion")
	w2 := b.Match(28)
	assert.Equal(t, 2, *w2.Team1ID, "group A losers champion")
	assert.Equal(t, 7, *w2.Team2ID, "group B winners champion")

	placements, err := FinalPlacements(b)
	require.NoError(t, err)
	require.Len(t, placements, 12)
	assert.Equal(t, Placement{TeamID: 1, Place: 1}, placements[0])
	assert.Equal(t, Placement{TeamID: 2, Place: 2}, placements[1])
	seen := map[int]bool{}
	for _, p := range placements {
		assert.False(t, seen[p.TeamID], "team %d placed twice", p.TeamID)
		seen[p.TeamID] = true
	}

	// A replay over the finished multi-stage bracket is a fixed point.
	snapshot := func() [][4]interface{} {
		var s [][4]interface{}
		for _, m := range b.Matches() {
			s = append(s, [4]interface{}{cloneRef(m.Team1ID), cloneRef(m.Team2ID), m.Status, cloneRef(m.StationID)})
		}
		return s
	}
	before := snapshot()
	e.Recalculate()
	assert.Equal(t, before, snapshot())
}

func TestDoubleByeVacantCompletion(t *testing.T) {
	e, _ := newEngine(t, 5)
	b := e.Bracket()

	// Seeds 2 and 3 both drew byes; their shared losers match can never
	// receive a team and completes vacantly once both finish.
	_, err := e.AdvanceBye(3)
	require.NoError(t, err)
	_, err = e.AdvanceBye(4)
	require.NoError(t, err)

	vacant := b.Match(9)
	assert.Equal(t, models.MatchCompleted, vacant.Status)
	assert.False(t, vacant.Scored())
	assert.Nil(t, vacant.WinnerTeamID())
}
