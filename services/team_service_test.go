package services

import (
	"context"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdralston/puttingLeague/models"
	"github.com/pdralston/puttingLeague/repositories"
)

type stubTournamentRepo struct {
	repositories.TournamentRepository
	tournament *models.Tournament
}

func (s *stubTournamentRepo) GetByID(ctx context.Context, id int) (*models.Tournament, error) {
	if s.tournament == nil || s.tournament.ID != id {
		return nil, repositories.ErrTournamentNotFound
	}
	return s.tournament, nil
}

type stubRegistrationRepo struct {
	repositories.RegistrationRepository
	regs []*models.Registration
}

func (s *stubRegistrationRepo) ListByTournament(ctx context.Context, tournamentID int) ([]*models.Registration, error) {
	return s.regs, nil
}

func makeRegs(n int) []*models.Registration {
	regs := make([]*models.Registration, 0, n)
	for i := 1; i <= n; i++ {
		regs = append(regs, &models.Registration{TournamentID: 1, PlayerID: i})
	}
	return regs
}

func newTeamServiceForTest(seed int64) *teamService {
	return &teamService{
		locks: NewTournamentLocks(),
		rng:   rand.New(rand.NewSource(seed)),
	}
}

func TestPairRandomlyEvenCount(t *testing.T) {
	s := newTeamServiceForTest(1)
	teams := s.pairRandomly(1, makeRegs(8))

	require.Len(t, teams, 4)
	seen := make(map[int]bool)
	for i, team := range teams {
		assert.Equal(t, i+1, team.SeedNumber)
		assert.False(t, team.IsGhostTeam)
		require.NotNil(t, team.Player2ID)
		assert.False(t, seen[team.Player1ID], "player %d paired twice", team.Player1ID)
		assert.False(t, seen[*team.Player2ID], "player %d paired twice", *team.Player2ID)
		seen[team.Player1ID] = true
		seen[*team.Player2ID] = true
	}
	assert.Len(t, seen, 8)
}

func TestPairRandomlyOddCountMakesGhost(t *testing.T) {
	s := newTeamServiceForTest(1)
	teams := s.pairRandomly(1, makeRegs(7))

	require.Len(t, teams, 4)
	for _, team := range teams[:3] {
		assert.False(t, team.IsGhostTeam)
		assert.NotNil(t, team.Player2ID)
	}
	ghost := teams[3]
	assert.True(t, ghost.IsGhostTeam)
	assert.Nil(t, ghost.Player2ID)
	assert.Equal(t, 4, ghost.SeedNumber)
}

func TestPairRandomlyDeterministicPerSeed(t *testing.T) {
	first := newTeamServiceForTest(42).pairRandomly(1, makeRegs(6))
	second := newTeamServiceForTest(42).pairRandomly(1, makeRegs(6))

	require.Len(t, second, len(first))
	for i := range first {
		assert.Equal(t, first[i].Player1ID, second[i].Player1ID)
		assert.Equal(t, first[i].Player2ID, second[i].Player2ID)
	}
}

func TestRegisterPlayersRejectsEmptyBatch(t *testing.T) {
	s := newTeamServiceForTest(1)
	_, err := s.RegisterPlayers(context.Background(), 1, nil)
	assert.ErrorIs(t, err, ErrValidationFailed)
}

func TestBuildTeamsRequiresTwoPlayers(t *testing.T) {
	s := newTeamServiceForTest(1)
	s.tournamentRepo = &stubTournamentRepo{tournament: &models.Tournament{ID: 1, Status: models.TournamentScheduled}}
	s.regRepo = &stubRegistrationRepo{regs: makeRegs(1)}

	_, err := s.BuildTeams(context.Background(), 1)
	assert.ErrorIs(t, err, ErrInsufficientPlayers)
}

func TestBuildTeamsRejectsStartedTournament(t *testing.T) {
	s := newTeamServiceForTest(1)
	s.tournamentRepo = &stubTournamentRepo{tournament: &models.Tournament{ID: 1, Status: models.TournamentInProgress}}

	_, err := s.BuildTeams(context.Background(), 1)
	assert.ErrorIs(t, err, ErrTournamentNotEditable)
}

func TestBuildTeamsDetectsConcurrentBuild(t *testing.T) {
	s := newTeamServiceForTest(1)
	unlock, ok := s.locks.tryLock(1)
	require.True(t, ok)
	defer unlock()

	_, err := s.BuildTeams(context.Background(), 1)
	assert.ErrorIs(t, err, ErrConcurrentModification)
}
