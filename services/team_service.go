package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math/rand"
	"sync"

	"github.com/pdralston/puttingLeague/models"
	"github.com/pdralston/puttingLeague/repositories"
)

// RegistrationEntry is one player signing up for a tournament. Players are
// identified by name and created on first sight.
type RegistrationEntry struct {
	Name         string          `json:"player_name"`
	Nickname     *string         `json:"nickname,omitempty"`
	Division     models.Division `json:"division,omitempty"`
	BoughtAcePot bool            `json:"bought_ace_pot"`
}

type TeamService interface {
	RegisterPlayers(ctx context.Context, tournamentID int, entries []RegistrationEntry) ([]*models.Registration, error)
	WithdrawPlayer(ctx context.Context, tournamentID, playerID int) error
	ListRegistrations(ctx context.Context, tournamentID int) ([]*models.Registration, error)
	BuildTeams(ctx context.Context, tournamentID int) ([]*models.Team, error)
	ListTeams(ctx context.Context, tournamentID int) ([]*models.Team, error)
}

type teamService struct {
	db             *sql.DB
	playerRepo     repositories.PlayerRepository
	regRepo        repositories.RegistrationRepository
	teamRepo       repositories.TeamRepository
	matchRepo      repositories.MatchRepository
	tournamentRepo repositories.TournamentRepository
	locks          *TournamentLocks

	rngMu sync.Mutex
	rng   *rand.Rand
}

func NewTeamService(
	db *sql.DB,
	playerRepo repositories.PlayerRepository,
	regRepo repositories.RegistrationRepository,
	teamRepo repositories.TeamRepository,
	matchRepo repositories.MatchRepository,
	tournamentRepo repositories.TournamentRepository,
	locks *TournamentLocks,
	rng *rand.Rand,
) TeamService {
	return &teamService{
		db:             db,
		playerRepo:     playerRepo,
		regRepo:        regRepo,
		teamRepo:       teamRepo,
		matchRepo:      matchRepo,
		tournamentRepo: tournamentRepo,
		locks:          locks,
		rng:            rng,
	}
}

func (s *teamService) RegisterPlayers(ctx context.Context, tournamentID int, entries []RegistrationEntry) ([]*models.Registration, error) {
	if len(entries) == 0 {
		return nil, fmt.Errorf("%w: no players given", ErrValidationFailed)
	}
	tournament, err := s.editableTournament(ctx, tournamentID)
	if err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin registration transaction: %w", err)
	}
	defer tx.Rollback()

	regs := make([]*models.Registration, 0, len(entries))
	for _, entry := range entries {
		if entry.Name == "" {
			return nil, ErrPlayerNameRequired
		}
		player, err := s.resolvePlayer(ctx, tx, entry)
		if err != nil {
			return nil, err
		}
		reg := &models.Registration{
			TournamentID: tournament.ID,
			PlayerID:     player.ID,
			BoughtAcePot: entry.BoughtAcePot,
			Player:       player,
		}
		if err := s.regRepo.Upsert(ctx, tx, reg); err != nil {
			if errors.Is(err, repositories.ErrRegistrationInvalid) {
				return nil, fmt.Errorf("%w: tournament %d", ErrNotFound, tournamentID)
			}
			return nil, err
		}
		regs = append(regs, reg)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit registration transaction: %w", err)
	}
	return regs, nil
}

// resolvePlayer finds a player by name, creating the row on first sight.
func (s *teamService) resolvePlayer(ctx context.Context, exec repositories.SQLExecutor, entry RegistrationEntry) (*models.Player, error) {
	player, err := s.playerRepo.GetByName(ctx, entry.Name)
	if err == nil {
		return player, nil
	}
	if !errors.Is(err, repositories.ErrPlayerNotFound) {
		return nil, err
	}

	division := entry.Division
	if division == "" {
		division = models.DivisionAm
	}
	if !division.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidDivision, division)
	}
	player = &models.Player{Name: entry.Name, Nickname: entry.Nickname, Division: division}
	if err := s.playerRepo.Create(ctx, exec, player); err != nil {
		if errors.Is(err, repositories.ErrPlayerNameTaken) {
			return nil, fmt.Errorf("%w: %q", ErrPlayerNameConflict, entry.Name)
		}
		return nil, err
	}
	return player, nil
}

func (s *teamService) WithdrawPlayer(ctx context.Context, tournamentID, playerID int) error {
	if _, err := s.editableTournament(ctx, tournamentID); err != nil {
		return err
	}
	err := s.regRepo.Delete(ctx, s.db, tournamentID, playerID)
	if errors.Is(err, repositories.ErrRegistrationNotFound) {
		return fmt.Errorf("%w: registration for player %d", ErrNotFound, playerID)
	}
	return err
}

func (s *teamService) ListRegistrations(ctx context.Context, tournamentID int) ([]*models.Registration, error) {
	return s.regRepo.ListByTournament(ctx, tournamentID)
}

// BuildTeams randomly pairs the registered players, adding a single-player
// ghost team when the count is odd. Rebuilding is allowed any number of times
// before the tournament starts and replaces the previous teams and bracket.
func (s *teamService) BuildTeams(ctx context.Context, tournamentID int) ([]*models.Team, error) {
	unlock, ok := s.locks.tryLock(tournamentID)
	if !ok {
		return nil, ErrConcurrentModification
	}
	defer unlock()

	tournament, err := s.editableTournament(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	regs, err := s.regRepo.ListByTournament(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	if len(regs) < 2 {
		return nil, ErrInsufficientPlayers
	}

	teams := s.pairRandomly(tournament.ID, regs)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin team build transaction: %w", err)
	}
	defer tx.Rollback()

	if err := s.matchRepo.DeleteByTournament(ctx, tx, tournamentID); err != nil {
		return nil, err
	}
	if err := s.teamRepo.DeleteByTournament(ctx, tx, tournamentID); err != nil {
		return nil, err
	}
	for _, team := range teams {
		if err := s.teamRepo.Create(ctx, tx, team); err != nil {
			return nil, err
		}
	}
	if err := s.tournamentRepo.UpdateTotalTeams(ctx, tx, tournamentID, len(teams)); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit team build transaction: %w", err)
	}
	return teams, nil
}

// pairRandomly pops two random players at a time. The leftover player on an
// odd count becomes the ghost team, seeded last.
func (s *teamService) pairRandomly(tournamentID int, regs []*models.Registration) []*models.Team {
	s.rngMu.Lock()
	defer s.rngMu.Unlock()

	pool := make([]*models.Registration, len(regs))
	copy(pool, regs)
	pop := func() *models.Registration {
		i := s.rng.Intn(len(pool))
		r := pool[i]
		pool[i] = pool[len(pool)-1]
		pool = pool[:len(pool)-1]
		return r
	}

	teams := make([]*models.Team, 0, (len(regs)+1)/2)
	seed := 1
	for len(pool) >= 2 {
		p1, p2 := pop(), pop()
		p2ID := p2.PlayerID
		teams = append(teams, &models.Team{
			TournamentID: tournamentID,
			Player1ID:    p1.PlayerID,
			Player2ID:    &p2ID,
			SeedNumber:   seed,
			Player1:      p1.Player,
			Player2:      p2.Player,
		})
		seed++
	}
	if len(pool) == 1 {
		ghost := pool[0]
		teams = append(teams, &models.Team{
			TournamentID: tournamentID,
			Player1ID:    ghost.PlayerID,
			IsGhostTeam:  true,
			SeedNumber:   seed,
			Player1:      ghost.Player,
		})
	}
	return teams
}

func (s *teamService) ListTeams(ctx context.Context, tournamentID int) ([]*models.Team, error) {
	return s.teamRepo.ListByTournament(ctx, tournamentID)
}

func (s *teamService) editableTournament(ctx context.Context, tournamentID int) (*models.Tournament, error) {
	tournament, err := s.tournamentRepo.GetByID(ctx, tournamentID)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, fmt.Errorf("%w: tournament %d", ErrNotFound, tournamentID)
		}
		return nil, err
	}
	if tournament.Status != models.TournamentScheduled {
		return nil, ErrTournamentNotEditable
	}
	return tournament, nil
}
