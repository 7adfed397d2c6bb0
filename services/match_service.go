package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/pdralston/puttingLeague/brackets"
	"github.com/pdralston/puttingLeague/models"
	"github.com/pdralston/puttingLeague/repositories"
)

// MatchResult reports one progression operation: the match acted on, any
// downstream matches left holding a now-wrong team (candidates for a
// recalculation), the bracket-reset match if this score created one, and
// whether the bracket is fully played out.
type MatchResult struct {
	Match         *models.Match   `json:"match"`
	StaleMatchIDs []int           `json:"stale_match_ids,omitempty"`
	Reset         *models.Match   `json:"reset_match,omitempty"`
	Final         bool            `json:"final"`
	Matches       []*models.Match `json:"matches,omitempty"`
}

type MatchService interface {
	StartMatch(ctx context.Context, tournamentID, matchID int) (*models.Match, error)
	ScoreMatch(ctx context.Context, tournamentID, matchID, score1, score2 int) (*MatchResult, error)
	AdvanceBye(ctx context.Context, tournamentID, matchID int) (*MatchResult, error)
	CreateChampionship(ctx context.Context, tournamentID int) (*models.Match, error)
	Recalculate(ctx context.Context, tournamentID int) ([]*models.Match, error)
}

type matchService struct {
	db             *sql.DB
	tournamentRepo repositories.TournamentRepository
	teamRepo       repositories.TeamRepository
	matchRepo      repositories.MatchRepository
	standings      StandingsService
	locks          *TournamentLocks
	hub            *brackets.Hub
	stationCount   int
}

func NewMatchService(
	db *sql.DB,
	tournamentRepo repositories.TournamentRepository,
	teamRepo repositories.TeamRepository,
	matchRepo repositories.MatchRepository,
	standings StandingsService,
	locks *TournamentLocks,
	hub *brackets.Hub,
	stationCount int,
) MatchService {
	return &matchService{
		db:             db,
		tournamentRepo: tournamentRepo,
		teamRepo:       teamRepo,
		matchRepo:      matchRepo,
		standings:      standings,
		locks:          locks,
		hub:            hub,
		stationCount:   stationCount,
	}
}

// loadEngine rebuilds the in-memory bracket and station occupancy from
// persisted state, so progression survives server restarts.
func (s *matchService) loadEngine(ctx context.Context, tournamentID int) (*brackets.Engine, *brackets.StationPool, *models.Tournament, error) {
	tournament, err := s.tournamentRepo.GetByID(ctx, tournamentID)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, nil, nil, fmt.Errorf("%w: tournament %d", ErrNotFound, tournamentID)
		}
		return nil, nil, nil, err
	}
	matches, err := s.matchRepo.ListByTournament(ctx, tournamentID)
	if err != nil {
		return nil, nil, nil, err
	}
	if len(matches) == 0 {
		return nil, nil, nil, fmt.Errorf("%w: no bracket for tournament %d", ErrNotFound, tournamentID)
	}
	teams, err := s.teamRepo.ListByTournament(ctx, tournamentID)
	if err != nil {
		return nil, nil, nil, err
	}

	pool := brackets.NewStationPool(s.stationCount)
	for _, m := range matches {
		if m.Status == models.MatchInProgress && m.StationID != nil {
			pool.MarkInUse(*m.StationID)
		}
	}
	return brackets.NewEngine(brackets.New(matches, teams)), pool, tournament, nil
}

func (s *matchService) StartMatch(ctx context.Context, tournamentID, matchID int) (*models.Match, error) {
	unlock, ok := s.locks.tryLock(tournamentID)
	if !ok {
		return nil, ErrConcurrentModification
	}
	defer unlock()

	engine, pool, tournament, err := s.loadEngine(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	if err := s.mutable(tournament); err != nil {
		return nil, err
	}

	match, err := engine.Start(matchID, pool)
	if err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin start transaction: %w", err)
	}
	defer tx.Rollback()
	if err := s.persistTouched(ctx, tx, engine.Touched(), nil); err != nil {
		return nil, err
	}
	// The first started match moves the whole tournament to In_Progress.
	if tournament.Status == models.TournamentScheduled {
		if err := s.tournamentRepo.UpdateStatus(ctx, tx, tournamentID, models.TournamentInProgress); err != nil {
			return nil, err
		}
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit start transaction: %w", err)
	}

	s.hub.BroadcastMatchUpdate(tournamentID, matchID, brackets.EventMatchUpdated)
	return match, nil
}

func (s *matchService) ScoreMatch(ctx context.Context, tournamentID, matchID, score1, score2 int) (*MatchResult, error) {
	unlock, ok := s.locks.tryLock(tournamentID)
	if !ok {
		return nil, ErrConcurrentModification
	}
	defer unlock()

	engine, pool, tournament, err := s.loadEngine(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	if err := s.mutable(tournament); err != nil {
		return nil, err
	}

	res, err := engine.Score(matchID, score1, score2, pool)
	if err != nil {
		return nil, err
	}

	created := map[int]bool{}
	if res.Reset != nil {
		created[res.Reset.ID] = true
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin score transaction: %w", err)
	}
	defer tx.Rollback()
	if err := s.persistTouched(ctx, tx, engine.Touched(), created); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit score transaction: %w", err)
	}

	s.hub.BroadcastMatchUpdate(tournamentID, matchID, brackets.EventMatchUpdated)

	if res.Final {
		if err := s.standings.Finalize(ctx, tournamentID, engine.Bracket()); err != nil {
			return nil, fmt.Errorf("bracket complete but finalization failed: %w", err)
		}
		s.hub.BroadcastMatchUpdate(tournamentID, matchID, brackets.EventTournamentFinal)
	}

	return s.result(res), nil
}

func (s *matchService) AdvanceBye(ctx context.Context, tournamentID, matchID int) (*MatchResult, error) {
	unlock, ok := s.locks.tryLock(tournamentID)
	if !ok {
		return nil, ErrConcurrentModification
	}
	defer unlock()

	engine, _, tournament, err := s.loadEngine(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	if err := s.mutable(tournament); err != nil {
		return nil, err
	}

	res, err := engine.AdvanceBye(matchID)
	if err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin bye transaction: %w", err)
	}
	defer tx.Rollback()
	if err := s.persistTouched(ctx, tx, engine.Touched(), nil); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit bye transaction: %w", err)
	}

	s.hub.BroadcastMatchUpdate(tournamentID, matchID, brackets.EventMatchUpdated)
	return s.result(res), nil
}

func (s *matchService) CreateChampionship(ctx context.Context, tournamentID int) (*models.Match, error) {
	unlock, ok := s.locks.tryLock(tournamentID)
	if !ok {
		return nil, ErrConcurrentModification
	}
	defer unlock()

	engine, _, tournament, err := s.loadEngine(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	if err := s.mutable(tournament); err != nil {
		return nil, err
	}

	match, err := engine.CreateChampionship(tournamentID)
	if err != nil {
		return nil, err
	}
	if err := s.matchRepo.Create(ctx, s.db, match); err != nil {
		return nil, err
	}

	s.hub.BroadcastMatchUpdate(tournamentID, match.ID, brackets.EventMatchUpdated)
	return match, nil
}

// Recalculate replays every recorded score through the bracket, repairing
// whatever a correction left stale, and persists the whole DAG.
func (s *matchService) Recalculate(ctx context.Context, tournamentID int) ([]*models.Match, error) {
	unlock, ok := s.locks.tryLock(tournamentID)
	if !ok {
		return nil, ErrConcurrentModification
	}
	defer unlock()

	engine, _, tournament, err := s.loadEngine(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	if err := s.mutable(tournament); err != nil {
		return nil, err
	}

	engine.Recalculate()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin recalculate transaction: %w", err)
	}
	defer tx.Rollback()
	if err := s.persistTouched(ctx, tx, engine.Touched(), nil); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit recalculate transaction: %w", err)
	}

	s.hub.BroadcastMatchUpdate(tournamentID, 0, brackets.EventMatchUpdated)
	return engine.Bracket().Matches(), nil
}

// mutable rejects progression on tournaments that are settled. Completed
// tournaments have had points and cash applied; corrections there go through
// the admin stats recalculation instead.
func (s *matchService) mutable(tournament *models.Tournament) error {
	switch tournament.Status {
	case models.TournamentCompleted:
		return ErrTournamentCompleted
	case models.TournamentCancelled:
		return ErrTournamentNotEditable
	}
	return nil
}

func (s *matchService) persistTouched(ctx context.Context, tx *sql.Tx, touched []*models.Match, created map[int]bool) error {
	for _, m := range touched {
		if created[m.ID] {
			if err := s.matchRepo.Create(ctx, tx, m); err != nil {
				return err
			}
			continue
		}
		if err := s.matchRepo.Update(ctx, tx, m); err != nil {
			return err
		}
	}
	return nil
}

func (s *matchService) result(res *brackets.ScoreResult) *MatchResult {
	out := &MatchResult{Match: res.Match, Reset: res.Reset, Final: res.Final}
	for _, m := range res.Stale {
		out.StaleMatchIDs = append(out.StaleMatchIDs, m.ID)
	}
	return out
}
