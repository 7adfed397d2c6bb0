package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/pdralston/puttingLeague/brackets"
	"github.com/pdralston/puttingLeague/models"
	"github.com/pdralston/puttingLeague/repositories"
)

// BracketSnapshot is the full public view of one tournament: the matches in
// match_order with display labels resolved, plus the teams behind them.
type BracketSnapshot struct {
	Tournament *models.Tournament `json:"tournament"`
	Teams      []*models.Team     `json:"teams"`
	Matches    []*models.Match    `json:"matches"`
}

type BracketService interface {
	GenerateBracket(ctx context.Context, tournamentID int) (*BracketSnapshot, error)
	GetBracket(ctx context.Context, tournamentID int) (*BracketSnapshot, error)
}

type bracketService struct {
	db             *sql.DB
	tournamentRepo repositories.TournamentRepository
	teamRepo       repositories.TeamRepository
	matchRepo      repositories.MatchRepository
	locks          *TournamentLocks
	hub            *brackets.Hub
}

func NewBracketService(
	db *sql.DB,
	tournamentRepo repositories.TournamentRepository,
	teamRepo repositories.TeamRepository,
	matchRepo repositories.MatchRepository,
	locks *TournamentLocks,
	hub *brackets.Hub,
) BracketService {
	return &bracketService{
		db:             db,
		tournamentRepo: tournamentRepo,
		teamRepo:       teamRepo,
		matchRepo:      matchRepo,
		locks:          locks,
		hub:            hub,
	}
}

// GenerateBracket builds and persists the match DAG for the tournament's
// current teams. Generation is one-shot: rebuilding teams clears the old
// bracket first, so an existing bracket here is an operator mistake.
func (s *bracketService) GenerateBracket(ctx context.Context, tournamentID int) (*BracketSnapshot, error) {
	unlock, ok := s.locks.tryLock(tournamentID)
	if !ok {
		return nil, ErrConcurrentModification
	}
	defer unlock()

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

	existing, err := s.matchRepo.ListByTournament(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	if len(existing) > 0 {
		return nil, ErrGenerationConflict
	}

	teams, err := s.teamRepo.ListByTournament(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	matches, err := brackets.Generate(brackets.GenerateParams{TournamentID: tournamentID, Teams: teams})
	if err != nil {
		if errors.Is(err, brackets.ErrInvalidTeamCount) {
			return nil, fmt.Errorf("%w: %v", ErrValidationFailed, err)
		}
		return nil, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin bracket transaction: %w", err)
	}
	defer tx.Rollback()
	for _, match := range matches {
		if err := s.matchRepo.Create(ctx, tx, match); err != nil {
			return nil, err
		}
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit bracket transaction: %w", err)
	}

	s.hub.BroadcastMatchUpdate(tournamentID, 0, brackets.EventBracketGenerated)

	brackets.New(matches, teams).Annotate()
	return &BracketSnapshot{Tournament: tournament, Teams: teams, Matches: matches}, nil
}

// GetBracket loads the snapshot, fetching the three row sets concurrently.
func (s *bracketService) GetBracket(ctx context.Context, tournamentID int) (*BracketSnapshot, error) {
	snapshot := &BracketSnapshot{}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		tournament, err := s.tournamentRepo.GetByID(gctx, tournamentID)
		if err != nil {
			if errors.Is(err, repositories.ErrTournamentNotFound) {
				return fmt.Errorf("%w: tournament %d", ErrNotFound, tournamentID)
			}
			return err
		}
		snapshot.Tournament = tournament
		return nil
	})
	g.Go(func() error {
		teams, err := s.teamRepo.ListByTournament(gctx, tournamentID)
		if err != nil {
			return err
		}
		snapshot.Teams = teams
		return nil
	})
	g.Go(func() error {
		matches, err := s.matchRepo.ListByTournament(gctx, tournamentID)
		if err != nil {
			return err
		}
		snapshot.Matches = matches
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	brackets.New(snapshot.Matches, snapshot.Teams).Annotate()
	return snapshot, nil
}
