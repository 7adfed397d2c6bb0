package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/pdralston/puttingLeague/models"
	"github.com/pdralston/puttingLeague/repositories"
)

type TournamentService interface {
	Create(ctx context.Context, date time.Time) (*models.Tournament, error)
	GetByID(ctx context.Context, id int) (*models.Tournament, error)
	List(ctx context.Context) ([]*models.Tournament, error)
	Cancel(ctx context.Context, id int) (*models.Tournament, error)
	Delete(ctx context.Context, id int) error
}

type tournamentService struct {
	db             *sql.DB
	tournamentRepo repositories.TournamentRepository
	locks          *TournamentLocks
}

func NewTournamentService(db *sql.DB, tournamentRepo repositories.TournamentRepository, locks *TournamentLocks) TournamentService {
	return &tournamentService{db: db, tournamentRepo: tournamentRepo, locks: locks}
}

func (s *tournamentService) Create(ctx context.Context, date time.Time) (*models.Tournament, error) {
	tournament := &models.Tournament{Date: date, Status: models.TournamentScheduled}
	if err := s.tournamentRepo.Create(ctx, s.db, tournament); err != nil {
		return nil, err
	}
	return tournament, nil
}

func (s *tournamentService) GetByID(ctx context.Context, id int) (*models.Tournament, error) {
	tournament, err := s.tournamentRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, fmt.Errorf("%w: tournament %d", ErrNotFound, id)
		}
		return nil, err
	}
	return tournament, nil
}

func (s *tournamentService) List(ctx context.Context) ([]*models.Tournament, error) {
	return s.tournamentRepo.List(ctx)
}

// Cancel abandons a tournament without paying anything out. Completed
// tournaments are immutable history.
func (s *tournamentService) Cancel(ctx context.Context, id int) (*models.Tournament, error) {
	unlock, ok := s.locks.tryLock(id)
	if !ok {
		return nil, ErrConcurrentModification
	}
	defer unlock()

	tournament, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if tournament.Status == models.TournamentCompleted {
		return nil, ErrTournamentCompleted
	}
	if err := s.tournamentRepo.UpdateStatus(ctx, s.db, id, models.TournamentCancelled); err != nil {
		return nil, err
	}
	tournament.Status = models.TournamentCancelled
	return tournament, nil
}

func (s *tournamentService) Delete(ctx context.Context, id int) error {
	unlock, ok := s.locks.tryLock(id)
	if !ok {
		return ErrConcurrentModification
	}
	defer unlock()

	err := s.tournamentRepo.Delete(ctx, s.db, id)
	if errors.Is(err, repositories.ErrTournamentNotFound) {
		return fmt.Errorf("%w: tournament %d", ErrNotFound, id)
	}
	return err
}
