package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/pdralston/puttingLeague/models"
	"github.com/pdralston/puttingLeague/repositories"
)

type UpdatePlayerInput struct {
	Name     string          `json:"player_name"`
	Nickname *string         `json:"nickname,omitempty"`
	Division models.Division `json:"division"`
}

type PlayerService interface {
	GetByID(ctx context.Context, id int) (*models.Player, error)
	List(ctx context.Context) ([]*models.Player, error)
	Update(ctx context.Context, id int, input UpdatePlayerInput) (*models.Player, error)
	History(ctx context.Context, id int) ([]*models.TeamHistory, error)
}

type playerService struct {
	db          *sql.DB
	playerRepo  repositories.PlayerRepository
	historyRepo repositories.TeamHistoryRepository
}

func NewPlayerService(db *sql.DB, playerRepo repositories.PlayerRepository, historyRepo repositories.TeamHistoryRepository) PlayerService {
	return &playerService{db: db, playerRepo: playerRepo, historyRepo: historyRepo}
}

func (s *playerService) GetByID(ctx context.Context, id int) (*models.Player, error) {
	player, err := s.playerRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrPlayerNotFound) {
			return nil, fmt.Errorf("%w: player %d", ErrNotFound, id)
		}
		return nil, err
	}
	return player, nil
}

func (s *playerService) List(ctx context.Context) ([]*models.Player, error) {
	return s.playerRepo.List(ctx)
}

func (s *playerService) Update(ctx context.Context, id int, input UpdatePlayerInput) (*models.Player, error) {
	player, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if input.Name == "" {
		return nil, ErrPlayerNameRequired
	}
	if !input.Division.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidDivision, input.Division)
	}
	player.Name = input.Name
	player.Nickname = input.Nickname
	player.Division = input.Division

	if err := s.playerRepo.Update(ctx, s.db, player); err != nil {
		if errors.Is(err, repositories.ErrPlayerNameTaken) {
			return nil, fmt.Errorf("%w: %q", ErrPlayerNameConflict, input.Name)
		}
		return nil, err
	}
	return player, nil
}

// History lists who this player has been paired with and how they fared.
func (s *playerService) History(ctx context.Context, id int) ([]*models.TeamHistory, error) {
	if _, err := s.GetByID(ctx, id); err != nil {
		return nil, err
	}
	return s.historyRepo.ListByPlayer(ctx, id)
}
