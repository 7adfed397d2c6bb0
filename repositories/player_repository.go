package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/pdralston/puttingLeague/models"
)

var (
	ErrPlayerNotFound   = errors.New("player not found")
	ErrPlayerNameTaken  = errors.New("player name already taken")
	ErrPlayerInvalidRef = errors.New("player reference conflict or invalid")
)

type PlayerRepository interface {
	Create(ctx context.Context, exec SQLExecutor, player *models.Player) error
	GetByID(ctx context.Context, id int) (*models.Player, error)
	GetByName(ctx context.Context, name string) (*models.Player, error)
	List(ctx context.Context) ([]*models.Player, error)
	Update(ctx context.Context, exec SQLExecutor, player *models.Player) error
	AddSeasonalStats(ctx context.Context, exec SQLExecutor, playerID, pointsDelta, cashDelta int) error
}

type postgresPlayerRepository struct {
	db *sql.DB
}

func NewPostgresPlayerRepository(db *sql.DB) PlayerRepository {
	return &postgresPlayerRepository{db: db}
}

const playerColumns = `player_id, player_name, nickname, division, seasonal_points, seasonal_cash`

func (r *postgresPlayerRepository) Create(ctx context.Context, exec SQLExecutor, player *models.Player) error {
	query := `
		INSERT INTO players (player_name, nickname, division)
		VALUES ($1, $2, $3)
		RETURNING player_id`

	err := exec.QueryRowContext(ctx, query, player.Name, player.Nickname, player.Division).Scan(&player.ID)
	return r.handlePlayerError(err)
}

func (r *postgresPlayerRepository) GetByID(ctx context.Context, id int) (*models.Player, error) {
	query := `SELECT ` + playerColumns + ` FROM players WHERE player_id = $1`

	player := &models.Player{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&player.ID, &player.Name, &player.Nickname, &player.Division,
		&player.SeasonalPoints, &player.SeasonalCash,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPlayerNotFound
		}
		return nil, fmt.Errorf("failed to scan player by id %d: %w", id, err)
	}
	return player, nil
}

func (r *postgresPlayerRepository) GetByName(ctx context.Context, name string) (*models.Player, error) {
	query := `SELECT ` + playerColumns + ` FROM players WHERE player_name = $1`

	player := &models.Player{}
	err := r.db.QueryRowContext(ctx, query, name).Scan(
		&player.ID, &player.Name, &player.Nickname, &player.Division,
		&player.SeasonalPoints, &player.SeasonalCash,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPlayerNotFound
		}
		return nil, fmt.Errorf("failed to scan player by name %q: %w", name, err)
	}
	return player, nil
}

func (r *postgresPlayerRepository) List(ctx context.Context) ([]*models.Player, error) {
	query := `
		SELECT ` + playerColumns + `
		FROM players
		ORDER BY seasonal_points DESC, seasonal_cash DESC, player_name ASC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query players: %w", err)
	}
	defer rows.Close()

	players := make([]*models.Player, 0)
	for rows.Next() {
		var p models.Player
		if scanErr := rows.Scan(&p.ID, &p.Name, &p.Nickname, &p.Division, &p.SeasonalPoints, &p.SeasonalCash); scanErr != nil {
			return nil, fmt.Errorf("failed to scan player row: %w", scanErr)
		}
		players = append(players, &p)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during player rows iteration: %w", err)
	}
	return players, nil
}

func (r *postgresPlayerRepository) Update(ctx context.Context, exec SQLExecutor, player *models.Player) error {
	query := `
		UPDATE players
		SET player_name = $1, nickname = $2, division = $3
		WHERE player_id = $4`

	result, err := exec.ExecContext(ctx, query, player.Name, player.Nickname, player.Division, player.ID)
	if err != nil {
		return r.handlePlayerError(err)
	}
	return checkAffectedRows(result, ErrPlayerNotFound)
}

func (r *postgresPlayerRepository) AddSeasonalStats(ctx context.Context, exec SQLExecutor, playerID, pointsDelta, cashDelta int) error {
	query := `
		UPDATE players
		SET seasonal_points = seasonal_points + $1, seasonal_cash = seasonal_cash + $2
		WHERE player_id = $3`

	result, err := exec.ExecContext(ctx, query, pointsDelta, cashDelta, playerID)
	if err != nil {
		return fmt.Errorf("failed to update seasonal stats for player %d: %w", playerID, err)
	}
	return checkAffectedRows(result, ErrPlayerNotFound)
}

func (r *postgresPlayerRepository) handlePlayerError(err error) error {
	if err == nil {
		return nil
	}
	if pqErr, ok := err.(*pq.Error); ok {
		switch pqErr.Constraint {
		case "players_player_name_key":
			return ErrPlayerNameTaken
		}
		if pqErr.Code == "23503" {
			return ErrPlayerInvalidRef
		}
	}
	return fmt.Errorf("player repository error: %w", err)
}
