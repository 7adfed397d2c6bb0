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
	ErrMatchNotFound = errors.New("match not found")
	ErrMatchInvalid  = errors.New("match tournament or team invalid")
)

// MatchRepository persists the match DAG. Match ids are scoped per tournament
// (composite primary key) and assigned by the generator, so Create takes the
// id with the row and advancement edges can be written in the same pass.
type MatchRepository interface {
	Create(ctx context.Context, exec SQLExecutor, match *models.Match) error
	GetByID(ctx context.Context, tournamentID, matchID int) (*models.Match, error)
	ListByTournament(ctx context.Context, tournamentID int) ([]*models.Match, error)
	Update(ctx context.Context, exec SQLExecutor, match *models.Match) error
	DeleteByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) error
}

type postgresMatchRepository struct {
	db *sql.DB
}

func NewPostgresMatchRepository(db *sql.DB) MatchRepository {
	return &postgresMatchRepository{db: db}
}

const matchColumns = `match_id, tournament_id, stage_type, bracket_side, round_number,
	position_in_round, match_order, team1_id, team2_id, team1_score, team2_score,
	match_status, station_id, winner_advances_to_match_id, loser_advances_to_match_id`

func (r *postgresMatchRepository) Create(ctx context.Context, exec SQLExecutor, match *models.Match) error {
	query := `
		INSERT INTO matches (` + matchColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`

	_, err := exec.ExecContext(ctx, query,
		match.ID, match.TournamentID, match.Stage, match.Side, match.Round,
		match.Position, match.Order, match.Team1ID, match.Team2ID,
		match.Team1Score, match.Team2Score, match.Status, match.StationID,
		match.WinnerTo, match.LoserTo,
	)
	return r.handleMatchError(err, match.TournamentID, match.ID)
}

func (r *postgresMatchRepository) GetByID(ctx context.Context, tournamentID, matchID int) (*models.Match, error) {
	query := `SELECT ` + matchColumns + ` FROM matches WHERE tournament_id = $1 AND match_id = $2`

	match := &models.Match{}
	err := r.db.QueryRowContext(ctx, query, tournamentID, matchID).Scan(
		&match.ID, &match.TournamentID, &match.Stage, &match.Side, &match.Round,
		&match.Position, &match.Order, &match.Team1ID, &match.Team2ID,
		&match.Team1Score, &match.Team2Score, &match.Status, &match.StationID,
		&match.WinnerTo, &match.LoserTo,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMatchNotFound
		}
		return nil, fmt.Errorf("failed to scan match (%d, %d): %w", tournamentID, matchID, err)
	}
	return match, nil
}

func (r *postgresMatchRepository) ListByTournament(ctx context.Context, tournamentID int) ([]*models.Match, error) {
	query := `SELECT ` + matchColumns + ` FROM matches WHERE tournament_id = $1 ORDER BY match_order ASC`

	rows, err := r.db.QueryContext(ctx, query, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to query matches for tournament %d: %w", tournamentID, err)
	}
	defer rows.Close()

	matches := make([]*models.Match, 0)
	for rows.Next() {
		var match models.Match
		if scanErr := rows.Scan(
			&match.ID, &match.TournamentID, &match.Stage, &match.Side, &match.Round,
			&match.Position, &match.Order, &match.Team1ID, &match.Team2ID,
			&match.Team1Score, &match.Team2Score, &match.Status, &match.StationID,
			&match.WinnerTo, &match.LoserTo,
		); scanErr != nil {
			return nil, fmt.Errorf("failed to scan match row: %w", scanErr)
		}
		matches = append(matches, &match)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during match rows iteration: %w", err)
	}
	return matches, nil
}

// Update writes every mutable field. The progression engine owns the derived
// state, so partial updates would only invite drift.
func (r *postgresMatchRepository) Update(ctx context.Context, exec SQLExecutor, match *models.Match) error {
	query := `
		UPDATE matches
		SET team1_id = $1, team2_id = $2, team1_score = $3, team2_score = $4,
		    match_status = $5, station_id = $6
		WHERE tournament_id = $7 AND match_id = $8`

	result, err := exec.ExecContext(ctx, query,
		match.Team1ID, match.Team2ID, match.Team1Score, match.Team2Score,
		match.Status, match.StationID, match.TournamentID, match.ID,
	)
	if err != nil {
		return r.handleMatchError(err, match.TournamentID, match.ID)
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

func (r *postgresMatchRepository) DeleteByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) error {
	query := `DELETE FROM matches WHERE tournament_id = $1`
	if _, err := exec.ExecContext(ctx, query, tournamentID); err != nil {
		return fmt.Errorf("failed to delete matches for tournament %d: %w", tournamentID, err)
	}
	return nil
}

func (r *postgresMatchRepository) handleMatchError(err error, tournamentID, matchID int) error {
	if err == nil {
		return nil
	}
	if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23503" {
		return ErrMatchInvalid
	}
	return fmt.Errorf("match repository error (%d, %d): %w", tournamentID, matchID, err)
}
