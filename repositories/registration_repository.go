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
	ErrRegistrationNotFound = errors.New("registration not found")
	ErrRegistrationInvalid  = errors.New("registration tournament or player invalid")
)

type RegistrationRepository interface {
	Upsert(ctx context.Context, exec SQLExecutor, reg *models.Registration) error
	ListByTournament(ctx context.Context, tournamentID int) ([]*models.Registration, error)
	Delete(ctx context.Context, exec SQLExecutor, tournamentID, playerID int) error
}

type postgresRegistrationRepository struct {
	db *sql.DB
}

func NewPostgresRegistrationRepository(db *sql.DB) RegistrationRepository {
	return &postgresRegistrationRepository{db: db}
}

// Upsert keeps registration idempotent: re-registering a player only updates
// the ace-pot flag.
func (r *postgresRegistrationRepository) Upsert(ctx context.Context, exec SQLExecutor, reg *models.Registration) error {
	query := `
		INSERT INTO tournament_registrations (tournament_id, player_id, bought_ace_pot)
		VALUES ($1, $2, $3)
		ON CONFLICT (tournament_id, player_id)
		DO UPDATE SET bought_ace_pot = EXCLUDED.bought_ace_pot`

	_, err := exec.ExecContext(ctx, query, reg.TournamentID, reg.PlayerID, reg.BoughtAcePot)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23503" {
			return ErrRegistrationInvalid
		}
		return fmt.Errorf("failed to upsert registration (%d, %d): %w", reg.TournamentID, reg.PlayerID, err)
	}
	return nil
}

func (r *postgresRegistrationRepository) ListByTournament(ctx context.Context, tournamentID int) ([]*models.Registration, error) {
	query := `
		SELECT tr.tournament_id, tr.player_id, tr.bought_ace_pot,
		       p.player_name, p.nickname, p.division, p.seasonal_points, p.seasonal_cash
		FROM tournament_registrations tr
		JOIN players p ON p.player_id = tr.player_id
		WHERE tr.tournament_id = $1
		ORDER BY tr.player_id ASC`

	rows, err := r.db.QueryContext(ctx, query, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to query registrations for tournament %d: %w", tournamentID, err)
	}
	defer rows.Close()

	regs := make([]*models.Registration, 0)
	for rows.Next() {
		var reg models.Registration
		var p models.Player
		if scanErr := rows.Scan(
			&reg.TournamentID, &reg.PlayerID, &reg.BoughtAcePot,
			&p.Name, &p.Nickname, &p.Division, &p.SeasonalPoints, &p.SeasonalCash,
		); scanErr != nil {
			return nil, fmt.Errorf("failed to scan registration row: %w", scanErr)
		}
		p.ID = reg.PlayerID
		reg.Player = &p
		regs = append(regs, &reg)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during registration rows iteration: %w", err)
	}
	return regs, nil
}

func (r *postgresRegistrationRepository) Delete(ctx context.Context, exec SQLExecutor, tournamentID, playerID int) error {
	query := `DELETE FROM tournament_registrations WHERE tournament_id = $1 AND player_id = $2`
	result, err := exec.ExecContext(ctx, query, tournamentID, playerID)
	if err != nil {
		return fmt.Errorf("failed to delete registration (%d, %d): %w", tournamentID, playerID, err)
	}
	return checkAffectedRows(result, ErrRegistrationNotFound)
}
