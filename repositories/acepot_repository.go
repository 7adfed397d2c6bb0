package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/pdralston/puttingLeague/models"
)

var (
	ErrAcePotEntryNotFound = errors.New("ace pot entry not found")
	ErrAcePotEntryInvalid  = errors.New("ace pot entry tournament invalid")
)

// AcePotRepository is an append-only ledger. Entries are only ever deleted as
// part of an idempotent re-finalization, which rewrites the tournament's rows
// wholesale.
type AcePotRepository interface {
	Create(ctx context.Context, exec SQLExecutor, entry *models.AcePotEntry) error
	List(ctx context.Context) ([]*models.AcePotEntry, error)
	Balance(ctx context.Context, exec SQLExecutor) (int, error)
	DeleteByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) error
}

type postgresAcePotRepository struct {
	db *sql.DB
}

func NewPostgresAcePotRepository(db *sql.DB) AcePotRepository {
	return &postgresAcePotRepository{db: db}
}

func (r *postgresAcePotRepository) Create(ctx context.Context, exec SQLExecutor, entry *models.AcePotEntry) error {
	if entry.Date.IsZero() {
		entry.Date = time.Now()
	}
	query := `
		INSERT INTO ace_pot_ledger (tournament_id, date, description, amount)
		VALUES ($1, $2, $3, $4)
		RETURNING ace_pot_id`

	err := exec.QueryRowContext(ctx, query, entry.TournamentID, entry.Date, entry.Description, entry.Amount).Scan(&entry.ID)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23503" {
			return ErrAcePotEntryInvalid
		}
		return fmt.Errorf("failed to create ace pot entry: %w", err)
	}
	return nil
}

// List returns the ledger in chronological order with the running balance
// derived per row.
func (r *postgresAcePotRepository) List(ctx context.Context) ([]*models.AcePotEntry, error) {
	query := `
		SELECT ace_pot_id, tournament_id, date, description, amount
		FROM ace_pot_ledger
		ORDER BY date ASC, ace_pot_id ASC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query ace pot ledger: %w", err)
	}
	defer rows.Close()

	entries := make([]*models.AcePotEntry, 0)
	balance := 0
	for rows.Next() {
		var e models.AcePotEntry
		if scanErr := rows.Scan(&e.ID, &e.TournamentID, &e.Date, &e.Description, &e.Amount); scanErr != nil {
			return nil, fmt.Errorf("failed to scan ace pot row: %w", scanErr)
		}
		balance += e.Amount
		e.Balance = balance
		entries = append(entries, &e)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during ace pot rows iteration: %w", err)
	}
	return entries, nil
}

func (r *postgresAcePotRepository) Balance(ctx context.Context, exec SQLExecutor) (int, error) {
	query := `SELECT COALESCE(SUM(amount), 0) FROM ace_pot_ledger`
	var balance int
	if err := exec.QueryRowContext(ctx, query).Scan(&balance); err != nil {
		return 0, fmt.Errorf("failed to compute ace pot balance: %w", err)
	}
	return balance, nil
}

// DeleteByTournament removes the entries a previous finalization of this
// tournament wrote, so re-finalizing never double-counts buy-ins or payouts.
func (r *postgresAcePotRepository) DeleteByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) error {
	query := `DELETE FROM ace_pot_ledger WHERE tournament_id = $1`
	if _, err := exec.ExecContext(ctx, query, tournamentID); err != nil {
		return fmt.Errorf("failed to delete ace pot entries for tournament %d: %w", tournamentID, err)
	}
	return nil
}
