package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/pdralston/puttingLeague/models"
)

// TeamHistoryRepository tracks pairing history symmetrically: every pairing
// writes one row per direction so lookups never need to order the pair.
type TeamHistoryRepository interface {
	RecordPairing(ctx context.Context, exec SQLExecutor, playerID, teammateID, place int) error
	ListByPlayer(ctx context.Context, playerID int) ([]*models.TeamHistory, error)
}

type postgresTeamHistoryRepository struct {
	db *sql.DB
}

func NewPostgresTeamHistoryRepository(db *sql.DB) TeamHistoryRepository {
	return &postgresTeamHistoryRepository{db: db}
}

// RecordPairing folds one tournament result into the pair's running average.
func (r *postgresTeamHistoryRepository) RecordPairing(ctx context.Context, exec SQLExecutor, playerID, teammateID, place int) error {
	query := `
		INSERT INTO team_history (player_id, teammate_id, times_paired, average_place)
		VALUES ($1, $2, 1, $3)
		ON CONFLICT (player_id, teammate_id)
		DO UPDATE SET
			average_place = (team_history.average_place * team_history.times_paired + EXCLUDED.average_place)
				/ (team_history.times_paired + 1),
			times_paired = team_history.times_paired + 1`

	if _, err := exec.ExecContext(ctx, query, playerID, teammateID, float64(place)); err != nil {
		return fmt.Errorf("failed to record pairing (%d, %d): %w", playerID, teammateID, err)
	}
	return nil
}

func (r *postgresTeamHistoryRepository) ListByPlayer(ctx context.Context, playerID int) ([]*models.TeamHistory, error) {
	query := `
		SELECT player_id, teammate_id, times_paired, average_place
		FROM team_history
		WHERE player_id = $1
		ORDER BY times_paired DESC, teammate_id ASC`

	rows, err := r.db.QueryContext(ctx, query, playerID)
	if err != nil {
		return nil, fmt.Errorf("failed to query team history for player %d: %w", playerID, err)
	}
	defer rows.Close()

	history := make([]*models.TeamHistory, 0)
	for rows.Next() {
		var h models.TeamHistory
		if scanErr := rows.Scan(&h.PlayerID, &h.TeammateID, &h.TimesPaired, &h.AveragePlace); scanErr != nil {
			return nil, fmt.Errorf("failed to scan team history row: %w", scanErr)
		}
		history = append(history, &h)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during team history rows iteration: %w", err)
	}
	return history, nil
}
