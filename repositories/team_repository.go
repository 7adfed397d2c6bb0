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
	ErrTeamNotFound = errors.New("team not found")
	ErrTeamInvalid  = errors.New("team tournament or player invalid")
)

type TeamRepository interface {
	Create(ctx context.Context, exec SQLExecutor, team *models.Team) error
	GetByID(ctx context.Context, id int) (*models.Team, error)
	ListByTournament(ctx context.Context, tournamentID int) ([]*models.Team, error)
	UpdateFinalPlace(ctx context.Context, exec SQLExecutor, teamID int, place *int, pointsEarned int) error
	DeleteByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) error
}

type postgresTeamRepository struct {
	db *sql.DB
}

func NewPostgresTeamRepository(db *sql.DB) TeamRepository {
	return &postgresTeamRepository{db: db}
}

func (r *postgresTeamRepository) Create(ctx context.Context, exec SQLExecutor, team *models.Team) error {
	query := `
		INSERT INTO teams (tournament_id, player1_id, player2_id, is_ghost_team, seed_number)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING team_id`

	err := exec.QueryRowContext(ctx, query,
		team.TournamentID, team.Player1ID, team.Player2ID, team.IsGhostTeam, team.SeedNumber,
	).Scan(&team.ID)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23503" {
			return ErrTeamInvalid
		}
		return fmt.Errorf("failed to create team for tournament %d: %w", team.TournamentID, err)
	}
	return nil
}

func (r *postgresTeamRepository) GetByID(ctx context.Context, id int) (*models.Team, error) {
	query := `
		SELECT team_id, tournament_id, player1_id, player2_id, is_ghost_team,
		       seed_number, final_place, points_earned
		FROM teams
		WHERE team_id = $1`

	team := &models.Team{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&team.ID, &team.TournamentID, &team.Player1ID, &team.Player2ID,
		&team.IsGhostTeam, &team.SeedNumber, &team.FinalPlace, &team.PointsEarned,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTeamNotFound
		}
		return nil, fmt.Errorf("failed to scan team by id %d: %w", id, err)
	}
	return team, nil
}

// ListByTournament loads teams with both player rows joined in, ordered by
// seed so the result feeds the bracket generator directly.
func (r *postgresTeamRepository) ListByTournament(ctx context.Context, tournamentID int) ([]*models.Team, error) {
	query := `
		SELECT t.team_id, t.tournament_id, t.player1_id, t.player2_id, t.is_ghost_team,
		       t.seed_number, t.final_place, t.points_earned,
		       p1.player_name, p1.nickname, p1.division, p1.seasonal_points, p1.seasonal_cash,
		       p2.player_name, p2.nickname, p2.division, p2.seasonal_points, p2.seasonal_cash
		FROM teams t
		JOIN players p1 ON p1.player_id = t.player1_id
		LEFT JOIN players p2 ON p2.player_id = t.player2_id
		WHERE t.tournament_id = $1
		ORDER BY t.seed_number ASC`

	rows, err := r.db.QueryContext(ctx, query, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to query teams for tournament %d: %w", tournamentID, err)
	}
	defer rows.Close()

	teams := make([]*models.Team, 0)
	for rows.Next() {
		var team models.Team
		var p1 models.Player
		var p2Name, p2Division sql.NullString
		var p2Nickname *string
		var p2Points, p2Cash sql.NullInt64
		if scanErr := rows.Scan(
			&team.ID, &team.TournamentID, &team.Player1ID, &team.Player2ID,
			&team.IsGhostTeam, &team.SeedNumber, &team.FinalPlace, &team.PointsEarned,
			&p1.Name, &p1.Nickname, &p1.Division, &p1.SeasonalPoints, &p1.SeasonalCash,
			&p2Name, &p2Nickname, &p2Division, &p2Points, &p2Cash,
		); scanErr != nil {
			return nil, fmt.Errorf("failed to scan team row: %w", scanErr)
		}
		p1.ID = team.Player1ID
		team.Player1 = &p1
		if team.Player2ID != nil {
			team.Player2 = &models.Player{
				ID:             *team.Player2ID,
				Name:           p2Name.String,
				Nickname:       p2Nickname,
				Division:       models.Division(p2Division.String),
				SeasonalPoints: int(p2Points.Int64),
				SeasonalCash:   int(p2Cash.Int64),
			}
		}
		teams = append(teams, &team)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during team rows iteration: %w", err)
	}
	return teams, nil
}

func (r *postgresTeamRepository) UpdateFinalPlace(ctx context.Context, exec SQLExecutor, teamID int, place *int, pointsEarned int) error {
	query := `UPDATE teams SET final_place = $1, points_earned = $2 WHERE team_id = $3`
	result, err := exec.ExecContext(ctx, query, place, pointsEarned, teamID)
	if err != nil {
		return fmt.Errorf("failed to update final place for team %d: %w", teamID, err)
	}
	return checkAffectedRows(result, ErrTeamNotFound)
}

func (r *postgresTeamRepository) DeleteByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) error {
	query := `DELETE FROM teams WHERE tournament_id = $1`
	if _, err := exec.ExecContext(ctx, query, tournamentID); err != nil {
		return fmt.Errorf("failed to delete teams for tournament %d: %w", tournamentID, err)
	}
	return nil
}
