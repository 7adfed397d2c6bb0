package services

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/pdralston/puttingLeague/brackets"
	"github.com/pdralston/puttingLeague/models"
	"github.com/pdralston/puttingLeague/repositories"
	"github.com/pdralston/puttingLeague/storage"
)

const acePotBuyIn = 1

type StandingsService interface {
	// Finalize settles a fully played bracket: final places, seasonal points
	// and cash, pairing history, the ace pot ledger, and the tournament
	// status. Safe to run again after a correction.
	Finalize(ctx context.Context, tournamentID int, b *brackets.Bracket) error
	// RecalculateStats reapplies points and cash from the teams' current
	// final places, honoring manual overrides.
	RecalculateStats(ctx context.Context, tournamentID int) error
	OverridePlace(ctx context.Context, tournamentID, teamID, place int) error
	SeasonStandings(ctx context.Context) ([]*models.Player, error)
}

type standingsService struct {
	db             *sql.DB
	tournamentRepo repositories.TournamentRepository
	teamRepo       repositories.TeamRepository
	matchRepo      repositories.MatchRepository
	playerRepo     repositories.PlayerRepository
	regRepo        repositories.RegistrationRepository
	historyRepo    repositories.TeamHistoryRepository
	acePotRepo     repositories.AcePotRepository
	uploader       storage.FileUploader
	logger         *slog.Logger
}

func NewStandingsService(
	db *sql.DB,
	tournamentRepo repositories.TournamentRepository,
	teamRepo repositories.TeamRepository,
	matchRepo repositories.MatchRepository,
	playerRepo repositories.PlayerRepository,
	regRepo repositories.RegistrationRepository,
	historyRepo repositories.TeamHistoryRepository,
	acePotRepo repositories.AcePotRepository,
	uploader storage.FileUploader,
	logger *slog.Logger,
) StandingsService {
	return &standingsService{
		db:             db,
		tournamentRepo: tournamentRepo,
		teamRepo:       teamRepo,
		matchRepo:      matchRepo,
		playerRepo:     playerRepo,
		regRepo:        regRepo,
		historyRepo:    historyRepo,
		acePotRepo:     acePotRepo,
		uploader:       uploader,
		logger:         logger,
	}
}

func (s *standingsService) Finalize(ctx context.Context, tournamentID int, b *brackets.Bracket) error {
	tournament, err := s.tournamentRepo.GetByID(ctx, tournamentID)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return fmt.Errorf("%w: tournament %d", ErrNotFound, tournamentID)
		}
		return err
	}
	firstFinalization := tournament.Status != models.TournamentCompleted

	placements, err := brackets.FinalPlacements(b)
	if err != nil {
		return err
	}
	teams, err := s.teamRepo.ListByTournament(ctx, tournamentID)
	if err != nil {
		return err
	}
	regs, err := s.regRepo.ListByTournament(ctx, tournamentID)
	if err != nil {
		return err
	}
	teamsByID := make(map[int]*models.Team, len(teams))
	for _, team := range teams {
		teamsByID[team.ID] = team
	}
	payout := brackets.ComputePayout(len(teams))

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin finalize transaction: %w", err)
	}
	defer tx.Rollback()

	for _, placement := range placements {
		team := teamsByID[placement.TeamID]
		if team == nil {
			return fmt.Errorf("%w: team %d", ErrNotFound, placement.TeamID)
		}
		newPoints := brackets.SeasonalPoints(placement.Place)
		newCash := cashForPlace(placement.Place, payout)

		// Idempotent re-application: back out whatever a previous run of
		// this tournament credited before applying the new values.
		oldPoints := team.PointsEarned
		oldCash := 0
		if team.FinalPlace != nil {
			oldCash = cashForPlace(*team.FinalPlace, payout)
		}
		place := placement.Place
		if err := s.teamRepo.UpdateFinalPlace(ctx, tx, team.ID, &place, newPoints); err != nil {
			return err
		}
		playerIDs := teamPlayerIDs(team)
		for i, playerCash := range splitCash(newCash-oldCash, len(playerIDs)) {
			if err := s.playerRepo.AddSeasonalStats(ctx, tx, playerIDs[i], newPoints-oldPoints, playerCash); err != nil {
				return err
			}
		}

		if firstFinalization && team.Player2ID != nil {
			if err := s.historyRepo.RecordPairing(ctx, tx, team.Player1ID, *team.Player2ID, placement.Place); err != nil {
				return err
			}
			if err := s.historyRepo.RecordPairing(ctx, tx, *team.Player2ID, team.Player1ID, placement.Place); err != nil {
				return err
			}
		}
	}

	acePotPayout, err := s.settleAcePot(ctx, tx, tournament, b, placements, teamsByID, regs)
	if err != nil {
		return err
	}
	if err := s.tournamentRepo.Complete(ctx, tx, tournamentID, acePotPayout); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit finalize transaction: %w", err)
	}

	s.archive(ctx, tournament, teams, b)
	return nil
}

// settleAcePot rewrites the tournament's ledger rows: the pooled buy-ins, and
// a payout when the champion team went undefeated with every player bought in.
func (s *standingsService) settleAcePot(
	ctx context.Context,
	tx *sql.Tx,
	tournament *models.Tournament,
	b *brackets.Bracket,
	placements []brackets.Placement,
	teamsByID map[int]*models.Team,
	regs []*models.Registration,
) (int, error) {
	if err := s.acePotRepo.DeleteByTournament(ctx, tx, tournament.ID); err != nil {
		return 0, err
	}

	boughtIn := make(map[int]bool, len(regs))
	buyIns := 0
	for _, reg := range regs {
		if reg.BoughtAcePot {
			boughtIn[reg.PlayerID] = true
			buyIns++
		}
	}
	if buyIns > 0 {
		entry := &models.AcePotEntry{
			TournamentID: &tournament.ID,
			Date:         tournament.Date,
			Description:  fmt.Sprintf("Buy-ins (%d players)", buyIns),
			Amount:       buyIns * acePotBuyIn,
		}
		if err := s.acePotRepo.Create(ctx, tx, entry); err != nil {
			return 0, err
		}
	}

	champion := teamsByID[placements[0].TeamID]
	if champion == nil || !brackets.Undefeated(b, champion.ID) {
		return 0, nil
	}
	for _, playerID := range teamPlayerIDs(champion) {
		if !boughtIn[playerID] {
			return 0, nil
		}
	}

	balance, err := s.acePotRepo.Balance(ctx, tx)
	if err != nil {
		return 0, err
	}
	if balance <= 0 {
		return 0, nil
	}
	entry := &models.AcePotEntry{
		TournamentID: &tournament.ID,
		Date:         tournament.Date,
		Description:  fmt.Sprintf("Payout to %s (undefeated)", champion.DisplayName()),
		Amount:       -balance,
	}
	if err := s.acePotRepo.Create(ctx, tx, entry); err != nil {
		return 0, err
	}
	return balance, nil
}

// archive uploads the finished tournament snapshot to object storage.
// Best-effort: a failed upload never unwinds a finalized tournament.
func (s *standingsService) archive(ctx context.Context, tournament *models.Tournament, teams []*models.Team, b *brackets.Bracket) {
	if s.uploader == nil {
		return
	}
	snapshot := BracketSnapshot{Tournament: tournament, Teams: teams, Matches: b.Matches()}
	payload, err := json.Marshal(snapshot)
	if err != nil {
		s.logger.Error("failed to marshal tournament archive", "tournament_id", tournament.ID, "error", err)
		return
	}
	key := fmt.Sprintf("tournaments/%d/%s.json", tournament.ID, tournament.Date.Format(time.DateOnly))
	if _, err := s.uploader.Upload(ctx, key, "application/json", bytes.NewReader(payload)); err != nil {
		s.logger.Error("failed to upload tournament archive", "tournament_id", tournament.ID, "key", key, "error", err)
		return
	}
	s.logger.Info("tournament archived", "tournament_id", tournament.ID, "key", key)
}

func (s *standingsService) RecalculateStats(ctx context.Context, tournamentID int) error {
	tournament, err := s.tournamentRepo.GetByID(ctx, tournamentID)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return fmt.Errorf("%w: tournament %d", ErrNotFound, tournamentID)
		}
		return err
	}
	if tournament.Status != models.TournamentCompleted {
		return ErrTournamentNotStarted
	}
	teams, err := s.teamRepo.ListByTournament(ctx, tournamentID)
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin stats transaction: %w", err)
	}
	defer tx.Rollback()

	for _, team := range teams {
		if team.FinalPlace == nil {
			continue
		}
		newPoints := brackets.SeasonalPoints(*team.FinalPlace)
		pointsDelta := newPoints - team.PointsEarned
		if pointsDelta != 0 {
			if err := s.teamRepo.UpdateFinalPlace(ctx, tx, team.ID, team.FinalPlace, newPoints); err != nil {
				return err
			}
			for _, playerID := range teamPlayerIDs(team) {
				if err := s.playerRepo.AddSeasonalStats(ctx, tx, playerID, pointsDelta, 0); err != nil {
					return err
				}
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit stats transaction: %w", err)
	}
	return nil
}

// OverridePlace lets an admin correct a finishing position after the fact,
// then reapplies the seasonal points that follow from it.
func (s *standingsService) OverridePlace(ctx context.Context, tournamentID, teamID, place int) error {
	if place < 1 {
		return fmt.Errorf("%w: place must be positive", ErrValidationFailed)
	}
	team, err := s.teamRepo.GetByID(ctx, teamID)
	if err != nil {
		if errors.Is(err, repositories.ErrTeamNotFound) {
			return fmt.Errorf("%w: team %d", ErrNotFound, teamID)
		}
		return err
	}
	if team.TournamentID != tournamentID {
		return fmt.Errorf("%w: team %d", ErrNotFound, teamID)
	}
	if err := s.teamRepo.UpdateFinalPlace(ctx, s.db, teamID, &place, team.PointsEarned); err != nil {
		return err
	}
	return s.RecalculateStats(ctx, tournamentID)
}

// SeasonStandings lists players by seasonal points, the repository's natural
// order.
func (s *standingsService) SeasonStandings(ctx context.Context) ([]*models.Player, error) {
	return s.playerRepo.List(ctx)
}

func teamPlayerIDs(team *models.Team) []int {
	ids := []int{team.Player1ID}
	if team.Player2ID != nil {
		ids = append(ids, *team.Player2ID)
	}
	return ids
}

func cashForPlace(place int, payout brackets.Payout) int {
	switch place {
	case 1:
		return payout.First
	case 2:
		return payout.Second
	}
	return 0
}

// splitCash divides a cash delta over n players without losing dollars to
// integer division: the remainder of an uneven split goes to the first
// player, and a negative delta reclaims it from the same player.
func splitCash(delta, n int) []int {
	shares := make([]int, n)
	for i := range shares {
		shares[i] = delta / n
	}
	shares[0] += delta % n
	return shares
}
