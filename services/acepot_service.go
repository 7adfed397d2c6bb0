package services

import (
	"context"
	"database/sql"

	"github.com/pdralston/puttingLeague/models"
	"github.com/pdralston/puttingLeague/repositories"
)

// AcePotLedger is the ledger with its running total.
type AcePotLedger struct {
	Entries []*models.AcePotEntry `json:"entries"`
	Balance int                   `json:"balance"`
}

type AcePotService interface {
	Ledger(ctx context.Context) (*AcePotLedger, error)
}

type acePotService struct {
	db         *sql.DB
	acePotRepo repositories.AcePotRepository
}

func NewAcePotService(db *sql.DB, acePotRepo repositories.AcePotRepository) AcePotService {
	return &acePotService{db: db, acePotRepo: acePotRepo}
}

func (s *acePotService) Ledger(ctx context.Context) (*AcePotLedger, error) {
	entries, err := s.acePotRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	ledger := &AcePotLedger{Entries: entries}
	if len(entries) > 0 {
		ledger.Balance = entries[len(entries)-1].Balance
	}
	return ledger, nil
}
