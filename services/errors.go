package services

import "errors"

// Shared service errors, mapped to HTTP statuses in the handler layer.
var (
	ErrNotFound = errors.New("requested resource not found")

	// Validation and business rules.
	ErrValidationFailed      = errors.New("validation failed")
	ErrInvalidDivision       = errors.New("invalid division")
	ErrPlayerNameRequired    = errors.New("player name is required")
	ErrInsufficientPlayers   = errors.New("at least 2 players are required to build teams")
	ErrTournamentNotEditable = errors.New("tournament is no longer accepting changes")
	ErrTournamentCompleted   = errors.New("tournament is already completed")
	ErrTournamentNotStarted  = errors.New("tournament has not started")

	// Conflicts.
	ErrGenerationConflict     = errors.New("bracket already generated for this tournament")
	ErrConcurrentModification = errors.New("another operation is modifying this tournament")
	ErrPlayerNameConflict     = errors.New("player name is already in use")
	ErrUsernameConflict       = errors.New("username is already in use")

	// Authentication.
	ErrInvalidCredentials = errors.New("invalid username or password")
)
