package brackets

import "errors"

// Engine errors. Validation errors never mutate state; the state-conflict
// ones mean the operation is legal but not possible right now and the caller
// should retry after observing fresh state.
var (
	ErrInvalidTeamCount = errors.New("at least 2 teams are required to generate a bracket")
	ErrInvalidScore     = errors.New("invalid score: matches cannot end in a tie and scores must be non-negative")

	ErrMatchNotFound        = errors.New("match not found in bracket")
	ErrMatchNotReady        = errors.New("match is not ready to start")
	ErrMatchNotStarted      = errors.New("match has not been started")
	ErrNoStationAvailable   = errors.New("no station available")
	ErrChampionshipNotReady = errors.New("bracket is not ready for a championship match")
	ErrChampionshipExists   = errors.New("championship match already exists")
	ErrBracketIncomplete    = errors.New("bracket is not fully played out")

	// ErrCycleDetected is rejected at generation time, before any match is
	// created. It is the only condition the engine treats as unrecoverable.
	ErrCycleDetected = errors.New("advancement edges form a cycle")
)
