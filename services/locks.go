package services

import "sync"

// TournamentLocks serializes mutating operations per tournament. Progression
// runs read-modify-write over the whole bracket, so two concurrent score
// submissions for the same tournament must never interleave; different
// tournaments proceed independently. One instance is shared by every service
// that mutates tournament state.
type TournamentLocks struct {
	mu    sync.Mutex
	locks map[int]*sync.Mutex
}

func NewTournamentLocks() *TournamentLocks {
	return &TournamentLocks{locks: make(map[int]*sync.Mutex)}
}

func (l *TournamentLocks) get(tournamentID int) *sync.Mutex {
	l.mu.Lock()
	defer l.mu.Unlock()
	m, ok := l.locks[tournamentID]
	if !ok {
		m = &sync.Mutex{}
		l.locks[tournamentID] = m
	}
	return m
}

// tryLock reports failure instead of blocking, so a second operator's
// conflicting submission gets an immediate conflict response.
func (l *TournamentLocks) tryLock(tournamentID int) (unlock func(), ok bool) {
	m := l.get(tournamentID)
	if !m.TryLock() {
		return nil, false
	}
	return m.Unlock, true
}
