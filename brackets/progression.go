package brackets

import (
	"github.com/pdralston/puttingLeague/models"
)

// Engine applies progression operations to a bracket in memory and records
// every match it mutates. Locking and persistence are the caller's concern:
// the caller takes the per-tournament lock, runs one operation, persists
// Touched(), and broadcasts.
type Engine struct {
	b       *Bracket
	touched map[int]struct{}
}

func NewEngine(b *Bracket) *Engine {
	return &Engine{b: b, touched: make(map[int]struct{})}
}

func (e *Engine) Bracket() *Bracket { return e.b }

// Touched returns the matches mutated since the engine was created, in
// global match_order.
func (e *Engine) Touched() []*models.Match {
	out := make([]*models.Match, 0, len(e.touched))
	for _, m := range e.b.ordered {
		if _, ok := e.touched[m.ID]; ok {
			out = append(out, m)
		}
	}
	return out
}

func (e *Engine) touch(m *models.Match) { e.touched[m.ID] = struct{}{} }

// ScoreResult reports the outcome of a Score or AdvanceBye operation.
type ScoreResult struct {
	Match        *models.Match
	WinnerTeamID int
	LoserTeamID  *int
	Rescore      bool
	// Stale lists downstream matches that already consumed a team from this
	// match and were not mutated because they are In_Progress or Completed.
	// A non-empty list means the bracket needs a Recalculate pass.
	Stale []*models.Match
	// Reset is the second championship match, created when the losers-bracket
	// entrant takes the first one.
	Reset *models.Match
	// Final is set when the championship deciding match settles the
	// tournament: every match is Completed and no bracket reset is owed.
	Final bool
}

// Start moves a Scheduled match with both slots resolved to In_Progress,
// holding a station from the pool for its duration.
func (e *Engine) Start(matchID int, pool *StationPool) (*models.Match, error) {
	m := e.b.Match(matchID)
	if m == nil {
		return nil, ErrMatchNotFound
	}
	if m.Status != models.MatchScheduled || m.Team1ID == nil || m.Team2ID == nil {
		return nil, ErrMatchNotReady
	}
	station, err := pool.Acquire()
	if err != nil {
		return nil, err
	}
	m.StationID = &station
	m.Status = models.MatchInProgress
	e.touch(m)
	return m, nil
}

// Score records a result. The normal path completes an In_Progress match and
// releases its station; the administrative correction path re-scores a
// Completed match. Equal scores are rejected before any state changes.
//
// On a correction that flips the winner, advancements already delivered
// downstream are rolled back where the receiving match is still mutable;
// receivers that have started or completed are returned as stale instead of
// being silently altered, and a Recalculate pass is the authoritative repair.
func (e *Engine) Score(matchID, score1, score2 int, pool *StationPool) (*ScoreResult, error) {
	m := e.b.Match(matchID)
	if m == nil {
		return nil, ErrMatchNotFound
	}
	if score1 < 0 || score2 < 0 || score1 == score2 {
		return nil, ErrInvalidScore
	}
	switch m.Status {
	case models.MatchInProgress, models.MatchCompleted:
	default:
		return nil, ErrMatchNotStarted
	}
	// A score cannot award the match to an empty slot (bye re-score).
	if score1 > score2 && m.Team1ID == nil {
		return nil, ErrInvalidScore
	}
	if score2 > score1 && m.Team2ID == nil {
		return nil, ErrInvalidScore
	}

	res := &ScoreResult{Match: m, Rescore: m.Status == models.MatchCompleted}

	var oldWinner, oldLoser *int
	if res.Rescore {
		oldWinner = cloneRef(m.WinnerTeamID())
		oldLoser = cloneRef(m.LoserTeamID())
	}
	if m.Status == models.MatchInProgress && m.StationID != nil {
		pool.Release(*m.StationID)
		m.StationID = nil
	}
	m.Team1Score = ref(score1)
	m.Team2Score = ref(score2)
	m.Status = models.MatchCompleted
	e.touch(m)

	res.WinnerTeamID = *m.WinnerTeamID()
	res.LoserTeamID = cloneRef(m.LoserTeamID())

	if res.Rescore && oldWinner != nil && *oldWinner != res.WinnerTeamID {
		res.Stale = append(res.Stale, e.rollback(m, oldWinner, oldLoser)...)
	}
	e.advance(m, m.WinnerTo, res.WinnerTeamID, res)
	if res.LoserTeamID != nil {
		e.advance(m, m.LoserTo, *res.LoserTeamID, res)
	}
	e.refreshTargets(m)

	if m.Side == models.SideChampionship {
		e.afterChampionshipScore(m, res)
	}
	res.Stale = dedupeMatches(res.Stale)
	res.Final = e.b.Exhausted()
	return res, nil
}

func dedupeMatches(ms []*models.Match) []*models.Match {
	if len(ms) < 2 {
		return ms
	}
	seen := make(map[int]bool, len(ms))
	out := ms[:0]
	for _, m := range ms {
		if !seen[m.ID] {
			seen[m.ID] = true
			out = append(out, m)
		}
	}
	return out
}

// AdvanceBye completes a bye match by synthesizing a 1-0 result for its lone
// team. No station is involved; propagation follows the normal scoring path.
func (e *Engine) AdvanceBye(matchID int) (*ScoreResult, error) {
	m := e.b.Match(matchID)
	if m == nil {
		return nil, ErrMatchNotFound
	}
	if !e.b.IsBye(m) {
		return nil, ErrMatchNotReady
	}
	if m.Team1ID != nil {
		m.Team1Score, m.Team2Score = ref(1), ref(0)
	} else {
		m.Team1Score, m.Team2Score = ref(0), ref(1)
	}
	m.Status = models.MatchCompleted
	e.touch(m)

	res := &ScoreResult{Match: m, WinnerTeamID: *m.WinnerTeamID()}
	e.advance(m, m.WinnerTo, res.WinnerTeamID, res)
	e.refreshTargets(m)
	res.Final = e.b.Exhausted()
	return res, nil
}

// CreateChampionship validates readiness and builds the first championship
// match from the two bracket survivors.
func (e *Engine) CreateChampionship(tournamentID int) (*models.Match, error) {
	m, err := Championship(e.b, tournamentID)
	if err != nil {
		return nil, err
	}
	e.touch(m)
	return m, nil
}

// deliverySlot fixes which slot a feeder's delivery lands in: with two
// feeders, the lower-order feeder owns slot one. Slot assignment therefore
// never depends on the order matches finish, and a replay in match_order
// reproduces the live assignment exactly. Zero means first-free (targets
// with a single feeder, where the other slot is seeded).
func (e *Engine) deliverySlot(t, from *models.Match) int {
	feeders := e.b.Feeders(t.ID)
	if len(feeders) == 2 {
		if feeders[0].ID == from.ID {
			return 1
		}
		return 2
	}
	return 0
}

// advance writes a team from a completed feeder into its designated slot of
// the next match, exactly once. Receivers that already started or finished
// are reported stale rather than mutated.
func (e *Engine) advance(from *models.Match, targetID *int, teamID int, res *ScoreResult) {
	if targetID == nil {
		return
	}
	t := e.b.Match(*targetID)
	if t == nil || t.HasTeam(teamID) {
		return
	}
	if t.Status == models.MatchCompleted || t.Status == models.MatchInProgress {
		res.Stale = append(res.Stale, t)
		return
	}
	switch slot := e.deliverySlot(t, from); {
	case slot == 1 && t.Team1ID == nil:
		t.Team1ID = ref(teamID)
	case slot == 2 && t.Team2ID == nil:
		t.Team2ID = ref(teamID)
	case slot == 0 && t.Team1ID == nil:
		t.Team1ID = ref(teamID)
	case slot == 0 && t.Team2ID == nil:
		t.Team2ID = ref(teamID)
	default:
		// The designated slot holds another team: a correction arrived
		// without a rollback path into this match.
		res.Stale = append(res.Stale, t)
		return
	}
	e.refresh(t)
	e.touch(t)
}

// rollback removes a correction's previous winner/loser from the matches
// they were advanced into. Returns the receivers that could not be unwound.
func (e *Engine) rollback(m *models.Match, oldWinner, oldLoser *int) []*models.Match {
	var stale []*models.Match
	remove := func(targetID, teamID *int) {
		if targetID == nil || teamID == nil {
			return
		}
		t := e.b.Match(*targetID)
		if t == nil || !t.HasTeam(*teamID) {
			return
		}
		if t.Status == models.MatchCompleted || t.Status == models.MatchInProgress {
			stale = append(stale, t)
			return
		}
		if t.Team1ID != nil && *t.Team1ID == *teamID {
			t.Team1ID = nil
		} else {
			t.Team2ID = nil
		}
		e.refresh(t)
		e.touch(t)
	}
	remove(m.WinnerTo, oldWinner)
	remove(m.LoserTo, oldLoser)
	return stale
}

// refreshTargets re-derives the status of both advancement targets after m
// completed. This is what turns a downstream match into a bye when a feeder
// finishes without delivering a team (the feeder was itself a bye).
func (e *Engine) refreshTargets(m *models.Match) {
	for _, targetID := range []*int{m.WinnerTo, m.LoserTo} {
		if targetID == nil {
			continue
		}
		if t := e.b.Match(*targetID); t != nil {
			e.refresh(t)
		}
	}
}

// refresh re-derives a not-yet-started match's status. A match with no teams
// and no feeder left that could deliver one completes vacantly (both feeders
// were byes) and cascades downstream.
func (e *Engine) refresh(t *models.Match) {
	if t.Status == models.MatchCompleted || t.Status == models.MatchInProgress {
		return
	}
	if t.Team1ID == nil && t.Team2ID == nil && len(e.b.Feeders(t.ID)) > 0 && !e.b.hasPendingFeeder(t) {
		t.Status = models.MatchCompleted
		e.touch(t)
		e.refreshTargets(t)
		return
	}
	old := t.Status
	e.b.refreshStatus(t)
	if t.Status != old {
		e.touch(t)
	}
}

func (e *Engine) afterChampionshipScore(m *models.Match, res *ScoreResult) {
	champ := e.b.championship()
	if m.Round == 1 && len(champ) == 1 && m.Team2ID != nil && res.WinnerTeamID == *m.Team2ID {
		res.Reset = championshipReset(e.b, m)
		e.touch(res.Reset)
	}
}

// Recalculate rebuilds all derived match state from the seeded slots and raw
// recorded scores, replaying every match in match_order. Calling it twice on
// stable input yields identical state; it never touches the station of an
// In_Progress match. Every match is reported touched so callers persist the
// whole bracket.
func (e *Engine) Recalculate() {
	for _, m := range e.b.ordered {
		e.touch(m)
	}

	// Clear fed slots. Seeds live only in matches with no feeders; the
	// championship is reseeded from the survivors below.
	for _, m := range e.b.ordered {
		if m.Side == models.SideChampionship {
			continue
		}
		if len(e.b.Feeders(m.ID)) > 0 {
			m.Team1ID, m.Team2ID = nil, nil
		}
		if m.Status == models.MatchInProgress {
			continue
		}
		m.StationID = nil
		if m.Scored() {
			m.Status = models.MatchCompleted
		} else {
			m.Status = models.MatchPending
		}
	}

	// Replay. match_order is topological, so every team a match can receive
	// has been written by the time the loop reaches it.
	for _, m := range e.b.ordered {
		if m.Side == models.SideChampionship {
			continue
		}
		if !m.Scored() {
			e.refresh(m)
			continue
		}
		if w := m.WinnerTeamID(); w != nil {
			e.place(m, m.WinnerTo, *w)
		}
		if l := m.LoserTeamID(); l != nil {
			e.place(m, m.LoserTo, *l)
		}
	}

	e.reseedChampionship()
}

// place force-writes a team into its designated target slot during replay,
// ignoring the target's status: the replay rebuilds downstream matches in
// order, so a Completed target is exactly what a correction needs repaired.
// Slot choice matches advance, keeping recorded scores attached to the same
// teams the live run attached them to.
func (e *Engine) place(from *models.Match, targetID *int, teamID int) {
	if targetID == nil {
		return
	}
	t := e.b.Match(*targetID)
	if t == nil || t.HasTeam(teamID) {
		return
	}
	switch slot := e.deliverySlot(t, from); {
	case slot == 1 && t.Team1ID == nil:
		t.Team1ID = ref(teamID)
	case slot == 2 && t.Team2ID == nil:
		t.Team2ID = ref(teamID)
	case slot == 0 && t.Team1ID == nil:
		t.Team1ID = ref(teamID)
	case slot == 0 && t.Team2ID == nil:
		t.Team2ID = ref(teamID)
	}
}

func (e *Engine) reseedChampionship() {
	champ := e.b.championship()
	if len(champ) == 0 {
		return
	}
	wb, lb, err := e.b.Survivors()
	if err != nil {
		// The correction invalidated a survivor; leave championship slots
		// alone until the bracket below is repaired and re-scored.
		return
	}
	first := champ[0]
	first.Team1ID, first.Team2ID = ref(wb), ref(lb)
	if first.Scored() {
		first.Status = models.MatchCompleted
	} else if first.Status != models.MatchInProgress {
		first.Status = models.MatchScheduled
	}
	if len(champ) > 1 {
		reset := champ[1]
		reset.Team1ID = cloneRef(first.Team1ID)
		reset.Team2ID = cloneRef(first.Team2ID)
		if reset.Scored() {
			reset.Status = models.MatchCompleted
		} else if reset.Status != models.MatchInProgress {
			reset.Status = models.MatchScheduled
		}
	}
}
