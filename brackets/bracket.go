package brackets

import (
	"fmt"
	"sort"

	"github.com/pdralston/puttingLeague/models"
)

// Bracket is an in-memory arena over one tournament's matches. Matches are
// indexed by id and advancement/feeder relations are kept as id references,
// so the structure stays a DAG with full traversal in both directions.
type Bracket struct {
	byID    map[int]*models.Match
	ordered []*models.Match
	feeders map[int][]*models.Match
	teams   map[int]*models.Team
}

// New builds the arena and derives feeder edges (the inverse view of
// winner/loser advancement edges).
func New(matches []*models.Match, teams []*models.Team) *Bracket {
	b := &Bracket{
		byID:    make(map[int]*models.Match, len(matches)),
		ordered: make([]*models.Match, len(matches)),
		feeders: make(map[int][]*models.Match),
		teams:   make(map[int]*models.Team, len(teams)),
	}
	copy(b.ordered, matches)
	sort.Slice(b.ordered, func(i, j int) bool { return b.ordered[i].Order < b.ordered[j].Order })
	for _, m := range b.ordered {
		b.byID[m.ID] = m
		if m.WinnerTo != nil {
			b.feeders[*m.WinnerTo] = append(b.feeders[*m.WinnerTo], m)
		}
		if m.LoserTo != nil {
			b.feeders[*m.LoserTo] = append(b.feeders[*m.LoserTo], m)
		}
	}
	for _, t := range teams {
		b.teams[t.ID] = t
	}
	return b
}

func (b *Bracket) Match(id int) *models.Match {
	return b.byID[id]
}

// Matches returns every match in global match_order.
func (b *Bracket) Matches() []*models.Match {
	return b.ordered
}

// Feeders returns the upstream matches that populate a match's team slots,
// ordered by match_order.
func (b *Bracket) Feeders(id int) []*models.Match {
	return b.feeders[id]
}

func (b *Bracket) Team(id int) *models.Team {
	return b.teams[id]
}

// add registers a match created after initial load (championship, reset).
func (b *Bracket) add(m *models.Match) {
	b.byID[m.ID] = m
	b.ordered = append(b.ordered, m)
	sort.Slice(b.ordered, func(i, j int) bool { return b.ordered[i].Order < b.ordered[j].Order })
}

func (b *Bracket) nextID() int {
	id := 0
	for _, m := range b.ordered {
		if m.ID > id {
			id = m.ID
		}
	}
	return id + 1
}

func (b *Bracket) nextOrder() int {
	if len(b.ordered) == 0 {
		return 1
	}
	return b.ordered[len(b.ordered)-1].Order + 1
}

// hasPendingFeeder reports whether any upstream match could still deliver a
// team into m. A Completed feeder is spent: it either delivered its
// winner/loser already or, for a bye, never had a loser to send.
func (b *Bracket) hasPendingFeeder(m *models.Match) bool {
	for _, f := range b.feeders[m.ID] {
		if f.Status != models.MatchCompleted {
			return true
		}
	}
	return false
}

// refreshStatus re-derives Pending vs Scheduled for a match that has not
// started. In_Progress and Completed are sticky here; only scoring and the
// correction path move those.
func (b *Bracket) refreshStatus(m *models.Match) {
	if m.Status == models.MatchInProgress || m.Status == models.MatchCompleted {
		return
	}
	switch {
	case m.Team1ID != nil && m.Team2ID != nil:
		m.Status = models.MatchScheduled
	case (m.Team1ID != nil || m.Team2ID != nil) && !b.hasPendingFeeder(m):
		// Bye condition: the opposing slot can never be filled.
		m.Status = models.MatchScheduled
	default:
		m.Status = models.MatchPending
	}
}

// IsBye reports the derived bye condition: a Scheduled match with exactly one
// team slot filled whose other slot has no pending feeder. Such a match is
// auto-advanceable without a station.
func (b *Bracket) IsBye(m *models.Match) bool {
	if m.Status != models.MatchScheduled {
		return false
	}
	one := (m.Team1ID != nil) != (m.Team2ID != nil)
	return one && !b.hasPendingFeeder(m)
}

// Exhausted reports whether the tournament has been decided: a championship
// match exists, every match is Completed, and no bracket reset is still owed.
// A bracket whose pre-championship matches are all done is finished playing
// but not exhausted; the championship decides it.
func (b *Bracket) Exhausted() bool {
	champ := b.championship()
	if len(champ) == 0 {
		return false
	}
	for _, m := range b.ordered {
		if m.Status != models.MatchCompleted {
			return false
		}
	}
	// The losers-bracket entrant taking game one owes the winners-bracket
	// entrant a second game.
	first := champ[0]
	if len(champ) == 1 && first.Team2ID != nil && first.WinnerTeamID() != nil && *first.WinnerTeamID() == *first.Team2ID {
		return false
	}
	return true
}

// championship returns the championship matches in round order (at most two:
// the first final and the bracket reset).
func (b *Bracket) championship() []*models.Match {
	var ms []*models.Match
	for _, m := range b.ordered {
		if m.Side == models.SideChampionship {
			ms = append(ms, m)
		}
	}
	sort.Slice(ms, func(i, j int) bool { return ms[i].Round < ms[j].Round })
	return ms
}

// terminal returns the match on the given stage and side whose winner
// advances nowhere, i.e. the bracket-side final.
func (b *Bracket) terminal(stage models.StageType, side models.BracketSide) *models.Match {
	for _, m := range b.ordered {
		if m.Stage == stage && m.Side == side && m.WinnerTo == nil {
			return m
		}
	}
	return nil
}

// Survivors determines the winners-bracket and losers-bracket champions of
// the finals stage. With only two teams no losers bracket exists and the
// winners final's loser is the losers-side survivor.
func (b *Bracket) Survivors() (wbChamp, lbChamp int, err error) {
	wf := b.terminal(models.StageFinals, models.SideWinners)
	if wf == nil || wf.Status != models.MatchCompleted || wf.WinnerTeamID() == nil {
		return 0, 0, ErrChampionshipNotReady
	}
	wbChamp = *wf.WinnerTeamID()

	lf := b.terminal(models.StageFinals, models.SideLosers)
	if lf == nil {
		if wf.LoserTeamID() == nil {
			return 0, 0, ErrChampionshipNotReady
		}
		return wbChamp, *wf.LoserTeamID(), nil
	}
	if lf.Status != models.MatchCompleted || lf.WinnerTeamID() == nil {
		return 0, 0, ErrChampionshipNotReady
	}
	return wbChamp, *lf.WinnerTeamID(), nil
}

// Annotate fills the derived display labels for every match: team names where
// a slot is resolved, "Winner of #n"/"Loser of #n" where a feeder is still
// pending, and "Bye" where the slot can never be filled. This is the single
// home for the name-derivation logic viewers used to reimplement.
func (b *Bracket) Annotate() {
	for _, m := range b.ordered {
		m.Team1Label, m.Team2Label = b.slotLabels(m)
	}
}

func (b *Bracket) slotLabels(m *models.Match) (string, string) {
	var pending []string
	for _, f := range b.feeders[m.ID] {
		if f.Status == models.MatchCompleted {
			continue
		}
		if f.WinnerTo != nil && *f.WinnerTo == m.ID {
			pending = append(pending, fmt.Sprintf("Winner of #%d", f.Order))
		}
		if f.LoserTo != nil && *f.LoserTo == m.ID {
			pending = append(pending, fmt.Sprintf("Loser of #%d", f.Order))
		}
	}
	label := func(teamID *int) string {
		if teamID != nil {
			if t := b.teams[*teamID]; t != nil {
				return t.DisplayName()
			}
			return fmt.Sprintf("Team %d", *teamID)
		}
		if len(pending) > 0 {
			l := pending[0]
			pending = pending[1:]
			return l
		}
		return "Bye"
	}
	return label(m.Team1ID), label(m.Team2ID)
}
