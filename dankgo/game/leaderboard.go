package game

import (
	"fmt"
	"sort"
	"strings"

	"github.com/disgoorg/snowflake/v2"
)

// LeaderboardEntry is one ranked row of a point-in-time snapshot.
type LeaderboardEntry struct {
	ID     snowflake.ID
	Name   string
	Score  int
	Change int
}

// Leaderboard is a ranked snapshot of a chat's users: everyone with a
// positive score, plus anyone with a pending nonzero delta so a user who
// just dropped to zero still shows up once.
type Leaderboard struct {
	Entries []LeaderboardEntry
}

func newLeaderboard(users []*User) *Leaderboard {
	entries := make([]LeaderboardEntry, 0, len(users))
	for _, u := range users {
		if u.score <= 0 && u.lastScoreChange == 0 {
			continue
		}
		entries = append(entries, LeaderboardEntry{
			ID:     u.ID,
			Name:   u.Name,
			Score:  u.score,
			Change: u.lastScoreChange,
		})
	}
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Score != entries[j].Score {
			return entries[i].Score > entries[j].Score
		}
		return entries[i].Name < entries[j].Name
	})
	return &Leaderboard{Entries: entries}
}

// Render formats the leaderboard, diffing rank movement against previous.
// An entry absent from the previous snapshot gets no arrow; everyone else's
// arrow reflects their own former position.
func (l *Leaderboard) Render(previous *Leaderboard) string {
	var b strings.Builder
	b.WriteString("🏆 Leaderboard\n")
	for i, e := range l.Entries {
		b.WriteString(fmt.Sprintf("%d. %s — %d", i+1, e.Name, e.Score))
		if e.Change != 0 {
			b.WriteString(fmt.Sprintf(" (%+d)", e.Change))
		}
		if arrow := rankArrow(previous, e.ID, i); arrow != "" {
			b.WriteString(" " + arrow)
		}
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func rankArrow(previous *Leaderboard, id snowflake.ID, position int) string {
	if previous == nil {
		return ""
	}
	prev := previous.positionOf(id)
	if prev < 0 || prev == position {
		return ""
	}
	if prev > position {
		return fmt.Sprintf("↑%d", prev-position)
	}
	return fmt.Sprintf("↓%d", position-prev)
}

func (l *Leaderboard) positionOf(id snowflake.ID) int {
	for i, e := range l.Entries {
		if e.ID == id {
			return i
		}
	}
	return -1
}
