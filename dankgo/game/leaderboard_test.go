package game

import (
	"strings"
	"testing"
	"time"

	"github.com/disgoorg/snowflake/v2"
)

func boardUser(id snowflake.ID, name string, score, change int) *User {
	u := newUser(id, name)
	u.score = score
	u.lastScoreChange = change
	return u
}

func TestNewLeaderboard_FiltersAndSorts(t *testing.T) {
	users := []*User{
		boardUser(1, "Alice", 10, 0),
		boardUser(2, "Bob", 30, 5),
		boardUser(3, "Carol", 0, 0),  // never scored, hidden
		boardUser(4, "Dave", 0, -10), // just dropped to zero, still shown
		boardUser(5, "Erin", 10, 0),  // ties break by name
	}

	board := newLeaderboard(users)
	gotNames := make([]string, len(board.Entries))
	for i, e := range board.Entries {
		gotNames[i] = e.Name
	}
	want := []string{"Bob", "Alice", "Erin", "Dave"}
	if strings.Join(gotNames, ",") != strings.Join(want, ",") {
		t.Errorf("leaderboard order = %v, want %v", gotNames, want)
	}
}

func TestLeaderboard_RankArrows(t *testing.T) {
	previous := newLeaderboard([]*User{
		boardUser(1, "Alice", 30, 0),
		boardUser(2, "Bob", 20, 0),
		boardUser(3, "Carol", 10, 0),
	})

	// Carol overtakes both; Alice and Bob each slip one place; Dave is new.
	current := newLeaderboard([]*User{
		boardUser(1, "Alice", 30, 0),
		boardUser(2, "Bob", 20, 0),
		boardUser(3, "Carol", 40, 30),
		boardUser(4, "Dave", 5, 5),
	})

	text := current.Render(previous)
	lines := strings.Split(text, "\n")
	if len(lines) != 5 {
		t.Fatalf("rendered %d lines, want 5: %q", len(lines), text)
	}

	tests := []struct {
		line string
		want string
	}{
		{lines[1], "↑2"},
		{lines[2], "↓1"},
		{lines[3], "↓1"},
	}
	for _, tt := range tests {
		if !strings.Contains(tt.line, tt.want) {
			t.Errorf("line %q missing arrow %q", tt.line, tt.want)
		}
	}

	// A newcomer has no former position, so no arrow.
	if strings.Contains(lines[4], "↑") || strings.Contains(lines[4], "↓") {
		t.Errorf("new entry got an arrow: %q", lines[4])
	}
	if !strings.Contains(lines[1], "(+30)") {
		t.Errorf("pending delta missing from %q", lines[1])
	}
}

func TestLeaderboard_NoArrowsWithoutPrevious(t *testing.T) {
	board := newLeaderboard([]*User{
		boardUser(1, "Alice", 10, 10),
	})
	text := board.Render(nil)
	if strings.Contains(text, "↑") || strings.Contains(text, "↓") {
		t.Errorf("first render got arrows: %q", text)
	}
}

func TestChatLeaderboard_ResetsDeltas(t *testing.T) {
	c := newTestChat(t, time.Date(2026, 8, 29, 13, 37, 0, 0, time.UTC))
	mustAdd(t, c, 13, 37, []string{"1337"}, 10)
	c.ProcessMessage(alice, "Alice", "1337", c.now())

	first := c.Leaderboard()
	if !strings.Contains(first, "(+20)") {
		t.Errorf("first render %q missing delta", first)
	}
	second := c.Leaderboard()
	if strings.Contains(second, "(+") {
		t.Errorf("second render %q still carries a delta", second)
	}
}
