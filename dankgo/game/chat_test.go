package game

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/disgoorg/snowflake/v2"

	"github.com/danktimes/dankgo/dankgo/game/settings"
	"github.com/danktimes/dankgo/dankgo/plugins"
)

const (
	alice = snowflake.ID(101)
	bob   = snowflake.ID(102)
)

func newTestChat(t *testing.T, at time.Time) *Chat {
	t.Helper()
	events := plugins.NewHost()
	events.Freeze()
	c := NewChat(snowflake.ID(1), settings.NewDefaultRegistry(), events)
	c.now = func() time.Time { return at }
	c.Start()
	return c
}

func mustSet(t *testing.T, c *Chat, name, value string) {
	t.Helper()
	if err := c.SetSetting(name, value); err != nil {
		t.Fatalf("SetSetting(%q, %q) error = %v", name, value, err)
	}
}

func mustAdd(t *testing.T, c *Chat, hour, minute int, texts []string, points int) {
	t.Helper()
	if err := c.AddDankTime(hour, minute, texts, points); err != nil {
		t.Fatalf("AddDankTime(%d, %d) error = %v", hour, minute, err)
	}
}

func scoreOf(t *testing.T, c *Chat, id snowflake.ID) int {
	t.Helper()
	c.mu.Lock()
	defer c.mu.Unlock()
	u, ok := c.users[id]
	if !ok {
		t.Fatalf("user %d not found", id)
	}
	return u.Score()
}

func TestProcessMessage_Scoring(t *testing.T) {
	at := time.Date(2026, 8, 29, 13, 37, 10, 0, time.UTC)
	c := newTestChat(t, at)
	mustSet(t, c, settings.Handicaps, "off")
	mustAdd(t, c, 13, 37, []string{"1337"}, 10)

	// First scorer opens the window and gets the first multiplier.
	c.ProcessMessage(alice, "Alice", "1337", at)
	if got := scoreOf(t, c, alice); got != 20 {
		t.Errorf("first scorer = %d, want 20", got)
	}

	// A later scorer in the same window gets base points.
	c.ProcessMessage(bob, "Bob", "1337", at)
	if got := scoreOf(t, c, bob); got != 10 {
		t.Errorf("second scorer = %d, want 10", got)
	}

	// Shouting again in the same window costs the points it was worth.
	c.ProcessMessage(alice, "Alice", "1337", at)
	if got := scoreOf(t, c, alice); got != 10 {
		t.Errorf("repeat shout = %d, want 10", got)
	}
}

func TestProcessMessage_StoppedChatIgnoresMessages(t *testing.T) {
	at := time.Date(2026, 8, 29, 13, 37, 0, 0, time.UTC)
	c := newTestChat(t, at)
	mustAdd(t, c, 13, 37, []string{"1337"}, 10)
	c.Stop()

	if replies := c.ProcessMessage(alice, "Alice", "1337", at); replies != nil {
		t.Errorf("ProcessMessage() on stopped chat = %v, want nil", replies)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.users) != 0 {
		t.Errorf("stopped chat tracked %d users, want 0", len(c.users))
	}
}

func TestProcessMessage_MessageSendTimeCounts(t *testing.T) {
	// Server clock is past the minute; the message's own send time is not.
	at := time.Date(2026, 8, 29, 13, 39, 0, 0, time.UTC)
	c := newTestChat(t, at)
	mustSet(t, c, settings.Handicaps, "off")
	mustAdd(t, c, 13, 37, []string{"1337"}, 10)

	sentAt := time.Date(2026, 8, 29, 13, 37, 59, 0, time.UTC)
	c.ProcessMessage(alice, "Alice", "1337", sentAt)
	if got := scoreOf(t, c, alice); got != 20 {
		t.Errorf("lagged message score = %d, want 20", got)
	}
}

func TestProcessMessage_UntimelyPunishment(t *testing.T) {
	at := time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)
	c := newTestChat(t, at)
	mustSet(t, c, settings.PunishUntimelyDankTime, "on")
	mustAdd(t, c, 13, 37, []string{"dank"}, 10)
	mustAdd(t, c, 14, 0, []string{"dank"}, 20)

	c.mu.Lock()
	c.ensureUser(alice, "Alice").score = 50
	c.mu.Unlock()

	// The worst matching candidate decides the penalty.
	c.ProcessMessage(alice, "Alice", "dank", at)
	if got := scoreOf(t, c, alice); got != 30 {
		t.Errorf("untimely shout = %d, want 30", got)
	}
}

func TestProcessMessage_ScoreNeverNegative(t *testing.T) {
	at := time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)
	c := newTestChat(t, at)
	mustSet(t, c, settings.PunishUntimelyDankTime, "on")
	mustAdd(t, c, 13, 37, []string{"1337"}, 10)

	c.mu.Lock()
	c.ensureUser(alice, "Alice").score = 5
	c.mu.Unlock()

	c.ProcessMessage(alice, "Alice", "1337", at)
	if got := scoreOf(t, c, alice); got != 0 {
		t.Errorf("punished score = %d, want 0 (clamped)", got)
	}
}

func TestProcessMessage_UntimelyWithoutPunishmentIsNoop(t *testing.T) {
	at := time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)
	c := newTestChat(t, at)
	mustAdd(t, c, 13, 37, []string{"1337"}, 10)

	c.ProcessMessage(alice, "Alice", "1337", at)
	if got := scoreOf(t, c, alice); got != 0 {
		t.Errorf("untimely shout without punishment = %d, want 0", got)
	}
}

func TestProcessMessage_NewWindowClearsCalled(t *testing.T) {
	c := newTestChat(t, time.Time{})
	mustSet(t, c, settings.Handicaps, "off")
	mustAdd(t, c, 13, 37, []string{"1337"}, 10)
	mustAdd(t, c, 16, 20, []string{"420"}, 10)

	first := time.Date(2026, 8, 29, 13, 37, 0, 0, time.UTC)
	c.now = func() time.Time { return first }
	c.ProcessMessage(alice, "Alice", "1337", first)

	second := time.Date(2026, 8, 29, 16, 20, 0, 0, time.UTC)
	c.now = func() time.Time { return second }
	c.ProcessMessage(alice, "Alice", "420", second)

	// 2x10 for each window's first shout.
	if got := scoreOf(t, c, alice); got != 40 {
		t.Errorf("two windows = %d, want 40", got)
	}
}

func TestProcessMessage_HandicapReplacesFirstMultiplier(t *testing.T) {
	at := time.Date(2026, 8, 29, 13, 37, 0, 0, time.UTC)
	c := newTestChat(t, at)
	mustSet(t, c, settings.HandicapsBottomFraction, "0.5")
	mustAdd(t, c, 13, 37, []string{"1337"}, 10)

	c.mu.Lock()
	c.ensureUser(alice, "Alice").score = 100
	c.ensureUser(bob, "Bob").score = 0
	c.mu.Unlock()

	// Bob trails, so even as first scorer he gets the handicap multiplier
	// instead of the first multiplier.
	c.ProcessMessage(bob, "Bob", "1337", at)
	if got := scoreOf(t, c, bob); got != 15 {
		t.Errorf("handicapped first scorer = %d, want 15", got)
	}

	// Alice leads; base points for a non-first shout.
	c.ProcessMessage(alice, "Alice", "1337", at)
	if got := scoreOf(t, c, alice); got != 110 {
		t.Errorf("leader second shout = %d, want 110", got)
	}
}

func TestProcessMessage_FirstNotificationReply(t *testing.T) {
	at := time.Date(2026, 8, 29, 13, 37, 0, 0, time.UTC)
	c := newTestChat(t, at)
	mustSet(t, c, settings.FirstNotifications, "on")
	mustAdd(t, c, 13, 37, []string{"1337"}, 10)

	replies := c.ProcessMessage(alice, "Alice", "1337", at)
	if len(replies) != 1 || !strings.Contains(replies[0], "Alice") {
		t.Errorf("first notification replies = %v, want one mentioning Alice", replies)
	}

	if replies := c.ProcessMessage(bob, "Bob", "1337", at); len(replies) != 0 {
		t.Errorf("second scorer replies = %v, want none", replies)
	}
}

func TestHardcoreModeCheck(t *testing.T) {
	now := time.Date(2026, 8, 29, 0, 0, 30, 0, time.UTC)
	stale := now.Add(-25 * time.Hour).Unix()
	fresh := now.Add(-1 * time.Hour).Unix()

	tests := []struct {
		name  string
		score int
		ts    int64
		want  int
	}{
		{name: "stale large score loses a fraction", score: 100, ts: stale, want: 90},
		{name: "small punishment floors at 10", score: 50, ts: stale, want: 40},
		{name: "zero score untouched", score: 0, ts: stale, want: 0},
		{name: "fresh user untouched", score: 100, ts: fresh, want: 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestChat(t, now)
			mustSet(t, c, settings.HardcoreMode, "on")

			c.mu.Lock()
			u := c.ensureUser(alice, "Alice")
			u.score = tt.score
			u.LastScoreTimestamp = tt.ts
			c.mu.Unlock()

			c.HardcoreModeCheck(now)
			if got := scoreOf(t, c, alice); got != tt.want {
				t.Errorf("score after check = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestHardcoreModeCheck_DisabledIsNoop(t *testing.T) {
	now := time.Date(2026, 8, 29, 0, 0, 30, 0, time.UTC)
	c := newTestChat(t, now)

	c.mu.Lock()
	u := c.ensureUser(alice, "Alice")
	u.score = 100
	u.LastScoreTimestamp = now.Add(-48 * time.Hour).Unix()
	c.mu.Unlock()

	c.HardcoreModeCheck(now)
	if got := scoreOf(t, c, alice); got != 100 {
		t.Errorf("score with hardcore off = %d, want 100", got)
	}
}

func TestGenerateRandomDankTimes(t *testing.T) {
	at := time.Date(2026, 8, 29, 9, 0, 0, 0, time.UTC)
	c := newTestChat(t, at)
	mustSet(t, c, settings.RandomTimesFrequency, "4")

	got := c.GenerateRandomDankTimes()
	if len(got) > 4 {
		t.Fatalf("generated %d random dank times, want at most 4", len(got))
	}

	seen := make(map[string]bool)
	for _, d := range got {
		if !d.IsRandom {
			t.Errorf("dank time %02d:%02d not marked random", d.Hour, d.Minute)
		}
		key := fmt.Sprintf("%02d%02d", d.Hour, d.Minute)
		if seen[key] {
			t.Errorf("duplicate random dank time at %s", key)
		}
		seen[key] = true
		if !d.HasText(key) {
			t.Errorf("random dank time %s does not trigger on its own clock text", key)
		}
	}

	// A second generation replaces the set wholesale.
	again := c.GenerateRandomDankTimes()
	if len(c.RandomDankTimes()) != len(again) {
		t.Errorf("RandomDankTimes() = %d entries, want %d", len(c.RandomDankTimes()), len(again))
	}
}

func TestRandomDankTimePointsFollowSetting(t *testing.T) {
	at := time.Date(2026, 8, 29, 9, 0, 0, 0, time.UTC)
	c := newTestChat(t, at)

	got := c.GenerateRandomDankTimes()
	if len(got) == 0 {
		t.Skip("collision dropped the only random dank time")
	}

	if pts := c.DankTimePoints(got[0]); pts != 10 {
		t.Fatalf("default random points = %d, want 10", pts)
	}
	mustSet(t, c, settings.RandomTimesPoints, "500")
	if pts := c.DankTimePoints(got[0]); pts != 500 {
		t.Errorf("random points after setting change = %d, want 500", pts)
	}
}

func TestAddDankTime_ReplacesSameSlot(t *testing.T) {
	c := newTestChat(t, time.Time{})
	mustAdd(t, c, 13, 37, []string{"1337"}, 10)
	mustAdd(t, c, 13, 37, []string{"leet"}, 25)

	dankTimes := c.DankTimes()
	if len(dankTimes) != 1 {
		t.Fatalf("DankTimes() = %d entries, want 1", len(dankTimes))
	}
	if pts := c.DankTimePoints(dankTimes[0]); pts != 25 {
		t.Errorf("replaced points = %d, want 25", pts)
	}
	if !dankTimes[0].HasText("leet") || dankTimes[0].HasText("1337") {
		t.Errorf("replacement kept the old trigger texts")
	}
}

func TestDankTimes_SortedByClock(t *testing.T) {
	c := newTestChat(t, time.Time{})
	mustAdd(t, c, 16, 20, []string{"420"}, 10)
	mustAdd(t, c, 13, 37, []string{"1337"}, 10)
	mustAdd(t, c, 13, 0, []string{"1300"}, 10)

	dankTimes := c.DankTimes()
	for i := 1; i < len(dankTimes); i++ {
		if !dankTimes[i-1].Before(dankTimes[i]) {
			t.Errorf("dank times out of order at index %d", i)
		}
	}
}

func TestResetScores(t *testing.T) {
	at := time.Date(2026, 8, 29, 13, 37, 0, 0, time.UTC)
	c := newTestChat(t, at)
	mustSet(t, c, settings.Handicaps, "off")
	mustAdd(t, c, 13, 37, []string{"1337"}, 10)
	c.ProcessMessage(alice, "Alice", "1337", at)

	final := c.ResetScores()
	if !strings.Contains(final, "Alice") {
		t.Errorf("final board %q does not list Alice", final)
	}
	if entries := c.LeaderboardEntries(); len(entries) != 0 {
		t.Errorf("entries after reset = %v, want none", entries)
	}
	if c.IsOpenWindow(13, 37) {
		t.Errorf("window still open after reset")
	}
	if len(c.DankTimes()) != 1 {
		t.Errorf("reset dropped the dank times")
	}
}
