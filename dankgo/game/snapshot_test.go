package game

import (
	"reflect"
	"testing"
	"time"

	"github.com/disgoorg/snowflake/v2"

	"github.com/danktimes/dankgo/dankgo/game/settings"
	"github.com/danktimes/dankgo/dankgo/plugins"
)

func TestSnapshotRestoreRoundtrip(t *testing.T) {
	at := time.Date(2026, 8, 29, 13, 37, 0, 0, time.UTC)
	c := newTestChat(t, at)
	mustSet(t, c, settings.Timezone, "Europe/Amsterdam")
	mustSet(t, c, settings.HardcoreMode, "on")
	mustAdd(t, c, 13, 37, []string{"1337"}, 10)
	mustAdd(t, c, 16, 20, []string{"420", "blaze"}, 15)
	c.ProcessMessage(alice, "Alice", "1337", at)

	snap := c.Snapshot()

	events := plugins.NewHost()
	events.Freeze()
	restored := RestoreChat(snap, settings.NewDefaultRegistry(), events)

	if !restored.Running() {
		t.Errorf("restored chat not running")
	}
	if got := scoreOf(t, restored, alice); got != 20 {
		t.Errorf("restored score = %d, want 20", got)
	}
	if got := restored.Settings().String(settings.Timezone); got != "Europe/Amsterdam" {
		t.Errorf("restored timezone = %q", got)
	}
	if !restored.Settings().Bool(settings.HardcoreMode) {
		t.Errorf("restored hardcoremode = false, want true")
	}
	if !reflect.DeepEqual(restored.Snapshot(), snap) {
		t.Errorf("second snapshot diverges:\n got %+v\nwant %+v", restored.Snapshot(), snap)
	}
}

func TestRestoreChat_SkipsInvalidRows(t *testing.T) {
	events := plugins.NewHost()
	events.Freeze()

	snap := Snapshot{
		ID:         snowflake.ID(1),
		Timezone:   "Not/AZone",
		Running:    true,
		LastHour:   -1,
		LastMinute: -1,
		Users: []UserSnapshot{
			{ID: alice, Name: "Alice", Score: -5}, // clamped
			{ID: bob, Name: "Bob", Score: 7},
		},
		DankTimes: []DankTimeSnapshot{
			{Hour: 99, Minute: 0, Texts: []string{"bad"}, Points: 10}, // skipped
			{Hour: 13, Minute: 37, Texts: []string{"1337"}, Points: 10},
		},
		Settings: map[string]string{
			"nosuchsetting":    "1", // skipped
			settings.Handicaps: "off",
		},
	}

	c := RestoreChat(snap, settings.NewDefaultRegistry(), events)

	if got := scoreOf(t, c, alice); got != 0 {
		t.Errorf("negative persisted score = %d, want 0", got)
	}
	if got := scoreOf(t, c, bob); got != 7 {
		t.Errorf("restored score = %d, want 7", got)
	}
	if got := len(c.DankTimes()); got != 1 {
		t.Errorf("restored %d dank times, want 1", got)
	}
	if got := c.Settings().String(settings.Timezone); got != "UTC" {
		t.Errorf("broken timezone restored as %q, want default UTC", got)
	}
	if c.Settings().Bool(settings.Handicaps) {
		t.Errorf("valid setting row was not applied")
	}
}
