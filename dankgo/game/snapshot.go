package game

import (
	"log/slog"

	"github.com/disgoorg/snowflake/v2"

	"github.com/danktimes/dankgo/dankgo/game/settings"
	"github.com/danktimes/dankgo/dankgo/plugins"
)

// Snapshot is the minimal durable view of a chat: enough to resume scoring
// after a restart. Random dank times, live timers and leaderboard
// snapshots are rebuilt, never persisted.
type Snapshot struct {
	ID         snowflake.ID
	Timezone   string
	Running    bool
	LastHour   int
	LastMinute int
	Users      []UserSnapshot
	DankTimes  []DankTimeSnapshot
	Settings   map[string]string
}

type UserSnapshot struct {
	ID                 snowflake.ID
	Name               string
	Score              int
	LastScoreTimestamp int64
}

type DankTimeSnapshot struct {
	Hour   int
	Minute int
	Texts  []string
	Points int
}

// Snapshot captures the chat's durable state.
func (c *Chat) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	snap := Snapshot{
		ID:         c.ID,
		Timezone:   c.settings.String(settings.Timezone),
		Running:    c.running,
		LastHour:   c.lastHour,
		LastMinute: c.lastMinute,
		Settings:   c.settings.All(),
	}
	for _, u := range c.rankedUsers() {
		snap.Users = append(snap.Users, UserSnapshot{
			ID:                 u.ID,
			Name:               u.Name,
			Score:              u.score,
			LastScoreTimestamp: u.LastScoreTimestamp,
		})
	}
	for _, d := range c.dankTimes {
		snap.DankTimes = append(snap.DankTimes, DankTimeSnapshot{
			Hour:   d.Hour,
			Minute: d.Minute,
			Texts:  d.Texts(),
			Points: d.points,
		})
	}
	return snap
}

// RestoreChat rebuilds a chat from its snapshot. Invalid rows are skipped
// with a warning rather than failing the whole restore.
func RestoreChat(snap Snapshot, registry *settings.Registry, events *plugins.Host) *Chat {
	c := NewChat(snap.ID, registry, events)
	c.running = snap.Running
	c.lastHour = snap.LastHour
	c.lastMinute = snap.LastMinute

	for name, raw := range snap.Settings {
		if err := c.settings.Set(name, raw); err != nil {
			slog.Warn("Skipping invalid persisted setting",
				slog.String("type", "game"),
				slog.String("chat_id", snap.ID.String()),
				slog.String("setting", name),
				slog.Any("error", err))
		}
	}
	if snap.Timezone != "" {
		if err := c.settings.Set(settings.Timezone, snap.Timezone); err != nil {
			slog.Warn("Skipping invalid persisted time zone",
				slog.String("type", "game"),
				slog.String("chat_id", snap.ID.String()),
				slog.Any("error", err))
		}
	}

	for _, u := range snap.Users {
		restored := newUser(u.ID, u.Name)
		restored.score = u.Score
		if restored.score < 0 {
			restored.score = 0
		}
		restored.LastScoreTimestamp = u.LastScoreTimestamp
		c.users[u.ID] = restored
	}

	for _, d := range snap.DankTimes {
		if err := c.AddDankTime(d.Hour, d.Minute, d.Texts, d.Points); err != nil {
			slog.Warn("Skipping invalid persisted dank time",
				slog.String("type", "game"),
				slog.String("chat_id", snap.ID.String()),
				slog.Int("hour", d.Hour),
				slog.Int("minute", d.Minute),
				slog.Any("error", err))
		}
	}
	return c
}
