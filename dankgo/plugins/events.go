package plugins

import (
	"github.com/disgoorg/snowflake/v2"
)

// Event payloads carry plain identifiers and copies, never references into
// chat state. Plugins that need more resolve it through the owning registry.

// MessageEvent fires for every message a running chat receives, before any
// scoring happens.
type MessageEvent struct {
	ChatID snowflake.ID
	UserID snowflake.ID
	Text   string
}

// PreScoreChangeEvent fires before a user's score is mutated. Change is
// mutable; the core commits whatever value is left after all listeners ran,
// clamping the resulting score at zero.
type PreScoreChangeEvent struct {
	ChatID snowflake.ID
	UserID snowflake.ID
	Change int
}

// PostScoreChangeEvent fires after the mutation. Change is the post-clamp
// delta that was actually applied.
type PostScoreChangeEvent struct {
	ChatID snowflake.ID
	UserID snowflake.ID
	Change int
	Score  int
}

// DankTimeEvent fires right before a dank time's window opens (timer job)
// and again after the window closed (the delayed follow-up), the latter
// carrying the scorer names in arrival order.
type DankTimeEvent struct {
	ChatID  snowflake.ID
	Hour    int
	Minute  int
	Random  bool
	Scorers []string
}

// LeaderboardEvent fires before a leaderboard is posted to a chat.
type LeaderboardEvent struct {
	ChatID snowflake.ID
	Text   string
}
