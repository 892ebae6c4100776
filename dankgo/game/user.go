package game

import (
	"github.com/disgoorg/snowflake/v2"
)

// User is one chat member's score record, owned exclusively by its chat;
// all mutation goes through Chat so the plugin hooks and clamping in
// alterScore cannot be bypassed.
type User struct {
	ID   snowflake.ID
	Name string

	score           int
	lastScoreChange int
	// LastScoreTimestamp is the unix time of the last strictly positive
	// score delta; hardcore mode uses it to find inactive users.
	LastScoreTimestamp int64
	// Called marks that the user already claimed the currently open window.
	Called bool
}

func newUser(id snowflake.ID, name string) *User {
	return &User{ID: id, Name: name}
}

func (u *User) Score() int { return u.score }

// LastScoreChange is the delta accumulated since the last leaderboard
// render.
func (u *User) LastScoreChange() int { return u.lastScoreChange }
