package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Chat is the durable row backing one game chat. Random dank times, live
// timers and leaderboard snapshots are rebuilt at startup and never stored.
type Chat struct {
	bun.BaseModel `bun:"table:chats,alias:c"`

	ID         int64     `bun:"id,pk"`
	Timezone   string    `bun:"timezone,notnull,default:'UTC'"`
	Running    bool      `bun:"running,notnull,default:false"`
	LastHour   int       `bun:"last_hour,notnull,default:-1"`
	LastMinute int       `bun:"last_minute,notnull,default:-1"`
	UpdatedAt  time.Time `bun:"updated_at,notnull"`
}

type ChatUser struct {
	bun.BaseModel `bun:"table:chat_users,alias:cu"`

	ChatID             int64  `bun:"chat_id,pk"`
	UserID             int64  `bun:"user_id,pk"`
	Name               string `bun:"name,notnull"`
	Score              int    `bun:"score,notnull,default:0"`
	LastScoreTimestamp int64  `bun:"last_score_ts,notnull,default:0"`
}

type DankTime struct {
	bun.BaseModel `bun:"table:dank_times,alias:dt"`

	ChatID int64    `bun:"chat_id,pk"`
	Hour   int      `bun:"hour,pk"`
	Minute int      `bun:"minute,pk"`
	Texts  []string `bun:"texts,type:jsonb"`
	Points int      `bun:"points,notnull"`
}

type ChatSetting struct {
	bun.BaseModel `bun:"table:chat_settings,alias:cs"`

	ChatID int64  `bun:"chat_id,pk"`
	Name   string `bun:"name,pk"`
	Value  string `bun:"value,notnull"`
}
