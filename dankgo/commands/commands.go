package commands

import (
	"github.com/disgoorg/disgo/discord"
)

var Commands = []discord.ApplicationCommandCreate{
	DankTime,
	Settings,
	Leaderboard,
	Start,
	Stop,
	ResetChat,
	Version,
}
