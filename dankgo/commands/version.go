package commands

import (
	"fmt"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"

	"github.com/danktimes/dankgo/dankgo"
	"github.com/danktimes/dankgo/dankgo/utils"
)

var Version = discord.SlashCommandCreate{
	Name:        "version",
	Description: "Show the running bot version",
}

func VersionHandler(b *dankgo.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		normal, random := b.Scheduler.Len()
		return e.CreateMessage(discord.MessageCreate{
			Embeds: []discord.Embed{{
				Title: "DankGo",
				Description: fmt.Sprintf("Version `%s` (commit `%s`)\nTracked chats: %d\nArmed timers: %d normal, %d random",
					b.Version, b.Commit, b.Chats.Len(), normal, random),
				Color: utils.InfoColor,
			}},
		})
	}
}
