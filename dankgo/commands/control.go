package commands

import (
	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"

	"github.com/danktimes/dankgo/dankgo"
	"github.com/danktimes/dankgo/dankgo/utils"
)

var Start = discord.SlashCommandCreate{
	Name:        "start",
	Description: "▶️ Start the dank times game in this chat",
}

var Stop = discord.SlashCommandCreate{
	Name:        "stop",
	Description: "⏸️ Stop the dank times game in this chat",
}

var ResetChat = discord.SlashCommandCreate{
	Name:        "resetchat",
	Description: "🔄 Post the final leaderboard and reset all scores",
}

func StartHandler(b *dankgo.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		chat := b.Chats.GetOrCreate(e.ChannelID())
		if chat.Running() {
			return utils.CreateErrorEmbed(e, "The game is already running here.")
		}

		chat.Start()
		chat.GenerateRandomDankTimes()
		b.Scheduler.ScheduleAllOfChat(chat)
		saveChat(b, chat)

		return utils.CreateSuccessEmbed(e, "Game Started",
			"Dank times are live. Shout them on time to score points!")
	}
}

func StopHandler(b *dankgo.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		chat := b.Chats.GetOrCreate(e.ChannelID())
		if !chat.Running() {
			return utils.CreateErrorEmbed(e, "The game is not running here.")
		}

		chat.Stop()
		b.Scheduler.UnscheduleAllOfChat(chat.ID)
		saveChat(b, chat)

		return utils.CreateSuccessEmbed(e, "Game Stopped",
			"Scores are kept; `/start` resumes the game.")
	}
}

func ResetChatHandler(b *dankgo.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		chat := b.Chats.GetOrCreate(e.ChannelID())

		finalBoard := chat.ResetScores()
		saveChat(b, chat)

		description := "All scores have been reset."
		if finalBoard != "" {
			description = "Final standings:\n" + finalBoard
		}
		return utils.CreateSuccessEmbed(e, "Chat Reset", description)
	}
}
