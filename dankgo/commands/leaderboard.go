package commands

import (
	"bytes"
	"context"
	"time"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"

	"github.com/danktimes/dankgo/dankgo"
	"github.com/danktimes/dankgo/dankgo/utils"
)

var Leaderboard = discord.SlashCommandCreate{
	Name:        "leaderboard",
	Description: "🏆 Show the current standings",
	Options: []discord.ApplicationCommandOption{
		discord.ApplicationCommandOptionBool{
			Name:        "image",
			Description: "Render the leaderboard as an image",
			Required:    false,
		},
	},
}

func LeaderboardHandler(b *dankgo.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		data := e.SlashCommandInteractionData()
		chat := b.Chats.GetOrCreate(e.ChannelID())

		if asImage, _ := data.OptBool("image"); asImage && b.ImageService != nil {
			entries := chat.LeaderboardEntries()
			if len(entries) == 0 {
				return utils.CreateErrorEmbed(e, "Nobody has scored yet.")
			}

			ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
			defer cancel()
			img, err := b.ImageService.GenerateImage(ctx, "🏆 Leaderboard", entries)
			if err != nil {
				return utils.CreateErrorEmbed(e, "Image rendering failed, try the text leaderboard.")
			}

			// Rotate deltas the same way the text path does.
			chat.Leaderboard()
			saveChat(b, chat)

			return e.CreateMessage(discord.MessageCreate{
				Files: []*discord.File{
					discord.NewFile("leaderboard.png", "", bytes.NewReader(img)),
				},
			})
		}

		text := chat.Leaderboard()
		if text == "" {
			return utils.CreateErrorEmbed(e, "Nobody has scored yet.")
		}
		saveChat(b, chat)

		return e.CreateMessage(discord.MessageCreate{
			Embeds: []discord.Embed{{
				Title:       "🏆 Leaderboard",
				Description: text,
				Color:       utils.InfoColor,
			}},
		})
	}
}
