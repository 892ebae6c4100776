package utils

import (
	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"
)

const (
	SuccessColor = 0x57F287
	ErrorColor   = 0xED4245
	InfoColor    = 0x2B2D31
)

func CreateErrorEmbed(e *handler.CommandEvent, description string) error {
	return e.CreateMessage(discord.MessageCreate{
		Embeds: []discord.Embed{{
			Title:       "Error",
			Description: description,
			Color:       ErrorColor,
		}},
	})
}

func CreateSuccessEmbed(e *handler.CommandEvent, title, description string) error {
	return e.CreateMessage(discord.MessageCreate{
		Embeds: []discord.Embed{{
			Title:       title,
			Description: description,
			Color:       SuccessColor,
		}},
	})
}
