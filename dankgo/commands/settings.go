package commands

import (
	"fmt"
	"strings"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"
	"github.com/sahilm/fuzzy"

	"github.com/danktimes/dankgo/dankgo"
	"github.com/danktimes/dankgo/dankgo/game"
	"github.com/danktimes/dankgo/dankgo/game/settings"
	"github.com/danktimes/dankgo/dankgo/utils"
)

var Settings = discord.SlashCommandCreate{
	Name:        "settings",
	Description: "⚙️ View or change this chat's settings",
	Options: []discord.ApplicationCommandOption{
		discord.ApplicationCommandOptionSubCommand{
			Name:        "list",
			Description: "Show all settings and their current values",
		},
		discord.ApplicationCommandOptionSubCommand{
			Name:        "set",
			Description: "Change a setting",
			Options: []discord.ApplicationCommandOption{
				discord.ApplicationCommandOptionString{
					Name:        "name",
					Description: "Setting name, e.g. 'timezone' or 'hardcoremode'",
					Required:    true,
				},
				discord.ApplicationCommandOptionString{
					Name:        "value",
					Description: "New value, e.g. 'Europe/Amsterdam' or 'on'",
					Required:    true,
				},
			},
		},
	},
}

func SettingsHandler(b *dankgo.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		data := e.SlashCommandInteractionData()
		chat := b.Chats.GetOrCreate(e.ChannelID())

		switch *data.SubCommandName {
		case "list":
			return settingsList(b, e, chat)
		case "set":
			return settingsSet(b, e, chat)
		default:
			return utils.CreateErrorEmbed(e, "Invalid subcommand")
		}
	}
}

func settingsList(b *dankgo.Bot, e *handler.CommandEvent, chat *game.Chat) error {
	var description strings.Builder
	description.WriteString("```\n")
	for _, name := range b.Templates.Names() {
		raw, _ := chat.Settings().Raw(name)
		description.WriteString(fmt.Sprintf("%-28s %s\n", name, raw))
	}
	description.WriteString("```")

	return e.CreateMessage(discord.MessageCreate{
		Embeds: []discord.Embed{{
			Title:       "⚙️ Settings",
			Description: description.String(),
			Color:       utils.InfoColor,
		}},
	})
}

func settingsSet(b *dankgo.Bot, e *handler.CommandEvent, chat *game.Chat) error {
	data := e.SlashCommandInteractionData()
	name := strings.ToLower(strings.TrimSpace(data.String("name")))
	value := strings.TrimSpace(data.String("value"))

	if _, ok := b.Templates.Get(name); !ok {
		msg := fmt.Sprintf("Unknown setting `%s`.", name)
		if matches := fuzzy.Find(name, b.Templates.Names()); len(matches) > 0 {
			msg += fmt.Sprintf(" Did you mean `%s`?", matches[0].Str)
		}
		return utils.CreateErrorEmbed(e, msg)
	}

	if err := chat.SetSetting(name, value); err != nil {
		return utils.CreateErrorEmbed(e, err.Error())
	}

	// Time zone and random-time changes invalidate today's timers.
	switch name {
	case settings.Timezone, settings.RandomTimesFrequency, settings.RandomTimesPoints:
		b.Scheduler.UnscheduleAllOfChat(chat.ID)
		chat.GenerateRandomDankTimes()
		b.Scheduler.ScheduleAllOfChat(chat)
	}
	saveChat(b, chat)

	return utils.CreateSuccessEmbed(e, "Setting Updated",
		fmt.Sprintf("`%s` is now `%s`.", name, value))
}
