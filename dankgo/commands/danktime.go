package commands

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"
	"github.com/disgoorg/paginator"

	"github.com/danktimes/dankgo/dankgo"
	"github.com/danktimes/dankgo/dankgo/game"
	"github.com/danktimes/dankgo/dankgo/utils"
)

const dankTimesPerPage = 10

var DankTime = discord.SlashCommandCreate{
	Name:        "danktime",
	Description: "⏰ Manage this chat's dank times",
	Options: []discord.ApplicationCommandOption{
		discord.ApplicationCommandOptionSubCommand{
			Name:        "add",
			Description: "Add a dank time (replaces an existing one at the same clock time)",
			Options: []discord.ApplicationCommandOption{
				discord.ApplicationCommandOptionInt{
					Name:        "hour",
					Description: "Hour of day (0-23)",
					Required:    true,
					MinValue:    intPtr(0),
					MaxValue:    intPtr(23),
				},
				discord.ApplicationCommandOptionInt{
					Name:        "minute",
					Description: "Minute of hour (0-59)",
					Required:    true,
					MinValue:    intPtr(0),
					MaxValue:    intPtr(59),
				},
				discord.ApplicationCommandOptionString{
					Name:        "texts",
					Description: "Comma-separated trigger texts, e.g. '13:37,1337,leet'",
					Required:    true,
				},
				discord.ApplicationCommandOptionInt{
					Name:        "points",
					Description: "Points awarded for the first shout (1-10000)",
					Required:    true,
					MinValue:    intPtr(1),
					MaxValue:    intPtr(10000),
				},
			},
		},
		discord.ApplicationCommandOptionSubCommand{
			Name:        "remove",
			Description: "Remove the dank time at a clock time",
			Options: []discord.ApplicationCommandOption{
				discord.ApplicationCommandOptionInt{
					Name:        "hour",
					Description: "Hour of day (0-23)",
					Required:    true,
					MinValue:    intPtr(0),
					MaxValue:    intPtr(23),
				},
				discord.ApplicationCommandOptionInt{
					Name:        "minute",
					Description: "Minute of hour (0-59)",
					Required:    true,
					MinValue:    intPtr(0),
					MaxValue:    intPtr(59),
				},
			},
		},
		discord.ApplicationCommandOptionSubCommand{
			Name:        "list",
			Description: "List this chat's dank times",
		},
	},
}

func DankTimeHandler(b *dankgo.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		data := e.SlashCommandInteractionData()
		chat := b.Chats.GetOrCreate(e.ChannelID())

		switch *data.SubCommandName {
		case "add":
			return dankTimeAdd(b, e, chat)
		case "remove":
			return dankTimeRemove(b, e, chat)
		case "list":
			return dankTimeList(b, e, chat)
		default:
			return utils.CreateErrorEmbed(e, "Invalid subcommand")
		}
	}
}

func dankTimeAdd(b *dankgo.Bot, e *handler.CommandEvent, chat *game.Chat) error {
	data := e.SlashCommandInteractionData()
	hour := data.Int("hour")
	minute := data.Int("minute")
	points := data.Int("points")

	var texts []string
	for _, t := range strings.Split(data.String("texts"), ",") {
		if t = strings.TrimSpace(t); t != "" {
			texts = append(texts, t)
		}
	}

	if err := chat.AddDankTime(hour, minute, texts, points); err != nil {
		return utils.CreateErrorEmbed(e, err.Error())
	}

	for _, d := range chat.DankTimes() {
		if d.Hour == hour && d.Minute == minute {
			b.Scheduler.ScheduleDankTime(chat, d)
			break
		}
	}
	saveChat(b, chat)

	return utils.CreateSuccessEmbed(e, "Dank Time Added",
		fmt.Sprintf("Added dank time **%02d:%02d** worth **%d** points.\nTriggers: `%s`",
			hour, minute, points, strings.Join(texts, "`, `")))
}

func dankTimeRemove(b *dankgo.Bot, e *handler.CommandEvent, chat *game.Chat) error {
	data := e.SlashCommandInteractionData()
	hour := data.Int("hour")
	minute := data.Int("minute")

	if !chat.RemoveDankTime(hour, minute) {
		return utils.CreateErrorEmbed(e,
			fmt.Sprintf("There is no dank time at %02d:%02d.", hour, minute))
	}

	b.Scheduler.UnscheduleDankTime(chat.ID, hour, minute)
	saveChat(b, chat)

	return utils.CreateSuccessEmbed(e, "Dank Time Removed",
		fmt.Sprintf("Removed the dank time at **%02d:%02d**.", hour, minute))
}

func dankTimeList(b *dankgo.Bot, e *handler.CommandEvent, chat *game.Chat) error {
	dankTimes := chat.DankTimes()
	randoms := chat.RandomDankTimes()
	if len(dankTimes) == 0 && len(randoms) == 0 {
		return utils.CreateErrorEmbed(e, "This chat has no dank times yet. Add one with `/danktime add`.")
	}

	type row struct {
		d      *game.DankTime
		random bool
	}
	rows := make([]row, 0, len(dankTimes)+len(randoms))
	for _, d := range dankTimes {
		rows = append(rows, row{d: d})
	}
	for _, d := range randoms {
		rows = append(rows, row{d: d, random: true})
	}

	totalPages := int(math.Ceil(float64(len(rows)) / float64(dankTimesPerPage)))

	return b.Paginator.Create(e.Respond, paginator.Pages{
		ID:      e.ID().String(),
		Creator: e.User().ID,
		PageFunc: func(page int, embed *discord.EmbedBuilder) {
			startIdx := page * dankTimesPerPage
			endIdx := min(startIdx+dankTimesPerPage, len(rows))

			var description strings.Builder
			for _, r := range rows[startIdx:endIdx] {
				points := chat.DankTimePoints(r.d)
				if r.random {
					description.WriteString(fmt.Sprintf("🎲 **%02d:%02d** — %d points (random, today only)\n",
						r.d.Hour, r.d.Minute, points))
					continue
				}
				description.WriteString(fmt.Sprintf("⏰ **%02d:%02d** — %d points — `%s`\n",
					r.d.Hour, r.d.Minute, points, strings.Join(r.d.Texts(), "`, `")))
			}

			embed.
				SetTitle("Dank Times").
				SetDescription(description.String()).
				SetColor(utils.InfoColor).
				SetFooter(fmt.Sprintf("Page %d/%d • %d dank times", page+1, totalPages, len(rows)), "")
		},
		Pages:      totalPages,
		ExpireMode: paginator.ExpireModeAfterLastUsage,
	}, false)
}

// saveChat persists eagerly after a command mutation; a failure here is
// non-fatal because the autosave ticker retries.
func saveChat(b *dankgo.Bot, chat *game.Chat) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := b.State.SaveChat(ctx, chat); err != nil {
		slog.Error("Failed to persist chat after command",
			slog.String("type", "db"),
			slog.String("chat_id", chat.ID.String()),
			slog.Any("error", err))
	}
}

func intPtr(v int) *int {
	return &v
}
