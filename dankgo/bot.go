package dankgo

import (
	"context"
	"log/slog"
	"time"

	"github.com/disgoorg/disgo"
	"github.com/disgoorg/disgo/bot"
	"github.com/disgoorg/disgo/cache"
	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/events"
	"github.com/disgoorg/disgo/gateway"
	"github.com/disgoorg/paginator"
	"github.com/disgoorg/snowflake/v2"

	"github.com/danktimes/dankgo/dankgo/database"
	"github.com/danktimes/dankgo/dankgo/database/repositories"
	"github.com/danktimes/dankgo/dankgo/game"
	"github.com/danktimes/dankgo/dankgo/game/settings"
	"github.com/danktimes/dankgo/dankgo/plugins"
	"github.com/danktimes/dankgo/dankgo/scheduler"
	"github.com/danktimes/dankgo/dankgo/services"
	"github.com/danktimes/dankgo/dankgo/transport"
)

func New(cfg Config, version string, commit string) *Bot {
	return &Bot{
		Cfg:       cfg,
		Paginator: paginator.New(),
		Version:   version,
		Commit:    commit,
	}
}

type Bot struct {
	Cfg       Config
	Client    bot.Client
	Paginator *paginator.Manager
	Version   string
	Commit    string

	DB             *database.DB
	ChatRepository repositories.ChatRepository
	Templates      *settings.Registry
	Events         *plugins.Host
	Chats          *game.Registry
	Scheduler      *scheduler.Scheduler
	State          *services.StateService
	Transport      transport.Transport
	ImageService   *services.LeaderboardImageService
}

func (b *Bot) SetupBot(listeners ...bot.EventListener) error {
	client, err := disgo.New(b.Cfg.Bot.Token,
		bot.WithGatewayConfigOpts(gateway.WithIntents(gateway.IntentGuilds, gateway.IntentGuildMessages, gateway.IntentMessageContent)),
		bot.WithCacheConfigOpts(cache.WithCaches(cache.FlagGuilds)),
		bot.WithEventListeners(b.Paginator),
		bot.WithEventListeners(listeners...),
	)
	if err != nil {
		return err
	}

	b.Client = client
	return nil
}

func (b *Bot) OnReady(_ *events.Ready) {
	slog.Info("DankGo Bot is now ready",
		slog.String("version", b.Version),
		slog.String("commit", b.Commit))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := b.Client.SetPresence(ctx,
		gateway.WithWatchingActivity("the clock"),
		gateway.WithOnlineStatus(discord.OnlineStatusOnline)); err != nil {
		slog.Error("Failed to set presence", slog.Any("error", err))
	}
}

// OnTransportError drops a chat everywhere once Discord says it no longer
// exists or kicked us. Other transport errors are transient and ignored.
func (b *Bot) OnTransportError(chatID snowflake.ID, err error) {
	if !transport.IsChatGone(err) {
		return
	}

	slog.Info("Chat is gone, removing it",
		slog.String("type", "sys"),
		slog.String("chat_id", chatID.String()),
		slog.Any("error", err))

	b.Scheduler.UnscheduleAllOfChat(chatID)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := b.State.DeleteChat(ctx, chatID); err != nil {
		slog.Error("Failed to delete removed chat",
			slog.String("type", "db"),
			slog.String("chat_id", chatID.String()),
			slog.Any("error", err))
	}
}
