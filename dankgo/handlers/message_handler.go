package handlers

import (
	"context"
	"log/slog"
	"time"

	"github.com/disgoorg/disgo/bot"
	"github.com/disgoorg/disgo/events"

	"github.com/danktimes/dankgo/dankgo"
	"github.com/danktimes/dankgo/dankgo/metrics"
)

// MessageHandler feeds every guild message into the scoring state machine
// and sends back whatever replies it produces.
func MessageHandler(b *dankgo.Bot) bot.EventListener {
	return bot.NewListenerFunc(func(e *events.MessageCreate) {
		if e.Message.Author.Bot {
			return
		}

		metrics.MessagesProcessed.Inc()

		chat := b.Chats.GetOrCreate(e.ChannelID)
		metrics.ChatsTracked.Set(float64(b.Chats.Len()))

		replies := chat.ProcessMessage(
			e.Message.Author.ID,
			e.Message.Author.Username,
			e.Message.Content,
			e.Message.ID.Time(),
		)

		for _, reply := range replies {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			if _, err := b.Transport.SendMessage(ctx, e.ChannelID, reply); err != nil {
				slog.Error("Failed to send scoring reply",
					slog.String("type", "game"),
					slog.String("chat_id", e.ChannelID.String()),
					slog.Any("error", err))
			}
			cancel()
		}
	})
}
