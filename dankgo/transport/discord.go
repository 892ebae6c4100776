package transport

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/disgoorg/disgo/bot"
	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/rest"
	"github.com/disgoorg/snowflake/v2"

	"github.com/danktimes/dankgo/dankgo/metrics"
)

// Discord sends and deletes chat messages through a disgo client. A chat
// maps to the channel the game runs in.
type Discord struct {
	client   bot.Client
	listener ErrorListener
}

func NewDiscord(client bot.Client, listener ErrorListener) *Discord {
	return &Discord{client: client, listener: listener}
}

func (t *Discord) SendMessage(ctx context.Context, chatID snowflake.ID, text string) (snowflake.ID, error) {
	msg, err := t.client.Rest().CreateMessage(chatID,
		discord.NewMessageCreateBuilder().SetContent(text).Build(),
		rest.WithCtx(ctx))
	if err != nil {
		slog.Error("Failed to send message",
			slog.String("type", "error"),
			slog.String("chat_id", chatID.String()),
			slog.Any("error", err))
		t.report(chatID, err)
		return 0, fmt.Errorf("send message to chat %s: %w", chatID, err)
	}
	return msg.ID, nil
}

func (t *Discord) DeleteMessage(ctx context.Context, chatID snowflake.ID, messageID snowflake.ID) error {
	if err := t.client.Rest().DeleteMessage(chatID, messageID, rest.WithCtx(ctx)); err != nil {
		slog.Error("Failed to delete message",
			slog.String("type", "error"),
			slog.String("chat_id", chatID.String()),
			slog.String("message_id", messageID.String()),
			slog.Any("error", err))
		t.report(chatID, err)
		return fmt.Errorf("delete message %s in chat %s: %w", messageID, chatID, err)
	}
	return nil
}

func (t *Discord) report(chatID snowflake.ID, err error) {
	metrics.TransportErrors.Inc()
	if t.listener != nil {
		t.listener.OnTransportError(chatID, err)
	}
}
