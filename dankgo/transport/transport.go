package transport

import (
	"context"
	"errors"
	"net/http"

	"github.com/disgoorg/disgo/rest"
	"github.com/disgoorg/snowflake/v2"
)

// Transport is the chat platform boundary. Both operations are fallible
// without crashing the core: failures are reported to the ErrorListener
// and returned, never panicked.
type Transport interface {
	SendMessage(ctx context.Context, chatID snowflake.ID, text string) (snowflake.ID, error)
	DeleteMessage(ctx context.Context, chatID snowflake.ID, messageID snowflake.ID) error
}

// ErrorListener receives every transport failure, tagged with the chat it
// happened in. The listener decides what to do (typically: drop the chat
// when the bot was removed from it); the transport never retries.
type ErrorListener interface {
	OnTransportError(chatID snowflake.ID, err error)
}

// IsChatGone reports whether err means the chat no longer exists or the
// bot was removed from it.
func IsChatGone(err error) bool {
	var restErr rest.Error
	if !errors.As(err, &restErr) || restErr.Response == nil {
		return false
	}
	switch restErr.Response.StatusCode {
	case http.StatusForbidden, http.StatusNotFound:
		return true
	}
	return false
}
