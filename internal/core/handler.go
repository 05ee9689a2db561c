package core

import (
	"context"
	"log/slog"
)

// Invoke runs h against c and waits for it. The native dispatchers have no
// error channel, so a failed handler is only logged.
func Invoke(ctx context.Context, logger *slog.Logger, h Handler, c *Context) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := h(ctx, c); err != nil {
		logger.Error("handler failed",
			"source", string(c.Source),
			"chat_id", c.ChatID,
			"message_id", c.MessageID,
			"error", err,
		)
	}
}
