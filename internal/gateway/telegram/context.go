package telegram

import (
	"context"
	"errors"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"anybot/internal/core"
)

// api is the subset of *bot.Bot the outgoing actions need.
type api interface {
	SendMessage(ctx context.Context, params *bot.SendMessageParams) (*models.Message, error)
	SendPhoto(ctx context.Context, params *bot.SendPhotoParams) (*models.Message, error)
}

type outbound struct {
	api       api
	chatID    int64
	messageID int
}

func newContext(update *models.Update, client api) *core.Context {
	var msg *models.Message
	if update != nil {
		msg = update.Message
	}

	out := &outbound{api: client}
	c := core.NewContext(core.SourceTelegram, out)
	c.Date = time.Unix(0, 0)
	if msg == nil {
		return c
	}

	c.Text = msg.Text
	c.Date = time.Unix(int64(msg.Date), 0)
	if msg.From != nil {
		c.From.ID = msg.From.ID
	}
	c.ChatID = msg.Chat.ID
	c.MessageID = int64(msg.ID)

	out.chatID = msg.Chat.ID
	out.messageID = msg.ID
	return c
}

func (o *outbound) Send(ctx context.Context, chatID int64, text string) (core.Response, error) {
	msg, err := o.api.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: chatID,
		Text:   text,
	})
	return response(core.OpSend, msg, err)
}

func (o *outbound) Reply(ctx context.Context, text string) (core.Response, error) {
	msg, err := o.api.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:          o.chatID,
		Text:            text,
		ReplyParameters: o.anchor(),
	})
	return response(core.OpReply, msg, err)
}

func (o *outbound) SendPhoto(ctx context.Context, chatID int64, photo string, caption string) (core.Response, error) {
	msg, err := o.api.SendPhoto(ctx, &bot.SendPhotoParams{
		ChatID:  chatID,
		Photo:   &models.InputFileString{Data: photo},
		Caption: caption,
	})
	return response(core.OpSendPhoto, msg, err)
}

func (o *outbound) ReplyPhoto(ctx context.Context, photo string, caption string) (core.Response, error) {
	msg, err := o.api.SendPhoto(ctx, &bot.SendPhotoParams{
		ChatID:          o.chatID,
		Photo:           &models.InputFileString{Data: photo},
		Caption:         caption,
		ReplyParameters: o.anchor(),
	})
	return response(core.OpReplyPhoto, msg, err)
}

func (o *outbound) anchor() *models.ReplyParameters {
	if o.messageID == 0 {
		return nil
	}
	return &models.ReplyParameters{MessageID: o.messageID}
}

func response(op core.Op, msg *models.Message, err error) (core.Response, error) {
	if err != nil {
		return core.Response{}, &core.SendError{
			Source: core.SourceTelegram,
			Op:     op,
			Code:   errorCode(err),
			Err:    err,
		}
	}
	if msg == nil {
		return core.Response{}, nil
	}
	return core.Response{MessageID: int64(msg.ID)}, nil
}

// errorCode recovers the Bot API status. Flood control and chat migration
// come back as typed errors instead of the wrapped sentinels.
func errorCode(err error) int {
	var (
		tooMany *bot.TooManyRequestsError
		migrate *bot.MigrateError
	)
	switch {
	case errors.As(err, &tooMany):
		return 429
	case errors.As(err, &migrate):
		return 400
	case errors.Is(err, bot.ErrorBadRequest):
		return 400
	case errors.Is(err, bot.ErrorUnauthorized):
		return 401
	case errors.Is(err, bot.ErrorForbidden):
		return 403
	case errors.Is(err, bot.ErrorNotFound):
		return 404
	case errors.Is(err, bot.ErrorConflict):
		return 409
	case errors.Is(err, bot.ErrorTooManyRequests):
		return 429
	}
	return 0
}
