package core

import (
	"context"
	"time"
)

type Source string

const (
	SourceTelegram Source = "telegram"
	SourceVK       Source = "vk"
)

type Sender struct {
	ID int64 `json:"id"`
}

type Response struct {
	MessageID int64 `json:"message_id"`
}

// Outbound performs the outgoing actions of a Context against one native
// client. Reply and ReplyPhoto target the conversation of the triggering
// message and anchor the reply on it.
type Outbound interface {
	Send(ctx context.Context, chatID int64, text string) (Response, error)
	Reply(ctx context.Context, text string) (Response, error)
	SendPhoto(ctx context.Context, chatID int64, photo string, caption string) (Response, error)
	ReplyPhoto(ctx context.Context, photo string, caption string) (Response, error)
}

// Context is the platform independent view of one incoming message.
type Context struct {
	Source    Source    `json:"source"`
	Text      string    `json:"text"`
	Date      time.Time `json:"date"`
	From      Sender    `json:"from"`
	ChatID    int64     `json:"chat_id"`
	MessageID int64     `json:"message_id"`

	out Outbound
}

type Handler func(ctx context.Context, c *Context) error

func NewContext(source Source, out Outbound) *Context {
	return &Context{
		Source: source,
		out:    out,
	}
}

func (c *Context) Send(ctx context.Context, chatID int64, text string) (Response, error) {
	return c.outbound().Send(ctx, chatID, text)
}

func (c *Context) Reply(ctx context.Context, text string) (Response, error) {
	return c.outbound().Reply(ctx, text)
}

// SendPhoto sends photo to chatID. An empty caption sends the photo without one.
func (c *Context) SendPhoto(ctx context.Context, chatID int64, photo string, caption string) (Response, error) {
	return c.outbound().SendPhoto(ctx, chatID, photo, caption)
}

func (c *Context) ReplyPhoto(ctx context.Context, photo string, caption string) (Response, error) {
	return c.outbound().ReplyPhoto(ctx, photo, caption)
}

func (c *Context) outbound() Outbound {
	if c.out == nil {
		return detached{source: c.Source}
	}
	return c.out
}

// detached backs contexts built without a native client.
type detached struct {
	source Source
}

func (d detached) Send(context.Context, int64, string) (Response, error) {
	return Response{}, &SendError{Source: d.source, Op: OpSend, Err: ErrDetached}
}

func (d detached) Reply(context.Context, string) (Response, error) {
	return Response{}, &SendError{Source: d.source, Op: OpReply, Err: ErrDetached}
}

func (d detached) SendPhoto(context.Context, int64, string, string) (Response, error) {
	return Response{}, &SendError{Source: d.source, Op: OpSendPhoto, Err: ErrDetached}
}

func (d detached) ReplyPhoto(context.Context, string, string) (Response, error) {
	return Response{}, &SendError{Source: d.source, Op: OpReplyPhoto, Err: ErrDetached}
}
