package vk

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"regexp"
	"strings"
	"time"

	"github.com/SevereCloud/vksdk/v2/api"
	"github.com/SevereCloud/vksdk/v2/api/params"
	"github.com/SevereCloud/vksdk/v2/events"

	"anybot/internal/core"
	"anybot/internal/tools"
)

// messenger is the subset of *api.VK the outgoing actions need.
type messenger interface {
	MessagesSend(params api.Params) (int, error)
	UploadMessagesPhoto(peerID int, file io.Reader) (api.PhotosSaveMessagesPhotoResponse, error)
}

type PhotoFetcher interface {
	Fetch(ctx context.Context, ref string) (tools.Photo, error)
}

var (
	errNoFetcher  = errors.New("no photo fetcher configured")
	errNoUpload   = errors.New("photo upload returned no photos")
	attachmentRef = regexp.MustCompile(`^photo-?\d+_\d+(_[0-9a-f]+)?$`)
)

type outbound struct {
	api       messenger
	photos    PhotoFetcher
	peerID    int
	messageID int
}

func newContext(event events.MessageNewObject, client messenger, photos PhotoFetcher) *core.Context {
	msg := event.Message

	c := core.NewContext(core.SourceVK, &outbound{
		api:       client,
		photos:    photos,
		peerID:    msg.PeerID,
		messageID: msg.ID,
	})
	c.Text = msg.Text
	c.Date = time.Unix(int64(msg.Date), 0)
	c.From.ID = int64(msg.FromID)
	c.ChatID = int64(msg.PeerID)
	c.MessageID = int64(msg.ID)
	return c
}

func (o *outbound) Send(_ context.Context, chatID int64, text string) (core.Response, error) {
	b := params.NewMessagesSendBuilder()
	b.PeerID(int(chatID))
	b.RandomID(randomID())
	b.Message(text)
	return o.send(core.OpSend, b)
}

func (o *outbound) Reply(_ context.Context, text string) (core.Response, error) {
	b := params.NewMessagesSendBuilder()
	b.PeerID(o.peerID)
	b.RandomID(randomID())
	b.Message(text)
	b.ReplyTo(o.messageID)
	return o.send(core.OpReply, b)
}

func (o *outbound) SendPhoto(ctx context.Context, chatID int64, photo string, caption string) (core.Response, error) {
	attachment, err := o.attachment(ctx, int(chatID), photo)
	if err != nil {
		return core.Response{}, sendError(core.OpSendPhoto, err)
	}

	b := params.NewMessagesSendBuilder()
	b.PeerID(int(chatID))
	b.RandomID(randomID())
	b.Attachment(attachment)
	if caption != "" {
		b.Message(caption)
	}
	return o.send(core.OpSendPhoto, b)
}

func (o *outbound) ReplyPhoto(ctx context.Context, photo string, caption string) (core.Response, error) {
	attachment, err := o.attachment(ctx, o.peerID, photo)
	if err != nil {
		return core.Response{}, sendError(core.OpReplyPhoto, err)
	}

	b := params.NewMessagesSendBuilder()
	b.PeerID(o.peerID)
	b.RandomID(randomID())
	b.Attachment(attachment)
	b.ReplyTo(o.messageID)
	if caption != "" {
		b.Message(caption)
	}
	return o.send(core.OpReplyPhoto, b)
}

func (o *outbound) send(op core.Op, b *params.MessagesSendBuilder) (core.Response, error) {
	id, err := o.api.MessagesSend(b.Params)
	if err != nil {
		return core.Response{}, sendError(op, err)
	}
	return core.Response{MessageID: int64(id)}, nil
}

// attachment turns a photo reference into a "photo<owner>_<id>" attachment.
// Existing attachments pass through; URLs and paths are uploaded to peerID.
func (o *outbound) attachment(ctx context.Context, peerID int, ref string) (string, error) {
	ref = strings.TrimSpace(ref)
	if attachmentRef.MatchString(ref) {
		return ref, nil
	}
	if o.photos == nil {
		return "", errNoFetcher
	}

	photo, err := o.photos.Fetch(ctx, ref)
	if err != nil {
		return "", err
	}

	saved, err := o.api.UploadMessagesPhoto(peerID, bytes.NewReader(photo.Data))
	if err != nil {
		return "", err
	}
	if len(saved) == 0 {
		return "", errNoUpload
	}
	return fmt.Sprintf("photo%d_%d", saved[0].OwnerID, saved[0].ID), nil
}

func sendError(op core.Op, err error) error {
	out := &core.SendError{
		Source: core.SourceVK,
		Op:     op,
		Err:    err,
	}
	var vkErr *api.Error
	if errors.As(err, &vkErr) {
		out.Code = int(vkErr.Code)
		out.Description = vkErr.Message
	}
	return out
}

func randomID() int {
	return int(rand.Int32())
}
