package core

import (
	"errors"
	"fmt"
)

type Op string

const (
	OpSend       Op = "send"
	OpReply      Op = "reply"
	OpSendPhoto  Op = "send_photo"
	OpReplyPhoto Op = "reply_photo"
)

var ErrDetached = errors.New("context has no native client")

type Error struct {
	Code        int    `json:"code"`
	Description string `json:"description"`
}

// SendError is returned by every outgoing action. Err is the native SDK error
// and stays reachable through errors.As / errors.Is.
type SendError struct {
	Source      Source
	Op          Op
	Code        int
	Description string
	Err         error
}

func (e *SendError) Error() string {
	desc := e.Description
	if desc == "" && e.Err != nil {
		desc = e.Err.Error()
	}
	if e.Code != 0 {
		return fmt.Sprintf("%s %s failed (code=%d): %s", e.Source, e.Op, e.Code, desc)
	}
	return fmt.Sprintf("%s %s failed: %s", e.Source, e.Op, desc)
}

func (e *SendError) Unwrap() error {
	return e.Err
}

// Describe reduces any error to the code/description pair handlers can show.
func Describe(err error) Error {
	if err == nil {
		return Error{}
	}
	var sendErr *SendError
	if errors.As(err, &sendErr) {
		out := Error{Code: sendErr.Code, Description: sendErr.Description}
		if out.Description == "" && sendErr.Err != nil {
			out.Description = sendErr.Err.Error()
		}
		return out
	}
	return Error{Description: err.Error()}
}
