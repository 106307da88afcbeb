package handlers

import (
	"errors"

	telebot "gopkg.in/telebot.v3"
)

// ReplyError reports that Telegram rejected the handler's own answer. Another
// reply for the same update would most likely fail too, so the error
// middleware only logs it.
type ReplyError struct {
	Err error
}

func (e *ReplyError) Error() string {
	return "send reply: " + e.Err.Error()
}

func (e *ReplyError) Unwrap() error {
	return e.Err
}

// IsReplyError reports whether err came from sending the final answer.
func IsReplyError(err error) bool {
	var replyErr *ReplyError
	return errors.As(err, &replyErr)
}

func reply(c telebot.Context, text string) error {
	if err := c.Send(text); err != nil {
		return &ReplyError{Err: err}
	}
	return nil
}
