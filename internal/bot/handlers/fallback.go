package handlers

import (
	telebot "gopkg.in/telebot.v3"

	apperrors "github.com/Proton-105/cryptobot/internal/errors"
	"github.com/Proton-105/cryptobot/internal/i18n"
)

// NewHintHandler answers plain text with a pointer to /help.
func NewHintHandler(t i18n.Translator) Handler {
	return func(c telebot.Context) error {
		return reply(c, t.T("bot.hint"))
	}
}

// NewParseFailureHandler turns the parse error stored by the router into a
// parse-failure AppError.
func NewParseFailureHandler() Handler {
	return func(c telebot.Context) error {
		cause, _ := c.Get(ParseErrorKey).(error)
		return apperrors.NewParseError(cause)
	}
}
