package handlers

import (
	telebot "gopkg.in/telebot.v3"

	"github.com/Proton-105/cryptobot/internal/command"
	"github.com/Proton-105/cryptobot/internal/i18n"
)

// NewHelpHandler replies with the command listing.
func NewHelpHandler(t i18n.Translator) Handler {
	return func(c telebot.Context) error {
		return reply(c, command.Descriptions(t))
	}
}
