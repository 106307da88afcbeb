// Package command defines the closed set of chat commands, their parser and
// the /help listing. Parser and listing are both derived from one table.
package command

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/Proton-105/cryptobot/internal/i18n"
)

// Kind identifies a command variant.
type Kind int

const (
	KindHelp Kind = iota + 1
	KindPrice
	KindAnalyze
)

func (k Kind) String() string {
	for _, s := range specs {
		if s.Kind == k {
			return s.Name
		}
	}
	return "unknown"
}

// Arity describes the argument a command takes.
type Arity int

const (
	NoArgument Arity = iota
	CoinArgument
)

// Spec is one row of the command table.
type Spec struct {
	Kind  Kind
	Name  string
	Arity Arity
	// DescriptionKey is the i18n key of the /help line.
	DescriptionKey string
}

var specs = []Spec{
	{Kind: KindHelp, Name: "help", Arity: NoArgument, DescriptionKey: "commands.help"},
	{Kind: KindPrice, Name: "price", Arity: CoinArgument, DescriptionKey: "commands.price"},
	{Kind: KindAnalyze, Name: "analyze", Arity: CoinArgument, DescriptionKey: "commands.analyze"},
}

// Specs returns a copy of the command table in listing order.
func Specs() []Spec {
	out := make([]Spec, len(specs))
	copy(out, specs)
	return out
}

// CoinID is a CoinGecko slug such as "bitcoin".
type CoinID string

// NormalizeCoin lower-cases and trims a raw argument.
func NormalizeCoin(raw string) CoinID {
	return CoinID(strings.ToLower(strings.TrimSpace(raw)))
}

// Command is a parsed chat command. Arg holds the raw argument for commands
// that take one.
type Command struct {
	Kind Kind
	Arg  string
}

// Coin returns the normalized argument.
func (c Command) Coin() CoinID {
	return NormalizeCoin(c.Arg)
}

var (
	ErrNotCommand       = errors.New("text is not a command")
	ErrUnknownCommand   = errors.New("unknown command")
	ErrMissingArgument  = errors.New("missing argument")
	ErrTooManyArguments = errors.New("command takes no arguments")
	ErrOtherBot         = errors.New("command addressed to another bot")
)

// ParseError describes why a text could not be parsed.
type ParseError struct {
	Input  string
	Reason error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %q: %v", e.Input, e.Reason)
}

func (e *ParseError) Unwrap() error {
	return e.Reason
}

// Parse turns a message text into a Command. The keyword is matched
// case-insensitively and may carry an @botname suffix, which must match
// botUsername when both are present. telebot drops updates addressed to
// another bot before they reach OnText, so ErrOtherBot is only returned for
// texts routed by hand and never produces a chat reply in production.
func Parse(text, botUsername string) (Command, error) {
	trimmed := strings.TrimLeftFunc(text, unicode.IsSpace)
	if !strings.HasPrefix(trimmed, "/") {
		return Command{}, &ParseError{Input: text, Reason: ErrNotCommand}
	}

	keyword, rest := splitKeyword(trimmed[1:])

	if name, target, ok := strings.Cut(keyword, "@"); ok {
		keyword = name
		botUsername = strings.TrimPrefix(botUsername, "@")
		if botUsername != "" && !strings.EqualFold(target, botUsername) {
			return Command{}, &ParseError{Input: text, Reason: ErrOtherBot}
		}
	}

	spec, ok := lookup(keyword)
	if !ok {
		return Command{}, &ParseError{Input: text, Reason: ErrUnknownCommand}
	}

	arg := strings.TrimSpace(rest)
	switch spec.Arity {
	case NoArgument:
		if arg != "" {
			return Command{}, &ParseError{Input: text, Reason: ErrTooManyArguments}
		}
		return Command{Kind: spec.Kind}, nil
	default:
		if arg == "" {
			return Command{}, &ParseError{Input: text, Reason: ErrMissingArgument}
		}
		return Command{Kind: spec.Kind, Arg: arg}, nil
	}
}

// Descriptions renders the /help listing: a header line followed by one
// line per command in table order.
func Descriptions(t i18n.Translator) string {
	tr := func(key string) string {
		if t == nil {
			return key
		}
		return t.T(key)
	}

	var b strings.Builder
	b.WriteString(tr("help.header"))
	for _, s := range specs {
		b.WriteString("\n/")
		b.WriteString(s.Name)
		if s.Arity == CoinArgument {
			b.WriteString(" ")
			b.WriteString(tr("help.coin_arg"))
		}
		b.WriteString(" - ")
		b.WriteString(tr(s.DescriptionKey))
	}
	return b.String()
}

func splitKeyword(s string) (keyword, rest string) {
	idx := strings.IndexFunc(s, unicode.IsSpace)
	if idx < 0 {
		return s, ""
	}
	return s[:idx], s[idx:]
}

func lookup(keyword string) (Spec, bool) {
	for _, s := range specs {
		if strings.EqualFold(s.Name, keyword) {
			return s, true
		}
	}
	return Spec{}, false
}
