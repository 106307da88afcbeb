package bot

import (
	"fmt"
	"log/slog"

	telebot "gopkg.in/telebot.v3"

	"github.com/Proton-105/cryptobot/internal/bot/handlers"
	"github.com/Proton-105/cryptobot/internal/command"
	errors "github.com/Proton-105/cryptobot/internal/errors"
	"github.com/Proton-105/cryptobot/internal/i18n"
	"github.com/Proton-105/cryptobot/internal/idempotency"
	"github.com/Proton-105/cryptobot/internal/middleware"
	"github.com/Proton-105/cryptobot/pkg/config"
)

// Deps are the collaborators the bot dispatches to.
type Deps struct {
	Prices     handlers.PriceFetcher
	Analyst    handlers.Analyst
	Translator i18n.Translator
	ErrHandler *errors.Handler
	Guard      *idempotency.Guard
}

// Bot wraps telebot.Bot with application dependencies required for handling updates.
type Bot struct {
	telebot *telebot.Bot
	log     *slog.Logger
	cfg     config.TelegramConfig
	router  *Router
}

// New builds a telegram bot instance configured according to the application settings.
func New(cfg config.TelegramConfig, log *slog.Logger, deps Deps) (*Bot, error) {
	if log == nil {
		log = slog.Default()
	}

	settings := telebot.Settings{
		Token:  cfg.Token,
		Poller: newPoller(cfg),
		OnError: func(err error, c telebot.Context) {
			log.Error("telebot error", slog.Any("error", err))
		},
	}

	tb, err := telebot.NewBot(settings)
	if err != nil {
		return nil, fmt.Errorf("initialize telebot: %w", err)
	}

	username := ""
	if tb.Me != nil {
		username = tb.Me.Username
	}

	b := &Bot{
		telebot: tb,
		log:     log,
		cfg:     cfg,
		router:  NewRouter(username, log),
	}

	setupRouter(b.router, deps, log)
	b.registerTelebotHandlers()
	b.publishCommands(deps.Translator)

	return b, nil
}

func newPoller(cfg config.TelegramConfig) telebot.Poller {
	if cfg.Mode == "webhook" {
		return &telebot.Webhook{
			Listen:   cfg.WebhookListen,
			Endpoint: &telebot.WebhookEndpoint{PublicURL: cfg.WebhookURL},
		}
	}

	return &telebot.LongPoller{Timeout: cfg.PollTimeout}
}

// setupRouter wires middlewares and handlers. Middlewares run in
// registration order.
func setupRouter(r *Router, deps Deps, log *slog.Logger) {
	r.Use(RecoveryMiddleware(log, deps.ErrHandler))
	r.Use(middleware.Idempotency(deps.Guard, log))
	r.Use(ErrorHandlingMiddleware(deps.ErrHandler, log))
	r.Use(LoggingMiddleware(log))
	r.Use(middleware.Metrics)

	r.RegisterCommand(command.KindHelp, handlers.NewHelpHandler(deps.Translator))
	r.RegisterCommand(command.KindPrice, handlers.NewPriceHandler(deps.Prices, deps.Translator, log))
	r.RegisterCommand(command.KindAnalyze, handlers.NewAnalyzeHandler(deps.Analyst, deps.Translator, log))

	r.SetHint(handlers.NewHintHandler(deps.Translator))
	r.SetParseFailure(handlers.NewParseFailureHandler())
}

func (b *Bot) registerTelebotHandlers() {
	if b.telebot == nil || b.router == nil {
		return
	}

	b.telebot.Handle(telebot.OnText, b.router.Route)
}

// publishCommands registers the command menu shown by Telegram clients.
func (b *Bot) publishCommands(t i18n.Translator) {
	specs := command.Specs()
	cmds := make([]telebot.Command, 0, len(specs))
	for _, s := range specs {
		cmds = append(cmds, telebot.Command{Text: s.Name, Description: t.T(s.DescriptionKey)})
	}

	if err := b.telebot.SetCommands(cmds); err != nil {
		b.log.Warn("failed to publish command menu", slog.Any("error", err))
	}
}

// Start runs the telegram bot event loop. It blocks until Stop is called.
func (b *Bot) Start() {
	if b.telebot == nil {
		return
	}

	b.log.Info("telegram bot started", slog.String("mode", b.cfg.Mode))
	b.telebot.Start()
}

// Stop gracefully stops the telegram bot.
func (b *Bot) Stop() {
	if b.telebot == nil {
		return
	}

	b.log.Info("stopping telegram bot...")
	b.telebot.Stop()
}

// Telebot exposes the underlying telebot.Bot instance for integrations such as health checks.
func (b *Bot) Telebot() *telebot.Bot {
	return b.telebot
}
