package bot

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"

	telebot "gopkg.in/telebot.v3"

	"github.com/Proton-105/cryptobot/internal/bot/handlers"
	"github.com/Proton-105/cryptobot/internal/command"
	"github.com/Proton-105/cryptobot/pkg/logger"
)

// Router parses each text message and dispatches it to the handler of the
// matching command, the hint handler for plain text, or the parse failure
// handler.
type Router struct {
	mu           sync.RWMutex
	commands     map[command.Kind]handlers.Handler
	hint         handlers.Handler
	parseFailure handlers.Handler
	middlewares  []handlers.Middleware
	botUsername  string
	log          *slog.Logger
}

// NewRouter builds a Router with empty registries.
func NewRouter(botUsername string, log *slog.Logger) *Router {
	if log == nil {
		log = slog.Default()
	}

	return &Router{
		commands:    make(map[command.Kind]handlers.Handler),
		middlewares: make([]handlers.Middleware, 0),
		botUsername: botUsername,
		log:         log,
	}
}

// RegisterCommand registers a handler for a command kind.
func (r *Router) RegisterCommand(kind command.Kind, h handlers.Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.commands[kind] = h
}

// SetHint sets the handler for messages that are not commands.
func (r *Router) SetHint(h handlers.Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.hint = h
}

// SetParseFailure sets the handler for commands that could not be parsed.
func (r *Router) SetParseFailure(h handlers.Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.parseFailure = h
}

// Use appends a middleware to the chain.
func (r *Router) Use(mw handlers.Middleware) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.middlewares = append(r.middlewares, mw)
}

// Route directs the incoming update to the appropriate handler. Updates
// without text are ignored.
func (r *Router) Route(c telebot.Context) error {
	if c == nil {
		return nil
	}

	text := c.Text()
	if strings.TrimSpace(text) == "" {
		return nil
	}

	ctx := logger.WithCorrelationID(context.Background(), logger.NewCorrelationID())
	c.Set(handlers.ContextKey, ctx)

	cmd, err := command.Parse(text, r.botUsername)
	switch {
	case errors.Is(err, command.ErrNotCommand):
		return r.executeHandler(r.getHint(), c)
	case err != nil:
		r.log.DebugContext(ctx, "command not recognized", slog.Any("error", err))
		c.Set(handlers.ParseErrorKey, err)
		return r.executeHandler(r.getParseFailure(), c)
	}

	c.Set(handlers.CommandKey, cmd)

	handler := r.getCommandHandler(cmd.Kind)
	if handler == nil {
		r.log.WarnContext(ctx, "no handler registered", slog.String("command", cmd.Kind.String()))
		return nil
	}

	return r.executeHandler(handler, c)
}

func (r *Router) executeHandler(h handlers.Handler, c telebot.Context) error {
	wrapped := r.applyMiddlewares(h)
	if wrapped == nil {
		return nil
	}
	return wrapped(c)
}

func (r *Router) getCommandHandler(kind command.Kind) handlers.Handler {
	r.mu.RLock()
	handler := r.commands[kind]
	r.mu.RUnlock()
	return handler
}

func (r *Router) getHint() handlers.Handler {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.hint
}

func (r *Router) getParseFailure() handlers.Handler {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.parseFailure
}

// applyMiddlewares wraps the handler with all registered middlewares.
func (r *Router) applyMiddlewares(h handlers.Handler) handlers.Handler {
	if h == nil {
		return nil
	}

	middlewares := r.middlewaresSnapshot()
	wrapped := h
	for i := len(middlewares) - 1; i >= 0; i-- {
		wrapped = middlewares[i](wrapped)
	}

	return wrapped
}

func (r *Router) middlewaresSnapshot() []handlers.Middleware {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if len(r.middlewares) == 0 {
		return nil
	}

	snapshot := make([]handlers.Middleware, len(r.middlewares))
	copy(snapshot, r.middlewares)
	return snapshot
}
