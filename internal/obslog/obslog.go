// Package obslog scopes structured logging to a single ztlctl invocation.
// Per the redesign flag on global state (spec §9), there is no process-wide
// logger: a Context is constructed once at program entry and threaded
// through every service constructor.
package obslog

import (
	"log/slog"
	"os"
)

// Context wraps a *slog.Logger with a fixed set of invocation-scoped fields
// (vault root, invocation id, actor) attached to every record it emits.
type Context struct {
	logger *slog.Logger
}

// New builds a Context for one invocation. vaultRoot, invocationID and actor
// are attached to every subsequent log record.
func New(vaultRoot, invocationID, actor string) *Context {
	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo})
	logger := slog.New(handler).With(
		slog.String("vault", vaultRoot),
		slog.String("invocation_id", invocationID),
		slog.String("actor", actor),
	)
	return &Context{logger: logger}
}

// NewDiscard returns a Context whose logger discards everything; useful for
// tests that do not want log noise.
func NewDiscard() *Context {
	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError + 100})
	return &Context{logger: slog.New(handler)}
}

// With returns a derived Context with additional fields, leaving the
// receiver untouched.
func (c *Context) With(args ...any) *Context {
	return &Context{logger: c.logger.With(args...)}
}

func (c *Context) Info(msg string, args ...any)  { c.logger.Info(msg, args...) }
func (c *Context) Warn(msg string, args ...any)  { c.logger.Warn(msg, args...) }
func (c *Context) Error(msg string, args ...any) { c.logger.Error(msg, args...) }
func (c *Context) Debug(msg string, args ...any) { c.logger.Debug(msg, args...) }
