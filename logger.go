package ordo

import (
	"context"
	"log/slog"

	"github.com/ordo-run/ordo/internal/flow"
)

// Logger is the optional step-logging hook: one operation,
// never called from inside the expression evaluator, only from an Action
// step's logging directive. A nil Logger is a no-op.
type Logger = flow.Logger

// SlogLogger adapts a *slog.Logger to the Logger interface, for callers
// who already have a structured, leveled event logger wired up rather
// than a bespoke one.
type SlogLogger struct {
	Logger *slog.Logger
}

// Log implements Logger by forwarding to the wrapped slog.Logger at the
// matching level, attaching stepId and ruleName as structured attributes.
func (s SlogLogger) Log(level, renderedMessage, stepID, ruleName string) {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	s.Logger.Log(context.Background(), lvl, renderedMessage,
		slog.String("stepId", stepID), slog.String("ruleName", ruleName))
}
