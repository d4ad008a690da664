package utils

import (
	"context"
	"log/slog"
)

// FanoutLogHandler duplicates every record to a list of slog handlers,
// e.g. a colored terminal handler plus a plain file handler.
type FanoutLogHandler struct {
	targets []slog.Handler
}

func NewFanoutLogHandler(targets ...slog.Handler) *FanoutLogHandler {
	return &FanoutLogHandler{targets: targets}
}

func (h *FanoutLogHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, t := range h.targets {
		if t.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (h *FanoutLogHandler) Handle(ctx context.Context, r slog.Record) error {
	var firstErr error
	for _, t := range h.targets {
		if !t.Enabled(ctx, r.Level) {
			continue
		}
		if err := t.Handle(ctx, r.Clone()); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (h *FanoutLogHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := make([]slog.Handler, len(h.targets))
	for i, t := range h.targets {
		next[i] = t.WithAttrs(attrs)
	}
	return NewFanoutLogHandler(next...)
}

func (h *FanoutLogHandler) WithGroup(name string) slog.Handler {
	next := make([]slog.Handler, len(h.targets))
	for i, t := range h.targets {
		next[i] = t.WithGroup(name)
	}
	return NewFanoutLogHandler(next...)
}
