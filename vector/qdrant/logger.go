package qdrant

import (
	"context"
	"log/slog"

	"github.com/yaoapp/kun/log"
)

func init() {
	// the qdrant client logs through slog
	slog.SetDefault(slog.New(&kunLogHandler{}))
}

// kunLogHandler bridges slog to kun/log
type kunLogHandler struct {
	attrs  []slog.Attr
	groups []string
}

// Enabled implements slog.Handler
func (h *kunLogHandler) Enabled(_ context.Context, level slog.Level) bool {
	return log.GetLevel() >= kunLevel(level)
}

func kunLevel(level slog.Level) log.Level {
	switch {
	case level >= slog.LevelError:
		return log.ErrorLevel
	case level >= slog.LevelWarn:
		return log.WarnLevel
	case level >= slog.LevelInfo:
		return log.InfoLevel
	}
	return log.DebugLevel
}

// Handle implements slog.Handler
func (h *kunLogHandler) Handle(_ context.Context, r slog.Record) error {
	fields := log.F{}
	prefix := ""
	for _, g := range h.groups {
		prefix += g + "."
	}
	for _, attr := range h.attrs {
		fields[prefix+attr.Key] = attr.Value.Any()
	}
	r.Attrs(func(attr slog.Attr) bool {
		fields[prefix+attr.Key] = attr.Value.Any()
		return true
	})

	entry := log.With(fields)
	switch kunLevel(r.Level) {
	case log.ErrorLevel:
		entry.Error("[Qdrant] %s", r.Message)
	case log.WarnLevel:
		entry.Warn("[Qdrant] %s", r.Message)
	case log.InfoLevel:
		entry.Info("[Qdrant] %s", r.Message)
	default:
		entry.Debug("[Qdrant] %s", r.Message)
	}
	return nil
}

// WithAttrs implements slog.Handler
func (h *kunLogHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	merged := make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	merged = append(merged, h.attrs...)
	merged = append(merged, attrs...)
	return &kunLogHandler{attrs: merged, groups: h.groups}
}

// WithGroup implements slog.Handler
func (h *kunLogHandler) WithGroup(name string) slog.Handler {
	groups := make([]string, 0, len(h.groups)+1)
	groups = append(groups, h.groups...)
	return &kunLogHandler{attrs: h.attrs, groups: append(groups, name)}
}
