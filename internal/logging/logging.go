// Package logging configures the bot's structured logger.
package logging

import (
	"context"
	"errors"
	"io"
	"log/slog"
)

// New returns a JSON logger on w at the given level. When webhookURL is set,
// records at WARN and above are also posted to that Discord webhook.
// The returned close function flushes pending webhook posts.
func New(w io.Writer, level slog.Level, webhookURL string) (*slog.Logger, func(), error) {
	jsonHandler := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})
	if webhookURL == "" {
		return slog.New(jsonHandler), func() {}, nil
	}

	webhook, err := NewWebhookHandler(webhookURL, slog.LevelWarn)
	if err != nil {
		return nil, nil, err
	}

	return slog.New(fanout{jsonHandler, webhook}), webhook.Close, nil
}

// fanout passes each record to every handler that accepts its level.
type fanout []slog.Handler

func (f fanout) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range f {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (f fanout) Handle(ctx context.Context, record slog.Record) error {
	var errs []error
	for _, h := range f {
		if h.Enabled(ctx, record.Level) {
			errs = append(errs, h.Handle(ctx, record.Clone()))
		}
	}
	return errors.Join(errs...)
}

func (f fanout) WithAttrs(attrs []slog.Attr) slog.Handler {
	handlers := make(fanout, len(f))
	for i, h := range f {
		handlers[i] = h.WithAttrs(attrs)
	}
	return handlers
}

func (f fanout) WithGroup(name string) slog.Handler {
	handlers := make(fanout, len(f))
	for i, h := range f {
		handlers[i] = h.WithGroup(name)
	}
	return handlers
}
