package logging

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"
)

const (
	webhookQueueSize   = 64
	maxEmbedFieldValue = 1024
	maxEmbedFields     = 20
)

// Embed colors by level.
const (
	colorWarn  = 0xF1C40F
	colorError = 0xE74C3C
)

var webhookURLPattern = regexp.MustCompile(`/api/webhooks/(\d+)/([\w-]+)`)

// WebhookSender posts a message to a Discord webhook.
type WebhookSender func(params *discordgo.WebhookParams) error

// webhookCore is shared between a handler and its WithAttrs/WithGroup derivatives.
type webhookCore struct {
	send  WebhookSender
	queue chan *discordgo.WebhookParams
	done  chan struct{}
	once  sync.Once

	mu     sync.RWMutex
	closed bool
}

// WebhookHandler is a slog.Handler that posts records as embeds to a Discord webhook.
// Posting happens on a background goroutine; records are dropped when the queue is full.
type WebhookHandler struct {
	core   *webhookCore
	level  slog.Level
	attrs  []slog.Attr
	groups []string
}

// NewWebhookHandler creates a handler posting to the webhook URL.
func NewWebhookHandler(webhookURL string, level slog.Level) (*WebhookHandler, error) {
	match := webhookURLPattern.FindStringSubmatch(webhookURL)
	if match == nil {
		return nil, fmt.Errorf("invalid Discord webhook URL")
	}
	webhookID, token := match[1], match[2]

	// webhooks authenticate with their token
	session, err := discordgo.New("")
	if err != nil {
		return nil, fmt.Errorf("failed to create Discord session: %w", err)
	}

	return NewWebhookHandlerWithSender(func(params *discordgo.WebhookParams) error {
		_, err := session.WebhookExecute(webhookID, token, false, params)
		return err
	}, level), nil
}

// NewWebhookHandlerWithSender creates a handler using a custom sender.
func NewWebhookHandlerWithSender(send WebhookSender, level slog.Level) *WebhookHandler {
	core := &webhookCore{
		send:  send,
		queue: make(chan *discordgo.WebhookParams, webhookQueueSize),
		done:  make(chan struct{}),
	}
	go core.run()

	return &WebhookHandler{core: core, level: level}
}

func (c *webhookCore) run() {
	defer close(c.done)
	for params := range c.queue {
		if err := c.send(params); err != nil {
			// must not log through slog: the record would come back here
			fmt.Fprintf(os.Stderr, "failed to post log to webhook: %v\n", err)
		}
	}
}

// Close stops accepting records and waits for queued posts.
func (h *WebhookHandler) Close() {
	h.core.once.Do(func() {
		h.core.mu.Lock()
		h.core.closed = true
		close(h.core.queue)
		h.core.mu.Unlock()
		<-h.core.done
	})
}

func (h *WebhookHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level
}

func (h *WebhookHandler) Handle(_ context.Context, record slog.Record) error {
	params := h.render(record)

	h.core.mu.RLock()
	defer h.core.mu.RUnlock()
	if h.core.closed {
		return nil
	}

	select {
	case h.core.queue <- params:
	default:
	}
	return nil
}

func (h *WebhookHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := *h
	prefixed := make([]slog.Attr, len(attrs))
	for i, attr := range attrs {
		prefixed[i] = slog.Attr{Key: h.key(attr.Key), Value: attr.Value}
	}
	clone.attrs = append(append([]slog.Attr{}, h.attrs...), prefixed...)
	return &clone
}

func (h *WebhookHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	clone := *h
	clone.groups = append(append([]string{}, h.groups...), name)
	return &clone
}

func (h *WebhookHandler) key(key string) string {
	if len(h.groups) == 0 {
		return key
	}
	return strings.Join(h.groups, ".") + "." + key
}

func (h *WebhookHandler) render(record slog.Record) *discordgo.WebhookParams {
	color := colorWarn
	if record.Level >= slog.LevelError {
		color = colorError
	}

	embed := &discordgo.MessageEmbed{
		Title:       record.Level.String(),
		Description: record.Message,
		Color:       color,
		Timestamp:   record.Time.UTC().Format(time.RFC3339),
	}

	addField := func(attr slog.Attr) {
		if len(embed.Fields) >= maxEmbedFields {
			return
		}
		value := attr.Value.Resolve().String()
		if len(value) > maxEmbedFieldValue {
			value = value[:maxEmbedFieldValue-3] + "..."
		}
		if value == "" {
			value = "-"
		}
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:   attr.Key,
			Value:  value,
			Inline: len(value) < 40,
		})
	}

	for _, attr := range h.attrs {
		addField(attr)
	}
	record.Attrs(func(attr slog.Attr) bool {
		addField(slog.Attr{Key: h.key(attr.Key), Value: attr.Value})
		return true
	})

	return &discordgo.WebhookParams{Embeds: []*discordgo.MessageEmbed{embed}}
}
