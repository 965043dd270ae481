package telegram

import (
	"context"
	"time"

	"github.com/google/uuid"

	"channelwatch/internal/domain/channel"
	"channelwatch/internal/metrics"
	"channelwatch/pkg/logger"
)

// Compile-time check
var _ channel.Publisher = (*Publisher)(nil)

// sender is the slice of Bot the publisher needs
type sender interface {
	SendMessageWithRetry(ctx context.Context, chatID int64, text string, maxRetries int) error
}

// Publisher posts notifications to a single Telegram chat and records every
// attempt in the audit log
type Publisher struct {
	bot     sender
	chatID  int64
	audit   channel.NotificationLog
	log     *logger.Logger
	retries int
}

// NewPublisher creates a publisher posting to chatID. audit may be nil.
func NewPublisher(bot sender, chatID int64, audit channel.NotificationLog, log *logger.Logger) *Publisher {
	return &Publisher{
		bot:     bot,
		chatID:  chatID,
		audit:   audit,
		log:     log.With("component", "telegram_publisher"),
		retries: 3,
	}
}

// Post delivers text to the configured chat. Failures are logged and
// reported as false; callers decide whether the underlying event should be
// retried on a later cycle.
func (p *Publisher) Post(ctx context.Context, text string, reason channel.PostReason) bool {
	err := p.bot.SendMessageWithRetry(ctx, p.chatID, text, p.retries)
	if err != nil {
		p.log.Errorw("Failed to post notification",
			"reason", reason,
			"error", err,
		)
	}

	metrics.RecordPost(string(reason), err == nil)
	p.recordAudit(ctx, text, reason, err == nil)

	return err == nil
}

func (p *Publisher) recordAudit(ctx context.Context, text string, reason channel.PostReason, success bool) {
	if p.audit == nil {
		return
	}

	n := channel.Notification{
		ID:       uuid.NewString(),
		Reason:   reason,
		Text:     text,
		Success:  success,
		PostedAt: time.Now().UTC(),
	}
	if err := p.audit.Append(ctx, n); err != nil {
		p.log.Warnw("Failed to append notification audit entry",
			"reason", reason,
			"error", err,
		)
	}
}
