package telegram

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"channelwatch/internal/domain/channel"
	"channelwatch/pkg/errors"
	"channelwatch/pkg/logger"
)

type stubSender struct {
	sent []string
	err  error
}

func (s *stubSender) SendMessageWithRetry(ctx context.Context, chatID int64, text string, maxRetries int) error {
	s.sent = append(s.sent, text)
	return s.err
}

type recordingLog struct {
	entries []channel.Notification
	err     error
}

func (r *recordingLog) Append(ctx context.Context, n channel.Notification) error {
	r.entries = append(r.entries, n)
	return r.err
}

func TestPublisher_Post(t *testing.T) {
	bot := &stubSender{}
	audit := &recordingLog{}
	pub := NewPublisher(bot, 42, audit, logger.Get())

	ok := pub.Post(context.Background(), "hello", channel.ReasonNewVideo)

	assert.True(t, ok)
	assert.Equal(t, []string{"hello"}, bot.sent)

	require.Len(t, audit.entries, 1)
	entry := audit.entries[0]
	assert.NotEmpty(t, entry.ID)
	assert.Equal(t, channel.ReasonNewVideo, entry.Reason)
	assert.Equal(t, "hello", entry.Text)
	assert.True(t, entry.Success)
	assert.False(t, entry.PostedAt.IsZero())
}

func TestPublisher_PostFailureReturnsFalse(t *testing.T) {
	bot := &stubSender{err: errors.ErrUnavailable}
	audit := &recordingLog{}
	pub := NewPublisher(bot, 42, audit, logger.Get())

	ok := pub.Post(context.Background(), "hello", channel.ReasonMetricsUpdate)

	assert.False(t, ok)
	require.Len(t, audit.entries, 1)
	assert.False(t, audit.entries[0].Success)
}

func TestPublisher_NilAuditLog(t *testing.T) {
	bot := &stubSender{}
	pub := NewPublisher(bot, 42, nil, logger.Get())

	assert.True(t, pub.Post(context.Background(), "hello", channel.ReasonTrending))
}

func TestPublisher_AuditFailureDoesNotAffectResult(t *testing.T) {
	bot := &stubSender{}
	audit := &recordingLog{err: errors.ErrStoreUnavailable}
	pub := NewPublisher(bot, 42, audit, logger.Get())

	assert.True(t, pub.Post(context.Background(), "hello", channel.ReasonNowTracking))
}
