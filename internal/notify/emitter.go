// Package notify emits mention events to downstream consumers such as the
// assistant worker. Events carry ids only; ciphertext never leaves the store
// through this channel.
package notify

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// emitTimeout bounds a single async emit so a slow sink cannot pile up
// goroutines behind it.
const emitTimeout = 5 * time.Second

type Event struct {
	ConversationID uuid.UUID
	MessageID      uuid.UUID
	Mentions       []uuid.UUID
}

type Sink interface {
	MentionCreated(ctx context.Context, ev Event) error
}

// EmitAsync delivers the event in a goroutine so the submitting request is
// never blocked or failed by the notification path. The goroutine uses its
// own context so request cancellation does not abort an in-flight emit.
func EmitAsync(sink Sink, ev Event) {
	if sink == nil || len(ev.Mentions) == 0 {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), emitTimeout)
		defer cancel()
		if err := sink.MentionCreated(ctx, ev); err != nil {
			slog.Warn("mention emit failed",
				"error", err,
				"conversation_id", ev.ConversationID,
				"message_id", ev.MessageID,
			)
		}
	}()
}

// LogSink is the default sink: it just records the event. Real deployments
// swap in a queue or webhook sink behind the same interface.
type LogSink struct{}

func (LogSink) MentionCreated(ctx context.Context, ev Event) error {
	slog.Info("mention event",
		"conversation_id", ev.ConversationID,
		"message_id", ev.MessageID,
		"mentions", len(ev.Mentions),
	)
	return nil
}
