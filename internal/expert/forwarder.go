package expert

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/voxbridge/voxbridge/internal/store"
)

// Forwarder receives completed voice transcripts, records them, asks the
// responder for a text answer, and records that too. It satisfies the
// bridge's transcript sink; forwarding is advisory and never affects the
// voice session.
type Forwarder struct {
	Responder    Responder
	Store        store.Store
	Instructions string

	// ConversationID scopes recorded messages. When empty, messages are
	// not persisted.
	ConversationID string

	// OnReply receives the expert's answer, e.g. for terminal display.
	OnReply func(text string)
}

// ForwardTranscript implements the transcript sink.
func (f *Forwarder) ForwardTranscript(ctx context.Context, text string) error {
	f.record(ctx, "user", text)

	if f.Responder == nil {
		return nil
	}
	reply, err := f.Responder.Respond(ctx, f.Instructions, text)
	if err != nil {
		return fmt.Errorf("expert respond: %w", err)
	}
	f.record(ctx, "expert", reply)
	if f.OnReply != nil {
		f.OnReply(reply)
	}
	return nil
}

func (f *Forwarder) record(ctx context.Context, role, text string) {
	if f.Store == nil || f.ConversationID == "" || text == "" {
		return
	}
	err := f.Store.AppendMessage(ctx, store.Message{
		ID:             uuid.New().String(),
		ConversationID: f.ConversationID,
		Role:           role,
		Text:           text,
		CreatedAt:      time.Now(),
	})
	if err != nil {
		slog.Warn("failed to record transcript message", "role", role, "error", err)
	}
}
