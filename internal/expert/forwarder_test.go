package expert

import (
	"context"
	"errors"
	"testing"

	"github.com/voxbridge/voxbridge/internal/store"
)

type scriptedResponder struct {
	reply string
	err   error
	asked []string
}

func (r *scriptedResponder) Respond(_ context.Context, _, text string) (string, error) {
	r.asked = append(r.asked, text)
	if r.err != nil {
		return "", r.err
	}
	return r.reply, nil
}

func TestForwarderRecordsBothSides(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryStore()
	if err := s.CreateConversation(ctx, store.Conversation{ID: "c1"}); err != nil {
		t.Fatal(err)
	}

	var replies []string
	f := &Forwarder{
		Responder:      &scriptedResponder{reply: "the capital is Paris"},
		Store:          s,
		ConversationID: "c1",
		OnReply:        func(text string) { replies = append(replies, text) },
	}

	if err := f.ForwardTranscript(ctx, "what is the capital of France"); err != nil {
		t.Fatal(err)
	}

	msgs, err := s.ListMessages(ctx, "c1")
	if err != nil {
		t.Fatal(err)
	}
	if len(msgs) != 2 {
		t.Fatalf("messages = %+v, want user + expert", msgs)
	}
	if msgs[0].Role != "user" || msgs[1].Role != "expert" {
		t.Fatalf("roles = %s, %s", msgs[0].Role, msgs[1].Role)
	}
	if len(replies) != 1 || replies[0] != "the capital is Paris" {
		t.Fatalf("replies = %v", replies)
	}
}

func TestForwarderResponderError(t *testing.T) {
	wantErr := errors.New("quota exceeded")
	f := &Forwarder{Responder: &scriptedResponder{err: wantErr}}

	if err := f.ForwardTranscript(context.Background(), "hello"); !errors.Is(err, wantErr) {
		t.Fatalf("err = %v, want wrapped responder error", err)
	}
}

func TestForwarderWithoutResponder(t *testing.T) {
	f := &Forwarder{}
	if err := f.ForwardTranscript(context.Background(), "hello"); err != nil {
		t.Fatalf("forwarding without responder should be a no-op: %v", err)
	}
}
