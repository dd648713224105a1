package realtime

import (
	"encoding/json"
	"testing"
)

type fakeDataChannel struct {
	sent   [][]byte
	closed int
	err    error
}

func (f *fakeDataChannel) Send(b []byte) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, b)
	return nil
}

func (f *fakeDataChannel) Close() error {
	f.closed++
	return nil
}

func newTestChannel(dc dataChannel, h ChannelHandlers) *EventChannel {
	return &EventChannel{
		dc:      dc,
		state:   ChannelConnecting,
		onOpen:  h.OnOpen,
		onEvent: h.OnEvent,
		onClose: h.OnClose,
	}
}

func TestChannelSendBeforeOpenIsNoop(t *testing.T) {
	dc := &fakeDataChannel{}
	ch := newTestChannel(dc, ChannelHandlers{})

	if err := ch.Send(CommitEvent()); err != nil {
		t.Fatalf("Send before open: %v", err)
	}
	if len(dc.sent) != 0 {
		t.Fatal("nothing must reach the transport before open")
	}

	ch.handleOpen()
	if err := ch.Send(CommitEvent()); err != nil {
		t.Fatalf("Send after open: %v", err)
	}
	if len(dc.sent) != 1 {
		t.Fatalf("sent %d frames, want 1", len(dc.sent))
	}

	var frame map[string]any
	if err := json.Unmarshal(dc.sent[0], &frame); err != nil {
		t.Fatal(err)
	}
	if frame["type"] != EventTypeInputAudioBufferCommit {
		t.Fatalf("frame type = %v", frame["type"])
	}
}

func TestChannelSendAfterCloseIsNoop(t *testing.T) {
	dc := &fakeDataChannel{}
	ch := newTestChannel(dc, ChannelHandlers{})
	ch.handleOpen()
	ch.Close()

	if err := ch.Send(ResponseCreateEvent()); err != nil {
		t.Fatalf("Send after close: %v", err)
	}
	if len(dc.sent) != 0 {
		t.Fatal("nothing must reach the transport after close")
	}
}

func TestChannelOpenFiresOnce(t *testing.T) {
	opens := 0
	ch := newTestChannel(&fakeDataChannel{}, ChannelHandlers{
		OnOpen: func() { opens++ },
	})
	ch.handleOpen()
	ch.handleOpen()
	if opens != 1 {
		t.Fatalf("open fired %d times, want 1", opens)
	}
}

func TestChannelCloseIdempotent(t *testing.T) {
	closes := 0
	dc := &fakeDataChannel{}
	ch := newTestChannel(dc, ChannelHandlers{
		OnClose: func() { closes++ },
	})
	ch.handleOpen()
	ch.Close()
	ch.Close()
	ch.handleClose()
	if closes != 1 {
		t.Fatalf("close fired %d times, want 1", closes)
	}
	if ch.State() != ChannelClosed {
		t.Fatalf("state = %s, want closed", ch.State())
	}
}

func TestChannelDispatchesParsedEvents(t *testing.T) {
	var events []*ServerEvent
	ch := newTestChannel(&fakeDataChannel{}, ChannelHandlers{
		OnEvent: func(ev *ServerEvent) { events = append(events, ev) },
	})
	ch.handleOpen()

	ch.handleFrame([]byte(`{"type":"session.created","event_id":"evt_srv_1"}`))
	ch.handleFrame([]byte(`{"type":"response.text.done","text":"done"}`))

	if len(events) != 2 {
		t.Fatalf("dispatched %d events, want 2", len(events))
	}
	if events[0].Type != EventTypeSessionCreated || events[0].EventID != "evt_srv_1" {
		t.Fatalf("events[0] = %+v", events[0])
	}
	if events[1].Text != "done" {
		t.Fatalf("events[1] = %+v", events[1])
	}
	if string(events[0].Raw) == "" {
		t.Fatal("raw frame should be preserved")
	}
}

func TestChannelDropsMalformedFrames(t *testing.T) {
	var events []*ServerEvent
	ch := newTestChannel(&fakeDataChannel{}, ChannelHandlers{
		OnEvent: func(ev *ServerEvent) { events = append(events, ev) },
	})
	ch.handleOpen()

	ch.handleFrame([]byte(`{not json`))
	ch.handleFrame([]byte(`{"type":"session.created"}`))

	if len(events) != 1 {
		t.Fatalf("dispatched %d events, want 1 (malformed dropped)", len(events))
	}
	if ch.State() != ChannelOpen {
		t.Fatal("a malformed frame must not take the channel down")
	}
}
