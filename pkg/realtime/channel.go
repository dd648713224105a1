package realtime

import (
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/pion/webrtc/v3"
)

// ChannelState is the lifecycle state of the event channel.
type ChannelState int

const (
	ChannelConnecting ChannelState = iota
	ChannelOpen
	ChannelClosed
)

// String returns the string representation of the state.
func (s ChannelState) String() string {
	switch s {
	case ChannelConnecting:
		return "connecting"
	case ChannelOpen:
		return "open"
	case ChannelClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// dataChannel is the subset of *webrtc.DataChannel the event channel
// needs. Narrowed to an interface so tests can drive the channel without
// a negotiated peer connection.
type dataChannel interface {
	Send([]byte) error
	Close() error
}

// EventChannel is the single ordered, reliable, bidirectional control
// channel multiplexed over the peer session. Inbound frames are parsed as
// JSON and delivered in transport order, one at a time.
type EventChannel struct {
	mu    sync.Mutex
	dc    dataChannel
	state ChannelState

	onOpen  func()
	onEvent func(*ServerEvent)
	onClose func()
}

// ChannelHandlers are the callbacks wired to channel lifecycle and inbound
// events. All callbacks are optional.
type ChannelHandlers struct {
	OnOpen  func()
	OnEvent func(*ServerEvent)
	OnClose func()
}

// newEventChannel wraps a freshly created data channel. The channel starts
// in the connecting state; OnOpen fires when the underlying transport
// opens.
func newEventChannel(dc *webrtc.DataChannel, h ChannelHandlers) *EventChannel {
	ch := &EventChannel{
		dc:      dc,
		state:   ChannelConnecting,
		onOpen:  h.OnOpen,
		onEvent: h.OnEvent,
		onClose: h.OnClose,
	}

	dc.OnOpen(func() {
		ch.handleOpen()
	})
	dc.OnMessage(func(msg webrtc.DataChannelMessage) {
		ch.handleFrame(msg.Data)
	})
	dc.OnClose(func() {
		ch.handleClose()
	})

	return ch
}

// State returns the current channel state.
func (ch *EventChannel) State() ChannelState {
	ch.mu.Lock()
	defer ch.mu.Unlock()
	return ch.state
}

// Open reports whether the channel is open for sending.
func (ch *EventChannel) Open() bool {
	return ch.State() == ChannelOpen
}

// Send marshals and sends a client event. Sending while the channel is not
// open is a deliberate no-op, not an error: the UI treats "send raced with
// disconnect" as expected. Callers that need to know whether a send had
// effect check Open() first.
func (ch *EventChannel) Send(event map[string]any) error {
	ch.mu.Lock()
	if ch.state != ChannelOpen {
		ch.mu.Unlock()
		slog.Debug("event channel not open, dropping send")
		return nil
	}
	dc := ch.dc
	ch.mu.Unlock()

	frame, err := json.Marshal(event)
	if err != nil {
		return err
	}
	slog.Debug("sending event", "type", event["type"], "len", len(frame))
	return dc.Send(frame)
}

// Close closes the underlying transport. Safe to call repeatedly.
func (ch *EventChannel) Close() {
	ch.mu.Lock()
	if ch.state == ChannelClosed {
		ch.mu.Unlock()
		return
	}
	dc := ch.dc
	ch.mu.Unlock()

	if dc != nil {
		_ = dc.Close()
	}
	// State flips to closed via handleClose when the transport confirms;
	// flip eagerly too so sends after Close are dropped immediately.
	ch.handleClose()
}

func (ch *EventChannel) handleOpen() {
	ch.mu.Lock()
	if ch.state != ChannelConnecting {
		ch.mu.Unlock()
		return
	}
	ch.state = ChannelOpen
	cb := ch.onOpen
	ch.mu.Unlock()

	slog.Debug("event channel open")
	if cb != nil {
		cb()
	}
}

// handleFrame parses and dispatches one inbound frame. Malformed frames
// are dropped and logged at debug level; they never take the channel down.
func (ch *EventChannel) handleFrame(data []byte) {
	var event ServerEvent
	if err := json.Unmarshal(data, &event); err != nil {
		slog.Debug("dropping malformed frame", "len", len(data), "error", err)
		return
	}
	event.Raw = data

	ch.mu.Lock()
	cb := ch.onEvent
	ch.mu.Unlock()

	if cb != nil {
		cb(&event)
	}
}

func (ch *EventChannel) handleClose() {
	ch.mu.Lock()
	if ch.state == ChannelClosed {
		ch.mu.Unlock()
		return
	}
	ch.state = ChannelClosed
	cb := ch.onClose
	ch.mu.Unlock()

	slog.Debug("event channel closed")
	if cb != nil {
		cb()
	}
}
