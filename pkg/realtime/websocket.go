package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
)

// WebSocketSession is a headless realtime session over WebSocket. It has
// no media transport: audio, when needed, travels as base64 append events.
// The send/handler surface mirrors the WebRTC event channel so the bridge
// controller can run over either.
type WebSocketSession struct {
	conn *websocket.Conn

	mu        sync.Mutex
	closed    bool
	closeOnce sync.Once

	onEvent func(*ServerEvent)
	onClose func()
}

// DialWebSocket establishes a WebSocket realtime session authorized with
// the client's API key. Unlike WebRTC there is no separate channel-open
// phase: the session is ready as soon as the dial returns, and the OnOpen
// handler (when set) is invoked before DialWebSocket returns.
func (c *Client) DialWebSocket(ctx context.Context, model string, h ChannelHandlers) (*WebSocketSession, error) {
	if model == "" {
		model = ModelGPT4oRealtimePreview
	}

	url := fmt.Sprintf("%s?model=%s", c.config.wsURL, model)
	headers := http.Header{}
	headers.Set("Authorization", "Bearer "+c.config.apiKey)
	headers.Set("OpenAI-Beta", "realtime=v1")

	dialer := websocket.Dialer{}
	conn, resp, err := dialer.DialContext(ctx, url, headers)
	if err != nil {
		if resp != nil {
			return nil, &Error{
				Code:       "connection_failed",
				Message:    fmt.Sprintf("failed to connect: %v", err),
				HTTPStatus: resp.StatusCode,
			}
		}
		return nil, fmt.Errorf("realtime: dial websocket: %w", err)
	}

	s := &WebSocketSession{
		conn:    conn,
		onEvent: h.OnEvent,
		onClose: h.OnClose,
	}

	if h.OnOpen != nil {
		h.OnOpen()
	}
	go s.readLoop()

	return s, nil
}

// Open reports whether the session can still send.
func (s *WebSocketSession) Open() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.closed
}

// Send marshals and sends a client event. As with the WebRTC event
// channel, sending on a closed session is a logged no-op.
func (s *WebSocketSession) Send(event map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		slog.Debug("websocket session closed, dropping send")
		return nil
	}
	slog.Debug("sending event", "type", event["type"])
	return s.conn.WriteJSON(event)
}

// Close closes the session. Safe to call repeatedly.
func (s *WebSocketSession) Close() error {
	var err error
	s.closeOnce.Do(func() {
		s.mu.Lock()
		s.closed = true
		s.mu.Unlock()
		err = s.conn.Close()
	})
	return err
}

func (s *WebSocketSession) readLoop() {
	defer func() {
		s.mu.Lock()
		wasClosed := s.closed
		s.closed = true
		cb := s.onClose
		s.mu.Unlock()
		if !wasClosed && cb != nil {
			cb()
		}
	}()

	for {
		_, frame, err := s.conn.ReadMessage()
		if err != nil {
			s.mu.Lock()
			closed := s.closed
			s.mu.Unlock()
			if !closed {
				slog.Debug("websocket read ended", "error", err)
			}
			return
		}

		var event ServerEvent
		if err := json.Unmarshal(frame, &event); err != nil {
			slog.Debug("dropping malformed frame", "len", len(frame), "error", err)
			continue
		}
		event.Raw = frame

		s.mu.Lock()
		cb := s.onEvent
		s.mu.Unlock()
		if cb != nil {
			cb(&event)
		}
	}
}
