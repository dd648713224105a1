package bridge

import (
	"context"
	"fmt"

	"github.com/pion/webrtc/v3"

	"github.com/voxbridge/voxbridge/pkg/media"
	"github.com/voxbridge/voxbridge/pkg/realtime"
)

// WebRTCDialer builds live sessions out of a realtime client and a media
// provider. Media is acquired before any network activity: an acquisition
// failure (denied permission, missing device) must leave no peer
// connection or event channel behind.
type WebRTCDialer struct {
	Client   *realtime.Client
	Provider media.Provider
	Source   media.Source

	// OnRemoteTrack receives the remote audio track for playback. May be
	// nil when the caller does not render audio.
	OnRemoteTrack func(*webrtc.TrackRemote)
}

// Dial implements Dialer.
func (d *WebRTCDialer) Dial(ctx context.Context, req DialRequest, h DialHandlers) (Link, Gate, error) {
	stream, err := media.Acquire(d.Provider, d.Source)
	if err != nil {
		return nil, nil, fmt.Errorf("acquire media: %w", err)
	}

	sess, err := d.Client.DialWebRTC(ctx, &realtime.DialOptions{
		Model:          req.Model,
		Credential:     req.Credential,
		Voice:          req.Voice,
		Stream:         stream,
		OnRemoteTrack:  d.OnRemoteTrack,
		OnChannelOpen:  h.OnChannelOpen,
		OnEvent:        h.OnEvent,
		OnChannelClose: h.OnChannelClosed,
	})
	if err != nil {
		stream.Release()
		return nil, nil, err
	}

	return &peerLink{sess: sess}, stream, nil
}

// peerLink adapts a PeerSession to the controller's Link. Closing the
// link closes the whole session, released media included.
type peerLink struct {
	sess *realtime.PeerSession
}

func (l *peerLink) Send(event map[string]any) error {
	return l.sess.Channel().Send(event)
}

func (l *peerLink) Open() bool {
	return l.sess.Channel().State() == realtime.ChannelOpen
}

func (l *peerLink) Close() error {
	return l.sess.Close()
}

// WebSocketDialer builds headless sessions over the WebSocket transport.
// There is no local media path: the microphone gate is a no-op and turns
// are text only. The WebSocket session is open as soon as the dial
// returns, so the controller sees the channel-open callback during Dial.
type WebSocketDialer struct {
	Client *realtime.Client
}

// Dial implements Dialer.
func (d *WebSocketDialer) Dial(ctx context.Context, req DialRequest, h DialHandlers) (Link, Gate, error) {
	sess, err := d.Client.DialWebSocket(ctx, req.Model, realtime.ChannelHandlers{
		OnOpen:  h.OnChannelOpen,
		OnEvent: h.OnEvent,
		OnClose: h.OnChannelClosed,
	})
	if err != nil {
		return nil, nil, err
	}
	return &wsLink{sess: sess}, noGate{}, nil
}

type wsLink struct {
	sess *realtime.WebSocketSession
}

func (l *wsLink) Send(event map[string]any) error {
	return l.sess.Send(event)
}

func (l *wsLink) Open() bool {
	return l.sess.Open()
}

func (l *wsLink) Close() error {
	return l.sess.Close()
}

// noGate ignores gate changes; a WebSocket session has no local tracks.
type noGate struct{}

func (noGate) SetEnabled(bool) {}
