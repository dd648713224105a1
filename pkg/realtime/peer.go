package realtime

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/pion/webrtc/v3"

	"github.com/voxbridge/voxbridge/pkg/media"
)

// PeerState is the lifecycle state of the peer session.
type PeerState int

const (
	PeerNew PeerState = iota
	PeerConnecting
	PeerConnected
	PeerClosed
	PeerFailed
)

// String returns the string representation of the state.
func (s PeerState) String() string {
	switch s {
	case PeerNew:
		return "new"
	case PeerConnecting:
		return "connecting"
	case PeerConnected:
		return "connected"
	case PeerClosed:
		return "closed"
	case PeerFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// DialOptions configures one WebRTC connection attempt.
type DialOptions struct {
	// Model is the realtime model to negotiate against. The negotiation
	// is per-model: changing models requires a fresh dial.
	Model string

	// Credential is the ephemeral bearer credential for signaling. When
	// empty, a credential is minted with the client's API key first.
	Credential string

	// Voice is used only when minting a credential.
	Voice string

	// Stream is the local audio stream. Its tracks are attached before
	// the offer is generated; tracks added later are not renegotiated.
	// May be nil for a receive-only session.
	Stream *media.Stream

	// OnRemoteTrack receives the first remote audio track, for playback.
	OnRemoteTrack func(*webrtc.TrackRemote)

	// OnStateChange observes peer connection state transitions. This is
	// for logging and diagnostics only; session-level status is driven
	// by the event channel, not by peer connection state.
	OnStateChange func(PeerState)

	// Channel handlers, wired before negotiation so no event is missed.
	OnChannelOpen  func()
	OnEvent        func(*ServerEvent)
	OnChannelClose func()
}

// PeerSession owns one peer connection, its event channel, and the local
// media stream for the lifetime of one realtime session.
type PeerSession struct {
	pc      *webrtc.PeerConnection
	channel *EventChannel
	stream  *media.Stream

	mu          sync.Mutex
	state       PeerState
	remoteTrack *webrtc.TrackRemote
	closeOnce   sync.Once
}

// DialWebRTC establishes a WebRTC realtime session: peer connection, local
// track attachment, event channel creation, offer/answer signaling. The
// returned session is live but its event channel may still be opening; the
// OnChannelOpen callback signals readiness.
//
// On any error the partially built connection is torn down; the caller
// keeps ownership of opts.Stream in that case.
func (c *Client) DialWebRTC(ctx context.Context, opts *DialOptions) (*PeerSession, error) {
	if opts == nil {
		opts = &DialOptions{}
	}
	model := opts.Model
	if model == "" {
		model = ModelGPT4oRealtimePreview
	}

	credential := opts.Credential
	if credential == "" {
		cred, err := c.MintCredential(ctx, model, opts.Voice)
		if err != nil {
			return nil, fmt.Errorf("mint credential: %w", err)
		}
		credential = cred.Value
	}

	pc, err := webrtc.NewPeerConnection(webrtc.Configuration{ICEServers: c.config.iceServers})
	if err != nil {
		return nil, fmt.Errorf("create peer connection: %w", err)
	}

	session := &PeerSession{
		pc:     pc,
		stream: opts.Stream,
		state:  PeerNew,
	}

	pc.OnTrack(func(track *webrtc.TrackRemote, _ *webrtc.RTPReceiver) {
		slog.Debug("received remote track", "kind", track.Kind(), "codec", track.Codec().MimeType)
		if track.Kind() != webrtc.RTPCodecTypeAudio {
			return
		}
		session.mu.Lock()
		first := session.remoteTrack == nil
		if first {
			session.remoteTrack = track
		}
		session.mu.Unlock()
		if first && opts.OnRemoteTrack != nil {
			opts.OnRemoteTrack(track)
		}
	})

	pc.OnConnectionStateChange(func(state webrtc.PeerConnectionState) {
		ps := mapPeerState(state)
		slog.Debug("peer connection state", "state", state.String())
		session.mu.Lock()
		if session.state != PeerClosed {
			session.state = ps
		}
		session.mu.Unlock()
		if opts.OnStateChange != nil {
			opts.OnStateChange(ps)
		}
	})

	// Local tracks must be attached before the offer is generated: this
	// design performs no renegotiation.
	if opts.Stream != nil {
		for _, track := range opts.Stream.Tracks() {
			if _, err := pc.AddTrack(track.Local()); err != nil {
				pc.Close()
				return nil, fmt.Errorf("add local track: %w", err)
			}
		}
	} else {
		_, err = pc.AddTransceiverFromKind(webrtc.RTPCodecTypeAudio, webrtc.RTPTransceiverInit{
			Direction: webrtc.RTPTransceiverDirectionRecvonly,
		})
		if err != nil {
			pc.Close()
			return nil, fmt.Errorf("add audio transceiver: %w", err)
		}
	}

	// The event channel is part of the same negotiation; create it before
	// the offer so it needs no separate handshake.
	dc, err := pc.CreateDataChannel("oai-events", nil)
	if err != nil {
		pc.Close()
		return nil, fmt.Errorf("create data channel: %w", err)
	}
	session.channel = newEventChannel(dc, ChannelHandlers{
		OnOpen:  opts.OnChannelOpen,
		OnEvent: opts.OnEvent,
		OnClose: opts.OnChannelClose,
	})

	offer, err := pc.CreateOffer(nil)
	if err != nil {
		pc.Close()
		return nil, fmt.Errorf("create offer: %w", err)
	}
	if err := pc.SetLocalDescription(offer); err != nil {
		pc.Close()
		return nil, fmt.Errorf("set local description: %w", err)
	}

	select {
	case <-webrtc.GatheringCompletePromise(pc):
	case <-ctx.Done():
		pc.Close()
		return nil, ctx.Err()
	}

	answer, err := c.Exchange(ctx, pc.LocalDescription().SDP, credential, model)
	if err != nil {
		pc.Close()
		return nil, err
	}

	err = pc.SetRemoteDescription(webrtc.SessionDescription{
		Type: webrtc.SDPTypeAnswer,
		SDP:  answer,
	})
	if err != nil {
		pc.Close()
		return nil, fmt.Errorf("set remote description: %w", err)
	}

	return session, nil
}

// Channel returns the session's event channel.
func (s *PeerSession) Channel() *EventChannel {
	return s.channel
}

// State returns the current peer state.
func (s *PeerSession) State() PeerState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// RemoteTrack returns the first remote audio track, or nil if none has
// arrived yet.
func (s *PeerSession) RemoteTrack() *webrtc.TrackRemote {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.remoteTrack
}

// Close tears the session down: event channel, peer connection, and the
// local media stream. Safe to call multiple times and from any state.
func (s *PeerSession) Close() error {
	var err error
	s.closeOnce.Do(func() {
		s.mu.Lock()
		s.state = PeerClosed
		s.mu.Unlock()

		if s.channel != nil {
			s.channel.Close()
		}
		if s.pc != nil {
			err = s.pc.Close()
		}
		if s.stream != nil {
			s.stream.Release()
		}
	})
	return err
}

func mapPeerState(state webrtc.PeerConnectionState) PeerState {
	switch state {
	case webrtc.PeerConnectionStateNew:
		return PeerNew
	case webrtc.PeerConnectionStateConnecting:
		return PeerConnecting
	case webrtc.PeerConnectionStateConnected:
		return PeerConnected
	case webrtc.PeerConnectionStateClosed:
		return PeerClosed
	default:
		return PeerFailed
	}
}
