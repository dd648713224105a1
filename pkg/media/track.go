package media

import (
	"fmt"
	"log/slog"
	"math/rand/v2"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/pion/rtp"
	"github.com/pion/webrtc/v3"
)

const (
	trackSampleRate = 48000
	trackFrameMs    = 20
	// Samples per 20ms frame at 48kHz; the RTP timestamp advances by this
	// much per frame whether or not the frame was sent, so muted spans
	// appear as gaps rather than stretched audio.
	trackFrameSamples = trackSampleRate * trackFrameMs / 1000

	opusPayloadType = 111
)

// rtpWriter is the sink the pump writes to. *webrtc.TrackLocalStaticRTP
// satisfies it; tests substitute a recorder.
type rtpWriter interface {
	WriteRTP(*rtp.Packet) error
}

// Track pairs one capture with one outgoing WebRTC track. Its enabled
// flag is the per-track microphone gate.
type Track struct {
	capture Capture
	local   *webrtc.TrackLocalStaticRTP
	out     rtpWriter

	enabled   atomic.Bool
	ssrc      uint32
	seq       uint16
	timestamp uint32

	done chan struct{}
}

func newTrack(c Capture) (*Track, error) {
	local, err := webrtc.NewTrackLocalStaticRTP(
		webrtc.RTPCodecCapability{
			MimeType:  webrtc.MimeTypeOpus,
			ClockRate: trackSampleRate,
			Channels:  1,
		},
		"audio",
		"voxbridge-"+uuid.New().String()[:8],
	)
	if err != nil {
		return nil, fmt.Errorf("create local track: %w", err)
	}

	return &Track{
		capture: c,
		local:   local,
		out:     local,
		ssrc:    rand.Uint32(),
		done:    make(chan struct{}),
	}, nil
}

// Local returns the WebRTC track to attach to a peer connection. It must
// be attached before the offer is generated.
func (t *Track) Local() *webrtc.TrackLocalStaticRTP {
	return t.local
}

// Enabled reports the gate state of this track.
func (t *Track) Enabled() bool {
	return t.enabled.Load()
}

func (t *Track) setEnabled(enabled bool) {
	t.enabled.Store(enabled)
}

// start launches the pump goroutine. Frames are always read so the
// capture never backs up; they are only packetized and written while the
// track is enabled.
func (t *Track) start() {
	go t.pump()
}

func (t *Track) pump() {
	defer close(t.done)
	for {
		frame, err := t.capture.ReadFrame()
		if err != nil {
			slog.Debug("track pump ended", "error", err)
			return
		}

		t.timestamp += trackFrameSamples
		if !t.enabled.Load() {
			continue
		}

		t.seq++
		packet := &rtp.Packet{
			Header: rtp.Header{
				Version:        2,
				PayloadType:    opusPayloadType,
				SequenceNumber: t.seq,
				Timestamp:      t.timestamp,
				SSRC:           t.ssrc,
			},
			Payload: frame,
		}
		if err := t.out.WriteRTP(packet); err != nil {
			slog.Debug("track write failed", "error", err)
		}
	}
}

// stop closes the capture, which unblocks and ends the pump.
func (t *Track) stop() {
	t.enabled.Store(false)
	_ = t.capture.Close()
	<-t.done
}
