// Package media provides local audio acquisition for realtime sessions:
// capture sources, track-level enable gating, and the RTP pump that feeds
// captured Opus frames into a WebRTC peer connection.
//
// A Stream owns one or more tracks for the lifetime of one session. The
// enabled flag is the microphone gate: while disabled, captured frames are
// read and discarded, so the capture never stalls but nothing reaches the
// remote endpoint.
package media

import (
	"errors"
	"sync"
)

// Source identifies what to capture.
type Source int

const (
	// SourceMicrophone captures the default audio input device.
	SourceMicrophone Source = iota

	// SourceDisplayAudio captures system/display audio. Any video track
	// that comes with the capture is discarded immediately; it exists
	// only to obtain the paired audio track.
	SourceDisplayAudio
)

// String returns the string representation of the source.
func (s Source) String() string {
	switch s {
	case SourceMicrophone:
		return "microphone"
	case SourceDisplayAudio:
		return "display-audio"
	default:
		return "unknown"
	}
}

// Acquisition errors. Both are fatal to the connect attempt that
// triggered them; there is no retry at this layer.
var (
	ErrPermissionDenied  = errors.New("media: permission denied")
	ErrDeviceUnavailable = errors.New("media: device unavailable")
)

// TrackKind distinguishes audio from video captures.
type TrackKind int

const (
	KindAudio TrackKind = iota
	KindVideo
)

// Capture is a live producer of encoded audio frames (20ms Opus).
// ReadFrame blocks until a frame is available and returns io.EOF once the
// capture is closed. Close must be safe to call more than once.
type Capture interface {
	Kind() TrackKind
	ReadFrame() ([]byte, error)
	Close() error
}

// Provider opens captures for a source. Implementations report
// ErrPermissionDenied or ErrDeviceUnavailable as appropriate.
type Provider interface {
	Open(source Source) ([]Capture, error)
}

// Stream is the local media stream for one session: a set of audio tracks
// with a shared enable gate. It is exclusively owned by the session that
// acquired it; nothing else mutates track-enabled state.
type Stream struct {
	mu       sync.Mutex
	source   Source
	tracks   []*Track
	enabled  bool
	released bool
}

// Acquire opens the source and builds a stream around its audio captures.
// Video captures from a display-audio acquisition are closed immediately
// so no video stream leaks. Tracks start disabled; the turn-taking
// controller decides when the gate opens.
func Acquire(p Provider, source Source) (*Stream, error) {
	captures, err := p.Open(source)
	if err != nil {
		return nil, err
	}

	s := &Stream{source: source}
	for _, c := range captures {
		if c.Kind() != KindAudio {
			_ = c.Close()
			continue
		}
		t, err := newTrack(c)
		if err != nil {
			// No pump is running yet for any track; close captures
			// directly rather than going through Release.
			_ = c.Close()
			for _, prev := range s.tracks {
				_ = prev.capture.Close()
			}
			return nil, err
		}
		s.tracks = append(s.tracks, t)
	}
	if len(s.tracks) == 0 {
		return nil, ErrDeviceUnavailable
	}

	for _, t := range s.tracks {
		t.start()
	}
	return s, nil
}

// Source returns what this stream captures.
func (s *Stream) Source() Source {
	return s.source
}

// Tracks returns the stream's audio tracks.
func (s *Stream) Tracks() []*Track {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tracks
}

// SetEnabled toggles every audio track's enabled flag. The stream lock is
// held across all tracks so the gate never applies partially.
func (s *Stream) SetEnabled(enabled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.released {
		return
	}
	s.enabled = enabled
	for _, t := range s.tracks {
		t.setEnabled(enabled)
	}
}

// Enabled reports the gate state.
func (s *Stream) Enabled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.enabled
}

// Release stops all tracks and closes their captures. Idempotent and safe
// on an already-released stream.
func (s *Stream) Release() {
	s.mu.Lock()
	if s.released {
		s.mu.Unlock()
		return
	}
	s.released = true
	s.enabled = false
	tracks := s.tracks
	s.mu.Unlock()

	for _, t := range tracks {
		t.stop()
	}
}
