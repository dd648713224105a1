package media

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/pion/webrtc/v3/pkg/media/oggreader"
)

// PipeCapture is an in-memory capture fed by WriteFrame. Devices that push
// frames (and tests) use it as the bridge into a Stream.
type PipeCapture struct {
	kind   TrackKind
	frames chan []byte

	mu     sync.Mutex
	closed bool
}

// NewPipeCapture creates a pipe capture with a small frame buffer.
// Writes to a full buffer drop the frame rather than block the producer.
func NewPipeCapture(kind TrackKind) *PipeCapture {
	return &PipeCapture{
		kind:   kind,
		frames: make(chan []byte, 256),
	}
}

// Kind implements Capture.
func (p *PipeCapture) Kind() TrackKind { return p.kind }

// WriteFrame queues one encoded frame. Returns io.ErrClosedPipe after
// Close; drops silently when the buffer is full.
func (p *PipeCapture) WriteFrame(frame []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return io.ErrClosedPipe
	}
	select {
	case p.frames <- frame:
	default:
	}
	return nil
}

// ReadFrame implements Capture.
func (p *PipeCapture) ReadFrame() ([]byte, error) {
	frame, ok := <-p.frames
	if !ok {
		return nil, io.EOF
	}
	return frame, nil
}

// Close implements Capture. Safe to call more than once.
func (p *PipeCapture) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil
	}
	p.closed = true
	close(p.frames)
	return nil
}

// FileProvider serves Ogg Opus files as capture sources, standing in for
// real device capture in headless environments. Microphone and
// display-audio map to separate paths so both acquisition flows are
// exercisable.
type FileProvider struct {
	// MicrophonePath is the file served for SourceMicrophone.
	MicrophonePath string

	// DisplayAudioPath is the file served for SourceDisplayAudio.
	// Falls back to MicrophonePath when empty.
	DisplayAudioPath string
}

// Open implements Provider.
func (f *FileProvider) Open(source Source) ([]Capture, error) {
	path := f.MicrophonePath
	if source == SourceDisplayAudio && f.DisplayAudioPath != "" {
		path = f.DisplayAudioPath
	}
	if path == "" {
		return nil, ErrDeviceUnavailable
	}

	file, err := os.Open(path)
	if err != nil {
		switch {
		case os.IsPermission(err):
			return nil, ErrPermissionDenied
		case os.IsNotExist(err):
			return nil, ErrDeviceUnavailable
		default:
			return nil, fmt.Errorf("media: open %s: %w", path, err)
		}
	}

	ogg, _, err := oggreader.NewWith(file)
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("media: parse ogg %s: %w", path, err)
	}

	return []Capture{&fileCapture{file: file, ogg: ogg}}, nil
}

// fileCapture replays an Ogg Opus file at realtime pace, derived from the
// granule positions in the stream.
type fileCapture struct {
	file *os.File
	ogg  *oggreader.OggReader

	lastGranule uint64

	mu     sync.Mutex
	closed bool
}

func (f *fileCapture) Kind() TrackKind { return KindAudio }

func (f *fileCapture) ReadFrame() ([]byte, error) {
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return nil, io.EOF
	}
	f.mu.Unlock()

	page, header, err := f.ogg.ParseNextPage()
	if err != nil {
		return nil, io.EOF
	}

	samples := header.GranulePosition - f.lastGranule
	f.lastGranule = header.GranulePosition
	if samples > 0 {
		time.Sleep(time.Duration(samples) * time.Second / trackSampleRate)
	}
	return page, nil
}

func (f *fileCapture) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return nil
	}
	f.closed = true
	return f.file.Close()
}
