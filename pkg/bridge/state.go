package bridge

import "encoding/json"

// State is the turn-taking controller's lifecycle state. The connected
// sub-states encode both the turn-taking mode and, in manual mode, whether
// a push-to-talk press is live.
type State int

const (
	StateIdle State = iota
	StateConnecting
	StateConnectedAuto
	StateConnectedMuted
	StateConnectedRecording
	StateDisconnecting
	StateFailed
)

// String returns the string representation of the state.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateConnecting:
		return "connecting"
	case StateConnectedAuto:
		return "connected_auto"
	case StateConnectedMuted:
		return "connected_muted"
	case StateConnectedRecording:
		return "connected_recording"
	case StateDisconnecting:
		return "disconnecting"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Connected reports whether the session is established.
func (s State) Connected() bool {
	switch s {
	case StateConnectedAuto, StateConnectedMuted, StateConnectedRecording:
		return true
	default:
		return false
	}
}

// MarshalJSON implements json.Marshaler.
func (s State) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// UnmarshalJSON implements json.Unmarshaler.
func (s *State) UnmarshalJSON(b []byte) error {
	var name string
	if err := json.Unmarshal(b, &name); err != nil {
		return err
	}
	switch name {
	case "idle":
		*s = StateIdle
	case "connecting":
		*s = StateConnecting
	case "connected_auto":
		*s = StateConnectedAuto
	case "connected_muted":
		*s = StateConnectedMuted
	case "connected_recording":
		*s = StateConnectedRecording
	case "disconnecting":
		*s = StateDisconnecting
	case "failed":
		*s = StateFailed
	default:
		*s = StateIdle
	}
	return nil
}

// Mode is the turn-taking policy.
type Mode string

const (
	// ModeAuto leaves turn segmentation to the remote endpoint's voice
	// activity detection; the microphone stays open while connected.
	ModeAuto Mode = "auto"

	// ModeManual is push-to-talk: the microphone opens only between a
	// talk press and its release, and the client drives the
	// commit/response protocol explicitly.
	ModeManual Mode = "manual"
)

// Valid reports whether m is a known mode.
func (m Mode) Valid() bool {
	return m == ModeAuto || m == ModeManual
}
