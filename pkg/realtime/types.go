package realtime

import "encoding/json"

// Default model identifiers.
const (
	ModelGPT4oRealtimePreview     = "gpt-4o-realtime-preview"
	ModelGPT4oMiniRealtimePreview = "gpt-4o-mini-realtime-preview"
)

// Output modalities.
const (
	ModalityText  = "text"
	ModalityAudio = "audio"
)

// Turn detection types.
const (
	// TurnDetectionServerVAD enables server-side voice activity detection.
	TurnDetectionServerVAD = "server_vad"
)

// Default voice for audio output.
const DefaultVoice = "alloy"

// TranscriptionModelWhisper1 transcribes input audio server-side.
const TranscriptionModelWhisper1 = "whisper-1"

// SessionConfig is the session descriptor sent on the event channel with
// session.update. It is rebuilt from current selections every time it is
// sent; it has no persistence of its own.
type SessionConfig struct {
	// Modalities are the output modalities, e.g. ["text","audio"].
	Modalities []string `json:"modalities,omitzero"`

	// Instructions is the system prompt (persona plus language guidance).
	Instructions string `json:"instructions,omitzero"`

	// Voice selects the audio output voice.
	Voice string `json:"voice,omitzero"`

	// InputAudioTranscription enables server-side transcription of the
	// user's audio, in the given language.
	InputAudioTranscription *TranscriptionConfig `json:"input_audio_transcription,omitzero"`

	// TurnDetection configures server VAD. Leave nil and set
	// TurnDetectionDisabled for manual (push-to-talk) mode.
	TurnDetection *TurnDetection `json:"turn_detection,omitzero"`

	// TurnDetectionDisabled emits an explicit "turn_detection": null.
	// The API treats an absent field as "keep current setting", so manual
	// mode must send the null, not omit the field.
	TurnDetectionDisabled bool `json:"-"`
}

// MarshalJSON emits "turn_detection": null when TurnDetectionDisabled is
// set. Omitting the field would leave a previously enabled VAD active.
func (s SessionConfig) MarshalJSON() ([]byte, error) {
	type alias SessionConfig
	if !s.TurnDetectionDisabled {
		return json.Marshal(alias(s))
	}

	m := map[string]any{"turn_detection": nil}
	if len(s.Modalities) > 0 {
		m["modalities"] = s.Modalities
	}
	if s.Instructions != "" {
		m["instructions"] = s.Instructions
	}
	if s.Voice != "" {
		m["voice"] = s.Voice
	}
	if s.InputAudioTranscription != nil {
		m["input_audio_transcription"] = s.InputAudioTranscription
	}
	return json.Marshal(m)
}

// TranscriptionConfig configures input audio transcription.
type TranscriptionConfig struct {
	// Model is the transcription model, usually whisper-1.
	Model string `json:"model,omitzero"`

	// Language is an ISO 639-1 code hint for the transcriber.
	Language string `json:"language,omitzero"`
}

// TurnDetection configures server-side voice activity detection.
type TurnDetection struct {
	// Type is the VAD mode, e.g. "server_vad".
	Type string `json:"type,omitzero"`

	// Threshold is the VAD sensitivity (0.0-1.0).
	Threshold float64 `json:"threshold,omitzero"`

	// PrefixPaddingMs is audio kept before detected speech start.
	PrefixPaddingMs int `json:"prefix_padding_ms,omitzero"`

	// SilenceDurationMs is the silence needed to end a turn.
	SilenceDurationMs int `json:"silence_duration_ms,omitzero"`
}

// SessionResource is the session state echoed by the server.
type SessionResource struct {
	ID            string         `json:"id,omitzero"`
	Object        string         `json:"object,omitzero"`
	Model         string         `json:"model,omitzero"`
	ExpiresAt     int64          `json:"expires_at,omitzero"`
	Modalities    []string       `json:"modalities,omitzero"`
	Instructions  string         `json:"instructions,omitzero"`
	Voice         string         `json:"voice,omitzero"`
	TurnDetection *TurnDetection `json:"turn_detection,omitzero"`
}

// ConversationItem is an item in the conversation.
type ConversationItem struct {
	ID      string        `json:"id,omitzero"`
	Object  string        `json:"object,omitzero"`
	Type    string        `json:"type,omitzero"`
	Status  string        `json:"status,omitzero"`
	Role    string        `json:"role,omitzero"`
	Content []ContentPart `json:"content,omitzero"`
}

// ContentPart is one part of an item's content.
type ContentPart struct {
	Type       string `json:"type,omitzero"`
	Text       string `json:"text,omitzero"`
	Audio      string `json:"audio,omitzero"`
	Transcript string `json:"transcript,omitzero"`
}

// ResponseResource describes a model response, carried by response.done.
type ResponseResource struct {
	ID            string             `json:"id,omitzero"`
	Object        string             `json:"object,omitzero"`
	Status        string             `json:"status,omitzero"`
	StatusDetails *StatusDetails     `json:"status_details,omitzero"`
	Output        []ConversationItem `json:"output,omitzero"`
}

// StatusDetails explains a non-completed response status.
type StatusDetails struct {
	Type   string      `json:"type,omitzero"`
	Reason string      `json:"reason,omitzero"`
	Error  *EventError `json:"error,omitzero"`
}

// FailureDetail extracts a human-readable failure reason from a response
// resource, for surfacing to the UI. Returns "" when the response did not
// fail.
func (r *ResponseResource) FailureDetail() string {
	if r == nil || r.Status != ResponseStatusFailed {
		return ""
	}
	if r.StatusDetails != nil {
		if r.StatusDetails.Error != nil && r.StatusDetails.Error.Message != "" {
			return r.StatusDetails.Error.Message
		}
		if r.StatusDetails.Reason != "" {
			return r.StatusDetails.Reason
		}
	}
	return "response failed"
}
