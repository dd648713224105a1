package realtime

import "github.com/google/uuid"

// Client event types (sent from client to server).
const (
	EventTypeSessionUpdate = "session.update"

	EventTypeInputAudioBufferAppend = "input_audio_buffer.append"
	EventTypeInputAudioBufferCommit = "input_audio_buffer.commit"
	EventTypeInputAudioBufferClear  = "input_audio_buffer.clear"

	EventTypeConversationItemCreate = "conversation.item.create"

	EventTypeResponseCreate = "response.create"
	EventTypeResponseCancel = "response.cancel"
)

// Server event types (sent from server to client). Only the types the
// bridge consumes are named here; unknown types are passed through and
// ignored by consumers, never rejected.
const (
	EventTypeError = "error"

	EventTypeSessionCreated = "session.created"
	EventTypeSessionUpdated = "session.updated"

	EventTypeInputAudioTranscriptionCompleted = "conversation.item.input_audio_transcription.completed"
	EventTypeInputAudioTranscriptionFailed    = "conversation.item.input_audio_transcription.failed"

	EventTypeInputAudioBufferCommitted     = "input_audio_buffer.committed"
	EventTypeInputAudioBufferSpeechStarted = "input_audio_buffer.speech_started"
	EventTypeInputAudioBufferSpeechStopped = "input_audio_buffer.speech_stopped"

	EventTypeResponseCreated             = "response.created"
	EventTypeResponseDone                = "response.done"
	EventTypeResponseTextDelta           = "response.text.delta"
	EventTypeResponseTextDone            = "response.text.done"
	EventTypeResponseAudioTranscriptDone = "response.audio_transcript.done"
)

// Response status values carried by response.done.
const (
	ResponseStatusCompleted  = "completed"
	ResponseStatusCancelled  = "cancelled"
	ResponseStatusIncomplete = "incomplete"
	ResponseStatusFailed     = "failed"
)

// ServerEvent is a server event received on the event channel. The schema
// is flattened: each event type populates only the fields it carries.
type ServerEvent struct {
	Type    string `json:"type"`
	EventID string `json:"event_id,omitzero"`

	// Session is present on session.created / session.updated.
	Session *SessionResource `json:"session,omitzero"`

	// Item is present on conversation.item.* events.
	Item *ConversationItem `json:"item,omitzero"`

	// ItemID identifies the item for buffer and transcription events.
	ItemID string `json:"item_id,omitzero"`

	// AudioStartMs / AudioEndMs bracket detected speech
	// (speech_started / speech_stopped).
	AudioStartMs int `json:"audio_start_ms,omitzero"`
	AudioEndMs   int `json:"audio_end_ms,omitzero"`

	// Transcript carries completed transcription text, both for user
	// input and for the model's spoken output.
	Transcript   string `json:"transcript,omitzero"`
	ContentIndex int    `json:"content_index,omitzero"`

	// Text carries the final text of a text-only response
	// (response.text.done).
	Text string `json:"text,omitzero"`

	// Err is present on error events and transcription failures.
	Err *EventError `json:"error,omitzero"`

	// Response is present on response.* events.
	Response   *ResponseResource `json:"response,omitzero"`
	ResponseID string            `json:"response_id,omitzero"`

	// Delta carries incremental text for *.delta events.
	Delta string `json:"delta,omitzero"`

	// Raw is the original JSON frame.
	Raw []byte `json:"-"`
}

// EventError is the error payload of an error event.
type EventError struct {
	Type    string `json:"type,omitzero"`
	Code    string `json:"code,omitzero"`
	Message string `json:"message,omitzero"`
	Param   string `json:"param,omitzero"`
	EventID string `json:"event_id,omitzero"`
}

// ToError converts the event payload to an *Error.
func (e *EventError) ToError() *Error {
	return &Error{
		Type:    e.Type,
		Code:    e.Code,
		Message: e.Message,
		Param:   e.Param,
		EventID: e.EventID,
	}
}

// newEventID generates a client event ID.
func newEventID() string {
	return "evt_" + uuid.New().String()[:12]
}

// SessionUpdateEvent builds a session.update client event.
func SessionUpdateEvent(config *SessionConfig) map[string]any {
	return map[string]any{
		"event_id": newEventID(),
		"type":     EventTypeSessionUpdate,
		"session":  config,
	}
}

// CommitEvent builds an input_audio_buffer.commit client event, signalling
// that the input audio buffer is complete and ready for processing.
func CommitEvent() map[string]any {
	return map[string]any{
		"event_id": newEventID(),
		"type":     EventTypeInputAudioBufferCommit,
	}
}

// ClearInputEvent builds an input_audio_buffer.clear client event.
func ClearInputEvent() map[string]any {
	return map[string]any{
		"event_id": newEventID(),
		"type":     EventTypeInputAudioBufferClear,
	}
}

// ResponseCreateEvent builds a response.create client event.
func ResponseCreateEvent() map[string]any {
	return map[string]any{
		"event_id": newEventID(),
		"type":     EventTypeResponseCreate,
	}
}

// ResponseCancelEvent builds a response.cancel client event.
func ResponseCancelEvent() map[string]any {
	return map[string]any{
		"event_id": newEventID(),
		"type":     EventTypeResponseCancel,
	}
}

// UserTextEvent builds a conversation.item.create client event carrying a
// user text message.
func UserTextEvent(text string) map[string]any {
	return map[string]any{
		"event_id": newEventID(),
		"type":     EventTypeConversationItemCreate,
		"item": map[string]any{
			"type": "message",
			"role": "user",
			"content": []map[string]any{
				{"type": "input_text", "text": text},
			},
		},
	}
}

// AppendAudioEvent builds an input_audio_buffer.append client event with
// base64-encoded audio. Only the WebSocket transport needs this; WebRTC
// sessions stream audio on the media track instead.
func AppendAudioEvent(audioBase64 string) map[string]any {
	return map[string]any{
		"event_id": newEventID(),
		"type":     EventTypeInputAudioBufferAppend,
		"audio":    audioBase64,
	}
}
