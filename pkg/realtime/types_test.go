package realtime

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestSessionConfigMarshalTurnDetection(t *testing.T) {
	tests := []struct {
		name string
		cfg  SessionConfig
		want string
	}{
		{
			name: "server vad marshals as object",
			cfg: SessionConfig{
				TurnDetection: &TurnDetection{Type: TurnDetectionServerVAD},
			},
			want: `{"type":"server_vad"}`,
		},
		{
			name: "disabled marshals as explicit null",
			cfg: SessionConfig{
				TurnDetectionDisabled: true,
			},
			want: "null",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw, err := json.Marshal(tt.cfg)
			if err != nil {
				t.Fatal(err)
			}
			var m map[string]json.RawMessage
			if err := json.Unmarshal(raw, &m); err != nil {
				t.Fatal(err)
			}
			td, ok := m["turn_detection"]
			if !ok {
				t.Fatalf("turn_detection absent in %s", raw)
			}
			if string(td) != tt.want {
				t.Fatalf("turn_detection = %s, want %s", td, tt.want)
			}
		})
	}
}

func TestSessionConfigDisabledKeepsOtherFields(t *testing.T) {
	cfg := SessionConfig{
		Modalities:            []string{ModalityText, ModalityAudio},
		Instructions:          "Be helpful.",
		Voice:                 DefaultVoice,
		TurnDetectionDisabled: true,
		InputAudioTranscription: &TranscriptionConfig{
			Model:    TranscriptionModelWhisper1,
			Language: "en",
		},
	}
	raw, err := json.Marshal(cfg)
	if err != nil {
		t.Fatal(err)
	}
	for _, key := range []string{"modalities", "instructions", "voice", "input_audio_transcription", "turn_detection"} {
		if !strings.Contains(string(raw), `"`+key+`"`) {
			t.Errorf("marshalled config missing %q: %s", key, raw)
		}
	}
}

func TestServerEventParsing(t *testing.T) {
	tests := []struct {
		name  string
		frame string
		check func(t *testing.T, ev *ServerEvent)
	}{
		{
			name:  "transcription completed",
			frame: `{"type":"conversation.item.input_audio_transcription.completed","item_id":"item_1","transcript":"hello world"}`,
			check: func(t *testing.T, ev *ServerEvent) {
				if ev.Transcript != "hello world" || ev.ItemID != "item_1" {
					t.Fatalf("event = %+v", ev)
				}
			},
		},
		{
			name:  "speech started",
			frame: `{"type":"input_audio_buffer.speech_started","audio_start_ms":1200}`,
			check: func(t *testing.T, ev *ServerEvent) {
				if ev.AudioStartMs != 1200 {
					t.Fatalf("audio_start_ms = %d", ev.AudioStartMs)
				}
			},
		},
		{
			name:  "text done",
			frame: `{"type":"response.text.done","text":"final text"}`,
			check: func(t *testing.T, ev *ServerEvent) {
				if ev.Text != "final text" {
					t.Fatalf("text = %q", ev.Text)
				}
			},
		},
		{
			name:  "error event",
			frame: `{"type":"error","error":{"type":"invalid_request_error","code":"invalid_value","message":"nope"}}`,
			check: func(t *testing.T, ev *ServerEvent) {
				if ev.Err == nil || ev.Err.Code != "invalid_value" {
					t.Fatalf("err = %+v", ev.Err)
				}
				if got := ev.Err.ToError().Error(); !strings.Contains(got, "invalid_value") {
					t.Fatalf("error string = %q", got)
				}
			},
		},
		{
			name:  "failed response",
			frame: `{"type":"response.done","response":{"status":"failed","status_details":{"error":{"message":"server overloaded"}}}}`,
			check: func(t *testing.T, ev *ServerEvent) {
				if got := ev.Response.FailureDetail(); got != "server overloaded" {
					t.Fatalf("failure detail = %q", got)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var ev ServerEvent
			if err := json.Unmarshal([]byte(tt.frame), &ev); err != nil {
				t.Fatal(err)
			}
			tt.check(t, &ev)
		})
	}
}

func TestFailureDetail(t *testing.T) {
	tests := []struct {
		name string
		resp *ResponseResource
		want string
	}{
		{name: "nil response", resp: nil, want: ""},
		{name: "completed", resp: &ResponseResource{Status: ResponseStatusCompleted}, want: ""},
		{name: "cancelled", resp: &ResponseResource{Status: ResponseStatusCancelled}, want: ""},
		{
			name: "failed with error message",
			resp: &ResponseResource{
				Status:        ResponseStatusFailed,
				StatusDetails: &StatusDetails{Error: &EventError{Message: "boom"}},
			},
			want: "boom",
		},
		{
			name: "failed with reason only",
			resp: &ResponseResource{
				Status:        ResponseStatusFailed,
				StatusDetails: &StatusDetails{Reason: "content_filter"},
			},
			want: "content_filter",
		},
		{
			name: "failed with no details",
			resp: &ResponseResource{Status: ResponseStatusFailed},
			want: "response failed",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.resp.FailureDetail(); got != tt.want {
				t.Fatalf("FailureDetail() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestClientEventBuilders(t *testing.T) {
	tests := []struct {
		name     string
		event    map[string]any
		wantType string
	}{
		{"commit", CommitEvent(), EventTypeInputAudioBufferCommit},
		{"clear", ClearInputEvent(), EventTypeInputAudioBufferClear},
		{"response create", ResponseCreateEvent(), EventTypeResponseCreate},
		{"response cancel", ResponseCancelEvent(), EventTypeResponseCancel},
		{"session update", SessionUpdateEvent(&SessionConfig{}), EventTypeSessionUpdate},
		{"user text", UserTextEvent("hi"), EventTypeConversationItemCreate},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.event["type"]; got != tt.wantType {
				t.Fatalf("type = %v, want %s", got, tt.wantType)
			}
			id, _ := tt.event["event_id"].(string)
			if !strings.HasPrefix(id, "evt_") {
				t.Fatalf("event_id = %q, want evt_ prefix", id)
			}
		})
	}
}

func TestUserTextEventContent(t *testing.T) {
	ev := UserTextEvent("hello")
	raw, err := json.Marshal(ev)
	if err != nil {
		t.Fatal(err)
	}
	var decoded struct {
		Item struct {
			Type    string `json:"type"`
			Role    string `json:"role"`
			Content []struct {
				Type string `json:"type"`
				Text string `json:"text"`
			} `json:"content"`
		} `json:"item"`
	}
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatal(err)
	}
	if decoded.Item.Type != "message" || decoded.Item.Role != "user" {
		t.Fatalf("item = %+v", decoded.Item)
	}
	if len(decoded.Item.Content) != 1 || decoded.Item.Content[0].Type != "input_text" || decoded.Item.Content[0].Text != "hello" {
		t.Fatalf("content = %+v", decoded.Item.Content)
	}
}
