package bridge

import (
	"encoding/json"
	"testing"

	"github.com/voxbridge/voxbridge/pkg/realtime"
)

func TestBuildSessionConfigTurnDetection(t *testing.T) {
	tests := []struct {
		name     string
		mode     Mode
		wantVAD  bool
		wantNull bool
	}{
		{name: "auto enables server vad", mode: ModeAuto, wantVAD: true},
		{name: "manual sends explicit null", mode: ModeManual, wantNull: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := BuildSessionConfig(Selections{Mode: tt.mode}, nil)

			if tt.wantVAD {
				if cfg.TurnDetection == nil || cfg.TurnDetection.Type != realtime.TurnDetectionServerVAD {
					t.Fatalf("turn detection = %+v, want server_vad", cfg.TurnDetection)
				}
				if cfg.TurnDetectionDisabled {
					t.Fatal("auto mode must not set the disabled flag")
				}
			}
			if tt.wantNull {
				if cfg.TurnDetection != nil || !cfg.TurnDetectionDisabled {
					t.Fatalf("cfg = %+v, want explicit disable", cfg)
				}
			}

			raw, err := json.Marshal(cfg)
			if err != nil {
				t.Fatal(err)
			}
			var m map[string]json.RawMessage
			if err := json.Unmarshal(raw, &m); err != nil {
				t.Fatal(err)
			}
			td, present := m["turn_detection"]
			switch {
			case tt.wantVAD && (!present || string(td) == "null"):
				t.Fatalf("marshalled turn_detection = %q, want object", td)
			case tt.wantNull && (!present || string(td) != "null"):
				t.Fatalf("marshalled turn_detection = %q, want null", td)
			}
		})
	}
}

func TestBuildSessionConfigDefaults(t *testing.T) {
	cfg := BuildSessionConfig(Selections{Mode: ModeAuto, Language: "en"}, nil)

	if len(cfg.Modalities) != 2 {
		t.Fatalf("modalities = %v, want text+audio", cfg.Modalities)
	}
	if cfg.InputAudioTranscription == nil {
		t.Fatal("transcription config missing")
	}
	if cfg.InputAudioTranscription.Model != realtime.TranscriptionModelWhisper1 {
		t.Fatalf("transcription model = %q", cfg.InputAudioTranscription.Model)
	}
	if cfg.InputAudioTranscription.Language != "en" {
		t.Fatalf("transcription language = %q", cfg.InputAudioTranscription.Language)
	}
}

func TestBuildSessionConfigPersonaResolution(t *testing.T) {
	personas := PersonaSet{
		"guide": {ID: "guide", Instructions: map[string]string{
			"default": "You are a friendly guide.",
			"es":      "Eres un guía amable.",
		}},
	}

	tests := []struct {
		name string
		sel  Selections
		want string
	}{
		{
			name: "language-specific instructions win",
			sel:  Selections{PersonaID: "guide", Language: "es"},
			want: "Eres un guía amable.",
		},
		{
			name: "unlisted language falls back to default",
			sel:  Selections{PersonaID: "guide", Language: "ja"},
			want: "You are a friendly guide.",
		},
		{
			name: "unknown persona falls back to explicit instructions",
			sel:  Selections{PersonaID: "nobody", Instructions: "Be terse."},
			want: "Be terse.",
		},
		{
			name: "no persona uses explicit instructions",
			sel:  Selections{Instructions: "Be verbose."},
			want: "Be verbose.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := BuildSessionConfig(tt.sel, personas)
			if cfg.Instructions != tt.want {
				t.Fatalf("instructions = %q, want %q", cfg.Instructions, tt.want)
			}
		})
	}
}

func TestPersonaSetResolve(t *testing.T) {
	ps := PersonaSet{
		"empty": {ID: "empty", Instructions: map[string]string{}},
	}
	if _, ok := ps.Resolve("empty", "en"); ok {
		t.Fatal("persona with no instructions must not resolve")
	}
	if _, ok := ps.Resolve("missing", "en"); ok {
		t.Fatal("unknown persona must not resolve")
	}
}
