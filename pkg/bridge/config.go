package bridge

import "github.com/voxbridge/voxbridge/pkg/realtime"

// Selections are the user-facing session settings. They persist across
// connections: changes made while disconnected are simply remembered and
// applied fresh on the next connect.
type Selections struct {
	Mode      Mode
	Language  string
	PersonaID string
	Model     string
	Voice     string

	// Instructions is the fallback system prompt when PersonaID does not
	// resolve against the persona set.
	Instructions string

	// Modalities defaults to text+audio when empty.
	Modalities []string
}

// Persona is a named conversational identity with per-language
// instructions.
type Persona struct {
	ID           string            `yaml:"id" json:"id"`
	Name         string            `yaml:"name" json:"name"`
	Instructions map[string]string `yaml:"instructions" json:"instructions"`
}

// PersonaSet maps persona IDs to personas.
type PersonaSet map[string]Persona

// Resolve returns the instructions for a persona in the given language,
// falling back to the persona's "default" entry.
func (ps PersonaSet) Resolve(id, language string) (string, bool) {
	p, ok := ps[id]
	if !ok {
		return "", false
	}
	if ins, ok := p.Instructions[language]; ok && ins != "" {
		return ins, true
	}
	if ins, ok := p.Instructions["default"]; ok && ins != "" {
		return ins, true
	}
	return "", false
}

// BuildSessionConfig derives the session descriptor from the current
// selections. It is a pure function: the descriptor is recomputed fresh
// every time it is sent and holds no state of its own.
//
// Invariant: turn detection is server VAD if and only if the mode is
// auto; manual mode always sends an explicit null so a previously enabled
// VAD cannot linger.
func BuildSessionConfig(sel Selections, personas PersonaSet) *realtime.SessionConfig {
	instructions := sel.Instructions
	if sel.PersonaID != "" {
		if resolved, ok := personas.Resolve(sel.PersonaID, sel.Language); ok {
			instructions = resolved
		}
	}

	modalities := sel.Modalities
	if len(modalities) == 0 {
		modalities = []string{realtime.ModalityText, realtime.ModalityAudio}
	}

	cfg := &realtime.SessionConfig{
		Modalities:   modalities,
		Instructions: instructions,
		Voice:        sel.Voice,
		InputAudioTranscription: &realtime.TranscriptionConfig{
			Model:    realtime.TranscriptionModelWhisper1,
			Language: sel.Language,
		},
	}

	if sel.Mode == ModeAuto {
		cfg.TurnDetection = &realtime.TurnDetection{Type: realtime.TurnDetectionServerVAD}
	} else {
		cfg.TurnDetectionDisabled = true
	}

	return cfg
}
