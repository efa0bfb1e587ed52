package diarize

import (
	"encoding/json"
	"errors"
	"regexp"
	"strings"

	"rolecoach/internal/model"
)

// ErrNoTurns means a model response held no recoverable turn records.
// It is recoverable: callers skip the chunk and continue.
var ErrNoTurns = errors.New("no turns in model response")

// turnPattern matches one flat {"hablante": "...", "texto": "..."} object,
// keys in either order, wherever it appears in the text.
var turnPattern = regexp.MustCompile(
	`\{\s*"(?:hablante|texto)"\s*:\s*"(?:[^"\\]|\\.)*"\s*,\s*"(?:hablante|texto)"\s*:\s*"(?:[^"\\]|\\.)*"\s*\}`,
)

type rawTurn struct {
	Hablante string `json:"hablante"`
	Texto    string `json:"texto"`
}

// ExtractTurns salvages well-formed turn objects from a response that is
// supposed to be a JSON array but may be wrapped in prose, fenced or truncated.
// A broken match is skipped without affecting its neighbours.
func ExtractTurns(raw string) ([]model.DiarizedTurn, error) {
	matches := turnPattern.FindAllString(raw, -1)
	if len(matches) == 0 {
		return []model.DiarizedTurn{}, ErrNoTurns
	}

	var records []rawTurn
	if err := json.Unmarshal([]byte("["+strings.Join(matches, ",")+"]"), &records); err != nil {
		records = records[:0]
		for _, m := range matches {
			var rt rawTurn
			if err := json.Unmarshal([]byte(m), &rt); err != nil {
				continue
			}
			records = append(records, rt)
		}
	}

	turns := make([]model.DiarizedTurn, 0, len(records))
	for _, rt := range records {
		speaker, ok := ParseSpeaker(rt.Hablante)
		text := strings.TrimSpace(rt.Texto)
		if !ok || text == "" {
			continue
		}
		turns = append(turns, model.DiarizedTurn{Speaker: speaker, Text: text})
	}
	if len(turns) == 0 {
		return turns, ErrNoTurns
	}
	return turns, nil
}

// ParseSpeaker maps the model's speaker label onto a known role
func ParseSpeaker(label string) (model.Speaker, bool) {
	switch strings.ToLower(strings.TrimSpace(label)) {
	case "paciente", "patient", "consultante", "cliente":
		return model.SpeakerPatient, true
	case "terapeuta", "therapist", "psicólogo", "psicologo", "psicóloga", "psicologa":
		return model.SpeakerTherapist, true
	default:
		return "", false
	}
}
