package roleplay

import (
	"encoding/json"
	"hash/fnv"
	"strings"

	"rolecoach/internal/diarize"
)

// MockModel is recorded as meta.model for mock analyses
const MockModel = "mock"

// transcriptFields are the data keys searched for quotable material
var transcriptFields = []string{"transcript", "transcripcion", "transcripción"}

// MockResponse produces a deterministic raw response shaped like a real model
// answer, using the Spanish field names models commonly return. It goes
// through Normalize like any other response.
func MockResponse(cfg Config) string {
	quotes := mockQuotes(cfg.Data)

	sections := map[string]any{}
	for i, key := range cfg.SectionKeys() {
		label := SectionLabel(key).Label
		section := map[string]any{
			"puntaje": mockScore(key),
			"metricas": []any{
				map[string]any{"nombre": "Claridad", "puntaje": mockScore(key + ".claridad")},
				map[string]any{"nombre": "Pertinencia", "puntaje": mockScore(key + ".pertinencia")},
				map[string]any{"nombre": "Consistencia", "puntaje": mockScore(key + ".consistencia")},
			},
			"recomendaciones": []string{
				"Refuerza " + strings.ToLower(label) + " con intervenciones breves y explícitas.",
				"Verifica con el paciente que la intervención fue comprendida.",
				"Registra tras la sesión qué momentos funcionaron mejor.",
			},
		}
		if len(quotes) > 0 {
			section["evidencias"] = []any{map[string]any{
				"cita":          quotes[i%len(quotes)],
				"tecnica":       label,
				"justificacion": "Fragmento representativo de la dimensión evaluada.",
			}}
		}
		sections[key] = section
	}

	tools := map[string]any{}
	for _, key := range cfg.EnabledTools() {
		tools[key] = map[string]any{
			"puntaje": mockScore("tool." + key),
			"indicadores": map[string]any{
				"Completitud": mockScore(key + ".completitud"),
				"Coherencia":  mockScore(key + ".coherencia"),
				"Precisión":   mockScore(key + ".precision"),
			},
			"sugerencias": []string{
				"Completa los campos vacíos antes de cerrar el caso.",
				"Relaciona la herramienta con la hipótesis de trabajo.",
				"Usa lenguaje descriptivo en lugar de interpretativo.",
			},
		}
	}

	raw := map[string]any{
		"resumen":      "Evaluación simulada generada sin modelo de lenguaje.",
		"secciones":    sections,
		"herramientas": tools,
		"model":        MockModel,
	}
	if cfg.Approach != "" {
		raw["enfoque"] = cfg.Approach
	}

	b, err := json.Marshal(raw)
	if err != nil {
		return "{}"
	}
	return string(b)
}

// mockScore maps a key onto a stable score between 55 and 94.
func mockScore(key string) int {
	h := fnv.New32a()
	h.Write([]byte(key))
	return 55 + int(h.Sum32()%40)
}

func mockQuotes(data map[string]any) []string {
	for _, field := range transcriptFields {
		text, ok := data[field].(string)
		if !ok {
			continue
		}
		sentences := diarize.Sentences(text)
		if len(sentences) > 3 {
			sentences = sentences[:3]
		}
		return sentences
	}
	return nil
}
