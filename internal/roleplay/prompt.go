package roleplay

import (
	"fmt"
	"sort"
	"strings"
)

const systemPrompt = `Eres un supervisor clínico experto en formación de psicoterapeutas.
Evalúas transcripciones de role-play entre un terapeuta en formación y un paciente simulado.
Respondes ÚNICAMENTE con un objeto JSON válido, sin texto adicional ni bloques de código.`

// SystemPrompt is the fixed system instruction for analysis calls
func SystemPrompt() string {
	return systemPrompt
}

// BuildPrompt renders the user prompt for a role-play analysis. The output
// depends only on cfg: tools and data fields are emitted in sorted key order.
func BuildPrompt(cfg Config) string {
	sections := cfg.SectionKeys()
	tools := cfg.EnabledTools()

	var sb strings.Builder
	sb.WriteString("Analiza el siguiente ejercicio de role-play clínico y devuelve SOLO JSON con exactamente esta estructura:\n")
	sb.WriteString(schemaSkeleton(sections, tools))

	sb.WriteString("\n\nEnfoque terapéutico: ")
	if approach := strings.TrimSpace(cfg.Approach); approach != "" {
		sb.WriteString(approach)
	} else {
		sb.WriteString("no especificado")
	}

	sb.WriteString("\n\nDimensiones a evaluar:\n")
	for _, key := range sections {
		writeLabelLine(&sb, key, SectionLabel(key))
	}

	if len(tools) > 0 {
		sb.WriteString("\nHerramientas a evaluar:\n")
		for _, key := range tools {
			writeLabelLine(&sb, key, ToolLabel(key))
		}
	}

	sb.WriteString("\nMaterial del ejercicio:\n")
	writeData(&sb, cfg.Data, cfg.fieldLimit())

	sb.WriteString(rules)
	return sb.String()
}

const rules = `
Reglas:
1. Todos los puntajes ("score") son enteros entre 0 y 100.
2. Cada sección y herramienta incluye entre 3 y 6 métricas y entre 3 y 6 recomendaciones concretas.
3. Las evidencias ("evidence") citan textualmente la transcripción. No inventes citas: si no hay evidencia, deja la lista vacía.
4. Si los turnos no indican quién habla, infiere el rol por el lenguaje: el terapeuta pregunta, refleja, valida y propone; el paciente relata síntomas, emociones y experiencias personales.
5. "generalScore" resume el desempeño global y "general.summary" lo explica en 2 a 4 frases.
6. Usa exactamente las claves indicadas en la estructura, sin agregar ni quitar secciones.
`

func writeLabelLine(sb *strings.Builder, key string, l Label) {
	fmt.Fprintf(sb, "- %s (%s)", l.Label, key)
	if l.Description != "" {
		fmt.Fprintf(sb, ": %s", l.Description)
	}
	sb.WriteString("\n")
}

func writeData(sb *strings.Builder, data map[string]any, limit int) {
	if len(data) == 0 {
		sb.WriteString("(sin material adicional)\n")
		return
	}
	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(sb, "\n### %s (%s)\n%s\n", DataLabel(k), k, ClampAny(data[k], limit))
	}
}

const (
	sectionShape = `{"score": 0, "metrics": [{"key": "clave", "label": "nombre", "score": 0}], "recommendations": ["..."], "evidence": [{"quote": "cita textual", "technique": "técnica", "why": "por qué"}]}`
	toolShape    = `{"score": 0, "metrics": [{"key": "clave", "label": "nombre", "score": 0}], "recommendations": ["..."]}`
)

func schemaSkeleton(sections, tools []string) string {
	var sb strings.Builder
	sb.WriteString("{\n")
	sb.WriteString(`  "generalScore": 0,` + "\n")
	sb.WriteString(`  "general": {"score": 0, "summary": "..."},` + "\n")
	sb.WriteString(`  "sections": {`)
	writeShapes(&sb, sections, sectionShape)
	sb.WriteString("},\n")
	sb.WriteString(`  "tools": {`)
	writeShapes(&sb, tools, toolShape)
	sb.WriteString("},\n")
	sb.WriteString(`  "enfoque": "..."` + "\n")
	sb.WriteString("}")
	return sb.String()
}

func writeShapes(sb *strings.Builder, keys []string, shape string) {
	if len(keys) == 0 {
		return
	}
	for i, k := range keys {
		if i > 0 {
			sb.WriteString(",")
		}
		fmt.Fprintf(sb, "\n    %q: %s", k, shape)
	}
	sb.WriteString("\n  ")
}
