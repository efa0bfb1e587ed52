// Package roleplay turns role-play exercises into model prompts and turns
// whatever the model answers into a stable AnalysisResult.
package roleplay

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"rolecoach/internal/model"
)

// ErrMalformedModelOutput is returned when no JSON object can be recovered
// from the model response. It is the only error Normalize returns.
var ErrMalformedModelOutput = errors.New("malformed model output")

// Accepted field names per logical field, in priority order. Dotted entries
// are nested paths.
var (
	generalScoreFields = []string{
		"generalScore", "general_score", "puntajeGeneral", "puntuacionGeneral",
		"overallScore", "score", "general.score", "general.puntaje",
	}
	summaryFields = []string{"general.summary", "general.resumen", "summary", "resumen", "general"}
	enfoqueFields = []string{"enfoque", "approach", "meta.enfoque"}
	modelFields   = []string{"model", "meta.model"}

	sectionContainers = []string{"sections", "secciones"}
	toolContainers    = []string{"tools", "herramientas"}

	scoreFields          = []string{"score", "puntaje", "puntuacion", "calificacion", "value"}
	blockLabelFields     = []string{"label", "etiqueta"}
	blockDescFields      = []string{"description", "descripcion"}
	metricsFields        = []string{"metrics", "metricas", "métricas", "indicadores"}
	metricLabelFields    = []string{"label", "nombre", "name", "key"}
	metricKeyFields      = []string{"key", "id", "clave"}
	metricIconFields     = []string{"icon", "icono"}
	recommendationFields = []string{"recommendations", "recomendaciones", "sugerencias", "suggestions"}
	recommendationText   = []string{"text", "texto", "recommendation", "recomendacion"}
	evidenceFields       = []string{"evidence", "evidencias", "evidencia", "citas"}
	quoteFields          = []string{"quote", "cita", "texto", "text"}
	techniqueFields      = []string{"technique", "tecnica", "técnica"}
	whyFields            = []string{"why", "porque", "justificacion", "razon"}
)

// Normalize converts a raw model response into a schema-complete analysis.
// raw may be text (strict JSON first, then best-effort object recovery), a
// map[string]any, or any value that marshals to a JSON object. Every
// configured section and enabled tool is present in the result.
func Normalize(raw any, cfg Config) (*model.AnalysisResult, error) {
	root, err := parseRaw(raw)
	if err != nil {
		return nil, err
	}

	sectionKeys := cfg.SectionKeys()
	toolKeys := cfg.EnabledTools()
	result := &model.AnalysisResult{
		Sections: make(map[string]*model.Section, len(sectionKeys)),
		Tools:    make(map[string]*model.Block, len(toolKeys)),
	}

	for _, key := range sectionKeys {
		v, found := findBlock(root, sectionContainers, key)
		result.Sections[key] = normalizeSection(v, found)
	}
	for _, key := range toolKeys {
		v, found := findBlock(root, toolContainers, key)
		block := normalizeBlock(v, found)
		result.Tools[key] = &block
	}

	score := 0
	if s := firstScore(root, generalScoreFields); s != nil {
		score = *s
	}
	if score == 0 {
		score = meanSectionScore(result.Sections, sectionKeys)
	}
	result.GeneralScore = score
	result.General = model.General{Score: score, Summary: firstString(root, summaryFields)}

	result.Meta = model.AnalysisMeta{
		Enfoque:   firstString(root, enfoqueFields),
		Model:     firstString(root, modelFields),
		CreatedAt: cfg.now(),
	}
	if result.Meta.Enfoque == "" {
		result.Meta.Enfoque = strings.TrimSpace(cfg.Approach)
	}
	if result.Meta.Model == "" {
		result.Meta.Model = cfg.Model
	}
	return result, nil
}

func parseRaw(raw any) (*object, error) {
	switch t := raw.(type) {
	case nil:
		return nil, fmt.Errorf("%w: empty response", ErrMalformedModelOutput)
	case string:
		return parseText(t)
	case []byte:
		return parseText(string(t))
	case json.RawMessage:
		return parseText(string(t))
	}

	tree, err := fromGo(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedModelOutput, err)
	}
	obj, ok := tree.(*object)
	if !ok {
		return nil, fmt.Errorf("%w: response is %T, not an object", ErrMalformedModelOutput, raw)
	}
	return obj, nil
}

func parseText(text string) (*object, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("%w: empty response", ErrMalformedModelOutput)
	}

	tree, err := decodeTree([]byte(text))
	if err == nil {
		if obj, ok := tree.(*object); ok {
			return obj, nil
		}
		return nil, fmt.Errorf("%w: top-level JSON value is not an object", ErrMalformedModelOutput)
	}

	for _, candidate := range objectCandidates(text) {
		if tree, cerr := decodeTree([]byte(candidate)); cerr == nil {
			if obj, ok := tree.(*object); ok {
				return obj, nil
			}
		}
	}
	return nil, fmt.Errorf("%w: %v", ErrMalformedModelOutput, err)
}

// objectCandidates lists substrings that may hold the intended object: the
// largest balanced top-level {...} first, then the first '{' to the last '}'.
func objectCandidates(text string) []string {
	var out []string
	if s, ok := largestBalancedObject(text); ok {
		out = append(out, s)
	}
	first, last := strings.Index(text, "{"), strings.LastIndex(text, "}")
	if first >= 0 && last > first {
		if greedy := text[first : last+1]; len(out) == 0 || out[0] != greedy {
			out = append(out, greedy)
		}
	}
	return out
}

// largestBalancedObject tracks brace depth, ignoring braces inside JSON
// strings, and returns the longest span that closes back to depth zero.
func largestBalancedObject(text string) (string, bool) {
	best := ""
	depth, start := 0, 0
	inString, escaped := false, false
	for i := 0; i < len(text); i++ {
		c := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			// quotes in surrounding prose are not JSON strings
			inString = depth > 0
		case '{':
			if depth == 0 {
				start = i
			}
			depth++
		case '}':
			if depth == 0 {
				continue
			}
			depth--
			if depth == 0 && i+1-start > len(best) {
				best = text[start : i+1]
			}
		}
	}
	return best, best != ""
}

// lookup resolves a possibly dotted path. Explicit nulls count as absent.
func lookup(obj *object, path string) (any, bool) {
	var cur any = obj
	for _, part := range strings.Split(path, ".") {
		o, ok := cur.(*object)
		if !ok {
			return nil, false
		}
		v, ok := o.get(part)
		if !ok {
			return nil, false
		}
		cur = v
	}
	return cur, cur != nil
}

func firstValue(obj *object, paths []string) (any, bool) {
	for _, p := range paths {
		if v, ok := lookup(obj, p); ok {
			return v, true
		}
	}
	return nil, false
}

// firstScore returns the first candidate that coerces to a score.
func firstScore(obj *object, paths []string) *int {
	for _, p := range paths {
		if v, ok := lookup(obj, p); ok {
			if s := coerceScore(v); s != nil {
				return s
			}
		}
	}
	return nil
}

// firstString returns the first candidate that renders as non-empty text.
func firstString(obj *object, paths []string) string {
	for _, p := range paths {
		if v, ok := lookup(obj, p); ok {
			if s, ok := scalarString(v); ok {
				return s
			}
		}
	}
	return ""
}

// findBlock looks for key inside each container object, then at top level.
func findBlock(root *object, containers []string, key string) (any, bool) {
	for _, c := range containers {
		cv, _ := root.get(c)
		if co, ok := cv.(*object); ok {
			if v, ok := co.get(key); ok && v != nil {
				return v, true
			}
		}
	}
	if v, ok := root.get(key); ok && v != nil {
		return v, true
	}
	return nil, false
}

// normalizeBlock builds a block from whatever was found under a key. A block
// the model left out entirely scores 0; a block given as a bare value is
// read as its score.
func normalizeBlock(v any, found bool) model.Block {
	block := *model.NewBlock()
	if !found {
		block.Score = model.IntPtr(0)
		return block
	}
	obj, ok := v.(*object)
	if !ok {
		block.Score = coerceScore(v)
		return block
	}
	block.Score = firstScore(obj, scoreFields)
	block.Label = firstString(obj, blockLabelFields)
	block.Description = firstString(obj, blockDescFields)
	if mv, ok := firstValue(obj, metricsFields); ok {
		block.Metrics = normalizeMetrics(mv)
	}
	if rv, ok := firstValue(obj, recommendationFields); ok {
		block.Recommendations = normalizeRecommendations(rv)
	}
	return block
}

func normalizeSection(v any, found bool) *model.Section {
	section := &model.Section{Block: normalizeBlock(v, found), Evidence: []model.Evidence{}}
	if obj, ok := v.(*object); ok {
		if ev, ok := firstValue(obj, evidenceFields); ok {
			section.Evidence = normalizeEvidence(ev)
		}
	}
	return section
}

// normalizeMetrics accepts a list of entries or a name->entry mapping. The
// mapping form keeps the order the keys appeared in.
func normalizeMetrics(v any) []model.Metric {
	out := []model.Metric{}
	switch t := v.(type) {
	case []any:
		for _, e := range t {
			if m, ok := metricFromEntry(e, ""); ok {
				out = append(out, m)
			}
		}
	case *object:
		for _, k := range t.keys {
			if m, ok := metricFromEntry(t.values[k], k); ok {
				out = append(out, m)
			}
		}
	}
	return out
}

func metricFromEntry(e any, name string) (model.Metric, bool) {
	name = strings.TrimSpace(name)
	var m model.Metric
	switch t := e.(type) {
	case *object:
		m.Label = firstString(t, metricLabelFields)
		if m.Label == "" {
			m.Label = name
		}
		m.Key = firstString(t, metricKeyFields)
		m.Score = firstScore(t, scoreFields)
		m.Icon = firstString(t, metricIconFields)
	case string:
		if name != "" {
			m.Label = name
			m.Score = coerceScore(t)
		} else {
			m.Label = strings.TrimSpace(t)
		}
	default:
		m.Label = name
		m.Score = coerceScore(t)
	}
	if m.Label == "" {
		return model.Metric{}, false
	}
	if m.Key == "" {
		m.Key = slug(m.Label)
	}
	return m, true
}

func normalizeRecommendations(v any) []string {
	out := []string{}
	for _, item := range asList(v) {
		var s string
		if o, ok := item.(*object); ok {
			s = firstString(o, recommendationText)
		} else {
			s, _ = scalarString(item)
		}
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}

func normalizeEvidence(v any) []model.Evidence {
	out := []model.Evidence{}
	for _, item := range asList(v) {
		var ev model.Evidence
		switch t := item.(type) {
		case *object:
			ev = model.Evidence{
				Quote:     firstString(t, quoteFields),
				Technique: firstString(t, techniqueFields),
				Why:       firstString(t, whyFields),
			}
		case string:
			ev.Quote = strings.TrimSpace(t)
		}
		if ev.Quote != "" {
			out = append(out, ev)
		}
	}
	return out
}

// asList wraps a bare value as a single-element list.
func asList(v any) []any {
	switch t := v.(type) {
	case nil:
		return nil
	case []any:
		return t
	default:
		return []any{t}
	}
}

func meanSectionScore(sections map[string]*model.Section, keys []string) int {
	if len(keys) == 0 {
		return 0
	}
	sum := 0
	for _, k := range keys {
		if s := sections[k]; s != nil && s.Score != nil {
			sum += *s.Score
		}
	}
	return int(math.Round(float64(sum) / float64(len(keys))))
}

// slug derives a metric key from its label: "Escucha Reflexiva" -> "escucha_reflexiva".
func slug(label string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	plain, _, err := transform.String(t, label)
	if err != nil {
		plain = label
	}
	var sb strings.Builder
	pendingSep := false
	for _, r := range strings.ToLower(plain) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if pendingSep && sb.Len() > 0 {
				sb.WriteByte('_')
			}
			pendingSep = false
			sb.WriteRune(r)
			continue
		}
		pendingSep = true
	}
	return sb.String()
}
