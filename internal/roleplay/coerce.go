package roleplay

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

const (
	minScore = 0
	maxScore = 100
)

// coerceScore turns a number or numeric string into an integer in [0,100],
// rounding half away from zero. Missing, non-numeric and non-finite values
// yield nil.
func coerceScore(v any) *int {
	f, ok := toFloat(v)
	if !ok || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	n := int(math.Max(minScore, math.Min(maxScore, math.Round(f))))
	return &n
}

func toFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case json.Number:
		return parseNumeric(string(t))
	case string:
		return parseNumeric(t)
	case float64:
		return t, true
	case float32:
		return float64(t), true
	case int:
		return float64(t), true
	case int8:
		return float64(t), true
	case int16:
		return float64(t), true
	case int32:
		return float64(t), true
	case int64:
		return float64(t), true
	case uint:
		return float64(t), true
	case uint8:
		return float64(t), true
	case uint16:
		return float64(t), true
	case uint32:
		return float64(t), true
	case uint64:
		return float64(t), true
	default:
		return 0, false
	}
}

// parseNumeric accepts "90", " 87.6 ", "90%" and "8,5" style input.
func parseNumeric(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	s = strings.TrimSpace(strings.TrimSuffix(s, "%"))
	if s == "" {
		return 0, false
	}
	if strings.Count(s, ",") == 1 && !strings.Contains(s, ".") {
		s = strings.Replace(s, ",", ".", 1)
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// scalarString renders strings and numbers as trimmed text. Anything else is
// reported as absent.
func scalarString(v any) (string, bool) {
	switch t := v.(type) {
	case string:
		s := strings.TrimSpace(t)
		return s, s != ""
	case json.Number:
		return t.String(), true
	case float64:
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return "", false
		}
		return strconv.FormatFloat(t, 'f', -1, 64), true
	case int:
		return strconv.Itoa(t), true
	case int64:
		return strconv.FormatInt(t, 10), true
	default:
		return "", false
	}
}
