package roleplay

import (
	"encoding/json"
	"fmt"
	"unicode/utf8"
)

// TruncationMarker is appended to text cut by Clamp
const TruncationMarker = "…[truncado]"

// DefaultFieldLimit bounds each data field embedded in a prompt
const DefaultFieldLimit = 12000

// Clamp returns text unchanged when it has at most maxLength characters,
// otherwise its first maxLength characters followed by TruncationMarker.
// A non-positive maxLength disables clamping.
func Clamp(text string, maxLength int) string {
	if maxLength <= 0 || utf8.RuneCountInString(text) <= maxLength {
		return text
	}
	n := 0
	for i := range text {
		if n == maxLength {
			return text[:i] + TruncationMarker
		}
		n++
	}
	return text
}

// ClampAny clamps arbitrary data values. nil becomes "", strings are used as
// is and everything else is JSON-encoded first.
func ClampAny(v any, maxLength int) string {
	var s string
	switch t := v.(type) {
	case nil:
		s = ""
	case string:
		s = t
	case fmt.Stringer:
		s = t.String()
	default:
		b, err := json.Marshal(t)
		if err != nil {
			s = fmt.Sprint(t)
		} else {
			s = string(b)
		}
	}
	return Clamp(s, maxLength)
}
