package roleplay

import (
	"sort"
	"time"
)

// Config describes one role-play analysis: which sections and tools were
// requested and what exercise material the model gets to see.
type Config struct {
	// Evaluations are the requested section keys, in display order.
	Evaluations []string

	// Tools maps a tool key to whether it should be scored.
	Tools map[string]bool

	Data     map[string]any
	Approach string

	// Model is recorded in meta.model when the response does not name one.
	Model string

	// FieldLimit caps every data field in the prompt. Zero means DefaultFieldLimit.
	FieldLimit int

	// Now stamps meta.createdAt. Defaults to time.Now.
	Now func() time.Time
}

// SectionKeys returns Evaluations with blanks and duplicates removed.
func (c Config) SectionKeys() []string {
	keys := make([]string, 0, len(c.Evaluations))
	seen := make(map[string]bool, len(c.Evaluations))
	for _, k := range c.Evaluations {
		if k == "" || seen[k] {
			continue
		}
		seen[k] = true
		keys = append(keys, k)
	}
	return keys
}

// EnabledTools returns the keys of enabled tools in sorted order.
func (c Config) EnabledTools() []string {
	keys := make([]string, 0, len(c.Tools))
	for k, on := range c.Tools {
		if on && k != "" {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys
}

func (c Config) fieldLimit() int {
	if c.FieldLimit > 0 {
		return c.FieldLimit
	}
	return DefaultFieldLimit
}

func (c Config) now() time.Time {
	if c.Now != nil {
		return c.Now()
	}
	return time.Now()
}
