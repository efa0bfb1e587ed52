package roleplay

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

//go:embed labels.yaml
var labelsYAML []byte

// Label is the human-readable presentation of a section or tool key
type Label struct {
	Label       string `yaml:"label"`
	Description string `yaml:"description"`
}

type labelCatalog struct {
	Sections map[string]Label  `yaml:"sections"`
	Tools    map[string]Label  `yaml:"tools"`
	Data     map[string]string `yaml:"data"`
}

// catalog is loaded once and never mutated afterwards.
var catalog = mustLoadCatalog(labelsYAML)

func mustLoadCatalog(raw []byte) labelCatalog {
	c, err := loadCatalog(raw)
	if err != nil {
		panic(err)
	}
	return c
}

func loadCatalog(raw []byte) (labelCatalog, error) {
	var c labelCatalog
	if err := yaml.Unmarshal(raw, &c); err != nil {
		return labelCatalog{}, fmt.Errorf("parse label catalog: %w", err)
	}
	if c.Sections == nil {
		c.Sections = map[string]Label{}
	}
	if c.Tools == nil {
		c.Tools = map[string]Label{}
	}
	if c.Data == nil {
		c.Data = map[string]string{}
	}
	return c, nil
}

// SectionLabel returns the label for an evaluation key. Unknown keys are
// labelled with the key itself and carry no description.
func SectionLabel(key string) Label {
	if l, ok := catalog.Sections[key]; ok {
		return l
	}
	return Label{Label: key}
}

// ToolLabel returns the label for a tool key, falling back to the key.
func ToolLabel(key string) Label {
	if l, ok := catalog.Tools[key]; ok {
		return l
	}
	return Label{Label: key}
}

// DataLabel returns the heading used for a data field in prompts.
func DataLabel(key string) string {
	if l, ok := catalog.Data[key]; ok {
		return l
	}
	return key
}
