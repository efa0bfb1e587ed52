package roleplay

import "rolecoach/internal/model"

// Enrich decorates result in place with catalog labels and descriptions.
// Missing sections and tools are created, nil lists become empty, and
// existing labels, descriptions and evidence are left alone, so running it
// twice changes nothing.
func Enrich(result *model.AnalysisResult, cfg Config) *model.AnalysisResult {
	if result == nil {
		return nil
	}
	if result.Sections == nil {
		result.Sections = map[string]*model.Section{}
	}
	if result.Tools == nil {
		result.Tools = map[string]*model.Block{}
	}

	for _, key := range cfg.SectionKeys() {
		s := result.Sections[key]
		if s == nil {
			s = model.NewSection()
			result.Sections[key] = s
		}
		l := SectionLabel(key)
		if s.Label == "" {
			s.Label = l.Label
		}
		if s.Description == "" {
			s.Description = l.Description
		}
		if s.Evidence == nil {
			s.Evidence = []model.Evidence{}
		}
		fillLists(&s.Block)
	}

	for _, key := range cfg.EnabledTools() {
		b := result.Tools[key]
		if b == nil {
			b = model.NewBlock()
			result.Tools[key] = b
		}
		if b.Label == "" {
			b.Label = ToolLabel(key).Label
		}
		fillLists(b)
	}
	return result
}

func fillLists(b *model.Block) {
	if b.Metrics == nil {
		b.Metrics = []model.Metric{}
	}
	if b.Recommendations == nil {
		b.Recommendations = []string{}
	}
}
