package model

import "time"

// AnalysisResult is the canonical, UI/storage-stable evaluation of a role-play.
// Its shape does not depend on which field names the model happened to use.
type AnalysisResult struct {
	GeneralScore int                 `json:"generalScore" bson:"generalScore"`
	General      General             `json:"general" bson:"general"`
	Sections     map[string]*Section `json:"sections" bson:"sections"`
	Tools        map[string]*Block   `json:"tools" bson:"tools"`
	Meta         AnalysisMeta        `json:"meta" bson:"meta"`
}

// General is the overall verdict
type General struct {
	Score   int    `json:"score" bson:"score"`
	Summary string `json:"summary" bson:"summary"`
}

// Block is the normalized score/metrics/recommendations unit for a tool.
// Score is nil when the model supplied something unrecoverable.
type Block struct {
	Score           *int     `json:"score" bson:"score"`
	Metrics         []Metric `json:"metrics" bson:"metrics"`
	Recommendations []string `json:"recommendations" bson:"recommendations"`
	Label           string   `json:"label,omitempty" bson:"label,omitempty"`
	Description     string   `json:"description,omitempty" bson:"description,omitempty"`
}

// Section is a Block for an evaluation dimension, plus quoted evidence
type Section struct {
	Block    `bson:",inline"`
	Evidence []Evidence `json:"evidence" bson:"evidence"`
}

// Metric is one scored sub-indicator of a block
type Metric struct {
	Key   string `json:"key" bson:"key"`
	Label string `json:"label" bson:"label"`
	Score *int   `json:"score" bson:"score"`
	Icon  string `json:"icon,omitempty" bson:"icon,omitempty"`
}

// Evidence is a transcript excerpt that justifies a section score
type Evidence struct {
	Quote     string `json:"quote" bson:"quote"`
	Technique string `json:"technique" bson:"technique"`
	Why       string `json:"why" bson:"why"`
}

// AnalysisMeta records how the result was produced
type AnalysisMeta struct {
	Enfoque   string    `json:"enfoque" bson:"enfoque"`
	Model     string    `json:"model" bson:"model"`
	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
}

// NewBlock returns an empty block with non-nil lists
func NewBlock() *Block {
	return &Block{
		Metrics:         []Metric{},
		Recommendations: []string{},
	}
}

// NewSection returns an empty section with non-nil lists
func NewSection() *Section {
	return &Section{
		Block:    *NewBlock(),
		Evidence: []Evidence{},
	}
}

// IntPtr is a small helper for optional scores
func IntPtr(v int) *int {
	return &v
}
