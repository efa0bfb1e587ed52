package model

import "time"

// Analysis sources
const (
	SourceReal = "real"
	SourceMock = "mock"
)

// ExerciseTypeRolePlay is the only exercise type that can be analyzed
const ExerciseTypeRolePlay = "role_play"

// maxAnalysisHistory bounds how many superseded analyses are kept per instance
const maxAnalysisHistory = 10

// ExerciseInstance is a trainee's attempt at an exercise. The analysis core
// only writes the analysis fields; the rest belongs to the exercise flow.
type ExerciseInstance struct {
	InstanceID string `json:"instanceId" bson:"instanceId"`
	ExerciseID string `json:"exerciseId" bson:"exerciseId"`
	SessionID  string `json:"sessionId,omitempty" bson:"sessionId,omitempty"`
	TrainerID  string `json:"trainerId,omitempty" bson:"trainerId,omitempty"`
	Type       string `json:"type" bson:"type"`

	// Data is the long-text bundle captured during the exercise (transcript, notes...)
	Data map[string]any `json:"data,omitempty" bson:"data,omitempty"`

	Analysis            *AnalysisResult  `json:"analysis,omitempty" bson:"analysis,omitempty"`
	AnalysisHistory     []AnalysisResult `json:"analysisHistory,omitempty" bson:"analysisHistory,omitempty"`
	AnalysisAttempts    int              `json:"analysisAttempts" bson:"analysisAttempts"`
	AnalysisSource      string           `json:"analysisSource,omitempty" bson:"analysisSource,omitempty"`
	AnalysisGeneratedAt *time.Time       `json:"analysisGeneratedAt,omitempty" bson:"analysisGeneratedAt,omitempty"`

	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updatedAt"`
}

// RecordAnalysis stores a new analysis on the instance and bumps the attempt
// counter. Unless replace is set, the previous analysis moves into history.
func (e *ExerciseInstance) RecordAnalysis(result *AnalysisResult, source string, at time.Time, replace bool) {
	if e.Analysis != nil && !replace {
		e.AnalysisHistory = append(e.AnalysisHistory, *e.Analysis)
		if len(e.AnalysisHistory) > maxAnalysisHistory {
			e.AnalysisHistory = e.AnalysisHistory[len(e.AnalysisHistory)-maxAnalysisHistory:]
		}
	}
	e.Analysis = result
	e.AnalysisAttempts++
	e.AnalysisSource = source
	e.AnalysisGeneratedAt = &at
	e.UpdatedAt = at
}

// PersistenceMeta is returned alongside an analysis
type PersistenceMeta struct {
	InstanceID  string    `json:"instanceId"`
	GeneratedAt time.Time `json:"generatedAt"`
	Source      string    `json:"source"`
	Attempts    int       `json:"attempts"`
	Saved       bool      `json:"saved"`
}

// AnalysisEnvelope is the analysis plus where and how it was stored
type AnalysisEnvelope struct {
	*AnalysisResult
	Persistence PersistenceMeta `json:"persistence"`
}
