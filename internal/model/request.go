package model

import "encoding/json"

// RolePlayRequest is the body of POST /v1/analysis/role-play.
// Tools stays raw so a non-object value can be rejected as a client error.
type RolePlayRequest struct {
	ExerciseID  string          `json:"exerciseId" validate:"required"`
	Type        string          `json:"type" validate:"required,eq=role_play"`
	Evaluations []string        `json:"evaluations" validate:"required,min=1,dive,required"`
	Tools       json.RawMessage `json:"tools" validate:"required"`
	Data        map[string]any  `json:"data,omitempty"`
	Approach    string          `json:"approach,omitempty"`
	InstanceID  string          `json:"instanceId,omitempty"`
	SessionID   string          `json:"sessionId,omitempty"`
	Replace     bool            `json:"replace,omitempty"`
	Source      string          `json:"source,omitempty" validate:"omitempty,oneof=real mock"`
}
