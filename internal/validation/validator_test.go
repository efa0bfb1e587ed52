package validation

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"rolecoach/internal/apperr"
	"rolecoach/internal/model"
)

func validRequest() model.RolePlayRequest {
	return model.RolePlayRequest{
		ExerciseID:  "ex-1",
		Type:        "role_play",
		Evaluations: []string{"rapport"},
		Tools:       json.RawMessage(`{"ficha": true}`),
	}
}

func TestValidate_RolePlayRequest(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(r *model.RolePlayRequest)
		wantErr string
	}{
		{"valid", func(r *model.RolePlayRequest) {}, ""},
		{"valid mock source", func(r *model.RolePlayRequest) { r.Source = "mock" }, ""},
		{"missing exercise", func(r *model.RolePlayRequest) { r.ExerciseID = "" }, "exerciseId is required"},
		{"wrong type", func(r *model.RolePlayRequest) { r.Type = "quiz" }, "type must be role_play"},
		{"no evaluations", func(r *model.RolePlayRequest) { r.Evaluations = []string{} }, "evaluations must have at least 1 item(s)"},
		{"nil evaluations", func(r *model.RolePlayRequest) { r.Evaluations = nil }, "evaluations is required"},
		{"blank evaluation", func(r *model.RolePlayRequest) { r.Evaluations = []string{"rapport", ""} }, "evaluations[1] is required"},
		{"missing tools", func(r *model.RolePlayRequest) { r.Tools = nil }, "tools is required"},
		{"bad source", func(r *model.RolePlayRequest) { r.Source = "fake" }, "source must be one of: real mock"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validRequest()
			tt.mutate(&req)
			err := Validate(req)
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Validate() error = %v", err)
				}
				return
			}
			if !errors.Is(err, apperr.ErrClientInput) {
				t.Fatalf("Validate() error = %v, want client input error", err)
			}
			if msg := apperr.From(err).Message; !strings.Contains(msg, tt.wantErr) {
				t.Errorf("message = %q, want it to contain %q", msg, tt.wantErr)
			}
		})
	}
}
