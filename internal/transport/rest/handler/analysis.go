package handler

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"

	"rolecoach/internal/model"
	"rolecoach/internal/transport/rest/middleware"
)

// Analyzer runs and fetches role-play analyses
type Analyzer interface {
	AnalyzeRolePlay(ctx context.Context, req model.RolePlayRequest, trainerID string) (*model.AnalysisEnvelope, error)
	GetAnalysis(ctx context.Context, instanceID string) (*model.AnalysisEnvelope, error)
}

// AnalysisHandler handles role-play analysis endpoints
type AnalysisHandler struct {
	analyzer Analyzer
}

// NewAnalysisHandler creates a new analysis handler
func NewAnalysisHandler(analyzer Analyzer) *AnalysisHandler {
	return &AnalysisHandler{analyzer: analyzer}
}

// AnalyzeRolePlay handles POST /v1/analysis/role-play
//
//	@Summary	Evaluate a role-play exercise
//	@Tags		analysis
//	@Accept		json
//	@Produce	json
//	@Security	BearerAuth
//	@Param		body	body		model.RolePlayRequest	true	"exercise configuration and material"
//	@Success	201		{object}	model.AnalysisEnvelope
//	@Failure	400		{object}	apperr.Error
//	@Failure	429		{object}	apperr.Error
//	@Failure	500		{object}	apperr.Error
//	@Router		/analysis/role-play [post]
func (h *AnalysisHandler) AnalyzeRolePlay(w http.ResponseWriter, r *http.Request) {
	var req model.RolePlayRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}

	envelope, err := h.analyzer.AnalyzeRolePlay(r.Context(), req, middleware.GetTrainerID(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, envelope)
}

// GetAnalysis handles GET /v1/analysis/{instanceId}
//
//	@Summary	Latest analysis of an exercise instance
//	@Tags		analysis
//	@Produce	json
//	@Security	BearerAuth
//	@Param		instanceId	path		string	true	"exercise instance id"
//	@Success	200			{object}	model.AnalysisEnvelope
//	@Failure	404			{object}	apperr.Error
//	@Router		/analysis/{instanceId} [get]
func (h *AnalysisHandler) GetAnalysis(w http.ResponseWriter, r *http.Request) {
	instanceID := mux.Vars(r)["instanceId"]

	envelope, err := h.analyzer.GetAnalysis(r.Context(), instanceID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, envelope)
}
