package handler

import (
	"context"
	"net/http"

	"rolecoach/internal/model"
)

// Diarizer splits a transcript into speaker turns
type Diarizer interface {
	Diarize(ctx context.Context, req model.DiarizeRequest) (*model.DiarizationResult, error)
}

// DiarizeHandler handles transcript diarization
type DiarizeHandler struct {
	diarizer Diarizer
}

// NewDiarizeHandler creates a new diarize handler
func NewDiarizeHandler(diarizer Diarizer) *DiarizeHandler {
	return &DiarizeHandler{diarizer: diarizer}
}

// Diarize handles POST /v1/diarize
//
//	@Summary	Split a transcript into Terapeuta/Paciente turns
//	@Tags		diarization
//	@Accept		json
//	@Produce	json
//	@Security	BearerAuth
//	@Param		body	body		model.DiarizeRequest	true	"transcript"
//	@Success	200		{object}	model.DiarizationResult
//	@Failure	400		{object}	apperr.Error
//	@Failure	500		{object}	apperr.Error
//	@Router		/diarize [post]
func (h *DiarizeHandler) Diarize(w http.ResponseWriter, r *http.Request) {
	var req model.DiarizeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}

	result, err := h.diarizer.Diarize(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}
