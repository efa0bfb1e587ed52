package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"rolecoach/internal/apperr"
	"rolecoach/internal/cache"
	"rolecoach/internal/log"
	"rolecoach/internal/model"
	"rolecoach/internal/repository"
	"rolecoach/internal/roleplay"
	"rolecoach/internal/validation"
)

// AnalysisOptions configure role-play analysis
type AnalysisOptions struct {
	Model       string
	Temperature float32
	FieldLimit  int

	// RateLimit is the number of analyses a trainer may request per window. 0 disables.
	RateLimit  int
	RateWindow time.Duration
}

// AnalysisService evaluates role-play exercises and stores the result on the
// exercise instance
type AnalysisService struct {
	invoker     ModelInvoker
	repo        repository.ExerciseRepo
	limiter     cache.RateLimiter
	broadcaster Broadcaster
	opts        AnalysisOptions
	mockOnly    bool
	now         func() time.Time
	logger      zerolog.Logger
}

// NewAnalysisService creates an analysis service. limiter and broadcaster may
// be nil. When mockOnly is set every request is answered with a mock analysis.
func NewAnalysisService(invoker ModelInvoker, repo repository.ExerciseRepo, limiter cache.RateLimiter, broadcaster Broadcaster, opts AnalysisOptions, mockOnly bool) *AnalysisService {
	if opts.RateWindow <= 0 {
		opts.RateWindow = time.Minute
	}
	return &AnalysisService{
		invoker:     invoker,
		repo:        repo,
		limiter:     limiter,
		broadcaster: broadcaster,
		opts:        opts,
		mockOnly:    mockOnly,
		now:         time.Now,
		logger:      log.Component("analysis"),
	}
}

// AnalyzeRolePlay runs one analysis end to end: validate, call the model,
// normalize and enrich, then record it on the exercise instance. Model and
// parse failures abort the request; nothing is stored for them.
func (s *AnalysisService) AnalyzeRolePlay(ctx context.Context, req model.RolePlayRequest, trainerID string) (*model.AnalysisEnvelope, error) {
	tools, err := validateRolePlay(req)
	if err != nil {
		return nil, err
	}

	if s.limiter != nil && trainerID != "" {
		allowed, err := s.limiter.Allow(ctx, "analysis:"+trainerID, s.opts.RateLimit, s.opts.RateWindow)
		if err != nil {
			// fail open on limiter errors
			s.logger.Warn().Err(err).Msg("rate limiter unavailable")
		} else if !allowed {
			return nil, apperr.RateLimited()
		}
	}

	cfg := roleplay.Config{
		Evaluations: req.Evaluations,
		Tools:       tools,
		Data:        req.Data,
		Approach:    req.Approach,
		Model:       s.opts.Model,
		FieldLimit:  s.opts.FieldLimit,
		Now:         s.now,
	}

	source := model.SourceReal
	if req.Source == model.SourceMock || s.mockOnly {
		source = model.SourceMock
		cfg.Model = roleplay.MockModel
	}

	raw := roleplay.MockResponse(cfg)
	if source == model.SourceReal {
		raw, err = s.invoker.Invoke(ctx, InvokeRequest{
			SystemPrompt: roleplay.SystemPrompt(),
			UserPrompt:   roleplay.BuildPrompt(cfg),
			Model:        s.opts.Model,
			Temperature:  s.opts.Temperature,
			JSONMode:     true,
			Mock:         raw,
		})
		if err != nil {
			if !errors.Is(err, apperr.ErrModelUnavailable) {
				err = apperr.ModelUnavailable(err)
			}
			return nil, err
		}
	}

	result, err := roleplay.Normalize(raw, cfg)
	if err != nil {
		s.logger.Error().Err(err).Str("exerciseId", req.ExerciseID).Int("responseLength", len(raw)).Msg("unreadable analysis response")
		return nil, apperr.MalformedOutput(err)
	}
	roleplay.Enrich(result, cfg)

	instance, err := s.loadOrCreate(ctx, req, trainerID)
	if err != nil {
		return nil, err
	}
	generatedAt := s.now()
	instance.RecordAnalysis(result, source, generatedAt, req.Replace)

	envelope := &model.AnalysisEnvelope{
		AnalysisResult: result,
		Persistence: model.PersistenceMeta{
			InstanceID:  instance.InstanceID,
			GeneratedAt: generatedAt,
			Source:      source,
			Attempts:    instance.AnalysisAttempts,
		},
	}

	if err := s.repo.SaveInstance(ctx, instance); err != nil {
		s.logger.Error().Err(err).Str("instanceId", instance.InstanceID).Msg("failed to save analysis")
		return nil, apperr.Persistence(err)
	}
	envelope.Persistence.Saved = true

	s.logger.Info().
		Str("instanceId", instance.InstanceID).
		Str("source", source).
		Int("attempts", instance.AnalysisAttempts).
		Int("generalScore", result.GeneralScore).
		Msg("role-play analysis stored")

	if s.broadcaster != nil {
		channel := req.SessionID
		if channel == "" {
			channel = instance.InstanceID
		}
		s.broadcaster.BroadcastToSession(channel, EventAnalysisReady, envelope)
	}
	return envelope, nil
}

// GetAnalysis returns the latest stored analysis for an instance
func (s *AnalysisService) GetAnalysis(ctx context.Context, instanceID string) (*model.AnalysisEnvelope, error) {
	instance, err := s.repo.LoadInstance(ctx, instanceID)
	if err != nil {
		return nil, apperr.Persistence(err)
	}
	if instance == nil || instance.Analysis == nil {
		return nil, apperr.NotFound("analysis for instance", instanceID)
	}

	envelope := &model.AnalysisEnvelope{
		AnalysisResult: instance.Analysis,
		Persistence: model.PersistenceMeta{
			InstanceID: instance.InstanceID,
			Source:     instance.AnalysisSource,
			Attempts:   instance.AnalysisAttempts,
			Saved:      true,
		},
	}
	if instance.AnalysisGeneratedAt != nil {
		envelope.Persistence.GeneratedAt = *instance.AnalysisGeneratedAt
	}
	return envelope, nil
}

func (s *AnalysisService) loadOrCreate(ctx context.Context, req model.RolePlayRequest, trainerID string) (*model.ExerciseInstance, error) {
	if req.InstanceID != "" {
		instance, err := s.repo.LoadInstance(ctx, req.InstanceID)
		if err != nil {
			return nil, apperr.Persistence(err)
		}
		if instance != nil {
			return instance, nil
		}
	}

	id := req.InstanceID
	if id == "" {
		id = uuid.New().String()
	}
	now := s.now()
	return &model.ExerciseInstance{
		InstanceID: id,
		ExerciseID: req.ExerciseID,
		SessionID:  req.SessionID,
		TrainerID:  trainerID,
		Type:       req.Type,
		Data:       req.Data,
		CreatedAt:  now,
		UpdatedAt:  now,
	}, nil
}

// validateRolePlay checks the request and decodes its tool flags
func validateRolePlay(req model.RolePlayRequest) (map[string]bool, error) {
	if err := validation.Validate(req); err != nil {
		return nil, err
	}

	trimmed := bytes.TrimSpace(req.Tools)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, apperr.ClientInput("tools must be an object of tool name to boolean")
	}
	var flags map[string]any
	if err := json.Unmarshal(trimmed, &flags); err != nil {
		return nil, apperr.ClientInput("tools must be an object of tool name to boolean").WithDetail(err.Error())
	}

	tools := make(map[string]bool, len(flags))
	for k, v := range flags {
		on, ok := v.(bool)
		if !ok {
			return nil, apperr.ClientInput("tools." + k + " must be a boolean")
		}
		tools[k] = on
	}
	return tools, nil
}
