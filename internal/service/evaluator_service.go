package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/rs/zerolog"
	"github.com/sashabaranov/go-openai"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"rolecoach/internal/apperr"
	"rolecoach/internal/config"
	"rolecoach/internal/log"
	"rolecoach/internal/observability"
)

// InvokeRequest is one model call
type InvokeRequest struct {
	SystemPrompt string
	UserPrompt   string
	Model        string
	Temperature  float32
	JSONMode     bool

	// Mock is returned verbatim by the mock provider.
	Mock string
}

// ModelInvoker sends a prompt to a language model and returns its raw text.
// Failures are reported as apperr.ErrModelUnavailable.
type ModelInvoker interface {
	Invoke(ctx context.Context, req InvokeRequest) (string, error)
}

// EvaluatorService calls the configured model provider
type EvaluatorService struct {
	config   *config.AIConfig
	provider string
	client   *http.Client
	openai   *openai.Client
	timeout  time.Duration
	maxTries uint
	backOff  func() backoff.BackOff
	logger   zerolog.Logger
}

// NewEvaluatorService creates a new evaluator service. Without an API key it
// falls back to the mock provider.
func NewEvaluatorService(cfg *config.AIConfig) *EvaluatorService {
	s := &EvaluatorService{
		config:   cfg,
		provider: cfg.Provider,
		client:   &http.Client{},
		timeout:  time.Duration(cfg.TimeoutMS) * time.Millisecond,
		maxTries: uint(max(cfg.MaxRetries, 1)),
		backOff:  newModelBackOff,
		logger:   log.Component("evaluator"),
	}
	if !cfg.IsEnabled() {
		s.provider = config.ProviderMock
	}

	if s.provider == config.ProviderOpenAI {
		clientConfig := openai.DefaultConfig(cfg.APIKey)
		if cfg.BaseURL != "" {
			clientConfig.BaseURL = cfg.BaseURL
		}
		s.openai = openai.NewClientWithConfig(clientConfig)
	}

	s.logger.Info().Str("provider", s.provider).Msg("model provider configured")
	return s
}

// Provider is the provider actually in use
func (s *EvaluatorService) Provider() string {
	return s.provider
}

// IsMock reports whether calls are answered without a model
func (s *EvaluatorService) IsMock() bool {
	return s.provider == config.ProviderMock
}

// Invoke runs one model call bounded by the configured timeout, retrying
// rate limits, server errors and network failures with exponential backoff.
func (s *EvaluatorService) Invoke(ctx context.Context, req InvokeRequest) (string, error) {
	ctx, span := observability.StartSpan(ctx, "llm.invoke",
		attribute.String("llm.provider", s.provider),
		attribute.String("llm.model", req.Model),
	)
	defer span.End()

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	start := time.Now()
	attempt := 0
	text, err := backoff.Retry(ctx, func() (string, error) {
		attempt++
		text, err := s.call(ctx, req)
		if err != nil && !retryable(err) {
			return "", backoff.Permanent(err)
		}
		if err != nil {
			s.logger.Warn().Err(err).Int("attempt", attempt).Str("model", req.Model).Msg("model call failed, retrying")
		}
		return text, err
	},
		backoff.WithBackOff(s.backOff()),
		backoff.WithMaxTries(s.maxTries),
	)
	span.SetAttributes(attribute.Int("llm.attempts", attempt))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		s.logger.Error().Err(err).Str("model", req.Model).Int("attempts", attempt).Msg("model call failed")
		return "", apperr.ModelUnavailable(err)
	}

	s.logger.Debug().
		Str("model", req.Model).
		Int("attempts", attempt).
		Dur("duration", time.Since(start)).
		Int("responseLength", len(text)).
		Msg("model call completed")
	return text, nil
}

func newModelBackOff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 500 * time.Millisecond
	b.MaxInterval = 8 * time.Second
	return b
}

func (s *EvaluatorService) call(ctx context.Context, req InvokeRequest) (string, error) {
	switch s.provider {
	case config.ProviderMock:
		return req.Mock, nil
	case config.ProviderGemini:
		return s.callGemini(ctx, req)
	case config.ProviderOpenAI:
		return s.callOpenAI(ctx, req)
	default:
		return "", fmt.Errorf("unknown model provider %q", s.provider)
	}
}

// statusError is a non-2xx answer from a provider
type statusError struct {
	StatusCode int
	Body       string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("model provider returned %d: %s", e.StatusCode, e.Body)
}

func retryableStatus(code int) bool {
	return code == http.StatusTooManyRequests || code >= http.StatusInternalServerError
}

func retryable(err error) bool {
	var se *statusError
	if errors.As(err, &se) {
		return retryableStatus(se.StatusCode)
	}
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return retryableStatus(apiErr.HTTPStatusCode)
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return retryableStatus(reqErr.HTTPStatusCode)
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}

func (s *EvaluatorService) callOpenAI(ctx context.Context, req InvokeRequest) (string, error) {
	var messages []openai.ChatCompletionMessage
	if req.SystemPrompt != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: req.SystemPrompt,
		})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: req.UserPrompt,
	})

	chatReq := openai.ChatCompletionRequest{
		Model:       req.Model,
		Messages:    messages,
		Temperature: req.Temperature,
	}
	if req.JSONMode {
		chatReq.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		}
	}

	resp, err := s.openai.CreateChatCompletion(ctx, chatReq)
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("empty response from OpenAI")
	}
	return resp.Choices[0].Message.Content, nil
}

// callGemini makes a request to the Gemini generateContent API
func (s *EvaluatorService) callGemini(ctx context.Context, req InvokeRequest) (string, error) {
	generationConfig := map[string]interface{}{
		"temperature": req.Temperature,
	}
	if req.JSONMode {
		generationConfig["responseMimeType"] = "application/json"
	}
	reqBody := map[string]interface{}{
		"contents": []map[string]interface{}{
			{
				"role": "user",
				"parts": []map[string]string{
					{"text": req.UserPrompt},
				},
			},
		},
		"generationConfig": generationConfig,
	}
	if req.SystemPrompt != "" {
		reqBody["systemInstruction"] = map[string]interface{}{
			"parts": []map[string]string{{"text": req.SystemPrompt}},
		}
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return "", err
	}

	url := fmt.Sprintf("%s?key=%s", s.config.ModelEndpoint(req.Model), s.config.APIKey)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonBody))
	if err != nil {
		return "", err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(httpReq)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", &statusError{StatusCode: resp.StatusCode, Body: truncateBody(body)}
	}

	// Parse Gemini response structure
	var geminiResp struct {
		Candidates []struct {
			Content struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"content"`
		} `json:"candidates"`
	}
	if err := json.Unmarshal(body, &geminiResp); err != nil {
		return "", err
	}

	if len(geminiResp.Candidates) > 0 && len(geminiResp.Candidates[0].Content.Parts) > 0 {
		return geminiResp.Candidates[0].Content.Parts[0].Text, nil
	}

	return "", fmt.Errorf("empty response from Gemini")
}

func truncateBody(body []byte) string {
	const limit = 512
	if len(body) > limit {
		return string(body[:limit]) + "..."
	}
	return string(body)
}
