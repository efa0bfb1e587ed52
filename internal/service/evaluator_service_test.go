package service

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/cenkalti/backoff/v5"

	"rolecoach/internal/apperr"
	"rolecoach/internal/config"
)

func newTestEvaluator(t *testing.T, provider, baseURL string) *EvaluatorService {
	t.Helper()
	svc := NewEvaluatorService(&config.AIConfig{
		Provider:   provider,
		APIKey:     "test-key",
		BaseURL:    baseURL,
		TimeoutMS:  5000,
		MaxRetries: 3,
	})
	svc.backOff = func() backoff.BackOff { return backoff.NewConstantBackOff(time.Millisecond) }
	return svc
}

func TestEvaluator_MockWithoutKey(t *testing.T) {
	svc := NewEvaluatorService(&config.AIConfig{Provider: config.ProviderOpenAI})
	if !svc.IsMock() {
		t.Fatal("no API key should select the mock provider")
	}
	got, err := svc.Invoke(context.Background(), InvokeRequest{Mock: `{"ok":true}`})
	if err != nil || got != `{"ok":true}` {
		t.Fatalf("Invoke() = %q, %v", got, err)
	}
}

func geminiReply(text string) string {
	b, _ := json.Marshal(map[string]any{
		"candidates": []any{map[string]any{
			"content": map[string]any{"parts": []any{map[string]any{"text": text}}},
		}},
	})
	return string(b)
}

func TestEvaluator_GeminiRetriesServerErrors(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/gemini-test:generateContent") || r.URL.Query().Get("key") != "test-key" {
			t.Errorf("unexpected request %s", r.URL)
		}
		body, _ := io.ReadAll(r.Body)
		if !strings.Contains(string(body), "responseMimeType") || !strings.Contains(string(body), "systemInstruction") {
			t.Errorf("request body = %s", body)
		}
		if hits.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = io.WriteString(w, geminiReply(`{"rapport":{"score":80}}`))
	}))
	defer srv.Close()

	svc := newTestEvaluator(t, config.ProviderGemini, srv.URL)
	got, err := svc.Invoke(context.Background(), InvokeRequest{
		SystemPrompt: "sys",
		UserPrompt:   "user",
		Model:        "gemini-test",
		JSONMode:     true,
	})
	if err != nil {
		t.Fatalf("Invoke() error = %v", err)
	}
	if got != `{"rapport":{"score":80}}` || hits.Load() != 3 {
		t.Errorf("Invoke() = %q after %d calls", got, hits.Load())
	}
}

func TestEvaluator_ClientErrorsAreNotRetried(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		http.Error(w, `{"error":"bad key"}`, http.StatusUnauthorized)
	}))
	defer srv.Close()

	svc := newTestEvaluator(t, config.ProviderGemini, srv.URL)
	_, err := svc.Invoke(context.Background(), InvokeRequest{Model: "m", UserPrompt: "x"})
	if !errors.Is(err, apperr.ErrModelUnavailable) {
		t.Fatalf("error = %v, want model unavailable", err)
	}
	if hits.Load() != 1 {
		t.Errorf("calls = %d, want 1", hits.Load())
	}
}

func TestEvaluator_GivesUpAfterMaxTries(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	svc := newTestEvaluator(t, config.ProviderGemini, srv.URL)
	_, err := svc.Invoke(context.Background(), InvokeRequest{Model: "m"})
	if !errors.Is(err, apperr.ErrModelUnavailable) || hits.Load() != 3 {
		t.Fatalf("error = %v after %d calls", err, hits.Load())
	}
}

func TestEvaluator_OpenAI(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("path = %s", r.URL.Path)
		}
		var req struct {
			Model          string `json:"model"`
			Messages       []any  `json:"messages"`
			ResponseFormat *struct {
				Type string `json:"type"`
			} `json:"response_format"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req.Model != "gpt-test" || len(req.Messages) != 2 || req.ResponseFormat == nil || req.ResponseFormat.Type != "json_object" {
			t.Errorf("request = %+v", req)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"id":"c1","object":"chat.completion","model":"gpt-test",
			"choices":[{"index":0,"message":{"role":"assistant","content":"{\"score\":70}"},"finish_reason":"stop"}]}`)
	}))
	defer srv.Close()

	svc := newTestEvaluator(t, config.ProviderOpenAI, srv.URL)
	got, err := svc.Invoke(context.Background(), InvokeRequest{
		SystemPrompt: "sys",
		UserPrompt:   "user",
		Model:        "gpt-test",
		JSONMode:     true,
	})
	if err != nil {
		t.Fatalf("Invoke() error = %v", err)
	}
	if got != `{"score":70}` {
		t.Errorf("Invoke() = %q", got)
	}
}

func TestRetryable(t *testing.T) {
	tests := []struct {
		err  error
		want bool
	}{
		{&statusError{StatusCode: 429}, true},
		{&statusError{StatusCode: 503}, true},
		{&statusError{StatusCode: 400}, false},
		{&statusError{StatusCode: 401}, false},
		{errors.New("empty response from Gemini"), false},
	}
	for _, tt := range tests {
		if got := retryable(tt.err); got != tt.want {
			t.Errorf("retryable(%v) = %v, want %v", tt.err, got, tt.want)
		}
	}
}
