package config

import "testing"

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("AI_PROVIDER", "")
	t.Setenv("DIARIZE_CHUNK_SENTENCES", "")
	t.Setenv("REDIS_URI", "redis://cache:6379")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.DiarizeChunkSentences != 15 {
		t.Errorf("DiarizeChunkSentences = %d, want 15", cfg.DiarizeChunkSentences)
	}
	if cfg.DiarizeConcurrency != 1 {
		t.Errorf("DiarizeConcurrency = %d, want 1", cfg.DiarizeConcurrency)
	}
	if cfg.RedisAddr != "cache:6379" {
		t.Errorf("RedisAddr = %q, want prefix stripped", cfg.RedisAddr)
	}
}

func TestLoad_GeminiKeyFallback(t *testing.T) {
	t.Setenv("AI_PROVIDER", "gemini")
	t.Setenv("AI_API_KEY", "")
	t.Setenv("AI_BASE_URL", "")
	t.Setenv("GEMINI_API_KEY", "g-key")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.AI.APIKey != "g-key" {
		t.Errorf("APIKey = %q, want g-key", cfg.AI.APIKey)
	}
	if !cfg.AI.IsEnabled() {
		t.Error("expected AI to be enabled")
	}
	want := geminiBaseURL + "/gemini-2.0-flash:generateContent"
	if got := cfg.AI.ModelEndpoint("gemini-2.0-flash"); got != want {
		t.Errorf("ModelEndpoint = %q, want %q", got, want)
	}
}

func TestAIConfig_MockNeverEnabled(t *testing.T) {
	c := &AIConfig{Provider: ProviderMock, APIKey: "x"}
	if c.IsEnabled() {
		t.Error("mock provider must not count as enabled")
	}
}
