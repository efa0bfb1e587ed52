package config

import (
	"strings"

	"github.com/spf13/viper"
)

// Supported model providers
const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
	ProviderMock   = "mock"
)

const geminiBaseURL = "https://generativelanguage.googleapis.com/v1beta/models"

// Models defines which model to use for each task
type Models struct {
	// Analysis scores a whole role-play transcript (quality over speed)
	Analysis string `json:"analysis"`

	// Diarize labels speakers chunk by chunk (many small calls)
	Diarize string `json:"diarize"`
}

// AIConfig holds all AI-related configuration
type AIConfig struct {
	Provider            string  `json:"provider"`
	APIKey              string  `json:"-"` // Never serialize
	BaseURL             string  `json:"baseUrl"`
	Models              Models  `json:"models"`
	AnalysisTemperature float32 `json:"analysisTemperature"`
	DiarizeTemperature  float32 `json:"diarizeTemperature"`
	TimeoutMS           int     `json:"timeoutMs"`
	MaxRetries          int     `json:"maxRetries"`
}

func loadAIConfig(v *viper.Viper) *AIConfig {
	provider := strings.ToLower(strings.TrimSpace(v.GetString("AI_PROVIDER")))

	apiKey := v.GetString("AI_API_KEY")
	if apiKey == "" {
		switch provider {
		case ProviderGemini:
			apiKey = v.GetString("GEMINI_API_KEY")
		default:
			apiKey = v.GetString("OPENAI_API_KEY")
		}
	}

	baseURL := v.GetString("AI_BASE_URL")
	if baseURL == "" && provider == ProviderGemini {
		baseURL = geminiBaseURL
	}

	return &AIConfig{
		Provider: provider,
		APIKey:   apiKey,
		BaseURL:  baseURL,
		Models: Models{
			Analysis: v.GetString("AI_MODEL_ANALYSIS"),
			Diarize:  v.GetString("AI_MODEL_DIARIZE"),
		},
		AnalysisTemperature: float32(v.GetFloat64("AI_TEMPERATURE_ANALYSIS")),
		DiarizeTemperature:  float32(v.GetFloat64("AI_TEMPERATURE_DIARIZE")),
		TimeoutMS:           v.GetInt("AI_TIMEOUT_MS"),
		MaxRetries:          v.GetInt("AI_MAX_RETRIES"),
	}
}

// IsEnabled returns true if a real model provider is configured
func (c *AIConfig) IsEnabled() bool {
	return c.APIKey != "" && c.Provider != ProviderMock
}

// ModelEndpoint returns the full Gemini endpoint for a given model
func (c *AIConfig) ModelEndpoint(model string) string {
	return strings.TrimRight(c.BaseURL, "/") + "/" + model + ":generateContent"
}
