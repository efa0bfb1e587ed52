package config

import (
	"errors"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds process configuration for the API server and tools
type Config struct {
	Env      string
	Port     string
	LogLevel string

	MongoURI string
	MongoDB  string

	RedisAddr string

	JWTSecret       string
	TrainerUsername string
	TrainerPassword string

	CORSAllowedOrigins string
	OTLPEndpoint       string

	// DiarizeChunkSentences bounds how many sentences go to the model per call
	DiarizeChunkSentences int

	// DiarizeConcurrency is the number of in-flight model calls per diarization request
	DiarizeConcurrency int

	// AnalysisRateLimit is the number of analyses a trainer may run per minute (0 disables)
	AnalysisRateLimit int
	PromptFieldLimit  int

	AI *AIConfig
}

// Load reads .env (when present), an optional config.yaml and the environment.
// Environment variables always win over file values.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("config")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}
	v.AutomaticEnv()
	setDefaults(v)

	cfg := &Config{
		Env:                   v.GetString("ENV"),
		Port:                  v.GetString("PORT"),
		LogLevel:              v.GetString("LOG_LEVEL"),
		MongoURI:              v.GetString("MONGO_URI"),
		MongoDB:               v.GetString("MONGO_DB"),
		RedisAddr:             strings.TrimPrefix(v.GetString("REDIS_URI"), "redis://"),
		JWTSecret:             v.GetString("JWT_SECRET"),
		TrainerUsername:       v.GetString("TRAINER_USERNAME"),
		TrainerPassword:       v.GetString("TRAINER_PASSWORD"),
		CORSAllowedOrigins:    v.GetString("CORS_ALLOWED_ORIGINS"),
		OTLPEndpoint:          v.GetString("OTEL_EXPORTER_OTLP_ENDPOINT"),
		DiarizeChunkSentences: v.GetInt("DIARIZE_CHUNK_SENTENCES"),
		DiarizeConcurrency:    v.GetInt("DIARIZE_CONCURRENCY"),
		AnalysisRateLimit:     v.GetInt("ANALYSIS_RATE_LIMIT"),
		PromptFieldLimit:      v.GetInt("PROMPT_FIELD_LIMIT"),
		AI:                    loadAIConfig(v),
	}

	if cfg.DiarizeChunkSentences <= 0 {
		cfg.DiarizeChunkSentences = 15
	}
	if cfg.DiarizeConcurrency <= 0 {
		cfg.DiarizeConcurrency = 1
	}

	return cfg, nil
}

// IsDevelopment reports whether the process runs in a development environment
func (c *Config) IsDevelopment() bool {
	return c.Env == "" || c.Env == "development" || c.Env == "dev"
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", "development")
	v.SetDefault("PORT", "8080")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("MONGO_URI", "mongodb://localhost:27017")
	v.SetDefault("MONGO_DB", "rolecoach")
	v.SetDefault("REDIS_URI", "localhost:6379")
	v.SetDefault("JWT_SECRET", "change-me-in-production")
	v.SetDefault("TRAINER_USERNAME", "docente")
	v.SetDefault("TRAINER_PASSWORD", "password123")
	v.SetDefault("CORS_ALLOWED_ORIGINS", "*")
	v.SetDefault("DIARIZE_CHUNK_SENTENCES", 15)
	v.SetDefault("DIARIZE_CONCURRENCY", 1)
	v.SetDefault("ANALYSIS_RATE_LIMIT", 20)
	v.SetDefault("PROMPT_FIELD_LIMIT", 12000)

	v.SetDefault("AI_PROVIDER", ProviderOpenAI)
	v.SetDefault("AI_MODEL_ANALYSIS", "gpt-4o-mini")
	v.SetDefault("AI_MODEL_DIARIZE", "gpt-4o-mini")
	v.SetDefault("AI_TEMPERATURE_ANALYSIS", 0.2)
	v.SetDefault("AI_TEMPERATURE_DIARIZE", 0.0)
	v.SetDefault("AI_TIMEOUT_MS", 90000)
	v.SetDefault("AI_MAX_RETRIES", 3)
}
