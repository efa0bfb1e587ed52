package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"rolecoach/internal/cache"
	"rolecoach/internal/config"
	"rolecoach/internal/log"
	"rolecoach/internal/observability"
	"rolecoach/internal/repository"
	"rolecoach/internal/service"
	"rolecoach/internal/transport/rest"
	"rolecoach/internal/transport/ws"
)

// @title RoleCoach API
// @version 1.0
// @description Role-play evaluation and transcript diarization for clinical training
// @host localhost:8080
// @BasePath /v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	log.Init(cfg.IsDevelopment(), cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracer, err := observability.InitTracer(ctx, observability.TracerConfig{
		ServiceName: "rolecoach-api",
		Environment: cfg.Env,
		Endpoint:    cfg.OTLPEndpoint,
		Insecure:    cfg.IsDevelopment(),
	})
	if err != nil {
		log.Warn().Err(err).Msg("tracing disabled")
	}

	aiConfig := cfg.AI
	log.Info().
		Str("provider", aiConfig.Provider).
		Str("analysisModel", aiConfig.Models.Analysis).
		Str("diarizeModel", aiConfig.Models.Diarize).
		Bool("apiKey", aiConfig.APIKey != "").
		Msg("AI config")

	// MongoDB connection
	mongoClient, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to MongoDB")
	}
	defer mongoClient.Disconnect(context.Background())

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := mongoClient.Ping(pingCtx, nil); err != nil {
		log.Fatal().Err(err).Msg("failed to ping MongoDB")
	}
	log.Info().Str("db", cfg.MongoDB).Msg("connected to MongoDB")

	db := mongoClient.Database(cfg.MongoDB)

	// Redis connection
	rdb := redis.NewClient(&redis.Options{
		Addr: cfg.RedisAddr,
	})
	defer rdb.Close()

	if _, err := rdb.Ping(ctx).Result(); err != nil {
		log.Fatal().Err(err).Msg("failed to ping Redis")
	}
	log.Info().Str("addr", cfg.RedisAddr).Msg("connected to Redis")

	wsHub := ws.NewHub(ctx)

	// Initialize repositories
	exerciseRepo := repository.NewExerciseRepo(db)
	exerciseRepo.EnsureIndexes(ctx)

	// Initialize caches
	chunkCache := cache.NewChunkCache(rdb)
	limiter := cache.NewRateLimiter(rdb)
	progressCache := cache.NewProgressCache(rdb)

	// Initialize services
	authSvc := service.NewAuthService(cfg.TrainerUsername, cfg.TrainerPassword, cfg.JWTSecret)
	evaluator := service.NewEvaluatorService(aiConfig)
	diarizationSvc := service.NewDiarizationService(evaluator, chunkCache, wsHub, service.DiarizationOptions{
		Model:          aiConfig.Models.Diarize,
		Temperature:    aiConfig.DiarizeTemperature,
		ChunkSentences: cfg.DiarizeChunkSentences,
		Concurrency:    cfg.DiarizeConcurrency,
	})
	diarizationSvc.SetProgressCache(progressCache)
	analysisSvc := service.NewAnalysisService(evaluator, exerciseRepo, limiter, wsHub, service.AnalysisOptions{
		Model:       aiConfig.Models.Analysis,
		Temperature: aiConfig.AnalysisTemperature,
		FieldLimit:  cfg.PromptFieldLimit,
		RateLimit:   cfg.AnalysisRateLimit,
		RateWindow:  time.Minute,
	}, evaluator.IsMock())

	router := rest.NewRouter(&rest.Container{
		AuthService:        authSvc,
		Diarizer:           diarizationSvc,
		Analyzer:           analysisSvc,
		WSHub:              wsHub,
		Progress:           progressCache,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ErrorLog:          log.StdErrorLogger(),
	}

	go func() {
		log.Info().Str("port", cfg.Port).Str("trainer", cfg.TrainerUsername).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("listen failed")
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}
	if err := shutdownTracer(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("tracer shutdown failed")
	}

	log.Info().Msg("server exited")
}
