package main

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"rolecoach/internal/config"
	"rolecoach/internal/log"
	"rolecoach/internal/model"
	"rolecoach/internal/repository"
	"rolecoach/internal/service"
)

const demoInstanceID = "demo-role-play-0001"

const demoTranscript = `Hola, bienvenida. ¿Cómo te has sentido esta semana? ` +
	`He estado muy cansada, casi no duermo. ` +
	`Entiendo, eso suena agotador. ¿Qué pasa por tu cabeza cuando no puedes dormir? ` +
	`Pienso en el trabajo y en que no voy a poder con todo. ` +
	`Parece que sientes mucha presión. ¿Desde cuándo te pasa? ` +
	`Desde que cambiaron a mi jefe, hace unos dos meses.`

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	log.Init(cfg.IsDevelopment(), cfg.LogLevel)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to MongoDB")
	}
	defer client.Disconnect(context.Background())

	repo := repository.NewExerciseRepo(client.Database(cfg.MongoDB))
	repo.EnsureIndexes(ctx)

	authSvc := service.NewAuthService(cfg.TrainerUsername, cfg.TrainerPassword, cfg.JWTSecret)
	login, err := authSvc.Login(cfg.TrainerUsername, cfg.TrainerPassword)
	if err != nil {
		log.Fatal().Err(err).Msg("trainer credentials rejected")
	}

	data := map[string]any{
		"transcript": demoTranscript,
		"caso":       "Mujer de 34 años, consulta por insomnio y estrés laboral.",
	}
	now := time.Now()
	instance := &model.ExerciseInstance{
		InstanceID: demoInstanceID,
		ExerciseID: "demo-exercise",
		SessionID:  "demo-session",
		TrainerID:  login.TrainerID,
		Type:       model.ExerciseTypeRolePlay,
		Data:       data,
		CreatedAt:  now,
	}
	if err := repo.SaveInstance(ctx, instance); err != nil {
		log.Fatal().Err(err).Msg("failed to insert exercise instance")
	}

	// mock provider so seeding never calls a paid model
	evaluator := service.NewEvaluatorService(&config.AIConfig{Provider: config.ProviderMock})
	analysisSvc := service.NewAnalysisService(evaluator, repo, nil, nil, service.AnalysisOptions{
		FieldLimit: cfg.PromptFieldLimit,
	}, true)

	envelope, err := analysisSvc.AnalyzeRolePlay(ctx, model.RolePlayRequest{
		ExerciseID:  instance.ExerciseID,
		Type:        model.ExerciseTypeRolePlay,
		Evaluations: []string{"rapport", "empatia", "preguntas_abiertas"},
		Tools:       json.RawMessage(`{"ficha": true}`),
		Data:        data,
		Approach:    "cognitivo-conductual",
		InstanceID:  demoInstanceID,
		SessionID:   instance.SessionID,
		Replace:     true,
		Source:      model.SourceMock,
	}, login.TrainerID)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to store demo analysis")
	}

	fmt.Printf("Seeded exercise instance %q for trainer %q (general score %d)\n",
		demoInstanceID, login.TrainerID, envelope.GeneralScore)
}
