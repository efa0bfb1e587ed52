package repository

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"rolecoach/internal/log"
	"rolecoach/internal/model"
)

// ExerciseRepo handles MongoDB operations for exercise instances
type ExerciseRepo interface {
	// LoadInstance returns nil, nil when no instance has the id.
	LoadInstance(ctx context.Context, instanceID string) (*model.ExerciseInstance, error)
	// SaveInstance upserts by instanceId. Last writer wins.
	SaveInstance(ctx context.Context, instance *model.ExerciseInstance) error
	EnsureIndexes(ctx context.Context)
}

type exerciseRepo struct {
	instances *mongo.Collection
}

// NewExerciseRepo creates a new exercise repository
func NewExerciseRepo(db *mongo.Database) ExerciseRepo {
	return &exerciseRepo{
		instances: db.Collection("exercise_instances"),
	}
}

func (r *exerciseRepo) LoadInstance(ctx context.Context, instanceID string) (*model.ExerciseInstance, error) {
	var instance model.ExerciseInstance
	err := r.instances.FindOne(ctx, bson.M{"instanceId": instanceID}).Decode(&instance)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &instance, nil
}

func (r *exerciseRepo) SaveInstance(ctx context.Context, instance *model.ExerciseInstance) error {
	now := time.Now()
	if instance.CreatedAt.IsZero() {
		instance.CreatedAt = now
	}
	if instance.UpdatedAt.IsZero() {
		instance.UpdatedAt = now
	}
	opts := options.Replace().SetUpsert(true)
	_, err := r.instances.ReplaceOne(ctx, bson.M{"instanceId": instance.InstanceID}, instance, opts)
	return err
}

// EnsureIndexes creates the lookup indexes. Failures are logged, not fatal.
func (r *exerciseRepo) EnsureIndexes(ctx context.Context) {
	r.createIndex(ctx, bson.D{{Key: "instanceId", Value: 1}}, true)
	r.createIndex(ctx, bson.D{
		{Key: "exerciseId", Value: 1},
		{Key: "updatedAt", Value: -1},
	}, false)
	r.createIndex(ctx, bson.D{{Key: "sessionId", Value: 1}}, false)

	log.Info().Str("collection", r.instances.Name()).Msg("exercise indexes ensured")
}

func (r *exerciseRepo) createIndex(ctx context.Context, keys bson.D, unique bool) {
	opts := options.Index().SetUnique(unique)
	_, err := r.instances.Indexes().CreateOne(ctx, mongo.IndexModel{Keys: keys, Options: opts})
	if err != nil {
		log.Warn().Err(err).Str("collection", r.instances.Name()).Msg("failed to create index")
	}
}
