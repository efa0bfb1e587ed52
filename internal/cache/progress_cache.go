package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"rolecoach/internal/model"
)

// ProgressCache keeps the latest diarization progress of each session so
// subscribers that connect mid-run can catch up
type ProgressCache interface {
	Set(ctx context.Context, progress *model.DiarizationProgress) error
	// Get returns nil, nil when nothing is recorded for the session.
	Get(ctx context.Context, sessionID string) (*model.DiarizationProgress, error)
	Delete(ctx context.Context, sessionID string) error
}

type progressCache struct {
	client *redis.Client
}

func NewProgressCache(client *redis.Client) ProgressCache {
	return &progressCache{
		client: client,
	}
}

func progressKey(sessionID string) string {
	return "progress:" + sessionID
}

func (c *progressCache) Set(ctx context.Context, progress *model.DiarizationProgress) error {
	data, err := json.Marshal(progress)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, progressKey(progress.SessionID), data, 10*time.Minute).Err()
}

func (c *progressCache) Get(ctx context.Context, sessionID string) (*model.DiarizationProgress, error) {
	data, err := c.client.Get(ctx, progressKey(sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var progress model.DiarizationProgress
	if err := json.Unmarshal(data, &progress); err != nil {
		return nil, err
	}
	return &progress, nil
}

func (c *progressCache) Delete(ctx context.Context, sessionID string) error {
	return c.client.Del(ctx, progressKey(sessionID)).Err()
}
