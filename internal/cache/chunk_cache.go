package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"rolecoach/internal/model"
)

// ChunkCache remembers the turns extracted for a transcript chunk so repeated
// diarizations of the same text skip the model call.
type ChunkCache interface {
	Get(ctx context.Context, modelName, chunk string) ([]model.DiarizedTurn, error)
	Set(ctx context.Context, modelName, chunk string, turns []model.DiarizedTurn) error
}

type chunkCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewChunkCache creates a chunk cache with a 24h TTL
func NewChunkCache(client *redis.Client) ChunkCache {
	return &chunkCache{
		client: client,
		ttl:    24 * time.Hour,
	}
}

func (c *chunkCache) key(modelName, chunk string) string {
	sum := sha256.Sum256([]byte(modelName + "\x00" + chunk))
	return "diarize:chunk:" + hex.EncodeToString(sum[:])
}

// Get returns nil, nil on a miss
func (c *chunkCache) Get(ctx context.Context, modelName, chunk string) ([]model.DiarizedTurn, error) {
	data, err := c.client.Get(ctx, c.key(modelName, chunk)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var turns []model.DiarizedTurn
	if err := json.Unmarshal([]byte(data), &turns); err != nil {
		return nil, err
	}
	return turns, nil
}

func (c *chunkCache) Set(ctx context.Context, modelName, chunk string, turns []model.DiarizedTurn) error {
	data, err := json.Marshal(turns)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.key(modelName, chunk), data, c.ttl).Err()
}
