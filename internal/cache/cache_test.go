package cache

import (
	"context"
	"reflect"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"rolecoach/internal/model"
)

func newTestClient(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	t.Helper()
	mini, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}
	t.Cleanup(func() { mini.Close() })

	client := redis.NewClient(&redis.Options{Addr: mini.Addr()})
	t.Cleanup(func() { client.Close() })
	return client, mini
}

func TestChunkCache_SetAndGet(t *testing.T) {
	client, mini := newTestClient(t)
	c := NewChunkCache(client)
	ctx := context.Background()

	turns := []model.DiarizedTurn{
		{Speaker: model.SpeakerTherapist, Text: "¿Qué te trae hoy?"},
		{Speaker: model.SpeakerPatient, Text: "No duermo bien."},
	}
	if err := c.Set(ctx, "gpt-4o-mini", "chunk uno", turns); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	got, err := c.Get(ctx, "gpt-4o-mini", "chunk uno")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if !reflect.DeepEqual(got, turns) {
		t.Fatalf("Get = %+v, want %+v", got, turns)
	}

	// keyed by model too
	if got, _ := c.Get(ctx, "otro-modelo", "chunk uno"); got != nil {
		t.Fatalf("expected miss for another model, got %+v", got)
	}

	mini.FastForward(25 * time.Hour)
	if got, _ := c.Get(ctx, "gpt-4o-mini", "chunk uno"); got != nil {
		t.Fatal("expected entry to expire after 24h")
	}
}

func TestChunkCache_Miss(t *testing.T) {
	client, _ := newTestClient(t)
	got, err := NewChunkCache(client).Get(context.Background(), "m", "nada")
	if err != nil || got != nil {
		t.Fatalf("Get on miss = %v, %v; want nil, nil", got, err)
	}
}

func TestRateLimiter_Window(t *testing.T) {
	client, mini := newTestClient(t)
	rl := NewRateLimiter(client)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		ok, err := rl.Allow(ctx, "analysis:trainer_1", 3, time.Minute)
		if err != nil || !ok {
			t.Fatalf("request %d: allowed=%v err=%v", i+1, ok, err)
		}
	}
	if ok, _ := rl.Allow(ctx, "analysis:trainer_1", 3, time.Minute); ok {
		t.Fatal("4th request should be limited")
	}
	if ok, _ := rl.Allow(ctx, "analysis:trainer_2", 3, time.Minute); !ok {
		t.Fatal("other keys have their own window")
	}

	mini.FastForward(61 * time.Second)
	if ok, _ := rl.Allow(ctx, "analysis:trainer_1", 3, time.Minute); !ok {
		t.Fatal("window should reset")
	}
}

func TestRateLimiter_Disabled(t *testing.T) {
	client, mini := newTestClient(t)
	rl := NewRateLimiter(client)
	for i := 0; i < 10; i++ {
		if ok, err := rl.Allow(context.Background(), "k", 0, time.Minute); !ok || err != nil {
			t.Fatalf("limit 0 should always allow, got %v %v", ok, err)
		}
	}
	if mini.Exists("ratelimit:k") {
		t.Fatal("disabled limiter should not touch redis")
	}
}

func TestProgressCache(t *testing.T) {
	client, mini := newTestClient(t)
	c := NewProgressCache(client)
	ctx := context.Background()

	got, err := c.Get(ctx, "s1")
	if err != nil || got != nil {
		t.Fatalf("Get() on empty cache = %+v, %v", got, err)
	}

	want := &model.DiarizationProgress{SessionID: "s1", Chunk: 2, Total: 3, Turns: 5}
	if err := c.Set(ctx, want); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	got, err = c.Get(ctx, "s1")
	if err != nil || !reflect.DeepEqual(got, want) {
		t.Fatalf("Get() = %+v, %v", got, err)
	}

	mini.FastForward(11 * time.Minute)
	if got, _ := c.Get(ctx, "s1"); got != nil {
		t.Errorf("progress should expire, got %+v", got)
	}

	_ = c.Set(ctx, want)
	if err := c.Delete(ctx, "s1"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if got, _ := c.Get(ctx, "s1"); got != nil {
		t.Errorf("Get() after Delete = %+v", got)
	}
}
