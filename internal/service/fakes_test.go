package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"rolecoach/internal/model"
)

// fakeInvoker answers by user prompt through respond, counting calls
type fakeInvoker struct {
	mu       sync.Mutex
	calls    []InvokeRequest
	respond  func(req InvokeRequest) (string, error)
	useMocks bool
}

func (f *fakeInvoker) Invoke(ctx context.Context, req InvokeRequest) (string, error) {
	f.mu.Lock()
	f.calls = append(f.calls, req)
	f.mu.Unlock()
	if f.useMocks {
		return req.Mock, nil
	}
	return f.respond(req)
}

func (f *fakeInvoker) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

type fakeRepo struct {
	mu        sync.Mutex
	instances map[string]*model.ExerciseInstance
	saves     int
	saveErr   error
	loadErr   error
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{instances: map[string]*model.ExerciseInstance{}}
}

func (r *fakeRepo) LoadInstance(ctx context.Context, id string) (*model.ExerciseInstance, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.loadErr != nil {
		return nil, r.loadErr
	}
	inst, ok := r.instances[id]
	if !ok {
		return nil, nil
	}
	cp := *inst
	return &cp, nil
}

func (r *fakeRepo) SaveInstance(ctx context.Context, inst *model.ExerciseInstance) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.saveErr != nil {
		return r.saveErr
	}
	r.saves++
	cp := *inst
	r.instances[inst.InstanceID] = &cp
	return nil
}

func (r *fakeRepo) EnsureIndexes(ctx context.Context) {}

type broadcastEvent struct {
	session string
	msgType string
	payload interface{}
}

type fakeBroadcaster struct {
	mu     sync.Mutex
	events []broadcastEvent
}

func (b *fakeBroadcaster) BroadcastToSession(sessionID, msgType string, payload interface{}) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, broadcastEvent{sessionID, msgType, payload})
}

func (b *fakeBroadcaster) all() []broadcastEvent {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]broadcastEvent(nil), b.events...)
}

type memChunkCache struct {
	mu      sync.Mutex
	entries map[string][]model.DiarizedTurn
}

func newMemChunkCache() *memChunkCache {
	return &memChunkCache{entries: map[string][]model.DiarizedTurn{}}
}

func (c *memChunkCache) Get(ctx context.Context, modelName, chunk string) ([]model.DiarizedTurn, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.entries[modelName+"|"+chunk], nil
}

func (c *memChunkCache) Set(ctx context.Context, modelName, chunk string, turns []model.DiarizedTurn) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[modelName+"|"+chunk] = turns
	return nil
}

type memProgressCache struct {
	mu     sync.Mutex
	latest map[string]model.DiarizationProgress
}

func (c *memProgressCache) Set(ctx context.Context, p *model.DiarizationProgress) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.latest == nil {
		c.latest = map[string]model.DiarizationProgress{}
	}
	c.latest[p.SessionID] = *p
	return nil
}

func (c *memProgressCache) Get(ctx context.Context, sessionID string) (*model.DiarizationProgress, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	p, ok := c.latest[sessionID]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (c *memProgressCache) Delete(ctx context.Context, sessionID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.latest, sessionID)
	return nil
}

type fakeLimiter struct {
	allow bool
	err   error
	keys  []string
}

func (l *fakeLimiter) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	l.keys = append(l.keys, key)
	return l.allow, l.err
}

var errBoom = errors.New("boom")
