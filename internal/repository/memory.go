package repository

import (
	"context"
	"sync"
	"time"

	"pawcare/internal/models"
)

type memoryEntry struct {
	state     models.DraftState
	expiresAt time.Time
}

type MemoryDraftRepository struct {
	states     sync.Map
	rateLimits sync.Map
	rateMu     sync.Mutex
	ttl        time.Duration
	now        func() time.Time
}

func NewMemoryDraftRepository(ttl time.Duration) *MemoryDraftRepository {
	return &MemoryDraftRepository{
		ttl: ttl,
		now: time.Now,
	}
}

func (r *MemoryDraftRepository) GetDraft(ctx context.Context, sessionID string) (*models.DraftState, error) {
	val, ok := r.states.Load(sessionID)
	if !ok {
		return nil, nil
	}
	entry := val.(*memoryEntry)
	if r.ttl > 0 && r.now().After(entry.expiresAt) {
		r.states.CompareAndDelete(sessionID, val)
		return nil, nil
	}
	state := entry.state
	state.Draft = state.Draft.Clone()
	return &state, nil
}

func (r *MemoryDraftRepository) SaveDraft(ctx context.Context, state *models.DraftState) error {
	stored := *state
	stored.Draft = state.Draft.Clone()
	r.states.Store(state.SessionID, &memoryEntry{
		state:     stored,
		expiresAt: r.now().Add(r.ttl),
	})
	return nil
}

func (r *MemoryDraftRepository) DeleteDraft(ctx context.Context, sessionID string) error {
	r.states.Delete(sessionID)
	return nil
}

type rateLimitEntry struct {
	count     int
	expiresAt time.Time
}

func (r *MemoryDraftRepository) CheckRateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	r.rateMu.Lock()
	defer r.rateMu.Unlock()

	now := r.now()
	val, ok := r.rateLimits.Load(key)

	var entry *rateLimitEntry
	if !ok {
		entry = &rateLimitEntry{
			count:     1,
			expiresAt: now.Add(window),
		}
	} else {
		entry = val.(*rateLimitEntry)
		if now.After(entry.expiresAt) {
			entry.count = 1
			entry.expiresAt = now.Add(window)
		} else {
			entry.count++
		}
	}

	r.rateLimits.Store(key, entry)
	return entry.count <= limit, nil
}
