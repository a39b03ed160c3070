package repository

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"pawcare/internal/domain"
	"pawcare/internal/models"

	"github.com/rs/zerolog"
)

const recoveryInterval = time.Minute

// FailoverDraftRepository serves from primary and switches to fallback while
// primary is failing, probing primary again once per recoveryInterval.
type FailoverDraftRepository struct {
	primary   domain.DraftRepository
	fallback  domain.DraftRepository
	logger    *zerolog.Logger
	isDown    atomic.Bool
	mu        sync.Mutex
	lastCheck time.Time
}

func NewFailoverDraftRepository(primary, fallback domain.DraftRepository, logger *zerolog.Logger) *FailoverDraftRepository {
	return &FailoverDraftRepository{
		primary:  primary,
		fallback: fallback,
		logger:   logger,
	}
}

func (r *FailoverDraftRepository) markDown(err error) {
	r.logger.Error().Err(err).Msg("Primary draft repository failed, falling back to memory")
	r.isDown.Store(true)
	r.mu.Lock()
	r.lastCheck = time.Now()
	r.mu.Unlock()
}

// usePrimary reports whether the call should go to primary.
func (r *FailoverDraftRepository) usePrimary() bool {
	if !r.isDown.Load() {
		return true
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if time.Since(r.lastCheck) > recoveryInterval {
		r.lastCheck = time.Now()
		return true
	}
	return false
}

func (r *FailoverDraftRepository) recovered() {
	if r.isDown.Swap(false) {
		r.logger.Info().Msg("Primary draft repository recovered")
	}
}

func (r *FailoverDraftRepository) GetDraft(ctx context.Context, sessionID string) (*models.DraftState, error) {
	if r.usePrimary() {
		state, err := r.primary.GetDraft(ctx, sessionID)
		if err == nil {
			r.recovered()
			return state, nil
		}
		r.markDown(err)
	}

	return r.fallback.GetDraft(ctx, sessionID)
}

func (r *FailoverDraftRepository) SaveDraft(ctx context.Context, state *models.DraftState) error {
	if r.usePrimary() {
		err := r.primary.SaveDraft(ctx, state)
		if err == nil {
			r.recovered()
			return nil
		}
		r.markDown(err)
	}

	return r.fallback.SaveDraft(ctx, state)
}

func (r *FailoverDraftRepository) DeleteDraft(ctx context.Context, sessionID string) error {
	if r.usePrimary() {
		err := r.primary.DeleteDraft(ctx, sessionID)
		if err == nil {
			r.recovered()
			// drafts written during an outage may live in fallback
			return r.fallback.DeleteDraft(ctx, sessionID)
		}
		r.markDown(err)
	}

	return r.fallback.DeleteDraft(ctx, sessionID)
}

func (r *FailoverDraftRepository) CheckRateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	if r.usePrimary() {
		allowed, err := r.primary.CheckRateLimit(ctx, key, limit, window)
		if err == nil {
			r.recovered()
			return allowed, nil
		}
		r.markDown(err)
	}

	return r.fallback.CheckRateLimit(ctx, key, limit, window)
}
