package repository

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"pawcare/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type mockRepo struct {
	mock.Mock
}

func (m *mockRepo) GetDraft(ctx context.Context, sessionID string) (*models.DraftState, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.DraftState), args.Error(1)
}

func (m *mockRepo) SaveDraft(ctx context.Context, state *models.DraftState) error {
	args := m.Called(ctx, state)
	return args.Error(0)
}

func (m *mockRepo) DeleteDraft(ctx context.Context, sessionID string) error {
	args := m.Called(ctx, sessionID)
	return args.Error(0)
}

func (m *mockRepo) CheckRateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	args := m.Called(ctx, key, limit, window)
	return args.Bool(0), args.Error(1)
}

func TestFailoverDraftRepository(t *testing.T) {
	primary := new(mockRepo)
	fallback := new(mockRepo)
	logger := zerolog.New(io.Discard)
	repo := NewFailoverDraftRepository(primary, fallback, &logger)
	ctx := context.Background()

	setDown := func(ago time.Duration) {
		repo.isDown.Store(true)
		repo.lastCheck = time.Now().Add(-ago)
	}

	t.Run("PrimarySuccess", func(t *testing.T) {
		state := &models.DraftState{SessionID: "a"}
		primary.On("GetDraft", ctx, "a").Return(state, nil).Once()

		got, err := repo.GetDraft(ctx, "a")
		assert.NoError(t, err)
		assert.Equal(t, state, got)
		primary.AssertExpectations(t)
	})

	t.Run("PrimaryFailFallbackSuccess", func(t *testing.T) {
		state := &models.DraftState{SessionID: "b"}
		primary.On("GetDraft", ctx, "b").Return(nil, errors.New("fail")).Once()
		fallback.On("GetDraft", ctx, "b").Return(state, nil).Once()

		got, err := repo.GetDraft(ctx, "b")
		assert.NoError(t, err)
		assert.Equal(t, state, got)
		assert.True(t, repo.isDown.Load())
		primary.AssertExpectations(t)
		fallback.AssertExpectations(t)
	})

	t.Run("RecoveryAttempt", func(t *testing.T) {
		setDown(2 * time.Minute)

		state := &models.DraftState{SessionID: "c"}
		primary.On("GetDraft", ctx, "c").Return(state, nil).Once()

		got, err := repo.GetDraft(ctx, "c")
		assert.NoError(t, err)
		assert.Equal(t, state, got)
		assert.False(t, repo.isDown.Load())
		primary.AssertExpectations(t)
	})

	t.Run("RecoveryAttemptFail", func(t *testing.T) {
		setDown(2 * time.Minute)

		primary.On("GetDraft", ctx, "cc").Return(nil, errors.New("still fail")).Once()
		fallback.On("GetDraft", ctx, "cc").Return(nil, nil).Once()

		_, err := repo.GetDraft(ctx, "cc")
		assert.NoError(t, err)
		assert.True(t, repo.isDown.Load())
		primary.AssertExpectations(t)
		fallback.AssertExpectations(t)
	})

	t.Run("SaveDraftSuccess", func(t *testing.T) {
		repo.isDown.Store(false)
		state := &models.DraftState{SessionID: "d"}
		primary.On("SaveDraft", ctx, state).Return(nil).Once()

		err := repo.SaveDraft(ctx, state)
		assert.NoError(t, err)
		primary.AssertExpectations(t)
	})

	t.Run("DeleteDraftClearsBoth", func(t *testing.T) {
		repo.isDown.Store(false)
		primary.On("DeleteDraft", ctx, "e").Return(nil).Once()
		fallback.On("DeleteDraft", ctx, "e").Return(nil).Once()

		err := repo.DeleteDraft(ctx, "e")
		assert.NoError(t, err)
		primary.AssertExpectations(t)
		fallback.AssertExpectations(t)
	})

	t.Run("SaveDraftFailover", func(t *testing.T) {
		repo.isDown.Store(false)
		state := &models.DraftState{SessionID: "f"}
		primary.On("SaveDraft", ctx, state).Return(errors.New("fail")).Once()
		fallback.On("SaveDraft", ctx, state).Return(nil).Once()

		err := repo.SaveDraft(ctx, state)
		assert.NoError(t, err)
		assert.True(t, repo.isDown.Load())
		primary.AssertExpectations(t)
		fallback.AssertExpectations(t)
	})

	t.Run("CheckRateLimitFailover", func(t *testing.T) {
		repo.isDown.Store(false)
		primary.On("CheckRateLimit", ctx, "submit:g", 10, time.Minute).Return(false, errors.New("fail")).Once()
		fallback.On("CheckRateLimit", ctx, "submit:g", 10, time.Minute).Return(true, nil).Once()

		allowed, err := repo.CheckRateLimit(ctx, "submit:g", 10, time.Minute)
		assert.NoError(t, err)
		assert.True(t, allowed)
		assert.True(t, repo.isDown.Load())
		primary.AssertExpectations(t)
		fallback.AssertExpectations(t)
	})

	t.Run("AlreadyDownSkipsPrimary", func(t *testing.T) {
		setDown(time.Second)
		state := &models.DraftState{SessionID: "h"}
		fallback.On("SaveDraft", ctx, state).Return(nil).Once()
		fallback.On("DeleteDraft", ctx, "h").Return(nil).Once()

		assert.NoError(t, repo.SaveDraft(ctx, state))
		assert.NoError(t, repo.DeleteDraft(ctx, "h"))
		fallback.AssertExpectations(t)
		primary.AssertNotCalled(t, "SaveDraft", ctx, state)
		primary.AssertNotCalled(t, "DeleteDraft", ctx, "h")
	})
}
