package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"chatledger/internal/domain/entity"
	"chatledger/internal/domain/valueobject"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockRequestRepository is a mock implementation of outbound.RequestRepository.
type MockRequestRepository struct {
	mock.Mock
}

func (m *MockRequestRepository) SaveBatch(ctx context.Context, requests []*entity.Request) error {
	args := m.Called(ctx, requests)
	return args.Error(0)
}

func (m *MockRequestRepository) FindByMonth(ctx context.Context, month string) ([]*entity.Request, error) {
	args := m.Called(ctx, month)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.Request), args.Error(1)
}

func (m *MockRequestRepository) CountByCategory(ctx context.Context) (map[string]int, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]int), args.Error(1)
}

func (m *MockRequestRepository) CountByMonth(ctx context.Context) (map[string]int, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]int), args.Error(1)
}

// MockRequestPublisher is a mock implementation of outbound.RequestPublisher.
type MockRequestPublisher struct {
	mock.Mock
}

func (m *MockRequestPublisher) PublishRequests(ctx context.Context, requests []*entity.Request) error {
	args := m.Called(ctx, requests)
	return args.Error(0)
}

func newTestRequest(t *testing.T, text string) *entity.Request {
	t.Helper()
	request, err := entity.NewRequest(entity.RequestSpec{
		Timestamp:   time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC),
		RequestType: "General Request",
		Category:    "Support",
		Urgency:     valueobject.UrgencyMedium,
		Effort:      valueobject.EffortMedium,
		Text:        text,
	})
	require.NoError(t, err)
	return request
}

func TestLedgerService_Record(t *testing.T) {
	ctx := context.Background()

	t.Run("stores then publishes", func(t *testing.T) {
		requests := []*entity.Request{newTestRequest(t, "Can you fix the site?")}
		repo := new(MockRequestRepository)
		publisher := new(MockRequestPublisher)
		repo.On("SaveBatch", ctx, requests).Return(nil).Once()
		publisher.On("PublishRequests", ctx, requests).Return(nil).Once()

		svc := NewLedgerService(repo, publisher)
		require.NoError(t, svc.Record(ctx, requests))

		repo.AssertExpectations(t)
		publisher.AssertExpectations(t)
	})

	t.Run("store failure skips publishing", func(t *testing.T) {
		requests := []*entity.Request{newTestRequest(t, "Can you fix the site?")}
		repo := new(MockRequestRepository)
		publisher := new(MockRequestPublisher)
		storeErr := errors.New("connection refused")
		repo.On("SaveBatch", ctx, requests).Return(storeErr).Once()

		svc := NewLedgerService(repo, publisher)
		err := svc.Record(ctx, requests)

		require.Error(t, err)
		assert.ErrorIs(t, err, storeErr)
		assert.Contains(t, err.Error(), "failed to store requests")
		publisher.AssertNotCalled(t, "PublishRequests", mock.Anything, mock.Anything)
	})

	t.Run("publish failure is reported", func(t *testing.T) {
		requests := []*entity.Request{newTestRequest(t, "Can you fix the site?")}
		publisher := new(MockRequestPublisher)
		publishErr := errors.New("no responders")
		publisher.On("PublishRequests", ctx, requests).Return(publishErr).Once()

		svc := NewLedgerService(nil, publisher)
		err := svc.Record(ctx, requests)

		assert.ErrorIs(t, err, publishErr)
		assert.Contains(t, err.Error(), "failed to publish requests")
	})

	t.Run("empty batch touches no sink", func(t *testing.T) {
		repo := new(MockRequestRepository)
		publisher := new(MockRequestPublisher)

		svc := NewLedgerService(repo, publisher)
		require.NoError(t, svc.Record(ctx, nil))

		repo.AssertNotCalled(t, "SaveBatch", mock.Anything, mock.Anything)
		publisher.AssertNotCalled(t, "PublishRequests", mock.Anything, mock.Anything)
	})
}

func TestLedgerService_Enabled(t *testing.T) {
	assert.False(t, NewLedgerService(nil, nil).Enabled())
	assert.True(t, NewLedgerService(new(MockRequestRepository), nil).Enabled())
	assert.True(t, NewLedgerService(nil, new(MockRequestPublisher)).Enabled())
}
