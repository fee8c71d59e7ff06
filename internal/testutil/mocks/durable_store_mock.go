package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/vytor/profilehub/internal/models"
)

// MockDurableStore is a mock implementation of store.DurableStore
type MockDurableStore struct {
	mock.Mock
}

func (m *MockDurableStore) LoadAll(ctx context.Context) ([]models.Profile, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Profile), args.Error(1)
}

func (m *MockDurableStore) SaveAll(ctx context.Context, profiles []models.Profile) error {
	args := m.Called(ctx, profiles)
	return args.Error(0)
}

func (m *MockDurableStore) UpsertAge(ctx context.Context, username string, age int) (bool, error) {
	args := m.Called(ctx, username, age)
	return args.Bool(0), args.Error(1)
}

func (m *MockDurableStore) DeleteByUsername(ctx context.Context, username string) (bool, error) {
	args := m.Called(ctx, username)
	return args.Bool(0), args.Error(1)
}

func (m *MockDurableStore) FindByUsername(ctx context.Context, username string) (*models.Profile, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Profile), args.Error(1)
}

func (m *MockDurableStore) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
