package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/vytor/profilehub/internal/config"
	"github.com/vytor/profilehub/internal/models"
	"github.com/vytor/profilehub/internal/services"
)

// MockProfileService is a mock implementation of services.ProfileService
type MockProfileService struct {
	mock.Mock
}

func (m *MockProfileService) ListProfiles(ctx context.Context) []models.Profile {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).([]models.Profile)
}

func (m *MockProfileService) CreateProfile(ctx context.Context, in services.CreateProfileInput) (*models.Profile, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Profile), args.Error(1)
}

func (m *MockProfileService) GetProfile(ctx context.Context, username string) (*models.Profile, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Profile), args.Error(1)
}

func (m *MockProfileService) RenameProfile(ctx context.Context, currentName, newName string) error {
	args := m.Called(ctx, currentName, newName)
	return args.Error(0)
}

func (m *MockProfileService) UpdateAge(ctx context.Context, username string, age int) error {
	args := m.Called(ctx, username, age)
	return args.Error(0)
}

func (m *MockProfileService) DeleteProfile(ctx context.Context, username string) error {
	args := m.Called(ctx, username)
	return args.Error(0)
}

func (m *MockProfileService) SearchStored(ctx context.Context, username string) (*models.Profile, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Profile), args.Error(1)
}

func (m *MockProfileService) SortedProfiles(ctx context.Context, by services.SortKey) ([]models.Profile, error) {
	args := m.Called(ctx, by)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Profile), args.Error(1)
}

func (m *MockProfileService) GroupByInterest(ctx context.Context, interest string) models.ProfileGroup {
	args := m.Called(ctx, interest)
	return args.Get(0).(models.ProfileGroup)
}

func (m *MockProfileService) FindMatches(ctx context.Context, username string, minAge, maxAge int) ([]models.Profile, error) {
	args := m.Called(ctx, username, minAge, maxAge)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Profile), args.Error(1)
}

func (m *MockProfileService) SwitchRole(ctx context.Context, role string) config.Role {
	args := m.Called(ctx, role)
	return args.Get(0).(config.Role)
}

func (m *MockProfileService) Interests() []string {
	args := m.Called()
	return args.Get(0).([]string)
}

func (m *MockProfileService) Save(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockProfileService) Ready(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
