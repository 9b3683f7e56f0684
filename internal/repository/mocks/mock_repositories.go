package mocks

import (
	"context"

	"storyapi/internal/model"
	"storyapi/internal/repository"

	"github.com/stretchr/testify/mock"
)

type MockStoryRepository struct {
	mock.Mock
}

func (m *MockStoryRepository) Create(ctx context.Context, s *model.Story) (string, error) {
	args := m.Called(ctx, s)
	return args.String(0), args.Error(1)
}

func (m *MockStoryRepository) Update(ctx context.Context, s *model.Story, withCover bool) (int64, error) {
	args := m.Called(ctx, s, withCover)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockStoryRepository) FindByID(ctx context.Context, id string) (*model.Story, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Story), args.Error(1)
}

func (m *MockStoryRepository) ListByUser(ctx context.Context, userID string, pq repository.PageQuery) (*repository.PageResult[model.Story], error) {
	args := m.Called(ctx, userID, pq)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.PageResult[model.Story]), args.Error(1)
}

type MockPageRepository struct {
	mock.Mock
}

func (m *MockPageRepository) Create(ctx context.Context, p *model.StoryPage) (string, error) {
	args := m.Called(ctx, p)
	return args.String(0), args.Error(1)
}

func (m *MockPageRepository) Update(ctx context.Context, p *model.StoryPage, withImage bool) (int64, error) {
	args := m.Called(ctx, p, withImage)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockPageRepository) FindByID(ctx context.Context, id string) (*model.StoryPage, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.StoryPage), args.Error(1)
}

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) FindByID(ctx context.Context, id string) (*model.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) UpdateProfile(ctx context.Context, u *model.User, withImage bool) (int64, error) {
	args := m.Called(ctx, u, withImage)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockUserRepository) DisplayName(ctx context.Context, id string) (string, error) {
	args := m.Called(ctx, id)
	return args.String(0), args.Error(1)
}

func (m *MockUserRepository) PushToken(ctx context.Context, id string) (string, error) {
	args := m.Called(ctx, id)
	return args.String(0), args.Error(1)
}

type MockFollowerRepository struct {
	mock.Mock
}

func (m *MockFollowerRepository) Followers(ctx context.Context, userID string) ([]model.Recipient, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Recipient), args.Error(1)
}
