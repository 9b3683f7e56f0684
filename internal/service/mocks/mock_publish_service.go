package mocks

import (
	"context"

	"storyapi/internal/model"
	"storyapi/internal/service"

	"github.com/stretchr/testify/mock"
)

type MockPublishService struct {
	mock.Mock
}

func (m *MockPublishService) CreateStory(ctx context.Context, in service.StoryInput) (*model.Story, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Story), args.Error(1)
}

func (m *MockPublishService) UpdateStory(ctx context.Context, in service.StoryInput) (*model.Story, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Story), args.Error(1)
}

func (m *MockPublishService) GetStory(ctx context.Context, id string) (*model.Story, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Story), args.Error(1)
}

func (m *MockPublishService) ListStories(ctx context.Context, userID string, limit, offset int) (*service.StoryListResult, error) {
	args := m.Called(ctx, userID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.StoryListResult), args.Error(1)
}

func (m *MockPublishService) CreatePage(ctx context.Context, in service.PageInput) (*model.StoryPage, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.StoryPage), args.Error(1)
}

func (m *MockPublishService) UpdatePage(ctx context.Context, in service.PageInput) (*model.StoryPage, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.StoryPage), args.Error(1)
}

func (m *MockPublishService) UpdateProfile(ctx context.Context, in service.ProfileInput) (*model.User, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}
