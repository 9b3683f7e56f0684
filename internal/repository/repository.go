// Package repository contains data access layer abstractions.
// Implementations live in subpackages (e.g., postgres) inside this directory.
// No business logic here: strictly persistence operations.
package repository

import (
	"context"

	"storyapi/internal/model"
)

// StoryRepository persists stories.
type StoryRepository interface {
	// Create inserts a story and returns the identifier assigned to it.
	Create(ctx context.Context, s *model.Story) (string, error)

	// Update writes title and description. The cover column is only written when withCover is true.
	// Returns the number of affected rows.
	Update(ctx context.Context, s *model.Story, withCover bool) (int64, error)

	// FindByID returns a story by its ID.
	FindByID(ctx context.Context, id string) (*model.Story, error)

	// ListByUser returns a page of stories owned by userID, newest first.
	ListByUser(ctx context.Context, userID string, pq PageQuery) (*PageResult[model.Story], error)
}

// PageRepository persists story pages.
type PageRepository interface {
	Create(ctx context.Context, p *model.StoryPage) (string, error)
	// Update writes number and content. The image column is only written when withImage is true.
	Update(ctx context.Context, p *model.StoryPage, withImage bool) (int64, error)
	FindByID(ctx context.Context, id string) (*model.StoryPage, error)
}

// UserRepository persists profiles and answers the lookups notification dispatch needs.
type UserRepository interface {
	FindByID(ctx context.Context, id string) (*model.User, error)
	// UpdateProfile writes the display name, and the image column when withImage is true.
	UpdateProfile(ctx context.Context, u *model.User, withImage bool) (int64, error)
	// DisplayName returns the user's display name.
	DisplayName(ctx context.Context, id string) (string, error)
	// PushToken returns the user's push token, or "" when none is registered.
	PushToken(ctx context.Context, id string) (string, error)
}

// FollowerRepository resolves who follows a user.
type FollowerRepository interface {
	// Followers returns the followers of userID ordered by follow time.
	Followers(ctx context.Context, userID string) ([]model.Recipient, error)
}

// PageQuery holds limit/offset pagination parameters.
type PageQuery struct {
	Limit  int
	Offset int
}

// PageResult is a generic pagination result wrapper.
// T is typically a model type.
type PageResult[T any] struct {
	Items []T
	Total int
}
