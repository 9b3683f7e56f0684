package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"storyapi/internal/model"
	"storyapi/internal/repository"
)

var (
	ErrIDRequired        = errors.New("id is required")
	ErrNotFound          = errors.New("record not found")
	ErrOwnerRequired     = errors.New("user id is required")
	ErrTitleRequired     = errors.New("title is required")
	ErrInvalidPageNumber = errors.New("page number must be positive")
)

// Texts appended to the follower's display name in push notifications.
const (
	NoticeStoryCreated   = "created new story"
	NoticeStoryUpdated   = "updated story"
	NoticePageCreated    = "added a new story page"
	NoticePageUpdated    = "updated a story page"
	NoticeProfileUpdated = "updated profile image"
)

// StoryInput carries the fields of a story create or update request.
// CoverURL may hold a gallery URL to copy from.
type StoryInput struct {
	ID          string
	UserID      string
	Title       string
	Description string
	CoverURL    string
	Upload      *Upload
}

// PageInput carries the fields of a story page create or update request.
type PageInput struct {
	ID         string
	StoryID    string
	PageNumber int
	Content    string
	ImageURL   string
	Upload     *Upload
}

// ProfileInput carries the fields of a profile update. An empty DisplayName keeps the current one.
type ProfileInput struct {
	UserID      string
	DisplayName string
	ImageURL    string
	Upload      *Upload
}

// StoryListResult is the service-level DTO for paginated stories.
type StoryListResult struct {
	Items []model.Story `json:"data"`
	Total int           `json:"total"`
}

// PublishService defines the use cases that publish stories, pages and profile images.
type PublishService interface {
	// CreateStory stores the cover (upload or gallery copy), inserts the story and notifies followers.
	CreateStory(ctx context.Context, in StoryInput) (*model.Story, error)

	// UpdateStory rewrites title and description, and the cover when a new one is supplied.
	UpdateStory(ctx context.Context, in StoryInput) (*model.Story, error)

	// GetStory returns a single story by its ID.
	GetStory(ctx context.Context, id string) (*model.Story, error)

	// ListStories returns stories of a user using limit/offset and a total count.
	ListStories(ctx context.Context, userID string, limit, offset int) (*StoryListResult, error)

	CreatePage(ctx context.Context, in PageInput) (*model.StoryPage, error)
	UpdatePage(ctx context.Context, in PageInput) (*model.StoryPage, error)

	// UpdateProfile rewrites the display name and, when supplied, the profile image.
	UpdateProfile(ctx context.Context, in ProfileInput) (*model.User, error)
}

// publishService is a concrete implementation of PublishService.
type publishService struct {
	pipeline *Pipeline
	stories  repository.StoryRepository
	pages    repository.PageRepository
	users    repository.UserRepository
}

// NewPublishService constructs a new PublishService.
func NewPublishService(p *Pipeline, stories repository.StoryRepository, pages repository.PageRepository, users repository.UserRepository) PublishService {
	return &publishService{pipeline: p, stories: stories, pages: pages, users: users}
}

func (s *publishService) CreateStory(ctx context.Context, in StoryInput) (*model.Story, error) {
	if in.UserID == "" {
		return nil, ErrOwnerRequired
	}
	if strings.TrimSpace(in.Title) == "" {
		return nil, ErrTitleRequired
	}

	now := time.Now().UTC()
	story := &model.Story{
		ID:          uuid.New().String(),
		UserID:      in.UserID,
		Title:       in.Title,
		Description: in.Description,
		CoverURL:    in.CoverURL,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	_, err := s.pipeline.Publish(ctx, Job{
		ActorID:  in.UserID,
		OwnerID:  in.UserID,
		Category: model.CategoryStoryCover,
		Upload:   in.Upload,
		AssetURL: &story.CoverURL,
		Notice:   NoticeStoryCreated,
		Persist: func(ctx context.Context, _ bool) (model.PersistResult, error) {
			id, err := s.stories.Create(ctx, story)
			return model.PersistResult{ID: id}, err
		},
	})
	if err != nil {
		return nil, err
	}
	return story, nil
}

func (s *publishService) UpdateStory(ctx context.Context, in StoryInput) (*model.Story, error) {
	if in.ID == "" {
		return nil, ErrIDRequired
	}
	if strings.TrimSpace(in.Title) == "" {
		return nil, ErrTitleRequired
	}
	// The stored owner decides where the cover lives and whose followers hear about it.
	current, err := s.findStory(ctx, in.ID)
	if err != nil {
		return nil, err
	}

	next := *current
	next.Title = in.Title
	next.Description = in.Description
	next.CoverURL = in.CoverURL

	out, err := s.pipeline.Publish(ctx, Job{
		ActorID:  current.UserID,
		OwnerID:  current.UserID,
		Category: model.CategoryStoryCover,
		Upload:   in.Upload,
		AssetURL: &next.CoverURL,
		Notice:   NoticeStoryUpdated,
		Persist: func(ctx context.Context, coverChanged bool) (model.PersistResult, error) {
			n, err := s.stories.Update(ctx, &next, coverChanged)
			return model.PersistResult{RowsAffected: n}, err
		},
	})
	if err != nil {
		return nil, notFoundIfUnpersisted(err)
	}
	if out.Source == SourceNone {
		next.CoverURL = current.CoverURL
	}
	next.UpdatedAt = time.Now().UTC()
	return &next, nil
}

// GetStory returns a story by ID.
func (s *publishService) GetStory(ctx context.Context, id string) (*model.Story, error) {
	if id == "" {
		return nil, ErrIDRequired
	}
	return s.findStory(ctx, id)
}

// ListStories returns paginated stories without exposing repository types.
func (s *publishService) ListStories(ctx context.Context, userID string, limit, offset int) (*StoryListResult, error) {
	if userID == "" {
		return nil, ErrOwnerRequired
	}
	if limit <= 0 {
		limit = 10
	}
	if offset < 0 {
		offset = 0
	}

	res, err := s.stories.ListByUser(ctx, userID, repository.PageQuery{Limit: limit, Offset: offset})
	if err != nil {
		return nil, err
	}
	return &StoryListResult{Items: res.Items, Total: res.Total}, nil
}

func (s *publishService) CreatePage(ctx context.Context, in PageInput) (*model.StoryPage, error) {
	if in.StoryID == "" {
		return nil, ErrIDRequired
	}
	if in.PageNumber <= 0 {
		return nil, ErrInvalidPageNumber
	}
	story, err := s.findStory(ctx, in.StoryID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	page := &model.StoryPage{
		ID:         uuid.New().String(),
		StoryID:    story.ID,
		PageNumber: in.PageNumber,
		Content:    in.Content,
		ImageURL:   in.ImageURL,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	_, err = s.pipeline.Publish(ctx, Job{
		ActorID:  story.UserID,
		OwnerID:  story.UserID,
		Category: model.CategoryStoryPage,
		Upload:   in.Upload,
		AssetURL: &page.ImageURL,
		Notice:   NoticePageCreated,
		Persist: func(ctx context.Context, _ bool) (model.PersistResult, error) {
			id, err := s.pages.Create(ctx, page)
			return model.PersistResult{ID: id}, err
		},
	})
	if err != nil {
		return nil, err
	}
	return page, nil
}

func (s *publishService) UpdatePage(ctx context.Context, in PageInput) (*model.StoryPage, error) {
	if in.ID == "" || in.StoryID == "" {
		return nil, ErrIDRequired
	}
	if in.PageNumber <= 0 {
		return nil, ErrInvalidPageNumber
	}
	story, err := s.findStory(ctx, in.StoryID)
	if err != nil {
		return nil, err
	}
	current, err := s.pages.FindByID(ctx, in.ID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if current.StoryID != story.ID {
		return nil, ErrNotFound
	}

	next := *current
	next.PageNumber = in.PageNumber
	next.Content = in.Content
	next.ImageURL = in.ImageURL

	out, err := s.pipeline.Publish(ctx, Job{
		ActorID:  story.UserID,
		OwnerID:  story.UserID,
		Category: model.CategoryStoryPage,
		Upload:   in.Upload,
		AssetURL: &next.ImageURL,
		Notice:   NoticePageUpdated,
		Persist: func(ctx context.Context, imageChanged bool) (model.PersistResult, error) {
			n, err := s.pages.Update(ctx, &next, imageChanged)
			return model.PersistResult{RowsAffected: n}, err
		},
	})
	if err != nil {
		return nil, notFoundIfUnpersisted(err)
	}
	if out.Source == SourceNone {
		next.ImageURL = current.ImageURL
	}
	next.UpdatedAt = time.Now().UTC()
	return &next, nil
}

func (s *publishService) UpdateProfile(ctx context.Context, in ProfileInput) (*model.User, error) {
	if in.UserID == "" {
		return nil, ErrIDRequired
	}
	current, err := s.users.FindByID(ctx, in.UserID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	next := *current
	if name := strings.TrimSpace(in.DisplayName); name != "" {
		next.DisplayName = name
	}
	next.ImageURL = in.ImageURL

	out, err := s.pipeline.Publish(ctx, Job{
		ActorID:  current.ID,
		OwnerID:  current.ID,
		Category: model.CategoryUserImage,
		Upload:   in.Upload,
		AssetURL: &next.ImageURL,
		Notice:   NoticeProfileUpdated,
		Persist: func(ctx context.Context, imageChanged bool) (model.PersistResult, error) {
			n, err := s.users.UpdateProfile(ctx, &next, imageChanged)
			return model.PersistResult{RowsAffected: n}, err
		},
	})
	if err != nil {
		return nil, notFoundIfUnpersisted(err)
	}
	if out.Source == SourceNone {
		next.ImageURL = current.ImageURL
	}
	next.UpdatedAt = time.Now().UTC()
	return &next, nil
}

func (s *publishService) findStory(ctx context.Context, id string) (*model.Story, error) {
	story, err := s.stories.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return story, nil
}

// notFoundIfUnpersisted maps an update that matched no row to ErrNotFound.
func notFoundIfUnpersisted(err error) error {
	if errors.Is(err, ErrNotPersisted) {
		return errors.Join(ErrNotFound, err)
	}
	return err
}
