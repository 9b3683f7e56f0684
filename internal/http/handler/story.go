package handler

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"storyapi/internal/service"
)

// CreateStory handles POST /stories (multipart: file, user_id, title, description, cover_url).
func CreateStory(svc service.PublishService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		up, done, err := formUpload(c)
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_OPEN_ERROR", "cannot open uploaded file")
		}
		defer done()

		story, err := svc.CreateStory(c.UserContext(), service.StoryInput{
			UserID:      formValue(c, "user_id"),
			Title:       formValue(c, "title"),
			Description: formValue(c, "description"),
			CoverURL:    formValue(c, "cover_url"),
			Upload:      up,
		})
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(story)
	}
}

// UpdateStory handles PUT /stories/:id with the same form as CreateStory.
// The owner is taken from the stored story; user_id is ignored.
func UpdateStory(svc service.PublishService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := param(c, "id")
		if !validID(id) {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		up, done, err := formUpload(c)
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_OPEN_ERROR", "cannot open uploaded file")
		}
		defer done()

		story, err := svc.UpdateStory(c.UserContext(), service.StoryInput{
			ID:          id,
			Title:       formValue(c, "title"),
			Description: formValue(c, "description"),
			CoverURL:    formValue(c, "cover_url"),
			Upload:      up,
		})
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(story)
	}
}

// GetStory handles GET /stories/:id.
func GetStory(svc service.PublishService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := param(c, "id")
		if !validID(id) {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		story, err := svc.GetStory(c.UserContext(), id)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(story)
	}
}

// ListUserStories handles GET /users/:id/stories with limit & offset.
func ListUserStories(svc service.PublishService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID := param(c, "id")
		if !validID(userID) {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		limit, err := strconv.Atoi(c.Query("limit", "10"))
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_LIMIT", "invalid limit")
		}
		offset, err := strconv.Atoi(c.Query("offset", "0"))
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_OFFSET", "invalid offset")
		}

		res, err := svc.ListStories(c.UserContext(), userID, limit, offset)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(res)
	}
}
