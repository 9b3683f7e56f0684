package handler

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"storyapi/internal/service"
)

// CreatePage handles POST /stories/:id/pages (multipart: file, page_number, content, image_url).
func CreatePage(svc service.PublishService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		in, err := pageInput(c)
		if err != nil {
			return err
		}
		if in == nil {
			return nil
		}
		up, done, err := formUpload(c)
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_OPEN_ERROR", "cannot open uploaded file")
		}
		defer done()
		in.Upload = up

		page, err := svc.CreatePage(c.UserContext(), *in)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(page)
	}
}

// UpdatePage handles PUT /stories/:id/pages/:pageId.
func UpdatePage(svc service.PublishService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		pageID := param(c, "pageId")
		if !validID(pageID) {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		in, err := pageInput(c)
		if err != nil {
			return err
		}
		if in == nil {
			return nil
		}
		in.ID = pageID
		up, done, err := formUpload(c)
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_OPEN_ERROR", "cannot open uploaded file")
		}
		defer done()
		in.Upload = up

		page, err := svc.UpdatePage(c.UserContext(), *in)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(page)
	}
}

// pageInput reads the fields shared by page create and update. A nil input
// with a nil error means a 400 response has already been written.
func pageInput(c *fiber.Ctx) (*service.PageInput, error) {
	storyID := param(c, "id")
	if !validID(storyID) {
		return nil, writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
	}
	n, err := strconv.Atoi(formValue(c, "page_number"))
	if err != nil {
		return nil, writeError(c, fiber.StatusBadRequest, "INVALID_PAGE_NUMBER", "invalid page number")
	}
	return &service.PageInput{
		StoryID:    storyID,
		PageNumber: n,
		Content:    formValue(c, "content"),
		ImageURL:   formValue(c, "image_url"),
	}, nil
}
