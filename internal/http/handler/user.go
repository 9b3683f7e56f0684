package handler

import (
	"github.com/gofiber/fiber/v2"

	"storyapi/internal/service"
)

// UpdateProfile handles PUT /users/:id (multipart: file, display_name, image_url).
func UpdateProfile(svc service.PublishService) fiber.Handler {
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

		user, err := svc.UpdateProfile(c.UserContext(), service.ProfileInput{
			UserID:      id,
			DisplayName: formValue(c, "display_name"),
			ImageURL:    formValue(c, "image_url"),
			Upload:      up,
		})
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(user)
	}
}
