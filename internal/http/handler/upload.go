package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
	"github.com/google/uuid"

	"storyapi/internal/service"
)

// formUpload opens the optional multipart "file" part. A request without one,
// or with an empty one, yields a nil upload. The returned close func is never nil.
func formUpload(c *fiber.Ctx) (*service.Upload, func(), error) {
	noop := func() {}
	fh, err := c.FormFile("file")
	if err != nil || fh.Size == 0 {
		return nil, noop, nil
	}
	f, err := fh.Open()
	if err != nil {
		return nil, noop, err
	}
	return &service.Upload{Reader: f, Filename: fh.Filename, Size: fh.Size}, func() { f.Close() }, nil
}

// formValue and param copy out of Fiber's reused request buffers. Service
// inputs may be read by the detached notification pass after the response.
func formValue(c *fiber.Ctx, key string) string {
	return utils.CopyString(c.FormValue(key))
}

func param(c *fiber.Ctx, key string) string {
	return utils.CopyString(c.Params(key))
}

// validID reports whether s is a UUID, the format of every record id.
func validID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}
