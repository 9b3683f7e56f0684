package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"

	_ "storyapi/docs"
)

// SwaggerUI serves the API description at doc.json and the UI around it.
func SwaggerUI() fiber.Handler {
	return swagger.HandlerDefault
}
