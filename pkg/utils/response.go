package utils

import "github.com/gofiber/fiber/v2"

func Success(c *fiber.Ctx, status int, data interface{}) error {
	return c.Status(status).JSON(fiber.Map{
		"success": true,
		"data":    data,
	})
}

func Error(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{
		"success": false,
		"error":   message,
	})
}

// Rendered is the JSON form of a server-rendered page: the template that
// would have been rendered and the context it would have received.
func Rendered(c *fiber.Ctx, status int, template string, data interface{}) error {
	return c.Status(status).JSON(fiber.Map{
		"success":  status < fiber.StatusBadRequest,
		"template": template,
		"data":     data,
	})
}
