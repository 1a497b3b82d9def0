package handlers

import (
	"net/url"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// postIDParam reads the :id route parameter. A malformed id names no post,
// so it is answered like a missing one.
func postIDParam(c *fiber.Ctx) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return uuid.Nil, fiber.NewError(fiber.StatusNotFound, "post not found")
	}
	return id, nil
}

// pathParam returns a route parameter with percent-escapes decoded.
func pathParam(c *fiber.Ctx, name string) string {
	raw := c.Params(name)
	decoded, err := url.PathUnescape(raw)
	if err != nil {
		return raw
	}
	return decoded
}

func profileURL(username string) string {
	return "/profile/" + url.PathEscape(username) + "/"
}

func postURL(id uuid.UUID) string {
	return "/posts/" + id.String() + "/"
}

// safeNext keeps post-login redirects on this site.
func safeNext(next string) string {
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.Contains(next, `\`) {
		return "/"
	}
	return next
}

// hasBody reports whether the request carries a body that BodyParser can
// decode. Empty submissions are treated as a form with no fields.
func hasBody(c *fiber.Ctx) bool {
	return len(c.Body()) > 0
}
