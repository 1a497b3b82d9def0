// Package render turns a template name and its context into a response,
// either as server-rendered HTML or as a JSON envelope.
package render

import (
	"github.com/gofiber/fiber/v2"
	"github.com/yatube/yatube/internal/middleware"
	"github.com/yatube/yatube/pkg/utils"
)

const DefaultLayout = "layouts/base"

type Renderer interface {
	Render(c *fiber.Ctx, status int, template string, data fiber.Map) error
}

// HTML renders through the app's configured view engine inside Layout. The
// current user is added as "current_user" for the navigation bar.
type HTML struct {
	Layout string
}

func (r HTML) Render(c *fiber.Ctx, status int, template string, data fiber.Map) error {
	if data == nil {
		data = fiber.Map{}
	}
	if _, ok := data["current_user"]; !ok {
		data["current_user"] = middleware.GetCurrentUser(c)
	}

	layout := r.Layout
	if layout == "" {
		layout = DefaultLayout
	}
	return c.Status(status).Render(template, data, layout)
}

type JSON struct{}

func (JSON) Render(c *fiber.Ctx, status int, template string, data fiber.Map) error {
	return utils.Rendered(c, status, template, data)
}

// Negotiated picks JSON for clients that prefer application/json and HTML
// for everyone else.
type Negotiated struct {
	HTML Renderer
	JSON Renderer
}

func New() *Negotiated {
	return &Negotiated{HTML: HTML{Layout: DefaultLayout}, JSON: JSON{}}
}

func (r *Negotiated) Render(c *fiber.Ctx, status int, template string, data fiber.Map) error {
	if WantsJSON(c) {
		return r.JSON.Render(c, status, template, data)
	}
	return r.HTML.Render(c, status, template, data)
}

func WantsJSON(c *fiber.Ctx) bool {
	if c.Get(fiber.HeaderAccept) == "" {
		return false
	}
	return c.Accepts(fiber.MIMETextHTML, fiber.MIMEApplicationJSON) == fiber.MIMEApplicationJSON
}
