package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/yatube/yatube/internal/middleware"
	"github.com/yatube/yatube/internal/render"
	"github.com/yatube/yatube/internal/repository"
	"github.com/yatube/yatube/internal/services"
)

// Dependencies is everything Register needs to build the handlers.
type Dependencies struct {
	Store        *repository.Store
	Events       services.EventPublisher
	Renderer     render.Renderer
	PageSize     int
	LoginURL     string
	CookieSecure bool
}

// Register mounts every route on app.
func Register(app *fiber.App, deps Dependencies) {
	renderer := deps.Renderer
	if renderer == nil {
		renderer = render.New()
	}

	postService := services.NewPostService(deps.Store, deps.Events, deps.PageSize)
	groupService := services.NewGroupService(deps.Store.Groups)
	accountService := services.NewAccountService(deps.Store.Users)

	postsHandler := NewPostsHandler(postService, groupService, renderer)
	authHandler := NewAuthHandler(accountService, renderer, deps.CookieSecure)
	authMiddleware := middleware.NewAuthMiddleware(deps.Store.Users, deps.LoginURL)

	app.Get("/health", Health)
	app.Get("/api/version", GetVersion)

	app.Use(authMiddleware.OptionalAuth)

	app.Get("/", postsHandler.Index)
	app.Get("/group/:slug", postsHandler.GroupPosts)
	app.Get("/profile/:username", postsHandler.Profile)
	app.Get("/posts/:id", postsHandler.Detail)

	app.Get("/create", authMiddleware.RequireLogin, postsHandler.CreateForm)
	app.Post("/create", authMiddleware.RequireLogin, postsHandler.Create)
	app.Get("/posts/:id/edit", authMiddleware.RequireLogin, postsHandler.EditForm)
	app.Post("/posts/:id/edit", authMiddleware.RequireLogin, postsHandler.Edit)

	authRoutes := app.Group("/auth")
	authRoutes.Get("/signup", authHandler.SignupForm)
	authRoutes.Post("/signup", authHandler.Signup)
	authRoutes.Get("/login", authHandler.LoginForm)
	authRoutes.Post("/login", authHandler.Login)
	authRoutes.Get("/logout", authHandler.Logout)
}
