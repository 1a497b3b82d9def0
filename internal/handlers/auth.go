package handlers

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/yatube/yatube/internal/middleware"
	"github.com/yatube/yatube/internal/models"
	"github.com/yatube/yatube/internal/render"
	"github.com/yatube/yatube/internal/services"
	"github.com/yatube/yatube/pkg/logger"
	"github.com/yatube/yatube/pkg/utils"
)

const (
	templateSignup    = "users/signup"
	templateLogin     = "users/login"
	templateLoggedOut = "users/logged_out"
)

type AuthHandler struct {
	Accounts     *services.AccountService
	Render       render.Renderer
	CookieSecure bool
}

func NewAuthHandler(accounts *services.AccountService, renderer render.Renderer, cookieSecure bool) *AuthHandler {
	return &AuthHandler{Accounts: accounts, Render: renderer, CookieSecure: cookieSecure}
}

type loginRequest struct {
	Username string `json:"username" form:"username"`
	Password string `json:"password" form:"password"`
	Next     string `json:"next" form:"next"`
}

type sessionResponse struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

func (h *AuthHandler) SignupForm(c *fiber.Ctx) error {
	return h.renderSignup(c, fiber.StatusOK, services.SignupForm{}, nil)
}

func (h *AuthHandler) Signup(c *fiber.Ctx) error {
	var form services.SignupForm
	if hasBody(c) {
		if err := c.BodyParser(&form); err != nil {
			return utils.Error(c, fiber.StatusBadRequest, "invalid request body")
		}
	}

	user, err := h.Accounts.Register(c.UserContext(), form)
	var verr *services.ValidationError
	switch {
	case errors.As(err, &verr):
		return h.renderSignup(c, fiber.StatusBadRequest, form, verr.Fields)
	case errors.Is(err, services.ErrUsernameTaken):
		return h.renderSignup(c, fiber.StatusBadRequest, form, map[string]string{
			"username": "a user with that username already exists",
		})
	case err != nil:
		return MapServiceError(err)
	}

	token, err := h.startSession(c, user)
	if err != nil {
		return err
	}
	if render.WantsJSON(c) {
		return utils.Success(c, fiber.StatusCreated, sessionResponse{Token: token, User: user})
	}
	return c.Redirect("/", fiber.StatusFound)
}

func (h *AuthHandler) LoginForm(c *fiber.Ctx) error {
	return h.renderLogin(c, fiber.StatusOK, loginRequest{Next: c.Query("next")}, "")
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req loginRequest
	if hasBody(c) {
		if err := c.BodyParser(&req); err != nil {
			return utils.Error(c, fiber.StatusBadRequest, "invalid request body")
		}
	}
	if req.Next == "" {
		req.Next = c.Query("next")
	}

	user, err := h.Accounts.Authenticate(c.UserContext(), req.Username, req.Password)
	if errors.Is(err, services.ErrInvalidCredentials) {
		return h.renderLogin(c, fiber.StatusBadRequest, req, "please enter a correct username and password")
	}
	if err != nil {
		return MapServiceError(err)
	}

	token, err := h.startSession(c, user)
	if err != nil {
		return err
	}

	logger.InfoWithUser(user.ID.String(), "user_login", map[string]interface{}{
		"ip": c.IP(),
	})

	if render.WantsJSON(c) {
		return utils.Success(c, fiber.StatusOK, sessionResponse{Token: token, User: user})
	}
	return c.Redirect(safeNext(req.Next), fiber.StatusFound)
}

func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	if user := middleware.GetCurrentUser(c); user != nil {
		logger.InfoWithUser(user.ID.String(), "user_logout", nil)
	}

	c.Cookie(&fiber.Cookie{
		Name:     middleware.SessionCookie,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HTTPOnly: true,
		Secure:   h.CookieSecure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	return h.Render.Render(c, fiber.StatusOK, templateLoggedOut, fiber.Map{
		"current_user": nil,
	})
}

func (h *AuthHandler) startSession(c *fiber.Ctx, user *models.User) (string, error) {
	token, err := utils.GenerateToken(user)
	if err != nil {
		return "", err
	}

	c.Cookie(&fiber.Cookie{
		Name:     middleware.SessionCookie,
		Value:    token,
		Path:     "/",
		Expires:  time.Now().Add(utils.TokenLifetime()),
		HTTPOnly: true,
		Secure:   h.CookieSecure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	return token, nil
}

func (h *AuthHandler) renderSignup(c *fiber.Ctx, status int, form services.SignupForm, fieldErrors map[string]string) error {
	form.Password = ""
	return h.Render.Render(c, status, templateSignup, fiber.Map{
		"form":   form,
		"errors": fieldErrors,
	})
}

func (h *AuthHandler) renderLogin(c *fiber.Ctx, status int, req loginRequest, message string) error {
	return h.Render.Render(c, status, templateLogin, fiber.Map{
		"username": req.Username,
		"next":     req.Next,
		"error":    message,
	})
}
