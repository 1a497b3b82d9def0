package middleware

import (
	"context"
	"net/url"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/yatube/yatube/internal/models"
	"github.com/yatube/yatube/pkg/logger"
	"github.com/yatube/yatube/pkg/utils"
)

const (
	currentUserKey = "currentUser"
	SessionCookie  = "yatube_session"
)

// UserLookup resolves the user named by a session token.
type UserLookup interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

type AuthMiddleware struct {
	Users    UserLookup
	LoginURL string
}

func NewAuthMiddleware(users UserLookup, loginURL string) *AuthMiddleware {
	if loginURL == "" {
		loginURL = "/auth/login/"
	}
	return &AuthMiddleware{Users: users, LoginURL: loginURL}
}

// sessionToken prefers a Bearer header and falls back to the session cookie.
func sessionToken(c *fiber.Ctx) string {
	if header := c.Get(fiber.HeaderAuthorization); header != "" {
		token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer"))
		if token != header && token != "" {
			return token
		}
	}
	return c.Cookies(SessionCookie)
}

// OptionalAuth attaches the current user when the request carries a valid
// session and continues anonymously otherwise.
func (a *AuthMiddleware) OptionalAuth(c *fiber.Ctx) error {
	tokenString := sessionToken(c)
	if tokenString == "" {
		return c.Next()
	}

	claims, err := utils.ValidateToken(tokenString)
	if err != nil {
		logger.Warn("session_validation_failed", map[string]interface{}{
			"ip":    c.IP(),
			"path":  c.Path(),
			"error": err.Error(),
		})
		return c.Next()
	}

	user, err := a.Users.FindByID(c.UserContext(), claims.UserID)
	if err != nil {
		logger.Warn("session_user_not_found", map[string]interface{}{
			"ip":      c.IP(),
			"path":    c.Path(),
			"user_id": claims.UserID.String(),
		})
		return c.Next()
	}

	c.Locals(currentUserKey, user)
	logger.SetUserID(c, user.ID.String())
	return c.Next()
}

// RequireLogin sends anonymous visitors to the login page and brings them
// back to the original URL afterwards.
func (a *AuthMiddleware) RequireLogin(c *fiber.Ctx) error {
	if GetCurrentUser(c) != nil {
		return c.Next()
	}

	logger.Warn("login_required", map[string]interface{}{
		"ip":     c.IP(),
		"method": c.Method(),
		"path":   c.Path(),
	})
	return c.Redirect(a.LoginURL+"?next="+url.QueryEscape(c.OriginalURL()), fiber.StatusFound)
}

func GetCurrentUser(c *fiber.Ctx) *models.User {
	value := c.Locals(currentUserKey)
	if value == nil {
		return nil
	}
	user, ok := value.(*models.User)
	if !ok {
		return nil
	}
	return user
}
