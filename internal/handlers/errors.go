package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/yatube/yatube/internal/services"
	"github.com/yatube/yatube/pkg/logger"
	"github.com/yatube/yatube/pkg/utils"
)

// MapServiceError converts a service error into the fiber error sent to the
// client. Errors it does not recognise are returned unchanged and end up as
// a 500 in ErrorHandler.
func MapServiceError(err error) error {
	if err == nil {
		return nil
	}

	var verr *services.ValidationError
	switch {
	case errors.Is(err, services.ErrPostNotFound):
		return fiber.NewError(fiber.StatusNotFound, "post not found")
	case errors.Is(err, services.ErrGroupNotFound):
		return fiber.NewError(fiber.StatusNotFound, "group not found")
	case errors.Is(err, services.ErrUserNotFound):
		return fiber.NewError(fiber.StatusNotFound, "user not found")

	case errors.Is(err, services.ErrAuthenticationRequired),
		errors.Is(err, services.ErrInvalidCredentials):
		return fiber.NewError(fiber.StatusUnauthorized, err.Error())

	case errors.Is(err, services.ErrNotPostAuthor):
		return fiber.NewError(fiber.StatusForbidden, err.Error())

	case errors.Is(err, services.ErrUsernameTaken),
		errors.Is(err, services.ErrSlugTaken):
		return fiber.NewError(fiber.StatusConflict, err.Error())

	case errors.As(err, &verr):
		return fiber.NewError(fiber.StatusBadRequest, verr.Error())
	}

	return err
}

// ErrorHandler answers every error that escapes a handler with the JSON
// envelope. Anything that is not a *fiber.Error is a store or programming
// fault and is logged before a generic 500 goes out.
func ErrorHandler(c *fiber.Ctx, err error) error {
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return utils.Error(c, fiberErr.Code, fiberErr.Message)
	}

	details := map[string]interface{}{
		"method":     c.Method(),
		"path":       c.Path(),
		"request_id": logger.GetRequestID(c),
	}
	if userID := logger.GetUserIDFromContext(c); userID != nil {
		logger.ErrorWithUser(*userID, "unhandled_error", err, details)
	} else {
		logger.Error("unhandled_error", err, details)
	}
	return utils.Error(c, fiber.StatusInternalServerError, "internal server error")
}
