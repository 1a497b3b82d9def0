package middleware

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/yatube/yatube/pkg/logger"
)

// RequestLogger writes one entry per request.
func RequestLogger() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		requestID := logger.GenerateRequestID()
		logger.SetRequestID(c, requestID)
		c.Set("X-Request-ID", requestID)

		chainErr := c.Next()
		handleChainError(c, chainErr)

		statusCode := c.Response().StatusCode()
		userID := logger.GetUserIDFromContext(c)

		details := map[string]interface{}{
			"method":        c.Method(),
			"path":          c.Path(),
			"status_code":   statusCode,
			"latency_ms":    time.Since(start).Milliseconds(),
			"user_agent":    c.Get(fiber.HeaderUserAgent),
			"ip":            c.IP(),
			"request_body":  logger.GetRequestBodySummary(c),
			"response_body": logger.GetResponseSizeSummary(c),
			"request_id":    requestID,
		}

		switch {
		case statusCode >= fiber.StatusInternalServerError && userID != nil:
			logger.ErrorWithUser(*userID, "http_request", chainErr, details)
		case statusCode >= fiber.StatusInternalServerError:
			logger.Error("http_request", chainErr, details)
		case statusCode >= fiber.StatusBadRequest && userID != nil:
			logger.WarnWithUser(*userID, "http_request", details)
		case statusCode >= fiber.StatusBadRequest:
			logger.Warn("http_request", details)
		case userID != nil:
			logger.InfoWithUser(*userID, "http_request", details)
		default:
			logger.Info("http_request", details)
		}

		return nil
	}
}

// SecurityLogger records denied edits and unknown resources.
func SecurityLogger() fiber.Handler {
	return func(c *fiber.Ctx) error {
		handleChainError(c, c.Next())

		statusCode := c.Response().StatusCode()
		userID := logger.GetUserIDFromContext(c)

		var action string
		switch {
		case statusCode == fiber.StatusForbidden:
			action = "access_denied"
		case statusCode == fiber.StatusNotFound:
			action = "not_found"
		case statusCode == fiber.StatusFound && c.Locals(deniedEditKey) != nil:
			action = "edit_denied"
		default:
			return nil
		}

		details := map[string]interface{}{
			"method":  c.Method(),
			"path":    c.Path(),
			"ip":      c.IP(),
			"user_id": userID,
			"reason":  action,
		}
		if userID != nil {
			logger.WarnWithUser(*userID, action, details)
		} else {
			logger.Warn(action+"_unauthenticated", details)
		}

		return nil
	}
}

// handleChainError renders a handler error in place so outer middleware sees
// the final status code.
func handleChainError(c *fiber.Ctx, chainErr error) {
	if chainErr == nil {
		return
	}
	if err := c.App().ErrorHandler(c, chainErr); err != nil {
		_ = c.SendStatus(fiber.StatusInternalServerError)
	}
}

const deniedEditKey = "deniedEdit"

// MarkDeniedEdit flags a request whose edit was refused for SecurityLogger.
func MarkDeniedEdit(c *fiber.Ctx) {
	c.Locals(deniedEditKey, true)
}
