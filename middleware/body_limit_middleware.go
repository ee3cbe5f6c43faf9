package middleware

import (
	apimodels "bpm-backend/models/api"
	"fmt"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// WithBodyLimit ограничивает размер тела запроса, кроме путей с суффиксами из skipSuffixes
func WithBodyLimit(limit int64, skipSuffixes ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		for _, suffix := range skipSuffixes {
			if strings.HasSuffix(c.Path(), suffix) {
				return c.Next()
			}
		}
		contentLength := c.Get("Content-Length")
		if contentLength != "" && contentLength != "0" {
			size, err := strconv.ParseInt(contentLength, 10, 64)
			if err == nil && size > limit {
				return c.Status(fiber.StatusRequestEntityTooLarge).
					JSON(apimodels.NewError(fmt.Sprintf("Request body too large. Maximum allowed: %d bytes", limit)))
			}
		}
		return c.Next()
	}
}
