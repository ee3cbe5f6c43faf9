package middleware

import (
	"bpm-backend/lib/rbac"
	apimodels "bpm-backend/models/api"

	"github.com/gofiber/fiber/v2"
)

func RbacMiddleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		userID := GetUserID(ctx)
		if userID == "" {
			return ctx.Status(fiber.StatusUnauthorized).JSON(apimodels.NewError("Unauthorized"))
		}
		userRole := GetUserRole(ctx)
		if !userRole.IsValid() {
			return ctx.Status(fiber.StatusForbidden).JSON(apimodels.NewError("Forbidden"))
		}

		handler, found := rbac.Instance.GetRuleFunc(ctx.Method(), ctx.Path())
		if !found {
			return ctx.Next()
		}
		if !handler(userID, userRole, ctx.Path()) {
			return ctx.Status(fiber.StatusForbidden).JSON(apimodels.NewError("Forbidden"))
		}
		return ctx.Next()
	}
}
