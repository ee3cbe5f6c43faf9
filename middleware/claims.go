package middleware

import (
	authutils "bpm-backend/lib/utils/auth-utils"
	"bpm-backend/models"

	"github.com/gofiber/fiber/v2"
)

func GetUserID(ctx *fiber.Ctx) string {
	claims := authutils.GetClaims(ctx)
	if sub, ok := claims["sub"].(string); ok {
		return sub
	}
	return ""
}

// GetUserRole роль из токена, используется только для быстрой проверки маршрута,
// обработчики перечитывают роль из справочника
func GetUserRole(ctx *fiber.Ctx) models.UserRole {
	claims := authutils.GetClaims(ctx)
	if role, ok := claims["role"].(string); ok {
		return models.UserRole(role)
	}
	return ""
}
