package apiv1

import (
	"bpm-backend/controllers"
	"bpm-backend/lib/rbac"
	"bpm-backend/middleware"
	apimodels "bpm-backend/models/api"

	"github.com/gofiber/fiber/v2"
)

type permissionApiController struct {
	controllers.BaseAPIController
}

func InitPermissionApiRouters(app *fiber.App) {
	controller := permissionApiController{}
	app.Get("permissions", controller.list)
}

// @Summary Разрешения
// @Tags Права доступа
// @Description Разрешения роли текущего пользователя
// @Param   Authorization		header		string	true	"Authorization token"
// @Success 200 {object} apimodels.Response{data=[]string}
// @Failure 401 {object} apimodels.Response
// @router /api/v1/permissions [get]
func (c *permissionApiController) list(ctx *fiber.Ctx) error {
	permissions := rbac.Instance.GetPermissions(middleware.GetUserRole(ctx))
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(permissions))
}
