package apiv1

import (
	"bpm-backend/controllers"
	directoryhandler "bpm-backend/lib/directory"
	"bpm-backend/middleware"
	apimodels "bpm-backend/models/api"
	directoryapimodels "bpm-backend/models/api/directory"

	"github.com/gofiber/fiber/v2"
)

type directoryApiController struct {
	controllers.BaseAPIController
}

func InitDirectoryApiRouters(app *fiber.App) {
	controller := directoryApiController{}
	app.Route("users", func(router fiber.Router) {
		router.Get("", controller.userList)
		router.Post("", controller.userCreate)
		router.Route(":id", func(idRoute fiber.Router) {
			idRoute.Get("", controller.userGet)
			idRoute.Put("", controller.userUpdate)
			idRoute.Put("positions", controller.userPositions)
		})
	})
	app.Route("departments", func(router fiber.Router) {
		router.Get("", controller.departmentList)
		router.Post("", controller.departmentCreate)
		router.Put(":id", controller.departmentUpdate)
	})
	app.Route("positions", func(router fiber.Router) {
		router.Get("", controller.positionList)
		router.Post("", controller.positionCreate)
		router.Put(":id", controller.positionUpdate)
	})
}

// @Summary Список пользователей
// @Tags Справочник. Пользователь
// @Description Список пользователей
// @Param   Authorization		header		string	true	"Authorization token"
// @Success 200 {object} apimodels.Response{data=[]directoryapimodels.UserView}
// @Failure 403
// @Failure 500 {object} apimodels.Response
// @router /api/v1/users [get]
func (c *directoryApiController) userList(ctx *fiber.Ctx) error {
	list, err := directoryhandler.Instance.ListUsers(middleware.GetUserID(ctx))
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "Ошибка получения списка пользователей")
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(list))
}

// @Summary Получение пользователя по ИД
// @Tags Справочник. Пользователь
// @Description Получение по ИД
// @Param   Authorization		header		string	true	"Authorization token"
// @Param   id          		path    string  				    	true         "rec ID"
// @Success 200 {object} apimodels.Response{data=directoryapimodels.UserView}
// @Failure 403
// @Failure 404 {object} apimodels.Response
// @Failure 500 {object} apimodels.Response
// @router /api/v1/users/{id} [get]
func (c *directoryApiController) userGet(ctx *fiber.Ctx) error {
	id, err := c.GetID(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	resp, err := directoryhandler.Instance.GetUser(middleware.GetUserID(ctx), id)
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "Ошибка получения пользователя")
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(resp))
}

// @Summary Создание пользователя
// @Tags Справочник. Пользователь
// @Description Создание
// @Param   Authorization		header		string	true	"Authorization token"
// @Param	body body	 directoryapimodels.UserData	true	"request body"
// @Success 200 {object} apimodels.Response{data=string}
// @Failure 400 {object} apimodels.Response
// @Failure 403
// @Failure 500 {object} apimodels.Response
// @router /api/v1/users [post]
func (c *directoryApiController) userCreate(ctx *fiber.Ctx) error {
	var payload directoryapimodels.UserData
	if err := c.BodyParser(ctx, &payload); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	id, err := directoryhandler.Instance.CreateUser(middleware.GetUserID(ctx), payload)
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "Ошибка создания пользователя")
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(id))
}

// @Summary Обновление пользователя
// @Tags Справочник. Пользователь
// @Description Обновление
// @Param   Authorization		header		string	true	"Authorization token"
// @Param	body body	 directoryapimodels.UserData	true	"request body"
// @Param   id          		path    string  				    	true         "rec ID"
// @Success 200 {object} apimodels.Response
// @Failure 400 {object} apimodels.Response
// @Failure 403
// @Failure 404 {object} apimodels.Response
// @Failure 500 {object} apimodels.Response
// @router /api/v1/users/{id} [put]
func (c *directoryApiController) userUpdate(ctx *fiber.Ctx) error {
	id, err := c.GetID(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	var payload directoryapimodels.UserData
	if err = c.BodyParser(ctx, &payload); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	err = directoryhandler.Instance.UpdateUser(middleware.GetUserID(ctx), id, payload)
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "Ошибка изменения пользователя")
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(nil))
}

// @Summary Должности пользователя
// @Tags Справочник. Пользователь
// @Description Замена набора должностей пользователя, на запущенные процессы не влияет
// @Param   Authorization		header		string	true	"Authorization token"
// @Param	body body	 directoryapimodels.UserPositions	true	"request body"
// @Param   id          		path    string  				    	true         "rec ID"
// @Success 200 {object} apimodels.Response
// @Failure 400 {object} apimodels.Response
// @Failure 403
// @Failure 404 {object} apimodels.Response
// @Failure 500 {object} apimodels.Response
// @router /api/v1/users/{id}/positions [put]
func (c *directoryApiController) userPositions(ctx *fiber.Ctx) error {
	id, err := c.GetID(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	var payload directoryapimodels.UserPositions
	if err = c.BodyParser(ctx, &payload); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	err = directoryhandler.Instance.SetUserPositions(middleware.GetUserID(ctx), id, payload)
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "Ошибка изменения должностей пользователя")
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(nil))
}

// @Summary Список подразделений
// @Tags Справочник. Подразделение
// @Description Список подразделений
// @Param   Authorization		header		string	true	"Authorization token"
// @Success 200 {object} apimodels.Response{data=[]directoryapimodels.DepartmentView}
// @Failure 403
// @Failure 500 {object} apimodels.Response
// @router /api/v1/departments [get]
func (c *directoryApiController) departmentList(ctx *fiber.Ctx) error {
	list, err := directoryhandler.Instance.ListDepartments(middleware.GetUserID(ctx))
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "Ошибка получения списка подразделений")
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(list))
}

// @Summary Создание подразделения
// @Tags Справочник. Подразделение
// @Description Создание
// @Param   Authorization		header		string	true	"Authorization token"
// @Param	body body	 directoryapimodels.DepartmentData	true	"request body"
// @Success 200 {object} apimodels.Response{data=string}
// @Failure 400 {object} apimodels.Response
// @Failure 403
// @Failure 500 {object} apimodels.Response
// @router /api/v1/departments [post]
func (c *directoryApiController) departmentCreate(ctx *fiber.Ctx) error {
	var payload directoryapimodels.DepartmentData
	if err := c.BodyParser(ctx, &payload); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	id, err := directoryhandler.Instance.CreateDepartment(middleware.GetUserID(ctx), payload)
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "Ошибка создания подразделения")
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(id))
}

// @Summary Обновление подразделения
// @Tags Справочник. Подразделение
// @Description Обновление
// @Param   Authorization		header		string	true	"Authorization token"
// @Param	body body	 directoryapimodels.DepartmentData	true	"request body"
// @Param   id          		path    string  				    	true         "rec ID"
// @Success 200 {object} apimodels.Response
// @Failure 400 {object} apimodels.Response
// @Failure 403
// @Failure 404 {object} apimodels.Response
// @Failure 500 {object} apimodels.Response
// @router /api/v1/departments/{id} [put]
func (c *directoryApiController) departmentUpdate(ctx *fiber.Ctx) error {
	id, err := c.GetID(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	var payload directoryapimodels.DepartmentData
	if err = c.BodyParser(ctx, &payload); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	err = directoryhandler.Instance.UpdateDepartment(middleware.GetUserID(ctx), id, payload)
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "Ошибка изменения подразделения")
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(nil))
}

// @Summary Список должностей
// @Tags Справочник. Должность
// @Description Список должностей
// @Param   Authorization		header		string	true	"Authorization token"
// @Success 200 {object} apimodels.Response{data=[]directoryapimodels.PositionView}
// @Failure 403
// @Failure 500 {object} apimodels.Response
// @router /api/v1/positions [get]
func (c *directoryApiController) positionList(ctx *fiber.Ctx) error {
	list, err := directoryhandler.Instance.ListPositions(middleware.GetUserID(ctx))
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "Ошибка получения списка должностей")
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(list))
}

// @Summary Создание должности
// @Tags Справочник. Должность
// @Description Создание
// @Param   Authorization		header		string	true	"Authorization token"
// @Param	body body	 directoryapimodels.PositionData	true	"request body"
// @Success 200 {object} apimodels.Response{data=string}
// @Failure 400 {object} apimodels.Response
// @Failure 403
// @Failure 500 {object} apimodels.Response
// @router /api/v1/positions [post]
func (c *directoryApiController) positionCreate(ctx *fiber.Ctx) error {
	var payload directoryapimodels.PositionData
	if err := c.BodyParser(ctx, &payload); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	id, err := directoryhandler.Instance.CreatePosition(middleware.GetUserID(ctx), payload)
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "Ошибка создания должности")
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(id))
}

// @Summary Обновление должности
// @Tags Справочник. Должность
// @Description Обновление
// @Param   Authorization		header		string	true	"Authorization token"
// @Param	body body	 directoryapimodels.PositionData	true	"request body"
// @Param   id          		path    string  				    	true         "rec ID"
// @Success 200 {object} apimodels.Response
// @Failure 400 {object} apimodels.Response
// @Failure 403
// @Failure 404 {object} apimodels.Response
// @Failure 500 {object} apimodels.Response
// @router /api/v1/positions/{id} [put]
func (c *directoryApiController) positionUpdate(ctx *fiber.Ctx) error {
	id, err := c.GetID(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	var payload directoryapimodels.PositionData
	if err = c.BodyParser(ctx, &payload); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	err = directoryhandler.Instance.UpdatePosition(middleware.GetUserID(ctx), id, payload)
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "Ошибка изменения должности")
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(nil))
}
