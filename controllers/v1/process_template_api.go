package apiv1

import (
	"bpm-backend/controllers"
	processtemplatehandler "bpm-backend/lib/process-template"
	"bpm-backend/middleware"
	apimodels "bpm-backend/models/api"
	processapimodels "bpm-backend/models/api/process"

	"github.com/gofiber/fiber/v2"
)

type processTemplateApiController struct {
	controllers.BaseAPIController
}

func InitProcessTemplateApiRouters(app *fiber.App) {
	controller := processTemplateApiController{}
	app.Route("process_templates", func(router fiber.Router) {
		router.Get("", controller.list)
		router.Get("startable", controller.listStartable)
		router.Post("", controller.create)
		router.Route(":id", func(idRoute fiber.Router) {
			idRoute.Get("", controller.get)
			idRoute.Put("", controller.update)
			idRoute.Delete("", controller.delete)
		})
	})
}

// @Summary Создание
// @Tags Шаблон процесса
// @Description Создание шаблона, доступно суперадмину
// @Param   Authorization		header		string	true	"Authorization token"
// @Param	body body	 processapimodels.TemplateData	true	"request body"
// @Success 200 {object} apimodels.Response{data=string}
// @Failure 400 {object} apimodels.Response
// @Failure 403
// @Failure 500 {object} apimodels.Response
// @router /api/v1/process_templates [post]
func (c *processTemplateApiController) create(ctx *fiber.Ctx) error {
	var payload processapimodels.TemplateData
	if err := c.BodyParser(ctx, &payload); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	id, err := processtemplatehandler.Instance.Create(middleware.GetUserID(ctx), payload)
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "Ошибка создания шаблона процесса")
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(id))
}

// @Summary Обновление
// @Tags Шаблон процесса
// @Description Обновление шаблона, задачи сохраняются новой ревизией
// @Param   Authorization		header		string	true	"Authorization token"
// @Param	body body	 processapimodels.TemplateData	true	"request body"
// @Param   id          		path    string  				    	true         "rec ID"
// @Success 200 {object} apimodels.Response
// @Failure 400 {object} apimodels.Response
// @Failure 403
// @Failure 404 {object} apimodels.Response
// @Failure 500 {object} apimodels.Response
// @router /api/v1/process_templates/{id} [put]
func (c *processTemplateApiController) update(ctx *fiber.Ctx) error {
	id, err := c.GetID(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	var payload processapimodels.TemplateData
	if err = c.BodyParser(ctx, &payload); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	err = processtemplatehandler.Instance.Update(middleware.GetUserID(ctx), id, payload)
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "Ошибка изменения шаблона процесса")
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(nil))
}

// @Summary Удаление
// @Tags Шаблон процесса
// @Description Удаление шаблона без запущенных экземпляров
// @Param   Authorization		header		string	true	"Authorization token"
// @Param   id          		path    string  				    	true         "rec ID"
// @Success 200 {object} apimodels.Response
// @Failure 400 {object} apimodels.Response
// @Failure 403
// @Failure 404 {object} apimodels.Response
// @Failure 500 {object} apimodels.Response
// @router /api/v1/process_templates/{id} [delete]
func (c *processTemplateApiController) delete(ctx *fiber.Ctx) error {
	id, err := c.GetID(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	err = processtemplatehandler.Instance.Delete(middleware.GetUserID(ctx), id)
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "Ошибка удаления шаблона процесса")
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(nil))
}

// @Summary Получение по ИД
// @Tags Шаблон процесса
// @Description Получение по ИД
// @Param   Authorization		header		string	true	"Authorization token"
// @Param   id          		path    string  				    	true         "rec ID"
// @Success 200 {object} apimodels.Response{data=processapimodels.TemplateView}
// @Failure 400 {object} apimodels.Response
// @Failure 403
// @Failure 404 {object} apimodels.Response
// @Failure 500 {object} apimodels.Response
// @router /api/v1/process_templates/{id} [get]
func (c *processTemplateApiController) get(ctx *fiber.Ctx) error {
	id, err := c.GetID(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	resp, err := processtemplatehandler.Instance.Get(middleware.GetUserID(ctx), id)
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "Ошибка получения шаблона процесса")
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(resp))
}

// @Summary Список
// @Tags Шаблон процесса
// @Description Все шаблоны
// @Param   Authorization		header		string	true	"Authorization token"
// @Success 200 {object} apimodels.Response{data=[]processapimodels.TemplateView}
// @Failure 403
// @Failure 500 {object} apimodels.Response
// @router /api/v1/process_templates [get]
func (c *processTemplateApiController) list(ctx *fiber.Ctx) error {
	list, err := processtemplatehandler.Instance.List(middleware.GetUserID(ctx))
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "Ошибка получения списка шаблонов")
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(list))
}

// @Summary Доступные для запуска
// @Tags Шаблон процесса
// @Description Шаблоны, которые пользователь может запустить
// @Param   Authorization		header		string	true	"Authorization token"
// @Success 200 {object} apimodels.Response{data=[]processapimodels.TemplateView}
// @Failure 403
// @Failure 500 {object} apimodels.Response
// @router /api/v1/process_templates/startable [get]
func (c *processTemplateApiController) listStartable(ctx *fiber.Ctx) error {
	list, err := processtemplatehandler.Instance.ListStartable(middleware.GetUserID(ctx))
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "Ошибка получения списка шаблонов")
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(list))
}
