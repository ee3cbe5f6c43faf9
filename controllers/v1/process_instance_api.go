package apiv1

import (
	"bpm-backend/controllers"
	processinstancehandler "bpm-backend/lib/process-instance"
	"bpm-backend/middleware"
	apimodels "bpm-backend/models/api"
	processapimodels "bpm-backend/models/api/process"

	"github.com/gofiber/fiber/v2"
)

type processInstanceApiController struct {
	controllers.BaseAPIController
}

func InitProcessInstanceApiRouters(app *fiber.App) {
	controller := processInstanceApiController{}
	app.Route("process_instances", func(router fiber.Router) {
		router.Post("", controller.start)
		router.Get("my", controller.listMine)
		router.Post("list", controller.list)
		router.Get(":id", controller.get)
	})
}

// @Summary Запуск
// @Tags Экземпляр процесса
// @Description Запуск процесса по шаблону
// @Param   Authorization		header		string	true	"Authorization token"
// @Param	body body	 processapimodels.InstanceStartData	true	"request body"
// @Success 200 {object} apimodels.Response{data=string}
// @Failure 400 {object} apimodels.Response
// @Failure 403 {object} apimodels.Response
// @Failure 404 {object} apimodels.Response
// @Failure 500 {object} apimodels.Response
// @router /api/v1/process_instances [post]
func (c *processInstanceApiController) start(ctx *fiber.Ctx) error {
	var payload processapimodels.InstanceStartData
	if err := c.BodyParser(ctx, &payload); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	id, err := processinstancehandler.Instance.Start(middleware.GetUserID(ctx), payload)
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "Ошибка запуска процесса")
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(id))
}

// @Summary Получение по ИД
// @Tags Экземпляр процесса
// @Description Экземпляр с задачами и историей действий
// @Param   Authorization		header		string	true	"Authorization token"
// @Param   id          		path    string  				    	true         "rec ID"
// @Success 200 {object} apimodels.Response{data=processapimodels.InstanceDetailView}
// @Failure 400 {object} apimodels.Response
// @Failure 403
// @Failure 404 {object} apimodels.Response
// @Failure 500 {object} apimodels.Response
// @router /api/v1/process_instances/{id} [get]
func (c *processInstanceApiController) get(ctx *fiber.Ctx) error {
	id, err := c.GetID(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	resp, err := processinstancehandler.Instance.Get(middleware.GetUserID(ctx), id)
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "Ошибка получения процесса")
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(resp))
}

// @Summary Мои процессы
// @Tags Экземпляр процесса
// @Description Процессы, запущенные пользователем
// @Param   Authorization		header		string	true	"Authorization token"
// @Param   page				query		int		false	"page"
// @Param   limit				query		int		false	"limit"
// @Success 200 {object} apimodels.ScrollerResponse{data=[]processapimodels.InstanceView}
// @Failure 403
// @Failure 500 {object} apimodels.Response
// @router /api/v1/process_instances/my [get]
func (c *processInstanceApiController) listMine(ctx *fiber.Ctx) error {
	pagination := apimodels.Pagination{
		Page:  ctx.QueryInt("page"),
		Limit: ctx.QueryInt("limit"),
	}
	list, rowCount, err := processinstancehandler.Instance.ListMine(middleware.GetUserID(ctx), pagination)
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "Ошибка получения списка процессов")
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewScrollerResponse(list, rowCount))
}

// @Summary Список
// @Tags Экземпляр процесса
// @Description Все процессы, доступно администраторам
// @Param   Authorization		header		string	true	"Authorization token"
// @Param	body body	 processapimodels.InstanceFilter	true	"request body"
// @Success 200 {object} apimodels.ScrollerResponse{data=[]processapimodels.InstanceView}
// @Failure 400 {object} apimodels.Response
// @Failure 403
// @Failure 500 {object} apimodels.Response
// @router /api/v1/process_instances/list [post]
func (c *processInstanceApiController) list(ctx *fiber.Ctx) error {
	var payload processapimodels.InstanceFilter
	if err := c.BodyParser(ctx, &payload); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	list, rowCount, err := processinstancehandler.Instance.List(middleware.GetUserID(ctx), payload)
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "Ошибка получения списка процессов")
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewScrollerResponse(list, rowCount))
}
