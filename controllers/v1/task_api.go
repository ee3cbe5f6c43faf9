package apiv1

import (
	"bpm-backend/controllers"
	taskassignmenthandler "bpm-backend/lib/task-assignment"
	"bpm-backend/middleware"
	apimodels "bpm-backend/models/api"
	processapimodels "bpm-backend/models/api/process"
	"io"

	"github.com/gofiber/fiber/v2"
)

type taskApiController struct {
	controllers.BaseAPIController
}

func InitTaskApiRouters(app *fiber.App) {
	controller := taskApiController{}
	app.Route("tasks", func(router fiber.Router) {
		router.Get("my", controller.myTasks)
		router.Route(":id", func(idRoute fiber.Router) {
			idRoute.Put("start", controller.start)
			idRoute.Put("approve", controller.approve)
			idRoute.Put("reject", controller.reject)
			idRoute.Post("file", controller.uploadFile)
		})
	})
}

// @Summary Мои задачи
// @Tags Задача
// @Description Открытые задачи, в которых пользователь возможный исполнитель
// @Param   Authorization		header		string	true	"Authorization token"
// @Success 200 {object} apimodels.Response{data=[]processapimodels.TaskView}
// @Failure 403
// @Failure 500 {object} apimodels.Response
// @router /api/v1/tasks/my [get]
func (c *taskApiController) myTasks(ctx *fiber.Ctx) error {
	list, err := taskassignmenthandler.Instance.MyTasks(middleware.GetUserID(ctx))
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "Ошибка получения списка задач")
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(list))
}

// @Summary Взять в работу
// @Tags Задача
// @Description Перевод задачи в IN_PROGRESS
// @Param   Authorization		header		string	true	"Authorization token"
// @Param   id          		path    string  				    	true         "rec ID"
// @Success 200 {object} apimodels.Response
// @Failure 400 {object} apimodels.Response
// @Failure 403 {object} apimodels.Response
// @Failure 404 {object} apimodels.Response
// @Failure 409 {object} apimodels.Response
// @Failure 500 {object} apimodels.Response
// @router /api/v1/tasks/{id}/start [put]
func (c *taskApiController) start(ctx *fiber.Ctx) error {
	id, err := c.GetID(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	err = taskassignmenthandler.Instance.Start(middleware.GetUserID(ctx), id)
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "Ошибка изменения статуса задачи")
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(nil))
}

// @Summary Согласовать
// @Tags Задача
// @Description Согласование задачи, комментарий необязателен
// @Param   Authorization		header		string	true	"Authorization token"
// @Param	body body	 processapimodels.TaskComment	false	"request body"
// @Param   id          		path    string  				    	true         "rec ID"
// @Success 200 {object} apimodels.Response
// @Failure 400 {object} apimodels.Response
// @Failure 403 {object} apimodels.Response
// @Failure 404 {object} apimodels.Response
// @Failure 409 {object} apimodels.Response
// @Failure 500 {object} apimodels.Response
// @router /api/v1/tasks/{id}/approve [put]
func (c *taskApiController) approve(ctx *fiber.Ctx) error {
	id, err := c.GetID(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	payload, err := c.comment(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	err = taskassignmenthandler.Instance.Approve(middleware.GetUserID(ctx), id, payload)
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "Ошибка согласования задачи")
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(nil))
}

// @Summary Отклонить
// @Tags Задача
// @Description Отклонение задачи, комментарий обязателен
// @Param   Authorization		header		string	true	"Authorization token"
// @Param	body body	 processapimodels.TaskComment	true	"request body"
// @Param   id          		path    string  				    	true         "rec ID"
// @Success 200 {object} apimodels.Response
// @Failure 400 {object} apimodels.Response
// @Failure 403 {object} apimodels.Response
// @Failure 404 {object} apimodels.Response
// @Failure 409 {object} apimodels.Response
// @Failure 500 {object} apimodels.Response
// @router /api/v1/tasks/{id}/reject [put]
func (c *taskApiController) reject(ctx *fiber.Ctx) error {
	id, err := c.GetID(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	payload, err := c.comment(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	err = taskassignmenthandler.Instance.Reject(middleware.GetUserID(ctx), id, payload)
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "Ошибка отклонения задачи")
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(nil))
}

// @Summary Загрузить файл
// @Tags Задача
// @Description Загрузка файла к задаче, требующей файл
// @Param   Authorization		header		string	true	"Authorization token"
// @Param   id          		path    string  				    	true         "rec ID"
// @Param   file				formData	file	true	"file"
// @Success 200 {object} apimodels.Response{data=processapimodels.UploadResult}
// @Failure 400 {object} apimodels.Response
// @Failure 403 {object} apimodels.Response
// @Failure 404 {object} apimodels.Response
// @Failure 409 {object} apimodels.Response
// @Failure 502 {object} apimodels.Response
// @Failure 503 {object} apimodels.Response
// @router /api/v1/tasks/{id}/file [post]
func (c *taskApiController) uploadFile(ctx *fiber.Ctx) error {
	id, err := c.GetID(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	// без файла в форме обработчик сам вернет нужную ошибку
	taskFile := processapimodels.TaskFile{}
	file, err := ctx.FormFile("file")
	if err == nil {
		buffer, err := file.Open()
		if err != nil {
			return c.SendError(ctx, c.GetLogger(ctx), err, "Ошибка при получении файла")
		}
		defer buffer.Close()
		taskFile.Data, err = io.ReadAll(buffer)
		if err != nil {
			return c.SendError(ctx, c.GetLogger(ctx), err, "Ошибка при получении файла")
		}
		taskFile.Name = file.Filename
		taskFile.ContentType = file.Header.Get("Content-Type")
	}
	fileURL, err := taskassignmenthandler.Instance.UploadFile(ctx.UserContext(), middleware.GetUserID(ctx), id, taskFile)
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "Ошибка загрузки файла")
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(processapimodels.UploadResult{FileURL: fileURL}))
}

func (c *taskApiController) comment(ctx *fiber.Ctx) (processapimodels.TaskComment, error) {
	var payload processapimodels.TaskComment
	if len(ctx.Body()) == 0 {
		return payload, nil
	}
	err := c.BodyParser(ctx, &payload)
	return payload, err
}
