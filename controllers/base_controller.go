package controllers

import (
	bpmerrors "bpm-backend/lib/utils/bpm-errors"
	"bpm-backend/middleware"
	apimodels "bpm-backend/models/api"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

type BaseAPIController struct{}

var kindStatus = map[bpmerrors.Kind]int{
	bpmerrors.KindUnauthorized:    fiber.StatusUnauthorized,
	bpmerrors.KindForbidden:       fiber.StatusForbidden,
	bpmerrors.KindNotFound:        fiber.StatusNotFound,
	bpmerrors.KindValidation:      fiber.StatusBadRequest,
	bpmerrors.KindInvalidState:    fiber.StatusConflict,
	bpmerrors.KindConfiguration:   fiber.StatusServiceUnavailable,
	bpmerrors.KindExternalService: fiber.StatusBadGateway,
}

// StatusOf http-код ответа для ошибки обработчика
func StatusOf(err error) int {
	if status, ok := kindStatus[bpmerrors.KindOf(err)]; ok {
		return status
	}
	return fiber.StatusInternalServerError
}

func (c *BaseAPIController) BodyParser(ctx *fiber.Ctx, out interface{}) error {
	if err := ctx.BodyParser(out); err != nil {
		log.WithError(err).Error("ошибка распознавания запроса")
		return errors.New("не удалось получить данные из запроса")
	}
	return nil
}

func (c *BaseAPIController) GetID(ctx *fiber.Ctx) (string, error) {
	id := strings.TrimSpace(ctx.Params("id"))
	if id == "" {
		return "", errors.New("не указан идентификатор")
	}
	return id, nil
}

func (c *BaseAPIController) GetLogger(ctx *fiber.Ctx) *log.Entry {
	return log.
		WithField("user_id", middleware.GetUserID(ctx)).
		WithField("method", ctx.Method()).
		WithField("path", ctx.Path())
}

// SendError отвечает кодом по виду ошибки, для ошибок вне таксономии пишет в лог и скрывает подробности
func (c *BaseAPIController) SendError(ctx *fiber.Ctx, logger *log.Entry, err error, msg string) error {
	status := StatusOf(err)
	if status == fiber.StatusInternalServerError {
		logger.WithError(err).Error(msg)
		return ctx.Status(status).JSON(apimodels.NewError(msg))
	}
	if status == fiber.StatusBadGateway || status == fiber.StatusServiceUnavailable {
		logger.WithError(err).Warn(msg)
	}
	return ctx.Status(status).JSON(apimodels.NewError(bpmerrors.Message(err)))
}
