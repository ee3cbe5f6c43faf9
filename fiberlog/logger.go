package fiberlog

import (
	"os"
	"slices"
	"time"

	"github.com/gofiber/fiber/v2"
	log "github.com/sirupsen/logrus"
)

func getLogrusFields(ftm map[string]FuncTag, c *fiber.Ctx, d *data) log.Fields {
	f := make(log.Fields)
	for k, ft := range ftm {
		value := ft(c, d)
		strValue, ok := value.(string)
		if ok {
			if strValue != "" {
				f[k] = strValue
			}
		} else {
			f[k] = value
		}
	}
	return f
}

// New middleware логирования запросов через logrus
func New(config ...Config) fiber.Handler {
	cfg := ConfigDefault
	if len(config) > 0 {
		cfg = config[0]
	}
	pid := os.Getpid()
	ftm := getFuncTagMap(cfg)
	return func(c *fiber.Ctx) error {
		if c.Method() == fiber.MethodOptions || slices.Contains(cfg.SkipPaths, c.Path()) {
			return c.Next()
		}
		d := &data{pid: pid, start: time.Now()}
		err := c.Next()
		d.end = time.Now()

		var entry *log.Entry
		if cfg.Logger == nil {
			entry = log.WithFields(getLogrusFields(ftm, c, d))
		} else {
			entry = cfg.Logger.WithFields(getLogrusFields(ftm, c, d))
		}
		status := c.Response().StatusCode()
		switch {
		case err != nil:
			entry.WithError(err).Error("запрос api")
		case status >= fiber.StatusInternalServerError:
			entry.Error("запрос api")
		case status >= fiber.StatusBadRequest:
			entry.Warn("запрос api")
		default:
			entry.Info("запрос api")
		}
		return err
	}
}
