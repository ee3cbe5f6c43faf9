package fiberlog

import (
	authutils "bpm-backend/lib/utils/auth-utils"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
)

const (
	TagPid     = "pid"
	TagStatus  = "status"
	TagLatency = "latency"
	TagMethod  = "method"
	TagPath    = "path"
	TagIP      = "ip"
	TagBody    = "body"
	TagResBody = "res_body"
	TagUserID  = "user_id"
	RequestID  = "request_id"
)

// тело длиннее обрезается
const maxBodyLen = 2048

type data struct {
	pid   int
	start time.Time
	end   time.Time
}

// FuncTag вычисляет значение поля лога для запроса
type FuncTag func(c *fiber.Ctx, d *data) interface{}

var funcTags = map[string]FuncTag{
	TagPid: func(c *fiber.Ctx, d *data) interface{} {
		return d.pid
	},
	TagStatus: func(c *fiber.Ctx, d *data) interface{} {
		return c.Response().StatusCode()
	},
	TagLatency: func(c *fiber.Ctx, d *data) interface{} {
		return d.end.Sub(d.start).String()
	},
	TagMethod: func(c *fiber.Ctx, d *data) interface{} {
		return c.Method()
	},
	TagPath: func(c *fiber.Ctx, d *data) interface{} {
		return c.Path()
	},
	TagIP: func(c *fiber.Ctx, d *data) interface{} {
		return c.IP()
	},
	TagBody: func(c *fiber.Ctx, d *data) interface{} {
		if !isJSON(string(c.Request().Header.ContentType())) {
			return ""
		}
		return truncate(string(c.Body()))
	},
	TagResBody: func(c *fiber.Ctx, d *data) interface{} {
		if !isJSON(string(c.Response().Header.ContentType())) {
			return ""
		}
		return truncate(string(c.Response().Body()))
	},
	TagUserID: func(c *fiber.Ctx, d *data) interface{} {
		if sub, ok := authutils.GetClaims(c)["sub"].(string); ok {
			return sub
		}
		return ""
	},
	RequestID: func(c *fiber.Ctx, d *data) interface{} {
		return c.Get(fiber.HeaderXRequestID)
	},
}

func getFuncTagMap(cfg Config) map[string]FuncTag {
	result := make(map[string]FuncTag, len(cfg.Tags))
	for _, tag := range cfg.Tags {
		if ft, ok := funcTags[tag]; ok {
			result[tag] = ft
		}
	}
	return result
}

func isJSON(contentType string) bool {
	return strings.HasPrefix(contentType, fiber.MIMEApplicationJSON)
}

func truncate(s string) string {
	if len(s) <= maxBodyLen {
		return s
	}
	return s[:maxBodyLen] + "..."
}
