package middleware

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	log "github.com/sirupsen/logrus"
)

var errNotifyClient = &http.Client{Timeout: 5 * time.Second}

// ErrNotify отправляет на addr сведения об ответах с кодом 5xx
func ErrNotify(addr string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		err := c.Next()
		statusCode := c.Response().StatusCode()

		if statusCode >= http.StatusInternalServerError {
			body := string(c.Response().Body())

			var data struct {
				Status  string `json:"status"`
				Message string `json:"message"`
			}
			unmErr := json.Unmarshal(c.Response().Body(), &data)
			if unmErr != nil {
				log.WithError(unmErr).Warn("ошибка разбора ответа для оповещения об ошибке")
			}

			method := c.Method()
			path := c.OriginalURL()
			if r := c.Route(); r != nil {
				path = r.Path
			}

			msg := data.Message
			if msg == "" {
				msg = body
			}

			go func() {
				payload := fmt.Sprintf(
					`{"service":"bpm-backend","code":%d,"method":%q,"path":%q,"error":%q}`,
					statusCode, method, path, msg)
				resp, reqErr := errNotifyClient.Post(addr, "application/json", strings.NewReader(payload))
				if reqErr != nil {
					log.WithError(reqErr).Warn("ошибка отправки оповещения об ошибке")
					return
				}
				resp.Body.Close()
			}()
		}

		return err
	}
}
