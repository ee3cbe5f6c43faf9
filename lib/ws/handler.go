package ws

import (
	wsclient "bpm-backend/lib/ws/client"
	connectionhub "bpm-backend/lib/ws/hub/connection-hub"
	"bpm-backend/middleware"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
)

func InitWs(app *fiber.App) {
	app.Use("", func(ctx *fiber.Ctx) error {
		if !websocket.IsWebSocketUpgrade(ctx) {
			return fiber.ErrUpgradeRequired
		}
		userID := middleware.GetUserID(ctx)
		ctx.Locals("userID", userID)
		return ctx.Next()
	})
	app.Get("/", websocket.New(supportHandler))
}

// @Summary Уведомления о задачах и процессах
// @Tags Websocket
// @Description Уведомления о назначении, старте и завершении задач и процессов
// @Param   Authorization		header		string		true		"Authorization token"
// @Success 200 {object} wsmodels.ServerMessage
// @Failure 400
// @Failure 403
// @Failure 500
// @router /ws [get]
func supportHandler(c *websocket.Conn) {

	userID := c.Locals("userID").(string)
	client := wsclient.NewClient(userID, c)
	connectionhub.Instance.AddClient(userID, c)
	defer func() {
		connectionhub.Instance.DeleteClient(userID)
	}()
	client.Dispatch()
}
