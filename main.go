package main

import (
	"bpm-backend/config"
	apiv1 "bpm-backend/controllers/v1"
	"bpm-backend/fiberlog"
	"bpm-backend/initializers"
	"bpm-backend/lib/notifier"
	"bpm-backend/lib/ws"
	"bpm-backend/middleware"
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberRecover "github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())

	initializers.InitAllServices(ctx)

	app := fiber.New(fiber.Config{
		BodyLimit: config.Conf.App.UploadLimitMb * 1024 * 1024,
	})
	app.Use(fiberRecover.New())
	if config.Conf.App.ErrNotifyURL != "" {
		app.Use(middleware.ErrNotify(config.Conf.App.ErrNotifyURL))
	}

	if _, err := os.Stat(config.Conf.App.SwaggerPath); err == nil {
		app.Use(swagger.New(swagger.Config{
			Path:     "/swagger",
			FilePath: config.Conf.App.SwaggerPath,
		}))
	}
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	//api
	apiV1 := fiber.New()
	apiV1.Use(fiberlog.New(*initializers.LoggerConfig))
	apiV1.Use(cors.New(cors.Config{
		AllowOrigins: config.Conf.App.CorsOrigins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET, POST, PATCH, DELETE, PUT",
	}))
	apiV1.Use(middleware.WithBodyLimit(config.Conf.App.JSONBodyLimit, "/file"))
	apiV1.Use(middleware.AuthorizationRequired())
	apiV1.Use(middleware.RbacMiddleware())
	app.Mount("/api/v1", apiV1)
	apiv1.InitPermissionApiRouters(apiV1)
	apiv1.InitDirectoryApiRouters(apiV1)
	apiv1.InitProcessTemplateApiRouters(apiV1)
	apiv1.InitProcessInstanceApiRouters(apiV1)
	apiv1.InitTaskApiRouters(apiV1)

	//ws
	wsApp := fiber.New()
	wsApp.Use(middleware.AuthorizationRequired())
	app.Mount("/ws", wsApp)
	ws.InitWs(wsApp)

	// gracefully shutdown
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	wg := sync.WaitGroup{}
	go func() {
		_ = <-c
		wg.Add(1)
		defer wg.Done()
		log.Info("Gracefully shutting down...")
		cancel()
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			log.WithError(err).Error("Error when try gracefully shutting down")
		}
		if n, ok := notifier.Instance.(*notifier.Notifier); ok {
			n.Wait()
		}
		log.Info("Gracefully shutting down finished")
	}()

	// run HTTP server
	if err := app.Listen(fmt.Sprintf("%s:%d", config.Conf.App.ListenAddr, config.Conf.App.Port)); err != nil {
		log.Fatal(err)
	}

	wg.Wait()
	log.Info("HTTP server successfully stopped")
}
