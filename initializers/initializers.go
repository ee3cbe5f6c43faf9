package initializers

import (
	"bpm-backend/config"
	"bpm-backend/fiberlog"
	directoryhandler "bpm-backend/lib/directory"
	filestorage "bpm-backend/lib/file-storage"
	"bpm-backend/lib/notifier"
	processinstancehandler "bpm-backend/lib/process-instance"
	processtemplatehandler "bpm-backend/lib/process-template"
	"bpm-backend/lib/rbac"
	"bpm-backend/lib/smtp"
	taskassignmenthandler "bpm-backend/lib/task-assignment"
	connectionhub "bpm-backend/lib/ws/hub/connection-hub"
	pushcleanupworker "bpm-backend/lib/ws/push-cleanup-worker"
	"context"
	"time"
)

var LoggerConfig *fiberlog.Config

func InitAllServices(ctx context.Context) {
	LoggerConfig = InitLogger()
	config.InitConfig()
	InitDBConnection()
	InitS3(ctx)
	InitSmtp()
	connectionhub.Init(Repo.Stores().PushData)
	notifier.NewHandler(notifier.Config{
		SiteURL:            config.Conf.Notify.SiteURL,
		EmailEnabled:       *config.Conf.Notify.EmailEnabled,
		WsEnabled:          *config.Conf.Notify.WsEnabled,
		BreakerMaxFailures: config.Conf.Notify.BreakerMaxFailures,
		BreakerTimeout:     time.Second * time.Duration(config.Conf.Notify.BreakerTimeoutInSec),
		EmailRatePerSec:    config.Conf.Smtp.RatePerSec,
	}, smtp.Instance, connectionhub.Instance, Repo.Stores().PushData)
	rbac.NewHandler()
	departmentRules := config.Conf.Engine.DepartmentRulesEnabled
	directoryhandler.NewHandler(Repo)
	processtemplatehandler.NewHandler(Repo)
	processinstancehandler.NewHandler(Repo, notifier.Instance, departmentRules)
	taskassignmenthandler.NewHandler(Repo, notifier.Instance, filestorage.Instance, departmentRules)
	initWorkers(ctx)
}

func initWorkers(ctx context.Context) {
	if config.Conf.Notify.PushRetentionDays > 0 {
		retention := time.Hour * 24 * time.Duration(config.Conf.Notify.PushRetentionDays)
		pushcleanupworker.StartWorker(ctx, Repo.Stores().PushData, retention)
	}
}
