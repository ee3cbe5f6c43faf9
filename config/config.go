package config

import (
	"github.com/gotify/configor"
)

var Conf *Configuration

type Configuration struct {
	App struct {
		ListenAddr  string `default:"" env:"APP_HOST"`
		Port        int    `default:"8080"  env:"APP_PORT"`
		SwaggerPath string `default:"./docs/swagger.json" env:"APP_SWAGGER_PATH"`
		CorsOrigins string `default:"*" env:"APP_CORS_ORIGINS"`

		// ErrNotifyURL адрес для оповещений об ответах 5xx, пустой отключает оповещения
		ErrNotifyURL  string `default:"" env:"APP_ERR_NOTIFY_URL"`
		JSONBodyLimit int64  `default:"1048576" env:"APP_JSON_BODY_LIMIT"`
		UploadLimitMb int    `default:"50" env:"APP_UPLOAD_LIMIT_MB"`
	}
	Database struct {
		Host           string `default:"127.0.0.1" env:"DB_HOST"`
		Port           string `default:"5432" env:"DB_PORT"`
		Name           string `default:"bpm" env:"DB_NAME"`
		User           string `default:"postgres" env:"DB_USER"`
		Password       string `default:"postgres" env:"DB_PASSWORD"`
		MigrateOnStart *bool  `default:"true" env:"DB_MIGRATE_ON_START"`
		DebugMode      *bool  `default:"false" env:"DB_DEBUG_MODE"`
		InMemory       bool   `default:"false" env:"DB_IN_MEMORY"`
	}
	Auth struct {
		JWTSecret      string `default:"" env:"AUTH_JWT_SECRET"`
		JWTExpireInSec int    `default:"86400" env:"AUTH_JWT_EXPIRE_IN_SEC"`
	}
	S3 struct {
		Endpoint        string `default:"" env:"S3_ENDPOINT"`
		AccessKeyID     string `default:"" env:"S3_ACCESS_KEY_ID"`
		SecretAccessKey string `default:"" env:"S3_SECRET_ACCESS_KEY"`
		UseSSL          *bool  `default:"true" env:"S3_USE_SSL"`
		BucketName      string `default:"bpm" env:"S3_BUCKET_NAME"`
		PublicHost      string `default:"" env:"S3_PUBLIC_HOST"`
	}
	Smtp struct {
		User       string  `default:"" env:"SMTP_USER"`
		Password   string  `default:"" env:"SMTP_PASSWORD"`
		Host       string  `default:"" env:"SMTP_HOST"`
		Port       string  `default:"" env:"SMTP_PORT"`
		TLSEnabled *bool   `default:"true" env:"SMTP_TLS_ENABLED"`
		From       string  `default:"" env:"SMTP_FROM"`
		RatePerSec float64 `default:"5" env:"SMTP_RATE_PER_SEC"`
	}
	Notify struct {
		SiteURL             string `default:"http://localhost:3000" env:"SITE_URL"`
		EmailEnabled        *bool  `default:"true" env:"NOTIFY_EMAIL_ENABLED"`
		WsEnabled           *bool  `default:"true" env:"NOTIFY_WS_ENABLED"`
		BreakerMaxFailures  uint32 `default:"5" env:"NOTIFY_BREAKER_MAX_FAILURES"`
		BreakerTimeoutInSec int    `default:"60" env:"NOTIFY_BREAKER_TIMEOUT_IN_SEC"`
		PushRetentionDays   int    `default:"14" env:"NOTIFY_PUSH_RETENTION_DAYS"`
	}
	Engine struct {
		DepartmentRulesEnabled bool `default:"false" env:"ENGINE_DEPARTMENT_RULES_ENABLED"`
	}
	Admin struct {
		Email     string `default:"" env:"ADMIN_EMAIL"`
		FirstName string `default:"Super" env:"ADMIN_FIRST_NAME"`
		LastName  string `default:"Admin" env:"ADMIN_LAST_NAME"`
	}
}

func configFiles() []string {
	return []string{"config.yml"}
}

func InitConfig() {
	if Conf != nil {
		return
	}
	conf := new(Configuration)
	err := configor.New(&configor.Config{}).Load(conf, configFiles()...)
	if err != nil {
		panic(err)
	}
	Conf = conf
}
