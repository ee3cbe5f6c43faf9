package initializers

import (
	"bpm-backend/config"
	filestorage "bpm-backend/lib/file-storage"
	s3client "bpm-backend/s3"
	"context"

	log "github.com/sirupsen/logrus"
)

func InitS3(ctx context.Context) {
	if !s3client.IsConfigured() {
		log.Warn("S3 не настроен, загрузка файлов к задачам недоступна")
	} else if err := s3client.Connect(ctx); err != nil {
		log.WithError(err).Error("Ошибка инициализации клиента S3")
	} else {
		log.Info("S3 клиент успешно инициализирован")
	}
	filestorage.NewInstance(s3client.Client, config.Conf.S3.BucketName, config.Conf.S3.PublicHost)
}
