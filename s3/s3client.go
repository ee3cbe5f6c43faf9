package s3client

import (
	"bpm-backend/config"
	"context"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/pkg/errors"
)

// Client nil, если хранилище не настроено
var Client *minio.Client

func IsConfigured() bool {
	return config.Conf.S3.Endpoint != "" &&
		config.Conf.S3.AccessKeyID != "" &&
		config.Conf.S3.SecretAccessKey != ""
}

func Connect(ctx context.Context) error {
	if !IsConfigured() {
		return nil
	}
	useSSL := config.Conf.S3.UseSSL == nil || *config.Conf.S3.UseSSL
	minioClient, err := minio.New(config.Conf.S3.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(config.Conf.S3.AccessKeyID, config.Conf.S3.SecretAccessKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return errors.Wrap(err, "ошибка создания клиента s3")
	}
	err = makeBucket(ctx, minioClient, config.Conf.S3.BucketName)
	if err != nil {
		return errors.Wrap(err, "ошибка создания бакета")
	}
	Client = minioClient
	return nil
}

func makeBucket(ctx context.Context, minioClient *minio.Client, bucketName string) error {
	location := "us-east-1"
	exists, err := minioClient.BucketExists(ctx, bucketName)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}
	return minioClient.MakeBucket(ctx, bucketName, minio.MakeBucketOptions{Region: location})
}
