package filestorage

import (
	bpmerrors "bpm-backend/lib/utils/bpm-errors"
	"bytes"
	"context"
	"io"
	"strings"

	"github.com/minio/minio-go/v7"
	log "github.com/sirupsen/logrus"
)

type Provider interface {
	IsConfigured() bool
	// Put сохраняет файл по пути path и возвращает ссылку на него
	Put(ctx context.Context, data []byte, path, contentType string) (url string, err error)
}

var Instance Provider

// objectPutter часть клиента minio, нужная хранилищу
type objectPutter interface {
	PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
}

func NewInstance(client *minio.Client, bucketName, publicHost string) {
	Instance = newImpl(client, bucketName, publicHost)
}

func newImpl(client *minio.Client, bucketName, publicHost string) Provider {
	result := &impl{
		bucketName: bucketName,
		baseURL:    strings.TrimRight(publicHost, "/"),
	}
	if client != nil {
		result.client = client
		if result.baseURL == "" {
			result.baseURL = strings.TrimRight(client.EndpointURL().String(), "/")
		}
	}
	return result
}

type impl struct {
	client     objectPutter
	bucketName string
	baseURL    string
}

func (i impl) IsConfigured() bool {
	return i.client != nil
}

func (i impl) Put(ctx context.Context, data []byte, path, contentType string) (string, error) {
	if !i.IsConfigured() {
		return "", bpmerrors.Configuration("File storage is not configured")
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	_, err := i.client.PutObject(ctx, i.bucketName, path, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		log.WithError(err).WithField("path", path).Error("ошибка загрузки файла в хранилище")
		return "", bpmerrors.ExternalService(err, "Failed to upload file")
	}
	return i.baseURL + "/" + i.bucketName + "/" + path, nil
}
