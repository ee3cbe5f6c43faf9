package filestorage

import (
	bpmerrors "bpm-backend/lib/utils/bpm-errors"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/minio/minio-go/v7"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

type putterMock struct {
	bucket      string
	object      string
	data        []byte
	contentType string
	err         error
}

func (p *putterMock) PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error) {
	if p.err != nil {
		return minio.UploadInfo{}, p.err
	}
	p.bucket = bucketName
	p.object = objectName
	p.contentType = opts.ContentType
	data, err := io.ReadAll(reader)
	if err != nil {
		return minio.UploadInfo{}, err
	}
	p.data = data
	return minio.UploadInfo{Bucket: bucketName, Key: objectName, Size: objectSize}, nil
}

func TestSanitizeFileName(t *testing.T) {
	require.Equal(t, "scan_01.pdf", SanitizeFileName("scan 01.pdf"))
	require.Equal(t, "_____.txt", SanitizeFileName("отчет.txt"))
	require.Equal(t, ".._.._etc_passwd", SanitizeFileName("../../etc/passwd"))
	require.Equal(t, "file", SanitizeFileName(""))
	require.Len(t, SanitizeFileName(strings.Repeat("a", 300)), 200)
	require.Equal(t, "bpm/tasks/t1/a_b.pdf", TaskFilePath("t1", "a b.pdf"))
}

func TestPut(t *testing.T) {
	t.Run("not configured", func(t *testing.T) {
		storage := newImpl(nil, "bpm", "")
		require.False(t, storage.IsConfigured())
		_, err := storage.Put(context.Background(), []byte("x"), "bpm/tasks/t1/a.pdf", "application/pdf")
		require.True(t, bpmerrors.Is(err, bpmerrors.KindConfiguration))
	})
	t.Run("upload", func(t *testing.T) {
		mock := &putterMock{}
		storage := impl{client: mock, bucketName: "bpm", baseURL: "https://files.example.com"}
		url, err := storage.Put(context.Background(), []byte("content"), "bpm/tasks/t1/a.pdf", "")
		require.NoError(t, err)
		require.Equal(t, "https://files.example.com/bpm/bpm/tasks/t1/a.pdf", url)
		require.Equal(t, "bpm/tasks/t1/a.pdf", mock.object)
		require.Equal(t, "application/octet-stream", mock.contentType)
		require.Equal(t, []byte("content"), mock.data)
	})
	t.Run("upload failure", func(t *testing.T) {
		storage := impl{client: &putterMock{err: errors.New("connection refused")}, bucketName: "bpm"}
		_, err := storage.Put(context.Background(), []byte("content"), "bpm/tasks/t1/a.pdf", "")
		require.True(t, bpmerrors.Is(err, bpmerrors.KindExternalService))
	})
}
