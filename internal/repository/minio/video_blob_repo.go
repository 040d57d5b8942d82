package minio

import (
	"bytes"
	"context"

	"github.com/jimlawless/whereami"
	"github.com/minio/minio-go/v7"
	"github.com/tewff14/searh-your-moments-webapp/internal/cfg"
	"github.com/tewff14/searh-your-moments-webapp/pkg/e"
)

// VideoBlobRepo хранит исходные видео и превью в MinIO.
type VideoBlobRepo struct {
	mc  *minio.Client
	cfg *cfg.MinIOCfg
}

func NewVideoBlobRepo(mc *minio.Client, cfg *cfg.MinIOCfg) *VideoBlobRepo {
	return &VideoBlobRepo{
		mc:  mc,
		cfg: cfg,
	}
}

// Upload загружает объект по указанному ключу.
func (r *VideoBlobRepo) Upload(ctx context.Context, objectKey string, data []byte, contentType string) error {
	reader := bytes.NewReader(data)

	_, err := r.mc.PutObject(ctx, r.cfg.BucketName, objectKey, reader, int64(len(data)), minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	return nil
}

// DownloadToFile скачивает объект в локальный файл — видео материализуется
// на диске перед извлечением кадров.
func (r *VideoBlobRepo) DownloadToFile(ctx context.Context, objectKey string, localPath string) error {
	if err := r.mc.FGetObject(ctx, r.cfg.BucketName, objectKey, localPath, minio.GetObjectOptions{}); err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	return nil
}

// Delete удаляет объект по ключу.
func (r *VideoBlobRepo) Delete(ctx context.Context, objectKey string) error {
	if err := r.mc.RemoveObject(ctx, r.cfg.BucketName, objectKey, minio.RemoveObjectOptions{}); err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	return nil
}

// PresignedURL возвращает временную ссылку на объект для стриминга и превью.
func (r *VideoBlobRepo) PresignedURL(ctx context.Context, objectKey string) (string, error) {
	url, err := r.mc.PresignedGetObject(ctx, r.cfg.BucketName, objectKey, r.cfg.PresignTTL, nil)
	if err != nil {
		return "", e.Wrap(whereami.WhereAmI(), err)
	}

	return url.String(), nil
}
