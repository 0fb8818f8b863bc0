// Package miniostorage provides structure to work with minio-storage
package miniostorage

import (
	"context"
	"errors"
	"io"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/wb-go/wbf/config"
	"github.com/wb-go/wbf/zlog"
)

const defaultEndpoint = "minio:9000"

type MinioExportStorage struct {
	bucket string
	client *minio.Client
}

func NewMinioClient(cfg *config.Config) (*MinioExportStorage, error) {
	bucket := cfg.GetString("BUCKET_NAME")
	if bucket == "" {
		bucket = "exports"
		zlog.Logger.Warn().Str("bucket", bucket).Msg("Bucket name is empty. Using default value")
	}

	endpoint := cfg.GetString("MINIO_ENDPOINT")
	if endpoint == "" {
		endpoint = defaultEndpoint
	}

	strg, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.GetString("MINIO_USER"), cfg.GetString("MINIO_PASS"), ""),
		Secure: cfg.GetString("MINIO_SECURE") == "true",
	})
	if err != nil {
		return nil, err
	}

	// создаем бакет если его нет
	if err := ensureBucket(context.Background(), strg, bucket); err != nil {
		return nil, err
	}

	return &MinioExportStorage{bucket: bucket, client: strg}, nil
}

func (s *MinioExportStorage) Put(ctx context.Context, key string, size int64, contentType string, r io.Reader) error {
	if r == nil {
		return errors.New("nil reader passed to storage.Put")
	}

	_, err := s.client.PutObject(ctx, s.bucket, key, r, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	return err
}

func (s *MinioExportStorage) Delete(ctx context.Context, key string) error {
	return s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{})
}

func (s *MinioExportStorage) Get(ctx context.Context, key string) (io.ReadCloser, string, error) {
	res, err := s.client.GetObject(ctx, s.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, "", err
	}

	// GetObject ленивый - ошибка отсутствия объекта приходит только на Stat
	resStat, err := res.Stat()
	if err != nil {
		_ = res.Close()
		return nil, "", err
	}

	return res, resStat.ContentType, nil
}

func ensureBucket(ctx context.Context, client *minio.Client, bucket string) error {
	exists, err := client.BucketExists(ctx, bucket)
	if err != nil {
		return err
	}

	if exists {
		return nil
	}

	return client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{})
}
