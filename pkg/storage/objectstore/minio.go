package objectstore

import (
	"bytes"
	"context"
	"fmt"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

type minioClient struct {
	client *minio.Client
}

func newMinioClient(cfg Config) (Client, error) {
	cl, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("init minio client: %w", err)
	}

	return &minioClient{client: cl}, nil
}

func (m *minioClient) Get(ctx context.Context, ref ObjectRef) (*Object, error) {
	obj, err := m.client.GetObject(ctx, ref.Bucket, ref.Name, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("get object %s: %w", ref, err)
	}

	// GetObject is lazy; Stat surfaces missing objects and auth failures.
	info, err := obj.Stat()
	if err != nil {
		obj.Close()
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return nil, fmt.Errorf("get object %s: %w", ref, ErrNotFound)
		}
		return nil, fmt.Errorf("stat object %s: %w", ref, err)
	}

	return &Object{
		Body:        obj,
		Checksum:    trimETag(info.ETag),
		ContentType: info.ContentType,
		Size:        info.Size,
	}, nil
}

func (m *minioClient) Put(ctx context.Context, ref ObjectRef, contentType string, data []byte) (string, error) {
	opts := minio.PutObjectOptions{ContentType: contentType}
	info, err := m.client.PutObject(ctx, ref.Bucket, ref.Name, bytes.NewReader(data), int64(len(data)), opts)
	if err != nil {
		return "", fmt.Errorf("put object %s: %w", ref, err)
	}
	return trimETag(info.ETag), nil
}

func (m *minioClient) Close() error {
	return nil
}
