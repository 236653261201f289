package objectstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ErrNotFound is returned by Get when the object does not exist.
var ErrNotFound = errors.New("object not found")

// Config contains the information required to talk to an object store.
type Config struct {
	Provider  string
	Endpoint  string
	Region    string
	AccessKey string
	SecretKey string
	UseSSL    bool
}

// ObjectRef addresses an object. S3-compatible providers have a single
// namespace per endpoint, so Namespace only travels along for provenance.
type ObjectRef struct {
	Namespace string
	Bucket    string
	Name      string
}

func (r ObjectRef) String() string {
	return fmt.Sprintf("%s/%s/%s", r.Namespace, r.Bucket, r.Name)
}

// Object is an opened object body. Callers must close Body.
type Object struct {
	Body        io.ReadCloser
	Checksum    string
	ContentType string
	Size        int64
}

// Client represents the capabilities the ingestion pipeline expects.
type Client interface {
	Get(ctx context.Context, ref ObjectRef) (*Object, error)
	// Put writes data under ref and returns the checksum reported by the store.
	Put(ctx context.Context, ref ObjectRef, contentType string, data []byte) (string, error)
	Close() error
}

// New creates an object store client based on the given configuration.
func New(ctx context.Context, cfg Config) (Client, error) {
	switch strings.ToLower(cfg.Provider) {
	case "minio":
		return newMinioClient(cfg)
	case "s3":
		return newS3Client(ctx, cfg)
	default:
		return nil, fmt.Errorf("unsupported object store provider: %s", cfg.Provider)
	}
}

func trimETag(etag string) string {
	return strings.Trim(etag, `"`)
}
