package storage

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"path"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"storyapi/internal/config"
	"storyapi/internal/model"
)

// objectClient is the subset of *minio.Client used by MinIO.
type objectClient interface {
	PutObject(ctx context.Context, bucket, object string, r io.Reader, size int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
	StatObject(ctx context.Context, bucket, object string, opts minio.StatObjectOptions) (minio.ObjectInfo, error)
	CopyObject(ctx context.Context, dst minio.CopyDestOptions, src minio.CopySrcOptions) (minio.UploadInfo, error)
}

// MinIO stores assets in an S3-compatible bucket (MinIO, AWS S3, etc.) keyed by
// AssetReference.Key, so the CDN can front the bucket with the same relative paths.
// It is safe for concurrent use by multiple goroutines.
type MinIO struct {
	client objectClient
	bucket string
}

var _ AssetStore = (*MinIO)(nil)

// NewMinIO creates a new S3-compatible asset store backed by MinIO.
// It validates connectivity and ensures the bucket exists (creates it if missing).
func NewMinIO(cfg config.MinIOConfig) (*MinIO, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("minio endpoint is required")
	}
	if cfg.AccessKey == "" || cfg.SecretKey == "" {
		return nil, fmt.Errorf("minio credentials are required")
	}
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("minio bucket is required")
	}

	cli, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Ensure bucket exists.
	exists, err := cli.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket existence: %w", err)
	}
	if !exists {
		if err := cli.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("create bucket: %w", err)
		}
	}

	return &MinIO{client: cli, bucket: cfg.Bucket}, nil
}

// WriteUpload streams r into the bucket under dst.Key. The size is unknown, so the
// client falls back to multipart upload; an existing object is overwritten.
func (m *MinIO) WriteUpload(ctx context.Context, r io.Reader, dst model.AssetReference) error {
	if r == nil {
		return fmt.Errorf("%w: nil reader", ErrWrite)
	}
	_, err := m.client.PutObject(ctx, m.bucket, dst.Key, ctxReader{ctx: ctx, r: r}, -1, minio.PutObjectOptions{
		ContentType: contentType(dst.Key),
	})
	if err != nil {
		return fmt.Errorf("%w: put %s: %v", ErrWrite, dst.Key, err)
	}
	return nil
}

// Duplicate copies src to dst server side. The existence check on dst and the copy
// are two calls, so a concurrent writer of the same random name is not detected.
func (m *MinIO) Duplicate(ctx context.Context, src, dst model.AssetReference) (bool, error) {
	st, err := m.client.StatObject(ctx, m.bucket, src.Key, minio.StatObjectOptions{})
	if err != nil {
		if isNotFound(err) {
			return false, fmt.Errorf("%w: %s", ErrSourceMissing, src.Key)
		}
		return false, fmt.Errorf("%w: stat source %s: %v", ErrWrite, src.Key, err)
	}
	if st.Size == 0 {
		return false, nil
	}

	if _, err := m.client.StatObject(ctx, m.bucket, dst.Key, minio.StatObjectOptions{}); err == nil {
		return false, fmt.Errorf("%w: %s", ErrDestinationExists, dst.Key)
	} else if !isNotFound(err) {
		return false, fmt.Errorf("%w: stat destination %s: %v", ErrWrite, dst.Key, err)
	}

	_, err = m.client.CopyObject(ctx,
		minio.CopyDestOptions{Bucket: m.bucket, Object: dst.Key},
		minio.CopySrcOptions{Bucket: m.bucket, Object: src.Key},
	)
	if err != nil {
		return false, fmt.Errorf("%w: copy %s to %s: %v", ErrWrite, src.Key, dst.Key, err)
	}
	return true, nil
}

func isNotFound(err error) bool {
	resp := minio.ToErrorResponse(err)
	return resp.Code == "NoSuchKey" || resp.StatusCode == http.StatusNotFound
}

func contentType(key string) string {
	if ct := mime.TypeByExtension(path.Ext(key)); ct != "" {
		return ct
	}
	return "application/octet-stream"
}
