package storage

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"storyapi/internal/config"
	"storyapi/internal/model"
)

type mockObjectClient struct {
	mock.Mock
}

func (m *mockObjectClient) PutObject(ctx context.Context, bucket, object string, r io.Reader, size int64, opts minio.PutObjectOptions) (minio.UploadInfo, error) {
	args := m.Called(ctx, bucket, object, r, size, opts)
	return args.Get(0).(minio.UploadInfo), args.Error(1)
}

func (m *mockObjectClient) StatObject(ctx context.Context, bucket, object string, opts minio.StatObjectOptions) (minio.ObjectInfo, error) {
	args := m.Called(ctx, bucket, object, opts)
	return args.Get(0).(minio.ObjectInfo), args.Error(1)
}

func (m *mockObjectClient) CopyObject(ctx context.Context, dst minio.CopyDestOptions, src minio.CopySrcOptions) (minio.UploadInfo, error) {
	args := m.Called(ctx, dst, src)
	return args.Get(0).(minio.UploadInfo), args.Error(1)
}

var errNoSuchKey = minio.ErrorResponse{Code: "NoSuchKey", StatusCode: http.StatusNotFound}

func TestNewMinIO_Validation(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.MinIOConfig
		want string
	}{
		{"missing endpoint", config.MinIOConfig{}, "endpoint is required"},
		{"missing credentials", config.MinIOConfig{Endpoint: "localhost:9000"}, "credentials are required"},
		{"missing bucket", config.MinIOConfig{Endpoint: "localhost:9000", AccessKey: "a", SecretKey: "b"}, "bucket is required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := NewMinIO(tt.cfg)
			assert.Nil(t, s)
			assert.ErrorContains(t, err, tt.want)
		})
	}
}

func TestMinIO_WriteUpload(t *testing.T) {
	ctx := context.Background()
	dst := model.AssetReference{Key: "storydata/u1/a.png"}

	t.Run("success", func(t *testing.T) {
		cli := new(mockObjectClient)
		cli.On("PutObject", ctx, "assets", "storydata/u1/a.png", mock.Anything, int64(-1),
			minio.PutObjectOptions{ContentType: "image/png"}).
			Return(minio.UploadInfo{Key: dst.Key, Size: 5}, nil)

		s := &MinIO{client: cli, bucket: "assets"}
		assert.NoError(t, s.WriteUpload(ctx, strings.NewReader("hello"), dst))
		cli.AssertExpectations(t)
	})

	t.Run("backend error", func(t *testing.T) {
		cli := new(mockObjectClient)
		cli.On("PutObject", ctx, "assets", dst.Key, mock.Anything, int64(-1), mock.Anything).
			Return(minio.UploadInfo{}, errors.New("bucket unreachable"))

		s := &MinIO{client: cli, bucket: "assets"}
		err := s.WriteUpload(ctx, strings.NewReader("hello"), dst)
		assert.ErrorIs(t, err, ErrWrite)
		assert.Contains(t, err.Error(), "bucket unreachable")
	})
}

func TestMinIO_Duplicate(t *testing.T) {
	ctx := context.Background()
	src := model.AssetReference{Key: "gallery/abc.png"}
	dst := model.AssetReference{Key: "storydata/u1/new.png"}

	tests := []struct {
		name       string
		setup      func(cli *mockObjectClient)
		wantCopied bool
		wantErr    error
	}{
		{
			name: "copies",
			setup: func(cli *mockObjectClient) {
				cli.On("StatObject", ctx, "assets", src.Key, mock.Anything).Return(minio.ObjectInfo{Size: 10}, nil)
				cli.On("StatObject", ctx, "assets", dst.Key, mock.Anything).Return(minio.ObjectInfo{}, errNoSuchKey)
				cli.On("CopyObject", ctx,
					minio.CopyDestOptions{Bucket: "assets", Object: dst.Key},
					minio.CopySrcOptions{Bucket: "assets", Object: src.Key},
				).Return(minio.UploadInfo{Key: dst.Key}, nil)
			},
			wantCopied: true,
		},
		{
			name: "empty source",
			setup: func(cli *mockObjectClient) {
				cli.On("StatObject", ctx, "assets", src.Key, mock.Anything).Return(minio.ObjectInfo{Size: 0}, nil)
			},
		},
		{
			name: "missing source",
			setup: func(cli *mockObjectClient) {
				cli.On("StatObject", ctx, "assets", src.Key, mock.Anything).Return(minio.ObjectInfo{}, errNoSuchKey)
			},
			wantErr: ErrSourceMissing,
		},
		{
			name: "destination exists",
			setup: func(cli *mockObjectClient) {
				cli.On("StatObject", ctx, "assets", src.Key, mock.Anything).Return(minio.ObjectInfo{Size: 10}, nil)
				cli.On("StatObject", ctx, "assets", dst.Key, mock.Anything).Return(minio.ObjectInfo{Size: 3}, nil)
			},
			wantErr: ErrDestinationExists,
		},
		{
			name: "copy fails",
			setup: func(cli *mockObjectClient) {
				cli.On("StatObject", ctx, "assets", src.Key, mock.Anything).Return(minio.ObjectInfo{Size: 10}, nil)
				cli.On("StatObject", ctx, "assets", dst.Key, mock.Anything).Return(minio.ObjectInfo{}, errNoSuchKey)
				cli.On("CopyObject", ctx, mock.Anything, mock.Anything).Return(minio.UploadInfo{}, errors.New("copy fail"))
			},
			wantErr: ErrWrite,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cli := new(mockObjectClient)
			tt.setup(cli)
			s := &MinIO{client: cli, bucket: "assets"}

			copied, err := s.Duplicate(ctx, src, dst)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.wantCopied, copied)
			cli.AssertExpectations(t)
		})
	}
}
