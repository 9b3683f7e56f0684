package mocks

import (
	"context"
	"io"

	"storyapi/internal/model"

	"github.com/stretchr/testify/mock"
)

type MockAssetStore struct {
	mock.Mock
}

func (m *MockAssetStore) WriteUpload(ctx context.Context, r io.Reader, dst model.AssetReference) error {
	args := m.Called(ctx, r, dst)
	return args.Error(0)
}

func (m *MockAssetStore) Duplicate(ctx context.Context, src, dst model.AssetReference) (bool, error) {
	args := m.Called(ctx, src, dst)
	return args.Bool(0), args.Error(1)
}
