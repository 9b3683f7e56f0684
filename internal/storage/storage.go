// Package storage writes asset bytes to their resolved location.
// Every write targets a freshly generated name, so no locking is needed across requests.
package storage

import (
	"context"
	"errors"
	"io"

	"storyapi/internal/model"
)

var (
	// ErrWrite wraps any failure to drain an upload or open its target.
	ErrWrite = errors.New("asset write failed")
	// ErrSourceMissing is returned when a duplication source does not exist.
	ErrSourceMissing = errors.New("source asset not found")
	// ErrDestinationExists is returned when a duplication target name is already taken.
	ErrDestinationExists = errors.New("destination asset already exists")
)

// AssetStore performs the byte-level write for the publish pipeline.
type AssetStore interface {
	// WriteUpload streams r to dst, creating parent directories as needed and
	// truncating any existing file.
	WriteUpload(ctx context.Context, r io.Reader, dst model.AssetReference) error

	// Duplicate copies src to dst. dst must not exist. When src is empty nothing is
	// written and copied is false, which tells the caller to fall back to no asset.
	Duplicate(ctx context.Context, src, dst model.AssetReference) (copied bool, err error)
}

// ctxReader stops a copy once the request context is done.
type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (c ctxReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}
