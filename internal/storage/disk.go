package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"storyapi/internal/model"
)

const (
	dirPerm  = 0o755
	filePerm = 0o644
)

// Disk stores assets on the local filesystem under their PhysicalPath.
// It is safe for concurrent use by multiple goroutines.
type Disk struct{}

// NewDisk creates a filesystem backed AssetStore.
func NewDisk() *Disk {
	return &Disk{}
}

var _ AssetStore = (*Disk)(nil)

// WriteUpload streams r to dst.PhysicalPath with create-or-truncate semantics.
func (d *Disk) WriteUpload(ctx context.Context, r io.Reader, dst model.AssetReference) error {
	if r == nil {
		return fmt.Errorf("%w: nil reader", ErrWrite)
	}
	if err := ensureDir(dst.PhysicalPath); err != nil {
		return err
	}
	f, err := os.OpenFile(dst.PhysicalPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, filePerm)
	if err != nil {
		return fmt.Errorf("%w: open %s: %v", ErrWrite, dst.Key, err)
	}
	if _, err := io.Copy(f, ctxReader{ctx: ctx, r: r}); err != nil {
		f.Close()
		return fmt.Errorf("%w: copy to %s: %v", ErrWrite, dst.Key, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("%w: close %s: %v", ErrWrite, dst.Key, err)
	}
	return nil
}

// Duplicate copies src into a new file at dst. The source is only ever opened read-only.
func (d *Disk) Duplicate(ctx context.Context, src, dst model.AssetReference) (bool, error) {
	in, err := os.Open(src.PhysicalPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, fmt.Errorf("%w: %s", ErrSourceMissing, src.Key)
		}
		return false, fmt.Errorf("%w: open source %s: %v", ErrWrite, src.Key, err)
	}
	defer in.Close()

	st, err := in.Stat()
	if err != nil {
		return false, fmt.Errorf("%w: stat source %s: %v", ErrWrite, src.Key, err)
	}
	if st.IsDir() {
		return false, fmt.Errorf("%w: %s is a directory", ErrSourceMissing, src.Key)
	}
	if st.Size() == 0 {
		return false, nil
	}

	if err := ensureDir(dst.PhysicalPath); err != nil {
		return false, err
	}
	out, err := os.OpenFile(dst.PhysicalPath, os.O_CREATE|os.O_EXCL|os.O_WRONLY, filePerm)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return false, fmt.Errorf("%w: %s", ErrDestinationExists, dst.Key)
		}
		return false, fmt.Errorf("%w: create %s: %v", ErrWrite, dst.Key, err)
	}
	if _, err := io.Copy(out, ctxReader{ctx: ctx, r: in}); err != nil {
		out.Close()
		return false, fmt.Errorf("%w: copy to %s: %v", ErrWrite, dst.Key, err)
	}
	if err := out.Close(); err != nil {
		return false, fmt.Errorf("%w: close %s: %v", ErrWrite, dst.Key, err)
	}
	return true, nil
}

// ensureDir creates the parent of p. MkdirAll treats a directory that already
// exists, including one created concurrently, as success.
func ensureDir(p string) error {
	if err := os.MkdirAll(filepath.Dir(p), dirPerm); err != nil {
		return fmt.Errorf("%w: create directory: %v", ErrWrite, err)
	}
	return nil
}
