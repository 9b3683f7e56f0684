package asset

import (
	"path"
	"strings"

	"github.com/google/uuid"
)

// NewFileName returns a random 128-bit identifier followed by ext.
// The uploader's original name is never reused.
func NewFileName(ext string) string {
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return uuid.New().String() + strings.ToLower(ext)
}

// Ext returns the extension of a client supplied name or URL path.
func Ext(name string) string {
	if i := strings.IndexAny(name, "?#"); i >= 0 {
		name = name[:i]
	}
	return path.Ext(strings.ReplaceAll(name, `\`, "/"))
}
