// Package asset computes where assets live on disk and under which public URL they are served.
package asset

import (
	"errors"
	"fmt"
	"net/url"
	"path"
	"path/filepath"
	"strings"

	"storyapi/internal/config"
	"storyapi/internal/model"
)

var (
	ErrOwnerRequired     = errors.New("owner id is required")
	ErrInvalidOwner      = errors.New("owner id must be a single path segment")
	ErrExtensionRequired = errors.New("file name must include an extension")
	ErrInvalidFileName   = errors.New("file name must be a base name")
	ErrUnknownCategory   = errors.New("unknown asset category")
	ErrForeignURL        = errors.New("url is not served from the asset cdn")
)

const galleryDir = "gallery"

// Resolver maps (category, owner, file name) to an AssetReference.
// It holds read-only configuration and performs no I/O.
type Resolver struct {
	root    string
	cdnBase string
	cdnHost string
	aliases []string
}

// NewResolver validates cfg and builds a Resolver. An error here is a startup failure.
func NewResolver(cfg config.AssetConfig) (*Resolver, error) {
	if cfg.Root == "" {
		return nil, errors.New("asset root is not configured")
	}
	base := strings.TrimRight(cfg.CDNBase, "/")
	u, err := url.Parse(base)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("asset cdn base %q is not an absolute url", cfg.CDNBase)
	}
	var aliases []string
	for _, a := range cfg.HostAliases {
		if a = strings.TrimSpace(a); a != "" && a != u.Host {
			aliases = append(aliases, a)
		}
	}
	return &Resolver{
		root:    filepath.Clean(cfg.Root),
		cdnBase: base,
		cdnHost: u.Host,
		aliases: aliases,
	}, nil
}

// Root returns the physical asset root.
func (r *Resolver) Root() string { return r.root }

// CDNBase returns the public base URL without a trailing slash.
func (r *Resolver) CDNBase() string { return r.cdnBase }

// GalleryBase returns the public URL prefix under which gallery assets are served.
func (r *Resolver) GalleryBase() string { return r.cdnBase + "/" + galleryDir + "/" }

// Resolve builds the reference for fileName stored for ownerID under category.
// fileName is expected to be collision safe already, see NewFileName.
func (r *Resolver) Resolve(category model.Category, ownerID, fileName string) (model.AssetReference, error) {
	dir, err := categoryDir(category, ownerID)
	if err != nil {
		return model.AssetReference{}, err
	}
	if fileName == "" || fileName != path.Base(fileName) || strings.ContainsAny(fileName, `/\`) {
		return model.AssetReference{}, ErrInvalidFileName
	}
	if ext := path.Ext(fileName); ext == "" || ext == fileName {
		return model.AssetReference{}, ErrExtensionRequired
	}
	return r.reference(ownerID, category, path.Join(dir, fileName)), nil
}

// Locate maps a previously issued public URL back to its reference. Stored fields
// may carry an alias host, so host substitution runs before anything else.
func (r *Resolver) Locate(publicURL string) (model.AssetReference, error) {
	s := r.canonical(publicURL)
	if !strings.HasPrefix(s, r.cdnBase+"/") {
		return model.AssetReference{}, ErrForeignURL
	}
	rel := strings.TrimPrefix(s, r.cdnBase+"/")
	if i := strings.IndexAny(rel, "?#"); i >= 0 {
		rel = rel[:i]
	}
	if unescaped, err := url.PathUnescape(rel); err == nil {
		rel = unescaped
	}
	clean := path.Clean("/" + rel)[1:]
	if clean == "" || clean != rel {
		return model.AssetReference{}, fmt.Errorf("%w: %s", ErrForeignURL, publicURL)
	}

	category, owner := classify(clean)
	return r.reference(owner, category, clean), nil
}

// IsGalleryURL reports whether s points into the gallery.
func (r *Resolver) IsGalleryURL(s string) bool {
	if s == "" {
		return false
	}
	return strings.HasPrefix(r.canonical(s), r.GalleryBase())
}

func (r *Resolver) reference(ownerID string, category model.Category, key string) model.AssetReference {
	return model.AssetReference{
		OwnerID:      ownerID,
		Category:     category,
		Key:          key,
		PhysicalPath: filepath.Join(r.root, filepath.FromSlash(key)),
		PublicURL:    r.cdnBase + "/" + key,
	}
}

// canonical swaps an alias host for the CDN base host. Only the URL host is
// compared, so an alias spelled inside the path or query is left alone.
func (r *Resolver) canonical(s string) string {
	if strings.HasPrefix(s, r.cdnBase+"/") {
		return s
	}
	u, err := url.Parse(s)
	if err != nil || u.Host == "" {
		return s
	}
	for _, alias := range r.aliases {
		if strings.EqualFold(u.Host, alias) {
			u.Host = r.cdnHost
			return u.String()
		}
	}
	return s
}

func categoryDir(category model.Category, ownerID string) (string, error) {
	if category.OwnerScoped() {
		if ownerID == "" {
			return "", ErrOwnerRequired
		}
		if ownerID == "." || ownerID == ".." || strings.ContainsAny(ownerID, `/\`) {
			return "", ErrInvalidOwner
		}
	}
	switch category {
	case model.CategoryUserImage:
		return path.Join("userdata", ownerID), nil
	case model.CategoryStoryCover:
		return path.Join("storydata", ownerID), nil
	case model.CategoryStoryPage:
		return path.Join("storydata", ownerID, "pages"), nil
	case model.CategoryGalleryItem:
		return galleryDir, nil
	default:
		return "", ErrUnknownCategory
	}
}

// classify infers category and owner from a relative key.
func classify(key string) (model.Category, string) {
	parts := strings.Split(key, "/")
	switch {
	case parts[0] == galleryDir:
		return model.CategoryGalleryItem, ""
	case parts[0] == "userdata" && len(parts) > 2:
		return model.CategoryUserImage, parts[1]
	case parts[0] == "storydata" && len(parts) > 3 && parts[2] == "pages":
		return model.CategoryStoryPage, parts[1]
	case parts[0] == "storydata" && len(parts) > 2:
		return model.CategoryStoryCover, parts[1]
	default:
		return 0, ""
	}
}
