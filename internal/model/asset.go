package model

import "fmt"

// Category classifies an asset and decides which subdirectory it lives under.
type Category int

const (
	CategoryUserImage Category = iota + 1
	CategoryStoryCover
	CategoryStoryPage
	CategoryGalleryItem
)

func (c Category) String() string {
	switch c {
	case CategoryUserImage:
		return "user_image"
	case CategoryStoryCover:
		return "story_cover"
	case CategoryStoryPage:
		return "story_page"
	case CategoryGalleryItem:
		return "gallery_item"
	default:
		return fmt.Sprintf("category(%d)", int(c))
	}
}

// OwnerScoped reports whether assets of this category are stored per owner.
func (c Category) OwnerScoped() bool {
	return c != CategoryGalleryItem
}

// AssetReference points at one stored asset. PhysicalPath and PublicURL always
// name the same bytes: both are built from Key, the relative slash-separated suffix.
// A reference is never mutated; a replacement asset gets a new reference.
type AssetReference struct {
	OwnerID      string
	Category     Category
	Key          string
	PhysicalPath string
	PublicURL    string
}

// IsZero reports whether the reference is unset.
func (r AssetReference) IsZero() bool {
	return r.Key == "" && r.PhysicalPath == "" && r.PublicURL == ""
}
