package domain

import (
	"strconv"
	"time"
)

// MediaKind distinguishes content types
type MediaKind int

const (
	MediaKindPhoto MediaKind = iota
	MediaKindVideo
)

// String returns a human-readable representation of the media kind
func (k MediaKind) String() string {
	switch k {
	case MediaKindPhoto:
		return "Photo"
	case MediaKindVideo:
		return "Video"
	default:
		return "Unknown"
	}
}

// MediaItem represents a single photo or video in the user's library.
// The library owns the item; the triage core only ever holds the ID and the
// metadata needed to place the item into groups.
type MediaItem struct {
	ID           string    // Source-specific identifier, stable across launches
	CreatedAt    time.Time // Creation timestamp; zero when the source has none
	Kind         MediaKind // Photo or Video
	IsFavorite   bool      // Favorite flag from the source
	IsScreenshot bool      // Screenshot subtype flag from the source
	AlbumIDs     []string  // Albums containing this item
}

// HasCreationDate reports whether the item carries a usable creation
// timestamp. Items without one are excluded from time-bucket grouping.
func (m MediaItem) HasCreationDate() bool {
	return !m.CreatedAt.IsZero()
}

// BucketLabels returns the time-bucket labels this item belongs to:
// its calendar year ("2023") and its month bucket ("Jan 23").
// Returns nil for items without a creation date.
func (m MediaItem) BucketLabels() []string {
	if !m.HasCreationDate() {
		return nil
	}
	return []string{
		strconv.Itoa(m.CreatedAt.Year()),
		m.CreatedAt.Format(MonthBucketFormat),
	}
}

// Categories returns the fixed categories this item belongs to.
// now anchors the Recents window.
func (m MediaItem) Categories(now time.Time) []Category {
	var cats []Category
	if m.IsScreenshot {
		cats = append(cats, CategoryScreenshots)
	}
	if m.IsFavorite {
		cats = append(cats, CategoryFavorites)
	}
	if m.Kind == MediaKindVideo {
		cats = append(cats, CategoryVideos)
	}
	if m.HasCreationDate() && m.CreatedAt.After(now.Add(-RecentsWindow)) {
		cats = append(cats, CategoryRecents)
	}
	return cats
}

// Album represents a user album in the media library
type Album struct {
	ID        string // Source-specific unique identifier
	Title     string // Display title; NOT guaranteed unique across albums
	ItemCount int    // Number of items, as last reported by the source
}

// Category is one of the fixed smart groupings the app tracks progress for
type Category int

const (
	CategoryScreenshots Category = iota
	CategoryFavorites
	CategoryVideos
	CategoryRecents
)

// RecentsWindow is how far back the Recents category reaches.
const RecentsWindow = 30 * 24 * time.Hour

// Categories returns all fixed categories in display order.
func Categories() []Category {
	return []Category{CategoryScreenshots, CategoryFavorites, CategoryVideos, CategoryRecents}
}

// String returns a human-readable representation of the category
func (c Category) String() string {
	switch c {
	case CategoryScreenshots:
		return "Screenshots"
	case CategoryFavorites:
		return "Favorites"
	case CategoryVideos:
		return "Videos"
	case CategoryRecents:
		return "Recents"
	default:
		return "Unknown"
	}
}

// Filter returns the source filter that defines this category's membership.
// now anchors the Recents window and is ignored by the other categories.
func (c Category) Filter(now time.Time) Filter {
	switch c {
	case CategoryScreenshots:
		return FilterScreenshots()
	case CategoryFavorites:
		return FilterFavorites()
	case CategoryVideos:
		return FilterVideos()
	case CategoryRecents:
		return FilterDateRange(now.Add(-RecentsWindow), now)
	default:
		return FilterAll()
	}
}
