package domain

import (
	"strconv"
	"time"
)

// MonthBucketFormat is the textual format for month buckets ("Jan 23").
const MonthBucketFormat = "Jan 06"

// FilterKind identifies the membership predicate of a Filter
type FilterKind int

const (
	FilterKindAll FilterKind = iota
	FilterKindDateRange
	FilterKindYear
	FilterKindMonth
	FilterKindScreenshots
	FilterKindFavorites
	FilterKindVideos
	FilterKindAlbum
)

// Filter is the membership predicate the media source evaluates.
// Group membership is never stored by the core; it is recomputed on demand
// by fetching everything matching the group's filter.
type Filter struct {
	Kind       FilterKind
	Start      time.Time // Date range start (inclusive), FilterKindDateRange only
	End        time.Time // Date range end (exclusive), FilterKindDateRange only
	Year       int       // Calendar year, FilterKindYear only
	MonthLabel string    // Month bucket label ("Jan 23"), FilterKindMonth only
	AlbumID    string    // Album identifier, FilterKindAlbum only
}

// FilterAll matches every item in the library.
func FilterAll() Filter { return Filter{Kind: FilterKindAll} }

// FilterDateRange matches items created in [start, end).
func FilterDateRange(start, end time.Time) Filter {
	return Filter{Kind: FilterKindDateRange, Start: start, End: end}
}

// FilterYear matches items created in the given calendar year, read from the
// timestamp's own location.
func FilterYear(year int) Filter {
	return Filter{Kind: FilterKindYear, Year: year}
}

// FilterMonth matches items whose creation date formats to the given month
// bucket label.
func FilterMonth(label string) Filter {
	return Filter{Kind: FilterKindMonth, MonthLabel: label}
}

// FilterScreenshots matches items flagged as screenshots.
func FilterScreenshots() Filter { return Filter{Kind: FilterKindScreenshots} }

// FilterFavorites matches items flagged as favorites.
func FilterFavorites() Filter { return Filter{Kind: FilterKindFavorites} }

// FilterVideos matches video items.
func FilterVideos() Filter { return Filter{Kind: FilterKindVideos} }

// FilterAlbum matches items contained in the given album.
func FilterAlbum(albumID string) Filter {
	return Filter{Kind: FilterKindAlbum, AlbumID: albumID}
}

// Matches evaluates the predicate against a single item.
// Sources backed by an index may answer filters without calling this;
// it is the reference semantics they must agree with.
func (f Filter) Matches(item MediaItem) bool {
	switch f.Kind {
	case FilterKindAll:
		return true
	case FilterKindDateRange:
		if !item.HasCreationDate() {
			return false
		}
		return !item.CreatedAt.Before(f.Start) && item.CreatedAt.Before(f.End)
	case FilterKindYear:
		return item.HasCreationDate() && item.CreatedAt.Year() == f.Year
	case FilterKindMonth:
		return item.HasCreationDate() && item.CreatedAt.Format(MonthBucketFormat) == f.MonthLabel
	case FilterKindScreenshots:
		return item.IsScreenshot
	case FilterKindFavorites:
		return item.IsFavorite
	case FilterKindVideos:
		return item.Kind == MediaKindVideo
	case FilterKindAlbum:
		for _, id := range item.AlbumIDs {
			if id == f.AlbumID {
				return true
			}
		}
		return false
	default:
		return false
	}
}

// BucketFilter translates a time-bucket label into its defining filter.
// Labels are either a 4-digit year ("2023") or a month bucket ("Jan 23").
// Returns false for labels that parse as neither.
//
// Matching is by calendar component in the timestamp's own location, the
// same reading BucketLabels uses, so an item always matches the filters of
// its own labels regardless of time zone.
func BucketFilter(label string) (Filter, bool) {
	if len(label) == 4 {
		if year, err := strconv.Atoi(label); err == nil {
			return FilterYear(year), true
		}
	}
	if _, err := time.Parse(MonthBucketFormat, label); err == nil {
		return FilterMonth(label), true
	}
	return Filter{}, false
}
