package domain

import (
	"testing"
	"time"
)

func TestBucketFilterYear(t *testing.T) {
	f, ok := BucketFilter("2023")
	if !ok {
		t.Fatal("expected year label to parse")
	}
	if f.Kind != FilterKindYear {
		t.Fatalf("expected year filter, got %v", f.Kind)
	}

	inside := MediaItem{ID: "a", CreatedAt: time.Date(2023, time.June, 15, 12, 0, 0, 0, time.UTC)}
	before := MediaItem{ID: "b", CreatedAt: time.Date(2022, time.December, 31, 23, 59, 59, 0, time.UTC)}
	after := MediaItem{ID: "c", CreatedAt: time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)}

	if !f.Matches(inside) {
		t.Error("item inside the year should match")
	}
	if f.Matches(before) {
		t.Error("item from the prior year should not match")
	}
	if f.Matches(after) {
		t.Error("item from the next year should not match")
	}
}

func TestBucketFilterMonth(t *testing.T) {
	f, ok := BucketFilter("Jan 23")
	if !ok {
		t.Fatal("expected month label to parse")
	}

	inside := MediaItem{ID: "a", CreatedAt: time.Date(2023, time.January, 31, 23, 0, 0, 0, time.UTC)}
	outside := MediaItem{ID: "b", CreatedAt: time.Date(2023, time.February, 1, 0, 0, 0, 0, time.UTC)}

	if !f.Matches(inside) {
		t.Error("item inside the month should match")
	}
	if f.Matches(outside) {
		t.Error("item from the next month should not match")
	}
}

func TestBucketLabelsMatchTheirOwnFilters(t *testing.T) {
	// Timestamps keep their own location. An item created just after local
	// midnight on New Year's Day sits in the previous year when read as UTC,
	// so label and filter must both use calendar components.
	zones := []*time.Location{
		time.UTC,
		time.FixedZone("UTC+2", 2*60*60),
		time.FixedZone("UTC-8", -8*60*60),
	}

	for _, zone := range zones {
		item := MediaItem{ID: "a.jpg", CreatedAt: time.Date(2023, time.January, 1, 0, 30, 0, 0, zone)}
		for _, label := range item.BucketLabels() {
			f, ok := BucketFilter(label)
			if !ok {
				t.Fatalf("label %q from BucketLabels does not parse", label)
			}
			if !f.Matches(item) {
				t.Errorf("item in %v labeled %q must match its own bucket filter", zone, label)
			}
		}
	}
}

func TestBucketFilterInvalidLabels(t *testing.T) {
	for _, label := range []string{"", "20", "abcd", "January 2023", "13 37"} {
		if _, ok := BucketFilter(label); ok {
			t.Errorf("label %q should not parse", label)
		}
	}
}

func TestFilterMatches(t *testing.T) {
	created := time.Date(2024, time.March, 10, 8, 0, 0, 0, time.UTC)
	item := MediaItem{
		ID:           "vacation/beach.mp4",
		CreatedAt:    created,
		Kind:         MediaKindVideo,
		IsFavorite:   true,
		IsScreenshot: false,
		AlbumIDs:     []string{"vacation"},
	}

	cases := []struct {
		name   string
		filter Filter
		want   bool
	}{
		{"all", FilterAll(), true},
		{"videos", FilterVideos(), true},
		{"favorites", FilterFavorites(), true},
		{"screenshots", FilterScreenshots(), false},
		{"album member", FilterAlbum("vacation"), true},
		{"album non-member", FilterAlbum("pets"), false},
		{"range containing", FilterDateRange(created.AddDate(0, 0, -1), created.AddDate(0, 0, 1)), true},
		{"range before", FilterDateRange(created.AddDate(0, 0, 1), created.AddDate(0, 0, 2)), false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.filter.Matches(item); got != tc.want {
				t.Errorf("Matches = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestDateRangeExcludesUndatedItems(t *testing.T) {
	f := FilterDateRange(time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC), time.Date(2100, 1, 1, 0, 0, 0, 0, time.UTC))
	undated := MediaItem{ID: "no-date.jpg"}
	if f.Matches(undated) {
		t.Error("items without a creation date must not match date ranges")
	}
}

func TestBucketLabels(t *testing.T) {
	item := MediaItem{ID: "a", CreatedAt: time.Date(2023, time.January, 5, 0, 0, 0, 0, time.UTC)}
	labels := item.BucketLabels()
	if len(labels) != 2 || labels[0] != "2023" || labels[1] != "Jan 23" {
		t.Errorf("BucketLabels = %v, want [2023 Jan 23]", labels)
	}

	if got := (MediaItem{ID: "b"}).BucketLabels(); got != nil {
		t.Errorf("undated item should have no bucket labels, got %v", got)
	}
}

func TestItemCategories(t *testing.T) {
	now := time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC)

	recent := MediaItem{ID: "a", CreatedAt: now.AddDate(0, 0, -3), Kind: MediaKindVideo, IsFavorite: true}
	cats := recent.Categories(now)
	want := map[Category]bool{CategoryFavorites: true, CategoryVideos: true, CategoryRecents: true}
	if len(cats) != len(want) {
		t.Fatalf("Categories = %v, want %d entries", cats, len(want))
	}
	for _, c := range cats {
		if !want[c] {
			t.Errorf("unexpected category %v", c)
		}
	}

	old := MediaItem{ID: "b", CreatedAt: now.AddDate(-1, 0, 0), Kind: MediaKindPhoto}
	if got := old.Categories(now); len(got) != 0 {
		t.Errorf("plain old photo should be in no category, got %v", got)
	}
}

func TestCategoryFilterRoundTrip(t *testing.T) {
	now := time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC)
	item := MediaItem{ID: "shot.png", CreatedAt: now.AddDate(0, 0, -1), IsScreenshot: true}

	for _, cat := range item.Categories(now) {
		if !cat.Filter(now).Matches(item) {
			t.Errorf("item should match the filter of its own category %v", cat)
		}
	}
}
