package progress

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/mmcdole/sift/internal/domain"
	"github.com/mmcdole/sift/internal/events"
)

const (
	// defaultFreshness is how long a computed fraction is served without
	// recomputation.
	defaultFreshness = 300 * time.Second

	// defaultBatchSize bounds peak memory while enumerating a group.
	defaultBatchSize = 500
)

// SwipeReader is the slice of the overlay service the cache needs:
// point membership tests and the global count used for short-circuiting.
type SwipeReader interface {
	IsSwiped(id string) bool
	SwipedCount() int
}

// cached stores a computed fraction with its computation time
type cached struct {
	fraction   float64
	computedAt time.Time
}

// Cache answers "what fraction of group G has been swiped?" for the three
// group kinds, recomputing lazily when an entry is stale or missing.
// Fractions are exact: every group member is enumerated in fixed-size pages
// and tested against the overlay. Cache-map mutations are serialized under
// one mutex; per-group computations fan out concurrently.
//
// Each kind carries a generation counter bumped on invalidation. A
// computation captures the generation when it starts and its result is
// discarded if the generation moved, so an in-flight result can never
// clobber the cache after an invalidating mutation.
type Cache struct {
	source  domain.MediaSource
	overlay SwipeReader
	bus     *events.Bus
	logger  *slog.Logger

	freshness time.Duration
	batchSize int
	now       func() time.Time

	mu         sync.Mutex
	categories map[domain.Category]cached
	buckets    map[string]cached // keyed by bucket label ("2023", "Jan 23")
	albums     map[string]cached // keyed by album ID, not display title
	catGen     uint64
	bucketGen  uint64
	albumGen   uint64
}

// NewCache creates an empty progress cache. Entries are never persisted;
// the cache is rebuilt on every process start.
func NewCache(source domain.MediaSource, overlay SwipeReader, bus *events.Bus, logger *slog.Logger) *Cache {
	if logger == nil {
		logger = slog.Default()
	}
	return &Cache{
		source:     source,
		overlay:    overlay,
		bus:        bus,
		logger:     logger,
		freshness:  defaultFreshness,
		batchSize:  defaultBatchSize,
		now:        time.Now,
		categories: make(map[domain.Category]cached),
		buckets:    make(map[string]cached),
		albums:     make(map[string]cached),
	}
}

// SetFreshness overrides the freshness window (config-driven).
func (c *Cache) SetFreshness(d time.Duration) {
	if d > 0 {
		c.freshness = d
	}
}

// SetBatchSize overrides the enumeration page size (config-driven).
func (c *Cache) SetBatchSize(n int) {
	if n > 0 {
		c.batchSize = n
	}
}

// CategoryProgress returns the swiped fraction for every fixed category.
// When nothing has been swiped yet it short-circuits to an empty map
// without touching the source; callers must treat that as "no progress
// data yet", not "zero progress".
func (c *Cache) CategoryProgress(ctx context.Context) map[domain.Category]float64 {
	out := make(map[domain.Category]float64)
	if c.overlay.SwipedCount() == 0 {
		return out
	}

	now := c.now()
	var stale []domain.Category

	c.mu.Lock()
	gen := c.catGen
	for _, cat := range domain.Categories() {
		if e, ok := c.categories[cat]; ok && now.Sub(e.computedAt) < c.freshness {
			out[cat] = e.fraction
		} else {
			stale = append(stale, cat)
		}
	}
	c.mu.Unlock()

	if len(stale) == 0 {
		return out
	}

	results := fanOut(stale, func(cat domain.Category) (float64, bool) {
		return c.computeFraction(ctx, cat.Filter(now))
	})

	c.mu.Lock()
	fresh := c.catGen == gen
	for _, r := range results {
		if !r.ok {
			continue
		}
		out[r.key] = r.fraction
		if fresh {
			c.categories[r.key] = cached{fraction: r.fraction, computedAt: c.now()}
		}
	}
	c.mu.Unlock()

	return out
}

// BucketProgress returns the swiped fraction per time-bucket label.
// Labels are 4-digit years ("2023") or month buckets ("Jan 23"); labels
// that parse as neither are omitted from the result. Distinct stale labels
// are computed concurrently and merged associatively, so completion order
// never affects the merged result.
func (c *Cache) BucketProgress(ctx context.Context, labels []string) map[string]float64 {
	out := make(map[string]float64)
	now := c.now()
	var stale []string
	seen := make(map[string]bool)

	c.mu.Lock()
	gen := c.bucketGen
	for _, label := range labels {
		if seen[label] {
			continue
		}
		seen[label] = true
		if e, ok := c.buckets[label]; ok && now.Sub(e.computedAt) < c.freshness {
			out[label] = e.fraction
		} else {
			stale = append(stale, label)
		}
	}
	c.mu.Unlock()

	if len(stale) == 0 {
		return out
	}

	results := fanOut(stale, func(label string) (float64, bool) {
		f, ok := domain.BucketFilter(label)
		if !ok {
			return 0, false
		}
		return c.computeFraction(ctx, f)
	})

	c.mu.Lock()
	fresh := c.bucketGen == gen
	for _, r := range results {
		if !r.ok {
			continue
		}
		out[r.key] = r.fraction
		if fresh {
			c.buckets[r.key] = cached{fraction: r.fraction, computedAt: c.now()}
		}
	}
	c.mu.Unlock()

	return out
}

// AlbumProgress returns the swiped fraction per album, keyed by display
// title for the UI. Entries are cached and invalidated by album ID, so two
// albums sharing a title do not collide in the cache.
func (c *Cache) AlbumProgress(ctx context.Context, albums []domain.Album) map[string]float64 {
	titles := make(map[string]string, len(albums)) // id -> title
	fractions := make(map[string]float64, len(albums))

	now := c.now()
	var stale []string

	c.mu.Lock()
	gen := c.albumGen
	for _, album := range albums {
		if _, ok := titles[album.ID]; ok {
			continue
		}
		titles[album.ID] = album.Title
		if e, ok := c.albums[album.ID]; ok && now.Sub(e.computedAt) < c.freshness {
			fractions[album.ID] = e.fraction
		} else {
			stale = append(stale, album.ID)
		}
	}
	c.mu.Unlock()

	if len(stale) > 0 {
		results := fanOut(stale, func(albumID string) (float64, bool) {
			return c.computeFraction(ctx, domain.FilterAlbum(albumID))
		})

		c.mu.Lock()
		fresh := c.albumGen == gen
		for _, r := range results {
			if !r.ok {
				continue
			}
			fractions[r.key] = r.fraction
			if fresh {
				c.albums[r.key] = cached{fraction: r.fraction, computedAt: c.now()}
			}
		}
		c.mu.Unlock()
	}

	out := make(map[string]float64, len(fractions))
	for id, fraction := range fractions {
		out[titles[id]] = fraction
	}
	return out
}

// === Invalidation ===

// InvalidateItem clears every entry a single swipe can affect: the item's
// categories, its time buckets, and — because album membership of an
// arbitrary item is not cheaply known — all album entries.
func (c *Cache) InvalidateItem(item domain.MediaItem) {
	now := c.now()

	c.mu.Lock()
	defer c.mu.Unlock()

	for _, cat := range item.Categories(now) {
		delete(c.categories, cat)
	}
	c.catGen++

	for _, label := range item.BucketLabels() {
		delete(c.buckets, label)
	}
	c.bucketGen++

	c.albums = make(map[string]cached)
	c.albumGen++
}

// InvalidateCategory removes a single category entry.
func (c *Cache) InvalidateCategory(cat domain.Category) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.categories, cat)
	c.catGen++
}

// InvalidateBucket removes a single time-bucket entry.
func (c *Cache) InvalidateBucket(label string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.buckets, label)
	c.bucketGen++
}

// InvalidateAlbum removes a single album entry by album ID.
func (c *Cache) InvalidateAlbum(albumID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.albums, albumID)
	c.albumGen++
}

// InvalidateAll clears all three cache maps and notifies observers so
// dependent UI re-fetches instead of waiting for a stale read.
func (c *Cache) InvalidateAll() {
	c.mu.Lock()
	c.categories = make(map[domain.Category]cached)
	c.buckets = make(map[string]cached)
	c.albums = make(map[string]cached)
	c.catGen++
	c.bucketGen++
	c.albumGen++
	c.mu.Unlock()

	c.bus.Publish(events.Event{Kind: events.KindProgressInvalidated})
	c.logger.Debug("invalidated all progress caches")
}

// === Computation ===

// computeFraction pages through the group's membership and tests each
// member against the overlay. Exact, O(group size), constant peak memory.
// A group with zero members has fraction 0.0 by convention. Returns
// ok=false when the source fails; the caller serves nothing rather than
// caching a wrong zero.
func (c *Cache) computeFraction(ctx context.Context, f domain.Filter) (float64, bool) {
	swiped, total := 0, 0
	offset := 0

	for {
		select {
		case <-ctx.Done():
			return 0, false
		default:
		}

		items, totalSize, err := c.source.FetchPage(ctx, f, offset, c.batchSize)
		if err != nil {
			c.logger.Warn("progress computation failed", "error", err)
			return 0, false
		}

		total = totalSize
		for _, item := range items {
			if c.overlay.IsSwiped(item.ID) {
				swiped++
			}
		}

		offset += len(items)
		if offset >= total || len(items) == 0 {
			break
		}
	}

	if total == 0 {
		return 0, true
	}
	return float64(swiped) / float64(total), true
}

// outcome carries one group's computed fraction back from the fan-out.
type outcome[K comparable] struct {
	key      K
	fraction float64
	ok       bool
}

// fanOut computes every key concurrently and collects the results.
// Completion order is unspecified; callers merge into maps, which is
// associative, so it cannot matter.
func fanOut[K comparable](keys []K, compute func(K) (float64, bool)) []outcome[K] {
	ch := make(chan outcome[K], len(keys))
	for _, key := range keys {
		go func(key K) {
			fraction, ok := compute(key)
			ch <- outcome[K]{key: key, fraction: fraction, ok: ok}
		}(key)
	}

	results := make([]outcome[K], 0, len(keys))
	for range keys {
		results = append(results, <-ch)
	}
	return results
}
