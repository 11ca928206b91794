package domain

import "context"

// MediaSource is the read-only view of the externally-owned media library.
// The library can change underneath the app at any time (deletions outside
// the app, cloud sync), so results are a snapshot, never a promise.
type MediaSource interface {
	// FetchPage returns one page of items matching the filter.
	// Returns (items, totalSize, error) for pagination support; callers
	// iterate with a fixed batch size so the full result set is never
	// materialized at once.
	FetchPage(ctx context.Context, f Filter, offset, limit int) ([]MediaItem, int, error)

	// Albums returns all user albums.
	Albums(ctx context.Context) ([]Album, error)

	// ExistingIDs reports which of the given ids still exist in the library.
	// Used to reconcile the trash after external deletions.
	ExistingIDs(ctx context.Context, ids []string) (map[string]bool, error)
}

// FetchAllMatching pages through the source and returns every item matching
// the filter. Intended for small result sets (group resets); progress
// computation pages explicitly instead so peak memory stays bounded.
func FetchAllMatching(ctx context.Context, src MediaSource, f Filter, batchSize int) ([]MediaItem, error) {
	var all []MediaItem
	offset := 0

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		items, total, err := src.FetchPage(ctx, f, offset, batchSize)
		if err != nil {
			return nil, err
		}

		all = append(all, items...)

		if len(all) >= total || len(items) == 0 {
			break
		}
		offset += batchSize
	}

	return all, nil
}
