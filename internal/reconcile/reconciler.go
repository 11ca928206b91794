package reconcile

import (
	"context"
	"log/slog"

	"github.com/mmcdole/sift/internal/domain"
)

// TrashHolder is the slice of the overlay service the reconciler mutates.
type TrashHolder interface {
	TrashedIDs() []string
	DropVanished(ids []string)
}

// ProgressInvalidator clears all cached progress after an external change.
type ProgressInvalidator interface {
	InvalidateAll()
}

// Reconciler keeps the locally-owned overlay consistent with a library that
// can change underneath the app: items deleted outside the app must leave
// the trash (they can no longer be acted upon) while staying in the swiped
// history.
type Reconciler struct {
	source  domain.MediaSource
	overlay TrashHolder
	cache   ProgressInvalidator
	logger  *slog.Logger
}

// NewReconciler creates a reconciler.
func NewReconciler(source domain.MediaSource, overlay TrashHolder, cache ProgressInvalidator, logger *slog.Logger) *Reconciler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Reconciler{source: source, overlay: overlay, cache: cache, logger: logger}
}

// HandleLibraryChange re-checks every trashed item's continued existence,
// drops vanished ids from the trash, and invalidates all progress caches.
// Invalidating unconditionally is cheaper and safer than computing a precise
// diff, since external deletions are rare relative to queries.
func (r *Reconciler) HandleLibraryChange(ctx context.Context) error {
	trashed := r.overlay.TrashedIDs()
	if len(trashed) > 0 {
		existing, err := r.source.ExistingIDs(ctx, trashed)
		if err != nil {
			r.logger.Error("failed to check trashed items", "error", err)
			// Still invalidate: the library did change.
			r.cache.InvalidateAll()
			return err
		}

		var vanished []string
		for _, id := range trashed {
			if !existing[id] {
				vanished = append(vanished, id)
			}
		}
		if len(vanished) > 0 {
			r.overlay.DropVanished(vanished)
			r.logger.Info("dropped vanished items from trash", "count", len(vanished))
		}
	}

	r.cache.InvalidateAll()
	return nil
}

// Run reconciles on every tick of the notification channel until the
// context is done or the channel closes. The channel is the bridge from
// whatever watches the external library.
func (r *Reconciler) Run(ctx context.Context, changes <-chan struct{}) {
	for {
		select {
		case <-ctx.Done():
			return
		case _, ok := <-changes:
			if !ok {
				return
			}
			if err := r.HandleLibraryChange(ctx); err != nil {
				r.logger.Warn("reconciliation incomplete", "error", err)
			}
		}
	}
}
