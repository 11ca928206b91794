package swipe

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/mmcdole/sift/internal/domain"
	"github.com/mmcdole/sift/internal/events"
)

// defaultFlushDelay is the quiescence window for debounced persistence.
const defaultFlushDelay = time.Second

// resetBatchSize bounds memory when enumerating a group's members for reset.
const resetBatchSize = 500

// Invalidator receives targeted cache invalidations when the overlay
// mutates. Implemented by progress.Cache; wired after construction because
// the cache in turn reads swiped state from this service.
type Invalidator interface {
	// InvalidateItem clears every cache entry a single swipe can affect:
	// the item's categories, its time buckets, and all album entries
	// (album membership of an arbitrary item is not cheaply known).
	InvalidateItem(item domain.MediaItem)

	InvalidateCategory(c domain.Category)
	InvalidateBucket(label string)
	InvalidateAlbum(albumID string)

	// InvalidateAll clears every cache map and notifies observers.
	InvalidateAll()
}

// Service is the single authoritative record of triage state: which items
// have been swiped, and which of those are pending permanent deletion.
// Mutations are serialized under one writer lock; point reads run
// concurrently. Persistence is debounced and best-effort — a write failure
// never rolls back the in-memory state.
type Service struct {
	storage domain.OverlayStorage
	source  domain.MediaSource
	bus     *events.Bus
	logger  *slog.Logger

	mu      sync.RWMutex
	swiped  map[string]struct{}
	trashed map[string]struct{} // invariant: subset of swiped
	dirty   bool
	timer   *time.Timer

	invalidator Invalidator
	flushDelay  time.Duration
}

// NewService loads the persisted overlay and returns the service.
func NewService(storage domain.OverlayStorage, source domain.MediaSource, bus *events.Bus, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}

	s := &Service{
		storage:    storage,
		source:     source,
		bus:        bus,
		logger:     logger,
		swiped:     make(map[string]struct{}),
		trashed:    make(map[string]struct{}),
		flushDelay: defaultFlushDelay,
	}

	if ids, ok := storage.GetSwiped(); ok {
		for _, id := range ids {
			s.swiped[id] = struct{}{}
		}
	}
	if ids, ok := storage.GetTrashed(); ok {
		for _, id := range ids {
			// Repair rather than trust: trashed implies swiped.
			s.swiped[id] = struct{}{}
			s.trashed[id] = struct{}{}
		}
	}

	logger.Debug("loaded triage overlay", "swiped", len(s.swiped), "trashed", len(s.trashed))
	return s
}

// SetInvalidator wires the progress cache in. Must be called before the
// first mutation; kept separate from NewService because the cache reads
// swiped state from this service.
func (s *Service) SetInvalidator(inv Invalidator) {
	s.invalidator = inv
}

// SetFlushDelay overrides the debounce window for persistence.
func (s *Service) SetFlushDelay(d time.Duration) {
	if d > 0 {
		s.flushDelay = d
	}
}

// MarkSwiped records that the user triaged an item, optionally moving it
// straight to the trash. Idempotent; never fails in memory.
func (s *Service) MarkSwiped(item domain.MediaItem, toTrash bool) {
	s.mu.Lock()
	_, wasSwiped := s.swiped[item.ID]
	_, wasTrashed := s.trashed[item.ID]

	changed := !wasSwiped || (toTrash && !wasTrashed)
	if changed {
		s.swiped[item.ID] = struct{}{}
		if toTrash {
			s.trashed[item.ID] = struct{}{}
		}
		s.schedulePersistLocked()
	}
	s.mu.Unlock()

	if !changed {
		return
	}

	if s.invalidator != nil {
		s.invalidator.InvalidateItem(item)
	}
}

// IsSwiped reports whether the item was already triaged. O(1).
func (s *Service) IsSwiped(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.swiped[id]
	return ok
}

// IsTrashed reports whether the item is pending permanent deletion.
func (s *Service) IsTrashed(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.trashed[id]
	return ok
}

// SwipedCount returns how many items have been triaged in total.
func (s *Service) SwipedCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.swiped)
}

// TrashedCount returns how many items are pending deletion.
func (s *Service) TrashedCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.trashed)
}

// TrashedIDs returns the pending-delete set, sorted for stable display.
func (s *Service) TrashedIDs() []string {
	s.mu.RLock()
	ids := make([]string, 0, len(s.trashed))
	for id := range s.trashed {
		ids = append(ids, id)
	}
	s.mu.RUnlock()

	sort.Strings(ids)
	return ids
}

// Recover removes items from the trash. They stay swiped: recovering an
// item must not re-queue it for triage.
func (s *Service) Recover(ids []string) {
	if s.removeFromTrash(ids) {
		s.bus.Publish(events.Event{Kind: events.KindTrashChanged})
	}
}

// PermanentlyDelete removes items from the trash after the caller deleted
// them from the library. The items remain swiped forever.
func (s *Service) PermanentlyDelete(ids []string) {
	if s.removeFromTrash(ids) {
		s.bus.Publish(events.Event{Kind: events.KindTrashChanged})
	}
}

// DropVanished removes externally-deleted ids from the trash and persists
// immediately. Called by the reconciler; swiped membership is history and
// is preserved.
func (s *Service) DropVanished(ids []string) {
	if !s.removeFromTrash(ids) {
		return
	}
	s.Flush()
	s.bus.Publish(events.Event{Kind: events.KindTrashChanged})
}

func (s *Service) removeFromTrash(ids []string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	changed := false
	for _, id := range ids {
		if _, ok := s.trashed[id]; ok {
			delete(s.trashed, id)
			changed = true
		}
	}
	if changed {
		s.schedulePersistLocked()
	}
	return changed
}

// ResetAll clears the whole overlay and every progress cache. Persisted
// immediately rather than debounced: this is a rare explicit user action
// and must be durable before any subsequent query.
func (s *Service) ResetAll() {
	s.mu.Lock()
	s.swiped = make(map[string]struct{})
	s.trashed = make(map[string]struct{})
	s.dirty = false
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.mu.Unlock()

	if err := s.storage.Reset(); err != nil {
		s.logger.Error("failed to reset persisted overlay", "error", err)
	}

	if s.invalidator != nil {
		s.invalidator.InvalidateAll()
	}
	s.bus.Publish(events.Event{Kind: events.KindOverlayReset})
	s.logger.Info("reset triage overlay")
}

// ResetCategory un-swipes every member of a fixed category.
func (s *Service) ResetCategory(ctx context.Context, c domain.Category) error {
	if err := s.resetMatching(ctx, c.Filter(time.Now())); err != nil {
		return err
	}
	if s.invalidator != nil {
		s.invalidator.InvalidateCategory(c)
	}
	return nil
}

// ResetBucket un-swipes every member of a time bucket ("2023", "Jan 23").
func (s *Service) ResetBucket(ctx context.Context, label string) error {
	f, ok := domain.BucketFilter(label)
	if !ok {
		return nil
	}
	if err := s.resetMatching(ctx, f); err != nil {
		return err
	}
	if s.invalidator != nil {
		s.invalidator.InvalidateBucket(label)
	}
	return nil
}

// ResetAlbum un-swipes every member of an album.
func (s *Service) ResetAlbum(ctx context.Context, albumID string) error {
	if err := s.resetMatching(ctx, domain.FilterAlbum(albumID)); err != nil {
		return err
	}
	if s.invalidator != nil {
		s.invalidator.InvalidateAlbum(albumID)
	}
	return nil
}

func (s *Service) resetMatching(ctx context.Context, f domain.Filter) error {
	members, err := domain.FetchAllMatching(ctx, s.source, f, resetBatchSize)
	if err != nil {
		s.logger.Error("failed to enumerate group for reset", "error", err)
		return err
	}

	s.mu.Lock()
	for _, item := range members {
		delete(s.swiped, item.ID)
		delete(s.trashed, item.ID)
	}
	swiped, trashed := s.snapshotLocked()
	s.dirty = false
	s.mu.Unlock()

	s.persist(swiped, trashed)
	s.logger.Info("reset group", "members", len(members))
	return nil
}

// Flush writes any pending overlay state synchronously. Called before
// process suspension so no swipe is lost across a backgrounding event.
func (s *Service) Flush() {
	s.mu.Lock()
	if !s.dirty {
		s.mu.Unlock()
		return
	}
	s.dirty = false
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	swiped, trashed := s.snapshotLocked()
	s.mu.Unlock()

	s.persist(swiped, trashed)
}

// Close flushes pending state.
func (s *Service) Close() error {
	s.Flush()
	return nil
}

// schedulePersistLocked restarts the debounce window. Callers hold mu.
func (s *Service) schedulePersistLocked() {
	s.dirty = true
	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = time.AfterFunc(s.flushDelay, s.Flush)
}

// snapshotLocked copies both sets as sorted lists. Callers hold mu.
func (s *Service) snapshotLocked() (swiped, trashed []string) {
	swiped = make([]string, 0, len(s.swiped))
	for id := range s.swiped {
		swiped = append(swiped, id)
	}
	trashed = make([]string, 0, len(s.trashed))
	for id := range s.trashed {
		trashed = append(trashed, id)
	}
	sort.Strings(swiped)
	sort.Strings(trashed)
	return swiped, trashed
}

// persist writes both id lists. Best-effort: failures are logged and the
// in-memory state stays authoritative for the session.
func (s *Service) persist(swiped, trashed []string) {
	if swiped == nil {
		swiped = []string{}
	}
	if trashed == nil {
		trashed = []string{}
	}
	if err := s.storage.SaveSwiped(swiped); err != nil {
		s.logger.Error("failed to save swiped ids", "error", err)
	}
	if err := s.storage.SaveTrashed(trashed); err != nil {
		s.logger.Error("failed to save trashed ids", "error", err)
	}
}
