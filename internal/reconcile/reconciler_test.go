package reconcile

import (
	"context"
	"errors"
	"testing"

	"github.com/mmcdole/sift/internal/domain"
)

// fakeSource answers ExistingIDs from a fixed set of surviving ids.
type fakeSource struct {
	existing map[string]bool
	err      error
	calls    int
}

func (f *fakeSource) FetchPage(ctx context.Context, filter domain.Filter, offset, limit int) ([]domain.MediaItem, int, error) {
	return nil, 0, nil
}

func (f *fakeSource) Albums(ctx context.Context) ([]domain.Album, error) { return nil, nil }

func (f *fakeSource) ExistingIDs(ctx context.Context, ids []string) (map[string]bool, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	out := make(map[string]bool, len(ids))
	for _, id := range ids {
		out[id] = f.existing[id]
	}
	return out, nil
}

// fakeOverlay records which ids were dropped from the trash.
type fakeOverlay struct {
	trashed []string
	dropped []string
}

func (f *fakeOverlay) TrashedIDs() []string { return f.trashed }

func (f *fakeOverlay) DropVanished(ids []string) { f.dropped = append(f.dropped, ids...) }

// fakeCache counts full invalidations.
type fakeCache struct {
	allCalls int
}

func (f *fakeCache) InvalidateAll() { f.allCalls++ }

func TestHandleLibraryChangeDropsVanished(t *testing.T) {
	source := &fakeSource{existing: map[string]bool{"kept.jpg": true}}
	overlay := &fakeOverlay{trashed: []string{"kept.jpg", "gone.jpg"}}
	cache := &fakeCache{}

	r := NewReconciler(source, overlay, cache, nil)
	if err := r.HandleLibraryChange(context.Background()); err != nil {
		t.Fatalf("HandleLibraryChange: %v", err)
	}

	if len(overlay.dropped) != 1 || overlay.dropped[0] != "gone.jpg" {
		t.Errorf("dropped = %v, want [gone.jpg]", overlay.dropped)
	}
	if cache.allCalls != 1 {
		t.Errorf("expected one full invalidation, got %d", cache.allCalls)
	}
}

func TestHandleLibraryChangeNothingVanished(t *testing.T) {
	source := &fakeSource{existing: map[string]bool{"a.jpg": true, "b.jpg": true}}
	overlay := &fakeOverlay{trashed: []string{"a.jpg", "b.jpg"}}
	cache := &fakeCache{}

	r := NewReconciler(source, overlay, cache, nil)
	if err := r.HandleLibraryChange(context.Background()); err != nil {
		t.Fatalf("HandleLibraryChange: %v", err)
	}

	if len(overlay.dropped) != 0 {
		t.Errorf("nothing should be dropped, got %v", overlay.dropped)
	}
	if cache.allCalls != 1 {
		t.Error("progress must still be invalidated: the library changed")
	}
}

func TestHandleLibraryChangeEmptyTrashSkipsSource(t *testing.T) {
	source := &fakeSource{}
	overlay := &fakeOverlay{}
	cache := &fakeCache{}

	r := NewReconciler(source, overlay, cache, nil)
	if err := r.HandleLibraryChange(context.Background()); err != nil {
		t.Fatalf("HandleLibraryChange: %v", err)
	}

	if source.calls != 0 {
		t.Error("an empty trash needs no existence check")
	}
	if cache.allCalls != 1 {
		t.Error("progress must still be invalidated")
	}
}

func TestHandleLibraryChangeSourceError(t *testing.T) {
	wantErr := errors.New("library offline")
	source := &fakeSource{err: wantErr}
	overlay := &fakeOverlay{trashed: []string{"a.jpg"}}
	cache := &fakeCache{}

	r := NewReconciler(source, overlay, cache, nil)
	err := r.HandleLibraryChange(context.Background())
	if !errors.Is(err, wantErr) {
		t.Errorf("error = %v, want %v", err, wantErr)
	}

	if len(overlay.dropped) != 0 {
		t.Error("nothing may be dropped when existence is unknown")
	}
	if cache.allCalls != 1 {
		t.Error("progress must be invalidated even when the check failed")
	}
}

func TestRunReconcilesOnEachNotification(t *testing.T) {
	source := &fakeSource{existing: map[string]bool{}}
	overlay := &fakeOverlay{trashed: []string{"gone.jpg"}}
	cache := &fakeCache{}
	r := NewReconciler(source, overlay, cache, nil)

	changes := make(chan struct{}, 2)
	changes <- struct{}{}
	changes <- struct{}{}
	close(changes)

	r.Run(context.Background(), changes)

	if cache.allCalls != 2 {
		t.Errorf("expected 2 reconciliations, got %d", cache.allCalls)
	}
}
