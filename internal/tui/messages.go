package tui

import (
	"github.com/mmcdole/sift/internal/domain"
	"github.com/mmcdole/sift/internal/events"
)

// Message types for the TUI

// ErrMsg represents an error
type ErrMsg struct {
	Err     error
	Context string
}

// Error implements the error interface
func (e ErrMsg) Error() string {
	if e.Context != "" {
		return e.Context + ": " + e.Err.Error()
	}
	return e.Err.Error()
}

// QueueLoadedMsg signals that the review queue has been loaded
type QueueLoadedMsg struct {
	Items []domain.MediaItem
}

// ProgressLoadedMsg signals that progress fractions are ready
type ProgressLoadedMsg struct {
	Categories map[domain.Category]float64
	Buckets    map[string]float64
	Albums     map[string]float64
}

// AlbumsLoadedMsg signals that the album list has been loaded
type AlbumsLoadedMsg struct {
	Albums []domain.Album
}

// TrashDeletedMsg signals that files were permanently removed
type TrashDeletedMsg struct {
	Count int
}

// BusEventMsg delivers a core change notification to the UI loop
type BusEventMsg struct {
	Event events.Event
}

// LibraryRescannedMsg signals that the source snapshot was refreshed
// and reconciliation ran
type LibraryRescannedMsg struct{}
