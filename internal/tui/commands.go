package tui

import (
	"context"
	"strconv"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mmcdole/sift/internal/domain"
	"github.com/mmcdole/sift/internal/events"
)

const queueBatchSize = 500

// Reloader re-scans the media source snapshot.
type Reloader interface {
	Reload() error
}

// Reconciler reconciles the overlay after the library changed.
type Reconciler interface {
	HandleLibraryChange(ctx context.Context) error
}

// FileRemover permanently deletes library files by id. Injected by main so
// the TUI never touches filesystem paths itself.
type FileRemover func(ids []string) error

// loadQueueCmd pages through the current scope (whole library or one album)
// and keeps everything not yet swiped, preserving source order.
func (m Model) loadQueueCmd() tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()
		var queue []domain.MediaItem
		offset := 0

		for {
			items, total, err := m.source.FetchPage(ctx, m.queueScope, offset, queueBatchSize)
			if err != nil {
				return ErrMsg{Err: err, Context: "loading review queue"}
			}
			for _, item := range items {
				if !m.overlay.IsSwiped(item.ID) {
					queue = append(queue, item)
				}
			}
			offset += len(items)
			if offset >= total || len(items) == 0 {
				break
			}
		}

		return QueueLoadedMsg{Items: queue}
	}
}

// loadProgressCmd queries all three cache kinds.
func (m Model) loadProgressCmd() tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()

		msg := ProgressLoadedMsg{
			Categories: m.cache.CategoryProgress(ctx),
			Buckets:    m.cache.BucketProgress(ctx, bucketLabels(time.Now())),
		}

		if albums, err := m.source.Albums(ctx); err == nil {
			msg.Albums = m.cache.AlbumProgress(ctx, albums)
		}

		return msg
	}
}

// bucketLabels returns the labels shown in the progress view: the last five
// calendar years plus the trailing six month buckets.
func bucketLabels(now time.Time) []string {
	var labels []string
	for y := now.Year(); y > now.Year()-5; y-- {
		labels = append(labels, strconv.Itoa(y))
	}
	month := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	for i := 0; i < 6; i++ {
		labels = append(labels, month.Format(domain.MonthBucketFormat))
		month = month.AddDate(0, -1, 0)
	}
	return labels
}

// loadAlbumsCmd loads the album list for the picker.
func (m Model) loadAlbumsCmd() tea.Cmd {
	return func() tea.Msg {
		albums, err := m.source.Albums(context.Background())
		if err != nil {
			return ErrMsg{Err: err, Context: "loading albums"}
		}
		return AlbumsLoadedMsg{Albums: albums}
	}
}

// deleteTrashCmd removes the files and then clears them from the trash.
// The overlay only forgets the trash membership; the ids stay swiped.
func (m Model) deleteTrashCmd(ids []string) tea.Cmd {
	return func() tea.Msg {
		if m.removeFiles != nil {
			if err := m.removeFiles(ids); err != nil {
				return ErrMsg{Err: err, Context: "deleting files"}
			}
		}
		m.overlay.PermanentlyDelete(ids)
		return TrashDeletedMsg{Count: len(ids)}
	}
}

// rescanCmd refreshes the source snapshot and reconciles the overlay
// against whatever changed outside the app.
func (m Model) rescanCmd() tea.Cmd {
	return func() tea.Msg {
		if m.reloader != nil {
			if err := m.reloader.Reload(); err != nil {
				return ErrMsg{Err: err, Context: "rescanning library"}
			}
		}
		if m.reconciler != nil {
			if err := m.reconciler.HandleLibraryChange(context.Background()); err != nil {
				return ErrMsg{Err: err, Context: "reconciling overlay"}
			}
		}
		return LibraryRescannedMsg{}
	}
}

// listenBusCmd waits for the next core change notification.
func listenBusCmd(ch <-chan events.Event) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-ch
		if !ok {
			return nil
		}
		return BusEventMsg{Event: ev}
	}
}
