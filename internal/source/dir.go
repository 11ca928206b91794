package source

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/mmcdole/sift/internal/domain"
)

// favoritesAlbumTitle marks the album whose members count as favorites.
const favoritesAlbumTitle = "Favorites"

var photoExts = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".gif": true,
	".heic": true, ".webp": true, ".bmp": true, ".tiff": true,
}

var videoExts = map[string]bool{
	".mp4": true, ".mov": true, ".m4v": true, ".avi": true,
	".mkv": true, ".webm": true, ".3gp": true,
}

// DirectorySource implements domain.MediaSource over a local directory
// tree. First-level subdirectories are albums; item ids are slash-separated
// paths relative to the root, which stay stable across launches as long as
// files do not move.
type DirectorySource struct {
	root   string
	logger *slog.Logger

	mu     sync.RWMutex
	items  []domain.MediaItem // sorted by ID for stable pagination
	albums []domain.Album
}

// NewDirectorySource scans the root once and returns the source.
// Call Reload to pick up external changes.
func NewDirectorySource(root string, logger *slog.Logger) (*DirectorySource, error) {
	if logger == nil {
		logger = slog.Default()
	}

	s := &DirectorySource{root: root, logger: logger}
	if err := s.Reload(); err != nil {
		return nil, err
	}
	return s, nil
}

// Reload re-scans the library directory and swaps the snapshot.
func (s *DirectorySource) Reload() error {
	info, err := os.Stat(s.root)
	if err != nil || !info.IsDir() {
		return fmt.Errorf("%w: %s", domain.ErrSourceUnavailable, s.root)
	}

	var items []domain.MediaItem
	albumCounts := make(map[string]int) // album ID -> item count

	err = filepath.WalkDir(s.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			s.logger.Warn("skipping unreadable path", "path", path, "error", err)
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}

		kind, ok := mediaKind(path)
		if !ok {
			return nil
		}

		rel, err := filepath.Rel(s.root, path)
		if err != nil {
			return nil
		}
		id := filepath.ToSlash(rel)

		item := domain.MediaItem{
			ID:           id,
			Kind:         kind,
			IsScreenshot: isScreenshotName(d.Name()),
		}
		if info, err := d.Info(); err == nil {
			item.CreatedAt = info.ModTime()
		}

		if albumID, title := albumOf(id); albumID != "" {
			item.AlbumIDs = []string{albumID}
			albumCounts[albumID]++
			if title == favoritesAlbumTitle {
				item.IsFavorite = true
			}
		}

		items = append(items, item)
		return nil
	})
	if err != nil {
		return fmt.Errorf("scanning %s: %w", s.root, err)
	}

	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })

	albums := make([]domain.Album, 0, len(albumCounts))
	for id, count := range albumCounts {
		albums = append(albums, domain.Album{ID: id, Title: filepath.Base(id), ItemCount: count})
	}
	sort.Slice(albums, func(i, j int) bool { return albums[i].Title < albums[j].Title })

	s.mu.Lock()
	s.items = items
	s.albums = albums
	s.mu.Unlock()

	s.logger.Info("scanned library", "items", len(items), "albums", len(albums))
	return nil
}

// FetchPage returns one page of items matching the filter.
func (s *DirectorySource) FetchPage(ctx context.Context, f domain.Filter, offset, limit int) ([]domain.MediaItem, int, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var matched []domain.MediaItem
	for _, item := range s.items {
		if f.Matches(item) {
			matched = append(matched, item)
		}
	}

	total := len(matched)
	if offset >= total || limit <= 0 {
		return nil, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}

	page := make([]domain.MediaItem, end-offset)
	copy(page, matched[offset:end])
	return page, total, nil
}

// Albums returns all albums found in the last scan.
func (s *DirectorySource) Albums(ctx context.Context) ([]domain.Album, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	albums := make([]domain.Album, len(s.albums))
	copy(albums, s.albums)
	return albums, nil
}

// ExistingIDs stats the filesystem directly rather than trusting the
// snapshot: reconciliation runs precisely because the library changed
// underneath us.
func (s *DirectorySource) ExistingIDs(ctx context.Context, ids []string) (map[string]bool, error) {
	existing := make(map[string]bool, len(ids))
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		_, err := os.Stat(filepath.Join(s.root, filepath.FromSlash(id)))
		existing[id] = err == nil
	}
	return existing, nil
}

// mediaKind classifies a file by extension; ok is false for non-media files.
func mediaKind(path string) (domain.MediaKind, bool) {
	ext := strings.ToLower(filepath.Ext(path))
	switch {
	case photoExts[ext]:
		return domain.MediaKindPhoto, true
	case videoExts[ext]:
		return domain.MediaKindVideo, true
	default:
		return 0, false
	}
}

// isScreenshotName matches the common screenshot filename conventions.
func isScreenshotName(name string) bool {
	lower := strings.ToLower(name)
	return strings.HasPrefix(lower, "screenshot") || strings.HasPrefix(lower, "screen shot")
}

// albumOf returns the first-level directory of an id as (albumID, title).
// Items at the root belong to no album.
func albumOf(id string) (string, string) {
	idx := strings.Index(id, "/")
	if idx < 0 {
		return "", ""
	}
	first := id[:idx]
	return first, first
}
