package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/mmcdole/sift/internal/domain"
	bolt "go.etcd.io/bbolt"
)

// Bucket names
var (
	bucketOverlay = []byte("overlay")
	bucketQuota   = []byte("quota")
)

// Keys within buckets
const (
	keySwiped  = "swiped"
	keyTrashed = "trashed"
	keyQuota   = "counters"
)

// OverlayStore implements domain.OverlayStorage using BoltDB.
type OverlayStore struct {
	db *bolt.DB
	mu sync.RWMutex // Protects memory cache

	// In-memory cache for hot-path reads (promoted on access)
	cache map[string][]byte
}

// NewOverlayStore opens (or creates) the overlay database under dataDir.
// An empty dataDir gives a memory-only store (no persistence), which is
// what tests use.
func NewOverlayStore(dataDir string) (*OverlayStore, error) {
	if dataDir == "" {
		// Memory-only mode (no persistence)
		return &OverlayStore{cache: make(map[string][]byte)}, nil
	}

	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, err
	}

	dbPath := filepath.Join(dataDir, "sift.db")
	db, err := bolt.Open(dbPath, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt db: %w", err)
	}

	// Create buckets
	err = db.Update(func(tx *bolt.Tx) error {
		for _, bucket := range [][]byte{bucketOverlay, bucketQuota} {
			if _, err := tx.CreateBucketIfNotExists(bucket); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &OverlayStore{db: db, cache: make(map[string][]byte)}, nil
}

func (s *OverlayStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// === Generic helpers ===

func (s *OverlayStore) get(bucket []byte, key string, dest interface{}) bool {
	cacheKey := string(bucket) + ":" + key

	// Check memory cache first
	s.mu.RLock()
	if data, ok := s.cache[cacheKey]; ok {
		s.mu.RUnlock()
		return json.Unmarshal(data, dest) == nil
	}
	s.mu.RUnlock()

	if s.db == nil {
		return false
	}

	// Read from BoltDB
	var data []byte
	s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucket)
		if b == nil {
			return nil
		}
		if v := b.Get([]byte(key)); v != nil {
			data = make([]byte, len(v))
			copy(data, v)
		}
		return nil
	})

	if data == nil {
		return false
	}

	// Promote to memory cache
	s.mu.Lock()
	s.cache[cacheKey] = data
	s.mu.Unlock()

	return json.Unmarshal(data, dest) == nil
}

func (s *OverlayStore) set(bucket []byte, key string, value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}

	cacheKey := string(bucket) + ":" + key

	// Update memory cache
	s.mu.Lock()
	s.cache[cacheKey] = data
	s.mu.Unlock()

	if s.db == nil {
		return nil // Memory-only mode
	}

	// Write to BoltDB
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucket)
		return b.Put([]byte(key), data)
	})
}

// === Triage overlay ===

func (s *OverlayStore) GetSwiped() ([]string, bool) {
	var ids []string
	ok := s.get(bucketOverlay, keySwiped, &ids)
	return ids, ok
}

func (s *OverlayStore) SaveSwiped(ids []string) error {
	return s.set(bucketOverlay, keySwiped, ids)
}

func (s *OverlayStore) GetTrashed() ([]string, bool) {
	var ids []string
	ok := s.get(bucketOverlay, keyTrashed, &ids)
	return ids, ok
}

func (s *OverlayStore) SaveTrashed(ids []string) error {
	return s.set(bucketOverlay, keyTrashed, ids)
}

// === Quota counters ===

func (s *OverlayStore) GetQuota() (domain.QuotaState, bool) {
	var q domain.QuotaState
	ok := s.get(bucketQuota, keyQuota, &q)
	return q, ok
}

func (s *OverlayStore) SaveQuota(q domain.QuotaState) error {
	return s.set(bucketQuota, keyQuota, q)
}

// === Reset ===

// Reset wipes the persisted triage overlay. The quota bucket is left alone
// so clearing triage history does not refill the daily allowance.
func (s *OverlayStore) Reset() error {
	s.mu.Lock()
	for key := range s.cache {
		if strings.HasPrefix(key, string(bucketOverlay)+":") {
			delete(s.cache, key)
		}
	}
	s.mu.Unlock()

	if s.db == nil {
		return nil
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketOverlay)
		if b == nil {
			return nil
		}
		c := b.Cursor()
		for k, _ := c.First(); k != nil; k, _ = c.Next() {
			if err := b.Delete(k); err != nil {
				return err
			}
		}
		return nil
	})
}
