package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/pders01/redlist/internal/debuglog"
	"github.com/pders01/redlist/internal/notice"
)

var (
	historyBucket = []byte("history")
	savedBucket   = []byte("saved")
)

// ErrNotFound is returned when a key does not exist.
var ErrNotFound = errors.New("not found")

type Store struct {
	db *bolt.DB
}

func NewStore(dbPath string, timeout time.Duration) (*Store, error) {
	if timeout <= 0 {
		timeout = 1 * time.Second
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("creating database directory: %w", err)
	}

	db, err := bolt.Open(dbPath, 0o600, &bolt.Options{Timeout: timeout})
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, bucket := range [][]byte{historyBucket, savedBucket} {
			if _, createErr := tx.CreateBucketIfNotExists(bucket); createErr != nil {
				return createErr
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating buckets: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func historyKey(query string) []byte {
	return []byte(strings.ToLower(strings.TrimSpace(query)))
}

// AddHistory records entry, replacing an earlier entry for the same
// query (case-insensitive), and keeps at most max entries, dropping the
// oldest. A non-positive max disables pruning.
func (s *Store) AddHistory(entry HistoryEntry, max int) error {
	key := historyKey(entry.Query)
	if len(key) == 0 {
		return nil
	}
	if entry.SearchedAt.IsZero() {
		entry.SearchedAt = time.Now()
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(historyBucket)
		data, err := json.Marshal(entry)
		if err != nil {
			return err
		}
		if err := b.Put(key, data); err != nil {
			return err
		}

		entries, corrupt, err := readHistory(b)
		if err != nil {
			return err
		}
		for _, k := range corrupt {
			if err := b.Delete(k); err != nil {
				return err
			}
		}
		if max <= 0 || len(entries) <= max {
			return nil
		}
		for _, old := range entries[max:] {
			if err := b.Delete(historyKey(old.Query)); err != nil {
				return err
			}
		}
		return nil
	})
}

// RecentQueries returns history entries, most recent first. A positive
// limit caps the result.
func (s *Store) RecentQueries(limit int) ([]*HistoryEntry, error) {
	var entries []*HistoryEntry
	err := s.db.View(func(tx *bolt.Tx) error {
		var err error
		entries, _, err = readHistory(tx.Bucket(historyBucket))
		return err
	})
	if err != nil {
		return nil, err
	}
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}

// ClearHistory removes every history entry.
func (s *Store) ClearHistory() error {
	return s.db.Update(func(tx *bolt.Tx) error {
		if err := tx.DeleteBucket(historyBucket); err != nil {
			return err
		}
		_, err := tx.CreateBucket(historyBucket)
		return err
	})
}

// readHistory decodes every entry of b. Keys whose value does not decode
// are logged and returned as corrupt so a write transaction can drop them.
func readHistory(b *bolt.Bucket) ([]*HistoryEntry, [][]byte, error) {
	var (
		entries []*HistoryEntry
		corrupt [][]byte
	)
	err := b.ForEach(func(k []byte, v []byte) error {
		var e HistoryEntry
		if err := json.Unmarshal(v, &e); err != nil {
			debuglog.Warnf("skipping corrupt history entry %q: %v", k, err)
			corrupt = append(corrupt, append([]byte(nil), k...))
			return nil
		}
		entries = append(entries, &e)
		return nil
	})
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].SearchedAt.After(entries[j].SearchedAt)
	})
	return entries, corrupt, err
}

// SaveNotice stores n under its entity id, overwriting an earlier copy.
func (s *Store) SaveNotice(n *notice.Notice) (*SavedNotice, error) {
	if n == nil || n.EntityID == "" {
		return nil, fmt.Errorf("notice has no entity id")
	}
	saved := &SavedNotice{Notice: n, SavedAt: time.Now()}

	err := s.db.Update(func(tx *bolt.Tx) error {
		data, err := json.Marshal(saved)
		if err != nil {
			return err
		}
		return tx.Bucket(savedBucket).Put([]byte(n.EntityID), data)
	})
	if err != nil {
		return nil, err
	}
	return saved, nil
}

func (s *Store) GetSavedNotice(id string) (*SavedNotice, error) {
	var saved SavedNotice
	err := s.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket(savedBucket).Get([]byte(id))
		if data == nil {
			return fmt.Errorf("saved notice %s: %w", id, ErrNotFound)
		}
		return json.Unmarshal(data, &saved)
	})
	if err != nil {
		return nil, err
	}
	return &saved, nil
}

func (s *Store) IsSaved(id string) bool {
	found := false
	_ = s.db.View(func(tx *bolt.Tx) error {
		found = tx.Bucket(savedBucket).Get([]byte(id)) != nil
		return nil
	})
	return found
}

// SavedNotices returns all saved notices, most recently saved first.
func (s *Store) SavedNotices() ([]*SavedNotice, error) {
	var out []*SavedNotice
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(savedBucket).ForEach(func(_ []byte, v []byte) error {
			var saved SavedNotice
			if err := json.Unmarshal(v, &saved); err != nil {
				return err
			}
			out = append(out, &saved)
			return nil
		})
	})
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].SavedAt.After(out[j].SavedAt)
	})
	return out, err
}

func (s *Store) DeleteSavedNotice(id string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(savedBucket)
		if b.Get([]byte(id)) == nil {
			return fmt.Errorf("saved notice %s: %w", id, ErrNotFound)
		}
		return b.Delete([]byte(id))
	})
}
