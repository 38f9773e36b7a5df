// Package queue persists the transfer queue between runs.
package queue

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v4"
)

var ErrNotFound = errors.New("queue entry not found")

const keyPrefix = "queue:"

type Status string

const (
	StatusPending   Status = "pending"
	StatusRunning   Status = "running"
	StatusComplete  Status = "complete"
	StatusFailed    Status = "failed"
	StatusCancelled Status = "cancelled"
)

// Item is one root of a queued transfer.
type Item struct {
	Remote string `json:"remote"`
	Local  string `json:"local"`
}

type Entry struct {
	ID          string    `json:"id"`
	Direction   string    `json:"direction"`
	Server      string    `json:"server"`
	Items       []Item    `json:"items"`
	Action      string    `json:"action"`
	Status      Status    `json:"status"`
	Message     string    `json:"message,omitempty"`
	Size        int64     `json:"size"`
	Transferred int64     `json:"transferred"`
	Created     time.Time `json:"created"`
	Updated     time.Time `json:"updated"`
}

type Store struct {
	db *badger.DB

	mu     sync.Mutex
	lastID int64
}

func Open(dir string) (*Store, error) {
	opts := badger.DefaultOptions(dir)
	opts.Logger = nil // Disable BadgerDB logging

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open queue: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// nextID returns a timestamp based ID that is strictly increasing even
// when called twice within the same nanosecond.
func (s *Store) nextID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := time.Now().UnixNano()
	if id <= s.lastID {
		id = s.lastID + 1
	}
	s.lastID = id
	return strconv.FormatInt(id, 36)
}

// Add stores a new entry, assigning its ID and timestamps.
func (s *Store) Add(e *Entry) error {
	e.ID = s.nextID()
	now := time.Now()
	e.Created = now
	e.Updated = now
	if e.Status == "" {
		e.Status = StatusPending
	}
	return s.put(e)
}

// Update overwrites an existing entry.
func (s *Store) Update(e *Entry) error {
	if _, err := s.Get(e.ID); err != nil {
		return err
	}
	e.Updated = time.Now()
	return s.put(e)
}

func (s *Store) put(e *Entry) error {
	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("failed to marshal queue entry: %w", err)
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(keyPrefix+e.ID), data)
	})
}

func (s *Store) Get(id string) (*Entry, error) {
	var entry *Entry

	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(keyPrefix + id))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			entry = &Entry{}
			return json.Unmarshal(val, entry)
		})
	})

	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get queue entry: %w", err)
	}
	return entry, nil
}

// List returns all entries, oldest first.
func (s *Store) List() ([]Entry, error) {
	var entries []Entry

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = true
		iter := txn.NewIterator(opts)
		defer iter.Close()

		prefix := []byte(keyPrefix)
		for iter.Seek(prefix); iter.ValidForPrefix(prefix); iter.Next() {
			err := iter.Item().Value(func(val []byte) error {
				var entry Entry
				if err := json.Unmarshal(val, &entry); err != nil {
					return err
				}
				entries = append(entries, entry)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list queue: %w", err)
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Created.Before(entries[j].Created)
	})
	return entries, nil
}

func (s *Store) Remove(id string) error {
	if _, err := s.Get(id); err != nil {
		return err
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(keyPrefix + id))
	})
}

// Clear removes every entry that is not running.
func (s *Store) Clear() (int, error) {
	entries, err := s.List()
	if err != nil {
		return 0, err
	}
	removed := 0
	err = s.db.Update(func(txn *badger.Txn) error {
		for _, e := range entries {
			if e.Status == StatusRunning {
				continue
			}
			if err := txn.Delete([]byte(keyPrefix + e.ID)); err != nil {
				return err
			}
			removed++
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to clear queue: %w", err)
	}
	return removed, nil
}
