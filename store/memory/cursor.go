// Package memory provides in-memory implementations of store interfaces.
package memory

import (
	"context"
	"sync"
	"time"

	stellarkit "github.com/marwen-abid/stellarkit-go"
)

// cursorEntry is a stored paging token and when it was last written.
type cursorEntry struct {
	Cursor    string
	UpdatedAt time.Time
}

// CursorStore is an in-memory implementation of stellarkit.CursorStore.
// Access is protected by sync.RWMutex for thread safety.
type CursorStore struct {
	cursors map[string]cursorEntry
	mu      sync.RWMutex
	now     func() time.Time
}

// NewCursorStore creates a new in-memory cursor store.
func NewCursorStore() *CursorStore {
	return &CursorStore{
		cursors: make(map[string]cursorEntry),
		now:     time.Now,
	}
}

// Save records cursor as the latest position of the named stream.
// An empty cursor is ignored.
func (s *CursorStore) Save(ctx context.Context, stream, cursor string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if cursor == "" {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.cursors[stream] = cursorEntry{Cursor: cursor, UpdatedAt: s.now()}
	return nil
}

// Load returns the latest cursor of the named stream, or "" with ok false
// when nothing has been saved.
func (s *CursorStore) Load(ctx context.Context, stream string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.cursors[stream]
	return entry.Cursor, ok, nil
}

// UpdatedAt returns when the named stream's cursor was last saved.
func (s *CursorStore) UpdatedAt(stream string) (time.Time, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.cursors[stream]
	return entry.UpdatedAt, ok
}

// Saver adapts the store to observer.WithCursorSaver for one stream.
func (s *CursorStore) Saver(stream string) func(string) error {
	return func(cursor string) error {
		return s.Save(context.Background(), stream, cursor)
	}
}

// Verify that CursorStore implements stellarkit.CursorStore
var _ stellarkit.CursorStore = (*CursorStore)(nil)
