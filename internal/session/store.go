// Package session provides durable key-value storage for the auth tokens
// of the current client, with file watching and change notifications.
package session

import (
	"encoding/json"
	"maps"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/ThiagoDevLuiz/convicti-dashboard/internal/logger"
)

// Keys persisted by the auth manager. They are cleared as one group on logout.
const (
	KeyAccessToken     = "access_token"
	KeyRefreshToken    = "refresh_token"
	KeyTokenExpiration = "token_expiration"
)

// sessionFile is the JSON structure of the persisted session file.
type sessionFile struct {
	Tokens  map[string]string `json:"tokens"`
	Version int               `json:"version,omitempty"`
}

// Event represents a store event.
type Event struct {
	Type  EventType
	Error error
}

// EventType defines the type of store event.
type EventType int

const (
	// EventLoaded indicates the initial load from disk completed.
	EventLoaded EventType = iota
	// EventChanged indicates the session file changed externally.
	EventChanged
	// EventCleared indicates all keys were removed externally.
	EventCleared
	// EventError indicates a watcher error.
	EventError
)

// Store is a key-value token store backed by a JSON file. Every storage
// failure is logged and swallowed: callers always see the in-memory view,
// which silently degrades to memory-only when the file is unavailable.
// A Store with an empty path never touches the filesystem at all.
type Store struct {
	mu            sync.RWMutex
	values        map[string]string
	filePath      string
	watcher       *fsnotify.Watcher
	eventChan     chan Event
	stopChan      chan struct{}
	debounceTimer *time.Timer
	closeOnce     sync.Once
}

// New creates a store persisted at filePath and starts watching the file
// for external changes. An empty filePath yields a memory-only store.
func New(filePath string) *Store {
	s := &Store{
		values:    make(map[string]string),
		filePath:  filePath,
		eventChan: make(chan Event, 16),
		stopChan:  make(chan struct{}),
	}

	if filePath == "" {
		return s
	}

	if err := os.MkdirAll(filepath.Dir(filePath), 0o750); err != nil {
		logger.Warn("session store degrading to memory-only", "error", err)
		s.filePath = ""
		return s
	}

	if err := s.load(); err != nil && !os.IsNotExist(err) {
		logger.Warn("failed to load session file", "path", filePath, "error", err)
	}

	if err := s.startWatcher(); err != nil {
		logger.Warn("session file watching disabled", "error", err)
	}

	s.sendEvent(Event{Type: EventLoaded})

	return s
}

// Events returns the event channel for subscribing to store changes.
func (s *Store) Events() <-chan Event {
	return s.eventChan
}

// Put stores a value under key and persists best-effort.
func (s *Store) Put(key, value string) {
	s.mu.Lock()
	s.values[key] = value
	s.saveLocked()
	s.mu.Unlock()
}

// Get returns the value for key, or ok=false when absent.
func (s *Store) Get(key string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	value, ok := s.values[key]
	return value, ok
}

// Remove deletes a single key and persists best-effort.
func (s *Store) Remove(key string) {
	s.mu.Lock()
	delete(s.values, key)
	s.saveLocked()
	s.mu.Unlock()
}

// Clear removes every key as one group. Idempotent.
func (s *Store) Clear() {
	s.mu.Lock()
	s.values = make(map[string]string)
	s.saveLocked()
	s.mu.Unlock()
}

// Len returns the number of stored keys.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.values)
}

// Snapshot returns a copy of all stored values.
func (s *Store) Snapshot() map[string]string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]string, len(s.values))
	maps.Copy(out, s.values)
	return out
}

// load reads the session file into memory.
func (s *Store) load() error {
	data, err := os.ReadFile(s.filePath)
	if err != nil {
		return err
	}

	var file sessionFile
	if err := json.Unmarshal(data, &file); err != nil {
		return err
	}

	s.mu.Lock()
	s.values = file.Tokens
	if s.values == nil {
		s.values = make(map[string]string)
	}
	s.mu.Unlock()

	return nil
}

// saveLocked persists the current values. Must hold mu. Failures are
// logged and swallowed so persistence problems never break the auth flow.
func (s *Store) saveLocked() {
	if s.filePath == "" {
		return
	}

	file := sessionFile{
		Tokens:  s.values,
		Version: 1,
	}

	data, err := json.MarshalIndent(file, "", "  ")
	if err != nil {
		logger.Error("failed to marshal session file", "error", err)
		return
	}

	// Write to temp file first, then rename
	tmpFile := s.filePath + ".tmp"
	if err := os.WriteFile(tmpFile, data, 0600); err != nil {
		logger.Warn("failed to persist session file", "error", err)
		return
	}

	if err := os.Rename(tmpFile, s.filePath); err != nil {
		logger.Warn("failed to persist session file", "error", err)
		if removeErr := os.Remove(tmpFile); removeErr != nil {
			logger.Error("failed to remove temp session file", "error", removeErr)
		}
	}
}

// startWatcher starts the file system watcher.
func (s *Store) startWatcher() error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	s.watcher = watcher

	// Watch the directory (to catch file creation/deletion)
	dir := filepath.Dir(s.filePath)
	if err := watcher.Add(dir); err != nil {
		if closeErr := watcher.Close(); closeErr != nil {
			logger.Error("failed to close watcher", "error", closeErr)
		}
		return err
	}

	go s.watchLoop()
	return nil
}

// watchLoop handles file system events with debouncing.
func (s *Store) watchLoop() {
	const debounceInterval = 100 * time.Millisecond

	for {
		select {
		case event, ok := <-s.watcher.Events:
			if !ok {
				return
			}

			// Only care about our session file
			if filepath.Base(event.Name) != filepath.Base(s.filePath) {
				continue
			}

			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove) != 0 {
				// Debounce rapid changes
				if s.debounceTimer != nil {
					s.debounceTimer.Stop()
				}
				s.debounceTimer = time.AfterFunc(debounceInterval, func() {
					s.handleFileChange()
				})
			}

		case err, ok := <-s.watcher.Errors:
			if !ok {
				return
			}
			s.sendEvent(Event{Type: EventError, Error: err})

		case <-s.stopChan:
			return
		}
	}
}

// handleFileChange reloads tokens after an external change, e.g. another
// process logging the user out.
func (s *Store) handleFileChange() {
	if err := s.load(); err != nil {
		if os.IsNotExist(err) {
			s.mu.Lock()
			s.values = make(map[string]string)
			s.mu.Unlock()
			s.sendEvent(Event{Type: EventCleared})
			return
		}
		s.sendEvent(Event{Type: EventError, Error: err})
		return
	}

	if s.Len() == 0 {
		s.sendEvent(Event{Type: EventCleared})
		return
	}
	s.sendEvent(Event{Type: EventChanged})
}

// sendEvent sends an event without blocking.
func (s *Store) sendEvent(event Event) {
	select {
	case s.eventChan <- event:
	default:
	}
}

// Close stops the watcher and releases resources.
func (s *Store) Close() error {
	var err error
	s.closeOnce.Do(func() {
		close(s.stopChan)
		if s.debounceTimer != nil {
			s.debounceTimer.Stop()
		}
		if s.watcher != nil {
			err = s.watcher.Close()
		}
	})
	return err
}
