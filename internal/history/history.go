package history

import (
	"encoding/json"
	"log"
	"os"
	"sync"

	"crypto_ta/internal/models"
)

// MaxEntries bounds the history log. Anything older than the 50 most recent
// analyses is permanently dropped, not archived.
const MaxEntries = 50

// Log is the in-memory history: newest first, insertion-ordered. Append is a
// pure transition so the bounding and ordering rules are testable without
// touching disk.
type Log []models.HistoryEntry

// Append returns a new Log with entry prepended and the result trimmed to
// MaxEntries. The receiver is not modified.
func (l Log) Append(entry models.HistoryEntry) Log {
	next := make(Log, 0, len(l)+1)
	next = append(next, entry)
	next = append(next, l...)
	if len(next) > MaxEntries {
		next = next[:MaxEntries]
	}
	return next
}

// Store couples a Log with its durable file. The in-memory log is the source
// of truth for the running session; the file is best-effort durability.
type Store struct {
	path string

	mu  sync.Mutex
	log Log
}

// NewStore creates a store persisting to path. Call Load before first use.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Load reads the persisted history. A missing file means empty history. A
// corrupted file is discarded and replaced with empty history: a broken
// history must never block new analyses, so corruption is logged and
// self-healed rather than surfaced.
func (s *Store) Load() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.log = nil

	b, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return
	}
	if err != nil {
		log.Printf("ERROR: Failed to read history file, starting empty: %v", err)
		return
	}

	var entries Log
	if err := json.Unmarshal(b, &entries); err != nil {
		log.Printf("ERROR: History file corrupted, discarding it: %v", err)
		os.Remove(s.path)
		return
	}

	// Enforce the bound on load too, in case the file predates it.
	if len(entries) > MaxEntries {
		entries = entries[:MaxEntries]
	}
	s.log = entries
}

// Append prepends entry, trims to the bound, then persists. A persistence
// failure is logged but does not roll back the in-memory append.
func (s *Store) Append(entry models.HistoryEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.log = s.log.Append(entry)
	s.persistLocked()
}

// Clear empties the log and erases the persisted file. User confirmation is
// the boundary layer's job, not the store's.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.log = nil
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		log.Printf("ERROR: Failed to remove history file: %v", err)
	}
}

// Entries returns a copy of the log, newest first.
func (s *Store) Entries() Log {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(Log, len(s.log))
	copy(out, s.log)
	return out
}

// Len reports the current number of stored entries.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.log)
}

// persistLocked writes the log using a write-temp, sync, rename sequence so
// a crash mid-write can never leave a half-written history behind.
// Caller must hold s.mu.
func (s *Store) persistLocked() {
	b, err := json.MarshalIndent(s.log, "", "  ")
	if err != nil {
		log.Printf("ERROR: Failed to marshal history: %v", err)
		return
	}

	tmpFile := s.path + ".tmp"
	f, err := os.Create(tmpFile)
	if err != nil {
		log.Printf("ERROR: Failed to create temp history file: %v", err)
		return
	}
	defer f.Close()

	if _, err := f.Write(b); err != nil {
		log.Printf("ERROR: Failed to write temp history file: %v", err)
		return
	}

	if err := f.Sync(); err != nil {
		log.Printf("ERROR: Failed to sync temp history file: %v", err)
		return
	}

	// Close explicitly before renaming (essential on Windows).
	f.Close()

	if err := os.Rename(tmpFile, s.path); err != nil {
		log.Printf("ERROR: Failed to replace history file (atomic rename): %v", err)
	}
}
