package ledger

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
)

// Kind names one of the three outcome files.
type Kind string

const (
	KindSuccess  Kind = "success"
	KindFailed   Kind = "failed"
	KindFallback Kind = "fallback"
)

// ErrLocked indicates another process holds the ledger directory.
var ErrLocked = errors.New("ledger directory is locked by another process")

// Entry is one recorded outcome. Output is set for success and fallback
// entries; Reason for failed and fallback entries.
type Entry struct {
	Key       string
	Artist    string
	Album     string
	Output    string
	Reason    string
	Timestamp time.Time
}

// Ledger tracks outcomes in memory and mirrors every mutation to disk.
type Ledger struct {
	dir  string
	lock *flock.Flock

	success  map[string]Entry
	failed   map[string]Entry
	fallback map[string]Entry

	successOrder  []string
	failedOrder   []string
	fallbackOrder []string
}

// Open loads the ledger files under dir, creating the directory as needed,
// and takes an exclusive lock on it. Returns ErrLocked when another process
// holds the lock.
func Open(dir string) (*Ledger, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating ledger directory: %w", err)
	}

	lock := flock.New(filepath.Join(dir, "ledger.lock"))
	held, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("locking ledger directory: %w", err)
	}
	if !held {
		return nil, ErrLocked
	}

	l := &Ledger{
		dir:      dir,
		lock:     lock,
		success:  make(map[string]Entry),
		failed:   make(map[string]Entry),
		fallback: make(map[string]Entry),
	}
	for _, kind := range []Kind{KindSuccess, KindFailed, KindFallback} {
		if err := l.loadFile(kind); err != nil {
			lock.Unlock()
			return nil, err
		}
	}
	return l, nil
}

// Close releases the directory lock.
func (l *Ledger) Close() error {
	return l.lock.Unlock()
}

// Dir returns the ledger directory.
func (l *Ledger) Dir() string { return l.dir }

func (l *Ledger) IsSuccess(key string) bool  { _, ok := l.success[key]; return ok }
func (l *Ledger) IsFailed(key string) bool   { _, ok := l.failed[key]; return ok }
func (l *Ledger) IsFallback(key string) bool { _, ok := l.fallback[key]; return ok }

// RecordSuccess stores a success entry and prunes any failed or fallback
// entries for the same key.
func (l *Ledger) RecordSuccess(entry Entry) error {
	entry = stamped(entry)
	l.upsert(KindSuccess, entry)
	if l.remove(KindFailed, entry.Key) {
		if err := l.writeFile(KindFailed); err != nil {
			return err
		}
	}
	if l.remove(KindFallback, entry.Key) {
		if err := l.writeFile(KindFallback); err != nil {
			return err
		}
	}
	return l.writeFile(KindSuccess)
}

// RecordFailure stores a failed entry, replacing any earlier failure for the
// same key.
func (l *Ledger) RecordFailure(entry Entry) error {
	entry = stamped(entry)
	l.upsert(KindFailed, entry)
	return l.writeFile(KindFailed)
}

// RecordFallback stores a fallback entry, replacing any earlier fallback for
// the same key.
func (l *Ledger) RecordFallback(entry Entry) error {
	entry = stamped(entry)
	l.upsert(KindFallback, entry)
	return l.writeFile(KindFallback)
}

// Entries returns the entries of one kind in recorded order.
func (l *Ledger) Entries(kind Kind) []Entry {
	entries, order := l.bucket(kind)
	out := make([]Entry, 0, len(order))
	for _, key := range order {
		out = append(out, entries[key])
	}
	return out
}

func stamped(entry Entry) Entry {
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now().UTC()
	}
	return entry
}

func (l *Ledger) bucket(kind Kind) (map[string]Entry, []string) {
	switch kind {
	case KindSuccess:
		return l.success, l.successOrder
	case KindFailed:
		return l.failed, l.failedOrder
	default:
		return l.fallback, l.fallbackOrder
	}
}

func (l *Ledger) upsert(kind Kind, entry Entry) {
	entries, _ := l.bucket(kind)
	if _, exists := entries[entry.Key]; !exists {
		switch kind {
		case KindSuccess:
			l.successOrder = append(l.successOrder, entry.Key)
		case KindFailed:
			l.failedOrder = append(l.failedOrder, entry.Key)
		case KindFallback:
			l.fallbackOrder = append(l.fallbackOrder, entry.Key)
		}
	}
	entries[entry.Key] = entry
}

func (l *Ledger) remove(kind Kind, key string) bool {
	entries, order := l.bucket(kind)
	if _, exists := entries[key]; !exists {
		return false
	}
	delete(entries, key)
	for i, k := range order {
		if k == key {
			order = append(order[:i], order[i+1:]...)
			break
		}
	}
	switch kind {
	case KindSuccess:
		l.successOrder = order
	case KindFailed:
		l.failedOrder = order
	case KindFallback:
		l.fallbackOrder = order
	}
	return true
}
