package lifecycle

import (
	"context"
	"sync"

	"github.com/meridian-club/meridian/internal/audit"
)

// MemoryStore is an in-process Store used by tests. It mirrors the
// PostgreSQL store's semantics: conditional writes are atomic under a single
// lock, and the audited variant either applies both effects or neither.
type MemoryStore struct {
	mu      sync.Mutex
	records map[string]Record
	// Entries collects audit rows appended through audited writes.
	Entries []audit.Entry
	// AppendErr, when set, fails audited writes to exercise rollback.
	AppendErr error
	// Writes counts committed conditional writes per resource.
	Writes map[string]int
}

// NewMemoryStore constructs an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		records: make(map[string]Record),
		Writes:  make(map[string]int),
	}
}

func key(kind, id string) string {
	return kind + "/" + id
}

// Seed inserts a record directly, bypassing version checks.
func (s *MemoryStore) Seed(rec Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if rec.Version == 0 {
		rec.Version = 1
	}
	s.records[key(rec.Kind, rec.ID)] = cloneRecord(rec)
}

// Read returns the current record.
func (s *MemoryStore) Read(ctx context.Context, kind, id string) (Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[key(kind, id)]
	if !ok {
		return Record{}, ErrNotFound
	}
	return cloneRecord(rec), nil
}

// Create inserts a new record at version 1.
func (s *MemoryStore) Create(ctx context.Context, rec Record) (Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := key(rec.Kind, rec.ID)
	if _, ok := s.records[k]; ok {
		return Record{}, ErrConflict
	}
	rec.Version = 1
	s.records[k] = cloneRecord(rec)
	return cloneRecord(rec), nil
}

// ConditionalWrite applies the write iff the version still matches.
func (s *MemoryStore) ConditionalWrite(ctx context.Context, kind, id string, expectedVersion int64, w Write) (Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.applyLocked(kind, id, expectedVersion, w)
}

// ConditionalWriteAudited applies the write and the audit append atomically.
func (s *MemoryStore) ConditionalWriteAudited(ctx context.Context, kind, id string, expectedVersion int64, w Write, entry audit.Entry) (Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.AppendErr != nil {
		return Record{}, s.AppendErr
	}
	rec, err := s.applyLocked(kind, id, expectedVersion, w)
	if err != nil {
		return Record{}, err
	}
	s.Entries = append(s.Entries, entry)
	return rec, nil
}

func (s *MemoryStore) applyLocked(kind, id string, expectedVersion int64, w Write) (Record, error) {
	k := key(kind, id)
	rec, ok := s.records[k]
	if !ok {
		return Record{}, ErrNotFound
	}
	if rec.Version != expectedVersion {
		return Record{}, ErrConflict
	}
	rec.PreviousState = w.PreviousState
	rec.State = w.NewState
	rec.StateEnteredAt = w.StateEnteredAt
	rec.StateEnteredBy = w.StateEnteredBy
	rec.Version++
	if rec.Fields == nil {
		rec.Fields = make(map[string]any)
	}
	for key, value := range w.Fields {
		rec.Fields[key] = value
	}
	s.records[k] = cloneRecord(rec)
	s.Writes[k]++
	return cloneRecord(rec), nil
}

func cloneRecord(rec Record) Record {
	out := rec
	if rec.Fields != nil {
		out.Fields = make(map[string]any, len(rec.Fields))
		for k, v := range rec.Fields {
			out.Fields[k] = v
		}
	}
	return out
}

var _ Store = (*MemoryStore)(nil)
