package storage

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore keeps encoded snapshots in process memory. Records go through
// the codec so a loaded snapshot never aliases a live game's state.
type MemoryStore struct {
	mu          sync.RWMutex
	initialized bool
	records     map[string]memoryRecord
}

type memoryRecord struct {
	id        string
	label     string
	createdAt time.Time
	payload   []byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Init(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.initialized = true
	s.records = make(map[string]memoryRecord)
	return nil
}

func (s *MemoryStore) SaveSnapshot(ctx context.Context, rec Record) (Record, error) {
	if err := ctx.Err(); err != nil {
		return Record{}, err
	}
	rec = stamp(rec)
	payload, err := EncodeSnapshot(rec.Snapshot)
	if err != nil {
		return Record{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.initialized {
		return Record{}, errors.New("memory store is not initialized")
	}
	s.records[rec.ID] = memoryRecord{id: rec.ID, label: rec.Label, createdAt: rec.CreatedAt, payload: payload}
	return rec, nil
}

func (s *MemoryStore) GetSnapshot(ctx context.Context, id string) (Record, bool, error) {
	if err := ctx.Err(); err != nil {
		return Record{}, false, err
	}
	s.mu.RLock()
	stored, ok := s.records[id]
	s.mu.RUnlock()
	if !ok {
		return Record{}, false, nil
	}
	rec, err := stored.decode()
	if err != nil {
		return Record{}, false, err
	}
	return rec, true, nil
}

func (s *MemoryStore) ListSnapshots(ctx context.Context) ([]Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	stored := make([]memoryRecord, 0, len(s.records))
	for _, r := range s.records {
		stored = append(stored, r)
	}
	s.mu.RUnlock()

	sort.Slice(stored, func(i, j int) bool {
		if !stored[i].createdAt.Equal(stored[j].createdAt) {
			return stored[i].createdAt.Before(stored[j].createdAt)
		}
		return stored[i].id < stored[j].id
	})
	out := make([]Record, 0, len(stored))
	for _, r := range stored {
		rec, err := r.decode()
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}

func (r memoryRecord) decode() (Record, error) {
	snap, err := DecodeSnapshot(r.payload)
	if err != nil {
		return Record{}, err
	}
	return Record{ID: r.id, Label: r.label, CreatedAt: r.createdAt, Snapshot: snap}, nil
}

// stamp fills the ID and creation time of a record about to be stored.
func stamp(rec Record) Record {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)
	}
	return rec
}
