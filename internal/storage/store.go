package storage

import (
	"context"
	"time"

	"journeyboard/internal/engine"
)

// Record is one stored game snapshot.
type Record struct {
	ID        string          `json:"id"`
	Label     string          `json:"label,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
	Snapshot  engine.Snapshot `json:"snapshot"`
}

// Store persists game snapshots.
type Store interface {
	Init(ctx context.Context) error
	// SaveSnapshot stores rec, assigning an ID and creation time when they
	// are empty, and returns the stored record.
	SaveSnapshot(ctx context.Context, rec Record) (Record, error)
	GetSnapshot(ctx context.Context, id string) (Record, bool, error)
	// ListSnapshots returns records oldest first.
	ListSnapshots(ctx context.Context) ([]Record, error)
}
