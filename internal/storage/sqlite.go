package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"journeyboard/internal/platform/storage/sqlitemigrate"
	"journeyboard/internal/storage/migrations"

	_ "modernc.org/sqlite"
)

// SQLiteStore persists snapshots in a SQLite file. The pool holds a single
// connection, so concurrent saves queue in database/sql instead of racing
// for the write lock.
type SQLiteStore struct {
	path string

	mu sync.RWMutex
	db *sql.DB
}

func NewSQLiteStore(path string) *SQLiteStore {
	return &SQLiteStore{path: path}
}

// Init opens the database and applies migrations. Calling it again is a no-op.
func (s *SQLiteStore) Init(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if strings.TrimSpace(s.path) == "" {
		return errors.New("sqlite path is required")
	}
	if s.db != nil {
		return nil
	}

	db, err := sql.Open("sqlite", sqliteDSN(s.path))
	if err != nil {
		return fmt.Errorf("open sqlite db: %w", err)
	}
	db.SetMaxOpenConns(1)
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := sqlitemigrate.ApplyMigrations(ctx, db, migrations.FS, ""); err != nil {
		_ = db.Close()
		return fmt.Errorf("run migrations: %w", err)
	}
	s.db = db
	return nil
}

// sqliteDSN builds a modernc.org/sqlite DSN. The driver only reads
// connection pragmas given in _pragma form.
func sqliteDSN(path string) string {
	return filepath.Clean(path) + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)" +
		"&_pragma=foreign_keys(1)&_pragma=synchronous(NORMAL)"
}

// Close releases the connection.
func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

func (s *SQLiteStore) SaveSnapshot(ctx context.Context, rec Record) (Record, error) {
	if err := ctx.Err(); err != nil {
		return Record{}, err
	}
	db, err := s.getDB()
	if err != nil {
		return Record{}, err
	}
	rec = stamp(rec)
	payload, err := EncodeSnapshot(rec.Snapshot)
	if err != nil {
		return Record{}, err
	}

	_, err = db.ExecContext(ctx, `
INSERT INTO snapshots (id, label, game_id, board_id, schema_version, codec_version, payload, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
	label = excluded.label,
	game_id = excluded.game_id,
	board_id = excluded.board_id,
	schema_version = excluded.schema_version,
	codec_version = excluded.codec_version,
	payload = excluded.payload,
	created_at = excluded.created_at
`,
		rec.ID,
		rec.Label,
		rec.Snapshot.GameID,
		rec.Snapshot.BoardID,
		CurrentSchemaVersion,
		CurrentCodecVersion,
		payload,
		rec.CreatedAt.UTC().UnixMilli(),
	)
	if err != nil {
		return Record{}, fmt.Errorf("save snapshot: %w", err)
	}
	return rec, nil
}

func (s *SQLiteStore) GetSnapshot(ctx context.Context, id string) (Record, bool, error) {
	if err := ctx.Err(); err != nil {
		return Record{}, false, err
	}
	db, err := s.getDB()
	if err != nil {
		return Record{}, false, err
	}

	row := db.QueryRowContext(ctx, `SELECT id, label, payload, created_at FROM snapshots WHERE id = ?`, id)
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, false, nil
	}
	if err != nil {
		return Record{}, false, fmt.Errorf("get snapshot %s: %w", id, err)
	}
	return rec, true, nil
}

func (s *SQLiteStore) ListSnapshots(ctx context.Context) ([]Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	db, err := s.getDB()
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx, `SELECT id, label, payload, created_at FROM snapshots ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan snapshot: %w", err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate snapshots: %w", err)
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (Record, error) {
	var (
		rec       Record
		payload   []byte
		createdAt int64
	)
	if err := row.Scan(&rec.ID, &rec.Label, &payload, &createdAt); err != nil {
		return Record{}, err
	}
	snap, err := DecodeSnapshot(payload)
	if err != nil {
		return Record{}, err
	}
	rec.Snapshot = snap
	rec.CreatedAt = time.UnixMilli(createdAt).UTC()
	return rec, nil
}

func (s *SQLiteStore) getDB() (*sql.DB, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.db == nil {
		return nil, errors.New("sqlite store is not initialized")
	}
	return s.db, nil
}
