package sqlitemigrate

import (
	"context"
	"database/sql"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"

	_ "modernc.org/sqlite"
)

func openDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "migrate.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func count(t *testing.T, db *sql.DB, query string) int {
	t.Helper()
	var n int
	if err := db.QueryRow(query).Scan(&n); err != nil {
		t.Fatalf("query %q: %v", query, err)
	}
	return n
}

func TestApplyMigrationsRecordsApplied(t *testing.T) {
	db := openDB(t)
	migrations := fstest.MapFS{
		"001_items.sql": &fstest.MapFile{Data: []byte("-- +migrate Up\nCREATE TABLE items(id TEXT PRIMARY KEY);\n-- +migrate Down\nDROP TABLE items;")},
		"002_more.sql":  &fstest.MapFile{Data: []byte("CREATE TABLE more(id TEXT PRIMARY KEY);")},
		"README.md":     &fstest.MapFile{Data: []byte("not a migration")},
	}
	if err := ApplyMigrations(context.Background(), db, migrations, ""); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if n := count(t, db, "SELECT COUNT(*) FROM schema_migrations"); n != 2 {
		t.Fatalf("expected 2 recorded migrations, got %d", n)
	}
	if n := count(t, db, "SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name IN ('items','more')"); n != 2 {
		t.Fatalf("expected both tables, got %d", n)
	}
}

func TestApplyMigrationsSkipsAlreadyApplied(t *testing.T) {
	db := openDB(t)
	migrations := fstest.MapFS{
		"001_items.sql": &fstest.MapFile{Data: []byte("-- +migrate Up\nCREATE TABLE items(id TEXT PRIMARY KEY);")},
	}
	for i := 0; i < 2; i++ {
		if err := ApplyMigrations(context.Background(), db, migrations, ""); err != nil {
			t.Fatalf("apply run %d: %v", i, err)
		}
	}
	if n := count(t, db, "SELECT COUNT(*) FROM schema_migrations"); n != 1 {
		t.Fatalf("expected a single migration row, got %d", n)
	}
}

func TestApplyMigrationsRollsBackFailure(t *testing.T) {
	db := openDB(t)
	migrations := fstest.MapFS{
		"001_bad.sql": &fstest.MapFile{Data: []byte("CREATE TABLE ok(id TEXT); CREATE TABLE broken(")},
	}
	if err := ApplyMigrations(context.Background(), db, migrations, ""); err == nil {
		t.Fatal("expected an error from invalid SQL")
	}
	if n := count(t, db, "SELECT COUNT(*) FROM schema_migrations"); n != 0 {
		t.Fatalf("failed migration must not be recorded, got %d", n)
	}
}

func TestExtractUpMigration(t *testing.T) {
	got := ExtractUpMigration("-- header\n-- +migrate Up\nCREATE TABLE a(x);\n-- +migrate Down\nDROP TABLE a;")
	if strings.TrimSpace(got) != "CREATE TABLE a(x);" {
		t.Fatalf("unexpected up section %q", got)
	}
	if got := ExtractUpMigration("SELECT 1;"); got != "SELECT 1;" {
		t.Fatalf("content without markers is returned whole, got %q", got)
	}
}
