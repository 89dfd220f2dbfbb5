package storage

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDatabaseSizeBytes(t *testing.T) {
	dir := t.TempDir()
	db := filepath.Join(dir, "movie.db")

	got, err := DatabaseSizeBytes(db)
	if err != nil || got != 0 {
		t.Fatalf("missing database: got %d, %v", got, err)
	}

	if err := os.WriteFile(db, []byte("hello"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(db+"-wal", []byte("abc"), 0644); err != nil {
		t.Fatal(err)
	}
	got, err = DatabaseSizeBytes(db)
	if err != nil {
		t.Fatal(err)
	}
	if got != 8 {
		t.Errorf("db+wal: got %d bytes, want 8", got)
	}

	if got, _ := DatabaseSizeBytes(""); got != 0 {
		t.Errorf("empty path: got %d", got)
	}
}
