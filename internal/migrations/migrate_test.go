package migrations

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/Simplici0/cropcalc/internal/db"
)

func TestUpIsRepeatable(t *testing.T) {
	database, err := db.Open(context.Background(), filepath.Join(t.TempDir(), "migrate.db"))
	if err != nil {
		t.Fatalf("open sqlite database: %v", err)
	}
	defer database.Close()

	for i := 0; i < 2; i++ {
		if err := Up(database); err != nil {
			t.Fatalf("Up (run %d): %v", i, err)
		}
	}

	version, err := Version(database)
	if err != nil {
		t.Fatalf("Version: %v", err)
	}
	if version != 1 {
		t.Fatalf("version=%d, want 1", version)
	}

	var count int
	if err := database.QueryRow(`SELECT COUNT(*) FROM samples`).Scan(&count); err != nil {
		t.Fatalf("query samples table: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected empty samples table, got %d rows", count)
	}
}
