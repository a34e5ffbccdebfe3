package seed

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/Simplici0/cropcalc/internal/db"
	"github.com/Simplici0/cropcalc/internal/migrations"
	"github.com/Simplici0/cropcalc/internal/samples"
)

func TestRunIsIdempotent(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	csvPath := filepath.Join(dir, "samples.csv")
	content := "crop,weight,base_price,recorded_at\n" +
		"감자,1.5,120,2025-05-01 09:30\n" +
		"감자,2,180.25,2025-05-01 09:31\n" +
		"토마토,0.5,40,2025-05-02 10:00\n"
	if err := os.WriteFile(csvPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write legacy csv: %v", err)
	}
	src, err := samples.OpenCSV(csvPath)
	if err != nil {
		t.Fatalf("open csv store: %v", err)
	}

	database, err := db.Open(ctx, filepath.Join(dir, "seed-test.db"))
	if err != nil {
		t.Fatalf("open sqlite database: %v", err)
	}
	defer database.Close()

	if err := migrations.Up(database); err != nil {
		t.Fatalf("run migrations: %v", err)
	}
	dst := samples.NewSQLiteStore(database)

	for i := 0; i < 10; i++ {
		stats, err := Run(ctx, src, dst)
		if err != nil {
			t.Fatalf("run seed (iteration=%d): %v", i, err)
		}
		if i == 0 {
			if stats.Inserts != 3 || stats.Skipped {
				t.Fatalf("expected 3 inserts in first run, got %+v", stats)
			}
			continue
		}
		if stats.Inserts != 0 || !stats.Skipped {
			t.Fatalf("expected skipped run in iteration %d, got %+v", i, stats)
		}
	}

	potatoes, err := dst.Load(ctx, "감자")
	if err != nil {
		t.Fatalf("load imported samples: %v", err)
	}
	if len(potatoes) != 2 {
		t.Fatalf("expected 2 imported samples, got %d", len(potatoes))
	}
	if potatoes[1].BasePrice != 180.25 {
		t.Fatalf("expected second sample base price 180.25, got %v", potatoes[1].BasePrice)
	}
}

func TestRunEmptySource(t *testing.T) {
	ctx := context.Background()

	stats, err := Run(ctx, samples.NewMemoryStore(), samples.NewMemoryStore())
	if err != nil {
		t.Fatalf("run seed: %v", err)
	}
	if stats.Inserts != 0 || stats.Skipped {
		t.Fatalf("unexpected stats: %+v", stats)
	}
}
