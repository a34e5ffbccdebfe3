// Package seed copies samples from a legacy sample file into another store.
package seed

import (
	"context"
	"fmt"

	"github.com/Simplici0/cropcalc/internal/samples"
)

// Stats contains seed operation counters.
type Stats struct {
	Inserts int
	Skipped bool
}

// Run copies every sample from src to dst in order. It is idempotent: when
// dst already holds samples nothing is copied.
func Run(ctx context.Context, src, dst samples.Store) (Stats, error) {
	existing, err := dst.All(ctx)
	if err != nil {
		return Stats{}, fmt.Errorf("check destination samples: %w", err)
	}
	if len(existing) > 0 {
		return Stats{Skipped: true}, nil
	}

	legacy, err := src.All(ctx)
	if err != nil {
		return Stats{}, fmt.Errorf("read legacy samples: %w", err)
	}

	stats := Stats{}
	for i, s := range legacy {
		if err := dst.Append(ctx, s); err != nil {
			return stats, fmt.Errorf("import sample %d: %w", i+1, err)
		}
		stats.Inserts++
	}

	return stats, nil
}
