// Package samples persists observed crop base prices.
//
// Stores are append-only: a Sample is never updated or removed once written,
// and identical observations are kept as separate rows.
package samples

import (
	"context"
	"time"
)

// TimeLayout is the persisted form of Sample.RecordedAt.
const TimeLayout = "2006-01-02 15:04"

// Header is the column order of the flat sample file.
var Header = []string{"crop", "weight", "base_price", "recorded_at"}

// Sample is one observation of a crop's unmodified base price at a weight.
type Sample struct {
	Crop       string
	Weight     float64
	BasePrice  float64
	RecordedAt time.Time
}

// Store is the system of record for samples.
type Store interface {
	// Load returns the samples whose crop matches exactly, in insertion order.
	Load(ctx context.Context, crop string) ([]Sample, error)
	// Append durably writes one sample after all existing ones.
	Append(ctx context.Context, s Sample) error
	// All returns every sample in insertion order.
	All(ctx context.Context) ([]Sample, error)
}

func parseRecordedAt(raw string) (time.Time, error) {
	return time.ParseInLocation(TimeLayout, raw, time.Local)
}
