package samples

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"sync"
)

// CSVStore keeps samples in a comma-separated file with a header row.
type CSVStore struct {
	path string
	mu   sync.Mutex
}

var _ Store = (*CSVStore)(nil)

// OpenCSV returns a store backed by path, creating the file with only the
// header row when it does not exist yet.
func OpenCSV(path string) (*CSVStore, error) {
	s := &CSVStore{path: path}
	if err := s.bootstrap(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *CSVStore) bootstrap() error {
	if _, err := os.Stat(s.path); err == nil {
		return nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("stat sample file: %w", err)
	}

	if dir := filepath.Dir(s.path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create sample dir: %w", err)
		}
	}

	f, err := os.OpenFile(s.path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return nil
		}
		return fmt.Errorf("create sample file: %w", err)
	}

	w := csv.NewWriter(f)
	if err := w.Write(Header); err != nil {
		f.Close()
		return fmt.Errorf("write sample header: %w", err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return fmt.Errorf("flush sample header: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close sample file: %w", err)
	}
	return nil
}

func (s *CSVStore) Load(ctx context.Context, crop string) ([]Sample, error) {
	all, err := s.All(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]Sample, 0)
	for _, sample := range all {
		if sample.Crop == crop {
			out = append(out, sample)
		}
	}
	return out, nil
}

func (s *CSVStore) All(ctx context.Context) ([]Sample, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("open sample file: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = len(Header)

	out := make([]Sample, 0)
	line := 0
	for {
		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read sample file: %w", err)
		}
		line++
		if line == 1 {
			continue
		}

		sample, err := decodeRecord(record)
		if err != nil {
			return nil, fmt.Errorf("sample file line %d: %w", line, err)
		}
		out = append(out, sample)
	}

	return out, nil
}

func (s *CSVStore) Append(ctx context.Context, sample Sample) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open sample file for append: %w", err)
	}

	w := csv.NewWriter(f)
	if err := w.Write(encodeRecord(sample)); err != nil {
		f.Close()
		return fmt.Errorf("write sample: %w", err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return fmt.Errorf("flush sample: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close sample file: %w", err)
	}
	return nil
}

func encodeRecord(s Sample) []string {
	return []string{
		s.Crop,
		strconv.FormatFloat(s.Weight, 'f', -1, 64),
		strconv.FormatFloat(s.BasePrice, 'f', -1, 64),
		s.RecordedAt.Format(TimeLayout),
	}
}

func decodeRecord(record []string) (Sample, error) {
	weight, err := strconv.ParseFloat(record[1], 64)
	if err != nil {
		return Sample{}, fmt.Errorf("parse weight %q: %w", record[1], err)
	}
	basePrice, err := strconv.ParseFloat(record[2], 64)
	if err != nil {
		return Sample{}, fmt.Errorf("parse base_price %q: %w", record[2], err)
	}
	recordedAt, err := parseRecordedAt(record[3])
	if err != nil {
		return Sample{}, fmt.Errorf("parse recorded_at %q: %w", record[3], err)
	}

	return Sample{
		Crop:       record[0],
		Weight:     weight,
		BasePrice:  basePrice,
		RecordedAt: recordedAt,
	}, nil
}
