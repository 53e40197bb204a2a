// Package storage keeps recorded lesson runs on disk: one directory per run
// holding metadata.json and metrics.csv.
package storage

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/san-kum/pointerquest/internal/engine"
	"github.com/san-kum/pointerquest/internal/metrics"
)

var ErrNotFound = errors.New("storage: recording not found")

type Store struct {
	baseDir string
	now     func() time.Time
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir, now: time.Now}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0o755)
}

func (s *Store) Dir() string { return s.baseDir }

// MetricStats summarizes one column of a recording.
type MetricStats struct {
	Min  float64 `json:"min"`
	Max  float64 `json:"max"`
	Mean float64 `json:"mean"`
}

type RunMetadata struct {
	ID        string                 `json:"id"`
	Lesson    string                 `json:"lesson"`
	Scenario  string                 `json:"scenario"`
	Timestamp time.Time              `json:"timestamp"`
	Dt        float64                `json:"dt"`
	Duration  float64                `json:"duration"`
	Speed     float64                `json:"speed"`
	Frames    uint64                 `json:"frames"`
	Columns   []string               `json:"columns"`
	Metrics   map[string]MetricStats `json:"metrics"`
}

// Series is the tabular form of a run: one row per recorded frame, one
// column per metric, flags as 0/1.
type Series struct {
	Columns []string
	Times   []float64
	Rows    [][]float64
}

// Column returns the values of the named column.
func (s *Series) Column(name string) ([]float64, bool) {
	for j, c := range s.Columns {
		if c == name {
			out := make([]float64, len(s.Rows))
			for i, row := range s.Rows {
				out[i] = row[j]
			}
			return out, true
		}
	}
	return nil, false
}

// SeriesOf flattens recorded frames. Columns follow the first record.
func SeriesOf(records []metrics.Record) *Series {
	s := &Series{}
	if len(records) == 0 {
		return s
	}
	for _, v := range records[0].Values {
		s.Columns = append(s.Columns, v.ID)
	}
	for _, rec := range records {
		row := make([]float64, len(s.Columns))
		for j, id := range s.Columns {
			if v, ok := rec.Get(id); ok {
				row[j] = v.Float()
			}
		}
		s.Times = append(s.Times, rec.Time)
		s.Rows = append(s.Rows, row)
	}
	return s
}

// Stats computes min, max and mean for every column.
func (s *Series) Stats() map[string]MetricStats {
	out := make(map[string]MetricStats, len(s.Columns))
	if len(s.Rows) == 0 {
		return out
	}
	for j, c := range s.Columns {
		st := MetricStats{Min: math.Inf(1), Max: math.Inf(-1)}
		sum := 0.0
		for _, row := range s.Rows {
			v := row[j]
			st.Min = math.Min(st.Min, v)
			st.Max = math.Max(st.Max, v)
			sum += v
		}
		st.Mean = sum / float64(len(s.Rows))
		out[c] = st
	}
	return out
}

// Save writes res under a new run directory and returns its ID. The files
// are written to a hidden staging directory first, so a failed save leaves
// nothing for [Store.List] to find.
func (s *Store) Save(res *engine.Result, cfg engine.RunConfig) (string, error) {
	now := s.now()
	runID := fmt.Sprintf("%s_%s_%d", res.Lesson, res.Scenario, now.UnixMilli())
	if err := s.Init(); err != nil {
		return "", err
	}

	series := SeriesOf(res.Records)
	speed := cfg.Speed
	if speed == 0 {
		speed = 1
	}
	meta := RunMetadata{
		ID:        runID,
		Lesson:    res.Lesson,
		Scenario:  res.Scenario,
		Timestamp: now,
		Dt:        cfg.Dt.Seconds(),
		Duration:  cfg.Duration,
		Speed:     speed,
		Frames:    res.Frames,
		Columns:   series.Columns,
		Metrics:   series.Stats(),
	}

	staging, err := os.MkdirTemp(s.baseDir, ".save-")
	if err != nil {
		return "", err
	}
	if err := writeRun(staging, &meta, series); err != nil {
		os.RemoveAll(staging)
		return "", fmt.Errorf("storage: save %s: %w", runID, err)
	}
	if err := os.Chmod(staging, 0o755); err != nil {
		os.RemoveAll(staging)
		return "", err
	}
	if err := os.Rename(staging, filepath.Join(s.baseDir, runID)); err != nil {
		os.RemoveAll(staging)
		return "", fmt.Errorf("storage: save %s: %w", runID, err)
	}
	return runID, nil
}

func writeRun(dir string, meta *RunMetadata, series *Series) error {
	metaFile, err := os.Create(filepath.Join(dir, "metadata.json"))
	if err != nil {
		return err
	}
	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		metaFile.Close()
		return err
	}
	if err := metaFile.Close(); err != nil {
		return err
	}

	csvFile, err := os.Create(filepath.Join(dir, "metrics.csv"))
	if err != nil {
		return err
	}
	if err := WriteCSV(csvFile, series); err != nil {
		csvFile.Close()
		return err
	}
	return csvFile.Close()
}

// WriteCSV writes a header of "time" plus the column names, then one row
// per frame.
func WriteCSV(w io.Writer, s *Series) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(append([]string{"time"}, s.Columns...)); err != nil {
		return err
	}
	for i, row := range s.Rows {
		rec := make([]string, 0, len(row)+1)
		rec = append(rec, strconv.FormatFloat(s.Times[i], 'f', 6, 64))
		for _, v := range row {
			rec = append(rec, strconv.FormatFloat(v, 'f', 6, 64))
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// List returns every readable recording, oldest first.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}
	sort.Slice(runs, func(i, j int) bool { return runs[i].Timestamp.Before(runs[j].Timestamp) })
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, "metadata.json"))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, runID)
		}
		return nil, err
	}
	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("storage: %s: %w", runID, err)
	}
	return &meta, nil
}

// LoadSeries reads the metrics table of a recording.
func (s *Store) LoadSeries(runID string) (*Series, error) {
	f, err := os.Open(filepath.Join(s.baseDir, runID, "metrics.csv"))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, runID)
		}
		return nil, err
	}
	defer f.Close()
	return ReadCSV(f)
}

// ReadCSV parses the format written by [WriteCSV]. Rows whose time does not
// parse are skipped.
func ReadCSV(r io.Reader) (*Series, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	records, err := cr.ReadAll()
	if err != nil {
		return nil, err
	}
	s := &Series{}
	if len(records) == 0 {
		return s, nil
	}
	s.Columns = append(s.Columns, records[0][1:]...)

	for _, rec := range records[1:] {
		if len(rec) == 0 {
			continue
		}
		t, err := strconv.ParseFloat(rec[0], 64)
		if err != nil {
			continue
		}
		row := make([]float64, len(s.Columns))
		for j := 1; j < len(rec) && j <= len(s.Columns); j++ {
			if v, err := strconv.ParseFloat(rec[j], 64); err == nil {
				row[j-1] = v
			}
		}
		s.Times = append(s.Times, t)
		s.Rows = append(s.Rows, row)
	}
	return s, nil
}
