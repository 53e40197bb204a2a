package storage

import (
	"encoding/json"
	"io"
)

type ExportData struct {
	Meta    RunMetadata          `json:"meta"`
	Times   []float64            `json:"times"`
	Columns map[string][]float64 `json:"columns"`
}

// ExportJSON writes a recording as a single JSON document.
func (s *Store) ExportJSON(w io.Writer, runID string) error {
	meta, err := s.Load(runID)
	if err != nil {
		return err
	}
	series, err := s.LoadSeries(runID)
	if err != nil {
		return err
	}
	data := ExportData{Meta: *meta, Times: series.Times, Columns: make(map[string][]float64, len(series.Columns))}
	for _, c := range series.Columns {
		data.Columns[c], _ = series.Column(c)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}
