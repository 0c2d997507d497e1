package storage

import (
	"encoding/json"
	"io"

	"github.com/san-kum/gravsim/internal/dynamo"
)

type ExportData struct {
	RunMetadata
	Times  []float64   `json:"times"`
	States [][]float64 `json:"states"`
}

// ExportJSON writes a run's metadata together with its sampled states.
func (s *Store) ExportJSON(out io.Writer, runID string) error {
	meta, err := s.Load(runID)
	if err != nil {
		return err
	}
	states, times, err := s.LoadStates(runID)
	if err != nil {
		return err
	}
	return EncodeJSON(out, *meta, times, states)
}

func EncodeJSON(out io.Writer, meta RunMetadata, times []float64, states []dynamo.State) error {
	data := ExportData{
		RunMetadata: meta,
		Times:       times,
		States:      make([][]float64, len(states)),
	}
	for i, st := range states {
		data.States[i] = st
	}

	encoder := json.NewEncoder(out)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

// ExportCSV copies a run's states.csv to out.
func (s *Store) ExportCSV(out io.Writer, runID string) error {
	states, times, err := s.LoadStates(runID)
	if err != nil {
		return err
	}
	return WriteStatesCSV(out, times, states)
}
