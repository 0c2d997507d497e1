package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/san-kum/gravsim/internal/config"
	"github.com/san-kum/gravsim/internal/dynamo"
)

var stateHeader = []string{"time", "x1", "y1", "vx1", "vy1", "x2", "y2", "vx2", "vy2"}

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID          string              `json:"id"`
	Name        string              `json:"name"`
	Timestamp   time.Time           `json:"timestamp"`
	G           float64             `json:"g"`
	Dt          float64             `json:"dt"`
	Steps       int                 `json:"steps"`
	StepsTaken  int                 `json:"steps_taken"`
	TrailLength int                 `json:"trail_length"`
	MinDistance float64             `json:"min_distance"`
	Bodies      []config.BodyConfig `json:"bodies"`
	Metrics     map[string]float64  `json:"metrics"`
	EnergyDrift float64             `json:"energy_drift"`
	Errors      []string            `json:"errors,omitempty"`
}

func NewMetadata(cfg *config.Config, result *dynamo.Result) RunMetadata {
	meta := RunMetadata{
		Name:        cfg.Name,
		Timestamp:   time.Now(),
		G:           cfg.G,
		Dt:          cfg.Dt,
		Steps:       cfg.Steps,
		StepsTaken:  result.StepsTaken,
		TrailLength: cfg.TrailLength,
		MinDistance: cfg.MinDistance,
		Bodies:      cfg.Bodies,
		Metrics:     result.Metrics,
		EnergyDrift: result.EnergyDrift,
	}
	for _, err := range result.Errors {
		meta.Errors = append(meta.Errors, err.Error())
	}
	return meta
}

// Save writes metadata.json and states.csv into a new run directory and
// returns the run id.
func (s *Store) Save(cfg *config.Config, result *dynamo.Result) (id string, err error) {
	meta := NewMetadata(cfg, result)
	meta.ID = fmt.Sprintf("%s_%d", runName(meta.Name), meta.Timestamp.UnixNano())
	runDir := filepath.Join(s.baseDir, meta.ID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	if err := writeJSON(filepath.Join(runDir, "metadata.json"), meta); err != nil {
		return "", err
	}

	csvFile, err := os.Create(filepath.Join(runDir, "states.csv"))
	if err != nil {
		return "", err
	}
	defer func() {
		if cerr := csvFile.Close(); cerr != nil && err == nil {
			id, err = "", cerr
		}
	}()

	if err := WriteStatesCSV(csvFile, result.Times, result.States); err != nil {
		return "", err
	}
	return meta.ID, nil
}

// runName reduces a config name to a single path element.
func runName(name string) string {
	name = filepath.Base(filepath.Clean("/" + name))
	if name == "/" || name == "." {
		return "run"
	}
	return name
}

// WriteStatesCSV writes one row per sampled state under the fixed header.
func WriteStatesCSV(out io.Writer, times []float64, states []dynamo.State) error {
	w := csv.NewWriter(out)

	if err := w.Write(stateHeader); err != nil {
		return err
	}

	for i := range states {
		row := make([]string, 0, len(stateHeader))
		row = append(row, strconv.FormatFloat(times[i], 'g', -1, 64))
		for _, val := range states[i] {
			row = append(row, strconv.FormatFloat(val, 'g', -1, 64))
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

func writeJSON(path string, v any) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// List returns all readable runs, oldest first.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}

	sort.SliceStable(runs, func(i, j int) bool {
		return runs[i].Timestamp.Before(runs[j].Timestamp)
	})
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, "metadata.json"))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}

	return &meta, nil
}

func (s *Store) LoadStates(runID string) ([]dynamo.State, []float64, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, "states.csv"))
	if err != nil {
		return nil, nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return nil, nil, err
	}

	if len(records) < 2 {
		return []dynamo.State{}, []float64{}, nil
	}

	times := make([]float64, 0, len(records)-1)
	states := make([]dynamo.State, 0, len(records)-1)

	for i := 1; i < len(records); i++ {
		record := records[i]
		if len(record) != len(stateHeader) {
			return nil, nil, fmt.Errorf("states.csv line %d: expected %d fields, got %d", i+1, len(stateHeader), len(record))
		}

		t, err := strconv.ParseFloat(record[0], 64)
		if err != nil {
			return nil, nil, fmt.Errorf("states.csv line %d: %w", i+1, err)
		}

		state := make(dynamo.State, 0, dynamo.StateDim)
		for _, field := range record[1:] {
			val, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, nil, fmt.Errorf("states.csv line %d: %w", i+1, err)
			}
			state = append(state, val)
		}
		times = append(times, t)
		states = append(states, state)
	}

	return states, times, nil
}
