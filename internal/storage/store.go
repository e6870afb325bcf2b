// Package storage keeps finished runs on disk: metadata as JSON, the
// kinetic energy trace and the final positions as CSV.
package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/san-kum/gravsim/internal/experiment"
	"gonum.org/v1/gonum/spatial/r3"
)

const (
	metadataFile  = "metadata.json"
	energyFile    = "energy.csv"
	positionsFile = "positions.csv"
)

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
	ID           string             `json:"id"`
	Name         string             `json:"name"`
	Timestamp    time.Time          `json:"timestamp"`
	Bodies       int                `json:"bodies"`
	Seed         uint64             `json:"seed"`
	Steps        int                `json:"steps"`
	StepSize     float64            `json:"step_size"`
	Distribution string             `json:"distribution"`
	Force        string             `json:"force"`
	ForceParams  map[string]float64 `json:"force_params"`
	Integrator   string             `json:"integrator"`
	Elapsed      time.Duration      `json:"elapsed_ns"`
	Metrics      map[string]float64 `json:"metrics"`
	// NonFinite names metrics that were NaN or infinite; JSON cannot hold
	// them, so they are left out of Metrics.
	NonFinite []string `json:"non_finite,omitempty"`
}

// Save writes a run directory and returns its id.
func (s *Store) Save(name string, cfg experiment.Config, result *experiment.Result, positions []r3.Vec) (string, error) {
	now := time.Now()
	runID := fmt.Sprintf("%s_%s", name, now.Format("20060102-150405.000"))
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:           runID,
		Name:         name,
		Timestamp:    now,
		Bodies:       cfg.Bodies,
		Seed:         cfg.Seed,
		Steps:        result.Steps,
		StepSize:     cfg.StepSize,
		Distribution: cfg.Distribution,
		Force:        cfg.Force,
		ForceParams: map[string]float64{
			"g": cfg.ForceParams.G, "damping": cfg.ForceParams.Damping,
			"eps": cfg.ForceParams.Eps, "sigma": cfg.ForceParams.Sigma,
			"theta": cfg.ForceParams.Theta,
		},
		Integrator: result.Integrator,
		Elapsed:    result.Elapsed,
		Metrics:    make(map[string]float64, len(result.Metrics)),
	}
	for k, v := range result.Metrics {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			meta.NonFinite = append(meta.NonFinite, k)
			continue
		}
		meta.Metrics[k] = v
	}
	sort.Strings(meta.NonFinite)

	if err := writeJSON(filepath.Join(runDir, metadataFile), meta); err != nil {
		return "", err
	}

	energy := make([][]string, 0, len(result.Kinetic)+1)
	energy = append(energy, []string{"step", "time", "kinetic"})
	for i, ke := range result.Kinetic {
		energy = append(energy, []string{
			strconv.Itoa(i),
			formatFloat(float64(i) * cfg.StepSize),
			formatFloat(ke),
		})
	}
	if err := writeCSV(filepath.Join(runDir, energyFile), energy); err != nil {
		return "", err
	}

	rows := make([][]string, 0, len(positions)+1)
	rows = append(rows, []string{"x", "y", "z"})
	for _, p := range positions {
		rows = append(rows, []string{formatFloat(p.X), formatFloat(p.Y), formatFloat(p.Z)})
	}
	if err := writeCSV(filepath.Join(runDir, positionsFile), rows); err != nil {
		return "", err
	}

	return runID, nil
}

// List returns every readable run, oldest first. Directories without
// valid metadata are skipped.
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

	sort.Slice(runs, func(i, j int) bool { return runs[i].Timestamp.Before(runs[j].Timestamp) })
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}

	return &meta, nil
}

// LoadEnergy returns the times and kinetic energies of a run.
func (s *Store) LoadEnergy(runID string) ([]float64, []float64, error) {
	records, err := readCSV(filepath.Join(s.baseDir, runID, energyFile))
	if err != nil {
		return nil, nil, err
	}

	times := make([]float64, 0, len(records))
	kinetic := make([]float64, 0, len(records))
	for _, rec := range records {
		if len(rec) < 3 {
			continue
		}
		t, err1 := strconv.ParseFloat(rec[1], 64)
		ke, err2 := strconv.ParseFloat(rec[2], 64)
		if err1 != nil || err2 != nil {
			continue
		}
		times = append(times, t)
		kinetic = append(kinetic, ke)
	}
	return times, kinetic, nil
}

func (s *Store) LoadPositions(runID string) ([]r3.Vec, error) {
	records, err := readCSV(filepath.Join(s.baseDir, runID, positionsFile))
	if err != nil {
		return nil, err
	}

	out := make([]r3.Vec, 0, len(records))
	for _, rec := range records {
		if len(rec) < 3 {
			continue
		}
		var v [3]float64
		ok := true
		for i := range v {
			f, err := strconv.ParseFloat(rec[i], 64)
			if err != nil {
				ok = false
				break
			}
			v[i] = f
		}
		if ok {
			out = append(out, r3.Vec{X: v[0], Y: v[1], Z: v[2]})
		}
	}
	return out, nil
}

type ExportData struct {
	RunMetadata
	Times   []float64 `json:"times"`
	Kinetic []float64 `json:"kinetic"`
}

// ExportJSON writes a run's metadata and energy trace to w.
func (s *Store) ExportJSON(w io.Writer, runID string) error {
	meta, err := s.Load(runID)
	if err != nil {
		return err
	}
	times, kinetic, err := s.LoadEnergy(runID)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(ExportData{RunMetadata: *meta, Times: times, Kinetic: kinetic})
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeCSV(path string, rows [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.WriteAll(rows); err != nil {
		return err
	}
	return f.Sync()
}

// readCSV returns the records after the header.
func readCSV(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return [][]string{}, nil
	}
	return records[1:], nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
