// Package storage persists run metadata and per-observable results to
// disk, one directory per run, in the same metadata.json + csv layout the
// teacher's trajectory store used.
package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/san-kum/mcintegrate/internal/integrator"
)

// Store persists runs under a base directory, one subdirectory per run.
type Store struct {
	baseDir string
}

// New builds a store rooted at baseDir.
func New(baseDir string) *Store { return &Store{baseDir: baseDir} }

// Init ensures the base directory exists.
func (s *Store) Init() error { return os.MkdirAll(s.baseDir, 0755) }

// RunMetadata is the JSON sidecar describing one run.
type RunMetadata struct {
	ID             string    `json:"id"`
	Distribution   string    `json:"distribution"`
	Timestamp      time.Time `json:"timestamp"`
	Seed           uint64    `json:"seed"`
	NDim           int       `json:"ndim"`
	NMC            int       `json:"nmc"`
	AcceptanceRate float64   `json:"acceptance_rate"`
	Observables    []string  `json:"observables"`
}

// Save writes a run's metadata and observable estimates, returning the
// generated run ID.
func (s *Store) Save(distribution string, seed uint64, ndim, nmc int, result *integrator.Result) (string, error) {
	runID := fmt.Sprintf("%s_%d", distribution, time.Now().Unix())
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:             runID,
		Distribution:   distribution,
		Timestamp:      time.Now(),
		Seed:           seed,
		NDim:           ndim,
		NMC:            nmc,
		AcceptanceRate: result.AcceptanceRate,
		Observables:    result.Names,
	}

	metaPath := filepath.Join(runDir, "metadata.json")
	metaFile, err := os.Create(metaPath)
	if err != nil {
		return "", err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return "", err
	}

	csvPath := filepath.Join(runDir, "observables.csv")
	csvFile, err := os.Create(csvPath)
	if err != nil {
		return "", err
	}
	defer csvFile.Close()

	w := csv.NewWriter(csvFile)
	defer w.Flush()

	if err := w.Write([]string{"observable", "component", "avg", "err"}); err != nil {
		return "", err
	}
	for i, name := range result.Names {
		for j := range result.Avg[i] {
			row := []string{
				name,
				strconv.Itoa(j),
				strconv.FormatFloat(result.Avg[i][j], 'g', -1, 64),
				strconv.FormatFloat(result.Err[i][j], 'g', -1, 64),
			}
			if err := w.Write(row); err != nil {
				return "", err
			}
		}
	}

	return runID, nil
}

// SaveScatterSVG writes a rendered walker scatter plot alongside an
// already-saved run's metadata and observables.
func (s *Store) SaveScatterSVG(runID, svg string) error {
	path := filepath.Join(s.baseDir, runID, "scatter.svg")
	return os.WriteFile(path, []byte(svg), 0644)
}

// List returns every run's metadata found under the base directory.
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
		metaPath := filepath.Join(s.baseDir, entry.Name(), "metadata.json")
		data, err := os.ReadFile(metaPath)
		if err != nil {
			continue
		}
		var meta RunMetadata
		if err := json.Unmarshal(data, &meta); err != nil {
			continue
		}
		runs = append(runs, meta)
	}

	return runs, nil
}

// Load reads back one run's metadata.
func (s *Store) Load(runID string) (*RunMetadata, error) {
	metaPath := filepath.Join(s.baseDir, runID, "metadata.json")
	data, err := os.ReadFile(metaPath)
	if err != nil {
		return nil, err
	}
	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

// LoadObservables reads back a run's observables.csv as parallel
// avg/err slices keyed by observable name and component index.
func (s *Store) LoadObservables(runID string) (map[string][]float64, map[string][]float64, error) {
	csvPath := filepath.Join(s.baseDir, runID, "observables.csv")
	file, err := os.Open(csvPath)
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
		return map[string][]float64{}, map[string][]float64{}, nil
	}

	avg := make(map[string][]float64)
	errv := make(map[string][]float64)
	for _, rec := range records[1:] {
		if len(rec) < 4 {
			continue
		}
		name := rec[0]
		a, err1 := strconv.ParseFloat(rec[2], 64)
		e, err2 := strconv.ParseFloat(rec[3], 64)
		if err1 != nil || err2 != nil {
			continue
		}
		avg[name] = append(avg[name], a)
		errv[name] = append(errv[name], e)
	}
	return avg, errv, nil
}
