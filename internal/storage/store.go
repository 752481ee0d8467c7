package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/san-kum/heatwire/internal/export"
	"github.com/san-kum/heatwire/internal/heat"
	"github.com/san-kum/heatwire/internal/sim"
)

const (
	metadataFile = "metadata.json"
	historyFile  = "history.csv"
)

var ErrRunNotFound = errors.New("storage: run not found")

type Store struct {
	baseDir string
	now     func() time.Time
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir, now: time.Now}
}

func (s *Store) Dir() string { return s.baseDir }

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID        string             `json:"id"`
	Name      string             `json:"name,omitempty"`
	Timestamp time.Time          `json:"timestamp"`
	Params    heat.Params        `json:"params"`
	Fourier   float64            `json:"fourier"`
	Stable    bool               `json:"stable"`
	Steps     int                `json:"steps"`
	Elapsed   time.Duration      `json:"elapsed_ns"`
	Metrics   map[string]float64 `json:"metrics"`
}

func newRunID(now time.Time) string {
	return fmt.Sprintf("heat_%d_%s", now.Unix(), uuid.NewString()[:8])
}

// Save writes history.csv and then metadata.json, so a run only shows up in
// List once its history is complete. A failed save removes the run directory.
func (s *Store) Save(result *sim.Result) (string, error) {
	now := s.now()
	runID := newRunID(now)
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}
	if err := s.writeRun(runDir, runID, now, result); err != nil {
		os.RemoveAll(runDir)
		return "", fmt.Errorf("save run %s: %w", runID, err)
	}
	return runID, nil
}

func (s *Store) writeRun(runDir, runID string, now time.Time, result *sim.Result) error {
	if err := writeHistory(filepath.Join(runDir, historyFile), result); err != nil {
		return err
	}

	meta := RunMetadata{
		ID:        runID,
		Name:      result.Name,
		Timestamp: now,
		Params:    result.Params,
		Fourier:   result.Fourier,
		Stable:    result.Params.Stable(),
		Steps:     result.StepsTaken,
		Elapsed:   result.Elapsed,
		Metrics:   result.Metrics,
	}
	return writeJSON(filepath.Join(runDir, metadataFile), meta)
}

func writeHistory(path string, result *sim.Result) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := export.WriteCSV(f, result.History, result.Times); err != nil {
		return err
	}
	return f.Close()
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return err
	}
	return f.Close()
}

// List returns stored runs, newest first. Directories without readable
// metadata are skipped.
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
		return runs[i].Timestamp.After(runs[j].Timestamp)
	})
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	path, err := s.path(runID, metadataFile)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, notFound(runID, err)
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("run %s: %w", runID, err)
	}
	return &meta, nil
}

func (s *Store) LoadHistory(runID string) (heat.History, []float64, error) {
	path, err := s.path(runID, historyFile)
	if err != nil {
		return nil, nil, err
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, nil, notFound(runID, err)
	}
	defer file.Close()

	history, times, err := export.ReadCSV(file)
	if err != nil {
		return nil, nil, fmt.Errorf("run %s: %w", runID, err)
	}
	return history, times, nil
}

// LoadResult rebuilds the result of a stored run from its two files.
func (s *Store) LoadResult(runID string) (*sim.Result, error) {
	meta, err := s.Load(runID)
	if err != nil {
		return nil, err
	}
	history, times, err := s.LoadHistory(runID)
	if err != nil {
		return nil, err
	}
	return &sim.Result{
		Name:       meta.Name,
		Params:     meta.Params,
		History:    history,
		Times:      times,
		Metrics:    meta.Metrics,
		StepsTaken: meta.Steps,
		Fourier:    meta.Fourier,
		Elapsed:    meta.Elapsed,
	}, nil
}

func (s *Store) path(runID, name string) (string, error) {
	if runID == "" || runID == "." || runID == ".." || strings.ContainsAny(runID, `/\`) {
		return "", fmt.Errorf("%w: %q", ErrRunNotFound, runID)
	}
	return filepath.Join(s.baseDir, runID, name), nil
}

func notFound(runID string, err error) error {
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	return err
}
