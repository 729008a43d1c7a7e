package storage

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/san-kum/rkode/internal/dynamo"
)

const (
	metadataFile   = "metadata.json"
	trajectoryFile = "trajectory.csv"
)

// ErrInvalidRunID is returned for ids that would resolve outside the store.
var ErrInvalidRunID = errors.New("storage: invalid run id")

type Store struct {
	baseDir string
	now     func() time.Time
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir, now: time.Now}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

func (s *Store) Dir() string { return s.baseDir }

// RunInfo describes how a run was produced.
type RunInfo struct {
	Model      string             `json:"model"`
	Integrator string             `json:"integrator"`
	T0         float64            `json:"t0"`
	Y0         float64            `json:"y0"`
	Dt         float64            `json:"dt"`
	TF         float64            `json:"tf"`
	Adaptive   bool               `json:"adaptive"`
	Endpoint   string             `json:"endpoint"`
	Tolerance  float64            `json:"tolerance,omitempty"`
	Params     map[string]float64 `json:"params,omitempty"`
}

type RunMetadata struct {
	RunInfo
	ID          string             `json:"id"`
	Timestamp   time.Time          `json:"timestamp"`
	Samples     int                `json:"samples"`
	StepsTaken  int                `json:"steps_taken"`
	Rejected    int                `json:"rejected"`
	Evaluations int                `json:"evaluations"`
	Metrics     map[string]float64 `json:"metrics,omitempty"`
}

// Save writes metadata.json and trajectory.csv under a new run directory
// and returns the run id. Ids carry a random suffix so batch saves within
// one clock tick do not collide. Non-finite metrics are left out of the
// metadata. On failure no run directory remains.
func (s *Store) Save(info RunInfo, result *dynamo.Result, metrics map[string]float64) (string, error) {
	if result == nil {
		return "", fmt.Errorf("save: nil result")
	}

	ts := s.now()
	runID := fmt.Sprintf("%s_%s_%d_%s", info.Model, info.Integrator, ts.UnixNano(), uuid.NewString()[:8])
	runDir := filepath.Join(s.baseDir, runID)

	meta := RunMetadata{
		RunInfo:     info,
		ID:          runID,
		Timestamp:   ts,
		Samples:     result.Len(),
		StepsTaken:  result.StepsTaken,
		Rejected:    result.Rejected,
		Evaluations: result.Evaluations,
		Metrics:     finiteMetrics(metrics),
	}
	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return "", fmt.Errorf("run %s: %w", runID, err)
	}

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}
	if err := writeRun(runDir, append(data, '\n'), result.Trajectory); err != nil {
		os.RemoveAll(runDir)
		return "", err
	}

	return runID, nil
}

func writeRun(runDir string, meta []byte, traj dynamo.Trajectory) error {
	if err := os.WriteFile(filepath.Join(runDir, metadataFile), meta, 0644); err != nil {
		return err
	}
	return writeTrajectory(filepath.Join(runDir, trajectoryFile), traj)
}

func finiteMetrics(metrics map[string]float64) map[string]float64 {
	if metrics == nil {
		return nil
	}
	out := make(map[string]float64, len(metrics))
	for name, v := range metrics {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		out[name] = v
	}
	return out
}

func (s *Store) runPath(runID string) (string, error) {
	if runID == "" || runID == "." || strings.Contains(runID, "..") || strings.ContainsAny(runID, `/\`) {
		return "", fmt.Errorf("%w: %q", ErrInvalidRunID, runID)
	}
	return filepath.Join(s.baseDir, runID), nil
}

func writeTrajectory(path string, traj dynamo.Trajectory) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := WriteCSV(f, traj); err != nil {
		return err
	}
	return f.Close()
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

	sort.Slice(runs, func(i, j int) bool {
		return runs[i].Timestamp.Before(runs[j].Timestamp)
	})
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	dir, err := s.runPath(runID)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(filepath.Join(dir, metadataFile))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("run %s: %w", runID, err)
	}

	return &meta, nil
}

// LoadTrajectory reads the samples of a run. Malformed rows are skipped.
func (s *Store) LoadTrajectory(runID string) (dynamo.Trajectory, error) {
	dir, err := s.runPath(runID)
	if err != nil {
		return dynamo.Trajectory{}, err
	}
	file, err := os.Open(filepath.Join(dir, trajectoryFile))
	if err != nil {
		return dynamo.Trajectory{}, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return dynamo.Trajectory{}, err
	}

	traj := dynamo.Trajectory{T: []float64{}, Y: []float64{}}
	if len(records) < 2 {
		return traj, nil
	}

	for _, record := range records[1:] {
		if len(record) < 2 {
			continue
		}
		t, err := strconv.ParseFloat(record[0], 64)
		if err != nil {
			continue
		}
		y, err := strconv.ParseFloat(record[1], 64)
		if err != nil {
			continue
		}
		traj.T = append(traj.T, t)
		traj.Y = append(traj.Y, y)
	}

	return traj, nil
}

// Delete removes a run directory.
func (s *Store) Delete(runID string) error {
	dir, err := s.runPath(runID)
	if err != nil {
		return err
	}
	if _, err := os.Stat(filepath.Join(dir, metadataFile)); err != nil {
		return err
	}
	return os.RemoveAll(dir)
}
