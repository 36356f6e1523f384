package telemetry

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"

	"github.com/pthm-cable/sprout/plant"
)

// OutputManager handles structured run output with CSV logging.
type OutputManager struct {
	dir       string
	stepsFile *os.File

	stepsHeaderWritten bool
}

// NewOutputManager creates the output directory and opens steps.csv.
// Returns nil if dir is empty (output disabled).
func NewOutputManager(dir string) (*OutputManager, error) {
	if dir == "" {
		return nil, nil
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}
	f, err := os.Create(filepath.Join(dir, "steps.csv"))
	if err != nil {
		return nil, fmt.Errorf("creating steps.csv: %w", err)
	}
	return &OutputManager{dir: dir, stepsFile: f}, nil
}

// WriteStep appends a step record to steps.csv.
func (om *OutputManager) WriteStep(stats StepStats) error {
	if om == nil {
		return nil
	}
	records := []StepStats{stats}
	if !om.stepsHeaderWritten {
		if err := gocsv.Marshal(records, om.stepsFile); err != nil {
			return fmt.Errorf("writing steps: %w", err)
		}
		om.stepsHeaderWritten = true
		return nil
	}
	if err := gocsv.MarshalWithoutHeaders(records, om.stepsFile); err != nil {
		return fmt.Errorf("writing steps: %w", err)
	}
	return nil
}

// WriteSnapshot writes the final geometry as nodes.csv and segments.csv.
func (om *OutputManager) WriteSnapshot(o *plant.Organism) error {
	if om == nil {
		return nil
	}
	nf, err := os.Create(filepath.Join(om.dir, "nodes.csv"))
	if err != nil {
		return fmt.Errorf("creating nodes.csv: %w", err)
	}
	defer nf.Close()
	if err := gocsv.Marshal(SnapshotNodes(o), nf); err != nil {
		return fmt.Errorf("writing nodes: %w", err)
	}

	sf, err := os.Create(filepath.Join(om.dir, "segments.csv"))
	if err != nil {
		return fmt.Errorf("creating segments.csv: %w", err)
	}
	defer sf.Close()
	if err := gocsv.Marshal(SnapshotSegments(o), sf); err != nil {
		return fmt.Errorf("writing segments: %w", err)
	}
	return nil
}

// Dir returns the output directory path.
func (om *OutputManager) Dir() string {
	if om == nil {
		return ""
	}
	return om.dir
}

// Close flushes and closes the step log.
func (om *OutputManager) Close() error {
	if om == nil || om.stepsFile == nil {
		return nil
	}
	return om.stepsFile.Close()
}
