package telemetry

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"

	"github.com/pthm-cable/metaballs/config"
)

// OutputManager writes run output: perf.csv, the effective config and still frames.
type OutputManager struct {
	dir      string
	perfFile *os.File

	perfHeaderWritten bool
	stills            int
}

// NewOutputManager creates a new output manager and initializes the output directory.
// Returns nil if dir is empty (output disabled).
func NewOutputManager(dir string) (*OutputManager, error) {
	if dir == "" {
		return nil, nil
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	f, err := os.Create(filepath.Join(dir, "perf.csv"))
	if err != nil {
		return nil, fmt.Errorf("creating perf.csv: %w", err)
	}

	return &OutputManager{dir: dir, perfFile: f}, nil
}

// WriteConfig saves the current configuration as YAML.
func (om *OutputManager) WriteConfig(cfg *config.Config) error {
	if om == nil {
		return nil
	}
	return cfg.WriteYAML(filepath.Join(om.dir, "config.yaml"))
}

// WritePerf writes a performance stats record to perf.csv.
func (om *OutputManager) WritePerf(stats PerfStats, info FrameInfo) error {
	if om == nil {
		return nil
	}

	records := []PerfStatsCSV{stats.ToCSV(info)}

	if !om.perfHeaderWritten {
		if err := gocsv.Marshal(records, om.perfFile); err != nil {
			return fmt.Errorf("writing perf: %w", err)
		}
		om.perfHeaderWritten = true
	} else {
		if err := gocsv.MarshalWithoutHeaders(records, om.perfFile); err != nil {
			return fmt.Errorf("writing perf: %w", err)
		}
	}

	return nil
}

// WriteStill saves PNG bytes as still_NNNN.png and returns the path.
func (om *OutputManager) WriteStill(png []byte) (string, error) {
	if om == nil {
		return "", nil
	}
	om.stills++
	path := filepath.Join(om.dir, fmt.Sprintf("still_%04d.png", om.stills))
	if err := os.WriteFile(path, png, 0644); err != nil {
		return "", fmt.Errorf("writing still frame: %w", err)
	}
	return path, nil
}

// Dir returns the output directory path.
func (om *OutputManager) Dir() string {
	if om == nil {
		return ""
	}
	return om.dir
}

// Close flushes and closes all output files.
func (om *OutputManager) Close() error {
	if om == nil || om.perfFile == nil {
		return nil
	}
	return om.perfFile.Close()
}
