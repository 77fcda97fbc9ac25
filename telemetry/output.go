package telemetry

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"

	"github.com/pthm-cable/meadow/config"
)

// FrameSample is one recorded frame interval, the format read back by
// cmd/benchreplay.
type FrameSample struct {
	Frame   int64   `csv:"frame"`
	FrameMS float64 `csv:"frame_ms"`
	CPUMS   float64 `csv:"cpu_ms"`
}

// OutputManager handles run output with CSV logging.
type OutputManager struct {
	dir        string
	perfFile   *os.File
	tiersFile  *os.File
	framesFile *os.File

	// Track if headers have been written
	perfHeaderWritten   bool
	tiersHeaderWritten  bool
	framesHeaderWritten bool
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

	om := &OutputManager{dir: dir}

	f, err := os.Create(filepath.Join(dir, "perf.csv"))
	if err != nil {
		return nil, fmt.Errorf("creating perf.csv: %w", err)
	}
	om.perfFile = f

	f, err = os.Create(filepath.Join(dir, "tiers.csv"))
	if err != nil {
		om.perfFile.Close()
		return nil, fmt.Errorf("creating tiers.csv: %w", err)
	}
	om.tiersFile = f

	f, err = os.Create(filepath.Join(dir, "frames.csv"))
	if err != nil {
		om.perfFile.Close()
		om.tiersFile.Close()
		return nil, fmt.Errorf("creating frames.csv: %w", err)
	}
	om.framesFile = f

	return om, nil
}

// WriteConfig saves the current configuration as YAML.
func (om *OutputManager) WriteConfig(cfg *config.Config) error {
	if om == nil {
		return nil
	}
	return cfg.WriteYAML(filepath.Join(om.dir, "config.yaml"))
}

// WritePerf writes a performance stats record to perf.csv.
func (om *OutputManager) WritePerf(stats PerfStats, frame int64, tier string) error {
	if om == nil {
		return nil
	}

	records := []PerfStatsCSV{stats.ToCSV(frame, tier)}

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

// WriteTierChange writes a tier change record to tiers.csv.
func (om *OutputManager) WriteTierChange(c TierChange) error {
	if om == nil {
		return nil
	}

	records := []TierChange{c}

	if !om.tiersHeaderWritten {
		if err := gocsv.Marshal(records, om.tiersFile); err != nil {
			return fmt.Errorf("writing tier change: %w", err)
		}
		om.tiersHeaderWritten = true
	} else {
		if err := gocsv.MarshalWithoutHeaders(records, om.tiersFile); err != nil {
			return fmt.Errorf("writing tier change: %w", err)
		}
	}

	return nil
}

// WriteFrame writes a frame sample to frames.csv.
func (om *OutputManager) WriteFrame(s FrameSample) error {
	if om == nil {
		return nil
	}

	records := []FrameSample{s}

	if !om.framesHeaderWritten {
		if err := gocsv.Marshal(records, om.framesFile); err != nil {
			return fmt.Errorf("writing frame: %w", err)
		}
		om.framesHeaderWritten = true
	} else {
		if err := gocsv.MarshalWithoutHeaders(records, om.framesFile); err != nil {
			return fmt.Errorf("writing frame: %w", err)
		}
	}

	return nil
}

// ReadFrames loads frame samples written by WriteFrame.
func ReadFrames(path string) ([]FrameSample, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening frames: %w", err)
	}
	defer f.Close()

	var samples []FrameSample
	if err := gocsv.UnmarshalFile(f, &samples); err != nil {
		return nil, fmt.Errorf("parsing frames: %w", err)
	}
	return samples, nil
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
	if om == nil {
		return nil
	}

	var firstErr error
	for _, f := range []*os.File{om.perfFile, om.tiersFile, om.framesFile} {
		if f == nil {
			continue
		}
		if err := f.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
