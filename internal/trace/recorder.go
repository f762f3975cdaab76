// Package trace persists finished deliberation runs as JSON traces and
// human-readable text reports.
package trace

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/dyluth/moot/internal/agent"
	"github.com/dyluth/moot/internal/orchestrator"
)

// Run couples an orchestrator result with session context the orchestrator
// itself does not track: the agent roster and, for benchmark tasks, the
// ground truth and whether the answer matched it.
type Run struct {
	Result      *orchestrator.Result `json:"result"`
	Agents      []agent.Descriptor   `json:"agents,omitempty"`
	GroundTruth string               `json:"ground_truth,omitempty"`
	Correct     *bool                `json:"correct,omitempty"`
}

// Recorder writes traces into one output directory, a JSON/text pair per
// run, named after the session and its start time.
type Recorder struct {
	dir string
}

// NewRecorder returns a recorder writing into dir. The directory is created
// lazily on the first save.
func NewRecorder(dir string) *Recorder {
	return &Recorder{dir: dir}
}

// Save writes the full run as indented JSON and returns the file path.
func (r *Recorder) Save(run *Run) (string, error) {
	if run == nil || run.Result == nil {
		return "", fmt.Errorf("nothing to save: run has no result")
	}

	data, err := json.MarshalIndent(run, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal trace: %w", err)
	}

	path := filepath.Join(r.dir, r.stem(run)+".json")
	if err := r.write(path, data); err != nil {
		return "", err
	}
	return path, nil
}

// SaveTextReport writes the formatted report and returns the file path.
func (r *Recorder) SaveTextReport(run *Run) (string, error) {
	if run == nil || run.Result == nil {
		return "", fmt.Errorf("nothing to save: run has no result")
	}

	path := filepath.Join(r.dir, r.stem(run)+".txt")
	if err := r.write(path, []byte(FormatReport(run))); err != nil {
		return "", err
	}
	return path, nil
}

func (r *Recorder) stem(run *Run) string {
	started := run.Result.StartedAt
	if started.IsZero() {
		started = time.Now().UTC()
	}
	return fmt.Sprintf("%s_%s", run.Result.Session, started.Format("20060102_150405"))
}

func (r *Recorder) write(path string, data []byte) error {
	if err := os.MkdirAll(r.dir, 0755); err != nil {
		return fmt.Errorf("failed to create trace directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write trace: %w", err)
	}
	return nil
}
