package metrics

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"
)

// RunMetrics captures the figures of one summarization run for export
type RunMetrics struct {
	StartTime          time.Time `json:"start_time"`
	EndTime            time.Time `json:"end_time"`
	RecordsRead        int       `json:"records_read"`
	RecordsSkipped     int       `json:"records_skipped"`
	DiscoveryKeys      int       `json:"discovery_keys"`
	PathologicalChains int       `json:"pathological_chains"`
	SynthesizedRoots   int       `json:"synthesized_roots"`
	BuildPassMs        int64     `json:"build_pass_ms"`
	ResolveMs          int64     `json:"resolve_ms"`
	SummarizePassMs    int64     `json:"summarize_pass_ms"`
}

// Tracker holds and manages run metrics across the pipeline phases
type Tracker struct {
	mu   sync.Mutex
	data RunMetrics
}

// NewTracker creates a new metrics tracker
func NewTracker() *Tracker {
	return &Tracker{
		data: RunMetrics{
			StartTime: time.Now(),
		},
	}
}

// AddRecordsRead adds to the parsed-record counter
func (t *Tracker) AddRecordsRead(n int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.data.RecordsRead += n
}

// AddRecordsSkipped adds to the malformed-line counter
func (t *Tracker) AddRecordsSkipped(n int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.data.RecordsSkipped += n
}

// SetResolverFigures records the seed resolver's final counters
func (t *Tracker) SetResolverFigures(keys, pathological, synthesized int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.data.DiscoveryKeys = keys
	t.data.PathologicalChains = pathological
	t.data.SynthesizedRoots = synthesized
}

// SetBuildDuration records the duration of the parent-map build pass
func (t *Tracker) SetBuildDuration(d time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.data.BuildPassMs = d.Milliseconds()
}

// SetResolveDuration records the duration of the in-memory resolve phase
func (t *Tracker) SetResolveDuration(d time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.data.ResolveMs = d.Milliseconds()
}

// SetSummarizeDuration records the duration of the accumulation pass
func (t *Tracker) SetSummarizeDuration(d time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.data.SummarizePassMs = d.Milliseconds()
}

// GetSnapshot returns a copy of current metrics
func (t *Tracker) GetSnapshot() RunMetrics {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.data
}

// WriteToFile exports metrics to a JSON file
func (t *Tracker) WriteToFile(path string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.data.EndTime = time.Now()

	jsonData, err := json.MarshalIndent(t.data, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal metrics: %w", err)
	}

	if err := os.WriteFile(path, jsonData, 0644); err != nil {
		return fmt.Errorf("failed to write metrics file: %w", err)
	}

	return nil
}

// LogProgress renders current metrics as a single log line
func (t *Tracker) LogProgress() string {
	t.mu.Lock()
	defer t.mu.Unlock()

	return fmt.Sprintf("Records: %d read, %d skipped | Keys: %d tracked | Chains: %d pathological, %d synthesized roots",
		t.data.RecordsRead,
		t.data.RecordsSkipped,
		t.data.DiscoveryKeys,
		t.data.PathologicalChains,
		t.data.SynthesizedRoots,
	)
}
