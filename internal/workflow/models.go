// Package workflow implements the DAG workflow data model, on-disk
// store, and layer-parallel execution engine.
package workflow

import (
	"fmt"
	"regexp"
	"sort"
	"time"
)

// StepStatus is the lifecycle state of a workflow step.
type StepStatus string

const (
	StepPending   StepStatus = "pending"
	StepRunning   StepStatus = "running"
	StepCompleted StepStatus = "completed"
	StepFailed    StepStatus = "failed"
	StepSkipped   StepStatus = "skipped"
)

var stepNameRE = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// StepDef is the definition of a single workflow step. Prompt may contain
// {{step_name.output}} placeholders resolved at execution time from
// prior step results.
type StepDef struct {
	Name           string   `json:"name"`
	Prompt         string   `json:"prompt"`
	Profile        string   `json:"profile"`
	DependsOn      []string `json:"depends_on"`
	TimeoutSeconds int      `json:"timeout_seconds"`
}

// StepResult is the execution result of a single workflow step.
type StepResult struct {
	Name            string     `json:"-"`
	Status          StepStatus `json:"status"`
	Output          string     `json:"output"`
	Error           string     `json:"error"`
	Iterations      int        `json:"iterations"`
	StartedAt       string     `json:"-"`
	CompletedAt     string     `json:"-"`
	DurationSeconds float64    `json:"duration_seconds"`
}

func (r *StepResult) MarkRunning() {
	r.Status = StepRunning
	r.StartedAt = time.Now().UTC().Format(time.RFC3339Nano)
}

func (r *StepResult) MarkCompleted(output string, iterations int) {
	r.Status = StepCompleted
	r.Output = output
	r.Iterations = iterations
	r.setCompletedTime()
}

func (r *StepResult) MarkFailed(errMsg string) {
	r.Status = StepFailed
	r.Error = errMsg
	r.setCompletedTime()
}

func (r *StepResult) MarkSkipped(reason string) {
	r.Status = StepSkipped
	r.Error = reason
	r.setCompletedTime()
}

func (r *StepResult) setCompletedTime() {
	now := time.Now().UTC()
	r.CompletedAt = now.Format(time.RFC3339Nano)
	if r.StartedAt != "" {
		if start, err := time.Parse(time.RFC3339Nano, r.StartedAt); err == nil {
			r.DurationSeconds = now.Sub(start).Seconds()
		}
	}
}

// WorkflowDef is a named DAG of steps.
type WorkflowDef struct {
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Steps       []StepDef `json:"steps"`
}

func buildGraph(steps []StepDef) (map[string][]string, map[string]int) {
	adj := make(map[string][]string, len(steps))
	inDegree := make(map[string]int, len(steps))
	for _, s := range steps {
		adj[s.Name] = []string{}
		inDegree[s.Name] = 0
	}
	for _, s := range steps {
		for _, dep := range s.DependsOn {
			adj[dep] = append(adj[dep], s.Name)
			inDegree[s.Name]++
		}
	}
	return adj, inDegree
}

// Validate returns a list of human-readable errors; empty means valid.
func (w *WorkflowDef) Validate() []string {
	var errors []string

	if trimEmpty(w.Name) {
		errors = append(errors, "Workflow name cannot be empty")
	}

	if len(w.Steps) == 0 {
		errors = append(errors, "Workflow must have at least one step")
		return errors
	}

	names := make(map[string]int, len(w.Steps))
	for _, s := range w.Steps {
		names[s.Name]++
	}

	for _, s := range w.Steps {
		if s.Name == "" || !stepNameRE.MatchString(s.Name) {
			errors = append(errors, fmt.Sprintf(
				"Step name '%s' is invalid (must be non-empty, only alphanumeric/underscore/hyphen)", s.Name))
		}
		if trimEmpty(s.Prompt) {
			errors = append(errors, fmt.Sprintf("Step '%s' has an empty prompt", s.Name))
		}
		if s.TimeoutSeconds < 1 {
			errors = append(errors, fmt.Sprintf(
				"Step '%s' has invalid timeout (%ds); must be >= 1", s.Name, s.TimeoutSeconds))
		}
	}

	if len(names) != len(w.Steps) {
		errors = append(errors, "Duplicate step names found")
	}

	for _, s := range w.Steps {
		for _, dep := range s.DependsOn {
			if _, ok := names[dep]; !ok {
				errors = append(errors, fmt.Sprintf("Step '%s' depends on unknown step '%s'", s.Name, dep))
			}
		}
	}

	if len(errors) == 0 {
		layers := w.ExecutionOrder()
		total := 0
		for _, layer := range layers {
			total += len(layer)
		}
		if total != len(w.Steps) {
			errors = append(errors, "Circular dependency detected in workflow steps")
		}
	}

	return errors
}

func trimEmpty(s string) bool {
	for _, c := range s {
		if c != ' ' && c != '\t' && c != '\n' && c != '\r' {
			return false
		}
	}
	return true
}

// ExecutionOrder returns steps grouped into parallel execution layers via
// Kahn's algorithm. Each layer is sorted lexicographically so scheduling
// is reproducible across runs.
func (w *WorkflowDef) ExecutionOrder() [][]string {
	adj, inDegree := buildGraph(w.Steps)

	var queue []string
	for name, d := range inDegree {
		if d == 0 {
			queue = append(queue, name)
		}
	}

	var layers [][]string
	for len(queue) > 0 {
		layer := make([]string, len(queue))
		copy(layer, queue)
		sort.Strings(layer)
		layers = append(layers, layer)

		queue = nil
		for _, node := range layer {
			for _, neighbor := range adj[node] {
				inDegree[neighbor]--
				if inDegree[neighbor] == 0 {
					queue = append(queue, neighbor)
				}
			}
		}
	}

	return layers
}

// RunResult is the complete result of one workflow execution.
type RunResult struct {
	WorkflowName          string                 `json:"workflow_name"`
	Status                string                 `json:"status"`
	StepResults           map[string]*StepResult `json:"-"`
	StartedAt             string                 `json:"started_at"`
	CompletedAt           string                 `json:"completed_at"`
	TotalDurationSeconds  float64                `json:"total_duration_seconds"`
}

const resultOutputLimit = 500

func (rr *RunResult) AllCompleted() bool {
	for _, r := range rr.StepResults {
		if r.Status != StepCompleted {
			return false
		}
	}
	return true
}

func (rr *RunResult) HasFailures() bool {
	for _, r := range rr.StepResults {
		if r.Status == StepFailed {
			return true
		}
	}
	return false
}

// StepSummary is the truncated, serializable view of a StepResult used
// in ToDict/JSON output.
type StepSummary struct {
	Status          StepStatus `json:"status"`
	Output          string     `json:"output"`
	Error           string     `json:"error"`
	Iterations      int        `json:"iterations"`
	DurationSeconds float64    `json:"duration_seconds"`
}

// ToDict produces the serializable summary shape, truncating step output
// to resultOutputLimit characters.
func (rr *RunResult) ToDict() map[string]any {
	steps := make(map[string]StepSummary, len(rr.StepResults))
	for name, r := range rr.StepResults {
		output := r.Output
		if len(output) > resultOutputLimit {
			output = output[:resultOutputLimit] + "... [truncated]"
		}
		steps[name] = StepSummary{
			Status:          r.Status,
			Output:          output,
			Error:           r.Error,
			Iterations:      r.Iterations,
			DurationSeconds: r.DurationSeconds,
		}
	}
	return map[string]any{
		"workflow_name":          rr.WorkflowName,
		"status":                 rr.Status,
		"started_at":             rr.StartedAt,
		"completed_at":           rr.CompletedAt,
		"total_duration_seconds": rr.TotalDurationSeconds,
		"steps":                  steps,
	}
}
