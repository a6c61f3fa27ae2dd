package workflow

import (
	"context"
	"fmt"
	"regexp"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/errgroup"

	"github.com/5unnykum4r/grip/internal/engine"
)

// MaxTemplateOutputLength bounds how much of a prior step's output is
// substituted into a later step's prompt.
const MaxTemplateOutputLength = 2000

// templateCacheSize bounds the per-run cache of resolved (truncated,
// sanitized) step outputs. A step's output is resolved once and reused
// by every downstream step that references it in a template, rather
// than re-truncating and re-sanitizing on each reference.
const templateCacheSize = 64

var templatePlaceholderRE = regexp.MustCompile(`\{\{([A-Za-z0-9_-]+)\.output\}\}`)
var anyTemplateRE = regexp.MustCompile(`\{\{.*?\}\}`)

// Recorder observes workflow run outcomes for metrics emission. Engine
// operates correctly with a nil Recorder.
type Recorder interface {
	ObserveWorkflowRun(status string, durationSeconds float64)
}

// Engine executes WorkflowDef values to completion using the layer
// structure from ExecutionOrder.
type Engine struct {
	agent    engine.Engine
	recorder Recorder
}

// NewEngine returns a workflow Engine driven by the given agent engine.
// recorder may be nil.
func NewEngine(agent engine.Engine, recorder Recorder) *Engine {
	return &Engine{agent: agent, recorder: recorder}
}

// Run executes wf to completion, layer by layer, and returns the
// accumulated result.
func (e *Engine) Run(ctx context.Context, wf *WorkflowDef) *RunResult {
	layers := wf.ExecutionOrder()

	result := &RunResult{
		WorkflowName: wf.Name,
		Status:       "pending",
		StepResults:  make(map[string]*StepResult, len(wf.Steps)),
		StartedAt:    time.Now().UTC().Format(time.RFC3339Nano),
	}

	stepByName := make(map[string]StepDef, len(wf.Steps))
	for _, s := range wf.Steps {
		stepByName[s.Name] = s
		result.StepResults[s.Name] = &StepResult{Name: s.Name, Status: StepPending}
	}

	templateCache, err := lru.New[string, string](templateCacheSize)
	if err != nil {
		templateCache = nil
	}

	for _, layer := range layers {
		var mu sync.Mutex
		g, gctx := errgroup.WithContext(ctx)

		for _, name := range layer {
			name := name
			step := stepByName[name]
			stepResult := result.StepResults[name]

			skipReason := ""
			mu.Lock()
			for _, dep := range step.DependsOn {
				depResult := result.StepResults[dep]
				if depResult.Status == StepFailed || depResult.Status == StepSkipped {
					skipReason = fmt.Sprintf("dependency %s did not succeed", dep)
					break
				}
			}
			mu.Unlock()

			if skipReason != "" {
				stepResult.MarkSkipped(skipReason)
				continue
			}

			g.Go(func() error {
				mu.Lock()
				prompt := resolveTemplates(step.Prompt, result.StepResults, templateCache)
				mu.Unlock()

				e.runStep(gctx, wf.Name, step, stepResult, prompt)
				return nil
			})
		}

		_ = g.Wait()
	}

	switch {
	case result.HasFailures():
		result.Status = "failed"
	case result.AllCompleted():
		result.Status = "completed"
	default:
		result.Status = "partial"
	}

	completed := time.Now().UTC()
	result.CompletedAt = completed.Format(time.RFC3339Nano)
	if started, err := time.Parse(time.RFC3339Nano, result.StartedAt); err == nil {
		result.TotalDurationSeconds = completed.Sub(started).Seconds()
	}

	if e.recorder != nil {
		e.recorder.ObserveWorkflowRun(result.Status, result.TotalDurationSeconds)
	}

	return result
}

func (e *Engine) runStep(ctx context.Context, workflowName string, step StepDef, result *StepResult, prompt string) {
	result.MarkRunning()

	stepCtx, cancel := context.WithTimeout(ctx, time.Duration(step.TimeoutSeconds)*time.Second)
	defer cancel()

	sessionKey := fmt.Sprintf("workflow:%s:%s", workflowName, step.Name)

	type runOutcome struct {
		res engine.Result
		err error
	}
	done := make(chan runOutcome, 1)
	go func() {
		res, err := e.agent.Run(stepCtx, prompt, sessionKey, step.Profile)
		done <- runOutcome{res, err}
	}()

	timedOut := fmt.Sprintf("Timed out after %ds", step.TimeoutSeconds)
	select {
	case <-stepCtx.Done():
		result.MarkFailed(timedOut)
	case outcome := <-done:
		if outcome.err != nil {
			if stepCtx.Err() == context.DeadlineExceeded {
				result.MarkFailed(timedOut)
				return
			}
			result.MarkFailed(outcome.err.Error())
			return
		}
		result.MarkCompleted(outcome.res.Response, outcome.res.Iterations)
	}
}

// resolveTemplates substitutes {{step.output}} placeholders referencing
// completed steps. Placeholders for missing or not-yet-completed steps
// are left verbatim. Substituted output has any embedded "{{...}}" text
// replaced with a sentinel first, so the result is never re-scanned for
// placeholders. cache holds the truncated/sanitized form of each
// already-resolved step's output for the lifetime of one Run, since a
// completed step's output never changes and a fan-out DAG commonly
// fans multiple downstream steps off the same dependency; cache may be
// nil, in which case every reference is resolved from scratch.
func resolveTemplates(prompt string, results map[string]*StepResult, cache *lru.Cache[string, string]) string {
	return templatePlaceholderRE.ReplaceAllStringFunc(prompt, func(match string) string {
		sub := templatePlaceholderRE.FindStringSubmatch(match)
		name := sub[1]
		stepResult, ok := results[name]
		if !ok || stepResult.Status != StepCompleted {
			return match
		}

		var output string
		if cache != nil {
			if cached, ok := cache.Get(name); ok {
				output = cached
			} else {
				output = sanitizeStepOutput(stepResult.Output)
				cache.Add(name, output)
			}
		} else {
			output = sanitizeStepOutput(stepResult.Output)
		}

		return fmt.Sprintf("[output from %s]\n%s\n[/output from %s]", name, output, name)
	})
}

// sanitizeStepOutput strips embedded "{{...}}" text from the raw output
// so a substituted output can never introduce a new placeholder for
// re-resolution, then truncates to MaxTemplateOutputLength. Sanitizing
// before truncating ensures a placeholder straddling the truncation
// boundary is still fully stripped rather than left half-intact.
func sanitizeStepOutput(output string) string {
	output = anyTemplateRE.ReplaceAllString(output, "[template-ref-removed]")
	if len(output) > MaxTemplateOutputLength {
		output = output[:MaxTemplateOutputLength] + "[truncated]"
	}
	return output
}
