package tools

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/5unnykum4r/grip/internal/workflow"
)

const maxWorkflowSteps = 50

// WorkflowTool lets the agent manage multi-step workflow definitions:
// create, list, show, edit, delete. Running a workflow is a separate
// concern handled by workflow.Engine, not this tool.
type WorkflowTool struct {
	store *workflow.Store
}

// NewWorkflowTool returns a tool bound to the given workflow store.
func NewWorkflowTool(store *workflow.Store) *WorkflowTool {
	return &WorkflowTool{store: store}
}

func (t *WorkflowTool) Name() string { return "workflow" }

func (t *WorkflowTool) Description() string {
	return "Create, list, inspect, edit, and delete DAG-based multi-step workflows. " +
		"Each workflow is a sequence of agent steps that can depend on each other " +
		"and reference prior step outputs via {{step_name.output}} templates."
}

func (t *WorkflowTool) Parameters() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"action": map[string]interface{}{
				"type":        "string",
				"enum":        []string{"create", "list", "show", "edit", "delete"},
				"description": "Action to perform.",
			},
			"workflow_name": map[string]interface{}{
				"type": "string",
				"description": "Name of the workflow (for create/show/edit/delete). " +
					"Must be a safe single path component (no path separators, no leading dot).",
			},
			"description": map[string]interface{}{
				"type":        "string",
				"description": "Workflow description (for create/edit).",
			},
			"steps": map[string]interface{}{
				"type": "array",
				"description": "Step definitions (for create/edit). Each step is an object with: " +
					"name (required), prompt (required), profile (default: 'default'), " +
					"depends_on (list of step names), timeout_seconds (default: 300).",
				"items": map[string]interface{}{
					"type": "object",
					"properties": map[string]interface{}{
						"name":            map[string]interface{}{"type": "string"},
						"prompt":          map[string]interface{}{"type": "string"},
						"profile":         map[string]interface{}{"type": "string"},
						"depends_on":      map[string]interface{}{"type": "array", "items": map[string]interface{}{"type": "string"}},
						"timeout_seconds": map[string]interface{}{"type": "integer"},
					},
					"required": []string{"name", "prompt"},
				},
			},
		},
		"required": []string{"action"},
	}
}

func (t *WorkflowTool) Execute(ctx context.Context, args map[string]interface{}) *Result {
	action, _ := args["action"].(string)
	switch action {
	case "create":
		return t.create(args)
	case "list":
		return t.list()
	case "show":
		return t.show(args)
	case "edit":
		return t.edit(args)
	case "delete":
		return t.delete(args)
	default:
		return ErrorResult(fmt.Sprintf("unknown action %q. Use: create, list, show, edit, delete.", action))
	}
}

func parseSteps(raw []interface{}) ([]workflow.StepDef, error) {
	steps := make([]workflow.StepDef, 0, len(raw))
	for i, item := range raw {
		m, ok := item.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("step %d is not an object", i)
		}
		name, _ := m["name"].(string)
		prompt, _ := m["prompt"].(string)
		if name == "" || prompt == "" {
			return nil, fmt.Errorf("step %d requires name and prompt", i)
		}
		profile, _ := m["profile"].(string)
		if profile == "" {
			profile = "default"
		}
		timeout := 300
		if tv, ok := m["timeout_seconds"].(float64); ok && tv > 0 {
			timeout = int(tv)
		}
		var dependsOn []string
		if rawDeps, ok := m["depends_on"].([]interface{}); ok {
			for _, d := range rawDeps {
				if s, ok := d.(string); ok {
					dependsOn = append(dependsOn, s)
				}
			}
		}
		steps = append(steps, workflow.StepDef{
			Name:           name,
			Prompt:         prompt,
			Profile:        profile,
			DependsOn:      dependsOn,
			TimeoutSeconds: timeout,
		})
	}
	return steps, nil
}

func rawSteps(args map[string]interface{}) ([]interface{}, bool) {
	raw, ok := args["steps"].([]interface{})
	return raw, ok && len(raw) > 0
}

func (t *WorkflowTool) create(args map[string]interface{}) *Result {
	name := strings.TrimSpace(stringArg(args, "workflow_name"))
	if name == "" {
		return ErrorResult("workflow_name is required for create action")
	}

	raw, ok := rawSteps(args)
	if !ok {
		return ErrorResult("steps array is required for create action (at least one step)")
	}
	if len(raw) > maxWorkflowSteps {
		return ErrorResult(fmt.Sprintf("workflow exceeds maximum of %d steps", maxWorkflowSteps))
	}

	if existing := t.store.Load(name); existing != nil {
		return ErrorResult(fmt.Sprintf(
			"workflow %q already exists. Use action 'edit' to update it, or 'delete' first.", name))
	}

	steps, err := parseSteps(raw)
	if err != nil {
		return ErrorResult(fmt.Sprintf("invalid step definition: %v", err))
	}

	wf := &workflow.WorkflowDef{
		Name:        name,
		Description: stringArg(args, "description"),
		Steps:       steps,
	}
	if errs := wf.Validate(); len(errs) > 0 {
		return ErrorResult("workflow validation failed:\n" + joinErrors(errs))
	}

	if err := t.store.Save(wf); err != nil {
		return ErrorResult(fmt.Sprintf("could not save workflow: %v", err))
	}
	layers := wf.ExecutionOrder()
	slog.Info("agent created workflow", "name", name, "steps", len(steps))

	return NewResult(fmt.Sprintf(
		"Workflow %q created successfully.\n  Steps: %d\n  Execution layers: %d",
		name, len(steps), len(layers)))
}

func (t *WorkflowTool) list() *Result {
	names := t.store.List()
	if len(names) == 0 {
		return NewResult("No workflows found.")
	}

	var sb strings.Builder
	sb.WriteString("## Saved Workflows\n\n")
	for _, name := range names {
		wf := t.store.Load(name)
		if wf == nil {
			fmt.Fprintf(&sb, "- **%s**: (failed to load)\n", name)
			continue
		}
		layers := wf.ExecutionOrder()
		fmt.Fprintf(&sb, "- **%s**: %d steps, %d layers", name, len(wf.Steps), len(layers))
		if wf.Description != "" {
			fmt.Fprintf(&sb, " — %s", wf.Description)
		}
		sb.WriteByte('\n')
	}
	return NewResult(sb.String())
}

func (t *WorkflowTool) show(args map[string]interface{}) *Result {
	name := strings.TrimSpace(stringArg(args, "workflow_name"))
	if name == "" {
		return ErrorResult("workflow_name is required for show action")
	}
	wf := t.store.Load(name)
	if wf == nil {
		return ErrorResult(fmt.Sprintf("workflow %q not found", name))
	}

	layers := wf.ExecutionOrder()
	errs := wf.Validate()

	var sb strings.Builder
	fmt.Fprintf(&sb, "## Workflow: %s\n", wf.Name)
	desc := wf.Description
	if desc == "" {
		desc = "(none)"
	}
	fmt.Fprintf(&sb, "Description: %s\n", desc)
	fmt.Fprintf(&sb, "Steps: %d\n", len(wf.Steps))
	fmt.Fprintf(&sb, "Execution layers: %d\n\n### Steps\n", len(layers))

	for _, step := range wf.Steps {
		deps := "(none)"
		if len(step.DependsOn) > 0 {
			deps = strings.Join(step.DependsOn, ", ")
		}
		prompt := step.Prompt
		suffix := ""
		if len(prompt) > 200 {
			prompt = prompt[:200]
			suffix = "..."
		}
		fmt.Fprintf(&sb, "- **%s** [profile: %s, timeout: %ds]\n  Dependencies: %s\n  Prompt: %s%s\n",
			step.Name, step.Profile, step.TimeoutSeconds, deps, prompt, suffix)
	}

	sb.WriteString("\n### Execution Order\n")
	for i, layer := range layers {
		fmt.Fprintf(&sb, "  Layer %d: %s\n", i+1, strings.Join(layer, ", "))
	}

	if len(errs) > 0 {
		sb.WriteString("\n### Validation Errors\n")
		for _, e := range errs {
			fmt.Fprintf(&sb, "  - %s\n", e)
		}
	}

	return NewResult(sb.String())
}

func (t *WorkflowTool) edit(args map[string]interface{}) *Result {
	name := strings.TrimSpace(stringArg(args, "workflow_name"))
	if name == "" {
		return ErrorResult("workflow_name is required for edit action")
	}

	existing := t.store.Load(name)
	if existing == nil {
		return ErrorResult(fmt.Sprintf("workflow %q not found. Use action 'create' to create a new workflow.", name))
	}

	raw, ok := rawSteps(args)
	if !ok {
		return ErrorResult("steps array is required for edit action")
	}
	if len(raw) > maxWorkflowSteps {
		return ErrorResult(fmt.Sprintf("workflow exceeds maximum of %d steps", maxWorkflowSteps))
	}

	steps, err := parseSteps(raw)
	if err != nil {
		return ErrorResult(fmt.Sprintf("invalid step definition: %v", err))
	}

	description := existing.Description
	if d, ok := args["description"].(string); ok {
		description = d
	}

	wf := &workflow.WorkflowDef{Name: name, Description: description, Steps: steps}
	if errs := wf.Validate(); len(errs) > 0 {
		return ErrorResult("workflow validation failed:\n" + joinErrors(errs))
	}

	if err := t.store.Save(wf); err != nil {
		return ErrorResult(fmt.Sprintf("could not save workflow: %v", err))
	}
	layers := wf.ExecutionOrder()
	slog.Info("agent updated workflow", "name", name, "steps", len(steps))

	return NewResult(fmt.Sprintf(
		"Workflow %q updated successfully.\n  Steps: %d\n  Execution layers: %d",
		name, len(steps), len(layers)))
}

func (t *WorkflowTool) delete(args map[string]interface{}) *Result {
	name := strings.TrimSpace(stringArg(args, "workflow_name"))
	if name == "" {
		return ErrorResult("workflow_name is required for delete action")
	}
	if t.store.Delete(name) {
		slog.Info("agent deleted workflow", "name", name)
		return NewResult(fmt.Sprintf("Workflow %q deleted.", name))
	}
	return ErrorResult(fmt.Sprintf("workflow %q not found", name))
}

func stringArg(args map[string]interface{}, key string) string {
	s, _ := args[key].(string)
	return s
}

func joinErrors(errs []string) string {
	lines := make([]string, len(errs))
	for i, e := range errs {
		lines[i] = "  - " + e
	}
	return strings.Join(lines, "\n")
}
