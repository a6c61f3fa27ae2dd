package workflow

import "testing"

func stepDef(name string, deps ...string) StepDef {
	return StepDef{Name: name, Prompt: "do " + name, Profile: "default", DependsOn: deps, TimeoutSeconds: 60}
}

func TestValidate_Empty(t *testing.T) {
	wf := &WorkflowDef{Name: "w", Steps: nil}
	errs := wf.Validate()
	if len(errs) == 0 {
		t.Fatal("expected error for empty steps")
	}
}

func TestValidate_CircularDependency(t *testing.T) {
	wf := &WorkflowDef{
		Name: "w",
		Steps: []StepDef{
			stepDef("a", "b"),
			stepDef("b", "a"),
		},
	}
	errs := wf.Validate()
	found := false
	for _, e := range errs {
		if e == "Circular dependency detected in workflow steps" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected circular dependency error, got %v", errs)
	}
}

func TestValidate_UnknownDependency(t *testing.T) {
	wf := &WorkflowDef{Name: "w", Steps: []StepDef{stepDef("a", "ghost")}}
	errs := wf.Validate()
	if len(errs) == 0 {
		t.Fatal("expected unknown dependency error")
	}
}

func TestValidate_DuplicateNames(t *testing.T) {
	wf := &WorkflowDef{Name: "w", Steps: []StepDef{stepDef("a"), stepDef("a")}}
	errs := wf.Validate()
	found := false
	for _, e := range errs {
		if e == "Duplicate step names found" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected duplicate names error, got %v", errs)
	}
}

func TestExecutionOrder_ParallelThenJoin(t *testing.T) {
	wf := &WorkflowDef{
		Name: "w",
		Steps: []StepDef{
			stepDef("a"),
			stepDef("b"),
			stepDef("c", "a", "b"),
		},
	}
	if errs := wf.Validate(); len(errs) != 0 {
		t.Fatalf("unexpected validation errors: %v", errs)
	}
	layers := wf.ExecutionOrder()
	if len(layers) != 2 {
		t.Fatalf("expected 2 layers, got %d: %v", len(layers), layers)
	}
	if len(layers[0]) != 2 || layers[0][0] != "a" || layers[0][1] != "b" {
		t.Fatalf("expected layer0 = [a b], got %v", layers[0])
	}
	if len(layers[1]) != 1 || layers[1][0] != "c" {
		t.Fatalf("expected layer1 = [c], got %v", layers[1])
	}
}

func TestRunResult_StatusHelpers(t *testing.T) {
	rr := &RunResult{
		WorkflowName: "w",
		StepResults: map[string]*StepResult{
			"a": {Status: StepCompleted},
			"b": {Status: StepFailed},
		},
	}
	if rr.AllCompleted() {
		t.Error("expected AllCompleted() == false")
	}
	if !rr.HasFailures() {
		t.Error("expected HasFailures() == true")
	}
}

func TestRunResult_ToDict_Truncation(t *testing.T) {
	long := make([]byte, resultOutputLimit+50)
	for i := range long {
		long[i] = 'x'
	}
	rr := &RunResult{
		WorkflowName: "w",
		StepResults: map[string]*StepResult{
			"a": {Status: StepCompleted, Output: string(long)},
		},
	}
	d := rr.ToDict()
	steps := d["steps"].(map[string]StepSummary)
	if len(steps["a"].Output) != resultOutputLimit+len("... [truncated]") {
		t.Fatalf("unexpected truncated length: %d", len(steps["a"].Output))
	}
}
