package workflow

import "testing"

func TestStore_SaveLoadRoundTrip(t *testing.T) {
	s, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	wf := &WorkflowDef{Name: "pipeline", Steps: []StepDef{stepDef("a")}}
	if err := s.Save(wf); err != nil {
		t.Fatal(err)
	}
	loaded := s.Load("pipeline")
	if loaded == nil || loaded.Name != "pipeline" {
		t.Fatalf("expected round-tripped workflow, got %v", loaded)
	}
}

func TestStore_RejectsUnsafeName(t *testing.T) {
	s, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	for _, bad := range []string{"..", "../escape", "a/b", ".hidden", ""} {
		wf := &WorkflowDef{Name: bad, Steps: []StepDef{stepDef("a")}}
		if err := s.Save(wf); err == nil {
			t.Errorf("expected error saving name %q", bad)
		}
		if s.Load(bad) != nil {
			t.Errorf("expected nil load for name %q", bad)
		}
	}
}

func TestStore_ListLexicographic(t *testing.T) {
	s, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"zebra", "alpha", "mid"} {
		wf := &WorkflowDef{Name: name, Steps: []StepDef{stepDef("a")}}
		if err := s.Save(wf); err != nil {
			t.Fatal(err)
		}
	}
	got := s.List()
	want := []string{"alpha", "mid", "zebra"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}

func TestStore_DeleteMissing(t *testing.T) {
	s, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if s.Delete("nope") {
		t.Error("expected Delete of missing workflow to return false")
	}
}
