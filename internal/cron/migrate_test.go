package cron

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func TestMigrateLegacyFiles_ConvertsAndPrefixesID(t *testing.T) {
	dir := t.TempDir()
	legacy := map[string]any{
		"id":      "abc123",
		"name":    "Old task",
		"cron":    "0 9 * * *",
		"command": "do the thing",
	}
	data, _ := json.Marshal(legacy)
	if err := os.WriteFile(filepath.Join(dir, "abc123.json"), data, 0o644); err != nil {
		t.Fatal(err)
	}

	if err := migrateLegacyFiles(dir); err != nil {
		t.Fatal(err)
	}

	jobs := loadJobs(filepath.Join(dir, "jobs.json"))
	if len(jobs) != 1 {
		t.Fatalf("expected 1 migrated job, got %d", len(jobs))
	}
	j := jobs[0]
	if j.ID != "cron_abc123" {
		t.Errorf("expected id prefixed cron_, got %q", j.ID)
	}
	if j.Schedule != "0 9 * * *" || j.Prompt != "do the thing" {
		t.Errorf("expected fields renamed, got schedule=%q prompt=%q", j.Schedule, j.Prompt)
	}
	if _, err := os.Stat(filepath.Join(dir, "abc123.json")); !os.IsNotExist(err) {
		t.Error("expected legacy file removed after migration")
	}
}

func TestMigrateLegacyFiles_SkipsAlreadyMigrated(t *testing.T) {
	dir := t.TempDir()
	jobsPath := filepath.Join(dir, "jobs.json")
	if err := saveJobs(jobsPath, []Job{{ID: "cron_dup", Name: "already here"}}); err != nil {
		t.Fatal(err)
	}

	legacy := map[string]any{"id": "cron_dup", "cron": "* * * * *", "command": "ignored"}
	data, _ := json.Marshal(legacy)
	if err := os.WriteFile(filepath.Join(dir, "cron_dup.json"), data, 0o644); err != nil {
		t.Fatal(err)
	}

	if err := migrateLegacyFiles(dir); err != nil {
		t.Fatal(err)
	}

	jobs := loadJobs(jobsPath)
	if len(jobs) != 1 {
		t.Fatalf("expected migration not to duplicate existing entry, got %d jobs", len(jobs))
	}
	if jobs[0].Name != "already here" {
		t.Errorf("expected existing entry preserved, got %+v", jobs[0])
	}
}

func TestMigrateLegacyFiles_NoLegacyFiles(t *testing.T) {
	dir := t.TempDir()
	if err := migrateLegacyFiles(dir); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(filepath.Join(dir, "jobs.json")); !os.IsNotExist(err) {
		t.Error("expected no jobs.json created when there is nothing to migrate")
	}
}
