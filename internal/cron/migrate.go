package cron

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// legacyEntry is the pre-unification per-job file schema: a single JSON
// object per file, named "<id>.json", using field names "cron" and
// "command" instead of "schedule" and "prompt".
type legacyEntry struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Cron      string `json:"cron"`
	Schedule  string `json:"schedule"`
	Command   string `json:"command"`
	Prompt    string `json:"prompt"`
	Enabled   *bool  `json:"enabled"`
	LastRun   *string `json:"last_run"`
	CreatedAt string `json:"created_at"`
	ReplyTo   string `json:"reply_to"`
}

// migrateLegacyFiles converts any "<id>.json" files found directly in
// dir (other than jobs.json or *.tmp) into entries appended to
// jobs.json, renaming fields to the current schema and prefixing id
// with "cron_" if it isn't already. Entries whose id is already present
// in jobs.json are skipped (and their legacy file removed) so the
// migration is safe to run on every startup.
func migrateLegacyFiles(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	var legacyFiles []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if name == "jobs.json" || strings.HasSuffix(name, ".tmp") || !strings.HasSuffix(name, ".json") {
			continue
		}
		legacyFiles = append(legacyFiles, filepath.Join(dir, name))
	}
	if len(legacyFiles) == 0 {
		return nil
	}

	jobsPath := filepath.Join(dir, "jobs.json")
	jobs := loadJobs(jobsPath)
	existingIDs := make(map[string]bool, len(jobs))
	for _, j := range jobs {
		existingIDs[j.ID] = true
	}

	for _, path := range legacyFiles {
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		var entry legacyEntry
		if err := json.Unmarshal(data, &entry); err != nil {
			continue
		}

		id := entry.ID
		if !strings.HasPrefix(id, "cron_") {
			id = "cron_" + id
		}

		if existingIDs[id] {
			os.Remove(path)
			continue
		}

		schedule := entry.Schedule
		if schedule == "" {
			schedule = entry.Cron
		}
		prompt := entry.Prompt
		if prompt == "" {
			prompt = entry.Command
		}
		enabled := true
		if entry.Enabled != nil {
			enabled = *entry.Enabled
		}
		createdAt := entry.CreatedAt
		if createdAt == "" {
			createdAt = time.Now().UTC().Format(time.RFC3339)
		}

		jobs = append(jobs, Job{
			ID:        id,
			Name:      orDefault(entry.Name, "Unnamed task"),
			Schedule:  schedule,
			Prompt:    prompt,
			Enabled:   enabled,
			LastRun:   entry.LastRun,
			CreatedAt: createdAt,
			ReplyTo:   entry.ReplyTo,
		})
		existingIDs[id] = true
		os.Remove(path)
	}

	return saveJobs(jobsPath, jobs)
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
