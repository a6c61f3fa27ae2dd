// Package cron reloads a JSON job list from disk every tick, fires jobs
// whose 5-field schedule matches the current minute, and publishes
// results to the message bus.
package cron

import (
	"github.com/google/uuid"
)

// Job is a scheduled task. Field names and JSON tags match the on-disk
// schema exactly: id, name, schedule, prompt, enabled, last_run,
// created_at, reply_to.
type Job struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Schedule  string  `json:"schedule"`
	Prompt    string  `json:"prompt"`
	Enabled   bool    `json:"enabled"`
	LastRun   *string `json:"last_run"`
	CreatedAt string  `json:"created_at"`
	ReplyTo   string  `json:"reply_to"`
}

// RunLogEntry records one execution of a job for diagnostics.
type RunLogEntry struct {
	Timestamp string `json:"ts"`
	JobID     string `json:"job_id"`
	Status    string `json:"status"` // "ok" or "error"
	Error     string `json:"error,omitempty"`
	Summary   string `json:"summary,omitempty"`
}

// generateID returns a new job id prefixed "cron_" followed by 8
// characters of a random UUID.
func generateID() string {
	return "cron_" + uuid.NewString()[:8]
}
