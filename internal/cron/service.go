package cron

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/adhocore/gronx"

	"github.com/5unnykum4r/grip/internal/bus"
	"github.com/5unnykum4r/grip/internal/coreerrors"
	"github.com/5unnykum4r/grip/internal/engine"
	"github.com/5unnykum4r/grip/internal/metrics"
	"github.com/5unnykum4r/grip/internal/workflow"
)

// Service is a long-running loop ticking once a second: it reloads
// jobs.json from disk, fires jobs whose schedule matches the current
// minute, and ensures at most one execution per job id is in flight at
// any time. An fsnotify watch on the store directory supplements the
// tick with an immediate re-check when jobs.json changes externally
// (e.g. the CLI adding a job), rather than waiting up to a second.
type Service struct {
	storePath    string
	agent        engine.Engine
	msgBus       *bus.MessageBus
	execTimeout  time.Duration
	tickInterval time.Duration
	retryCfg     RetryConfig
	metrics      *metrics.Registry

	mu        sync.Mutex
	jobs      []Job
	executing map[string]bool
	wg        sync.WaitGroup
	runLog    []RunLogEntry

	running  bool
	stopChan chan struct{}
}

// NewService returns a Service persisting jobs at storePath and
// executing them through agent. execTimeout bounds a single job run.
func NewService(storePath string, agent engine.Engine, msgBus *bus.MessageBus, execTimeout time.Duration) *Service {
	return &Service{
		storePath:    storePath,
		agent:        agent,
		msgBus:       msgBus,
		execTimeout:  execTimeout,
		tickInterval: time.Second,
		retryCfg:     DefaultRetryConfig(),
		executing:    make(map[string]bool),
	}
}

// SetRetryConfig overrides the default retry configuration used for job
// execution.
func (s *Service) SetRetryConfig(cfg RetryConfig) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.retryCfg = cfg
}

// SetMetrics wires a metrics registry; nil disables metrics recording.
func (s *Service) SetMetrics(m *metrics.Registry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.metrics = m
}

// Start runs a one-shot legacy-file migration and begins the tick loop.
func (s *Service) Start() error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = true
	s.stopChan = make(chan struct{})
	s.mu.Unlock()

	if err := migrateLegacyFiles(filepath.Dir(s.storePath)); err != nil {
		slog.Warn("cron: legacy migration failed", "error", err)
	}

	if err := s.watchStoreDir(); err != nil {
		slog.Warn("cron: store watch disabled, falling back to tick-only polling", "error", err)
	}

	go s.runLoop()
	slog.Info("cron service started", "store", s.storePath)
	return nil
}

// watchStoreDir watches the store directory for external edits (the CLI
// writing jobs.json, a legacy migration, etc.) and triggers an
// immediate due-job check on change, rather than waiting for the next
// tick. Purely an optimization: the 1s ticker remains the guarantee.
// Reuses workflow.WatchStore's generic directory-watch loop rather than
// hand-rolling a second fsnotify wiring for the same pattern.
func (s *Service) watchStoreDir() error {
	dir := filepath.Dir(s.storePath)
	if err := workflow.WatchStore(dir, s.checkAndRunDueJobs, s.stopChan); err != nil {
		return fmt.Errorf("watching %s: %w", dir, err)
	}
	return nil
}

// Stop signals the tick loop to exit, then waits for every in-flight job
// to finish naturally (no cancellation).
func (s *Service) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	close(s.stopChan)
	s.mu.Unlock()

	s.wg.Wait()
	slog.Info("cron service stopped")
}

func (s *Service) runLoop() {
	ticker := time.NewTicker(s.tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopChan:
			return
		case <-ticker.C:
			s.checkAndRunDueJobs()
		}
	}
}

// checkAndRunDueJobs reloads jobs.json, a missing or corrupt file
// yielding the empty list, then launches every enabled job whose
// schedule matches the current minute and is not already executing.
func (s *Service) checkAndRunDueJobs() {
	jobs := loadJobs(s.storePath)

	s.mu.Lock()
	s.jobs = jobs
	now := time.Now()
	var due []Job
	for _, job := range s.jobs {
		if !job.Enabled {
			continue
		}
		if !matchesMinute(job.Schedule, now) {
			continue
		}
		if ranThisMinute(job.LastRun, now) {
			slog.Debug("cron: job already ran this minute, skipping tick", "id", job.ID)
			continue
		}
		if s.executing[job.ID] {
			slog.Debug("cron: job already executing, skipping tick", "id", job.ID)
			continue
		}
		s.executing[job.ID] = true
		due = append(due, job)
	}
	s.mu.Unlock()

	for _, job := range due {
		s.wg.Add(1)
		go s.runJob(job)
	}
}

func (s *Service) runJob(job Job) {
	defer s.wg.Done()
	defer func() {
		s.mu.Lock()
		delete(s.executing, job.ID)
		s.mu.Unlock()
	}()

	sessionKey := job.ReplyTo
	if sessionKey == "" {
		sessionKey = "cron:" + job.ID
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.execTimeout)
	defer cancel()

	s.mu.Lock()
	cfg := s.retryCfg
	s.mu.Unlock()

	slog.Info("cron executing job", "id", job.ID, "name", job.Name)

	result, attempts, err := ExecuteWithRetry(func() (string, error) {
		res, runErr := s.agent.Run(ctx, job.Prompt, sessionKey, "")
		if runErr != nil {
			return "", fmt.Errorf("%w: %v", coreerrors.ErrEngineFailure, runErr)
		}
		return res.Response, nil
	}, cfg)

	if attempts > 1 {
		slog.Info("cron job retried", "id", job.ID, "attempts", attempts, "success", err == nil)
	}

	now := time.Now().UTC().Format(time.RFC3339)
	s.recordRun(job.ID, err, result)
	s.persistLastRun(job.ID, now)
	s.metrics.ObserveCronJobRun(err == nil)

	if job.ReplyTo == "" || !validReplyTo(job.ReplyTo) {
		return
	}
	if s.msgBus == nil {
		return
	}

	channel, chatID, _ := strings.Cut(job.ReplyTo, ":")
	text := result
	if err != nil {
		text = "Error running scheduled job: " + err.Error()
	}
	s.msgBus.PublishOutbound(bus.OutboundMessage{Channel: channel, ChatID: chatID, Text: text})
}

func validReplyTo(replyTo string) bool {
	channel, chatID, found := strings.Cut(replyTo, ":")
	return found && channel != "" && chatID != ""
}

func (s *Service) persistLastRun(jobID, timestamp string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	jobs := loadJobs(s.storePath)
	for i := range jobs {
		if jobs[i].ID == jobID {
			ts := timestamp
			jobs[i].LastRun = &ts
			break
		}
	}
	if err := saveJobs(s.storePath, jobs); err != nil {
		slog.Error("cron: failed to persist last_run", "id", jobID, "error", err)
	}
}

func (s *Service) recordRun(jobID string, err error, resultText string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry := RunLogEntry{Timestamp: time.Now().UTC().Format(time.RFC3339), JobID: jobID}
	if err != nil {
		entry.Status = "error"
		entry.Error = err.Error()
	} else {
		entry.Status = "ok"
		entry.Summary = TruncateOutput(resultText)
	}

	s.runLog = append(s.runLog, entry)
	if len(s.runLog) > 200 {
		s.runLog = s.runLog[len(s.runLog)-200:]
	}
}

// GetRunLog returns recent run log entries, most recent first, optionally
// filtered to one job id.
func (s *Service) GetRunLog(jobID string, limit int) []RunLogEntry {
	s.mu.Lock()
	defer s.mu.Unlock()

	if limit <= 0 {
		limit = 20
	}
	var result []RunLogEntry
	for i := len(s.runLog) - 1; i >= 0 && len(result) < limit; i-- {
		entry := s.runLog[i]
		if jobID == "" || entry.JobID == jobID {
			result = append(result, entry)
		}
	}
	return result
}

// --- CRUD over the on-disk job list ---

// AddJob creates a new job with a generated id, validating the schedule
// expression and reply_to format.
func (s *Service) AddJob(name, schedule, prompt, replyTo string) (*Job, error) {
	if err := ValidateSchedule(schedule); err != nil {
		return nil, err
	}
	if replyTo != "" && !validReplyTo(replyTo) {
		return nil, fmt.Errorf("invalid reply_to format %q: expected channel:chat_id", replyTo)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	jobs := loadJobs(s.storePath)
	job := Job{
		ID:        generateID(),
		Name:      name,
		Schedule:  schedule,
		Prompt:    prompt,
		Enabled:   true,
		LastRun:   nil,
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
		ReplyTo:   replyTo,
	}
	jobs = append(jobs, job)
	if err := saveJobs(s.storePath, jobs); err != nil {
		return nil, err
	}
	return &job, nil
}

// RemoveJob deletes a job by id. Returns true iff a job was removed.
func (s *Service) RemoveJob(jobID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	jobs := loadJobs(s.storePath)
	filtered := jobs[:0]
	removed := false
	for _, j := range jobs {
		if j.ID == jobID {
			removed = true
			continue
		}
		filtered = append(filtered, j)
	}
	if !removed {
		return false
	}
	_ = saveJobs(s.storePath, filtered)
	return true
}

// ListJobs returns all persisted jobs.
func (s *Service) ListJobs() []Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	return loadJobs(s.storePath)
}

// ValidateSchedule reports an error if expr is not a valid 5-field cron
// expression.
func ValidateSchedule(expr string) error {
	if expr == "" {
		return fmt.Errorf("schedule is required")
	}
	gx := gronx.New()
	if !gx.IsValid(expr) {
		return fmt.Errorf("invalid cron expression: %s", expr)
	}
	return nil
}

// --- Persistence ---

func loadJobs(path string) []Job {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil
	}
	var jobs []Job
	if err := json.Unmarshal(data, &jobs); err != nil {
		slog.Warn("cron: jobs store is corrupt, treating as empty", "path", path, "error", fmt.Errorf("%w: %v", coreerrors.ErrCorrupt, err))
		return nil
	}
	return jobs
}

func saveJobs(path string, jobs []Job) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(jobs, "", "  ")
	if err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
