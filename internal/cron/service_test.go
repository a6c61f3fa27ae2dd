package cron

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/5unnykum4r/grip/internal/bus"
	"github.com/5unnykum4r/grip/internal/engine"
)

type fakeEngine struct {
	delay   time.Duration
	calls   int32
	respond func() (string, error)
}

func (f *fakeEngine) Run(ctx context.Context, prompt, sessionKey, profile string) (engine.Result, error) {
	atomic.AddInt32(&f.calls, 1)
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return engine.Result{}, ctx.Err()
		}
	}
	if f.respond != nil {
		resp, err := f.respond()
		return engine.Result{Response: resp}, err
	}
	return engine.Result{Response: "ok"}, nil
}

func writeJobsFile(t *testing.T, path string, jobs []Job) {
	t.Helper()
	data, err := json.MarshalIndent(jobs, "", "  ")
	if err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestService_ExternalReload(t *testing.T) {
	dir := t.TempDir()
	storePath := filepath.Join(dir, "jobs.json")
	writeJobsFile(t, storePath, []Job{
		{ID: "cron_abc123", Name: "test", Schedule: "* * * * *", Prompt: "hello", Enabled: true},
	})

	fe := &fakeEngine{}
	svc := NewService(storePath, fe, nil, 5*time.Second)
	svc.checkAndRunDueJobs()
	svc.wg.Wait()

	if atomic.LoadInt32(&fe.calls) != 1 {
		t.Fatalf("expected exactly one engine call, got %d", fe.calls)
	}

	jobs := loadJobs(storePath)
	if len(jobs) != 1 || jobs[0].LastRun == nil {
		t.Fatalf("expected last_run persisted, got %+v", jobs)
	}
}

func TestService_JobLocking(t *testing.T) {
	dir := t.TempDir()
	storePath := filepath.Join(dir, "jobs.json")
	writeJobsFile(t, storePath, []Job{
		{ID: "cron_slow", Name: "slow", Schedule: "* * * * *", Prompt: "hello", Enabled: true},
	})

	fe := &fakeEngine{delay: 500 * time.Millisecond}
	svc := NewService(storePath, fe, nil, 5*time.Second)

	svc.checkAndRunDueJobs() // first tick fires
	svc.checkAndRunDueJobs() // second tick while executing must not fire

	svc.wg.Wait()

	if atomic.LoadInt32(&fe.calls) != 1 {
		t.Fatalf("expected exactly one execution while job in flight, got %d", fe.calls)
	}

	svc.mu.Lock()
	_, stillExecuting := svc.executing["cron_slow"]
	svc.mu.Unlock()
	if stillExecuting {
		t.Fatal("expected job id removed from executing set after completion")
	}
}

func TestService_CorruptJobsFile(t *testing.T) {
	dir := t.TempDir()
	storePath := filepath.Join(dir, "jobs.json")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(storePath, []byte("not json"), 0o644); err != nil {
		t.Fatal(err)
	}

	fe := &fakeEngine{}
	svc := NewService(storePath, fe, nil, 5*time.Second)
	svc.checkAndRunDueJobs() // must not panic
	svc.wg.Wait()

	if atomic.LoadInt32(&fe.calls) != 0 {
		t.Fatalf("expected no engine calls for corrupt file, got %d", fe.calls)
	}
}

func TestService_HeartbeatStyleBusDelivery(t *testing.T) {
	dir := t.TempDir()
	storePath := filepath.Join(dir, "jobs.json")
	writeJobsFile(t, storePath, []Job{
		{ID: "cron_reply", Name: "test", Schedule: "* * * * *", Prompt: "hello", Enabled: true, ReplyTo: "telegram:99999"},
	})

	fe := &fakeEngine{respond: func() (string, error) { return "Heartbeat result", nil }}
	msgBus := bus.New()
	svc := NewService(storePath, fe, msgBus, 5*time.Second)

	svc.checkAndRunDueJobs()
	svc.wg.Wait()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	msg, ok := msgBus.SubscribeOutbound(ctx)
	if !ok {
		t.Fatal("expected one outbound message")
	}
	if msg.Channel != "telegram" || msg.ChatID != "99999" || msg.Text != "Heartbeat result" {
		t.Fatalf("unexpected outbound message: %+v", msg)
	}
}

func TestService_DisabledJobDoesNotFire(t *testing.T) {
	dir := t.TempDir()
	storePath := filepath.Join(dir, "jobs.json")
	writeJobsFile(t, storePath, []Job{
		{ID: "cron_off", Name: "test", Schedule: "* * * * *", Prompt: "hello", Enabled: false},
	})

	fe := &fakeEngine{}
	svc := NewService(storePath, fe, nil, 5*time.Second)
	svc.checkAndRunDueJobs()
	svc.wg.Wait()

	if atomic.LoadInt32(&fe.calls) != 0 {
		t.Fatalf("expected disabled job not to fire, got %d calls", fe.calls)
	}
}
