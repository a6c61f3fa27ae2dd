package heartbeat

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/5unnykum4r/grip/internal/bus"
	"github.com/5unnykum4r/grip/internal/engine"
)

type fakeEngine struct {
	response string
	err      error
	sessionK string
}

func (f *fakeEngine) Run(ctx context.Context, prompt, sessionKey, profile string) (engine.Result, error) {
	f.sessionK = sessionKey
	return engine.Result{Response: f.response}, f.err
}

func writeHeartbeatFile(t *testing.T, dir, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, "HEARTBEAT.md"), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestTick_MissingFileSkips(t *testing.T) {
	dir := t.TempDir()
	fe := &fakeEngine{response: "should not run"}
	svc := NewService(Config{Workspace: dir}, fe, nil)
	svc.tick(context.Background())
	if fe.sessionK != "" {
		t.Error("expected engine not to be called when HEARTBEAT.md is missing")
	}
}

func TestTick_EmptyFileSkips(t *testing.T) {
	dir := t.TempDir()
	writeHeartbeatFile(t, dir, "   \n\n# Title\n")
	fe := &fakeEngine{response: "should not run"}
	svc := NewService(Config{Workspace: dir}, fe, nil)
	svc.tick(context.Background())
	if fe.sessionK != "" {
		t.Error("expected engine not to be called for effectively-empty HEARTBEAT.md")
	}
}

func TestTick_Delivery(t *testing.T) {
	dir := t.TempDir()
	writeHeartbeatFile(t, dir, "Check health")
	fe := &fakeEngine{response: "Heartbeat result"}
	msgBus := bus.New()
	svc := NewService(Config{Workspace: dir, ReplyTo: "telegram:99999"}, fe, msgBus)

	svc.tick(context.Background())

	if fe.sessionK != SessionKey {
		t.Errorf("expected session key %q, got %q", SessionKey, fe.sessionK)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	msg, ok := msgBus.SubscribeOutbound(ctx)
	if !ok {
		t.Fatal("expected exactly one outbound message")
	}
	if msg.Channel != "telegram" || msg.ChatID != "99999" || msg.Text != "Heartbeat result" {
		t.Fatalf("unexpected outbound message: %+v", msg)
	}
}

func TestTick_HeartbeatOKDeliveredLikeAnyOtherResponse(t *testing.T) {
	dir := t.TempDir()
	writeHeartbeatFile(t, dir, "Check health")
	fe := &fakeEngine{response: "HEARTBEAT_OK"}
	msgBus := bus.New()
	svc := NewService(Config{Workspace: dir, ReplyTo: "telegram:99999"}, fe, msgBus)

	svc.tick(context.Background())

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	msg, ok := msgBus.SubscribeOutbound(ctx)
	if !ok {
		t.Fatal("expected the literal engine response to be published unconditionally")
	}
	if msg.Channel != "telegram" || msg.ChatID != "99999" || msg.Text != "HEARTBEAT_OK" {
		t.Fatalf("unexpected outbound message: %+v", msg)
	}
}

func TestTick_NoReplyToNoDelivery(t *testing.T) {
	dir := t.TempDir()
	writeHeartbeatFile(t, dir, "Check health")
	fe := &fakeEngine{response: "Something happened"}
	msgBus := bus.New()
	svc := NewService(Config{Workspace: dir}, fe, msgBus)

	svc.tick(context.Background())

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	if _, ok := msgBus.SubscribeOutbound(ctx); ok {
		t.Fatal("expected no outbound message when reply_to is empty")
	}
}

func TestTick_EmptyResponseNotDelivered(t *testing.T) {
	dir := t.TempDir()
	writeHeartbeatFile(t, dir, "Check health")
	fe := &fakeEngine{response: ""}
	msgBus := bus.New()
	svc := NewService(Config{Workspace: dir, ReplyTo: "telegram:99999"}, fe, msgBus)

	svc.tick(context.Background())

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	if _, ok := msgBus.SubscribeOutbound(ctx); ok {
		t.Fatal("expected no outbound message for an empty engine response")
	}
}
