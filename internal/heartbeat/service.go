// Package heartbeat runs a periodic background agent turn so the agent
// can check on things (calendar, inbox, alerts) between user-initiated
// conversations. Every non-empty response the engine returns on a
// successful run is published verbatim; the caller decides, via the heartbeat prompt,
// whether there is anything worth saying.
package heartbeat

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/5unnykum4r/grip/internal/bus"
	"github.com/5unnykum4r/grip/internal/coreerrors"
	"github.com/5unnykum4r/grip/internal/engine"
	"github.com/5unnykum4r/grip/internal/metrics"
)

// SessionKey is the fixed session key used for every heartbeat run.
const SessionKey = "heartbeat:periodic"

const defaultPrompt = "Read HEARTBEAT.md if it exists (workspace context). Follow it strictly. " +
	"Do not infer or repeat old tasks from prior chats."

const defaultInterval = 30 * time.Minute

// Config holds resolved runtime configuration for the heartbeat service.
type Config struct {
	Interval  time.Duration
	ReplyTo   string // "" or "channel:chat_id"
	Prompt    string
	Workspace string // HEARTBEAT.md lives at Workspace/HEARTBEAT.md
}

// Service runs the periodic heartbeat loop.
type Service struct {
	cfg     Config
	agent   engine.Engine
	msgBus  *bus.MessageBus
	metrics *metrics.Registry

	mu        sync.Mutex
	running   bool
	stopEvent chan struct{}
}

// NewService returns a heartbeat Service driving agent and, optionally,
// publishing results to msgBus.
func NewService(cfg Config, agent engine.Engine, msgBus *bus.MessageBus) *Service {
	if cfg.Interval <= 0 {
		cfg.Interval = defaultInterval
	}
	if cfg.Prompt == "" {
		cfg.Prompt = defaultPrompt
	}
	return &Service{cfg: cfg, agent: agent, msgBus: msgBus}
}

// Start begins the heartbeat loop in a background goroutine.
func (s *Service) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return
	}
	s.stopEvent = make(chan struct{})
	s.running = true
	go s.loop(s.stopEvent)
	slog.Info("heartbeat service started", "interval", s.cfg.Interval)
}

// Stop sets the stop event, causing the next sleep to return
// immediately, and halts the loop.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return
	}
	close(s.stopEvent)
	s.running = false
	slog.Info("heartbeat service stopped")
}

// IsRunning reports whether the loop is active.
func (s *Service) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// SetMetrics wires a metrics registry; nil disables metrics recording.
func (s *Service) SetMetrics(m *metrics.Registry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.metrics = m
}

func (s *Service) loop(stopEvent chan struct{}) {
	timer := time.NewTimer(s.cfg.Interval)
	defer timer.Stop()

	for {
		select {
		case <-stopEvent:
			return
		case <-timer.C:
			s.tick(context.Background())
			timer.Reset(s.cfg.Interval)
		}
	}
}

func (s *Service) tick(ctx context.Context) {
	content, ok := s.readHeartbeatFile()
	if !ok {
		slog.Debug("heartbeat skipped: HEARTBEAT.md missing or empty")
		s.metrics.ObserveHeartbeatTick("skipped")
		return
	}

	reply, err := s.agent.Run(ctx, content, SessionKey, "")
	if err != nil {
		wrapped := fmt.Errorf("%w: %v", coreerrors.ErrEngineFailure, err)
		slog.Warn("heartbeat agent run failed", "error", wrapped)
		s.publish(fmt.Sprintf("Heartbeat run failed: %s", wrapped))
		s.metrics.ObserveHeartbeatTick("error")
		return
	}

	s.metrics.ObserveHeartbeatTick("ok")
	if reply.Response != "" {
		s.publish(reply.Response)
	}
}

// publish delivers content via the bus, but only if reply_to is set and
// of the form "channel:id".
func (s *Service) publish(content string) {
	if s.msgBus == nil || s.cfg.ReplyTo == "" {
		return
	}
	channel, chatID, found := strings.Cut(s.cfg.ReplyTo, ":")
	if !found || channel == "" || chatID == "" {
		slog.Warn("heartbeat: reply_to is not well-formed, dropping", "reply_to", s.cfg.ReplyTo)
		return
	}
	s.msgBus.PublishOutbound(bus.OutboundMessage{Channel: channel, ChatID: chatID, Text: content})
}

// readHeartbeatFile returns (content, true) if HEARTBEAT.md exists and
// has meaningful text, or ("", false) if it is missing or effectively
// empty.
func (s *Service) readHeartbeatFile() (string, bool) {
	return CheckFile(s.cfg.Workspace)
}

// CheckFile reads workspace/HEARTBEAT.md and reports (content, true) if
// it exists and has meaningful text, or ("", false) otherwise. Exported
// for CLI status inspection without needing a running Service.
func CheckFile(workspace string) (string, bool) {
	if workspace == "" {
		return "", false
	}
	data, err := os.ReadFile(filepath.Join(workspace, "HEARTBEAT.md"))
	if err != nil {
		return "", false
	}
	content := string(data)
	if isEffectivelyEmpty(content) {
		return "", false
	}
	return content, true
}

// isEffectivelyEmpty reports whether content has no meaningful text:
// only whitespace, markdown headers with no following text, HTML
// comments, or empty list items.
func isEffectivelyEmpty(content string) bool {
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "#") {
			if strings.TrimLeft(line, "# ") == "" {
				continue
			}
			return false
		}
		if strings.HasPrefix(line, "<!--") {
			continue
		}
		if (strings.HasPrefix(line, "- ") || strings.HasPrefix(line, "* ")) && strings.TrimSpace(line[2:]) == "" {
			continue
		}
		return false
	}
	return true
}

