package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_ExpandsHomeAndParsesFields(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yamlDoc := `
workspace: "~/grip-workspace"
heartbeat:
  interval_minutes: 15
  reply_to: "telegram:123"
cron:
  exec_timeout_minutes: 5
channels:
  telegram: "tg-token"
`
	if err := os.WriteFile(path, []byte(yamlDoc), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}

	home, _ := os.UserHomeDir()
	want := filepath.Join(home, "grip-workspace")
	if cfg.Workspace != want {
		t.Errorf("workspace = %q, want %q", cfg.Workspace, want)
	}
	if cfg.Heartbeat.IntervalMinutes != 15 {
		t.Errorf("heartbeat interval = %d, want 15", cfg.Heartbeat.IntervalMinutes)
	}
	if cfg.Cron.ExecTimeoutMinutes != 5 {
		t.Errorf("cron timeout = %d, want 5", cfg.Cron.ExecTimeoutMinutes)
	}
	if cfg.Channels.Telegram != "tg-token" {
		t.Errorf("telegram token = %q, want tg-token", cfg.Channels.Telegram)
	}
}

func TestExpandHome(t *testing.T) {
	home, _ := os.UserHomeDir()
	cases := map[string]string{
		"":          "",
		"/abs/path": "/abs/path",
		"~":         home,
		"~/sub/dir": filepath.Join(home, "sub/dir"),
	}
	for in, want := range cases {
		if got := ExpandHome(in); got != want {
			t.Errorf("ExpandHome(%q) = %q, want %q", in, got, want)
		}
	}
}
