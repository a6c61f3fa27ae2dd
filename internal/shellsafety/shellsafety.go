// Package shellsafety implements a multi-layer deny-list filter for shell
// commands. It is a structural best-effort filter, not a sandbox: layer 1
// blocks always-dangerous base commands, layer 2 parses rm flags/targets,
// layer 3 recurses into interpreter -c / eval escapes, and layer 4 falls
// back to regexes for patterns that resist structural parsing.
package shellsafety

import (
	"regexp"
	"strings"

	"github.com/mattn/go-shellwords"
)

const maxCheckDepth = 3

var blockedCommands = map[string]bool{
	"mkfs": true, "mkfs.ext2": true, "mkfs.ext3": true, "mkfs.ext4": true,
	"mkfs.xfs": true, "mkfs.btrfs": true, "mkfs.vfat": true, "mkfs.ntfs": true,
	"shutdown": true, "reboot": true, "halt": true, "poweroff": true,
}

var blockedSystemctlActions = map[string]bool{
	"poweroff": true, "reboot": true, "halt": true,
}

var rmLongFlagMap = map[string]string{
	"--recursive":        "r",
	"--force":             "f",
	"--interactive":       "i",
	"--dir":               "d",
	"--verbose":           "v",
	"--no-preserve-root":  "!",
}

var dangerousRMTargets = []string{
	"/", "/*",
	"~", "$HOME",
	"/home", "/etc", "/var", "/usr", "/bin", "/sbin",
	"/lib", "/boot", "/root", "/opt", "/srv",
}

var interpreterCommands = map[string]bool{
	"python": true, "python3": true, "python3.10": true, "python3.11": true,
	"python3.12": true, "python3.13": true,
	"bash": true, "sh": true, "zsh": true, "dash": true, "ksh": true, "fish": true,
	"perl": true, "ruby": true, "node": true, "lua": true,
}

var regexDeny = compileAll(
	`:\(\)\s*\{\s*:\|:\s*&\s*\}\s*;`,
	`\bdd\s+if=`,
	`>\s*/dev/sd[a-z]`,
	`>\s*/dev/nvme`,
	`>\s*/dev/disk`,
	`\bchmod\s+.*\s+/\s*$`,
	`\bchown\s+.*\s+/\s*$`,
	`\bchattr\s+\+i\s+/`,
	`\bcurl\b.*\|\s*(ba)?sh\b`,
	`\bwget\b.*\|\s*(ba)?sh\b`,
	`\bcurl\b.*\|\s*python`,
	`\bwget\b.*\|\s*python`,
	`\bcurl\b.*\|\s*perl`,
	`\bcat\s+.*\.ssh/id_`,
	`\bcat\s+.*\.env\b`,
	`\bcat\s+.*/\.aws/credentials`,
	`\bcat\s+.*/\.netrc`,
	`\bcat\s+.*\.(bash_|zsh_)?history`,
	`\bcurl\b.*-[a-z]*d\s*@.*\.(env|pem|key)\b`,
	`\bscp\s+.*\.(env|pem|key)\s`,
)

var interpreterCodePatterns = compileAll(
	`rm\s.*-.*r.*-.*f.*\s+/`,
	`rm\s+-rf\s`,
	`rm\s+--recursive`,
	`\bshutdown\b`,
	`\breboot\b`,
	`\bhalt\b`,
	`\bmkfs\b`,
	`\.ssh/id_`,
	`\.env\b`,
	`/\.aws/credentials`,
	`\.(bash_|zsh_)?history`,
)

func compileAll(patterns ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(patterns))
	for i, p := range patterns {
		out[i] = regexp.MustCompile("(?i)" + p)
	}
	return out
}

// splitShellCommands splits on ; && || while respecting single/double
// quoting, so separators embedded in quoted strings don't split commands.
func splitShellCommands(command string) []string {
	var parts []string
	var current strings.Builder
	inSingle, inDouble := false, false
	runes := []rune(command)
	n := len(runes)

	flush := func() {
		part := strings.TrimSpace(current.String())
		if part != "" {
			parts = append(parts, part)
		}
		current.Reset()
	}

	for i := 0; i < n; i++ {
		ch := runes[i]

		if ch == '\\' && i+1 < n && !inSingle {
			current.WriteRune(ch)
			current.WriteRune(runes[i+1])
			i++
			continue
		}

		if ch == '\'' && !inDouble {
			inSingle = !inSingle
			current.WriteRune(ch)
			continue
		}

		if ch == '"' && !inSingle {
			inDouble = !inDouble
			current.WriteRune(ch)
			continue
		}

		if !inSingle && !inDouble {
			if i+1 < n && runes[i] == '&' && runes[i+1] == '&' {
				flush()
				i++
				continue
			}
			if i+1 < n && runes[i] == '|' && runes[i+1] == '|' {
				flush()
				i++
				continue
			}
			if ch == ';' {
				flush()
				continue
			}
		}

		current.WriteRune(ch)
	}

	flush()
	return parts
}

func tokenize(command string) []string {
	tokens, err := shellwords.Parse(command)
	if err != nil || tokens == nil {
		return strings.Fields(command)
	}
	return tokens
}

func stripSudo(tokens []string) []string {
	if len(tokens) == 0 || tokens[0] != "sudo" {
		return tokens
	}
	i := 1
	for i < len(tokens) && strings.HasPrefix(tokens[i], "-") {
		i++
		if i < len(tokens) {
			i++
		}
	}
	if i < len(tokens) {
		return tokens[i:]
	}
	return tokens
}

func isAllDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

func extractRMFlags(tokens []string) map[string]bool {
	flags := map[string]bool{}
	for _, token := range tokens[1:] {
		if token == "--" {
			break
		}
		if strings.HasPrefix(token, "--") {
			if mapped, ok := rmLongFlagMap[token]; ok {
				flags[mapped] = true
			}
		} else if strings.HasPrefix(token, "-") && len(token) > 1 && !isAllDigits(token[1:]) {
			for _, ch := range token[1:] {
				flags[string(ch)] = true
			}
		}
	}
	return flags
}

func extractRMTargets(tokens []string) []string {
	var targets []string
	pastFlags := false
	for _, token := range tokens[1:] {
		if token == "--" {
			pastFlags = true
			continue
		}
		if pastFlags || !strings.HasPrefix(token, "-") {
			targets = append(targets, token)
		}
	}
	return targets
}

func checkRM(tokens []string) string {
	flags := extractRMFlags(tokens)
	targets := extractRMTargets(tokens)

	if flags["!"] && flags["r"] {
		return "rm with --no-preserve-root and recursive flag"
	}

	hasRecursive := flags["r"]
	hasForce := flags["f"]

	for _, target := range targets {
		normalized := strings.TrimRight(target, "/")
		if normalized == "" {
			normalized = "/"
		}
		if hasRecursive && normalized == "/" {
			return "rm -r on root filesystem"
		}
		if hasRecursive && hasForce {
			for _, dangerous := range dangerousRMTargets {
				if normalized == dangerous || normalized == strings.TrimRight(dangerous, "/") {
					return "rm -rf on critical path: " + target
				}
			}
		}
	}
	return ""
}

func checkInterpreter(tokens []string, baseCmd string, depth int) string {
	var codeArg string
	found := false
	for i, token := range tokens {
		if token == "-c" && i+1 < len(tokens) {
			codeArg = tokens[i+1]
			found = true
			break
		}
		if strings.HasPrefix(token, "-c") && len(token) > 2 {
			codeArg = token[2:]
			found = true
			break
		}
	}

	if baseCmd == "eval" && len(tokens) > 1 && !found {
		codeArg = strings.Join(tokens[1:], " ")
		found = true
	}

	if !found {
		return ""
	}

	if danger := isDangerous(codeArg, depth+1); danger != "" {
		return "Interpreter escape via " + baseCmd + " -c: " + danger
	}

	for _, pattern := range interpreterCodePatterns {
		if pattern.MatchString(codeArg) {
			return "Interpreter escape via " + baseCmd + " -c: code contains '" + pattern.String() + "'"
		}
	}

	for _, pattern := range regexDeny {
		if pattern.MatchString(codeArg) {
			return "Interpreter escape via " + baseCmd + " -c: " + pattern.String()
		}
	}

	return ""
}

func isDangerous(command string, depth int) string {
	if depth >= maxCheckDepth {
		return ""
	}

	for _, subcmd := range splitShellCommands(command) {
		tokens := tokenize(subcmd)
		if len(tokens) == 0 {
			continue
		}

		tokens = stripSudo(tokens)
		if len(tokens) == 0 {
			continue
		}

		baseCmd := tokens[0]
		if idx := strings.LastIndex(baseCmd, "/"); idx != -1 {
			baseCmd = baseCmd[idx+1:]
		}

		if blockedCommands[baseCmd] {
			return "Blocked command: " + baseCmd
		}

		if baseCmd == "systemctl" && len(tokens) > 1 && blockedSystemctlActions[tokens[1]] {
			return "systemctl " + tokens[1] + " is blocked"
		}

		if baseCmd == "init" && len(tokens) > 1 && (tokens[1] == "0" || tokens[1] == "6") {
			return "init " + tokens[1] + " (system halt/reboot)"
		}

		if baseCmd == "rm" {
			if result := checkRM(tokens); result != "" {
				return result
			}
		}

		if interpreterCommands[baseCmd] || baseCmd == "eval" {
			if result := checkInterpreter(tokens, baseCmd, depth); result != "" {
				return result
			}
		}
	}

	for _, pattern := range regexDeny {
		if pattern.MatchString(command) {
			return "Blocked: matches pattern '" + pattern.String() + "'"
		}
	}

	return ""
}

// Check inspects a shell command string and returns a non-empty reason if
// it is considered dangerous, or "" if it passes all layers.
func Check(command string) string {
	return isDangerous(command, 0)
}
