// Package engine defines the narrow contract the rest of the runtime uses
// to run a prompt through the agent. Cron, workflow and heartbeat all
// depend on this interface and nothing deeper, so they can be tested with
// a fake Engine instead of the real agent stack.
package engine

import "context"

// Result is what the agent produced for a single Run.
type Result struct {
	Response    string
	Iterations  int
	TotalTokens int
}

// Engine runs a prompt in the context of a session and returns its result.
// sessionKey scopes conversation history/state (format "<channel>:<id>",
// e.g. "cron:job123" or "heartbeat:periodic"). profile selects the agent
// persona/config to use; callers that don't care pass "".
type Engine interface {
	Run(ctx context.Context, prompt, sessionKey, profile string) (Result, error)
}
