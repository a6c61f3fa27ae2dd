package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/5unnykum4r/grip/internal/cron"
	"github.com/5unnykum4r/grip/internal/cronphrase"
)

// SchedulerTool lets the agent manage its own cron jobs from inside a
// conversation: create, list, delete, backed by a cron.Service.
type SchedulerTool struct {
	svc *cron.Service
}

// NewSchedulerTool returns a tool bound to the given cron service.
func NewSchedulerTool(svc *cron.Service) *SchedulerTool {
	return &SchedulerTool{svc: svc}
}

func (t *SchedulerTool) Name() string { return "scheduler" }

func (t *SchedulerTool) Description() string {
	return "Manage scheduled tasks with natural language ('every day at 9am') or cron expressions."
}

func (t *SchedulerTool) Parameters() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"action": map[string]interface{}{
				"type":        "string",
				"enum":        []string{"create", "list", "delete"},
				"description": "Action to perform.",
			},
			"schedule": map[string]interface{}{
				"type":        "string",
				"description": "Natural language or cron expression (for create action).",
			},
			"task_name": map[string]interface{}{
				"type":        "string",
				"description": "Name/description of the scheduled task (for create action).",
			},
			"command": map[string]interface{}{
				"type":        "string",
				"description": "Command or message to execute on schedule (for create action).",
			},
			"reply_to": map[string]interface{}{
				"type":        "string",
				"description": "Session key to deliver results to (e.g. 'telegram:12345'). Required for channel delivery.",
			},
			"task_id": map[string]interface{}{
				"type":        "string",
				"description": "Task ID to delete (for delete action).",
			},
		},
		"required": []string{"action"},
	}
}

func (t *SchedulerTool) Execute(ctx context.Context, args map[string]interface{}) *Result {
	action, _ := args["action"].(string)
	switch action {
	case "create":
		return t.create(args)
	case "list":
		return t.list()
	case "delete":
		return t.delete(args)
	default:
		return ErrorResult(fmt.Sprintf("unknown action %q. Use: create, list, delete.", action))
	}
}

func (t *SchedulerTool) create(args map[string]interface{}) *Result {
	schedule, _ := args["schedule"].(string)
	taskName, _ := args["task_name"].(string)
	if taskName == "" {
		taskName = "Unnamed task"
	}
	command, _ := args["command"].(string)
	replyTo, _ := args["reply_to"].(string)

	if schedule == "" {
		return ErrorResult("schedule is required for create action")
	}
	if replyTo != "" && !strings.Contains(replyTo, ":") {
		return ErrorResult(fmt.Sprintf(
			"invalid reply_to format %q. Expected 'channel:chat_id' (e.g. 'telegram:12345').", replyTo))
	}

	cronExpr, ok := cronphrase.Parse(schedule)
	if !ok {
		return ErrorResult(fmt.Sprintf(
			"could not parse schedule %q. Try formats like: 'every 5 minutes', "+
				"'every day at 9am', 'every Monday at 3pm', or a raw cron expression like '*/5 * * * *'.", schedule))
	}

	job, err := t.svc.AddJob(taskName, cronExpr, command, replyTo)
	if err != nil {
		return ErrorResult(fmt.Sprintf("could not create scheduled task: %v", err))
	}

	out := fmt.Sprintf(
		"Scheduled task created:\n  ID: %s\n  Name: %s\n  Cron: %s\n  Schedule: %s\n  Prompt: %s",
		job.ID, job.Name, job.Schedule, schedule, command)
	if replyTo != "" {
		out += fmt.Sprintf("\n  Reply to: %s", replyTo)
	}
	return NewResult(out)
}

func (t *SchedulerTool) list() *Result {
	jobs := t.svc.ListJobs()
	if len(jobs) == 0 {
		return NewResult("No scheduled tasks found.")
	}

	var sb strings.Builder
	sb.WriteString("## Scheduled Tasks\n\n")
	for _, j := range jobs {
		status := "enabled"
		if !j.Enabled {
			status = "disabled"
		}
		fmt.Fprintf(&sb, "- **%s** (ID: %s) [%s]\n  Schedule: `%s` | Prompt: %s\n",
			j.Name, j.ID, status, j.Schedule, j.Prompt)
	}
	return NewResult(sb.String())
}

func (t *SchedulerTool) delete(args map[string]interface{}) *Result {
	taskID, _ := args["task_id"].(string)
	if taskID == "" {
		return ErrorResult("task_id is required for delete action")
	}
	if !t.svc.RemoveJob(taskID) {
		return ErrorResult(fmt.Sprintf("no scheduled task found with ID %q", taskID))
	}
	return NewResult(fmt.Sprintf("Deleted scheduled task: %s", taskID))
}
