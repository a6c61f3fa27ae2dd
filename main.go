// Command grip runs the agent runtime execution core: cron scheduling,
// DAG workflow execution, and the periodic heartbeat service.
package main

import "github.com/5unnykum4r/grip/cmd"

func main() {
	cmd.Execute()
}
