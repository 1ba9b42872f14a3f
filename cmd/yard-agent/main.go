package main

import (
	"os"

	_ "go.uber.org/automaxprocs"

	"github.com/yardtrack-io/yardtrack/cmd/yard-agent/app"
)

func main() {
	cmd := app.NewAgentCommand()
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
