// ./main.go
package main

import (
	"github.com/driftline/supportsim/cmd"
)

// main is the entry point for the supportsim CLI.
func main() {
	// Execute the root command defined in the cmd package.
	// This handles all command-line parsing, configuration, and execution.
	cmd.Execute()
}
