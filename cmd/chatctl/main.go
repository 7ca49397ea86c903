// Package main is the entry point for the chatctl CLI, a terminal client for
// the chat-orchestrator backend.
package main

import "os"

func main() {
	if err := Execute(); err != nil {
		os.Stderr.WriteString("Error: " + err.Error() + "\n")
		os.Exit(1)
	}
}
