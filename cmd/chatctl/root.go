package main

import (
	"os"
	"time"

	"github.com/spf13/cobra"

	"chat-orchestrator/internal/adapter/chatapi"
)

var (
	backendURL string
	timeout    time.Duration
)

var rootCmd = &cobra.Command{
	Use:   "chatctl",
	Short: "Terminal client for the chat-orchestrator backend",
	Long: `chatctl talks to the chat-orchestrator HTTP API.

Example usage:
  chatctl health                          # Probe backend liveness
  chatctl search "roaming tariffs"        # Query the knowledge base
  chatctl chat "How do I activate eSIM?"  # One whole-response turn
  chatctl chat --stream "Tell me more"    # One streamed turn`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	defaultBackend := os.Getenv("CHAT_BACKEND_URL")
	if defaultBackend == "" {
		defaultBackend = "http://localhost:8000"
	}

	rootCmd.PersistentFlags().StringVar(&backendURL, "backend", defaultBackend, "backend base URL")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 30*time.Second, "request timeout (ignored for streaming)")
}

func newClient() *chatapi.Client {
	return chatapi.NewClient(backendURL, timeout)
}
