package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"chat-orchestrator/internal/adapter/chatapi"
)

var chatCmd = &cobra.Command{
	Use:   "chat <message>",
	Short: "Send one chat turn",
	Long: `Send one chat turn to the backend.

The conversation history, if any, is read from a JSON file holding an array
of {"role": ..., "content": ...} objects, and rewritten with the new turn
appended after a successful reply.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runChat,
}

func init() {
	rootCmd.AddCommand(chatCmd)

	chatCmd.Flags().Bool("stream", false, "stream the reply incrementally")
	chatCmd.Flags().String("history", "", "path to a conversation history JSON file")
	chatCmd.Flags().Bool("sources", false, "print knowledge base sources after the reply")
}

func runChat(cmd *cobra.Command, args []string) error {
	streamReply, _ := cmd.Flags().GetBool("stream")
	historyPath, _ := cmd.Flags().GetString("history")
	showSources, _ := cmd.Flags().GetBool("sources")

	message := strings.Join(args, " ")

	history, err := loadHistory(historyPath)
	if err != nil {
		return err
	}

	client := newClient()
	var reply string

	if streamReply {
		reply, err = client.ChatStream(cmd.Context(), message, history, func(delta string) {
			fmt.Fprint(cmd.OutOrStdout(), delta)
		})
		fmt.Fprintln(cmd.OutOrStdout())
		if err != nil {
			return err
		}
	} else {
		out, chatErr := client.Chat(cmd.Context(), message, history)
		if chatErr != nil {
			return chatErr
		}
		reply = out.Response
		fmt.Fprintln(cmd.OutOrStdout(), reply)
		if showSources {
			for _, source := range out.Sources {
				fmt.Fprintf(cmd.OutOrStdout(), "\n[%s]\n%s\n", source.Type, source.Content)
			}
		}
	}

	if historyPath != "" {
		history = append(history,
			chatapi.Message{Role: "user", Content: message},
			chatapi.Message{Role: "assistant", Content: reply},
		)
		if err := saveHistory(historyPath, history); err != nil {
			return err
		}
	}
	return nil
}

func loadHistory(path string) ([]chatapi.Message, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read history file: %w", err)
	}

	var history []chatapi.Message
	if err := json.Unmarshal(data, &history); err != nil {
		return nil, fmt.Errorf("failed to parse history file: %w", err)
	}
	return history, nil
}

func saveHistory(path string, history []chatapi.Message) error {
	data, err := json.MarshalIndent(history, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode history: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write history file: %w", err)
	}
	return nil
}
