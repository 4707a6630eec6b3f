package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docrag/internal/core/domain"
)

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "Manage chat sessions",
	Long:  `List past conversations, show their transcripts or delete them.`,
	RunE:  runSessionsList,
}

var sessionsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List chat sessions",
	Args:  cobra.NoArgs,
	RunE:  runSessionsList,
}

var sessionsShowCmd = &cobra.Command{
	Use:   "show [session-id]",
	Short: "Show a session transcript",
	Args:  cobra.ExactArgs(1),
	RunE:  runSessionsShow,
}

var sessionsDeleteCmd = &cobra.Command{
	Use:   "delete [session-id]",
	Short: "Delete a session and its messages",
	Args:  cobra.ExactArgs(1),
	RunE:  runSessionsDelete,
}

var sessionsClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete every chat session",
	Args:  cobra.NoArgs,
	RunE:  runSessionsClear,
}

func init() {
	sessionsCmd.AddCommand(sessionsListCmd)
	sessionsCmd.AddCommand(sessionsShowCmd)
	sessionsCmd.AddCommand(sessionsDeleteCmd)
	sessionsCmd.AddCommand(sessionsClearCmd)
	sessionsClearCmd.Flags().BoolP("yes", "y", false, "Skip the confirmation prompt")
	rootCmd.AddCommand(sessionsCmd)
}

func runSessionsList(cmd *cobra.Command, _ []string) error {
	if chatService == nil {
		return errChatNotConfigured
	}

	sessions, err := chatService.Sessions(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to list sessions: %w", err)
	}

	if len(sessions) == 0 {
		cmd.Println("No sessions.")
		return nil
	}

	for _, s := range sessions {
		cmd.Printf("  %s  %s  %s\n", s.ID, s.UpdatedAt.Format("2006-01-02 15:04"), s.Title)
	}
	return nil
}

func runSessionsShow(cmd *cobra.Command, args []string) error {
	if chatService == nil {
		return errChatNotConfigured
	}

	messages, err := chatService.History(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("failed to load session: %w", err)
	}

	for i := range messages {
		m := &messages[i]
		if m.Role == domain.RoleUser {
			cmd.Printf("> %s\n\n", m.Content)
			continue
		}
		if m.DetectedMode != "" {
			cmd.Println(badgeColor.Sprintf("%s %s", m.DetectedMode.Icon(), m.DetectedMode.Label()))
		}
		cmd.Println(m.Content)
		printSources(cmd, m.Sources)
		cmd.Println()
	}
	return nil
}

func runSessionsDelete(cmd *cobra.Command, args []string) error {
	if chatService == nil {
		return errChatNotConfigured
	}

	if err := chatService.DeleteSession(cmd.Context(), args[0]); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}

	cmd.Printf("Session %s deleted.\n", args[0])
	return nil
}

func runSessionsClear(cmd *cobra.Command, _ []string) error {
	if chatService == nil {
		return errChatNotConfigured
	}

	sessions, err := chatService.Sessions(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to list sessions: %w", err)
	}
	if len(sessions) == 0 {
		cmd.Println("No sessions.")
		return nil
	}
	if !confirm(cmd, fmt.Sprintf("Delete all %d sessions?", len(sessions))) {
		cmd.Println("Aborted.")
		return nil
	}

	for _, session := range sessions {
		if err := chatService.DeleteSession(cmd.Context(), session.ID); err != nil {
			return fmt.Errorf("failed to delete session %s: %w", session.ID, err)
		}
	}
	cmd.Printf("Deleted %d sessions.\n", len(sessions))
	return nil
}
