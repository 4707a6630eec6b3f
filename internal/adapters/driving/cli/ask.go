package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docrag/internal/core/ports/driving"
)

var (
	askSession  string
	askLimit    int
	askNoStream bool
	askJSON     bool
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask a question about the indexed documents",
	Long: `Retrieves the segments most similar to the question, picks the assistant
persona that fits it and generates an answer grounded in those segments.

Pass --session to continue an earlier conversation; its recent turns are
included in the prompt.`,
	Args: cobra.ExactArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().StringVarP(&askSession, "session", "s", "", "continue an existing session")
	askCmd.Flags().IntVarP(&askLimit, "limit", "n", 0, "maximum number of context segments (0 = configured)")
	askCmd.Flags().BoolVar(&askNoStream, "no-stream", false, "print the answer only when complete")
	askCmd.Flags().BoolVar(&askJSON, "json", false, "output the response as JSON")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	if chatService == nil {
		return errChatNotConfigured
	}

	req := driving.AskRequest{
		SessionID: askSession,
		Query:     args[0],
		Limit:     askLimit,
	}

	streamed := !askJSON && !askNoStream && stdoutIsTerminal()
	if streamed {
		req.OnToken = func(token string) error {
			cmd.Print(token)
			return nil
		}
	}

	resp, err := chatService.Ask(cmd.Context(), req)
	if err != nil {
		if streamed {
			cmd.Println()
		}
		return fmt.Errorf("ask failed: %w", err)
	}

	if askJSON {
		data, err := json.MarshalIndent(resp, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal response: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	if streamed {
		cmd.Println()
	} else {
		cmd.Println(resp.Answer)
	}

	printSources(cmd, resp.Sources)
	cmd.Println()
	cmd.Printf("%s %s\n", personaBadge(&resp.Intent), dimColor.Sprintf("(%.2f)", resp.Intent.Confidence))
	cmd.Println(dimColor.Sprintf("Continue with: docrag ask --session %s \"...\"", resp.SessionID))
	return nil
}
