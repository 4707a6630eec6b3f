package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docrag/internal/core/domain"
)

var classifyJSON bool

var classifyCmd = &cobra.Command{
	Use:   "classify [question]",
	Short: "Show which persona a question routes to",
	Long: `Retrieves context for the question and runs intent classification
without generating an answer. Useful for checking routing and patterns.`,
	Args: cobra.ExactArgs(1),
	RunE: runClassify,
}

func init() {
	classifyCmd.Flags().BoolVar(&classifyJSON, "json", false, "output the result as JSON")
	rootCmd.AddCommand(classifyCmd)
}

func runClassify(cmd *cobra.Command, args []string) error {
	if chatService == nil {
		return errChatNotConfigured
	}

	result, retrieved, err := chatService.Classify(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("classify failed: %w", err)
	}

	if classifyJSON {
		data, err := json.MarshalIndent(struct {
			Intent    *domain.IntentResult      `json:"intent"`
			Retrieved []domain.RetrievedSegment `json:"retrieved"`
		}{result, retrieved}, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal result: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	cmd.Printf("Persona:    %s\n", personaBadge(result))
	cmd.Printf("Mode:       %s\n", result.Mode)
	cmd.Printf("Confidence: %.2f\n", result.Confidence)
	cmd.Printf("Context:    %t\n", result.HasContext)
	if len(result.Signals) > 0 {
		cmd.Printf("Signals:    %s\n", strings.Join(result.Signals, ", "))
	}

	if len(retrieved) == 0 {
		cmd.Println()
		cmd.Println("No context retrieved.")
		return nil
	}

	cmd.Println()
	cmd.Println("Retrieved:")
	for i := range retrieved {
		md := retrieved[i].Metadata
		cmd.Printf("  [%d] %s #%d (%.2f)", i+1, md.FileName, md.ChunkIndex, retrieved[i].Score)
		if md.Language != "" {
			cmd.Printf(" %s", md.Language)
		}
		cmd.Println()
	}
	return nil
}
