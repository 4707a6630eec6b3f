package cli

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var documentsCmd = &cobra.Command{
	Use:     "documents",
	Aliases: []string{"docs"},
	Short:   "Manage indexed documents",
	Long:    `List, inspect and remove documents in the vector index.`,
}

var documentsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List indexed documents",
	Args:  cobra.NoArgs,
	RunE:  runDocumentsList,
}

var documentsDeleteCmd = &cobra.Command{
	Use:   "delete [document-id]",
	Short: "Remove a document from the index",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocumentsDelete,
}

var documentsClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove every document from the index",
	Args:  cobra.NoArgs,
	RunE:  runDocumentsClear,
}

var documentsStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show index totals",
	Args:  cobra.NoArgs,
	RunE:  runDocumentsStats,
}

func init() {
	documentsCmd.AddCommand(documentsListCmd)
	documentsCmd.AddCommand(documentsDeleteCmd)
	documentsCmd.AddCommand(documentsClearCmd)
	documentsCmd.AddCommand(documentsStatsCmd)
	documentsClearCmd.Flags().BoolP("yes", "y", false, "Skip the confirmation prompt")
	rootCmd.AddCommand(documentsCmd)
}

func runDocumentsList(cmd *cobra.Command, _ []string) error {
	if ingestService == nil {
		return errIngestNotConfigured
	}

	docs, err := ingestService.ListDocuments(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to list documents: %w", err)
	}

	if len(docs) == 0 {
		cmd.Println("No documents indexed.")
		return nil
	}

	cmd.Printf("Documents (%d):\n", len(docs))
	for _, doc := range docs {
		cmd.Printf("  %s  %s (%d segments)\n", doc.DocumentID, doc.FileName, doc.Segments)
	}
	return nil
}

func runDocumentsDelete(cmd *cobra.Command, args []string) error {
	if ingestService == nil {
		return errIngestNotConfigured
	}

	if err := ingestService.DeleteDocument(cmd.Context(), args[0]); err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}

	cmd.Printf("Document %s removed from the index.\n", args[0])
	return nil
}

func runDocumentsClear(cmd *cobra.Command, _ []string) error {
	if ingestService == nil {
		return errIngestNotConfigured
	}

	docs, err := ingestService.ListDocuments(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to list documents: %w", err)
	}
	if len(docs) == 0 {
		cmd.Println("No documents indexed.")
		return nil
	}
	if !confirm(cmd, fmt.Sprintf("Remove all %d documents from the index?", len(docs))) {
		cmd.Println("Aborted.")
		return nil
	}

	for _, doc := range docs {
		if err := ingestService.DeleteDocument(cmd.Context(), doc.DocumentID); err != nil {
			return fmt.Errorf("failed to delete document %s: %w", doc.DocumentID, err)
		}
	}
	cmd.Printf("Removed %d documents.\n", len(docs))
	return nil
}

// confirm asks a yes/no question unless --yes was given. Anything but
// "y" or "yes" declines.
func confirm(cmd *cobra.Command, question string) bool {
	if yes, _ := cmd.Flags().GetBool("yes"); yes {
		return true
	}
	cmd.Printf("%s [y/N]: ", question)
	answer := strings.ToLower(readLine(bufio.NewReader(cmd.InOrStdin())))
	return answer == "y" || answer == "yes"
}

func runDocumentsStats(cmd *cobra.Command, _ []string) error {
	if ingestService == nil {
		return errIngestNotConfigured
	}

	stats, err := ingestService.Stats(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to get stats: %w", err)
	}

	cmd.Printf("Backend:   %s\n", stats.Backend)
	cmd.Printf("Documents: %d\n", stats.Documents)
	cmd.Printf("Segments:  %d\n", stats.Segments)
	return nil
}
