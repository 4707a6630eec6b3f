package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docrag/internal/adapters/driving/watch"
	"github.com/custodia-labs/docrag/internal/core/domain"
	"github.com/custodia-labs/docrag/internal/formats"
)

var (
	ingestDryRun bool
	ingestWatch  bool
	ingestJSON   bool
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [path...]",
	Short: "Index files or directories",
	Long: `Classifies each file, extracts its text and splits it with the strategy
that fits its content: headings for prose, functions and classes for source
code, records for structured data and a sliding window otherwise.

Directories are walked recursively; hidden and unsupported files are skipped.

Examples:
  docrag ingest README.md src/
  docrag ingest --dry-run report.pdf
  docrag ingest --watch ~/notes`,
	Args: cobra.MinimumNArgs(1),
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().BoolVar(&ingestDryRun, "dry-run", false, "segment without embedding or indexing")
	ingestCmd.Flags().BoolVarP(&ingestWatch, "watch", "w", false, "keep watching the directory for changes")
	ingestCmd.Flags().BoolVar(&ingestJSON, "json", false, "output results as JSON")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	if ingestService == nil {
		return errIngestNotConfigured
	}
	if ingestWatch {
		if ingestDryRun {
			return errors.New("--watch cannot be combined with --dry-run")
		}
		if len(args) != 1 {
			return errors.New("--watch takes exactly one directory")
		}
	}

	files, err := collectFiles(args)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	ingested := make(map[string]string)
	results := make([]*domain.IngestResult, 0, len(files))
	failed := 0

	for _, path := range files {
		content, err := os.ReadFile(path)
		if err != nil {
			failed++
			cmd.PrintErrf("  ✗ %s: %v\n", path, err)
			continue
		}

		var result *domain.IngestResult
		if ingestDryRun {
			result, err = ingestService.Preview(ctx, filepath.Base(path), content)
		} else {
			result, err = ingestService.Ingest(ctx, filepath.Base(path), content)
		}
		if err != nil {
			failed++
			cmd.PrintErrf("  ✗ %s: %v\n", path, err)
			continue
		}

		ingested[path] = result.DocumentID
		results = append(results, result)
		if !ingestJSON {
			printIngestResult(cmd, path, result)
		}
	}

	if ingestJSON {
		data, err := json.MarshalIndent(results, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal results: %w", err)
		}
		cmd.Println(string(data))
	}

	if ingestWatch {
		return watchDirectory(cmd, args[0], ingested)
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d files failed", failed, len(files))
	}
	if len(files) == 0 {
		cmd.Println("No supported files found.")
	}
	return nil
}

func printIngestResult(cmd *cobra.Command, path string, result *domain.IngestResult) {
	strategy := result.Strategy
	if result.FellBack {
		strategy += " (fallback: " + result.Reason + ")"
	}
	cmd.Printf("  ✓ %s: %d segments, %s, %s\n", path, len(result.Segments), result.Category, strategy)

	if !ingestDryRun {
		return
	}
	for i := range result.Segments {
		seg := &result.Segments[i]
		label := seg.Metadata.SectionTitle
		if label == "" {
			label = seg.Metadata.ElementType
		}
		cmd.Printf("      [%d] %d chars", seg.Metadata.ChunkIndex, seg.Metadata.CharCount)
		if label != "" {
			cmd.Printf(" %s", label)
		}
		if seg.Metadata.PageNumber > 0 {
			cmd.Printf(" (page %d)", seg.Metadata.PageNumber)
		}
		cmd.Printf(": %s\n", snippet(seg.Content, 60))
	}
}

func watchDirectory(cmd *cobra.Command, dir string, ingested map[string]string) error {
	w := watch.New(dir, ingestService)
	defer w.Close()
	for path, docID := range ingested {
		w.Track(path, docID)
	}

	results, err := w.Watch(cmd.Context())
	if err != nil {
		return err
	}

	cmd.Printf("Watching %s for changes (Ctrl+C to stop)\n", dir)
	for r := range results {
		switch {
		case r.Err != nil:
			cmd.PrintErrf("  ✗ %s: %v\n", r.Path, r.Err)
		case r.Action == watch.ActionRemoved:
			cmd.Printf("  - %s: removed from index\n", r.Path)
		default:
			printIngestResult(cmd, r.Path, r.Ingest)
		}
	}
	return nil
}

// collectFiles expands directories into their supported, non-hidden files.
// Explicit file arguments are kept so unsupported types are reported.
func collectFiles(args []string) ([]string, error) {
	var files []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			files = append(files, arg)
			continue
		}

		err = filepath.WalkDir(arg, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			hidden := path != arg && strings.HasPrefix(d.Name(), ".")
			if d.IsDir() {
				if hidden {
					return filepath.SkipDir
				}
				return nil
			}
			if !hidden && formats.IsSupported(path) {
				files = append(files, path)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("walking %s: %w", arg, err)
		}
	}
	return files, nil
}

// snippet collapses whitespace and truncates to n runes.
func snippet(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
