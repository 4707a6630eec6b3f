package cli

import (
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/docrag/internal/core/domain"
)

var (
	badgeColor = color.New(color.FgCyan, color.Bold)
	dimColor   = color.New(color.Faint)
	warnColor  = color.New(color.FgYellow)
)

// stdoutIsTerminal reports whether answers can be streamed. Replaced in tests.
var stdoutIsTerminal = func() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// personaBadge renders the persona icon and label.
func personaBadge(r *domain.IntentResult) string {
	return badgeColor.Sprintf("%s %s", r.Icon, r.Label)
}

func printSources(cmd *cobra.Command, sources []domain.SourceRef) {
	if len(sources) == 0 {
		return
	}
	cmd.Println()
	cmd.Println(dimColor.Sprint("Sources:"))
	for i, src := range sources {
		line := src.FileName
		if src.SectionTitle != "" {
			line += " > " + src.SectionTitle
		}
		if src.PageNumber > 0 {
			line += dimColor.Sprintf(" p.%d", src.PageNumber)
		}
		cmd.Printf("  [%d] %s %s\n", i+1, line, dimColor.Sprintf("(%.2f)", src.Score))
	}
}
