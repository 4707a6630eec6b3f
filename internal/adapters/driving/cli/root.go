// Package cli provides the docrag command line interface.
package cli

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docrag/internal/core/ports/driving"
	"github.com/custodia-labs/docrag/internal/logger"
)

// version is set at build time with -ldflags "-X .../cli.version=...".
var version = "dev"

// Services configured by the setup hook or by tests.
var (
	ingestService   driving.IngestService
	chatService     driving.ChatService
	settingsService driving.SettingsService
)

// Services holds the driving ports used by commands.
type Services struct {
	Ingest   driving.IngestService
	Chat     driving.ChatService
	Settings driving.SettingsService

	// Close releases the adapters behind the services. May be nil.
	Close func()
}

// Options carries the global flags to the setup hook.
type Options struct {
	// Ephemeral keeps the index and history in memory for this run.
	Ephemeral bool
}

// SetupFunc builds the services once global flags are parsed.
type SetupFunc func(opts Options) (*Services, error)

// skipSetup marks commands that run without services.
const skipSetup = "skip-setup"

var (
	verbose   bool
	ephemeral bool

	setup   SetupFunc
	cleanup func()
)

var rootCmd = &cobra.Command{
	Use:   "docrag",
	Short: "Ask questions about your documents",
	Long: `docrag indexes local files with content-aware segmentation and answers
questions about them. Each question is routed to an assistant persona
(document analyst, code debugger, summarizer ...) based on its wording and
the kind of content it retrieves.

Configuration lives in ~/.docrag/config.toml. Any key can be overridden with
an environment variable such as DOCRAG_LLM_PROVIDER.`,
	SilenceUsage:      true,
	PersistentPreRunE: runSetup,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&ephemeral, "ephemeral", false, "keep the index and history in memory")
}

func runSetup(cmd *cobra.Command, _ []string) error {
	logger.SetVerbose(verbose)
	logger.SetOutput(cmd.ErrOrStderr())

	if setup == nil || cmd.Annotations[skipSetup] == "true" {
		return nil
	}

	services, err := setup(Options{Ephemeral: ephemeral})
	if err != nil {
		return err
	}
	SetServices(services)
	cleanup = services.Close
	return nil
}

// SetServices replaces the services used by commands.
func SetServices(s *Services) {
	if s == nil {
		ingestService, chatService, settingsService = nil, nil, nil
		return
	}
	ingestService = s.Ingest
	chatService = s.Chat
	settingsService = s.Settings
}

// Execute runs the root command. setup is called before any command that
// needs services; it may be nil when services are set with SetServices.
func Execute(fn SetupFunc) error {
	setup = fn

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := rootCmd.ExecuteContext(ctx)
	if cleanup != nil {
		cleanup()
		cleanup = nil
	}
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

var (
	errIngestNotConfigured   = errors.New("ingest service not configured")
	errChatNotConfigured     = errors.New("chat service not configured")
	errSettingsNotConfigured = errors.New("settings service not configured")
)
