// Package cli implements the cobra command tree for stride.
//
// Commands hold no business logic: they parse flags, call the core
// services injected through SetServices and print results. Services are
// package-level so that init-registered commands can reach them; main
// wires the real implementations before Execute runs.
package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/opencourse-labs/stride-cli/internal/core/domain"
	"github.com/opencourse-labs/stride-cli/internal/core/ports/driven"
	"github.com/opencourse-labs/stride-cli/internal/core/ports/driving"
	"github.com/opencourse-labs/stride-cli/internal/logger"
)

// version is set at build time via -ldflags.
var version = "dev"

// Authenticator performs the initial credential exchange against the LMS.
type Authenticator interface {
	// Login exchanges username and password for a session and persists
	// the resulting tokens. Fails with domain.ErrAuthInvalid when the
	// credentials are rejected.
	Login(ctx context.Context, username, password string) error
}

// Services bundles everything the commands need. Main constructs the
// adapters and core services, fills this in and calls SetServices once
// before Execute.
type Services struct {
	Loader     driving.StructureLoader
	Downloads  driving.DownloadManager
	Completion driving.CompletionReporter
	Auth       Authenticator
	API        driven.CourseAPI
	Config     driven.ConfigStore
	Notifier   driven.CourseNotifier
}

var (
	structureLoader    driving.StructureLoader
	downloadManager    driving.DownloadManager
	completionReporter driving.CompletionReporter
	authService        Authenticator
	courseAPI          driven.CourseAPI
	configStore        driven.ConfigStore
	courseNotifier     driven.CourseNotifier
)

// SetServices wires the command tree to its dependencies.
func SetServices(s Services) {
	structureLoader = s.Loader
	downloadManager = s.Downloads
	completionReporter = s.Completion
	authService = s.Auth
	courseAPI = s.API
	configStore = s.Config
	courseNotifier = s.Notifier
}

var (
	verbose bool
	offline bool
)

var rootCmd = &cobra.Command{
	Use:   "stride",
	Short: "Offline-first course client for Open edX",
	Long: `stride is a command-line client for Open edX compatible learning
platforms. It syncs course structures for offline study, downloads
video content, tracks your position within a section and reports
completion back to the LMS.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().BoolVar(&offline, "offline", false, "use the locally saved structure, never the network")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// loadStructure makes courseID the current course and returns its
// structure. Online it fetches fresh; when the fetch fails on
// connectivity, or --offline is set, it falls back to the durable copy.
func loadStructure(ctx context.Context, cmd *cobra.Command, courseID string) (*domain.CourseStructure, error) {
	if structureLoader == nil {
		return nil, errors.New("structure loader not configured")
	}
	if courseID == "" {
		return nil, fmt.Errorf("load structure: %w: empty course id", domain.ErrInvalidInput)
	}

	if offline {
		if err := structureLoader.PreloadFromStore(ctx, courseID); err != nil {
			return nil, fmt.Errorf("load structure offline: %w", err)
		}
		return structureLoader.Current()
	}

	if err := structureLoader.Preload(ctx, courseID); err != nil {
		if !errors.Is(err, domain.ErrConnectivity) {
			return nil, fmt.Errorf("load structure: %w", err)
		}
		cmd.PrintErrln("No connection, using the saved copy.")
		if storeErr := structureLoader.PreloadFromStore(ctx, courseID); storeErr != nil {
			return nil, fmt.Errorf("load structure offline: %w", storeErr)
		}
	}
	return structureLoader.Current()
}

// downloadGlyph renders a one-character download state marker.
func downloadGlyph(state domain.DownloadState) string {
	switch state {
	case domain.DownloadStateDownloaded:
		return "●"
	case domain.DownloadStateDownloading:
		return "◐"
	case domain.DownloadStateWaiting:
		return "○"
	default:
		return " "
	}
}

// typeIcon renders a marker for a container based on the dominant type
// of its children.
func typeIcon(t domain.BlockType) string {
	switch t {
	case domain.BlockTypeVideo:
		return "▶"
	case domain.BlockTypeProblem:
		return "✎"
	case domain.BlockTypeDiscussion:
		return "◆"
	default:
		return "·"
	}
}

// completionGlyph renders a checkmark for completed blocks.
func completionGlyph(completed bool) string {
	if completed {
		return "✓"
	}
	return " "
}
