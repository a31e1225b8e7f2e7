package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"runtime/debug"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/opencourse-labs/stride-cli/internal/adapters/driving/tui"
	"github.com/opencourse-labs/stride-cli/internal/core/services"
)

var unitCmd = &cobra.Command{
	Use:   "unit [course-id] [block-id]",
	Short: "Open the unit pager",
	Long: `Opens the interactive pager on a unit. The block id may be a leaf, a
unit or a section; containers open on their first leaf.

Controls:
  ←/h, →/l - Previous / next block
  n        - Next section (from the last block)
  g        - Go to a block by id
  d        - Download the open section
  x        - Remove the open section's downloads
  ?        - Toggle help
  q        - Quit`,
	Args: cobra.ExactArgs(2),
	RunE: runUnit,
}

func init() {
	rootCmd.AddCommand(unitCmd)
}

func runUnit(cmd *cobra.Command, args []string) error {
	// Panic recovery keeps a stack trace visible after the alt screen
	// is torn down.
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "Panic in unit pager: %v\n", r)
			fmt.Fprintf(os.Stderr, "Stack trace:\n%s\n", debug.Stack())
		}
	}()

	structure, err := loadStructure(context.Background(), cmd, args[0])
	if err != nil {
		return err
	}

	tracker := services.NewPositionTracker(structure, courseNotifier, args[1])
	if tracker.Current() == nil {
		return errors.New("block not found or section is empty")
	}

	app, err := tui.NewApp(&tui.Ports{
		Navigator:  tracker,
		Downloads:  downloadManager,
		Completion: completionReporter,
	}, structure.ID)
	if err != nil {
		return fmt.Errorf("failed to create pager: %w", err)
	}
	app.WithContext(cmd.Context())

	p := tea.NewProgram(app, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("pager error: %w", err)
	}
	return nil
}
