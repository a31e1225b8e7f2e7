package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/opencourse-labs/stride-cli/internal/core/domain"
	"github.com/opencourse-labs/stride-cli/internal/core/services"
)

var sectionCmd = &cobra.Command{
	Use:   "section [course-id] [sequential-id]",
	Short: "Show the units of one section",
	Long: `Lists the units (verticals) of a section and the blocks inside each,
with completion and download markers.`,
	Args: cobra.ExactArgs(2),
	RunE: runSection,
}

func init() {
	rootCmd.AddCommand(sectionCmd)
}

func runSection(cmd *cobra.Command, args []string) error {
	structure, err := loadStructure(context.Background(), cmd, args[0])
	if err != nil {
		return err
	}

	view := services.NewLinearizer().BuildSectionView(structure, args[1])
	if view.Sequential == nil {
		return fmt.Errorf("section %q: %w", args[1], domain.ErrNotFound)
	}

	var snapshot domain.DownloadSnapshot
	if downloadManager != nil {
		snapshot = downloadManager.Snapshot()
	}

	cmd.Printf("%s\n", view.Sequential.DisplayName)
	for _, row := range view.Rows {
		cmd.Printf("\n  %s %s\n", typeIcon(row.Vertical.DescendantsType), row.Vertical.DisplayName)
		for _, leaf := range row.Leaves {
			cmd.Printf("    %s %s %-10s %s\n",
				completionGlyph(leaf.IsCompleted()),
				downloadGlyph(snapshot.StateOf(leaf.ID)),
				leaf.Type,
				leaf.DisplayName)
		}
	}
	return nil
}
