package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/opencourse-labs/stride-cli/internal/core/services"
)

var outlineCmd = &cobra.Command{
	Use:   "outline [course-id]",
	Short: "Show the course outline",
	Long: `Shows the chapters and sections of a course, with completion and
download markers, plus where you left off.`,
	Args: cobra.ExactArgs(1),
	RunE: runOutline,
}

func init() {
	rootCmd.AddCommand(outlineCmd)
}

func runOutline(cmd *cobra.Command, args []string) error {
	structure, err := loadStructure(context.Background(), cmd, args[0])
	if err != nil {
		return err
	}

	outline := services.NewLinearizer().BuildOutline(structure)
	if len(outline.Entries) == 0 {
		cmd.Println("Course has no content.")
		return nil
	}

	if structure.Name != "" {
		cmd.Println(structure.Name)
		cmd.Println()
	}

	for _, entry := range outline.Entries {
		cmd.Printf("%s\n", entry.Chapter.DisplayName)
		for _, seq := range entry.Sequentials {
			cmd.Printf("  %s %s %s %s\n",
				completionGlyph(seq.IsCompleted()),
				sectionDownloadGlyph(seq.ID),
				typeIcon(seq.DescendantsType),
				seq.DisplayName)
			cmd.Printf("      %s\n", seq.ID)
		}
	}

	if outline.ResumeBlock != nil {
		cmd.Println()
		cmd.Printf("Resume: %s\n", outline.ResumeBlock.DisplayName)
		cmd.Printf("  stride unit %s %s\n", structure.ID, outline.ResumeBlock.ID)
	}
	return nil
}

// sectionDownloadGlyph shows the aggregate download state of a
// container, blank when no download manager is wired.
func sectionDownloadGlyph(containerID string) string {
	if downloadManager == nil {
		return " "
	}
	return downloadGlyph(downloadManager.AggregateState(containerID))
}

// formatBytes renders a byte count in human units.
func formatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for v := n / unit; v >= unit; v /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(n)/float64(div), "KMGT"[exp])
}
