package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/opencourse-labs/stride-cli/internal/core/domain"
	"github.com/opencourse-labs/stride-cli/internal/core/services"
)

var videosCmd = &cobra.Command{
	Use:   "videos [course-id]",
	Short: "List the course's videos",
	Long: `Shows the videos-only view of a course: every video block grouped by
section, with file sizes and download state.`,
	Args: cobra.ExactArgs(1),
	RunE: runVideos,
}

func init() {
	rootCmd.AddCommand(videosCmd)
}

func runVideos(cmd *cobra.Command, args []string) error {
	if _, err := loadStructure(context.Background(), cmd, args[0]); err != nil {
		return err
	}
	videos, err := structureLoader.CurrentForVideos()
	if err != nil {
		return fmt.Errorf("videos view: %w", err)
	}

	var snapshot domain.DownloadSnapshot
	if downloadManager != nil {
		snapshot = downloadManager.Snapshot()
	}

	lin := services.NewLinearizer()
	var count int
	var total int64
	for _, seq := range lin.Sequentials(videos) {
		leaves := lin.UnitSequence(videos, seq.ID)
		if len(leaves) == 0 {
			continue
		}
		cmd.Printf("%s\n", seq.DisplayName)
		for _, leaf := range leaves {
			size := ""
			if leaf.DownloadSize > 0 {
				size = formatBytes(leaf.DownloadSize)
			}
			cmd.Printf("  %s %-40s %s\n",
				downloadGlyph(snapshot.StateOf(leaf.ID)),
				leaf.DisplayName,
				size)
			count++
			total += leaf.DownloadSize
		}
	}

	if count == 0 {
		cmd.Println("Course has no videos.")
		return nil
	}
	cmd.Println()
	cmd.Printf("%d video(s), %s\n", count, formatBytes(total))
	return nil
}
