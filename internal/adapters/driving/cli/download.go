package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/opencourse-labs/stride-cli/internal/core/domain"
	"github.com/opencourse-labs/stride-cli/internal/core/services"
)

var downloadRemove bool

var downloadCmd = &cobra.Command{
	Use:   "download [course-id] [block-id]",
	Short: "Download course content for offline use",
	Long: `Downloads every downloadable block under the given scope: a single
block, a unit, a section or a chapter. With --remove, deletes the local
copies instead.`,
	Args: cobra.ExactArgs(2),
	RunE: runDownload,
}

func init() {
	downloadCmd.Flags().BoolVar(&downloadRemove, "remove", false, "remove local copies instead of downloading")
	rootCmd.AddCommand(downloadCmd)
}

func runDownload(cmd *cobra.Command, args []string) error {
	if downloadManager == nil {
		return errors.New("download manager not configured")
	}

	ctx := context.Background()
	structure, err := loadStructure(ctx, cmd, args[0])
	if err != nil {
		return err
	}
	scopeID := args[1]

	if downloadRemove {
		if err := downloadManager.RequestRemoval(ctx, scopeID); err != nil {
			return fmt.Errorf("remove downloads: %w", err)
		}
		cmd.Println("Local copies removed.")
		return nil
	}

	leaves := services.NewLinearizer().DownloadableLeaves(structure, scopeID)
	if len(leaves) == 0 {
		cmd.Println("Nothing downloadable under that block.")
		return nil
	}

	// Subscribe before requesting so no status emission is missed.
	snapshots, cancel := downloadManager.Subscribe()
	defer cancel()

	if err := downloadManager.RequestDownload(ctx, scopeID); err != nil {
		switch {
		case errors.Is(err, domain.ErrWifiRequired):
			return errors.New("downloads are restricted to Wi-Fi; connect to Wi-Fi or disable video.wifi_download_only")
		case errors.Is(err, domain.ErrNotFound):
			cmd.Println("Nothing downloadable under that block.")
			return nil
		}
		return fmt.Errorf("request download: %w", err)
	}

	cmd.Printf("Downloading %d file(s)...\n", len(leaves))
	return waitForDownloads(cmd, leaves, snapshots)
}

// waitForDownloads blocks until every leaf is downloaded, or until the
// in-flight work drains with some leaves still missing.
func waitForDownloads(cmd *cobra.Command, leaves []*domain.Block, snapshots <-chan domain.DownloadSnapshot) error {
	report := func(done int) error {
		if done < len(leaves) {
			cmd.Printf("Done: %d of %d file(s) downloaded.\n", done, len(leaves))
			return fmt.Errorf("download incomplete: %w", domain.ErrConnectivity)
		}
		cmd.Printf("Done: %d file(s) downloaded.\n", done)
		return nil
	}

	// Already-downloaded leaves never re-enter the queue, so the whole
	// scope may be settled before the first emission arrives.
	if inFlight, done := countStates(leaves, downloadManager.Snapshot()); inFlight == 0 && done == len(leaves) {
		return report(done)
	}

	sawInFlight := false
	for snapshot := range snapshots {
		inFlight, done := countStates(leaves, snapshot)
		if inFlight > 0 {
			sawInFlight = true
			continue
		}
		if done == len(leaves) || sawInFlight {
			return report(done)
		}
	}
	return errors.New("download status stream closed")
}

func countStates(leaves []*domain.Block, snapshot domain.DownloadSnapshot) (inFlight, done int) {
	for _, leaf := range leaves {
		switch state := snapshot.StateOf(leaf.ID); {
		case state.InProgress():
			inFlight++
		case state == domain.DownloadStateDownloaded:
			done++
		}
	}
	return inFlight, done
}
