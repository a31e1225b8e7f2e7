package cli

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/opencourse-labs/stride-cli/internal/core/domain"
	"github.com/opencourse-labs/stride-cli/internal/core/ports/driven"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage stride settings",
	Long:  `View and change settings such as video quality and Wi-Fi-only downloads.`,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the current settings",
	Args:  cobra.NoArgs,
	RunE:  runSettingsShow,
}

var settingsSetCmd = &cobra.Command{
	Use:   "set [key] [value]",
	Short: "Change a setting",
	Long: `Changes a setting and persists it immediately.

Keys:
  video.streaming_quality   auto, low, medium, high
  video.download_quality    auto, low, medium, high
  video.wifi_download_only  true, false
  video.subtitle_language   language code, e.g. en
  downloads.directory       folder for offline copies
  api.base_url              LMS API root
  api.client_id             OAuth client id`,
	Args: cobra.ExactArgs(2),
	RunE: runSettingsSet,
}

var settingsPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the config file location",
	Args:  cobra.NoArgs,
	RunE:  runSettingsPath,
}

func init() {
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsSetCmd)
	settingsCmd.AddCommand(settingsPathCmd)
	rootCmd.AddCommand(settingsCmd)
}

func runSettingsShow(cmd *cobra.Command, args []string) error {
	if configStore == nil {
		return errors.New("config store not configured")
	}

	video := domain.DefaultVideoSettings()
	if q := domain.VideoQuality(configStore.GetString(driven.ConfigKeyStreamingQuality)); q.IsValid() {
		video.StreamingQuality = q
	}
	if q := domain.VideoQuality(configStore.GetString(driven.ConfigKeyDownloadQuality)); q.IsValid() {
		video.DownloadQuality = q
	}
	if _, ok := configStore.Get(driven.ConfigKeyWifiOnly); ok {
		video.WifiDownloadOnly = configStore.GetBool(driven.ConfigKeyWifiOnly)
	}
	if lang := configStore.GetString(driven.ConfigKeySubtitleLanguage); lang != "" {
		video.SubtitleLanguage = lang
	}

	cmd.Println("Settings:")
	cmd.Println()
	cmd.Printf("  %-26s %s (%s)\n", driven.ConfigKeyStreamingQuality,
		video.StreamingQuality, video.StreamingQuality.Description())
	cmd.Printf("  %-26s %s (%s)\n", driven.ConfigKeyDownloadQuality,
		video.DownloadQuality, video.DownloadQuality.Description())
	cmd.Printf("  %-26s %t\n", driven.ConfigKeyWifiOnly, video.WifiDownloadOnly)
	cmd.Printf("  %-26s %s\n", driven.ConfigKeySubtitleLanguage, video.SubtitleLanguage)
	if dir := configStore.GetString(driven.ConfigKeyDownloadDir); dir != "" {
		cmd.Printf("  %-26s %s\n", driven.ConfigKeyDownloadDir, dir)
	}
	if base := configStore.GetString(driven.ConfigKeyAPIBaseURL); base != "" {
		cmd.Printf("  %-26s %s\n", driven.ConfigKeyAPIBaseURL, base)
	}
	return nil
}

func runSettingsSet(cmd *cobra.Command, args []string) error {
	if configStore == nil {
		return errors.New("config store not configured")
	}
	key, raw := args[0], args[1]

	value, err := parseSettingValue(key, raw)
	if err != nil {
		return err
	}
	if err := configStore.Set(key, value); err != nil {
		return fmt.Errorf("save setting: %w", err)
	}
	cmd.Printf("%s = %v\n", key, value)
	return nil
}

// parseSettingValue validates known keys and converts the raw string to
// the stored type. Unknown keys are stored as strings unchanged.
func parseSettingValue(key, raw string) (any, error) {
	switch key {
	case driven.ConfigKeyStreamingQuality, driven.ConfigKeyDownloadQuality:
		if !domain.VideoQuality(raw).IsValid() {
			return nil, fmt.Errorf("set %s: %w: want auto, low, medium or high", key, domain.ErrInvalidInput)
		}
		return raw, nil
	case driven.ConfigKeyWifiOnly:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, fmt.Errorf("set %s: %w: want true or false", key, domain.ErrInvalidInput)
		}
		return b, nil
	default:
		return raw, nil
	}
}

func runSettingsPath(cmd *cobra.Command, args []string) error {
	if configStore == nil {
		return errors.New("config store not configured")
	}
	cmd.Println(configStore.Path())
	return nil
}
