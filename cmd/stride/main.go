// Command stride is an offline-first CLI client for Open edX compatible
// learning platforms.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/opencourse-labs/stride-cli/internal/adapters/driven/config/file"
	"github.com/opencourse-labs/stride-cli/internal/adapters/driven/downloads"
	"github.com/opencourse-labs/stride-cli/internal/adapters/driven/lms"
	"github.com/opencourse-labs/stride-cli/internal/adapters/driven/network"
	"github.com/opencourse-labs/stride-cli/internal/adapters/driven/storage/sqlite"
	"github.com/opencourse-labs/stride-cli/internal/adapters/driving/cli"
	"github.com/opencourse-labs/stride-cli/internal/core/domain"
	"github.com/opencourse-labs/stride-cli/internal/core/ports/driven"
	"github.com/opencourse-labs/stride-cli/internal/core/services"
	"github.com/opencourse-labs/stride-cli/internal/logger"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	config, err := file.NewConfigStore("")
	if err != nil {
		return fmt.Errorf("init config: %w", err)
	}

	notifier := services.NewCourseNotifier()

	subtitleLang := config.GetString(driven.ConfigKeySubtitleLanguage)
	stopWatch, err := config.Watch(func() {
		logger.Debug("config reloaded from disk")
		if lang := config.GetString(driven.ConfigKeySubtitleLanguage); lang != subtitleLang {
			subtitleLang = lang
			notifier.Publish(domain.SubtitleLanguageChanged{Language: lang})
		}
	})
	if err != nil {
		logger.Warn("config watch unavailable: %v", err)
	} else {
		defer stopWatch()
	}

	store, err := sqlite.NewStore("")
	if err != nil {
		return fmt.Errorf("init storage: %w", err)
	}
	defer store.Close()

	client := lms.NewClient(config)
	cache := services.NewStructureCache(client, store.StructureStore(), notifier)
	monitor := network.NewMonitor(config)

	runner := downloads.NewRunner(store.DownloadStore(), downloads.DefaultWorkers)
	defer runner.Close()

	reconciler := services.NewDownloadReconciler(
		runner, store.DownloadStore(), cache, notifier, monitor, config,
	)
	completion := services.NewCompletionTracker(client, notifier)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		if err := reconciler.Start(ctx); err != nil && ctx.Err() == nil {
			logger.Warn("download reconciler stopped: %v", err)
		}
	}()

	cli.SetServices(cli.Services{
		Loader:     cache,
		Downloads:  reconciler,
		Completion: completion,
		Auth:       client,
		API:        client,
		Config:     config,
		Notifier:   notifier,
	})
	return cli.Execute()
}
