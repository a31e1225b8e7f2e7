// Package tui implements the interactive unit pager for stride.
// It is a driving adapter: a bubbletea model over the UnitNavigator,
// with download state and completion reporting folded in.
package tui

import (
	"errors"

	"github.com/opencourse-labs/stride-cli/internal/core/ports/driving"
)

// Ports aggregates the driving port interfaces the pager needs.
type Ports struct {
	// Navigator is the position state machine over the open section.
	Navigator driving.UnitNavigator

	// Downloads provides download state and bulk download intents.
	// Optional; without it the pager shows no download markers.
	Downloads driving.DownloadManager

	// Completion reports viewed blocks as completed.
	// Optional; without it nothing is reported.
	Completion driving.CompletionReporter
}

// Validate ensures the required ports are set.
func (p *Ports) Validate() error {
	if p == nil {
		return errors.New("ports is nil")
	}
	if p.Navigator == nil {
		return errors.New("navigator port is required")
	}
	return nil
}
