package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/opencourse-labs/stride-cli/internal/adapters/driving/tui/keymap"
	"github.com/opencourse-labs/stride-cli/internal/adapters/driving/tui/messages"
	"github.com/opencourse-labs/stride-cli/internal/adapters/driving/tui/styles"
	"github.com/opencourse-labs/stride-cli/internal/core/domain"
)

// App is the unit pager following the Elm architecture.
// It implements tea.Model for use with bubbletea.
type App struct {
	// ports provides access to core services via driving ports.
	ports *Ports

	// ctx is the context for cancellation.
	ctx context.Context

	// courseID scopes completion reporting.
	courseID string

	// styles holds the pager styles.
	styles *styles.Styles

	// keys holds the keybindings.
	keys *keymap.KeyMap

	// snapshot is the latest download state, nil until the first
	// emission arrives.
	snapshot domain.DownloadSnapshot

	// snapshots is the download status subscription, nil when no
	// download manager is wired.
	snapshots <-chan domain.DownloadSnapshot

	// cancelSub ends the subscription on quit.
	cancelSub func()

	// gotoInput is the block-id prompt.
	gotoInput textinput.Model

	// gotoMode indicates the prompt is open.
	gotoMode bool

	// showHelp indicates the expanded help view is open.
	showHelp bool

	// status is a transient message shown in the footer.
	status string

	// err holds the last error that occurred.
	err error

	// width and height are terminal dimensions.
	width  int
	height int

	// ready indicates the first window size has arrived.
	ready bool
}

// Ensure App implements tea.Model.
var _ tea.Model = (*App)(nil)

// NewApp creates the pager for one open unit.
func NewApp(ports *Ports, courseID string) (*App, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("creating pager: %w", err)
	}

	input := textinput.New()
	input.Placeholder = "block id"
	input.CharLimit = 256

	a := &App{
		ports:     ports,
		ctx:       context.Background(),
		courseID:  courseID,
		styles:    styles.DefaultStyles(),
		keys:      keymap.DefaultKeyMap(),
		gotoInput: input,
	}
	if ports.Downloads != nil {
		a.snapshot = ports.Downloads.Snapshot()
		a.snapshots, a.cancelSub = ports.Downloads.Subscribe()
	}
	return a, nil
}

// WithContext sets the context for the app.
func (a *App) WithContext(ctx context.Context) *App {
	if ctx != nil {
		a.ctx = ctx
	}
	return a
}

// Init implements tea.Model.
func (a *App) Init() tea.Cmd {
	cmds := []tea.Cmd{
		tea.SetWindowTitle("stride"),
		a.markCurrentComplete(),
	}
	if a.snapshots != nil {
		cmds = append(cmds, waitForSnapshot(a.snapshots))
	}
	return tea.Batch(cmds...)
}

// waitForSnapshot blocks on the status stream and re-arms after every
// emission.
func waitForSnapshot(ch <-chan domain.DownloadSnapshot) tea.Cmd {
	return func() tea.Msg {
		snapshot, ok := <-ch
		if !ok {
			return messages.StreamClosed{}
		}
		return messages.SnapshotReceived{Snapshot: snapshot}
	}
}

// markCurrentComplete reports the current leaf as completed. Viewing a
// block completes it; duplicates are filtered by the reporter.
func (a *App) markCurrentComplete() tea.Cmd {
	if a.ports.Completion == nil {
		return nil
	}
	leaf := a.ports.Navigator.Current()
	if leaf == nil || leaf.IsCompleted() || a.ports.Completion.IsCompleted(leaf.ID) {
		return nil
	}
	ctx, courseID, id := a.ctx, a.courseID, leaf.ID
	reporter := a.ports.Completion
	return func() tea.Msg {
		err := reporter.MarkCompleted(ctx, courseID, []string{id})
		return messages.CompletionReported{BlockID: id, Err: err}
	}
}

// requestDownload enqueues the open section's downloadable content.
func (a *App) requestDownload() tea.Cmd {
	seq := a.ports.Navigator.CurrentSequential()
	if a.ports.Downloads == nil || seq == nil {
		return nil
	}
	ctx, downloads, id := a.ctx, a.ports.Downloads, seq.ID
	return func() tea.Msg {
		return messages.DownloadRequested{Err: downloads.RequestDownload(ctx, id)}
	}
}

// requestRemoval deletes the open section's local copies.
func (a *App) requestRemoval() tea.Cmd {
	seq := a.ports.Navigator.CurrentSequential()
	if a.ports.Downloads == nil || seq == nil {
		return nil
	}
	ctx, downloads, id := a.ctx, a.ports.Downloads, seq.ID
	return func() tea.Msg {
		return messages.RemovalDone{Err: downloads.RequestRemoval(ctx, id)}
	}
}

// Update implements tea.Model.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.ready = true
		return a, nil

	case messages.SnapshotReceived:
		a.snapshot = msg.Snapshot
		return a, waitForSnapshot(a.snapshots)

	case messages.StreamClosed:
		a.snapshots = nil
		return a, nil

	case messages.CompletionReported:
		a.err = msg.Err
		return a, nil

	case messages.DownloadRequested:
		if msg.Err != nil {
			a.err = msg.Err
			a.status = ""
		} else {
			a.err = nil
			a.status = "Section download queued."
		}
		return a, nil

	case messages.RemovalDone:
		if msg.Err != nil {
			a.err = msg.Err
		} else {
			a.err = nil
			a.status = "Local copies removed."
		}
		return a, nil

	case tea.KeyMsg:
		if a.gotoMode {
			return a.updateGotoPrompt(msg)
		}
		return a.updateKeys(msg)
	}

	return a, nil
}

// updateKeys handles keys in the normal (non-prompt) state.
func (a *App) updateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	nav := a.ports.Navigator

	switch {
	case key.Matches(msg, a.keys.Quit):
		if a.cancelSub != nil {
			a.cancelSub()
		}
		return a, tea.Quit

	case key.Matches(msg, a.keys.Help):
		a.showHelp = !a.showHelp
		return a, nil

	case key.Matches(msg, a.keys.Prev):
		a.status = ""
		if nav.MoveByOffset(-1) == nil && nav.IsFirstInContainer() {
			a.status = "Start of section."
		}
		return a, a.markCurrentComplete()

	case key.Matches(msg, a.keys.Next):
		a.status = ""
		if nav.MoveByOffset(1) == nil && nav.IsLastInContainer() {
			if next := nav.NextSequential(); next != nil {
				a.status = fmt.Sprintf("End of section. Press n for %q.", next.DisplayName)
			} else {
				a.status = "End of course."
			}
		}
		return a, a.markCurrentComplete()

	case key.Matches(msg, a.keys.NextSection):
		a.status = ""
		if nav.AdvanceToNextSection() == nil {
			a.status = "No next section."
		}
		return a, a.markCurrentComplete()

	case key.Matches(msg, a.keys.Goto):
		a.gotoMode = true
		a.gotoInput.SetValue("")
		return a, a.gotoInput.Focus()

	case key.Matches(msg, a.keys.Download):
		return a, a.requestDownload()

	case key.Matches(msg, a.keys.Remove):
		return a, a.requestRemoval()
	}

	return a, nil
}

// updateGotoPrompt handles keys while the block-id prompt is open.
func (a *App) updateGotoPrompt(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, a.keys.Cancel):
		a.gotoMode = false
		a.gotoInput.Blur()
		return a, nil

	case key.Matches(msg, a.keys.Confirm):
		id := strings.TrimSpace(a.gotoInput.Value())
		a.gotoMode = false
		a.gotoInput.Blur()
		if id == "" {
			return a, nil
		}
		if a.ports.Navigator.MoveToBlock(id) == nil {
			a.status = fmt.Sprintf("No block %q in this section.", id)
			return a, nil
		}
		a.status = ""
		return a, a.markCurrentComplete()
	}

	var cmd tea.Cmd
	a.gotoInput, cmd = a.gotoInput.Update(msg)
	return a, cmd
}

// View implements tea.Model.
func (a *App) View() string {
	if !a.ready {
		return "Loading..."
	}

	var b strings.Builder
	b.WriteString(a.viewHeader())
	b.WriteString("\n\n")
	b.WriteString(a.viewStrip())
	b.WriteString("\n\n")
	b.WriteString(a.viewCurrent())
	if a.gotoMode {
		b.WriteString("\n\n")
		b.WriteString(a.styles.InputField.Render("Go to: " + a.gotoInput.View()))
	}
	b.WriteString("\n\n")
	b.WriteString(a.viewFooter())
	return b.String()
}

func (a *App) viewHeader() string {
	nav := a.ports.Navigator
	var parts []string
	if ch := nav.CurrentChapter(); ch != nil {
		parts = append(parts, ch.DisplayName)
	}
	if seq := nav.CurrentSequential(); seq != nil {
		parts = append(parts, seq.DisplayName)
	}
	title := strings.Join(parts, " / ")
	if title == "" {
		title = "Unit"
	}

	position := ""
	if leaves := nav.Leaves(); len(leaves) > 0 && nav.CurrentIndex() >= 0 {
		position = a.styles.Muted.Render(fmt.Sprintf("  %d/%d", nav.CurrentIndex()+1, len(leaves)))
	}
	return a.styles.Title.Render(title) + position
}

// viewStrip renders one marker per leaf with the current one highlighted.
func (a *App) viewStrip() string {
	nav := a.ports.Navigator
	leaves := nav.Leaves()
	if len(leaves) == 0 {
		return a.styles.Muted.Render("This section has no content.")
	}

	var cells []string
	for i, leaf := range leaves {
		cell := a.leafGlyph(leaf)
		if i == nav.CurrentIndex() {
			cell = a.styles.Selected.Render(cell)
		}
		cells = append(cells, cell)
	}
	return strings.Join(cells, " ")
}

// leafGlyph picks a marker for a leaf: download state for downloadable
// blocks, completion otherwise.
func (a *App) leafGlyph(leaf *domain.Block) string {
	if leaf.IsDownloadable() {
		switch a.snapshot.StateOf(leaf.ID) {
		case domain.DownloadStateDownloaded:
			return a.styles.Success.Render("●")
		case domain.DownloadStateDownloading:
			return a.styles.Warning.Render("◐")
		case domain.DownloadStateWaiting:
			return a.styles.Warning.Render("○")
		}
	}
	if a.isCompleted(leaf) {
		return a.styles.Success.Render("✓")
	}
	return "·"
}

func (a *App) isCompleted(leaf *domain.Block) bool {
	if leaf.IsCompleted() {
		return true
	}
	return a.ports.Completion != nil && a.ports.Completion.IsCompleted(leaf.ID)
}

func (a *App) viewCurrent() string {
	leaf := a.ports.Navigator.Current()
	if leaf == nil {
		return a.styles.Muted.Render("Nothing to show.")
	}

	var b strings.Builder
	b.WriteString(a.styles.Subtitle.Render(leaf.DisplayName))
	b.WriteString("\n")
	meta := string(leaf.Type)
	if leaf.Graded {
		meta += ", graded"
	}
	if leaf.ContainsGatedContent {
		meta += ", gated"
	}
	if leaf.IsDownloadable() && leaf.DownloadSize > 0 {
		meta += fmt.Sprintf(", %d bytes", leaf.DownloadSize)
	}
	b.WriteString(a.styles.Muted.Render(meta))
	if leaf.WebURL != "" {
		b.WriteString("\n")
		b.WriteString(a.styles.Normal.Render(leaf.WebURL))
	}
	return b.String()
}

func (a *App) viewFooter() string {
	var lines []string
	if a.err != nil {
		lines = append(lines, a.styles.Error.Render(a.err.Error()))
	} else if a.status != "" {
		lines = append(lines, a.styles.Normal.Render(a.status))
	}

	if a.showHelp {
		for _, row := range a.keys.FullHelp() {
			lines = append(lines, a.styles.Help.Render(renderBindings(row)))
		}
	} else {
		lines = append(lines, a.styles.Help.Render(renderBindings(a.keys.ShortHelp())))
	}
	return a.styles.StatusBar.Render(strings.Join(lines, "\n"))
}

func renderBindings(bindings []key.Binding) string {
	var parts []string
	for _, b := range bindings {
		parts = append(parts, b.Help().Key+" "+b.Help().Desc)
	}
	return strings.Join(parts, "  •  ")
}
