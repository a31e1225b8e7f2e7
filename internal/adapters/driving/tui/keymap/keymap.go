// Package keymap defines keybindings for the unit pager.
package keymap

import (
	"github.com/charmbracelet/bubbles/key"
)

// KeyMap defines all keybindings for the pager.
type KeyMap struct {
	// Quit exits the pager.
	Quit key.Binding

	// Help toggles the help view.
	Help key.Binding

	// Prev moves to the previous block.
	Prev key.Binding

	// Next moves to the next block.
	Next key.Binding

	// NextSection jumps to the first block of the next section.
	NextSection key.Binding

	// Goto prompts for a block id to jump to.
	Goto key.Binding

	// Download downloads the open section's content.
	Download key.Binding

	// Remove deletes the open section's local copies.
	Remove key.Binding

	// Confirm submits the goto prompt.
	Confirm key.Binding

	// Cancel dismisses the goto prompt.
	Cancel key.Binding
}

// DefaultKeyMap returns the default keybindings.
func DefaultKeyMap() *KeyMap {
	return &KeyMap{
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Prev: key.NewBinding(
			key.WithKeys("left", "h"),
			key.WithHelp("←/h", "previous"),
		),
		Next: key.NewBinding(
			key.WithKeys("right", "l"),
			key.WithHelp("→/l", "next"),
		),
		NextSection: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "next section"),
		),
		Goto: key.NewBinding(
			key.WithKeys("g"),
			key.WithHelp("g", "go to block"),
		),
		Download: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "download section"),
		),
		Remove: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "remove downloads"),
		),
		Confirm: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "go"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "cancel"),
		),
	}
}

// ShortHelp returns the bindings shown in the footer.
func (k *KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Prev, k.Next, k.NextSection, k.Download, k.Help, k.Quit}
}

// FullHelp returns all bindings for the expanded help view.
func (k *KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Prev, k.Next, k.NextSection, k.Goto},
		{k.Download, k.Remove},
		{k.Help, k.Quit},
	}
}
