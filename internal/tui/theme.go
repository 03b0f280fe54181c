package tui

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"
)

// Theme holds the styles of the browser
type Theme struct {
	TitleStyle         lipgloss.Style
	BorderStyle        lipgloss.Style
	PreviewBorderStyle lipgloss.Style
	PreviewStyle       lipgloss.Style
	NormalItemStyle    lipgloss.Style
	SelectedItemStyle  lipgloss.Style
	DirectoryStyle     lipgloss.Style
	MountStyle         lipgloss.Style
	FileStyle          lipgloss.Style
	StatusBarStyle     lipgloss.Style
	ErrorStyle         lipgloss.Style
	CommandStyle       lipgloss.Style
	HelpStyle          lipgloss.Style
}

func DefaultTheme() *Theme {
	return &Theme{
		TitleStyle: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("230")).
			Background(lipgloss.Color("62")).
			Padding(0, 1),
		BorderStyle: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")),
		PreviewBorderStyle: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("241")),
		PreviewStyle:      lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
		NormalItemStyle:   lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
		SelectedItemStyle: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("230")).Background(lipgloss.Color("57")),
		DirectoryStyle:    lipgloss.NewStyle().Foreground(lipgloss.Color("75")),
		MountStyle:        lipgloss.NewStyle().Foreground(lipgloss.Color("178")),
		FileStyle:         lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
		StatusBarStyle:    lipgloss.NewStyle().Foreground(lipgloss.Color("252")).Background(lipgloss.Color("236")).Padding(0, 1),
		ErrorStyle:        lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
		CommandStyle:      lipgloss.NewStyle().Foreground(lipgloss.Color("229")),
		HelpStyle:         lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
	}
}

// KeyMap defines the key bindings of the browser
type KeyMap struct {
	Up            key.Binding
	Down          key.Binding
	PageUp        key.Binding
	PageDown      key.Binding
	Top           key.Binding
	Bottom        key.Binding
	Enter         key.Binding
	Back          key.Binding
	TogglePreview key.Binding
	Refresh       key.Binding
	NewFile       key.Binding
	NewDir        key.Binding
	Delete        key.Binding
	Rename        key.Binding
	Command       key.Binding
	Help          key.Binding
	Quit          key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up:            key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:          key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		PageUp:        key.NewBinding(key.WithKeys("pgup", "ctrl+u"), key.WithHelp("pgup", "page up")),
		PageDown:      key.NewBinding(key.WithKeys("pgdown", "ctrl+d"), key.WithHelp("pgdn", "page down")),
		Top:           key.NewBinding(key.WithKeys("home", "g"), key.WithHelp("g", "top")),
		Bottom:        key.NewBinding(key.WithKeys("end", "G"), key.WithHelp("G", "bottom")),
		Enter:         key.NewBinding(key.WithKeys("enter", "l"), key.WithHelp("enter", "open")),
		Back:          key.NewBinding(key.WithKeys("backspace", "h"), key.WithHelp("h", "parent")),
		TogglePreview: key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "preview")),
		Refresh:       key.NewBinding(key.WithKeys("ctrl+r"), key.WithHelp("ctrl+r", "refresh")),
		NewFile:       key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "new file")),
		NewDir:        key.NewBinding(key.WithKeys("N"), key.WithHelp("N", "new dir")),
		Delete:        key.NewBinding(key.WithKeys("d", "delete"), key.WithHelp("d", "delete")),
		Rename:        key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "rename")),
		Command:       key.NewBinding(key.WithKeys(":"), key.WithHelp(":", "command")),
		Help:          key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:          key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Enter, k.Back, k.Command, k.Help, k.Quit}
}

func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.PageUp, k.PageDown, k.Top, k.Bottom},
		{k.Enter, k.Back, k.TogglePreview, k.Refresh},
		{k.NewFile, k.NewDir, k.Delete, k.Rename},
		{k.Command, k.Help, k.Quit},
	}
}
