package tui

import (
	"bytes"
	"fmt"
	"path"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/mwantia/rtvfs/log"
	"github.com/mwantia/rtvfs/shell"
)

// PreviewLimit is the number of bytes read for the preview pane.
const PreviewLimit = 4096

// Mode represents the current interaction mode
type Mode int

const (
	ModeNormal Mode = iota
	ModeCommand
	ModeInput
	ModeHelp
)

// InputType represents what kind of input we're collecting
type InputType int

const (
	InputNewFile InputType = iota
	InputNewDir
	InputRename
	InputDelete
	InputCommand
)

// Model represents the state of the browser
type Model struct {
	adapter *VFSAdapter
	shell   *shell.Shell
	log     *log.Logger
	theme   *Theme
	keys    KeyMap
	help    help.Model

	currentPath string
	previousDir string
	entries     []*Entry
	cursor      int
	offset      int

	width          int
	height         int
	showPreview    bool
	previewContent string
	previewError   error
	previewGen     int

	mode      Mode
	inputType InputType
	textInput textinput.Model

	statusMsg  string
	errorMsg   string
	commandOut string
}

func NewModel(adapter *VFSAdapter, sh *shell.Shell, logger *log.Logger) *Model {
	ti := textinput.New()
	ti.Placeholder = "Enter command..."
	ti.CharLimit = 256

	return &Model{
		adapter:     adapter,
		shell:       sh,
		log:         logger,
		theme:       DefaultTheme(),
		keys:        DefaultKeyMap(),
		help:        help.New(),
		currentPath: "/",
		showPreview: true,
		textInput:   ti,
	}
}

func (m *Model) Init() tea.Cmd {
	return tea.Batch(
		m.loadDirectory(),
		textinput.Blink,
	)
}

// CurrentPath returns the directory being browsed.
func (m *Model) CurrentPath() string {
	return m.currentPath
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case directoryLoadedMsg:
		m.entries = msg.entries
		m.errorMsg = msg.error

		if m.previousDir != "" {
			for i, entry := range m.entries {
				if entry.Name == m.previousDir {
					m.cursor = i
					visibleLines := m.getVisibleLines()
					if m.cursor >= m.offset+visibleLines {
						m.offset = m.cursor - visibleLines + 1
					} else if m.cursor < m.offset {
						m.offset = m.cursor
					}
					break
				}
			}
			m.previousDir = ""
		} else {
			if len(m.entries) > 0 && m.cursor >= len(m.entries) {
				m.cursor = len(m.entries) - 1
			}
			if m.cursor < 0 {
				m.cursor = 0
			}
		}
		return m, m.updatePreview()

	case previewLoadedMsg:
		if msg.generation == m.previewGen {
			m.previewContent = msg.content
			m.previewError = msg.err
		} else {
			m.log.Debug("Update: ignoring stale preview (gen %d, current %d)", msg.generation, m.previewGen)
		}
		return m, nil

	case commandExecutedMsg:
		m.commandOut = msg.output
		m.errorMsg = msg.error
		m.statusMsg = "Command executed"
		return m, m.reloadKeeping(msg.error)

	case errorMsg:
		m.errorMsg = string(msg)
		return m, nil

	case tea.KeyMsg:
		return m.handleKeyPress(msg)
	}

	if m.mode == ModeCommand || m.mode == ModeInput {
		var cmd tea.Cmd
		m.textInput, cmd = m.textInput.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m *Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.mode {
	case ModeCommand, ModeInput:
		return m.handleInputMode(msg)
	case ModeHelp:
		return m.handleHelpMode(msg)
	}
	return m.handleNormalMode(msg)
}

func (m *Model) handleNormalMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.mode = ModeHelp
		return m, nil

	case key.Matches(msg, m.keys.Up):
		m.moveCursor(-1)
		return m, m.updatePreview()

	case key.Matches(msg, m.keys.Down):
		m.moveCursor(1)
		return m, m.updatePreview()

	case key.Matches(msg, m.keys.PageUp):
		m.moveCursor(-10)
		return m, m.updatePreview()

	case key.Matches(msg, m.keys.PageDown):
		m.moveCursor(10)
		return m, m.updatePreview()

	case key.Matches(msg, m.keys.Top):
		m.cursor = 0
		m.offset = 0
		return m, m.updatePreview()

	case key.Matches(msg, m.keys.Bottom):
		m.moveCursor(len(m.entries))
		return m, m.updatePreview()

	case key.Matches(msg, m.keys.Enter):
		return m, m.enterDirectory()

	case key.Matches(msg, m.keys.Back):
		return m, m.goBack()

	case key.Matches(msg, m.keys.TogglePreview):
		m.showPreview = !m.showPreview
		return m, m.updatePreview()

	case key.Matches(msg, m.keys.Refresh):
		return m, m.loadDirectory()

	case key.Matches(msg, m.keys.NewFile):
		m.startInput(InputNewFile, "New file name:")
		return m, nil

	case key.Matches(msg, m.keys.NewDir):
		m.startInput(InputNewDir, "New directory name:")
		return m, nil

	case key.Matches(msg, m.keys.Delete):
		if entry := m.currentEntry(); entry != nil {
			m.startInput(InputDelete, fmt.Sprintf("Delete %s? (y/n):", entry.Name))
		}
		return m, nil

	case key.Matches(msg, m.keys.Rename):
		if entry := m.currentEntry(); entry != nil {
			m.startInput(InputRename, "New name:")
			m.textInput.SetValue(entry.Name)
		}
		return m, nil

	case key.Matches(msg, m.keys.Command):
		m.startInput(InputCommand, "ls -l "+m.currentPath)
		return m, nil
	}

	return m, nil
}

func (m *Model) handleInputMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEscape:
		m.cancelInput()
		return m, nil

	case tea.KeyEnter:
		return m, m.submitInput()
	}

	var cmd tea.Cmd
	m.textInput, cmd = m.textInput.Update(msg)
	return m, cmd
}

func (m *Model) handleHelpMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Help) || key.Matches(msg, m.keys.Quit) {
		m.mode = ModeNormal
	}
	return m, nil
}

func (m *Model) startInput(inputType InputType, prompt string) {
	m.mode = ModeInput
	if inputType == InputCommand {
		m.mode = ModeCommand
	}
	m.inputType = inputType
	m.textInput.Placeholder = prompt
	m.textInput.SetValue("")
	m.textInput.Focus()
	m.errorMsg = ""
	m.statusMsg = ""
}

func (m *Model) cancelInput() {
	m.mode = ModeNormal
	m.textInput.Blur()
	m.textInput.SetValue("")
}

func (m *Model) submitInput() tea.Cmd {
	value := strings.TrimSpace(m.textInput.Value())
	m.cancelInput()

	if value == "" {
		return nil
	}

	switch m.inputType {
	case InputNewFile:
		return m.createFile(value)
	case InputNewDir:
		return m.createDirectory(value)
	case InputRename:
		return m.renameEntry(value)
	case InputDelete:
		if v := strings.ToLower(value); v == "y" || v == "yes" {
			return m.deleteEntry()
		}
		return nil
	case InputCommand:
		return m.executeCommand(value)
	}

	return nil
}

func (m *Model) moveCursor(delta int) {
	if len(m.entries) == 0 {
		return
	}

	m.cursor = min(max(m.cursor+delta, 0), len(m.entries)-1)

	visibleLines := m.getVisibleLines()
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+visibleLines {
		m.offset = m.cursor - visibleLines + 1
	}
}

// getVisibleLines returns how many entries fit between title, status and help.
func (m *Model) getVisibleLines() int {
	return max(m.height-8, 5)
}

func (m *Model) currentEntry() *Entry {
	if m.cursor >= 0 && m.cursor < len(m.entries) {
		return m.entries[m.cursor]
	}
	return nil
}

// directoryLoadedMsg replaces the listing. error is shown in the status bar
// afterwards, so a reload does not hide the failure that caused it.
type directoryLoadedMsg struct {
	entries []*Entry
	error   string
}

type previewLoadedMsg struct {
	content    string
	err        error
	generation int
}

type commandExecutedMsg struct {
	output string
	error  string
}

type errorMsg string

func (m *Model) loadDirectory() tea.Cmd {
	return m.reloadKeeping("")
}

// reloadKeeping lists the current directory and keeps errText as the status error.
func (m *Model) reloadKeeping(errText string) tea.Cmd {
	dir := m.currentPath
	return func() tea.Msg {
		entries, err := m.adapter.ListDirectory(dir)
		if err != nil {
			return errorMsg(fmt.Sprintf("Failed to load %s: %v", dir, err))
		}
		return directoryLoadedMsg{entries: entries, error: errText}
	}
}

// updatePreview only reads regular files, character devices would block.
func (m *Model) updatePreview() tea.Cmd {
	if !m.showPreview {
		return nil
	}

	m.previewGen++
	gen := m.previewGen

	entry := m.currentEntry()
	if entry == nil || !entry.IsRegular() {
		return func() tea.Msg {
			return previewLoadedMsg{generation: gen}
		}
	}

	p := entry.Path
	return func() tea.Msg {
		content, err := m.adapter.Preview(p, PreviewLimit)
		if err != nil {
			m.log.Debug("updatePreview: gen %d failed for %s: %v", gen, p, err)
		}
		return previewLoadedMsg{content: content, err: err, generation: gen}
	}
}

func (m *Model) enterDirectory() tea.Cmd {
	entry := m.currentEntry()
	if entry == nil {
		return nil
	}

	if !entry.IsDir() {
		m.statusMsg = fmt.Sprintf("Not a directory: %s", entry.Name)
		return nil
	}

	m.currentPath = entry.Path
	m.previousDir = ""
	m.cursor = 0
	m.offset = 0
	return m.loadDirectory()
}

func (m *Model) goBack() tea.Cmd {
	if m.currentPath == "/" {
		return nil
	}

	m.previousDir = path.Base(m.currentPath)
	m.currentPath = path.Dir(m.currentPath)
	m.cursor = 0
	m.offset = 0
	return m.loadDirectory()
}

// reload runs op and then lists the current directory again.
func (m *Model) reload(what string, op func() error) tea.Cmd {
	return func() tea.Msg {
		if err := op(); err != nil {
			return errorMsg(fmt.Sprintf("Failed to %s: %v", what, err))
		}
		return m.loadDirectory()()
	}
}

func (m *Model) createFile(name string) tea.Cmd {
	p := path.Join(m.currentPath, name)
	return m.reload("create file", func() error {
		return m.adapter.CreateFile(p)
	})
}

func (m *Model) createDirectory(name string) tea.Cmd {
	p := path.Join(m.currentPath, name)
	return m.reload("create directory", func() error {
		return m.adapter.CreateDirectory(p)
	})
}

func (m *Model) deleteEntry() tea.Cmd {
	entry := m.currentEntry()
	if entry == nil {
		return nil
	}
	return m.reload("delete", func() error {
		return m.adapter.Delete(entry)
	})
}

func (m *Model) renameEntry(name string) tea.Cmd {
	entry := m.currentEntry()
	if entry == nil {
		return nil
	}
	dst := path.Join(m.currentPath, name)
	return m.reload("rename", func() error {
		return m.adapter.Rename(entry.Path, dst)
	})
}

func (m *Model) executeCommand(line string) tea.Cmd {
	return func() tea.Msg {
		var out bytes.Buffer
		code := m.shell.Exec(m.adapter.ctx, &out, line)

		msg := commandExecutedMsg{output: strings.TrimRight(out.String(), "\n")}
		if code != 0 {
			msg.error = fmt.Sprintf("Command exited with code %d", code)
		}
		return msg
	}
}
