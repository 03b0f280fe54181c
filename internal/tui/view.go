package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

func (m *Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	if m.mode == ModeHelp {
		return m.renderHelp()
	}
	return m.renderMain()
}

func (m *Model) renderMain() string {
	sections := []string{
		m.renderTitle(),
		m.renderContent(),
		m.renderStatus(),
	}

	if m.mode == ModeCommand || m.mode == ModeInput {
		sections = append(sections, m.renderInput())
	}
	if m.commandOut != "" {
		sections = append(sections, m.renderCommandOutput())
	}
	sections = append(sections, m.renderHelpBar())

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m *Model) renderTitle() string {
	return m.theme.TitleStyle.Render("rtvfs - " + m.currentPath)
}

func (m *Model) renderContent() string {
	height := m.getVisibleLines() + 2

	if !m.showPreview {
		return m.theme.BorderStyle.
			Width(m.width - 4).
			Height(height).
			Render(m.renderFileList())
	}

	leftWidth := m.width / 2
	rightWidth := m.width - leftWidth - 4

	list := m.theme.BorderStyle.
		Width(leftWidth).
		Height(height).
		Render(m.renderFileList())
	preview := m.theme.PreviewBorderStyle.
		Width(rightWidth).
		Height(height).
		Render(m.renderPreview())

	return lipgloss.JoinHorizontal(lipgloss.Top, list, preview)
}

func (m *Model) renderFileList() string {
	if len(m.entries) == 0 {
		return m.theme.NormalItemStyle.Render("(empty directory)")
	}

	end := min(m.offset+m.getVisibleLines(), len(m.entries))
	lines := make([]string, 0, end-m.offset)
	for i := m.offset; i < end; i++ {
		lines = append(lines, m.renderFileEntry(m.entries[i], i == m.cursor))
	}
	return strings.Join(lines, "\n")
}

func (m *Model) renderFileEntry(entry *Entry, selected bool) string {
	var style lipgloss.Style
	switch {
	case selected:
		style = m.theme.SelectedItemStyle
	case entry.Mount:
		style = m.theme.MountStyle
	case entry.IsDir():
		style = m.theme.DirectoryStyle
	default:
		style = m.theme.FileStyle
	}

	nameWidth := 40
	if m.showPreview {
		nameWidth = 30
	}

	name := entry.DisplayName()
	if len(name) > nameWidth {
		name = name[:nameWidth-3] + "..."
	} else {
		name += strings.Repeat(" ", nameWidth-len(name))
	}

	return style.Render(fmt.Sprintf("%s %s %10s", entry.Icon(), name, entry.DisplaySize()))
}

func (m *Model) renderPreview() string {
	entry := m.currentEntry()
	if entry == nil {
		return m.theme.PreviewStyle.Render("No file selected")
	}

	if !entry.IsRegular() {
		var info strings.Builder
		fmt.Fprintf(&info, "Name: %s\n", entry.Name)
		fmt.Fprintf(&info, "Path: %s\n", entry.Path)
		fmt.Fprintf(&info, "Type: %s\n", entry.Type)
		if entry.Mount {
			info.WriteString("Mount point\n")
		}
		return m.theme.PreviewStyle.Render(info.String())
	}

	if m.previewError != nil {
		return m.theme.ErrorStyle.Render(fmt.Sprintf("Error: %v", m.previewError))
	}
	if m.previewContent == "" {
		return m.theme.PreviewStyle.Render("(empty file)")
	}

	lines := strings.Split(m.previewContent, "\n")
	if maxLines := m.getVisibleLines() - 4; len(lines) > maxLines {
		lines = append(lines[:maxLines], "...")
	}

	info := fmt.Sprintf("File: %s\nSize: %s\n\n", entry.Name, entry.DisplaySize())
	return m.theme.PreviewStyle.Render(info + strings.Join(lines, "\n"))
}

func (m *Model) renderStatus() string {
	left := "0 items"
	if len(m.entries) > 0 {
		left = fmt.Sprintf("%d/%d items", m.cursor+1, len(m.entries))
	}

	right := m.statusMsg
	if m.errorMsg != "" {
		right = m.theme.ErrorStyle.Render(m.errorMsg)
	}

	spacing := max(m.width-lipgloss.Width(left)-lipgloss.Width(right)-4, 0)
	return m.theme.StatusBarStyle.Width(m.width).Render(left + strings.Repeat(" ", spacing) + right)
}

func (m *Model) renderInput() string {
	prompt := "> "
	if m.mode == ModeCommand {
		prompt = ": "
	}
	return m.theme.CommandStyle.Render(prompt + m.textInput.View())
}

func (m *Model) renderCommandOutput() string {
	lines := strings.Split(m.commandOut, "\n")
	if len(lines) > 5 {
		lines = append(lines[:5], "...")
	}

	return m.theme.PreviewBorderStyle.
		Width(m.width - 4).
		Render(strings.Join(lines, "\n"))
}

func (m *Model) renderHelpBar() string {
	return m.theme.HelpStyle.Render(m.help.ShortHelpView(m.keys.ShortHelp()))
}

func (m *Model) renderHelp() string {
	sections := []string{
		m.theme.TitleStyle.Render("rtvfs - Help"),
		"",
		m.help.FullHelpView(m.keys.FullHelp()),
		"",
		m.theme.TitleStyle.Render("Commands:"),
	}
	for _, cmd := range m.shell.Manager().List() {
		sections = append(sections, fmt.Sprintf("  %-28s %s", cmd.Usage(), cmd.Description()))
	}
	sections = append(sections, "", m.theme.HelpStyle.Render("Press ? or q to return"))

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}
