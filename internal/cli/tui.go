package cli

import (
	"fmt"
	"sort"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/tfcanvas/tfcanvas/pkg/diff"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// =============================================================================
// changeListModel - Interactive changed-block browser
// =============================================================================

// changeListModel is the bubbletea model for browsing changed blocks of a
// comparison. The left list holds every created, modified, or deleted block
// in address order; enter toggles a detail pane with the config delta.
type changeListModel struct {
	comparison *diff.BranchComparison
	entries    []diff.BlockDiff

	cursor   int
	offset   int
	height   int
	showDiff bool
}

// newChangeListModel collects the changed blocks of a comparison in address
// order.
func newChangeListModel(c *diff.BranchComparison) changeListModel {
	var entries []diff.BlockDiff
	for _, d := range c.PerBlock {
		if d.Classification != diff.Unchanged {
			entries = append(entries, d)
		}
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Address < entries[j].Address })

	return changeListModel{
		comparison: c,
		entries:    entries,
		height:     15,
	}
}

func (m changeListModel) Init() tea.Cmd {
	return nil
}

func (m changeListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			if m.showDiff {
				m.showDiff = false
				return m, nil
			}
			return m, tea.Quit
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
				if m.cursor < m.offset {
					m.offset = m.cursor
				}
			}
		case "down", "j":
			if m.cursor < len(m.entries)-1 {
				m.cursor++
				if m.cursor >= m.offset+m.height {
					m.offset = m.cursor - m.height + 1
				}
			}
		case "enter":
			if len(m.entries) > 0 {
				m.showDiff = !m.showDiff
			}
		}
	case tea.WindowSizeMsg:
		m.height = msg.Height - 6
		if m.height < 5 {
			m.height = 5
		}
	}
	return m, nil
}

func (m changeListModel) View() string {
	var b strings.Builder

	title := fmt.Sprintf("Changes: %s → %s", m.comparison.BaseLabel, m.comparison.CompareLabel)
	b.WriteString(StyleTitle.Render(title))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ details  q quit"))
	b.WriteString("\n\n")

	if len(m.entries) == 0 {
		b.WriteString(listDimStyle.Render("No changes."))
		b.WriteString("\n")
		return b.String()
	}

	if m.showDiff {
		b.WriteString(m.detailView(m.entries[m.cursor]))
		return b.String()
	}

	end := m.offset + m.height
	if end > len(m.entries) {
		end = len(m.entries)
	}
	for i := m.offset; i < end; i++ {
		e := m.entries[i]

		cursor := "  "
		style := listNormalStyle
		if i == m.cursor {
			cursor = "▸ "
			style = listSelectedStyle
		}

		marker := classificationStyle(e.Classification).Render(string(e.Classification))
		b.WriteString(cursor + style.Render(e.Address) + "  " + marker)
		b.WriteString("\n")
	}

	return b.String()
}

// detailView renders the config and dependency delta of one block.
func (m changeListModel) detailView(e diff.BlockDiff) string {
	var b strings.Builder

	b.WriteString(classificationStyle(e.Classification).Render(string(e.Classification)))
	b.WriteString(" " + listSelectedStyle.Render(e.Address))
	b.WriteString("\n")
	if e.Block.GroupPath != "" {
		b.WriteString(listDimStyle.Render("group: " + e.Block.GroupPath))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	if e.Config.Empty() && e.Dependencies.Empty() {
		b.WriteString(listDimStyle.Render("No attribute changes recorded."))
		b.WriteString("\n")
		return b.String()
	}

	if e.Config != nil {
		for _, key := range sortedKeys(e.Config.Added) {
			b.WriteString(styleCreated.Render(fmt.Sprintf("+ %s = %v", key, e.Config.Added[key])))
			b.WriteString("\n")
		}
		for _, key := range sortedKeys(e.Config.Removed) {
			b.WriteString(styleDeleted.Render(fmt.Sprintf("- %s = %v", key, e.Config.Removed[key])))
			b.WriteString("\n")
		}
		modKeys := make([]string, 0, len(e.Config.Modified))
		for key := range e.Config.Modified {
			modKeys = append(modKeys, key)
		}
		sort.Strings(modKeys)
		for _, key := range modKeys {
			ch := e.Config.Modified[key]
			b.WriteString(styleModified.Render(fmt.Sprintf("~ %s = %v → %v", key, ch.Old, ch.New)))
			b.WriteString("\n")
		}
	}

	if e.Dependencies != nil {
		for _, d := range e.Dependencies.Added {
			b.WriteString(styleCreated.Render(fmt.Sprintf("+ dep %s → %s", d.From, d.To)))
			b.WriteString("\n")
		}
		for _, d := range e.Dependencies.Removed {
			b.WriteString(styleDeleted.Render(fmt.Sprintf("- dep %s → %s", d.From, d.To)))
			b.WriteString("\n")
		}
	}

	return b.String()
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
