// Package tui provides interactive terminal UI components using BubbleTea.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// PickerAction represents the action taken in the analysis picker.
type PickerAction int

const (
	// PickerActionNone means no action was taken (user quit).
	PickerActionNone PickerAction = iota
	// PickerActionSelect means the user confirmed a selection.
	PickerActionSelect
)

// PickerItem is one selectable analysis.
type PickerItem struct {
	ID   string
	Name string
}

// PickerResult contains the result of the picker interaction.
type PickerResult struct {
	Action   PickerAction
	Selected []PickerItem
}

// pickerKeyMap defines the key bindings for the analysis picker.
type pickerKeyMap struct {
	Up      key.Binding
	Down    key.Binding
	Toggle  key.Binding
	Confirm key.Binding
	Quit    key.Binding
}

func defaultPickerKeyMap() pickerKeyMap {
	return pickerKeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		Toggle: key.NewBinding(
			key.WithKeys(" "),
			key.WithHelp("space", "toggle"),
		),
		Confirm: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "confirm"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "esc", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// PickerModel is the BubbleTea model for choosing analyses to export.
type PickerModel struct {
	items    []PickerItem
	cursor   int
	checked  map[int]bool
	keys     pickerKeyMap
	result   PickerResult
	width    int
	height   int
	quitting bool
}

// Styles for the analysis picker.
var pickerStyles = struct {
	Title    lipgloss.Style
	Help     lipgloss.Style
	Item     lipgloss.Style
	Selected lipgloss.Style
	Checked  lipgloss.Style
	Status   lipgloss.Style
}{
	Title:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("6")).Padding(0, 1),
	Help:     lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
	Item:     lipgloss.NewStyle().Padding(0, 2),
	Selected: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("229")).Background(lipgloss.Color("57")).Padding(0, 2),
	Checked:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("2")),
	Status:   lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Padding(0, 1),
}

// NewPickerModel creates a picker over the given analyses.
func NewPickerModel(items []PickerItem) PickerModel {
	return PickerModel{
		items:   items,
		checked: make(map[int]bool),
		keys:    defaultPickerKeyMap(),
	}
}

// Init implements tea.Model.
func (m PickerModel) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m PickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.Up):
			if m.cursor > 0 {
				m.cursor--
			}
			return m, nil
		case key.Matches(msg, m.keys.Down):
			if m.cursor < len(m.items)-1 {
				m.cursor++
			}
			return m, nil
		case key.Matches(msg, m.keys.Toggle):
			m.checked[m.cursor] = !m.checked[m.cursor]
			return m, nil
		case key.Matches(msg, m.keys.Confirm):
			m.result = PickerResult{
				Action:   PickerActionSelect,
				Selected: m.selectedItems(),
			}
			m.quitting = true
			return m, tea.Quit
		}
	}

	return m, nil
}

// selectedItems returns the checked analyses, or the one under the cursor
// when nothing is checked.
func (m PickerModel) selectedItems() []PickerItem {
	var selected []PickerItem
	for i, item := range m.items {
		if m.checked[i] {
			selected = append(selected, item)
		}
	}
	if len(selected) == 0 && len(m.items) > 0 {
		selected = []PickerItem{m.items[m.cursor]}
	}
	return selected
}

// View implements tea.Model.
func (m PickerModel) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(pickerStyles.Title.Render("Export Analyses"))
	b.WriteString("\n\n")

	for i, item := range m.items {
		mark := "[ ]"
		if m.checked[i] {
			mark = pickerStyles.Checked.Render("[x]")
		}
		line := fmt.Sprintf("%s %s (%s)", mark, item.Name, item.ID)
		if i == m.cursor {
			b.WriteString(pickerStyles.Selected.Render("> " + line))
		} else {
			b.WriteString(pickerStyles.Item.Render("  " + line))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(pickerStyles.Status.Render(fmt.Sprintf("%d of %d selected", len(m.checkedIndexes()), len(m.items))))
	b.WriteString("\n")
	keys := []string{"↑/↓ navigate", "space toggle", "enter confirm", "q quit"}
	b.WriteString(pickerStyles.Help.Render(strings.Join(keys, " • ")))

	return b.String()
}

func (m PickerModel) checkedIndexes() []int {
	var idx []int
	for i := range m.items {
		if m.checked[i] {
			idx = append(idx, i)
		}
	}
	return idx
}

// Result returns the result of the user interaction.
func (m PickerModel) Result() PickerResult {
	return m.result
}

// RunPicker runs the interactive analysis picker.
func RunPicker(items []PickerItem) (PickerResult, error) {
	model := NewPickerModel(items)
	finalModel, err := tea.NewProgram(model, tea.WithAltScreen()).Run()
	if err != nil {
		return PickerResult{}, err
	}

	if m, ok := finalModel.(PickerModel); ok {
		return m.Result(), nil
	}

	return PickerResult{}, nil
}
