package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/lipgloss"

	"github.com/Makepad-fr/dashboard/internal/form"
	"github.com/Makepad-fr/dashboard/internal/ui"
)

var fieldLabels = []string{"Name", "Value", "Phone"}

func (m Model) View() string {
	sections := []string{m.header()}

	if len(m.records) == 0 {
		sections = append(sections, mutedStyle.Render(ui.EmptyMessage))
	} else {
		sections = append(sections, m.table.View())
	}

	if m.ctrl.Prompting() {
		sections = append(sections, m.promptView())
	} else {
		sections = append(sections, m.formView())
	}

	if m.toast != "" {
		style := toastOKStyle
		if m.toastErr {
			style = toastErrorStyle
		}
		sections = append(sections, style.Render(m.toast))
	}

	sections = append(sections, m.help.View(m.helpKeys()))
	return strings.Join(sections, "\n")
}

func (m Model) header() string {
	total := 0.0
	for _, r := range m.records {
		total += r.Value
	}
	return fmt.Sprintf("%s   %s %d  %s %s",
		titleStyle.Render("Records"),
		accentStyle.Render("Count"), len(m.records),
		successStyle.Render("Total"), form.FormatValue(total),
	)
}

func (m Model) formView() string {
	lines := []string{titleStyle.Render(m.ctrl.Title())}
	for i, in := range m.inputs {
		label := labelStyle
		if m.focus == focusForm && i == m.field {
			label = focusedLabelStyle
		}
		lines = append(lines, label.Render(fieldLabels[i])+in.View())
	}

	actions := "[enter] " + m.ctrl.SubmitLabel()
	if m.ctrl.CanCancel() {
		actions += "   [esc] Cancel Edit"
	}
	lines = append(lines, mutedStyle.Render(actions))

	style := panelStyle
	if m.focus == focusForm {
		style = focusedPanelStyle
	}
	return style.Render(strings.Join(lines, "\n"))
}

func (m Model) promptView() string {
	id, _ := m.ctrl.PendingDeleteID()
	name := ""
	for _, r := range m.records {
		if r.ID == id {
			name = r.Name
			break
		}
	}
	body := lipgloss.JoinVertical(lipgloss.Center,
		errorStyle.Render("Confirm deletion"),
		"",
		fmt.Sprintf("Delete %q (id %d)?", name, id),
		"This cannot be undone.",
		"",
		mutedStyle.Render("[y] Delete   [n] Cancel"),
	)
	box := modalStyle.Render(body)
	if m.width > 0 {
		return lipgloss.PlaceHorizontal(m.width, lipgloss.Center, box)
	}
	return box
}

func (m Model) helpKeys() help.KeyMap {
	switch {
	case m.ctrl.Prompting():
		return promptKeys{m.keys}
	case m.focus == focusForm:
		return formKeys{m.keys}
	}
	return tableKeys{m.keys}
}
