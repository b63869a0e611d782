// Package tui is the interactive front end: the record table, the add/edit
// form and the delete confirmation, all drawn with Bubble Tea.
//
// Every data change goes through form.Controller, which persists through the
// store before the table is rebuilt. Quitting never needs a final save.
package tui

import (
	"errors"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/Makepad-fr/dashboard/internal/form"
	"github.com/Makepad-fr/dashboard/internal/model"
	"github.com/Makepad-fr/dashboard/internal/ui"
)

// ToastDuration is how long a status message stays on screen.
const ToastDuration = 3 * time.Second

// Lister is the read side of the record store.
type Lister interface {
	Records() []model.Record
}

type focusArea int

const (
	focusTable focusArea = iota
	focusForm
)

type clearToastMsg struct{ seq int }

type Model struct {
	store Lister
	ctrl  *form.Controller
	log   *zap.Logger

	records []model.Record
	table   table.Model
	inputs  []textinput.Model // name, value and, when collected, phone
	field   int
	focus   focusArea

	keys keyMap
	help help.Model

	toast    string
	toastErr bool
	toastSeq int

	width, height int
}

// New builds the model. The store must already be loaded.
func New(store Lister, ctrl *form.Controller, log *zap.Logger) Model {
	if log == nil {
		log = zap.NewNop()
	}
	t := table.New(
		table.WithColumns([]table.Column{
			{Title: "ID", Width: 15},
			{Title: "Name", Width: 24},
			{Title: "Value", Width: 12},
			{Title: "Phone", Width: 12},
		}),
		table.WithFocused(true),
		table.WithHeight(10),
	)

	m := Model{
		store: store,
		ctrl:  ctrl,
		log:   log,
		table: t,
		keys:  defaultKeys(),
		help:  help.New(),
	}
	m.inputs = newInputs(ctrl.RequiresPhone())
	m.refresh()
	return m
}

func newInputs(withPhone bool) []textinput.Model {
	placeholders := []string{"Record name", "0", "10 digits"}
	n := 2
	if withPhone {
		n = 3
	}
	inputs := make([]textinput.Model, n)
	for i := range inputs {
		ti := textinput.New()
		ti.Prompt = "> "
		ti.Placeholder = placeholders[i]
		ti.CharLimit = 200
		inputs[i] = ti
	}
	inputs[form.FieldValue].CharLimit = 32
	if withPhone {
		inputs[form.FieldPhone].CharLimit = 32
	}
	return inputs
}

// Run starts the program on the alternate screen and blocks until quit.
func Run(store Lister, ctrl *form.Controller, log *zap.Logger) error {
	p := tea.NewProgram(New(store, ctrl, log), tea.WithAltScreen())
	_, err := p.Run()
	return err
}

func (m Model) Init() tea.Cmd { return nil }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		m.resize()
		return m, nil

	case clearToastMsg:
		if msg.seq == m.toastSeq {
			m.toast = ""
		}
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		if m.ctrl.Prompting() {
			return m.updatePrompt(msg)
		}
		if m.focus == focusForm {
			return m.updateForm(msg)
		}
		return m.updateTable(msg)
	}

	var cmd tea.Cmd
	if m.focus == focusForm {
		m.inputs[m.field], cmd = m.inputs[m.field].Update(msg)
	} else {
		m.table, cmd = m.table.Update(msg)
	}
	return m, cmd
}

func (m Model) updateTable(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Add), msg.String() == "tab":
		cmd := m.focusForm(int(form.FieldName))
		return m, cmd

	case key.Matches(msg, m.keys.Edit):
		r, ok := m.selected()
		if !ok || !m.ctrl.Edit(r.ID) {
			return m, nil
		}
		m.loadFields()
		cmd := m.focusForm(int(form.FieldName))
		return m, cmd

	case key.Matches(msg, m.keys.Delete):
		if r, ok := m.selected(); ok {
			m.ctrl.RequestDelete(r.ID)
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m Model) updateForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Submit):
		return m.submit()

	case key.Matches(msg, m.keys.Cancel):
		if m.ctrl.CanCancel() {
			m.ctrl.CancelEdit()
			m.loadFields()
		}
		m.focusTable()
		return m, nil

	case key.Matches(msg, m.keys.Next):
		cmd := m.focusForm((m.field + 1) % len(m.inputs))
		return m, cmd

	case key.Matches(msg, m.keys.Prev):
		cmd := m.focusForm((m.field - 1 + len(m.inputs)) % len(m.inputs))
		return m, cmd
	}

	var cmd tea.Cmd
	m.inputs[m.field], cmd = m.inputs[m.field].Update(msg)
	return m, cmd
}

func (m Model) updatePrompt(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Confirm):
		wasEditing := m.ctrl.CanCancel()
		removed, err := m.ctrl.ConfirmDelete()
		m.refresh()
		if wasEditing && !m.ctrl.CanCancel() {
			m.loadFields()
		}
		if err != nil {
			m.log.Error("delete failed", zap.Error(err))
			cmd := m.showToast(err.Error(), true)
			return m, cmd
		}
		if removed {
			cmd := m.showToast("Record deleted.", false)
			return m, cmd
		}
	case key.Matches(msg, m.keys.Deny):
		m.ctrl.CancelDelete()
	}
	return m, nil
}

func (m Model) submit() (tea.Model, tea.Cmd) {
	m.storeFields()
	out, err := m.ctrl.Submit()

	var ve *form.ValidationError
	if errors.As(err, &ve) {
		cmd := tea.Batch(m.focusForm(int(ve.Field)), m.showToast(ve.Message, true))
		return m, cmd
	}

	m.loadFields()
	m.refresh()
	if err != nil {
		m.log.Error("submit failed", zap.Error(err))
		cmd := m.showToast(err.Error(), true)
		return m, cmd
	}

	if out.Created {
		m.table.GotoBottom()
		cmd := tea.Batch(m.focusForm(int(form.FieldName)), m.showToast("Record added.", false))
		return m, cmd
	}
	m.focusTable()
	cmd := m.showToast("Changes saved.", false)
	return m, cmd
}

// storeFields copies the text inputs into the controller.
func (m *Model) storeFields() {
	f := form.Fields{
		Name:  m.inputs[form.FieldName].Value(),
		Value: m.inputs[form.FieldValue].Value(),
	}
	if len(m.inputs) > int(form.FieldPhone) {
		f.Phone = m.inputs[form.FieldPhone].Value()
	}
	m.ctrl.Fields = f
}

// loadFields copies the controller's fields into the text inputs.
func (m *Model) loadFields() {
	m.inputs[form.FieldName].SetValue(m.ctrl.Fields.Name)
	m.inputs[form.FieldValue].SetValue(m.ctrl.Fields.Value)
	if len(m.inputs) > int(form.FieldPhone) {
		m.inputs[form.FieldPhone].SetValue(m.ctrl.Fields.Phone)
	}
	for i := range m.inputs {
		m.inputs[i].CursorEnd()
	}
}

func (m *Model) focusForm(field int) tea.Cmd {
	if field >= len(m.inputs) {
		field = 0
	}
	m.focus = focusForm
	m.field = field
	m.table.Blur()
	var cmd tea.Cmd
	for i := range m.inputs {
		if i == field {
			cmd = m.inputs[i].Focus()
		} else {
			m.inputs[i].Blur()
		}
	}
	return cmd
}

func (m *Model) focusTable() {
	m.focus = focusTable
	for i := range m.inputs {
		m.inputs[i].Blur()
	}
	m.table.Focus()
}

func (m *Model) showToast(text string, isErr bool) tea.Cmd {
	m.toastSeq++
	m.toast = text
	m.toastErr = isErr
	seq := m.toastSeq
	return tea.Tick(ToastDuration, func(time.Time) tea.Msg { return clearToastMsg{seq: seq} })
}

// refresh rebuilds the table rows from the store.
func (m *Model) refresh() {
	m.records = m.store.Records()
	rows := make([]table.Row, 0, len(m.records))
	for _, r := range m.records {
		rows = append(rows, table.Row(ui.Row(r)))
	}
	m.table.SetRows(rows)
	if c := m.table.Cursor(); c >= len(rows) && len(rows) > 0 {
		m.table.SetCursor(len(rows) - 1)
	}
}

func (m Model) selected() (model.Record, bool) {
	i := m.table.Cursor()
	if i < 0 || i >= len(m.records) {
		return model.Record{}, false
	}
	return m.records[i], true
}

func (m *Model) resize() {
	// header, form panel, help and toast take roughly this many rows
	reserved := 12 + len(m.inputs)
	if h := m.height - reserved; h > 3 {
		m.table.SetHeight(h)
	} else {
		m.table.SetHeight(3)
	}
	if w := m.width - 4; w > 0 {
		for i := range m.inputs {
			m.inputs[i].Width = w - 14
		}
	}
}
