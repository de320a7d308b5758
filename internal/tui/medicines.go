package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/mrsinham/clinicdesk/internal/clinicapi"
	"github.com/mrsinham/clinicdesk/internal/tui/components"
	"github.com/mrsinham/clinicdesk/internal/wizard"
)

// sectionValues are the form-bound copies of one section's inputs.
type sectionValues struct {
	name, dose, frequency, strength, until, whenToTake, note string
}

func (v *sectionValues) field(f wizard.Field) *string {
	switch f {
	case wizard.FieldName:
		return &v.name
	case wizard.FieldDose:
		return &v.dose
	case wizard.FieldFrequency:
		return &v.frequency
	case wizard.FieldStrength:
		return &v.strength
	case wizard.FieldUntil:
		return &v.until
	case wizard.FieldWhenToTake:
		return &v.whenToTake
	case wizard.FieldNote:
		return &v.note
	}
	return nil
}

var medicineFields = append(append([]wizard.Field(nil), wizard.RequiredFields...), wizard.FieldNote)

// medicinesScreen edits one unsaved section at a time and lists the others.
type medicinesScreen struct {
	session   *wizard.Session
	activeID  string
	values    sectionValues
	form      *huh.Form
	helpPanel *components.HelpPanel
	submitted bool
}

func newMedicinesScreen(session *wizard.Session, helpPanel *components.HelpPanel) *medicinesScreen {
	m := &medicinesScreen{session: session, helpPanel: helpPanel}
	m.activateNextUnsaved()
	return m
}

// activateNextUnsaved focuses the first unsaved section, if any.
func (m *medicinesScreen) activateNextUnsaved() {
	for _, sec := range m.session.Sections() {
		if !sec.Saved {
			m.activate(sec.ID)
			return
		}
	}
	m.activeID = ""
	m.form = nil
}

func (m *medicinesScreen) activate(id string) {
	sec, ok := m.session.Section(id)
	if !ok {
		return
	}
	m.activeID = id
	m.values = sectionValues{}
	for _, f := range medicineFields {
		*m.values.field(f) = sec.Value(f)
	}
	m.submitted = false
	m.buildForm()
}

func (m *medicinesScreen) buildForm() {
	input := func(f wizard.Field, placeholder string) *huh.Input {
		in := huh.NewInput().
			Key(string(f)).
			Title(f.Label()).
			Placeholder(placeholder).
			Value(m.values.field(f))
		if opts := wizard.Options(f); opts != nil {
			in = in.Suggestions(opts)
		}
		return in
	}

	m.form = huh.NewForm(
		huh.NewGroup(
			input(wizard.FieldName, "e.g. Amoxicillin"),
			input(wizard.FieldDose, "mg, e.g. 500"),
			input(wizard.FieldStrength, "e.g. 500mg"),
			input(wizard.FieldFrequency, "e.g. Three times a day"),
			input(wizard.FieldUntil, "e.g. For 7 days"),
			input(wizard.FieldWhenToTake, "e.g. After meals"),
			huh.NewText().
				Key(string(wizard.FieldNote)).
				Title(wizard.FieldNote.Label()).
				Lines(2).
				Value(&m.values.note),
		),
	).WithShowHelp(false).WithShowErrors(false)
}

// sync pushes the form values into the session.
func (m *medicinesScreen) sync() {
	if m.activeID == "" {
		return
	}
	for _, f := range medicineFields {
		_ = m.session.SetField(m.activeID, f, *m.values.field(f))
	}
}

// cycle moves to the next unsaved section after the active one.
func (m *medicinesScreen) cycle() {
	var unsaved []string
	for _, sec := range m.session.Sections() {
		if !sec.Saved {
			unsaved = append(unsaved, sec.ID)
		}
	}
	if len(unsaved) < 2 {
		return
	}
	m.sync()
	for i, id := range unsaved {
		if id == m.activeID {
			m.activate(unsaved[(i+1)%len(unsaved)])
			return
		}
	}
	m.activate(unsaved[0])
}

func (m *medicinesScreen) Init() tea.Cmd {
	if m.form == nil {
		return nil
	}
	return m.form.Init()
}

func (m *medicinesScreen) Update(msg tea.Msg) tea.Cmd {
	if m.form == nil {
		return nil
	}
	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}
	if focused := m.form.GetFocusedField(); focused != nil {
		key := focused.GetKey()
		m.helpPanel.SetField(key)
		if sec, ok := m.session.Section(m.activeID); ok {
			m.helpPanel.SetProblem(sec.Errors[wizard.Field(key)])
		}
	}
	if m.form.State == huh.StateCompleted {
		m.submitted = true
	}
	return cmd
}

func summarize(f clinicapi.Medicine) string {
	parts := []string{f.Name}
	for _, p := range []string{f.Dose, f.Frequency, f.Until, f.WhenToTake} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, " · ")
}

func (m *medicinesScreen) View(width int) string {
	var blocks []string
	for _, sec := range m.session.Sections() {
		switch {
		case sec.ID == m.activeID:
			body := lipgloss.JoinVertical(lipgloss.Left,
				components.TitleStyle.Render(sec.Label),
				m.form.View(),
				renderFieldErrors(sec),
			)
			blocks = append(blocks, components.ActiveSectionStyle.Width(sectionWidth(width)).Render(body))
		case sec.Saved:
			blocks = append(blocks, components.SuccessStyle.Render("✓ "+sec.Label+"  ")+summarize(sec.Fields))
		case sec.Saving:
			blocks = append(blocks, components.MutedStyle.Render("… "+sec.Label+" saving"))
		default:
			label := sec.Label
			if !sec.Empty() {
				label += " (draft)"
			}
			blocks = append(blocks, components.MutedStyle.Render("○ "+label))
		}
	}
	if m.activeID == "" {
		blocks = append(blocks, components.HintStyle.Render("All medicines saved. ctrl+a adds another, ctrl+n continues."))
	}
	return lipgloss.JoinVertical(lipgloss.Left, blocks...)
}

func renderFieldErrors(sec wizard.Section) string {
	var lines []string
	for _, f := range medicineFields {
		if msg, ok := sec.Errors[f]; ok {
			lines = append(lines, components.ErrorStyle.Render(fmt.Sprintf("• %s", msg)))
		}
	}
	return strings.Join(lines, "\n")
}

func sectionWidth(width int) int {
	if width <= 0 || width > 84 {
		return 80
	}
	return width - 4
}
