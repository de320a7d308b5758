package tui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/mrsinham/clinicdesk/internal/tui/components"
	"github.com/mrsinham/clinicdesk/internal/wizard"
)

var diagnosisFields = []struct {
	key   wizard.DiagnosisField
	title string
}{
	{wizard.DiagnosisSymptoms, "Symptoms"},
	{wizard.DiagnosisDiagnosis, "Diagnosis"},
	{wizard.DiagnosisDoctorNote, "Doctor note"},
	{wizard.DiagnosisPatientNote, "Patient note (optional)"},
}

type diagnosisScreen struct {
	session   *wizard.Session
	values    wizard.Diagnosis
	form      *huh.Form
	helpPanel *components.HelpPanel
	submitted bool
}

func newDiagnosisScreen(session *wizard.Session, helpPanel *components.HelpPanel) *diagnosisScreen {
	d, _ := session.Diagnosis()
	s := &diagnosisScreen{session: session, values: d, helpPanel: helpPanel}

	s.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key(string(wizard.DiagnosisSymptoms)).
				Title(diagnosisFields[0].title).
				Value(&s.values.Symptoms),
			huh.NewInput().
				Key(string(wizard.DiagnosisDiagnosis)).
				Title(diagnosisFields[1].title).
				Value(&s.values.Diagnosis),
			huh.NewText().
				Key(string(wizard.DiagnosisDoctorNote)).
				Title(diagnosisFields[2].title).
				Lines(3).
				Value(&s.values.DoctorNote),
			huh.NewText().
				Key(string(wizard.DiagnosisPatientNote)).
				Title(diagnosisFields[3].title).
				Lines(2).
				Value(&s.values.PatientNote),
		),
	).WithShowHelp(false).WithShowErrors(false)
	return s
}

// sync pushes the form values into the session draft.
func (s *diagnosisScreen) sync() {
	s.session.SetDiagnosis(s.values)
}

func (s *diagnosisScreen) Init() tea.Cmd {
	return s.form.Init()
}

func (s *diagnosisScreen) Update(msg tea.Msg) tea.Cmd {
	form, cmd := s.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		s.form = f
	}
	if focused := s.form.GetFocusedField(); focused != nil {
		key := focused.GetKey()
		s.helpPanel.SetField(key)
		_, errs := s.session.Diagnosis()
		s.helpPanel.SetProblem(errs[wizard.DiagnosisField(key)])
	}
	if s.form.State == huh.StateCompleted {
		s.submitted = true
	}
	return cmd
}

func (s *diagnosisScreen) View(width int) string {
	_, errs := s.session.Diagnosis()
	var lines []string
	for _, f := range diagnosisFields {
		if msg, ok := errs[f.key]; ok {
			lines = append(lines, components.ErrorStyle.Render("• "+msg))
		}
	}
	body := lipgloss.JoinVertical(lipgloss.Left,
		append([]string{s.form.View()}, lines...)...,
	)
	return components.ActiveSectionStyle.Width(sectionWidth(width)).Render(body)
}
