// Package tui is the terminal front end of the prescription wizard. Screens are huh
// forms driven by a wizard.Session; every backend call runs as a tea.Cmd and reports
// back with a result message.
package tui

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/mrsinham/clinicdesk/internal/clinicapi"
	"github.com/mrsinham/clinicdesk/internal/tui/components"
	"github.com/mrsinham/clinicdesk/internal/wizard"
	"github.com/rs/zerolog"
)

// Phase is the screen currently shown.
type Phase int

const (
	PhaseOpening Phase = iota
	PhaseMedicines
	PhaseNote
	PhaseDiagnosis
	PhasePreview
	PhaseDone
	PhaseError
)

// Options configures a wizard run.
type Options struct {
	Patient wizard.Patient
	// Template pre-fills the medicine sections once the prescription is created.
	Template *wizard.Template
	// ExportPath is where ctrl+e writes the preview.
	ExportPath string
}

type openedMsg struct{ err error }

type sectionSavedMsg struct {
	id  string
	err error
}

type advancedMsg struct{ err error }

type diagnosisSavedMsg struct{ err error }

// noticeBoard keeps the latest session notice. Notices arrive from command goroutines.
type noticeBoard struct {
	mu   sync.Mutex
	last *wizard.Notice
}

func (b *noticeBoard) push(n wizard.Notice) {
	b.mu.Lock()
	b.last = &n
	b.mu.Unlock()
}

func (b *noticeBoard) set(kind wizard.NoticeKind, msg string) {
	b.push(wizard.Notice{Kind: kind, Message: msg})
}

func (b *noticeBoard) get() *wizard.Notice {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.last
}

// Wizard is the bubbletea model of one prescription session.
type Wizard struct {
	ctx     context.Context
	session *wizard.Session
	opts    Options
	logger  zerolog.Logger

	phase   Phase
	spinner spinner.Model
	busy    string
	notices *noticeBoard

	helpPanel *components.HelpPanel
	medicines *medicinesScreen
	diagnosis *diagnosisScreen
	noteForm  *huh.Form
	note      string

	width  int
	height int

	cancelled bool
	finished  bool
	err       error
}

// New builds the wizard over store. The session is opened by Init.
func New(ctx context.Context, store wizard.Container, logger zerolog.Logger, opts Options) *Wizard {
	notices := &noticeBoard{}
	return &Wizard{
		ctx:       ctx,
		session:   wizard.NewSession(store, notices.push, logger),
		opts:      opts,
		logger:    logger,
		phase:     PhaseOpening,
		spinner:   spinner.New(spinner.WithSpinner(spinner.Dot)),
		notices:   notices,
		helpPanel: components.NewHelpPanel(),
	}
}

// run marks the wizard busy and starts fn alongside the spinner.
func (w *Wizard) run(label string, fn tea.Cmd) tea.Cmd {
	w.busy = label
	return tea.Batch(w.spinner.Tick, fn)
}

func (w *Wizard) open() tea.Cmd {
	return func() tea.Msg {
		return openedMsg{err: w.session.Open(w.ctx, w.opts.Patient)}
	}
}

func (w *Wizard) saveSection(id string) tea.Cmd {
	return func() tea.Msg {
		return sectionSavedMsg{id: id, err: w.session.SaveSection(w.ctx, id)}
	}
}

func (w *Wizard) advance() tea.Cmd {
	return func() tea.Msg {
		return advancedMsg{err: w.session.Next(w.ctx)}
	}
}

func (w *Wizard) saveDiagnosis() tea.Cmd {
	return func() tea.Msg {
		return diagnosisSavedMsg{err: w.session.SaveDiagnosis(w.ctx)}
	}
}

// Init implements tea.Model.
func (w *Wizard) Init() tea.Cmd {
	return w.run("Creating prescription", w.open())
}

// Update implements tea.Model.
func (w *Wizard) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		w.width = msg.Width
		w.height = msg.Height
		w.helpPanel.SetSize(msg.Width/2, msg.Height/3)

	case spinner.TickMsg:
		if w.busy == "" {
			return w, nil
		}
		var cmd tea.Cmd
		w.spinner, cmd = w.spinner.Update(msg)
		return w, cmd

	case openedMsg:
		if w.stale(msg.err) {
			return w, nil
		}
		return w.onOpened(msg)
	case sectionSavedMsg:
		if w.stale(msg.err) {
			return w, nil
		}
		return w.onSectionSaved(msg)
	case advancedMsg:
		if w.stale(msg.err) {
			return w, nil
		}
		return w.onAdvanced(msg)
	case diagnosisSavedMsg:
		if w.stale(msg.err) {
			return w, nil
		}
		return w.onDiagnosisSaved(msg)

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			return w.cancel()
		}
		if w.busy != "" {
			return w, nil
		}
	}

	switch w.phase {
	case PhaseMedicines:
		return w.updateMedicines(msg)
	case PhaseNote:
		return w.updateNote(msg)
	case PhaseDiagnosis:
		return w.updateDiagnosis(msg)
	case PhasePreview:
		return w.updatePreview(msg)
	case PhaseDone, PhaseError:
		if _, ok := msg.(tea.KeyMsg); ok {
			return w, tea.Quit
		}
	}
	return w, nil
}

// stale reports whether a call result arrived after the wizard was cancelled.
func (w *Wizard) stale(err error) bool {
	if w.cancelled || errors.Is(err, wizard.ErrCancelled) {
		w.busy = ""
		return true
	}
	return false
}

func (w *Wizard) cancel() (tea.Model, tea.Cmd) {
	if w.phase != PhaseDone && w.phase != PhaseError {
		w.session.Cancel()
		w.cancelled = true
	}
	return w, tea.Quit
}

func (w *Wizard) onOpened(msg openedMsg) (tea.Model, tea.Cmd) {
	w.busy = ""
	if msg.err != nil {
		w.phase = PhaseError
		w.err = msg.err
		return w, nil
	}

	if w.opts.Template != nil {
		n, err := w.session.ApplyTemplate(w.opts.Template)
		if err != nil {
			w.notices.set(wizard.NoticeError, err.Error())
		} else {
			w.notices.set(wizard.NoticeSuccess, fmt.Sprintf("Template %q filled %d medicine(s)", w.opts.Template.Name, n))
		}
	}
	return w.toMedicines()
}

func (w *Wizard) toMedicines() (tea.Model, tea.Cmd) {
	w.phase = PhaseMedicines
	w.medicines = newMedicinesScreen(w.session, w.helpPanel)
	return w, w.medicines.Init()
}

func (w *Wizard) toDiagnosis() (tea.Model, tea.Cmd) {
	w.phase = PhaseDiagnosis
	w.diagnosis = newDiagnosisScreen(w.session, w.helpPanel)
	return w, w.diagnosis.Init()
}

func (w *Wizard) onSectionSaved(msg sectionSavedMsg) (tea.Model, tea.Cmd) {
	w.busy = ""
	if w.phase != PhaseMedicines {
		return w, nil
	}
	if msg.err != nil {
		w.logger.Debug().Err(msg.err).Str("section_id", msg.id).Msg("section not saved")
		if clinicapi.IsValidation(msg.err) {
			w.notices.set(wizard.NoticeError, "Fix the highlighted fields")
		}
		return w, nil
	}
	if msg.id == w.medicines.activeID {
		w.medicines.activateNextUnsaved()
		return w, w.medicines.Init()
	}
	return w, nil
}

func (w *Wizard) onAdvanced(msg advancedMsg) (tea.Model, tea.Cmd) {
	w.busy = ""
	if msg.err != nil {
		return w.toNote()
	}
	return w.toDiagnosis()
}

func (w *Wizard) onDiagnosisSaved(msg diagnosisSavedMsg) (tea.Model, tea.Cmd) {
	w.busy = ""
	if msg.err != nil {
		return w, nil
	}
	w.phase = PhaseDone
	w.finished = true
	return w, tea.Quit
}

func (w *Wizard) updateMedicines(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "ctrl+s":
			return w.submitSection()
		case "ctrl+a":
			w.medicines.sync()
			id, err := w.session.AddSection()
			if err != nil {
				w.notices.set(wizard.NoticeError, err.Error())
				return w, nil
			}
			w.medicines.activate(id)
			return w, w.medicines.Init()
		case "ctrl+o":
			w.medicines.cycle()
			return w, w.medicines.Init()
		case "ctrl+n":
			w.medicines.sync()
			if !w.session.CanAdvance() {
				w.notices.set(wizard.NoticeError, "Save at least one medicine first")
				return w, nil
			}
			return w.toNote()
		}
	}

	cmd := w.medicines.Update(msg)
	if w.medicines.submitted {
		return w.submitSection()
	}
	return w, cmd
}

// submitSection validates the active section and saves it when complete.
func (w *Wizard) submitSection() (tea.Model, tea.Cmd) {
	m := w.medicines
	if m.activeID == "" {
		return w, nil
	}
	m.sync()
	if !w.session.CanSaveSection(m.activeID) {
		// Re-validates every field so the errors show up.
		if err := w.session.SaveSection(w.ctx, m.activeID); err != nil && !errors.Is(err, wizard.ErrSaveInFlight) {
			w.notices.set(wizard.NoticeError, "Fix the highlighted fields")
		}
		if m.submitted {
			m.activate(m.activeID)
			return w, m.Init()
		}
		return w, nil
	}
	return w, w.run("Saving medicine", w.saveSection(m.activeID))
}

func (w *Wizard) toNote() (tea.Model, tea.Cmd) {
	w.phase = PhaseNote
	w.note = w.session.Note()
	w.helpPanel.SetField("prescriptionNote")
	w.noteForm = huh.NewForm(
		huh.NewGroup(
			huh.NewText().
				Key("prescriptionNote").
				Title("Prescription note").
				Description("Enter to complete the prescription, ctrl+p to go back").
				Lines(4).
				Value(&w.note),
		),
	).WithShowHelp(false)
	return w, w.noteForm.Init()
}

// submitNote completes the prescription with the note and moves to step 2.
func (w *Wizard) submitNote() (tea.Model, tea.Cmd) {
	w.session.SetPrescriptionNote(w.note)
	return w, w.run("Completing prescription", w.advance())
}

func (w *Wizard) updateNote(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "ctrl+p":
			w.session.SetPrescriptionNote(w.note)
			return w.toMedicines()
		case "ctrl+s", "ctrl+n":
			return w.submitNote()
		}
	}

	form, cmd := w.noteForm.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		w.noteForm = f
	}
	if w.noteForm.State == huh.StateCompleted {
		return w.submitNote()
	}
	return w, cmd
}

func (w *Wizard) updateDiagnosis(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "ctrl+s":
			w.diagnosis.sync()
			return w, w.run("Saving diagnosis", w.saveDiagnosis())
		case "ctrl+n":
			return w.toPreview()
		case "ctrl+p":
			w.diagnosis.sync()
			w.session.Back()
			return w.toMedicines()
		}
	}

	cmd := w.diagnosis.Update(msg)
	if w.diagnosis.submitted {
		return w.toPreview()
	}
	return w, cmd
}

func (w *Wizard) toPreview() (tea.Model, tea.Cmd) {
	w.diagnosis.sync()
	if err := w.session.Next(w.ctx); err != nil {
		w.notices.set(wizard.NoticeError, "Complete the diagnosis first")
		if w.diagnosis.submitted {
			return w.toDiagnosis()
		}
		return w, nil
	}
	w.phase = PhasePreview
	return w, nil
}

func (w *Wizard) updatePreview(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return w, nil
	}
	switch key.String() {
	case "ctrl+s", "enter":
		return w, w.run("Saving diagnosis", w.saveDiagnosis())
	case "ctrl+p":
		w.session.Back()
		return w.toDiagnosis()
	case "ctrl+e":
		path := w.opts.ExportPath
		if path == "" {
			path = "prescription-preview.yaml"
		}
		if err := w.session.ExportPreview(path); err != nil {
			w.notices.set(wizard.NoticeError, err.Error())
		} else {
			w.notices.set(wizard.NoticeSuccess, "Preview written to "+path)
		}
	}
	return w, nil
}

var stepNames = []string{"Medicines", "Diagnosis", "Preview"}

func (w *Wizard) header() string {
	title := "Prescription"
	if p := w.opts.Patient; p.Name != "" {
		title += " for " + p.Name
	}
	step := 0
	switch w.phase {
	case PhaseDiagnosis:
		step = 1
	case PhasePreview:
		step = 2
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		components.TitleStyle.Render(title),
		components.StepIndicator(stepNames, step),
	)
}

func (w *Wizard) status() string {
	if w.busy != "" {
		return w.spinner.View() + " " + w.busy + "..."
	}
	n := w.notices.get()
	if n == nil {
		return ""
	}
	if n.Kind == wizard.NoticeError {
		return components.ErrorStyle.Render(n.Message)
	}
	return components.SuccessStyle.Render(n.Message)
}

func (w *Wizard) keys() string {
	switch w.phase {
	case PhaseMedicines:
		return "ctrl+s: Save medicine | ctrl+a: Add medicine | ctrl+o: Other draft | ctrl+n: Next | Esc: Cancel"
	case PhaseNote:
		return "Enter: Complete prescription | ctrl+p: Back | Esc: Cancel"
	case PhaseDiagnosis:
		return "ctrl+s: Save | ctrl+n: Preview | ctrl+p: Back | Esc: Cancel"
	case PhasePreview:
		return "ctrl+s: Save | ctrl+e: Export | ctrl+p: Back | Esc: Cancel"
	}
	return "Any key: Exit"
}

// View implements tea.Model.
func (w *Wizard) View() string {
	if w.cancelled {
		return "Cancelled.\n"
	}

	var body string
	switch w.phase {
	case PhaseOpening:
		body = w.spinner.View() + " Creating prescription..."
	case PhaseMedicines:
		body = w.medicines.View(w.width)
	case PhaseNote:
		body = w.noteForm.View()
	case PhaseDiagnosis:
		body = w.diagnosis.View(w.width)
	case PhasePreview:
		body = renderPreview(w.session.Preview(), w.width)
	case PhaseDone:
		return components.SuccessStyle.Render("Prescription saved.") + "\n"
	case PhaseError:
		return lipgloss.JoinVertical(lipgloss.Left,
			components.ErrorStyle.Render("Could not start the prescription"),
			clinicapi.Message(w.err),
			"",
			components.HintStyle.Render("Press any key to exit"),
		) + "\n"
	}

	parts := []string{w.header(), "", body}
	if w.phase != PhasePreview && w.phase != PhaseOpening {
		parts = append(parts, "", w.helpPanel.View())
	}
	parts = append(parts, "", w.status(), components.HintStyle.Render(w.keys()))
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

// Result reports how the run ended.
func (w *Wizard) Result() (saved, cancelled bool, err error) {
	return w.finished, w.cancelled, w.err
}

// Run opens the wizard for opts.Patient and blocks until it is saved or cancelled. It
// reports whether the prescription was saved.
func Run(ctx context.Context, store wizard.Container, logger zerolog.Logger, opts Options) (bool, error) {
	w := New(ctx, store, logger, opts)
	p := tea.NewProgram(w, tea.WithAltScreen(), tea.WithContext(ctx))

	finalModel, err := p.Run()
	if err != nil {
		return false, fmt.Errorf("running wizard: %w", err)
	}

	fw, ok := finalModel.(*Wizard)
	if !ok {
		return false, nil
	}
	saved, cancelled, err := fw.Result()
	if cancelled {
		return false, nil
	}
	return saved, err
}
