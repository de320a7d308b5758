package wizard

import (
	"context"
	"fmt"
	"sync"

	"github.com/mrsinham/clinicdesk/internal/clinicapi"
	"github.com/mrsinham/clinicdesk/internal/prescription"
	"github.com/rs/zerolog"
)

// Container is the prescription state the wizard drives.
type Container interface {
	CreatePrescription(ctx context.Context, patientID int64) (*clinicapi.Prescription, bool)
	AddMedicineToPrescription(ctx context.Context, item clinicapi.Medicine) (*clinicapi.Medicine, bool)
	CompletePrescriptionAction(ctx context.Context, id int64, note string) (*clinicapi.Prescription, bool)
	AddMedicalInfo(ctx context.Context, info clinicapi.MedicalInfo) (*clinicapi.MedicalInfo, bool)
	ClearCurrentPrescription()
	Snapshot() prescription.State
}

// Session is one run of the prescription wizard.
type Session struct {
	store  Container
	notify Notifier
	logger zerolog.Logger

	mu        sync.Mutex
	open      bool
	patient   Patient
	step      Step
	sections  []Section
	note      string
	diagnosis Diagnosis
	diagErrs  map[DiagnosisField]string
	advancing bool
	finishing bool
	// gen counts resets; a call that returns into a different generation is discarded.
	gen uint64
}

// NewSession creates a closed wizard over store. notify may be nil.
func NewSession(store Container, notify Notifier, logger zerolog.Logger) *Session {
	s := &Session{
		store:  store,
		notify: notify,
		logger: logger.With().Str("component", "wizard").Logger(),
	}
	s.resetLocked()
	return s
}

// resetLocked puts the session back to its initial configuration.
func (s *Session) resetLocked() {
	s.gen++
	s.open = false
	s.patient = Patient{}
	s.step = StepMedicines
	s.sections = []Section{newSection(1)}
	s.note = ""
	s.diagnosis = Diagnosis{}
	s.diagErrs = map[DiagnosisField]string{}
	s.advancing = false
	s.finishing = false
}

func (s *Session) emit(kind NoticeKind, msg string) {
	if s.notify != nil {
		s.notify(Notice{Kind: kind, Message: msg})
	}
}

// failure reports the container's error and wraps it for the caller.
func (s *Session) failure(action string) error {
	msg := s.store.Snapshot().Error
	if msg == "" {
		msg = action + " failed"
	}
	s.emit(NoticeError, msg)
	return fmt.Errorf("%s: %w: %s", action, ErrActionFailed, msg)
}

// discard drops the result of a call that outlived the wizard it was made for.
func (s *Session) discard(action string) error {
	s.logger.Debug().Str("action", action).Msg("wizard reset while the call was in flight")
	return ErrCancelled
}

// Open starts a wizard for patient. The container is cleared and a fresh prescription
// is created; the wizard only opens when that succeeds.
func (s *Session) Open(ctx context.Context, patient Patient) error {
	s.mu.Lock()
	s.resetLocked()
	gen := s.gen
	s.mu.Unlock()

	s.store.ClearCurrentPrescription()
	p, ok := s.store.CreatePrescription(ctx, patient.ID)

	s.mu.Lock()
	if s.gen != gen {
		s.mu.Unlock()
		return s.discard("create prescription")
	}
	if !ok {
		s.mu.Unlock()
		return s.failure("create prescription")
	}
	s.open = true
	s.patient = patient
	s.mu.Unlock()

	s.logger.Info().Int64("prescription_id", p.ID).Int64("patient_id", patient.ID).Msg("wizard opened")
	return nil
}

// IsOpen reports whether a wizard is in progress.
func (s *Session) IsOpen() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.open
}

// Step returns the current step.
func (s *Session) Step() Step {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.step
}

// Patient returns who the wizard was opened for.
func (s *Session) Patient() Patient {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.patient
}

// State returns the container snapshot.
func (s *Session) State() prescription.State {
	return s.store.Snapshot()
}

// Sections returns a copy of all sections in order.
func (s *Session) Sections() []Section {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Section, len(s.sections))
	for i, sec := range s.sections {
		out[i] = sec.clone()
	}
	return out
}

// SavedSections returns the sections that have been saved, in order.
func (s *Session) SavedSections() []Section {
	var out []Section
	for _, sec := range s.Sections() {
		if sec.Saved {
			out = append(out, sec)
		}
	}
	return out
}

// Section returns the section with id.
func (s *Session) Section(id string) (Section, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sec := s.findLocked(id); sec != nil {
		return sec.clone(), true
	}
	return Section{}, false
}

func (s *Session) findLocked(id string) *Section {
	for i := range s.sections {
		if s.sections[i].ID == id {
			return &s.sections[i]
		}
	}
	return nil
}

func (s *Session) savingLocked() bool {
	for i := range s.sections {
		if s.sections[i].Saving {
			return true
		}
	}
	return false
}

func (s *Session) hasSavedLocked() bool {
	for i := range s.sections {
		if s.sections[i].Saved {
			return true
		}
	}
	return false
}

// AddSection appends an empty section and returns its id.
func (s *Session) AddSection() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.open {
		return "", ErrNotOpen
	}
	if s.step != StepMedicines {
		return "", ErrWrongStep
	}
	sec := newSection(len(s.sections) + 1)
	s.sections = append(s.sections, sec)
	return sec.ID, nil
}

// SetField updates one input of an unsaved section and revalidates it.
func (s *Session) SetField(id string, f Field, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.open {
		return ErrNotOpen
	}
	sec := s.findLocked(id)
	if sec == nil {
		return ErrUnknownSection
	}
	if sec.Saved || sec.Saving {
		return ErrSectionLocked
	}
	if !sec.set(f, value) {
		return fmt.Errorf("unknown field %q", f)
	}
	sec.validate(f)
	return nil
}

// CanSaveSection reports whether the save control of section id is enabled.
func (s *Session) CanSaveSection(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	sec := s.findLocked(id)
	if !s.open || sec == nil || sec.Saved || s.savingLocked() {
		return false
	}
	return sec.Complete()
}

// SaveSection sends section id to the backend. On success the section is locked; on
// failure it stays editable and the other sections are untouched.
func (s *Session) SaveSection(ctx context.Context, id string) error {
	s.mu.Lock()
	if !s.open {
		s.mu.Unlock()
		return ErrNotOpen
	}
	sec := s.findLocked(id)
	switch {
	case sec == nil:
		s.mu.Unlock()
		return ErrUnknownSection
	case sec.Saved:
		s.mu.Unlock()
		return ErrSectionLocked
	case s.savingLocked():
		s.mu.Unlock()
		return ErrSaveInFlight
	}
	for _, f := range RequiredFields {
		sec.validate(f)
	}
	if !sec.Complete() {
		s.mu.Unlock()
		return &clinicapi.ValidationError{Message: sec.Label + " has missing or invalid fields"}
	}
	sec.Saving = true
	label := sec.Label
	item := sec.Fields
	gen := s.gen
	s.mu.Unlock()

	_, ok := s.store.AddMedicineToPrescription(ctx, item)

	s.mu.Lock()
	if s.gen != gen {
		s.mu.Unlock()
		return s.discard("save " + label)
	}
	sec = s.findLocked(id)
	if sec != nil {
		sec.Saving = false
		sec.Saved = ok
	}
	s.mu.Unlock()

	if !ok {
		return s.failure("save " + label)
	}
	s.logger.Debug().Str("section_id", id).Msg("section saved")
	s.emit(NoticeSuccess, label+" saved")
	return nil
}

// Note returns the free-text prescription note.
func (s *Session) Note() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.note
}

// SetPrescriptionNote sets the note sent when the prescription is completed.
func (s *Session) SetPrescriptionNote(note string) {
	s.mu.Lock()
	s.note = note
	s.mu.Unlock()
}

// Diagnosis returns the diagnosis draft and its current errors.
func (s *Session) Diagnosis() (Diagnosis, map[DiagnosisField]string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	errs := make(map[DiagnosisField]string, len(s.diagErrs))
	for k, v := range s.diagErrs {
		errs[k] = v
	}
	return s.diagnosis, errs
}

// SetDiagnosis replaces the whole diagnosis draft.
func (s *Session) SetDiagnosis(d Diagnosis) {
	s.mu.Lock()
	s.diagnosis = d
	s.diagErrs = map[DiagnosisField]string{}
	s.mu.Unlock()
}

// SetDiagnosisField updates one diagnosis input.
func (s *Session) SetDiagnosisField(f DiagnosisField, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.diagnosis.set(f, value) {
		return fmt.Errorf("unknown diagnosis field %q", f)
	}
	if msg, bad := s.diagnosis.Validate()[f]; bad {
		s.diagErrs[f] = msg
	} else {
		delete(s.diagErrs, f)
	}
	return nil
}

// CanAdvance reports whether Next is enabled on the current step.
func (s *Session) CanAdvance() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.open || s.advancing {
		return false
	}
	switch s.step {
	case StepMedicines:
		return s.hasSavedLocked()
	case StepDiagnosis:
		return len(s.diagnosis.Validate()) == 0
	}
	return false
}

// Next moves forward one step. Leaving the medicines step completes the prescription
// with the current note; leaving the diagnosis step only validates the form.
func (s *Session) Next(ctx context.Context) error {
	s.mu.Lock()
	if !s.open {
		s.mu.Unlock()
		return ErrNotOpen
	}
	switch s.step {
	case StepDiagnosis:
		defer s.mu.Unlock()
		s.diagErrs = s.diagnosis.Validate()
		if len(s.diagErrs) > 0 {
			return &clinicapi.ValidationError{Message: "diagnosis form is incomplete"}
		}
		s.step = StepPreview
		return nil
	case StepPreview:
		s.mu.Unlock()
		return ErrWrongStep
	}

	if !s.hasSavedLocked() {
		s.mu.Unlock()
		return fmt.Errorf("%w: save at least one medicine", ErrStepLocked)
	}
	if s.advancing {
		s.mu.Unlock()
		return ErrSaveInFlight
	}
	s.advancing = true
	note := s.note
	gen := s.gen
	s.mu.Unlock()

	var id int64
	if cur := s.store.Snapshot().Current; cur != nil {
		id = cur.ID
	}
	_, ok := s.store.CompletePrescriptionAction(ctx, id, note)

	s.mu.Lock()
	if s.gen != gen {
		s.mu.Unlock()
		return s.discard("complete prescription")
	}
	s.advancing = false
	if ok {
		s.step = StepDiagnosis
	}
	s.mu.Unlock()

	if !ok {
		return s.failure("complete prescription")
	}
	s.logger.Info().Int64("prescription_id", id).Msg("prescription completed")
	return nil
}

// Back moves to the previous step without any network call. It reports whether the
// step changed.
func (s *Session) Back() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.open || s.step == StepMedicines {
		return false
	}
	s.step--
	return true
}

// SaveDiagnosis records the diagnosis and closes the wizard. It is available from the
// diagnosis and preview steps.
func (s *Session) SaveDiagnosis(ctx context.Context) error {
	s.mu.Lock()
	if !s.open {
		s.mu.Unlock()
		return ErrNotOpen
	}
	if s.step == StepMedicines {
		s.mu.Unlock()
		return ErrWrongStep
	}
	if s.finishing {
		s.mu.Unlock()
		return ErrSaveInFlight
	}
	s.diagErrs = s.diagnosis.Validate()
	if len(s.diagErrs) > 0 {
		s.mu.Unlock()
		return &clinicapi.ValidationError{Message: "diagnosis form is incomplete"}
	}
	s.finishing = true
	d := s.diagnosis
	appointmentID := s.patient.AppointmentID
	gen := s.gen
	s.mu.Unlock()

	var prescriptionID int64
	if cur := s.store.Snapshot().Current; cur != nil {
		prescriptionID = cur.ID
	}
	_, ok := s.store.AddMedicalInfo(ctx, clinicapi.MedicalInfo{
		PrescriptionID: prescriptionID,
		AppointmentID:  appointmentID,
		Symptoms:       d.Symptoms,
		Diagnosis:      d.Diagnosis,
		DoctorNote:     d.DoctorNote,
		PatientNote:    d.PatientNote,
	})

	s.mu.Lock()
	if s.gen != gen {
		s.mu.Unlock()
		return s.discard("save diagnosis")
	}
	if !ok {
		s.finishing = false
		s.mu.Unlock()
		return s.failure("save diagnosis")
	}
	s.resetLocked()
	s.mu.Unlock()
	s.store.ClearCurrentPrescription()

	s.logger.Info().Int64("prescription_id", prescriptionID).Msg("diagnosis saved, wizard closed")
	s.emit(NoticeSuccess, "Prescription saved")
	return nil
}

// Cancel closes the wizard from any step. The backend draft is left as is.
func (s *Session) Cancel() {
	s.logger.Debug().Msg("wizard cancelled")
	s.close()
}

func (s *Session) close() {
	s.mu.Lock()
	s.resetLocked()
	s.mu.Unlock()
	s.store.ClearCurrentPrescription()
}
