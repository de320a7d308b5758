// Package wizard implements the prescription wizard as a UI-independent step machine:
// medicine sections, the diagnosis form and the transitions between the three steps.
package wizard

import (
	"errors"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/mrsinham/clinicdesk/internal/clinicapi"
)

// Step is the wizard cursor.
type Step int

const (
	StepMedicines Step = iota + 1
	StepDiagnosis
	StepPreview
)

func (s Step) String() string {
	switch s {
	case StepMedicines:
		return "Medicines"
	case StepDiagnosis:
		return "Diagnosis"
	case StepPreview:
		return "Preview"
	}
	return "Step(" + strconv.Itoa(int(s)) + ")"
}

// Errors returned by Session operations.
var (
	// ErrNotOpen is returned by every step action before Open succeeded.
	ErrNotOpen = errors.New("wizard is not open")
	// ErrUnknownSection means no section has the given id.
	ErrUnknownSection = errors.New("unknown section")
	// ErrSectionLocked rejects edits and saves of a saved section.
	ErrSectionLocked = errors.New("section is already saved")
	// ErrSaveInFlight rejects a second save while one is pending.
	ErrSaveInFlight = errors.New("another section is being saved")
	// ErrStepLocked means the requirements of the next step are not met.
	ErrStepLocked = errors.New("step requirements not met")
	// ErrWrongStep rejects an action that belongs to another step.
	ErrWrongStep = errors.New("action not available on this step")
	// ErrActionFailed wraps the container's error message after a failed call.
	ErrActionFailed = errors.New("action failed")
	// ErrCancelled is returned by a call whose wizard was cancelled or reopened while
	// the request was in flight. Its result has been discarded.
	ErrCancelled = errors.New("wizard was cancelled")
)

// Field names a medicine section input.
type Field string

const (
	FieldName       Field = "name"
	FieldDose       Field = "dose"
	FieldFrequency  Field = "frequency"
	FieldStrength   Field = "strength"
	FieldUntil      Field = "until"
	FieldWhenToTake Field = "whenToTake"
	FieldNote       Field = "note"
)

// RequiredFields are the section inputs that must be filled before saving.
var RequiredFields = []Field{FieldName, FieldDose, FieldFrequency, FieldStrength, FieldUntil, FieldWhenToTake}

var sectionFields = append(append([]Field(nil), RequiredFields...), FieldNote)

// Label is the human name of the field.
func (f Field) Label() string {
	switch f {
	case FieldName:
		return "Medicine name"
	case FieldDose:
		return "Dose"
	case FieldFrequency:
		return "Frequency"
	case FieldStrength:
		return "Strength"
	case FieldUntil:
		return "Until"
	case FieldWhenToTake:
		return "When to take"
	case FieldNote:
		return "Note"
	}
	return string(f)
}

// Section is one medicine line item form.
type Section struct {
	ID     string
	Label  string
	Fields clinicapi.Medicine
	Errors map[Field]string
	Saved  bool
	Saving bool
}

func newSection(n int) Section {
	return Section{
		ID:     uuid.NewString(),
		Label:  "Medicine " + strconv.Itoa(n),
		Errors: map[Field]string{},
	}
}

// Value returns the current value of field f.
func (s *Section) Value(f Field) string {
	switch f {
	case FieldName:
		return s.Fields.Name
	case FieldDose:
		return s.Fields.Dose
	case FieldFrequency:
		return s.Fields.Frequency
	case FieldStrength:
		return s.Fields.Strength
	case FieldUntil:
		return s.Fields.Until
	case FieldWhenToTake:
		return s.Fields.WhenToTake
	case FieldNote:
		return s.Fields.Note
	}
	return ""
}

func (s *Section) set(f Field, v string) bool {
	switch f {
	case FieldName:
		s.Fields.Name = v
	case FieldDose:
		s.Fields.Dose = v
	case FieldFrequency:
		s.Fields.Frequency = v
	case FieldStrength:
		s.Fields.Strength = v
	case FieldUntil:
		s.Fields.Until = v
	case FieldWhenToTake:
		s.Fields.WhenToTake = v
	case FieldNote:
		s.Fields.Note = v
	default:
		return false
	}
	return true
}

// validate checks one field and records or clears its error.
func (s *Section) validate(f Field) {
	if msg := ValidateField(f, s.Value(f)); msg != "" {
		s.Errors[f] = msg
		return
	}
	delete(s.Errors, f)
}

// Complete reports whether every required field is filled and no field carries an error.
func (s *Section) Complete() bool {
	for _, f := range RequiredFields {
		if strings.TrimSpace(s.Value(f)) == "" {
			return false
		}
	}
	return len(s.Errors) == 0
}

// Empty reports whether no field has been filled.
func (s *Section) Empty() bool {
	return s.Fields == (clinicapi.Medicine{})
}

func (s Section) clone() Section {
	out := s
	out.Errors = make(map[Field]string, len(s.Errors))
	for k, v := range s.Errors {
		out.Errors[k] = v
	}
	return out
}

// ValidateField returns the validation message for value in field f, or "" when valid.
func ValidateField(f Field, value string) string {
	v := strings.TrimSpace(value)
	if f == FieldNote {
		return ""
	}
	if v == "" {
		return "Please enter " + strings.ToLower(f.Label())
	}
	if f == FieldDose {
		n, err := strconv.ParseFloat(v, 64)
		if err != nil || n < 0 {
			return "Dose must be a non-negative number"
		}
	}
	return ""
}

// Diagnosis is the medical info draft of step 2.
type Diagnosis struct {
	Symptoms    string `yaml:"symptoms"`
	Diagnosis   string `yaml:"diagnosis"`
	DoctorNote  string `yaml:"doctor_note"`
	PatientNote string `yaml:"patient_note,omitempty"`
}

// DiagnosisField names a diagnosis input.
type DiagnosisField string

const (
	DiagnosisSymptoms    DiagnosisField = "symptoms"
	DiagnosisDiagnosis   DiagnosisField = "diagnosis"
	DiagnosisDoctorNote  DiagnosisField = "doctorNote"
	DiagnosisPatientNote DiagnosisField = "patientNote"
)

// Validate returns the messages of the missing required diagnosis fields.
func (d Diagnosis) Validate() map[DiagnosisField]string {
	errs := map[DiagnosisField]string{}
	if strings.TrimSpace(d.Symptoms) == "" {
		errs[DiagnosisSymptoms] = "Please enter symptoms"
	}
	if strings.TrimSpace(d.Diagnosis) == "" {
		errs[DiagnosisDiagnosis] = "Please enter diagnosis"
	}
	if strings.TrimSpace(d.DoctorNote) == "" {
		errs[DiagnosisDoctorNote] = "Please enter doctor note"
	}
	return errs
}

func (d *Diagnosis) set(f DiagnosisField, v string) bool {
	switch f {
	case DiagnosisSymptoms:
		d.Symptoms = v
	case DiagnosisDiagnosis:
		d.Diagnosis = v
	case DiagnosisDoctorNote:
		d.DoctorNote = v
	case DiagnosisPatientNote:
		d.PatientNote = v
	default:
		return false
	}
	return true
}

// Patient identifies who the prescription is written for and the visit it belongs to.
type Patient struct {
	ID            int64
	Name          string
	AppointmentID int64
}

// NoticeKind tells success and error notifications apart.
type NoticeKind int

const (
	NoticeSuccess NoticeKind = iota
	NoticeError
)

// Notice is a transient message for the user.
type Notice struct {
	Kind    NoticeKind
	Message string
}

// Notifier receives notices as they happen.
type Notifier func(Notice)
