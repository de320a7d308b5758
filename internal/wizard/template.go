package wizard

import (
	"fmt"
	"os"

	"github.com/mrsinham/clinicdesk/internal/clinicapi"
	"gopkg.in/yaml.v3"
)

// Template is a reusable set of medicines, stored as YAML.
type Template struct {
	Name      string               `yaml:"name,omitempty"`
	Note      string               `yaml:"note,omitempty"`
	Medicines []clinicapi.Medicine `yaml:"medicines"`
}

// Preview is what the doctor sees on the last step, and what ExportPreview writes.
type Preview struct {
	PatientID      int64                `yaml:"patient_id"`
	PatientName    string               `yaml:"patient_name,omitempty"`
	AppointmentID  int64                `yaml:"appointment_id,omitempty"`
	PrescriptionID int64                `yaml:"prescription_id"`
	Status         string               `yaml:"status,omitempty"`
	Note           string               `yaml:"note,omitempty"`
	Medicines      []clinicapi.Medicine `yaml:"medicines"`
	Diagnosis      Diagnosis            `yaml:"diagnosis"`
}

// LoadTemplate reads a template from a YAML file.
func LoadTemplate(path string) (*Template, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading template: %w", err)
	}

	var t Template
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("parsing template: %w", err)
	}
	if len(t.Medicines) == 0 {
		return nil, fmt.Errorf("template %s has no medicines", path)
	}
	return &t, nil
}

// SaveTemplate writes t to path.
func SaveTemplate(t *Template, path string) error {
	data, err := yaml.Marshal(t)
	if err != nil {
		return fmt.Errorf("marshaling template: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing template: %w", err)
	}
	return nil
}

// ApplyTemplate prefills the session with the medicines of t. Empty unsaved sections
// are filled first, then new sections are added. Nothing is saved; each section still
// goes through SaveSection. It returns the number of sections filled.
func (s *Session) ApplyTemplate(t *Template) (int, error) {
	if t == nil {
		return 0, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.open {
		return 0, ErrNotOpen
	}
	if s.step != StepMedicines {
		return 0, ErrWrongStep
	}

	filled := 0
	next := 0
	for _, m := range t.Medicines {
		for next < len(s.sections) && (s.sections[next].Saved || s.sections[next].Saving || !s.sections[next].Empty()) {
			next++
		}
		if next == len(s.sections) {
			s.sections = append(s.sections, newSection(len(s.sections)+1))
		}

		sec := &s.sections[next]
		m.ID, m.PrescriptionID = 0, 0
		sec.Fields = m
		for _, f := range sectionFields {
			sec.validate(f)
		}
		filled++
		next++
	}

	if s.note == "" {
		s.note = t.Note
	}
	return filled, nil
}

// Preview assembles the saved medicines and the diagnosis draft.
func (s *Session) Preview() Preview {
	st := s.store.Snapshot()

	s.mu.Lock()
	defer s.mu.Unlock()

	p := Preview{
		PatientID:     s.patient.ID,
		PatientName:   s.patient.Name,
		AppointmentID: s.patient.AppointmentID,
		Note:          s.note,
		Diagnosis:     s.diagnosis,
	}
	if st.Current != nil {
		p.PrescriptionID = st.Current.ID
		p.Status = st.Current.Status
	}
	for _, sec := range s.sections {
		if sec.Saved {
			p.Medicines = append(p.Medicines, sec.Fields)
		}
	}
	return p
}

// ExportPreview writes the current preview to path as YAML.
func (s *Session) ExportPreview(path string) error {
	data, err := yaml.Marshal(s.Preview())
	if err != nil {
		return fmt.Errorf("marshaling preview: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing preview: %w", err)
	}
	return nil
}
