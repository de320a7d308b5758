package clinicapi

import (
	"context"
	"fmt"
	"net/http"
	"strings"
)

// Prescription statuses.
const (
	StatusDraft     = "draft"
	StatusCompleted = "completed"
)

// Prescription is the backend prescription entity.
type Prescription struct {
	ID        int64  `json:"prescription_id"`
	PatientID int64  `json:"patient_id,omitempty"`
	Note      string `json:"note,omitempty"`
	Status    string `json:"status,omitempty"`
}

// prescriptionPayload accepts both spellings of the id the backend uses.
type prescriptionPayload struct {
	PrescriptionID int64  `json:"prescription_id"`
	ID             int64  `json:"id"`
	PatientID      int64  `json:"patient_id"`
	Note           string `json:"note"`
	Status         string `json:"status"`
}

func (p prescriptionPayload) prescription() Prescription {
	id := p.PrescriptionID
	if id == 0 {
		id = p.ID
	}
	return Prescription{ID: id, PatientID: p.PatientID, Note: p.Note, Status: p.Status}
}

// Medicine is one line item of a prescription.
type Medicine struct {
	ID             int64  `json:"id,omitempty" yaml:"-"`
	Name           string `json:"name" yaml:"name"`
	Dose           string `json:"dose" yaml:"dose"`
	Frequency      string `json:"frequency" yaml:"frequency"`
	Strength       string `json:"strength" yaml:"strength"`
	Until          string `json:"until" yaml:"until"`
	WhenToTake     string `json:"whenToTake" yaml:"when_to_take"`
	PrescriptionID int64  `json:"prescription_id" yaml:"-"`
	Note           string `json:"note" yaml:"note,omitempty"`
}

// MedicalInfo is the diagnosis record attached to a completed prescription.
type MedicalInfo struct {
	ID             int64  `json:"id,omitempty" yaml:"-"`
	PrescriptionID int64  `json:"prescription_id" yaml:"-"`
	AppointmentID  int64  `json:"appointment_id" yaml:"-"`
	Symptoms       string `json:"symptoms" yaml:"symptoms"`
	Diagnosis      string `json:"diagnosis" yaml:"diagnosis"`
	DoctorNote     string `json:"doctorNote" yaml:"doctor_note"`
	PatientNote    string `json:"patientNote" yaml:"patient_note,omitempty"`
}

// AddPrescription creates an empty draft prescription for the patient.
func (c *Client) AddPrescription(ctx context.Context, patientID int64) (*Prescription, error) {
	if patientID <= 0 {
		return nil, Required("patient_id")
	}

	body, err := c.doJSON(ctx, http.MethodPost, "/api/doctor/addPrescription", nil, map[string]any{
		"patient_id": patientID,
	})
	if err != nil {
		return nil, err
	}

	var payload prescriptionPayload
	if err := decodeData(body, &payload); err != nil {
		return nil, err
	}
	p := payload.prescription()
	if p.ID == 0 {
		return nil, fmt.Errorf("add prescription: %w: no prescription id", ErrEmptyResponse)
	}
	if p.PatientID == 0 {
		p.PatientID = patientID
	}
	if p.Status == "" {
		p.Status = StatusDraft
	}
	return &p, nil
}

// medicineDose renders the dose the way the backend stores it.
func medicineDose(dose string) string {
	dose = strings.TrimSpace(dose)
	if strings.HasSuffix(strings.ToLower(dose), "mg") {
		return dose
	}
	return dose + " mg"
}

// AddMedicine appends a line item to an existing prescription.
func (c *Client) AddMedicine(ctx context.Context, m Medicine) (*Medicine, error) {
	if m.PrescriptionID <= 0 {
		return nil, Required("prescription_id")
	}

	req := m
	req.ID = 0
	req.Dose = medicineDose(m.Dose)
	body, err := c.doJSON(ctx, http.MethodPost, "/api/doctor/addMedicine", nil, req)
	if err != nil {
		return nil, err
	}

	out := req
	if err := decodeData(body, &out); err != nil {
		return nil, err
	}
	if out.PrescriptionID == 0 {
		out.PrescriptionID = m.PrescriptionID
	}
	return &out, nil
}

// CompletePrescription marks the prescription completed with note. Calling it again
// overwrites the note.
func (c *Client) CompletePrescription(ctx context.Context, id int64, note string) (*Prescription, error) {
	if id <= 0 {
		return nil, Required("id")
	}

	body, err := c.doJSON(ctx, http.MethodPost, "/api/doctor/completPrescription", nil, map[string]any{
		"id":   id,
		"note": note,
	})
	if err != nil {
		return nil, err
	}

	var payload prescriptionPayload
	if err := decodeData(body, &payload); err != nil {
		return nil, err
	}
	p := payload.prescription()
	if p.ID == 0 {
		p.ID = id
	}
	p.Note = note
	p.Status = StatusCompleted
	return &p, nil
}

// AddMedicalInfo creates the diagnosis record for a completed prescription.
func (c *Client) AddMedicalInfo(ctx context.Context, info MedicalInfo) (*MedicalInfo, error) {
	if info.PrescriptionID <= 0 {
		return nil, Required("prescription_id")
	}
	if info.AppointmentID <= 0 {
		return nil, Required("appointment_id")
	}

	body, err := c.doJSON(ctx, http.MethodPost, "/api/doctor/addMedicalInfo", nil, info)
	if err != nil {
		return nil, err
	}

	out := info
	if err := decodeData(body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
