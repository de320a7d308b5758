package clinicapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
)

// Patient is a row of the doctor's patient record.
type Patient struct {
	ID        int64      `json:"id"`
	FirstName string     `json:"first_name"`
	LastName  string     `json:"last_name"`
	Email     string     `json:"email,omitempty"`
	Phone     string     `json:"phone,omitempty"`
	Gender    string     `json:"gender,omitempty"`
	BirthDate string     `json:"birth_date,omitempty"`
	Age       FlexString `json:"age,omitempty"`
}

// Name joins first and last name.
func (p Patient) Name() string {
	switch {
	case p.FirstName == "":
		return p.LastName
	case p.LastName == "":
		return p.FirstName
	}
	return p.FirstName + " " + p.LastName
}

// PatientPage is one page of patients.
type PatientPage struct {
	Data []Patient `json:"data"`
	Meta *Meta     `json:"meta,omitempty"`
}

// decodePage decodes {"data": [...], "meta": {...}}, tolerating a bare array.
func decodePage(body []byte, v any) error {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return ErrEmptyResponse
	}
	if trimmed[0] == '[' {
		trimmed = append(append([]byte(`{"data":`), trimmed...), '}')
	}
	if err := json.Unmarshal(trimmed, v); err != nil {
		return fmt.Errorf("decode page: %w", err)
	}
	return nil
}

// PatientsRecord pages through the doctor's patients.
func (c *Client) PatientsRecord(ctx context.Context, page, perPage int) (*PatientPage, error) {
	q := url.Values{
		"page":     {strconv.Itoa(page)},
		"per_page": {strconv.Itoa(perPage)},
	}
	body, err := c.doJSON(ctx, http.MethodGet, "/api/doctor/patientsRecord", q, nil)
	if err != nil {
		return nil, err
	}
	out := &PatientPage{}
	if err := decodePage(body, out); err != nil {
		return nil, err
	}
	return out, nil
}

// SearchPatient finds patients by name. The backend answers either a bare list,
// {"Patients": [...]} or a page.
func (c *Client) SearchPatient(ctx context.Context, name string) (*PatientPage, error) {
	if name == "" {
		return nil, Required("name")
	}
	body, err := c.doJSON(ctx, http.MethodPost, "/api/doctor/searchPatient", nil, map[string]string{"name": name})
	if err != nil {
		return nil, err
	}

	out := &PatientPage{}
	if err := decodeList(body, &out.Data, "Patients"); err != nil {
		return nil, err
	}
	var withMeta struct {
		Meta *Meta `json:"meta"`
	}
	if json.Unmarshal(body, &withMeta) == nil {
		out.Meta = withMeta.Meta
	}
	return out, nil
}

// PatientProfile returns the full profile of one patient as-is.
func (c *Client) PatientProfile(ctx context.Context, patientID int64) (Document, error) {
	q := url.Values{"patient_id": {strconv.FormatInt(patientID, 10)}}
	body, err := c.doJSON(ctx, http.MethodGet, "/api/doctor/showPatientProfile", q, nil)
	if err != nil {
		return nil, err
	}
	var out Document
	if err := decodeData(body, &out); err != nil {
		return nil, err
	}
	return out, nil
}
