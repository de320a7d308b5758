package clinicapi

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
)

// Appointment is one reservation in the doctor's calendar.
type Appointment struct {
	ID               int64  `json:"id"`
	PatientID        int64  `json:"patient_id"`
	PatientFirstName string `json:"patient_first_name"`
	PatientLastName  string `json:"patient_last_name"`
	ReservationDate  string `json:"reservation_date"`
	ReservationHour  string `json:"reservation_hour"`
	Status           string `json:"status"`
	AppointmentType  string `json:"appointment_type"`
}

// PatientName joins first and last name.
func (a Appointment) PatientName() string {
	switch {
	case a.PatientFirstName == "":
		return a.PatientLastName
	case a.PatientLastName == "":
		return a.PatientFirstName
	}
	return a.PatientFirstName + " " + a.PatientLastName
}

// AppointmentPage is a page of a patient's appointment history.
type AppointmentPage struct {
	Data []Appointment `json:"data"`
	Meta *Meta         `json:"meta,omitempty"`
}

// AppointmentsByDate lists the appointments of a month, monthYear being "MM-YYYY".
func (c *Client) AppointmentsByDate(ctx context.Context, monthYear string) ([]Appointment, error) {
	body, err := c.doJSON(ctx, http.MethodPost, "/api/doctor/filteringAppointmentsByDate", nil, map[string]string{
		"date": monthYear,
	})
	if err != nil {
		return nil, err
	}
	var out []Appointment
	if err := decodeList(body, &out, "appointments"); err != nil {
		return nil, err
	}
	return out, nil
}

// AppointmentsByStatus lists appointments with status on date.
func (c *Client) AppointmentsByStatus(ctx context.Context, status, date string) ([]Appointment, error) {
	body, err := c.doJSON(ctx, http.MethodPost, "/api/doctor/showAppointmentsByStatus", nil, map[string]string{
		"status": status,
		"date":   date,
	})
	if err != nil {
		return nil, err
	}
	var out []Appointment
	if err := decodeList(body, &out, "appointments"); err != nil {
		return nil, err
	}
	return out, nil
}

// AppointmentsByType lists appointments with status and type on date.
func (c *Client) AppointmentsByType(ctx context.Context, status, appointmentType, date string) ([]Appointment, error) {
	body, err := c.doJSON(ctx, http.MethodPost, "/api/doctor/showAppointmentsByType", nil, map[string]string{
		"status": status,
		"type":   appointmentType,
		"date":   date,
	})
	if err != nil {
		return nil, err
	}
	var out []Appointment
	if err := decodeList(body, &out, "appointments"); err != nil {
		return nil, err
	}
	return out, nil
}

// CancelAppointment cancels the reservation.
func (c *Client) CancelAppointment(ctx context.Context, reservationID int64) error {
	q := url.Values{"reservation_id": {strconv.FormatInt(reservationID, 10)}}
	_, err := c.doJSON(ctx, http.MethodGet, "/api/doctor/cancelAppointment", q, nil)
	return err
}

// PatientAppointments pages through one patient's appointments.
func (c *Client) PatientAppointments(ctx context.Context, patientID int64, page, size int) (*AppointmentPage, error) {
	q := url.Values{
		"patient_id": {strconv.FormatInt(patientID, 10)},
		"page":       {strconv.Itoa(page)},
		"size":       {strconv.Itoa(size)},
	}
	body, err := c.doJSON(ctx, http.MethodGet, "/api/doctor/showpatientAppointments", q, nil)
	if err != nil {
		return nil, err
	}
	out := &AppointmentPage{}
	if err := decodePage(body, out); err != nil {
		return nil, err
	}
	return out, nil
}

// AppointmentResults returns the recorded results of an appointment as-is.
func (c *Client) AppointmentResults(ctx context.Context, appointmentID int64) (Document, error) {
	q := url.Values{"appointment_id": {strconv.FormatInt(appointmentID, 10)}}
	body, err := c.doJSON(ctx, http.MethodGet, "/api/doctor/showAppointmantResults", q, nil)
	if err != nil {
		return nil, err
	}
	var out Document
	if err := decodeData(body, &out); err != nil {
		return nil, err
	}
	return out, nil
}
