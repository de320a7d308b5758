package clinicapi

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"sort"
)

// DoctorProfile is the signed-in doctor's profile.
type DoctorProfile struct {
	ID                   int64      `json:"id,omitempty"`
	FirstName            string     `json:"first_name"`
	LastName             string     `json:"last_name"`
	Email                string     `json:"email"`
	Phone                string     `json:"phone"`
	Speciality           string     `json:"speciality"`
	ProfessionalTitle    string     `json:"professional_title"`
	Experience           FlexString `json:"experience"`
	BookingType          string     `json:"booking_type"`
	Status               string     `json:"status"`
	VisitFee             FlexString `json:"visit_fee"`
	AverageVisitDuration FlexString `json:"average_visit_duration"`
	Photo                string     `json:"photo,omitempty"`
	Sign                 string     `json:"sign,omitempty"`
}

// WorkDay is one day the doctor can be booked.
type WorkDay struct {
	Day       string `json:"day"`
	StartTime string `json:"start_time,omitempty"`
	EndTime   string `json:"end_time,omitempty"`
}

// Review is a patient's review of the doctor.
type Review struct {
	ID          int64      `json:"id"`
	PatientName string     `json:"patient_name,omitempty"`
	Rate        FlexString `json:"rate"`
	Comment     string     `json:"comment"`
}

// File is an upload part of a multipart request.
type File struct {
	Name   string
	Reader io.Reader
}

// ProfileUpdate is the multipart payload of EditProfile.
type ProfileUpdate struct {
	Fields map[string]string
	Files  map[string]File
}

// Profile returns the signed-in doctor's profile.
func (c *Client) Profile(ctx context.Context) (*DoctorProfile, error) {
	body, err := c.doJSON(ctx, http.MethodGet, "/api/doctor/profile", nil, nil)
	if err != nil {
		return nil, err
	}
	out := &DoctorProfile{}
	if err := decodeData(body, out); err != nil {
		return nil, err
	}
	return out, nil
}

// AvailableWorkDays lists the doctor's working days.
func (c *Client) AvailableWorkDays(ctx context.Context) ([]WorkDay, error) {
	body, err := c.doJSON(ctx, http.MethodGet, "/api/doctor/availableWorkDays", nil, nil)
	if err != nil {
		return nil, err
	}
	var out []WorkDay
	if err := decodeList(body, &out, "days"); err != nil {
		return nil, err
	}
	return out, nil
}

// DoctorReviews lists reviews left by patients.
func (c *Client) DoctorReviews(ctx context.Context) ([]Review, error) {
	body, err := c.doJSON(ctx, http.MethodGet, "/api/doctor/showDoctorReviews", nil, nil)
	if err != nil {
		return nil, err
	}
	var out []Review
	if err := decodeList(body, &out, "reviews"); err != nil {
		return nil, err
	}
	return out, nil
}

// EditProfile uploads the profile form as multipart/form-data and returns the
// updated profile.
func (c *Client) EditProfile(ctx context.Context, update ProfileUpdate) (*DoctorProfile, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	keys := make([]string, 0, len(update.Fields))
	for k := range update.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if err := w.WriteField(k, update.Fields[k]); err != nil {
			return nil, fmt.Errorf("write field %s: %w", k, err)
		}
	}

	for field, f := range update.Files {
		if f.Reader == nil {
			continue
		}
		part, err := w.CreateFormFile(field, f.Name)
		if err != nil {
			return nil, fmt.Errorf("create part %s: %w", field, err)
		}
		if _, err := io.Copy(part, f.Reader); err != nil {
			return nil, fmt.Errorf("copy part %s: %w", field, err)
		}
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("close multipart body: %w", err)
	}

	req, err := c.newRequest(ctx, http.MethodPost, "/api/doctor/editProfile", nil, &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	body, err := c.send(req, "/api/doctor/editProfile")
	if err != nil {
		return nil, err
	}
	out := &DoctorProfile{}
	if err := decodeData(body, out); err != nil {
		return nil, err
	}
	return out, nil
}
