package clinicapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

type recordedRequest struct {
	method string
	path   string
	query  string
	header http.Header
	body   map[string]any
}

func newTestClient(t *testing.T, handler func(w http.ResponseWriter, r *http.Request)) (*Client, *[]recordedRequest) {
	t.Helper()
	var recorded []recordedRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := recordedRequest{method: r.Method, path: r.URL.Path, query: r.URL.RawQuery, header: r.Header.Clone()}
		if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
			data, _ := io.ReadAll(r.Body)
			json.Unmarshal(data, &rec.body)
		}
		recorded = append(recorded, rec)
		handler(w, r)
	}))
	t.Cleanup(srv.Close)

	c, err := New(Config{BaseURL: srv.URL + "/", Token: "tok"}, zerolog.Nop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c, &recorded
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	io.WriteString(w, body)
}

func TestNew_RequiresBaseURL(t *testing.T) {
	if _, err := New(Config{}, zerolog.Nop()); err == nil {
		t.Error("expected error for empty base url")
	}
}

func TestAddPrescription(t *testing.T) {
	c, reqs := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusCreated, `{"data":{"prescription_id":7,"patient_id":42}}`)
	})

	p, err := c.AddPrescription(context.Background(), 42)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.ID != 7 || p.PatientID != 42 {
		t.Errorf("unexpected prescription: %+v", p)
	}
	if p.Status != StatusDraft {
		t.Errorf("expected draft status, got %q", p.Status)
	}

	got := (*reqs)[0]
	if got.method != http.MethodPost || got.path != "/api/doctor/addPrescription" {
		t.Errorf("unexpected request %s %s", got.method, got.path)
	}
	if got.body["patient_id"] != float64(42) {
		t.Errorf("expected patient_id 42 in body, got %v", got.body["patient_id"])
	}
	if got.header.Get("Authorization") != "Bearer tok" {
		t.Errorf("expected bearer token, got %q", got.header.Get("Authorization"))
	}
	if got.header.Get(RequestIDHeader) == "" {
		t.Error("expected request id header")
	}
}

func TestAddPrescription_AcceptsPlainID(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"id":11}`)
	})

	p, err := c.AddPrescription(context.Background(), 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.ID != 11 {
		t.Errorf("expected id 11, got %d", p.ID)
	}
}

func TestAddPrescription_NoID(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"data":{}}`)
	})

	_, err := c.AddPrescription(context.Background(), 3)
	if !errors.Is(err, ErrEmptyResponse) {
		t.Errorf("expected ErrEmptyResponse, got %v", err)
	}
}

func TestAddPrescription_ValidationError(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnprocessableEntity, `{"message":"patient not found"}`)
	})

	_, err := c.AddPrescription(context.Background(), 42)
	if !IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if Message(err) != "patient not found" {
		t.Errorf("unexpected message %q", Message(err))
	}
	var verr *ValidationError
	errors.As(err, &verr)
	if verr.Status != http.StatusUnprocessableEntity {
		t.Errorf("expected status 422, got %d", verr.Status)
	}
}

func TestAddPrescription_RejectsMissingPatient(t *testing.T) {
	c, reqs := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {})

	_, err := c.AddPrescription(context.Background(), 0)
	if !IsValidation(err) {
		t.Errorf("expected validation error, got %v", err)
	}
	if len(*reqs) != 0 {
		t.Error("expected no request to be sent")
	}
}

func TestNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	c, err := New(Config{BaseURL: url}, zerolog.Nop())
	if err != nil {
		t.Fatal(err)
	}
	_, err = c.AddPrescription(context.Background(), 42)
	if !IsNetwork(err) {
		t.Fatalf("expected network error, got %v", err)
	}
	if !strings.HasPrefix(Message(err), "Network error") {
		t.Errorf("unexpected message %q", Message(err))
	}
}

func TestAddMedicine_FormatsDose(t *testing.T) {
	c, reqs := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusCreated, `{"data":{"id":3,"name":"Amoxicillin","dose":"500 mg","prescription_id":7}}`)
	})

	m, err := c.AddMedicine(context.Background(), Medicine{
		Name:           "Amoxicillin",
		Dose:           "500",
		Frequency:      "Three times a day",
		Strength:       "500mg",
		Until:          "For 7 days",
		WhenToTake:     "After meals",
		PrescriptionID: 7,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.ID != 3 {
		t.Errorf("expected id 3, got %d", m.ID)
	}

	body := (*reqs)[0].body
	if body["dose"] != "500 mg" {
		t.Errorf("expected dose '500 mg', got %v", body["dose"])
	}
	if body["whenToTake"] != "After meals" {
		t.Errorf("expected whenToTake, got %v", body["whenToTake"])
	}
	if body["prescription_id"] != float64(7) {
		t.Errorf("expected prescription_id 7, got %v", body["prescription_id"])
	}
	if _, ok := body["note"]; !ok {
		t.Error("expected note to be sent even when empty")
	}
}

func TestAddMedicine_RequiresPrescription(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {})

	if _, err := c.AddMedicine(context.Background(), Medicine{Name: "x"}); !IsValidation(err) {
		t.Errorf("expected validation error, got %v", err)
	}
}

func TestCompletePrescription(t *testing.T) {
	c, reqs := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"message":"completed"}`)
	})

	p, err := c.CompletePrescription(context.Background(), 7, "Take with food")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.ID != 7 || p.Note != "Take with food" || p.Status != StatusCompleted {
		t.Errorf("unexpected prescription: %+v", p)
	}
	if (*reqs)[0].path != "/api/doctor/completPrescription" {
		t.Errorf("unexpected path %s", (*reqs)[0].path)
	}
	if (*reqs)[0].body["id"] != float64(7) {
		t.Errorf("expected id 7, got %v", (*reqs)[0].body["id"])
	}
}

func TestAddMedicalInfo(t *testing.T) {
	c, reqs := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusCreated, `{"data":{"id":1}}`)
	})

	_, err := c.AddMedicalInfo(context.Background(), MedicalInfo{PrescriptionID: 7})
	if !IsValidation(err) {
		t.Errorf("expected appointment id to be required, got %v", err)
	}

	info, err := c.AddMedicalInfo(context.Background(), MedicalInfo{
		PrescriptionID: 7,
		AppointmentID:  9,
		Symptoms:       "fever",
		Diagnosis:      "flu",
		DoctorNote:     "rest advised",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if info.ID != 1 || info.Diagnosis != "flu" {
		t.Errorf("unexpected info: %+v", info)
	}
	body := (*reqs)[0].body
	if body["doctorNote"] != "rest advised" || body["appointment_id"] != float64(9) {
		t.Errorf("unexpected body: %v", body)
	}
}

func TestEmptyResponseIsFailure(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	_, err := c.CompletePrescription(context.Background(), 7, "")
	if !errors.Is(err, ErrEmptyResponse) {
		t.Errorf("expected ErrEmptyResponse, got %v", err)
	}
}
