// Package patients holds the doctor's patient record, the search results and the
// profile and appointment history of the selected patient.
package patients

import (
	"context"
	"sync"

	"github.com/mrsinham/clinicdesk/internal/clinicapi"
	"github.com/rs/zerolog"
)

// Backend is the part of the clinic API the patient views use.
type Backend interface {
	PatientsRecord(ctx context.Context, page, perPage int) (*clinicapi.PatientPage, error)
	SearchPatient(ctx context.Context, name string) (*clinicapi.PatientPage, error)
	PatientProfile(ctx context.Context, patientID int64) (clinicapi.Document, error)
	PatientAppointments(ctx context.Context, patientID int64, page, size int) (*clinicapi.AppointmentPage, error)
}

// Page is the pagination of a list.
type Page struct {
	Current int
	PerPage int
	Total   int
}

// State is a copy of the container.
type State struct {
	Patients    []clinicapi.Patient
	Page        Page
	SearchQuery string

	Profile clinicapi.Document

	Appointments     []clinicapi.Appointment
	AppointmentsPage Page

	Loading             bool
	ProfileLoading      bool
	AppointmentsLoading bool
	Error               string
}

// Store is the patients container: the current page, the search results and the open patient.
type Store struct {
	backend Backend
	logger  zerolog.Logger

	mu    sync.Mutex
	state State
}

// NewStore creates an empty container backed by backend.
func NewStore(backend Backend, logger zerolog.Logger) *Store {
	return &Store{
		backend: backend,
		logger:  logger.With().Str("component", "patients").Logger(),
		state: State{
			Page:             Page{Current: 1, PerPage: 10},
			AppointmentsPage: Page{Current: 1, PerPage: 5},
		},
	}
}

func (s *Store) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.state
	out.Patients = append([]clinicapi.Patient(nil), s.state.Patients...)
	out.Appointments = append([]clinicapi.Appointment(nil), s.state.Appointments...)
	return out
}

func (s *Store) set(fn func(st *State)) {
	s.mu.Lock()
	fn(&s.state)
	s.mu.Unlock()
}

// fail records err and runs done to clear the action's loading flag.
func (s *Store) fail(action string, err error, done func(st *State)) {
	s.logger.Warn().Err(err).Str("action", action).Msg("action failed")
	s.set(func(st *State) {
		done(st)
		st.Error = clinicapi.Message(err)
	})
}

// pageOf reads the pagination block, falling back to the requested values.
func pageOf(meta *clinicapi.Meta, page, perPage, count int) Page {
	p := Page{Current: page, PerPage: perPage, Total: count}
	if meta == nil {
		return p
	}
	if meta.CurrentPage > 0 {
		p.Current = meta.CurrentPage
	}
	if meta.PerPage > 0 {
		p.PerPage = meta.PerPage
	}
	if meta.Total > 0 {
		p.Total = meta.Total
	}
	return p
}

// FetchPatients loads one page of the record and clears the search.
func (s *Store) FetchPatients(ctx context.Context, page, perPage int) bool {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 5
	}
	s.set(func(st *State) {
		st.Loading = true
		st.Error = ""
		st.SearchQuery = ""
	})

	res, err := s.backend.PatientsRecord(ctx, page, perPage)
	if err != nil {
		s.fail("fetch patients", err, func(st *State) { st.Loading = false })
		return false
	}
	s.set(func(st *State) {
		st.Patients = res.Data
		st.Page = pageOf(res.Meta, page, perPage, len(res.Data))
		st.Loading = false
	})
	return true
}

// Search replaces the list with the patients matching name.
func (s *Store) Search(ctx context.Context, name string) bool {
	s.set(func(st *State) {
		st.Loading = true
		st.Error = ""
		st.SearchQuery = name
	})

	res, err := s.backend.SearchPatient(ctx, name)
	if err != nil {
		s.fail("search", err, func(st *State) { st.Loading = false })
		return false
	}
	s.set(func(st *State) {
		st.Patients = res.Data
		st.Page = pageOf(res.Meta, 1, st.Page.PerPage, len(res.Data))
		st.Loading = false
	})
	return true
}

// FetchProfile loads the profile of one patient.
func (s *Store) FetchProfile(ctx context.Context, patientID int64) bool {
	s.set(func(st *State) {
		st.ProfileLoading = true
		st.Error = ""
	})

	doc, err := s.backend.PatientProfile(ctx, patientID)
	if err != nil {
		s.fail("fetch profile", err, func(st *State) { st.ProfileLoading = false })
		return false
	}
	s.set(func(st *State) {
		st.Profile = doc
		st.ProfileLoading = false
	})
	return true
}

// FetchAppointments loads one page of a patient's appointment history.
func (s *Store) FetchAppointments(ctx context.Context, patientID int64, page, size int) bool {
	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = 5
	}
	s.set(func(st *State) {
		st.AppointmentsLoading = true
		st.Error = ""
	})

	res, err := s.backend.PatientAppointments(ctx, patientID, page, size)
	if err != nil {
		s.fail("fetch appointments", err, func(st *State) { st.AppointmentsLoading = false })
		return false
	}
	s.set(func(st *State) {
		st.Appointments = res.Data
		st.AppointmentsPage = pageOf(res.Meta, page, size, len(res.Data))
		st.AppointmentsLoading = false
	})
	return true
}

// ClearError drops the last error message.
func (s *Store) ClearError() {
	s.set(func(st *State) { st.Error = "" })
}
