// Package appointments holds the doctor's calendar: the appointments of the viewed month
// and the filtered subset.
package appointments

import (
	"context"
	"sync"

	"github.com/mrsinham/clinicdesk/internal/clinicapi"
	"github.com/rs/zerolog"
)

// Backend is the part of the clinic API the calendar uses.
type Backend interface {
	AppointmentsByDate(ctx context.Context, monthYear string) ([]clinicapi.Appointment, error)
	AppointmentsByStatus(ctx context.Context, status, date string) ([]clinicapi.Appointment, error)
	AppointmentsByType(ctx context.Context, status, appointmentType, date string) ([]clinicapi.Appointment, error)
	CancelAppointment(ctx context.Context, reservationID int64) error
	AppointmentResults(ctx context.Context, appointmentID int64) (clinicapi.Document, error)
}

// NoMonthMessage is the error stored when a filter is requested before a month is set.
const NoMonthMessage = "No month selected"

// State is a copy of the calendar.
type State struct {
	All              []clinicapi.Appointment
	Filtered         []clinicapi.Appointment
	CurrentMonthYear string
	Loading          bool
	Error            string
}

// Store is the appointments container.
type Store struct {
	backend Backend
	logger  zerolog.Logger

	mu    sync.Mutex
	state State
}

// NewStore creates an empty container; nothing is fetched until a list is requested.
func NewStore(backend Backend, logger zerolog.Logger) *Store {
	return &Store{backend: backend, logger: logger.With().Str("component", "appointments").Logger()}
}

// Snapshot returns a copy of the current state.
func (s *Store) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.state
	out.All = append([]clinicapi.Appointment(nil), s.state.All...)
	out.Filtered = append([]clinicapi.Appointment(nil), s.state.Filtered...)
	return out
}

func (s *Store) begin() {
	s.mu.Lock()
	s.state.Loading = true
	s.state.Error = ""
	s.mu.Unlock()
}

func (s *Store) fail(action string, err error) {
	s.logger.Warn().Err(err).Str("action", action).Msg("action failed")
	s.mu.Lock()
	s.state.Loading = false
	s.state.Error = clinicapi.Message(err)
	s.mu.Unlock()
}

// FetchAllByDate loads every appointment of monthYear and makes it the current month.
func (s *Store) FetchAllByDate(ctx context.Context, monthYear string) bool {
	s.begin()
	list, err := s.backend.AppointmentsByDate(ctx, monthYear)
	if err != nil {
		s.fail("fetch by date", err)
		return false
	}
	s.mu.Lock()
	s.state.All = list
	s.state.CurrentMonthYear = monthYear
	s.state.Loading = false
	s.mu.Unlock()
	return true
}

func (s *Store) hasMonth() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.CurrentMonthYear == "" {
		s.state.Error = NoMonthMessage
		return false
	}
	return true
}

// FetchByStatus loads the appointments with status on date into Filtered. A month must
// have been selected first.
func (s *Store) FetchByStatus(ctx context.Context, status Status, date string) bool {
	if !s.hasMonth() {
		return false
	}
	s.begin()
	list, err := s.backend.AppointmentsByStatus(ctx, status.String(), date)
	if err != nil {
		s.fail("fetch by status", err)
		return false
	}
	s.setFiltered(list)
	return true
}

// FetchByType loads the appointments with status and type on date into Filtered. A month
// must have been selected first.
func (s *Store) FetchByType(ctx context.Context, status Status, t Type, date string) bool {
	if !s.hasMonth() {
		return false
	}
	s.begin()
	list, err := s.backend.AppointmentsByType(ctx, status.String(), t.String(), date)
	if err != nil {
		s.fail("fetch by type", err)
		return false
	}
	s.setFiltered(list)
	return true
}

func (s *Store) setFiltered(list []clinicapi.Appointment) {
	s.mu.Lock()
	s.state.Filtered = list
	s.state.Loading = false
	s.mu.Unlock()
}

// Load applies the calendar selection rule for monthYear and f: status and type query by
// type, status alone by status, type alone by type among pending appointments, and no
// filter loads the whole month.
func (s *Store) Load(ctx context.Context, monthYear string, f Filter) bool {
	s.SetCurrentMonthYear(monthYear)
	switch {
	case f.Status != StatusAny && f.Type != TypeAny:
		return s.FetchByType(ctx, f.Status, f.Type, monthYear)
	case f.Status != StatusAny:
		return s.FetchByStatus(ctx, f.Status, monthYear)
	case f.Type != TypeAny:
		return s.FetchByType(ctx, StatusPending, f.Type, monthYear)
	}
	s.ClearFilters()
	return s.FetchAllByDate(ctx, monthYear)
}

// Visible returns the active list: Filtered when a filter applies, All otherwise.
func (s *Store) Visible(f Filter) []clinicapi.Appointment {
	st := s.Snapshot()
	if f != (Filter{}) {
		return st.Filtered
	}
	return st.All
}

// Cancel cancels the appointment and marks it cancelled in both lists.
func (s *Store) Cancel(ctx context.Context, id int64) bool {
	s.begin()
	if err := s.backend.CancelAppointment(ctx, id); err != nil {
		s.fail("cancel", err)
		return false
	}

	s.logger.Info().Int64("appointment_id", id).Msg("appointment cancelled")
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, list := range [][]clinicapi.Appointment{s.state.All, s.state.Filtered} {
		for i := range list {
			if list[i].ID == id {
				list[i].Status = StatusCancelled.String()
			}
		}
	}
	s.state.Loading = false
	return true
}

// Results fetches the recorded results of an appointment.
func (s *Store) Results(ctx context.Context, appointmentID int64) (clinicapi.Document, bool) {
	s.begin()
	doc, err := s.backend.AppointmentResults(ctx, appointmentID)
	if err != nil {
		s.fail("results", err)
		return nil, false
	}
	s.mu.Lock()
	s.state.Loading = false
	s.mu.Unlock()
	return doc, true
}

// ClearFilters drops the filtered list.
func (s *Store) ClearFilters() {
	s.mu.Lock()
	s.state.Filtered = nil
	s.mu.Unlock()
}

// SetCurrentMonthYear changes the viewed month without fetching.
func (s *Store) SetCurrentMonthYear(monthYear string) {
	s.mu.Lock()
	s.state.CurrentMonthYear = monthYear
	s.mu.Unlock()
}
