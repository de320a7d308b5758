// Package profile holds the signed-in doctor's profile and the edit form mapping.
//
// Unlike the other containers, actions here return their error to the caller as well
// as recording it.
package profile

import (
	"context"
	"strconv"
	"sync"

	"github.com/mrsinham/clinicdesk/internal/clinicapi"
	"github.com/rs/zerolog"
)

// Backend is the part of the clinic API the profile view uses.
type Backend interface {
	Profile(ctx context.Context) (*clinicapi.DoctorProfile, error)
	EditProfile(ctx context.Context, update clinicapi.ProfileUpdate) (*clinicapi.DoctorProfile, error)
}

// Form is the profile edit form.
type Form struct {
	FirstName         string
	LastName          string
	Email             string
	Phone             string
	Speciality        string
	ProfessionalTitle string
	ExperienceYears   string
	BookType          string
	Status            string
	VisitFee          string
	// VisitDuration is in minutes.
	VisitDuration int

	Signature *clinicapi.File
	Photo     *clinicapi.File

	OldPassword     string
	NewPassword     string
	ConfirmPassword string
}

// Payload maps the form to the multipart fields of the edit endpoint. Password fields
// are only sent when a new password is set.
func (f Form) Payload() clinicapi.ProfileUpdate {
	u := clinicapi.ProfileUpdate{
		Fields: map[string]string{
			"first_name":             f.FirstName,
			"last_name":              f.LastName,
			"email":                  f.Email,
			"phone":                  f.Phone,
			"speciality":             f.Speciality,
			"professional_title":     f.ProfessionalTitle,
			"experience":             f.ExperienceYears,
			"booking_type":           f.BookType,
			"status":                 f.Status,
			"visit_fee":              f.VisitFee,
			"average_visit_duration": strconv.Itoa(f.VisitDuration) + " min",
		},
		Files: map[string]clinicapi.File{},
	}
	if f.NewPassword != "" {
		u.Fields["password"] = f.NewPassword
		u.Fields["password_confirmation"] = f.ConfirmPassword
		u.Fields["old_password"] = f.OldPassword
	}
	if f.Signature != nil {
		u.Files["sign"] = *f.Signature
	}
	if f.Photo != nil {
		u.Files["photo"] = *f.Photo
	}
	return u
}

// State is a copy of the container.
type State struct {
	Profile *clinicapi.DoctorProfile
	Loading bool
	Error   string
}

// Store holds the signed-in doctor's profile.
type Store struct {
	backend Backend
	logger  zerolog.Logger

	mu    sync.Mutex
	state State
}

// NewStore creates a container with no profile loaded.
func NewStore(backend Backend, logger zerolog.Logger) *Store {
	return &Store{backend: backend, logger: logger.With().Str("component", "profile").Logger()}
}

func (s *Store) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.state
	if s.state.Profile != nil {
		p := *s.state.Profile
		out.Profile = &p
	}
	return out
}

func (s *Store) begin() {
	s.mu.Lock()
	s.state.Loading = true
	s.state.Error = ""
	s.mu.Unlock()
}

func (s *Store) finish(p *clinicapi.DoctorProfile, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Loading = false
	if err != nil {
		s.state.Error = clinicapi.Message(err)
		return
	}
	s.state.Profile = p
}

// Fetch loads the profile.
func (s *Store) Fetch(ctx context.Context) (*clinicapi.DoctorProfile, error) {
	s.begin()
	p, err := s.backend.Profile(ctx)
	s.finish(p, err)
	if err != nil {
		s.logger.Warn().Err(err).Msg("fetch profile failed")
		return nil, err
	}
	return p, nil
}

// Update sends the form and stores the profile the backend returns.
func (s *Store) Update(ctx context.Context, f Form) (*clinicapi.DoctorProfile, error) {
	s.begin()
	p, err := s.backend.EditProfile(ctx, f.Payload())
	s.finish(p, err)
	if err != nil {
		s.logger.Warn().Err(err).Msg("update profile failed")
		return nil, err
	}
	s.logger.Info().Msg("profile updated")
	return p, nil
}

// Clear forgets the profile and the error.
func (s *Store) Clear() {
	s.mu.Lock()
	s.state.Profile = nil
	s.state.Error = ""
	s.mu.Unlock()
}

// InitialFormValues fills the edit form from the loaded profile. It returns the zero
// Form when no profile is loaded.
func (s *Store) InitialFormValues() Form {
	p := s.Snapshot().Profile
	if p == nil {
		return Form{}
	}

	f := Form{
		FirstName:         p.FirstName,
		LastName:          p.LastName,
		Email:             p.Email,
		Phone:             p.Phone,
		ProfessionalTitle: p.ProfessionalTitle,
		Speciality:        p.Speciality,
		ExperienceYears:   p.Experience.String(),
		BookType:          p.BookingType,
		Status:            p.Status,
		VisitFee:          p.VisitFee.String(),
		VisitDuration:     p.AverageVisitDuration.Int(),
	}
	if f.BookType == "" {
		f.BookType = "auto"
	}
	if f.Status == "" {
		f.Status = "available"
	}
	return f
}
