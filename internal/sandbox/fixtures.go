package sandbox

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/mrsinham/clinicdesk/internal/clinicapi"
)

// Fixtures is the read-only side of the sandbox: the doctor's calendar, patient
// record and profile. Only cancellations and profile edits mutate it.
type Fixtures struct {
	mu           sync.Mutex
	appointments []clinicapi.Appointment
	patients     []clinicapi.Patient
	profile      clinicapi.DoctorProfile
	workDays     []clinicapi.WorkDay
	reviews      []clinicapi.Review
	today        string
}

var fixturePatients = []clinicapi.Patient{
	{ID: 42, FirstName: "Amira", LastName: "Haddad", Email: "amira.haddad@example.com", Phone: "0100200300", Gender: "female", BirthDate: "1988-04-12", Age: "38"},
	{ID: 43, FirstName: "Youssef", LastName: "Mansour", Email: "y.mansour@example.com", Phone: "0100200301", Gender: "male", BirthDate: "1975-11-02", Age: "50"},
	{ID: 44, FirstName: "Lina", LastName: "Farouk", Email: "lina.farouk@example.com", Phone: "0100200302", Gender: "female", BirthDate: "2001-06-30", Age: "25"},
	{ID: 45, FirstName: "Omar", LastName: "Saleh", Email: "omar.saleh@example.com", Phone: "0100200303", Gender: "male", BirthDate: "1964-01-19", Age: "62"},
	{ID: 46, FirstName: "Nour", LastName: "Khalil", Email: "nour.khalil@example.com", Phone: "0100200304", Gender: "female", BirthDate: "1995-09-08", Age: "31"},
	{ID: 47, FirstName: "Karim", LastName: "Aziz", Email: "karim.aziz@example.com", Phone: "0100200305", Gender: "male", BirthDate: "1982-03-27", Age: "44"},
}

var fixtureHours = []string{"09:00", "09:30", "10:15", "11:00", "13:30", "14:45", "16:00"}

// NewFixtures seeds a calendar around now: a week of appointments before and after
// today, today included.
func NewFixtures(now time.Time) *Fixtures {
	f := &Fixtures{
		patients: append([]clinicapi.Patient(nil), fixturePatients...),
		profile: clinicapi.DoctorProfile{
			ID:                   1,
			FirstName:            "Salma",
			LastName:             "Rashed",
			Email:                "dr.rashed@example.com",
			Phone:                "0100999000",
			Speciality:           "General practice",
			ProfessionalTitle:    "Consultant",
			Experience:           "12",
			BookingType:          "auto",
			Status:               "available",
			VisitFee:             "150",
			AverageVisitDuration: "30 min",
		},
		workDays: []clinicapi.WorkDay{
			{Day: "Sunday", StartTime: "09:00", EndTime: "17:00"},
			{Day: "Monday", StartTime: "09:00", EndTime: "17:00"},
			{Day: "Tuesday", StartTime: "09:00", EndTime: "13:00"},
			{Day: "Wednesday", StartTime: "09:00", EndTime: "17:00"},
			{Day: "Thursday", StartTime: "12:00", EndTime: "20:00"},
		},
		reviews: []clinicapi.Review{
			{ID: 1, PatientName: "Amira Haddad", Rate: "5", Comment: "Took the time to explain everything."},
			{ID: 2, PatientName: "Omar Saleh", Rate: "4", Comment: "Short wait, clear prescription."},
		},
	}

	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	f.today = today.Format("2006-01-02")
	id := int64(100)
	for offset := -7; offset <= 7; offset++ {
		day := today.AddDate(0, 0, offset)
		for slot := 0; slot < 2; slot++ {
			id++
			p := f.patients[int(id)%len(f.patients)]
			a := clinicapi.Appointment{
				ID:               id,
				PatientID:        p.ID,
				PatientFirstName: p.FirstName,
				PatientLastName:  p.LastName,
				ReservationDate:  day.Format("2006-01-02"),
				ReservationHour:  fixtureHours[int(id)%len(fixtureHours)],
				AppointmentType:  "first time",
				Status:           "pending",
			}
			if id%3 == 0 {
				a.AppointmentType = "check up"
			}
			switch {
			case offset < 0 && id%5 == 0:
				a.Status = "cancelled"
			case offset < 0:
				a.Status = "visited"
			}
			f.appointments = append(f.appointments, a)
		}
	}
	sort.SliceStable(f.appointments, func(i, j int) bool {
		a, b := f.appointments[i], f.appointments[j]
		if a.ReservationDate != b.ReservationDate {
			return a.ReservationDate < b.ReservationDate
		}
		return a.ReservationHour < b.ReservationHour
	})
	return f
}

// matchDate reports whether a reservation date "YYYY-MM-DD" falls on date, which is
// either a day in the same layout or a month as "MM-YYYY".
func matchDate(reservation, date string) bool {
	if date == "" {
		return true
	}
	if len(date) == len("01-2006") && len(reservation) >= len("2006-01") {
		return reservation[5:7] == date[:2] && reservation[:4] == date[3:]
	}
	return reservation == date
}

func normalize(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.NewReplacer("-", " ", "_", " ").Replace(s)
	if s == "canceled" {
		return "cancelled"
	}
	return s
}

// Appointments filters the calendar. Empty criteria match everything; the "today"
// status matches the reservations of the fixture day whatever their status.
func (f *Fixtures) Appointments(date, status, appointmentType string) []clinicapi.Appointment {
	f.mu.Lock()
	defer f.mu.Unlock()
	status, appointmentType = normalize(status), normalize(appointmentType)

	var out []clinicapi.Appointment
	for _, a := range f.appointments {
		if !matchDate(a.ReservationDate, date) {
			continue
		}
		switch status {
		case "":
		case "today":
			if a.ReservationDate != f.today {
				continue
			}
		default:
			if normalize(a.Status) != status {
				continue
			}
		}
		if appointmentType != "" && normalize(a.AppointmentType) != appointmentType {
			continue
		}
		out = append(out, a)
	}
	return out
}

// Appointment returns one reservation.
func (f *Fixtures) Appointment(id int64) (clinicapi.Appointment, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, a := range f.appointments {
		if a.ID == id {
			return a, true
		}
	}
	return clinicapi.Appointment{}, false
}

// SetAppointmentStatus changes the status of a reservation.
func (f *Fixtures) SetAppointmentStatus(id int64, status string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.appointments {
		if f.appointments[i].ID == id {
			f.appointments[i].Status = status
			return nil
		}
	}
	return fmt.Errorf("appointment %d: %w", id, ErrNotFound)
}

// PatientAppointments returns one page of a patient's appointments and the total.
func (f *Fixtures) PatientAppointments(patientID int64, page, size int) ([]clinicapi.Appointment, int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var all []clinicapi.Appointment
	for _, a := range f.appointments {
		if a.PatientID == patientID {
			all = append(all, a)
		}
	}
	return paginate(all, page, size), len(all)
}

// Patients returns one page of the patient record and the total.
func (f *Fixtures) Patients(page, perPage int) ([]clinicapi.Patient, int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return paginate(f.patients, page, perPage), len(f.patients)
}

// SearchPatients matches name against first and last names, case-insensitively.
func (f *Fixtures) SearchPatients(name string) []clinicapi.Patient {
	f.mu.Lock()
	defer f.mu.Unlock()
	needle := strings.ToLower(strings.TrimSpace(name))
	out := []clinicapi.Patient{}
	for _, p := range f.patients {
		if strings.Contains(strings.ToLower(p.Name()), needle) {
			out = append(out, p)
		}
	}
	return out
}

// Patient returns one patient.
func (f *Fixtures) Patient(id int64) (clinicapi.Patient, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.patients {
		if p.ID == id {
			return p, true
		}
	}
	return clinicapi.Patient{}, false
}

func (f *Fixtures) Profile() clinicapi.DoctorProfile {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.profile
}

// UpdateProfile applies the submitted form fields. Unknown fields are ignored.
func (f *Fixtures) UpdateProfile(fields map[string]string, files map[string]string) clinicapi.DoctorProfile {
	f.mu.Lock()
	defer f.mu.Unlock()
	p := &f.profile
	targets := map[string]*string{
		"first_name":         &p.FirstName,
		"last_name":          &p.LastName,
		"email":              &p.Email,
		"phone":              &p.Phone,
		"speciality":         &p.Speciality,
		"professional_title": &p.ProfessionalTitle,
		"booking_type":       &p.BookingType,
		"status":             &p.Status,
	}
	for k, v := range fields {
		if dst, ok := targets[k]; ok {
			*dst = v
		}
	}
	if v, ok := fields["experience"]; ok {
		p.Experience = clinicapi.FlexString(v)
	}
	if v, ok := fields["visit_fee"]; ok {
		p.VisitFee = clinicapi.FlexString(v)
	}
	if v, ok := fields["average_visit_duration"]; ok {
		p.AverageVisitDuration = clinicapi.FlexString(v)
	}
	if name, ok := files["photo"]; ok {
		p.Photo = name
	}
	if name, ok := files["sign"]; ok {
		p.Sign = name
	}
	return *p
}

func (f *Fixtures) WorkDays() []clinicapi.WorkDay {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]clinicapi.WorkDay(nil), f.workDays...)
}

func (f *Fixtures) Reviews() []clinicapi.Review {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]clinicapi.Review(nil), f.reviews...)
}

func paginate[T any](items []T, page, size int) []T {
	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = len(items)
	}
	start := (page - 1) * size
	if start >= len(items) {
		return []T{}
	}
	end := start + size
	if end > len(items) {
		end = len(items)
	}
	return append([]T(nil), items[start:end]...)
}
