package sandbox

import (
	"context"
	"errors"
	"sync"

	"github.com/mrsinham/clinicdesk/internal/clinicapi"
)

var (
	// ErrNotFound is returned when a record does not exist.
	ErrNotFound = errors.New("not found")
)

// Prescription is a stored prescription with the number of medicines attached to it.
type Prescription struct {
	clinicapi.Prescription
	MedicineCount int `json:"medicine_count"`
}

// Store persists what the doctor writes: prescriptions, their medicines and the
// diagnosis records.
type Store interface {
	CreatePrescription(ctx context.Context, patientID int64) (Prescription, error)
	GetPrescription(ctx context.Context, id int64) (Prescription, error)
	AddMedicine(ctx context.Context, m clinicapi.Medicine) (clinicapi.Medicine, error)
	Medicines(ctx context.Context, prescriptionID int64) ([]clinicapi.Medicine, error)
	CompletePrescription(ctx context.Context, id int64, note string) (Prescription, error)
	AddMedicalInfo(ctx context.Context, info clinicapi.MedicalInfo) (clinicapi.MedicalInfo, error)
	MedicalInfoByAppointment(ctx context.Context, appointmentID int64) (clinicapi.MedicalInfo, error)
}

// MemoryStore keeps everything in process memory.
type MemoryStore struct {
	mu            sync.Mutex
	prescriptions map[int64]*Prescription
	medicines     map[int64][]clinicapi.Medicine
	infos         []clinicapi.MedicalInfo
	nextID        int64
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		prescriptions: map[int64]*Prescription{},
		medicines:     map[int64][]clinicapi.Medicine{},
	}
}

func (s *MemoryStore) id() int64 {
	s.nextID++
	return s.nextID
}

func (s *MemoryStore) CreatePrescription(_ context.Context, patientID int64) (Prescription, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := &Prescription{Prescription: clinicapi.Prescription{
		ID:        s.id(),
		PatientID: patientID,
		Status:    clinicapi.StatusDraft,
	}}
	s.prescriptions[p.ID] = p
	return *p, nil
}

func (s *MemoryStore) GetPrescription(_ context.Context, id int64) (Prescription, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.prescriptions[id]
	if !ok {
		return Prescription{}, ErrNotFound
	}
	return *p, nil
}

func (s *MemoryStore) AddMedicine(_ context.Context, m clinicapi.Medicine) (clinicapi.Medicine, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.prescriptions[m.PrescriptionID]
	if !ok {
		return clinicapi.Medicine{}, ErrNotFound
	}
	m.ID = s.id()
	s.medicines[p.ID] = append(s.medicines[p.ID], m)
	p.MedicineCount++
	return m, nil
}

func (s *MemoryStore) Medicines(_ context.Context, prescriptionID int64) ([]clinicapi.Medicine, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]clinicapi.Medicine(nil), s.medicines[prescriptionID]...), nil
}

func (s *MemoryStore) CompletePrescription(_ context.Context, id int64, note string) (Prescription, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.prescriptions[id]
	if !ok {
		return Prescription{}, ErrNotFound
	}
	p.Note = note
	p.Status = clinicapi.StatusCompleted
	return *p, nil
}

func (s *MemoryStore) AddMedicalInfo(_ context.Context, info clinicapi.MedicalInfo) (clinicapi.MedicalInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.prescriptions[info.PrescriptionID]; !ok {
		return clinicapi.MedicalInfo{}, ErrNotFound
	}
	info.ID = s.id()
	s.infos = append(s.infos, info)
	return info, nil
}

func (s *MemoryStore) MedicalInfoByAppointment(_ context.Context, appointmentID int64) (clinicapi.MedicalInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := len(s.infos) - 1; i >= 0; i-- {
		if s.infos[i].AppointmentID == appointmentID {
			return s.infos[i], nil
		}
	}
	return clinicapi.MedicalInfo{}, ErrNotFound
}
