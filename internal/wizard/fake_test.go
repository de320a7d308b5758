package wizard

import (
	"context"
	"errors"
	"sync"

	"github.com/mrsinham/clinicdesk/internal/clinicapi"
	"github.com/mrsinham/clinicdesk/internal/prescription"
	"github.com/rs/zerolog"
)

// fakeBackend records calls and fails the ones named in failures.
type fakeBackend struct {
	mu sync.Mutex

	nextID    int64
	failures  map[string]error
	gates     map[string]*gate
	calls     []string
	medicines []clinicapi.Medicine
	completed []string
	infos     []clinicapi.MedicalInfo
}

func newFakeBackend(id int64) *fakeBackend {
	return &fakeBackend{nextID: id, failures: map[string]error{}, gates: map[string]*gate{}}
}

// gate holds one call until released.
type gate struct {
	entered chan struct{}
	release chan struct{}
}

// hold makes the next call named call block until the returned gate is released.
func (f *fakeBackend) hold(call string) *gate {
	g := &gate{entered: make(chan struct{}), release: make(chan struct{})}
	f.mu.Lock()
	f.gates[call] = g
	f.mu.Unlock()
	return g
}

func (f *fakeBackend) setNextID(id int64) {
	f.mu.Lock()
	f.nextID = id
	f.mu.Unlock()
}

func (f *fakeBackend) fail(call string, err error) {
	f.mu.Lock()
	f.failures[call] = err
	f.mu.Unlock()
}

func (f *fakeBackend) heal(call string) {
	f.mu.Lock()
	delete(f.failures, call)
	f.mu.Unlock()
}

func (f *fakeBackend) record(call string) error {
	f.mu.Lock()
	f.calls = append(f.calls, call)
	err := f.failures[call]
	g := f.gates[call]
	delete(f.gates, call)
	f.mu.Unlock()

	if g != nil {
		close(g.entered)
		<-g.release
	}
	return err
}

func (f *fakeBackend) count(call string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c == call {
			n++
		}
	}
	return n
}

func (f *fakeBackend) AddPrescription(_ context.Context, patientID int64) (*clinicapi.Prescription, error) {
	f.mu.Lock()
	id := f.nextID
	f.mu.Unlock()
	if err := f.record("AddPrescription"); err != nil {
		return nil, err
	}
	return &clinicapi.Prescription{ID: id, PatientID: patientID, Status: clinicapi.StatusDraft}, nil
}

func (f *fakeBackend) AddMedicine(_ context.Context, m clinicapi.Medicine) (*clinicapi.Medicine, error) {
	if err := f.record("AddMedicine"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	m.ID = int64(len(f.medicines) + 1)
	f.medicines = append(f.medicines, m)
	f.mu.Unlock()
	return &m, nil
}

func (f *fakeBackend) CompletePrescription(_ context.Context, id int64, note string) (*clinicapi.Prescription, error) {
	if err := f.record("CompletePrescription"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	f.completed = append(f.completed, note)
	f.mu.Unlock()
	return &clinicapi.Prescription{ID: id, Note: note, Status: clinicapi.StatusCompleted}, nil
}

func (f *fakeBackend) AddMedicalInfo(_ context.Context, info clinicapi.MedicalInfo) (*clinicapi.MedicalInfo, error) {
	if err := f.record("AddMedicalInfo"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	f.infos = append(f.infos, info)
	f.mu.Unlock()
	return &info, nil
}

var errUnreachable = &clinicapi.NetworkError{Method: "POST", Path: "/api/doctor", Err: errors.New("connection refused")}

// newTestSession returns a session over a fake backend handing out prescription id.
func newTestSession(id int64) (*Session, *fakeBackend, *[]Notice) {
	backend := newFakeBackend(id)
	store := prescription.NewStore(backend, zerolog.Nop())
	var notices []Notice
	var mu sync.Mutex
	s := NewSession(store, func(n Notice) {
		mu.Lock()
		notices = append(notices, n)
		mu.Unlock()
	}, zerolog.Nop())
	return s, backend, &notices
}

func fillAmoxicillin(s *Session, id string) {
	s.SetField(id, FieldName, "Amoxicillin")
	s.SetField(id, FieldDose, "500")
	s.SetField(id, FieldFrequency, "Three times a day")
	s.SetField(id, FieldStrength, "500mg")
	s.SetField(id, FieldUntil, "For 7 days")
	s.SetField(id, FieldWhenToTake, "After meals")
}
